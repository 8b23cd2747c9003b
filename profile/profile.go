// Package profile maps global message and field numbers onto field
// descriptors for a working subset of the FIT profile, with optional
// YAML-loadable overrides for vendor or unknown fields.
package profile

import (
	"fmt"

	"github.com/lucasjlepore/fit-decoder/fields"
)

// Global message numbers of the supported subset.
const (
	MsgFileID      = 0
	MsgUserProfile = 3
	MsgRecord      = 20
	MsgMonitoring  = 55
)

// Profile resolves message and field numbers to descriptors.
type Profile struct {
	messages map[uint16]map[uint8]fields.Field
	names    map[uint16]string
}

// Default returns the built-in profile subset.
func Default() *Profile {
	return &Profile{
		names: map[uint16]string{
			MsgFileID:      "file_id",
			MsgUserProfile: "user_profile",
			MsgRecord:      "record",
			MsgMonitoring:  "monitoring",
		},
		messages: map[uint16]map[uint8]fields.Field{
			MsgFileID: {
				0: fields.NewEnum("type", map[int64]string{
					1: "device",
					4: "activity",
					9: "monitoring_a",
				}),
				1: fields.Manufacturer(),
				2: fields.Product(),
				3: fields.NewNumeric("serial_number", 1, 0),
				4: fields.Timestamp("time_created"),
			},
			MsgUserProfile: {
				1: fields.NewEnum("gender", map[int64]string{0: "female", 1: "male"}),
				3: fields.Height(),
				4: fields.Weight("weight"),
			},
			MsgRecord: {
				253: fields.Timestamp("timestamp"),
				0:   fields.Latitude("position_lat"),
				1:   fields.Longitude("position_long"),
				2:   fields.Altitude("altitude"),
				3:   fields.NewNumeric("heart_rate", 1, 0),
				4:   fields.NewNumeric("cadence", 1, 0),
				5:   fields.DistanceCMToKMs("distance"),
				6:   fields.Speed("speed"),
				8:   fields.CompressedSpeedDistance(),
				13:  fields.Temperature("temperature"),
			},
			MsgMonitoring: {
				253: fields.Timestamp("timestamp"),
				2:   fields.DistanceCMToKMs("distance"),
				5:   fields.NewNumeric("activity_type", 1, 0),
				12:  fields.Temperature("temperature"),
				26:  fields.Timestamp16(),
				27:  fields.NewNumeric("heart_rate", 1, 0),
			},
		},
	}
}

// Field returns the descriptor for the given message and field number, or
// an unknown-field passthrough when the profile has no entry.
func (p *Profile) Field(global uint16, number uint8) fields.Field {
	if msg, ok := p.messages[global]; ok {
		if f, ok := msg[number]; ok {
			return f
		}
	}
	return fields.Unknown(number)
}

// MessageName returns the name of the given global message, or a synthetic
// unknown_<n> name.
func (p *Profile) MessageName(global uint16) string {
	if name, ok := p.names[global]; ok {
		return name
	}
	return fmt.Sprintf("unknown_%d", global)
}
