package fields

import (
	"time"

	"github.com/lucasjlepore/fit-decoder/measurement"
)

// Epoch is the FIT time origin. Absolute timestamps count seconds from it.
var Epoch = time.Date(1989, time.December, 31, 0, 0, 0, 0, time.UTC)

// timestampField decodes an absolute timestamp reading into a time.Time.
type timestampField struct {
	base
}

// Timestamp returns the descriptor for an absolute timestamp field counting
// seconds since the FIT epoch.
func Timestamp(name string) Field {
	return &timestampField{base{name: name}}
}

func (f *timestampField) Convert(raw, invalid int64, sys measurement.System) []*Value {
	if raw == invalid {
		return []*Value{newValue(f, time.Time{}, false, nil)}
	}
	ts := Epoch.Add(time.Duration(raw) * time.Second)
	return []*Value{newValue(f, ts, true, map[string]any{f.name: ts})}
}

func (f *timestampField) Reconvert(value any, sys measurement.System) map[string]any {
	return map[string]any{f.name: value}
}

// timestamp16Field carries the raw 16-bit rolling counter. Unrolling it
// against the last absolute timestamp is the decoder's job, not the
// field's.
type timestamp16Field struct {
	base
}

// Timestamp16 returns the descriptor for the rolling 16-bit timestamp
// counter field.
func Timestamp16() Field {
	return &timestamp16Field{base{name: "timestamp_16"}}
}

func (f *timestamp16Field) Convert(raw, invalid int64, sys measurement.System) []*Value {
	if raw == invalid {
		return []*Value{newValue(f, uint16(0), false, nil)}
	}
	return []*Value{newValue(f, uint16(raw), true, nil)}
}

func (f *timestamp16Field) Reconvert(value any, sys measurement.System) map[string]any {
	return map[string]any{f.name: value}
}
