// Package fitdecode decodes individual FIT data messages into typed,
// unit-aware field values. Given a previously-parsed record definition and
// a per-file decode context, the decoder produces an immutable Record with
// resolved field values, handles fields whose interpretation depends on
// sibling control fields, merges sub-fields that feed the same accumulating
// quantity, and reconstructs absolute timestamps from the rolling 16-bit
// counter the wire format uses to compress them away.
package fitdecode

import (
	"fmt"
	"time"

	"github.com/edaniels/golog"

	"github.com/lucasjlepore/fit-decoder/fields"
	"github.com/lucasjlepore/fit-decoder/measurement"
)

// Reading is one raw field reading pulled from the byte source: the raw
// numeric value, the declared invalid sentinel for its base type, and the
// number of bytes consumed.
type Reading struct {
	Raw     int64
	Invalid int64
	Size    int
}

// Definition is the schema governing one record: the ordered field
// descriptors and any developer-data descriptors appended after them.
type Definition interface {
	MessageName() string
	Fields() []fields.Field
	HasDevFields() bool
	DevFields() []fields.Field
}

// Reader supplies raw readings for a record's fields in definition order.
// A reader error means the record's structure cannot be trusted and aborts
// the record decode.
type Reader interface {
	ReadField(f fields.Field) (Reading, error)
}

// Decoder decodes data messages for one file. It is not safe for
// concurrent use: the context it threads between records models strictly
// sequential traversal of a single file's record stream.
type Decoder struct {
	units  measurement.System
	ctx    *Context
	logger golog.Logger
}

// NewDecoder returns a decoder that renders display values for the given
// unit system and threads the given per-file context through every record.
func NewDecoder(units measurement.System, ctx *Context, logger golog.Logger) *Decoder {
	return &Decoder{units: units, ctx: ctx, logger: logger}
}

// noTimeOffset marks records whose header carries no compressed time
// offset.
const noTimeOffset = -1

// Decode decodes one data message. Field-level anomalies (missing control
// fields, a nil-valued rolling timestamp) are logged and absorbed; reader
// errors are fatal for the record.
func (d *Decoder) Decode(def Definition, r Reader) (*Record, error) {
	return d.decode(def, r, noTimeOffset)
}

// DecodeCompressed decodes a data message introduced by a compressed record
// header, whose low 5 bits carry a rolling time offset in seconds.
func (d *Decoder) DecodeCompressed(def Definition, r Reader, timeOffset uint8) (*Record, error) {
	return d.decode(def, r, int(timeOffset&0x1F))
}

func (d *Decoder) decode(def Definition, r Reader, timeOffset int) (*Record, error) {
	rec := &Record{
		def:    def,
		fields: make(map[string]*fields.Value),
	}

	provisional, order, err := d.assembleFields(rec, def, r)
	if err != nil {
		return nil, err
	}
	d.resolveFields(rec, provisional, order)

	if err := d.decodeDevFields(rec, def, r); err != nil {
		return nil, err
	}

	d.trackTime(rec, timeOffset)
	return rec, nil
}

// trackTime resolves the record's timestamp and advances the context. An
// absolute timestamp field wins, then a rolling 16-bit counter, then a
// compressed-header time offset; a record with none of the three carries
// the previous timestamp forward.
func (d *Decoder) trackTime(rec *Record, timeOffset int) {
	switch {
	case rec.Get("timestamp") != nil:
		fv := rec.Get("timestamp")
		if ts, ok := fv.Value().(time.Time); ok {
			d.ctx.setAbsolute(ts)
			rec.timestamp = ts
			break
		}
		// An invalid absolute timestamp leaves only the carry-forward.
		rec.timestamp = d.ctx.lastTimestamp
	case rec.Get("timestamp_16") != nil:
		fv := rec.Get("timestamp_16")
		if ts16, ok := fv.Value().(uint16); ok {
			rec.timestamp = d.ctx.unroll(ts16)
			break
		}
		// The counter field exists but decoded to no value; the input is
		// malformed, so fall back to the last known timestamp.
		d.logger.Errorw("timestamp_16 field with no value",
			"message", rec.Type(),
			"fields", rec.Names(),
		)
		rec.timestamp = d.ctx.lastTimestamp
	case timeOffset != noTimeOffset:
		rec.timestamp = d.ctx.advanceCompressed(uint8(timeOffset))
	default:
		rec.timestamp = d.ctx.lastTimestamp
	}
	d.ctx.lastTimestamp = rec.timestamp
}

// assembleFields pulls every raw reading and builds the provisional
// name-to-value mapping. A value that expands into multiple independently
// named field values merges into existing entries by accumulation; a plain
// value inserts (or overwrites) under its own field name.
func (d *Decoder) assembleFields(rec *Record, def Definition, r Reader) (map[string]*fields.Value, []string, error) {
	provisional := make(map[string]*fields.Value)
	var order []string

	insert := func(name string, fv *fields.Value) {
		if _, ok := provisional[name]; !ok {
			order = append(order, name)
		}
		provisional[name] = fv
	}

	for _, f := range def.Fields() {
		reading, err := r.ReadField(f)
		if err != nil {
			return nil, nil, fmt.Errorf("read field %s: %w", f.Name(), err)
		}
		rec.size += reading.Size

		values := f.Convert(reading.Raw, reading.Invalid, d.units)
		if len(values) > 1 {
			for _, sv := range values {
				formal := sv.Name()
				if existing, ok := provisional[formal]; ok {
					if err := existing.Accumulate(sv); err != nil {
						return nil, nil, fmt.Errorf("merge field %s: %w", formal, err)
					}
					continue
				}
				insert(formal, sv)
			}
			continue
		}
		if len(values) == 1 {
			insert(f.Name(), values[0])
		}
	}
	return provisional, order, nil
}

// resolveFields runs dependent-field resolution in original definition
// order and moves every value into the record under its resolved name.
func (d *Decoder) resolveFields(rec *Record, provisional map[string]*fields.Value, order []string) {
	for _, name := range order {
		fv := provisional[name]
		if dep, ok := fv.Field().(fields.Dependent); ok {
			controls := make([]any, 0, len(dep.ControlFields()))
			for _, control := range dep.ControlFields() {
				controls = append(controls, d.controlValue(provisional, fv, control))
			}
			fv = fv.Resolve(dep.Resolve(controls), d.units)
		}
		rec.insert(fv.Name(), fv)
	}
}

func (d *Decoder) controlValue(provisional map[string]*fields.Value, fv *fields.Value, control string) any {
	cv, ok := provisional[control]
	if !ok {
		d.logger.Debugw("missing control field",
			"control", control,
			"field", fv.Name(),
		)
		return nil
	}
	return cv.Value()
}

func (d *Decoder) decodeDevFields(rec *Record, def Definition, r Reader) error {
	if !def.HasDevFields() {
		return nil
	}
	for _, f := range def.DevFields() {
		reading, err := r.ReadField(f)
		if err != nil {
			return fmt.Errorf("read developer field %s: %w", f.Name(), err)
		}
		rec.size += reading.Size

		values := f.Convert(reading.Raw, reading.Invalid, d.units)
		if len(values) > 0 {
			rec.insert(values[0].Name(), values[0])
		}
	}
	return nil
}
