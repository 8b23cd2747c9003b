// Package fields describes FIT message fields and the typed values decoded
// from them. A Field is a stateless descriptor: it knows its name, how to
// scale and offset a raw reading, and how to turn the scaled reading into a
// typed value with display-system-aware sub-values.
package fields

import (
	"fmt"

	"github.com/lucasjlepore/fit-decoder/measurement"
)

// Field converts raw readings for one named message field.
type Field interface {
	Name() string

	// Convert decodes one raw reading into one or more field values. Most
	// fields produce exactly one value; compressed fields bit-split the
	// reading and produce one value per encoded quantity. The invalid
	// sentinel goes through the same scale/offset transform as the reading
	// so validity comparisons hold after scaling.
	Convert(raw, invalid int64, sys measurement.System) []*Value

	// Reconvert re-derives only the display sub-values for an
	// already-decoded value. Used when dependent-field resolution swaps
	// this descriptor onto an existing value.
	Reconvert(value any, sys measurement.System) map[string]any
}

// Dependent is the optional capability of a field whose interpretation is
// chosen by the decoded values of sibling control fields.
type Dependent interface {
	Field

	// ControlFields names the sibling fields whose values select the
	// effective descriptor, in resolver argument order.
	ControlFields() []string

	// Resolve returns the descriptor that actually governs the reading.
	// Control values missing from the record arrive as nil.
	Resolve(controls []any) Field
}

// base carries the identity and numeric transform shared by all fields.
// A zero scale means no scaling.
type base struct {
	name   string
	scale  float64
	offset float64
}

func (b base) Name() string { return b.name }

func (b base) transform(raw int64) float64 {
	v := float64(raw)
	if b.scale != 0 {
		v /= b.scale
	}
	return v - b.offset
}

// Numeric is a plain scaled numeric field with no semantic wrapper.
type Numeric struct {
	base
}

// NewNumeric returns a numeric field with the given scale and offset.
func NewNumeric(name string, scale, offset float64) *Numeric {
	return &Numeric{base{name: name, scale: scale, offset: offset}}
}

func (f *Numeric) Convert(raw, invalid int64, sys measurement.System) []*Value {
	v := f.transform(raw)
	iv := f.transform(invalid)
	return []*Value{newValue(f, v, v != iv, nil)}
}

func (f *Numeric) Reconvert(value any, sys measurement.System) map[string]any {
	return map[string]any{f.name: value}
}

// Enum is a numeric field whose display form is a symbolic name.
type Enum struct {
	base
	names map[int64]string
}

// NewEnum returns an enum field that renders known values by name and
// unknown values as "unknown_<n>".
func NewEnum(name string, names map[int64]string) *Enum {
	return &Enum{base: base{name: name}, names: names}
}

func (f *Enum) label(v float64) string {
	if s, ok := f.names[int64(v)]; ok {
		return s
	}
	return fmt.Sprintf("unknown_%d", int64(v))
}

func (f *Enum) Convert(raw, invalid int64, sys measurement.System) []*Value {
	v := f.transform(raw)
	iv := f.transform(invalid)
	return []*Value{newValue(f, v, v != iv, map[string]any{f.name: f.label(v)})}
}

func (f *Enum) Reconvert(value any, sys measurement.System) map[string]any {
	if v, ok := value.(float64); ok {
		return map[string]any{f.name: f.label(v)}
	}
	return map[string]any{f.name: value}
}

// Unknown returns a passthrough field for a field number absent from the
// profile. The raw numeric reading survives under a synthetic name.
func Unknown(number uint8) Field {
	return NewNumeric(fmt.Sprintf("unknown_%d", number), 1, 0)
}

// Dev returns a passthrough field for a developer-data field.
func Dev(developerDataIndex, number uint8) Field {
	return NewNumeric(fmt.Sprintf("dev_%d_%d", developerDataIndex, number), 1, 0)
}
