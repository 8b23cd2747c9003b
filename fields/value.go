package fields

import (
	"fmt"
	"sort"

	"github.com/lucasjlepore/fit-decoder/measurement"
)

// Value is one decoded field value: the descriptor that produced it, the
// typed primary value, its validity, and the named display sub-values.
// Values are provisional while a record is being assembled; once the record
// is finished they are never modified.
type Value struct {
	field Field
	value any
	valid bool
	subs  map[string]any
}

func newValue(field Field, value any, valid bool, subs map[string]any) *Value {
	return &Value{field: field, value: value, valid: valid, subs: subs}
}

// NewValue builds a field value directly. Exported for decoders and tests
// that assemble values outside of Field.Convert.
func NewValue(field Field, value any, valid bool, subs map[string]any) *Value {
	return newValue(field, value, valid, subs)
}

// Field returns the descriptor currently governing this value.
func (v *Value) Field() Field { return v.field }

// Name returns the formal field name, i.e. the governing descriptor's name.
func (v *Value) Name() string { return v.field.Name() }

// Valid reports whether the reading differed from its invalid sentinel.
func (v *Value) Valid() bool { return v.valid }

// Value returns the typed primary value, or nil when the reading was the
// invalid sentinel.
func (v *Value) Value() any {
	if !v.valid {
		return nil
	}
	return v.value
}

// Sub returns the named display sub-value, or nil when absent.
func (v *Value) Sub(name string) any { return v.subs[name] }

// SubNames returns the display sub-value names in stable order.
func (v *Value) SubNames() []string {
	if len(v.subs) == 0 {
		return nil
	}
	names := make([]string, 0, len(v.subs))
	for name := range v.subs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns a new value governed by the given descriptor. The decoded
// primary value and validity carry over unchanged; only the display
// sub-values are regenerated through the new descriptor.
func (v *Value) Resolve(field Field, sys measurement.System) *Value {
	return &Value{
		field: field,
		value: v.value,
		valid: v.valid,
		subs:  field.Reconvert(v.value, sys),
	}
}

// Accumulate merges another value decoded for the same formal field into
// this one by adding the underlying numeric quantities. A record may
// deliver the same logical quantity both directly and through a compressed
// companion field; dropping either contribution would under-report it.
func (v *Value) Accumulate(other *Value) error {
	switch cur := v.value.(type) {
	case measurement.Measurement:
		om, ok := other.value.(measurement.Measurement)
		if !ok {
			return fmt.Errorf("cannot accumulate %T into measurement field %s", other.value, v.Name())
		}
		v.value = cur.Add(om.Underlying())
	case float64:
		of, ok := other.value.(float64)
		if !ok {
			return fmt.Errorf("cannot accumulate %T into numeric field %s", other.value, v.Name())
		}
		v.value = cur + of
	default:
		return fmt.Errorf("field %s holds non-accumulable type %T", v.Name(), v.value)
	}
	return nil
}

func (v *Value) String() string {
	if !v.valid {
		return fmt.Sprintf("%s: invalid", v.Name())
	}
	return fmt.Sprintf("%s: %v", v.Name(), v.value)
}
