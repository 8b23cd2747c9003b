package fields

import (
	"github.com/lucasjlepore/fit-decoder/measurement"
)

// Manufacturer identifiers that select product interpretations.
const (
	ManufacturerGarmin      = 1
	ManufacturerDynastream  = 15
	ManufacturerDevelopment = 255
)

// Manufacturer returns the enum descriptor for the manufacturer field.
func Manufacturer() Field {
	return NewEnum("manufacturer", map[int64]string{
		ManufacturerGarmin:      "garmin",
		ManufacturerDynastream:  "dynastream",
		ManufacturerDevelopment: "development",
	})
}

// garminProducts is a working subset of the Garmin product catalog.
var garminProducts = map[int64]string{
	1036: "edge_500",
	1169: "edge_800",
	1765: "fr920xt",
	1836: "edge_1000",
	2050: "fenix_3",
	2697: "fenix_5",
	3110: "fr245",
}

// productField decodes a product number whose meaning depends on the
// manufacturer field decoded in the same record.
type productField struct {
	base
}

// Product returns the manufacturer-dependent product descriptor.
func Product() Field {
	return &productField{base{name: "product"}}
}

func (f *productField) Convert(raw, invalid int64, sys measurement.System) []*Value {
	v := f.transform(raw)
	iv := f.transform(invalid)
	return []*Value{newValue(f, v, v != iv, map[string]any{f.name: v})}
}

func (f *productField) Reconvert(value any, sys measurement.System) map[string]any {
	return map[string]any{f.name: value}
}

func (f *productField) ControlFields() []string {
	return []string{"manufacturer"}
}

// Resolve picks the descriptor matching the decoded manufacturer. An
// unknown or missing manufacturer keeps the generic product descriptor.
func (f *productField) Resolve(controls []any) Field {
	if len(controls) == 0 {
		return f
	}
	if m, ok := controlNumber(controls[0]); ok && m == ManufacturerGarmin {
		return NewEnum("garmin_product", garminProducts)
	}
	return f
}

func controlNumber(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint16:
		return int64(n), true
	default:
		return 0, false
	}
}
