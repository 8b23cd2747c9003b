package fields

import (
	"github.com/lucasjlepore/fit-decoder/measurement"
)

// objectField converts a scaled reading into a unit-bearing measurement and
// renders it for the active display system. The scale/offset transform is
// applied identically to the reading and the invalid sentinel before
// construction so the measurement's validity comparison holds.
type objectField struct {
	base
	construct func(value, invalid float64) measurement.Measurement
	render    func(m measurement.Measurement, sys measurement.System) float64
}

func (f *objectField) Convert(raw, invalid int64, sys measurement.System) []*Value {
	m := f.construct(f.transform(raw), f.transform(invalid))
	return []*Value{newValue(f, m, m.Valid(), f.Reconvert(m, sys))}
}

func (f *objectField) Reconvert(value any, sys measurement.System) map[string]any {
	m, ok := value.(measurement.Measurement)
	if !ok {
		return nil
	}
	return map[string]any{f.name: f.render(m, sys)}
}

// Height returns the descriptor for a user height reading in centimeters.
func Height() Field {
	return &objectField{
		base:      base{name: "height"},
		construct: func(v, iv float64) measurement.Measurement { return measurement.DistanceFromCM(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Distance).FeetOrMeters(sys)
		},
	}
}

// Weight returns the descriptor for a body weight reading in 0.1 kg units.
func Weight(name string) Field {
	return &objectField{
		base:      base{name: name, scale: 10},
		construct: func(v, iv float64) measurement.Measurement { return measurement.WeightFromKilograms(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Weight).LbsOrKgs(sys)
		},
	}
}

// Speed returns the descriptor for a speed reading in millimeters per second.
func Speed(name string) Field {
	return &objectField{
		base:      base{name: name},
		construct: func(v, iv float64) measurement.Measurement { return measurement.SpeedFromMMPS(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Speed).MPHOrKPH(sys)
		},
	}
}

// DistanceCMToKMs returns the descriptor for an accumulated distance
// reading in centimeters rendered as kilometers or miles.
func DistanceCMToKMs(name string) Field {
	return &objectField{
		base:      base{name: name},
		construct: func(v, iv float64) measurement.Measurement { return measurement.DistanceFromCM(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Distance).KMsOrMiles(sys)
		},
	}
}

// DistanceCMToMeters returns the descriptor for a distance reading in
// centimeters rendered as feet or meters.
func DistanceCMToMeters(name string) Field {
	return &objectField{
		base:      base{name: name},
		construct: func(v, iv float64) measurement.Measurement { return measurement.DistanceFromCM(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Distance).FeetOrMeters(sys)
		},
	}
}

// DistanceMMToMeters returns the descriptor for a distance reading in
// millimeters rendered as feet or meters.
func DistanceMMToMeters(name string) Field {
	return &objectField{
		base:      base{name: name},
		construct: func(v, iv float64) measurement.Measurement { return measurement.DistanceFromMM(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Distance).FeetOrMeters(sys)
		},
	}
}

// DistanceMM returns the descriptor for a small distance reading in 0.1 mm
// units rendered as inches or millimeters.
func DistanceMM(name string) Field {
	return &objectField{
		base:      base{name: name, scale: 10},
		construct: func(v, iv float64) measurement.Measurement { return measurement.DistanceFromMM(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Distance).InchesOrMM(sys)
		},
	}
}

// Altitude returns the descriptor for an altitude reading with the extended
// range transform (scale 5, offset 500 meters).
func Altitude(name string) Field {
	return &objectField{
		base:      base{name: name, scale: 5, offset: 500},
		construct: func(v, iv float64) measurement.Measurement { return measurement.DistanceFromMeters(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Distance).FeetOrMeters(sys)
		},
	}
}

// Temperature returns the descriptor for a temperature reading in celsius.
func Temperature(name string) Field {
	return &objectField{
		base:      base{name: name},
		construct: func(v, iv float64) measurement.Measurement { return measurement.TemperatureFromCelsius(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Temperature).FOrC(sys)
		},
	}
}

// Latitude returns the descriptor for a latitude reading in semicircles.
func Latitude(name string) Field {
	return &objectField{
		base:      base{name: name},
		construct: func(v, iv float64) measurement.Measurement { return measurement.LatitudeFromSemicircles(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Latitude).ToDegrees(sys)
		},
	}
}

// Longitude returns the descriptor for a longitude reading in semicircles.
func Longitude(name string) Field {
	return &objectField{
		base:      base{name: name},
		construct: func(v, iv float64) measurement.Measurement { return measurement.LongitudeFromSemicircles(v, iv) },
		render: func(m measurement.Measurement, sys measurement.System) float64 {
			return m.(measurement.Longitude).ToDegrees(sys)
		},
	}
}
