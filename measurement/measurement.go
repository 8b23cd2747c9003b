// Package measurement provides unit-bearing numeric wrappers for decoded
// FIT field values and their rendering in metric or statute units.
package measurement

import "encoding/json"

// System selects the display-unit convention for rendered values.
type System int

const (
	Metric System = iota
	Statute
)

func (s System) String() string {
	if s == Statute {
		return "statute"
	}
	return "metric"
}

// Measurement is the common surface of all unit-bearing values. Underlying
// returns the value in the type's canonical unit; Add produces a new
// measurement shifted by delta canonical units and is used when two field
// values for the same formal field are merged by accumulation.
type Measurement interface {
	Underlying() float64
	Valid() bool
	Add(delta float64) Measurement
}

// marshalCanonical JSON-encodes a measurement as its canonical-unit value,
// or null when invalid. The wrapper structs would otherwise encode as empty
// objects.
func marshalCanonical(v float64, valid bool) ([]byte, error) {
	if !valid {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

const (
	mmPerMeter     = 1000.0
	cmPerMeter     = 100.0
	metersPerKm    = 1000.0
	feetPerMeter   = 3.2808399
	inchesPerMM    = 0.0393701
	milesPerKm     = 0.6213712
	gramsPerKg     = 1000.0
	lbsPerKg       = 2.2046226
	degPerSemicirc = 180.0 / 2147483648.0
	mpsToKph       = 3.6
	kphToMph       = milesPerKm
)

// Distance is a length in meters.
type Distance struct {
	meters float64
	valid  bool
}

// DistanceFromMM returns a Distance from a millimeter reading, invalid when
// the reading equals the identically-transformed sentinel.
func DistanceFromMM(value, invalid float64) Distance {
	return Distance{meters: value / mmPerMeter, valid: value != invalid}
}

// DistanceFromCM returns a Distance from a centimeter reading.
func DistanceFromCM(value, invalid float64) Distance {
	return Distance{meters: value / cmPerMeter, valid: value != invalid}
}

// DistanceFromMeters returns a Distance from a meter reading.
func DistanceFromMeters(value, invalid float64) Distance {
	return Distance{meters: value, valid: value != invalid}
}

func (d Distance) Underlying() float64 { return d.meters }

func (d Distance) Valid() bool { return d.valid }

func (d Distance) Add(delta float64) Measurement {
	return Distance{meters: d.meters + delta, valid: d.valid}
}

func (d Distance) MarshalJSON() ([]byte, error) { return marshalCanonical(d.meters, d.valid) }

func (d Distance) ToMM() float64     { return d.meters * mmPerMeter }
func (d Distance) ToMeters() float64 { return d.meters }
func (d Distance) ToKMs() float64    { return d.meters / metersPerKm }
func (d Distance) ToFeet() float64   { return d.meters * feetPerMeter }
func (d Distance) ToInches() float64 { return d.meters * mmPerMeter * inchesPerMM }
func (d Distance) ToMiles() float64  { return d.meters / metersPerKm * milesPerKm }

// FeetOrMeters renders the distance for the given display system.
func (d Distance) FeetOrMeters(sys System) float64 {
	if sys == Statute {
		return d.ToFeet()
	}
	return d.ToMeters()
}

// KMsOrMiles renders the distance for the given display system.
func (d Distance) KMsOrMiles(sys System) float64 {
	if sys == Statute {
		return d.ToMiles()
	}
	return d.ToKMs()
}

// InchesOrMM renders the distance for the given display system.
func (d Distance) InchesOrMM(sys System) float64 {
	if sys == Statute {
		return d.ToInches()
	}
	return d.ToMM()
}

// Speed is a rate in meters per second.
type Speed struct {
	mps   float64
	valid bool
}

// SpeedFromMMPS returns a Speed from a millimeters-per-second reading.
func SpeedFromMMPS(value, invalid float64) Speed {
	return Speed{mps: value / mmPerMeter, valid: value != invalid}
}

// SpeedFromMPS returns a Speed from a meters-per-second reading.
func SpeedFromMPS(value, invalid float64) Speed {
	return Speed{mps: value, valid: value != invalid}
}

func (s Speed) Underlying() float64 { return s.mps }

func (s Speed) Valid() bool { return s.valid }

func (s Speed) Add(delta float64) Measurement {
	return Speed{mps: s.mps + delta, valid: s.valid}
}

func (s Speed) MarshalJSON() ([]byte, error) { return marshalCanonical(s.mps, s.valid) }

func (s Speed) ToMPS() float64 { return s.mps }
func (s Speed) ToKPH() float64 { return s.mps * mpsToKph }
func (s Speed) ToMPH() float64 { return s.mps * mpsToKph * kphToMph }

// MPHOrKPH renders the speed for the given display system.
func (s Speed) MPHOrKPH(sys System) float64 {
	if sys == Statute {
		return s.ToMPH()
	}
	return s.ToKPH()
}

// Weight is a mass in kilograms.
type Weight struct {
	kg    float64
	valid bool
}

// WeightFromGrams returns a Weight from a gram reading.
func WeightFromGrams(value, invalid float64) Weight {
	return Weight{kg: value / gramsPerKg, valid: value != invalid}
}

// WeightFromKilograms returns a Weight from a kilogram reading.
func WeightFromKilograms(value, invalid float64) Weight {
	return Weight{kg: value, valid: value != invalid}
}

func (w Weight) Underlying() float64 { return w.kg }

func (w Weight) Valid() bool { return w.valid }

func (w Weight) Add(delta float64) Measurement {
	return Weight{kg: w.kg + delta, valid: w.valid}
}

func (w Weight) MarshalJSON() ([]byte, error) { return marshalCanonical(w.kg, w.valid) }

func (w Weight) ToKgs() float64 { return w.kg }
func (w Weight) ToLbs() float64 { return w.kg * lbsPerKg }

// LbsOrKgs renders the weight for the given display system.
func (w Weight) LbsOrKgs(sys System) float64 {
	if sys == Statute {
		return w.ToLbs()
	}
	return w.ToKgs()
}

// Temperature is a reading in degrees celsius.
type Temperature struct {
	celsius float64
	valid   bool
}

// TemperatureFromCelsius returns a Temperature from a celsius reading.
func TemperatureFromCelsius(value, invalid float64) Temperature {
	return Temperature{celsius: value, valid: value != invalid}
}

func (t Temperature) Underlying() float64 { return t.celsius }

func (t Temperature) Valid() bool { return t.valid }

func (t Temperature) Add(delta float64) Measurement {
	return Temperature{celsius: t.celsius + delta, valid: t.valid}
}

func (t Temperature) MarshalJSON() ([]byte, error) { return marshalCanonical(t.celsius, t.valid) }

func (t Temperature) ToC() float64 { return t.celsius }
func (t Temperature) ToF() float64 { return t.celsius*9.0/5.0 + 32.0 }

// FOrC renders the temperature for the given display system.
func (t Temperature) FOrC(sys System) float64 {
	if sys == Statute {
		return t.ToF()
	}
	return t.ToC()
}

// Latitude is a geographic angle in degrees.
type Latitude struct {
	degrees float64
	valid   bool
}

// LatitudeFromSemicircles returns a Latitude from a semicircle reading.
func LatitudeFromSemicircles(value, invalid float64) Latitude {
	return Latitude{degrees: value * degPerSemicirc, valid: value != invalid}
}

func (l Latitude) Underlying() float64 { return l.degrees }

func (l Latitude) Valid() bool { return l.valid }

func (l Latitude) Add(delta float64) Measurement {
	return Latitude{degrees: l.degrees + delta, valid: l.valid}
}

func (l Latitude) MarshalJSON() ([]byte, error) { return marshalCanonical(l.degrees, l.valid) }

// ToDegrees renders the angle; geographic angles are system independent.
func (l Latitude) ToDegrees(System) float64 { return l.degrees }

// Longitude is a geographic angle in degrees.
type Longitude struct {
	degrees float64
	valid   bool
}

// LongitudeFromSemicircles returns a Longitude from a semicircle reading.
func LongitudeFromSemicircles(value, invalid float64) Longitude {
	return Longitude{degrees: value * degPerSemicirc, valid: value != invalid}
}

func (l Longitude) Underlying() float64 { return l.degrees }

func (l Longitude) Valid() bool { return l.valid }

func (l Longitude) Add(delta float64) Measurement {
	return Longitude{degrees: l.degrees + delta, valid: l.valid}
}

func (l Longitude) MarshalJSON() ([]byte, error) { return marshalCanonical(l.degrees, l.valid) }

// ToDegrees renders the angle; geographic angles are system independent.
func (l Longitude) ToDegrees(System) float64 { return l.degrees }
