package fields

import (
	"github.com/lucasjlepore/fit-decoder/measurement"
)

// Bit layout of the compressed speed/distance reading, fixed by the format:
// speed in the low 6 bits, distance in the bits from 12 up. Sub-readings
// use 0xFF as their invalid sentinel regardless of the parent sentinel.
const (
	compressedSpeedMask   = 0x3F
	compressedDistShift   = 12
	compressedSubSentinel = 0xFF
)

// compressedSpeedDistance splits one raw reading into independent speed and
// distance field values.
type compressedSpeedDistance struct {
	base
	speed    Field
	distance Field
}

// CompressedSpeedDistance returns the descriptor for the combined
// speed/distance field.
func CompressedSpeedDistance() Field {
	return &compressedSpeedDistance{
		base:     base{name: "compressed_speed_distance"},
		speed:    Speed("speed"),
		distance: DistanceCMToKMs("distance"),
	}
}

func (f *compressedSpeedDistance) Convert(raw, invalid int64, sys measurement.System) []*Value {
	speed := raw & compressedSpeedMask
	distance := raw >> compressedDistShift
	values := f.speed.Convert(speed, compressedSubSentinel, sys)
	return append(values, f.distance.Convert(distance, compressedSubSentinel, sys)...)
}

func (f *compressedSpeedDistance) Reconvert(value any, sys measurement.System) map[string]any {
	return nil
}
