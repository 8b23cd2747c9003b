package stream

import (
	"encoding/binary"
	"fmt"
	"math"

	fitdecode "github.com/lucasjlepore/fit-decoder"
	"github.com/lucasjlepore/fit-decoder/fields"
	"github.com/lucasjlepore/fit-decoder/profile"
)

type baseType uint8

const (
	baseEnum    baseType = 0x00
	baseSint8   baseType = 0x01
	baseUint8   baseType = 0x02
	baseSint16  baseType = 0x83
	baseUint16  baseType = 0x84
	baseSint32  baseType = 0x85
	baseUint32  baseType = 0x86
	baseString  baseType = 0x07
	baseFloat32 baseType = 0x88
	baseFloat64 baseType = 0x89
	baseUint8z  baseType = 0x0A
	baseUint16z baseType = 0x8B
	baseUint32z baseType = 0x8C
	baseByte    baseType = 0x0D
	baseSint64  baseType = 0x8E
	baseUint64  baseType = 0x8F
	baseUint64z baseType = 0x90
)

type baseSpec struct {
	size    int
	signed  bool
	float   bool
	invalid int64
}

var baseSpecs = map[baseType]baseSpec{
	baseEnum:    {size: 1, invalid: 0xFF},
	baseSint8:   {size: 1, signed: true, invalid: 0x7F},
	baseUint8:   {size: 1, invalid: 0xFF},
	baseSint16:  {size: 2, signed: true, invalid: 0x7FFF},
	baseUint16:  {size: 2, invalid: 0xFFFF},
	baseSint32:  {size: 4, signed: true, invalid: 0x7FFFFFFF},
	baseUint32:  {size: 4, invalid: 0xFFFFFFFF},
	baseString:  {size: 1, invalid: 0},
	baseFloat32: {size: 4, float: true, invalid: int64(math.MaxInt64)},
	baseFloat64: {size: 8, float: true, invalid: int64(math.MaxInt64)},
	baseUint8z:  {size: 1, invalid: 0},
	baseUint16z: {size: 2, invalid: 0},
	baseUint32z: {size: 4, invalid: 0},
	baseByte:    {size: 1, invalid: 0xFF},
	baseSint64:  {size: 8, signed: true, invalid: math.MaxInt64},
	baseUint64:  {size: 8, invalid: -1},
	baseUint64z: {size: 8, invalid: 0},
}

// boundField couples one field definition with the descriptor resolved
// from the profile.
type boundField struct {
	descriptor fields.Field
	size       int
	base       baseType
}

// localDef is the decoded definition message for one local message type.
type localDef struct {
	global    uint16
	name      string
	arch      binary.ByteOrder
	fields    []boundField
	devFields []boundField
}

func parseDefinition(payload []byte, pos int, headerByte uint8, prof *profile.Profile) (*localDef, int, error) {
	read := func(n int) ([]byte, error) {
		if pos+n > len(payload) {
			return nil, fmt.Errorf("definition record truncated at byte %d", pos)
		}
		out := payload[pos : pos+n]
		pos += n
		return out, nil
	}

	if _, err := read(1); err != nil { // reserved
		return nil, 0, err
	}
	archRaw, err := read(1)
	if err != nil {
		return nil, 0, err
	}
	var arch binary.ByteOrder
	switch archRaw[0] {
	case 0:
		arch = binary.LittleEndian
	case 1:
		arch = binary.BigEndian
	default:
		return nil, 0, fmt.Errorf("invalid architecture byte %d", archRaw[0])
	}

	globalBytes, err := read(2)
	if err != nil {
		return nil, 0, err
	}
	global := arch.Uint16(globalBytes)

	countRaw, err := read(1)
	if err != nil {
		return nil, 0, err
	}
	def := &localDef{
		global: global,
		name:   prof.MessageName(global),
		arch:   arch,
		fields: make([]boundField, 0, countRaw[0]),
	}
	for i := 0; i < int(countRaw[0]); i++ {
		raw, err := read(3)
		if err != nil {
			return nil, 0, err
		}
		def.fields = append(def.fields, boundField{
			descriptor: prof.Field(global, raw[0]),
			size:       int(raw[1]),
			base:       baseType(raw[2]),
		})
	}

	if headerByte&devDataMask != 0 {
		devCountRaw, err := read(1)
		if err != nil {
			return nil, 0, err
		}
		def.devFields = make([]boundField, 0, devCountRaw[0])
		for i := 0; i < int(devCountRaw[0]); i++ {
			raw, err := read(3)
			if err != nil {
				return nil, 0, err
			}
			def.devFields = append(def.devFields, boundField{
				descriptor: fields.Dev(raw[2], raw[0]),
				size:       int(raw[1]),
				base:       devBase(int(raw[1])),
			})
		}
	}

	return def, pos, nil
}

// devBase guesses a numeric base type for a developer field from its size;
// developer definitions carry no base type of their own at this layer.
func devBase(size int) baseType {
	switch size {
	case 2:
		return baseUint16
	case 4:
		return baseUint32
	case 8:
		return baseUint64
	default:
		return baseUint8
	}
}

// messageReader adapts one data message's bytes to the decoder's
// Definition and Reader interfaces. Reads are sequential in definition
// order, standard fields first, then developer fields.
type messageReader struct {
	def  *localDef
	data []byte
	pos  int
	next int
}

func (m *messageReader) MessageName() string { return m.def.name }

func (m *messageReader) Fields() []fields.Field {
	out := make([]fields.Field, 0, len(m.def.fields))
	for _, bf := range m.def.fields {
		out = append(out, bf.descriptor)
	}
	return out
}

func (m *messageReader) HasDevFields() bool { return len(m.def.devFields) > 0 }

func (m *messageReader) DevFields() []fields.Field {
	out := make([]fields.Field, 0, len(m.def.devFields))
	for _, bf := range m.def.devFields {
		out = append(out, bf.descriptor)
	}
	return out
}

func (m *messageReader) ReadField(f fields.Field) (fitdecode.Reading, error) {
	total := len(m.def.fields) + len(m.def.devFields)
	if m.next >= total {
		return fitdecode.Reading{}, fmt.Errorf("no field definition left for %s", f.Name())
	}
	var bf boundField
	if m.next < len(m.def.fields) {
		bf = m.def.fields[m.next]
	} else {
		bf = m.def.devFields[m.next-len(m.def.fields)]
	}
	m.next++

	if m.pos+bf.size > len(m.data) {
		return fitdecode.Reading{}, fmt.Errorf("data message truncated reading %s", f.Name())
	}
	raw := m.data[m.pos : m.pos+bf.size]
	m.pos += bf.size

	value, invalid := decodeRaw(raw, bf.base, m.def.arch)
	return fitdecode.Reading{Raw: value, Invalid: invalid, Size: bf.size}, nil
}

// decodeRaw turns one field's bytes into a numeric reading plus the
// sentinel for its base type. Strings and multi-element arrays are
// consumed but surface as invalid readings; the supported field subset is
// numeric.
func decodeRaw(raw []byte, bt baseType, arch binary.ByteOrder) (int64, int64) {
	spec, ok := baseSpecs[bt]
	if !ok || bt == baseString || len(raw) != spec.size {
		return 0xFF, 0xFF
	}

	var u uint64
	switch spec.size {
	case 1:
		u = uint64(raw[0])
	case 2:
		u = uint64(arch.Uint16(raw))
	case 4:
		u = uint64(arch.Uint32(raw))
	case 8:
		u = arch.Uint64(raw)
	}

	if spec.float {
		if bt == baseFloat32 {
			if u == 0xFFFFFFFF {
				return spec.invalid, spec.invalid
			}
			return int64(math.Float32frombits(uint32(u))), spec.invalid
		}
		if u == math.MaxUint64 {
			return spec.invalid, spec.invalid
		}
		return int64(math.Float64frombits(u)), spec.invalid
	}

	if spec.signed {
		switch spec.size {
		case 1:
			return int64(int8(u)), spec.invalid
		case 2:
			return int64(int16(u)), spec.invalid
		case 4:
			return int64(int32(u)), spec.invalid
		default:
			return int64(u), spec.invalid
		}
	}
	return int64(u), spec.invalid
}
