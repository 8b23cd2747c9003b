// Package stream reads whole FIT byte streams: it validates the file
// header and CRCs, tracks definition messages per local message type, and
// hands every data message to the record decoder with one decode context
// per file.
package stream

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edaniels/golog"
	"github.com/tormoder/fit/dyncrc16"

	fitdecode "github.com/lucasjlepore/fit-decoder"
	"github.com/lucasjlepore/fit-decoder/measurement"
	"github.com/lucasjlepore/fit-decoder/profile"
)

const (
	compressedHeaderMask       = 0x80
	compressedLocalMesgNumMask = 0x60
	compressedTimeMask         = 0x1F
	mesgDefinitionMask         = 0x40
	devDataMask                = 0x20
	localMesgNumMask           = 0x0F

	headerSizeNoCRC = 12
	headerSizeCRC   = 14
)

// Options configures a file decode.
type Options struct {
	// Units selects the display-unit system for rendered sub-values.
	Units measurement.System

	// Profile resolves message/field numbers; nil uses the built-in
	// subset.
	Profile *profile.Profile

	// Logger receives decode diagnostics; nil creates a default logger.
	Logger golog.Logger
}

// Header holds the parsed FIT file header.
type Header struct {
	Size            uint8
	ProtocolVersion uint8
	ProfileVersion  uint16
	DataSize        uint32
	DataType        string
}

// File is the decoded result of one FIT byte stream.
type File struct {
	Header          Header
	HeaderCRCValid  bool
	FileCRCValid    bool
	Records         []*fitdecode.Record
	DefinitionCount int
}

// ReadFile decodes the FIT file at path.
func ReadFile(path string, opts Options) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	return Decode(data, opts)
}

// Decode decodes one FIT byte stream.
func Decode(data []byte, opts Options) (*File, error) {
	prof := opts.Profile
	if prof == nil {
		prof = profile.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = golog.NewLogger("fitdecode")
	}

	if len(data) < headerSizeNoCRC+2 {
		return nil, fmt.Errorf("fit file too short: %d bytes", len(data))
	}
	header, headerCRCValid, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	required := int(header.Size) + int(header.DataSize) + 2
	if len(data) < required {
		return nil, fmt.Errorf("fit file truncated: have %d bytes, need at least %d", len(data), required)
	}
	payload := data[header.Size : int(header.Size)+int(header.DataSize)]
	storedCRC := binary.LittleEndian.Uint16(data[required-2 : required])
	fileCRCValid := storedCRC == dyncrc16.Checksum(data[:required-2])

	out := &File{
		Header:         header,
		HeaderCRCValid: headerCRCValid,
		FileCRCValid:   fileCRCValid,
	}

	decoder := fitdecode.NewDecoder(opts.Units, fitdecode.NewContext(), logger)
	definitions := make(map[uint8]*localDef)

	pos := 0
	for pos < len(payload) {
		headerByte := payload[pos]
		pos++

		var local uint8
		compressed := false
		switch {
		case headerByte&compressedHeaderMask != 0:
			local = (headerByte & compressedLocalMesgNumMask) >> 5
			compressed = true
		case headerByte&mesgDefinitionMask != 0:
			def, newPos, err := parseDefinition(payload, pos, headerByte, prof)
			if err != nil {
				return nil, err
			}
			definitions[headerByte&localMesgNumMask] = def
			out.DefinitionCount++
			pos = newPos
			continue
		default:
			local = headerByte & localMesgNumMask
		}

		def, ok := definitions[local]
		if !ok {
			return nil, fmt.Errorf("data message for undefined local message type %d at byte %d", local, pos-1)
		}
		mr := &messageReader{def: def, data: payload, pos: pos}
		var rec *fitdecode.Record
		if compressed {
			rec, err = decoder.DecodeCompressed(mr, mr, headerByte&compressedTimeMask)
		} else {
			rec, err = decoder.Decode(mr, mr)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s message at byte %d: %w", def.name, pos-1, err)
		}
		out.Records = append(out.Records, rec)
		pos = mr.pos
	}

	return out, nil
}

func parseHeader(data []byte) (Header, bool, error) {
	size := data[0]
	if size != headerSizeNoCRC && size != headerSizeCRC {
		return Header{}, false, fmt.Errorf("invalid fit header size: %d", size)
	}
	if len(data) < int(size) {
		return Header{}, false, fmt.Errorf("truncated fit header: need %d bytes", size)
	}

	h := Header{
		Size:            size,
		ProtocolVersion: data[1],
		ProfileVersion:  binary.LittleEndian.Uint16(data[2:4]),
		DataSize:        binary.LittleEndian.Uint32(data[4:8]),
		DataType:        string(data[8:12]),
	}
	if h.DataType != ".FIT" {
		return Header{}, false, fmt.Errorf("invalid fit data type in header: %q", h.DataType)
	}

	crcValid := true
	if size == headerSizeCRC {
		stored := binary.LittleEndian.Uint16(data[12:14])
		if stored != 0 {
			crcValid = stored == dyncrc16.Checksum(data[:12])
		}
	}
	return h, crcValid, nil
}
