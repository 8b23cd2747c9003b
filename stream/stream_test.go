package stream

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"github.com/tormoder/fit"
	"github.com/tormoder/fit/dyncrc16"

	fitdecode "github.com/lucasjlepore/fit-decoder"
	"github.com/lucasjlepore/fit-decoder/fields"
	"github.com/lucasjlepore/fit-decoder/measurement"
)

func TestDecodeEncodedFile(t *testing.T) {
	start := time.Date(2026, 2, 26, 23, 0, 0, 0, time.UTC)
	data := buildTestFIT(t, start)

	file, err := Decode(data, Options{Units: measurement.Metric, Logger: golog.NewTestLogger(t)})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !file.HeaderCRCValid {
		t.Fatal("header CRC must validate")
	}
	if !file.FileCRCValid {
		t.Fatal("file CRC must validate")
	}
	if file.DefinitionCount == 0 {
		t.Fatal("expected definition messages")
	}

	var recs []*fitdecode.Record
	for _, rec := range file.Records {
		if rec.Type() == "record" {
			recs = append(recs, rec)
		}
	}
	if len(recs) != 1 {
		t.Fatalf("record messages: got %d, want 1", len(recs))
	}
	if got := recs[0].Get("heart_rate").Value().(float64); got != 135 {
		t.Fatalf("heart_rate: got %v", got)
	}
	if !recs[0].Timestamp().Equal(start.Add(30 * time.Second)) {
		t.Fatalf("record timestamp: got %v", recs[0].Timestamp())
	}
}

func TestTimestamp16Stream(t *testing.T) {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	data := buildMonitoringFIT(t, base, []uint16{1000, 1050})

	file, err := Decode(data, Options{Units: measurement.Metric, Logger: golog.NewTestLogger(t)})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !file.FileCRCValid {
		t.Fatal("file CRC must validate")
	}
	if file.DefinitionCount != 2 {
		t.Fatalf("definitions: got %d", file.DefinitionCount)
	}
	if len(file.Records) != 3 {
		t.Fatalf("records: got %d", len(file.Records))
	}
	for _, rec := range file.Records {
		if rec.Type() != "monitoring" {
			t.Fatalf("message type: got %q", rec.Type())
		}
	}

	if !file.Records[0].Timestamp().Equal(base) {
		t.Fatalf("absolute timestamp: got %v", file.Records[0].Timestamp())
	}
	// First counter sample anchors at the absolute timestamp, the second
	// advances it by the counter delta.
	if !file.Records[1].Timestamp().Equal(base) {
		t.Fatalf("first counter timestamp: got %v", file.Records[1].Timestamp())
	}
	if !file.Records[2].Timestamp().Equal(base.Add(50 * time.Second)) {
		t.Fatalf("second counter timestamp: got %v", file.Records[2].Timestamp())
	}

	if got := file.Records[1].Get("heart_rate").Value().(float64); got != 88 {
		t.Fatalf("heart_rate: got %v", got)
	}
}

func TestCompressedHeaderStream(t *testing.T) {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rawTS := uint32(base.Sub(fields.Epoch) / time.Second)
	base5 := uint8(rawTS & compressedTimeMask)

	var payload bytes.Buffer

	// Local type 0: monitoring with an absolute timestamp.
	payload.Write([]byte{0x40, 0x00, 0x00, 55, 0x00, 1})
	payload.Write([]byte{253, 4, 0x86})
	payload.WriteByte(0x00)
	if err := binary.Write(&payload, binary.LittleEndian, rawTS); err != nil {
		t.Fatalf("write timestamp: %v", err)
	}

	// Local type 1: heart rate only; its records use compressed headers.
	payload.Write([]byte{0x41, 0x00, 0x00, 55, 0x00, 1})
	payload.Write([]byte{27, 1, 0x02})

	// Header byte: compressed bit, local type in bits 5-6, 5-bit offset.
	payload.Write([]byte{0x80 | 1<<5 | (base5+5)&compressedTimeMask, 88})
	payload.Write([]byte{0x80 | 1<<5 | (base5+7)&compressedTimeMask, 90})

	file, err := Decode(wrapPayload(payload.Bytes()), Options{Units: measurement.Metric, Logger: golog.NewTestLogger(t)})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(file.Records) != 3 {
		t.Fatalf("records: got %d", len(file.Records))
	}
	if !file.Records[1].Timestamp().Equal(base.Add(5 * time.Second)) {
		t.Fatalf("first compressed timestamp: got %v", file.Records[1].Timestamp())
	}
	if !file.Records[2].Timestamp().Equal(base.Add(7 * time.Second)) {
		t.Fatalf("second compressed timestamp: got %v", file.Records[2].Timestamp())
	}
	if got := file.Records[2].Get("heart_rate").Value().(float64); got != 90 {
		t.Fatalf("heart_rate: got %v", got)
	}
}

func TestCorruptFileCRC(t *testing.T) {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	data := buildMonitoringFIT(t, base, []uint16{1000})
	data[len(data)-1] ^= 0xFF

	file, err := Decode(data, Options{Units: measurement.Metric, Logger: golog.NewTestLogger(t)})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if file.FileCRCValid {
		t.Fatal("mangled CRC must not validate")
	}
	if len(file.Records) != 2 {
		t.Fatalf("records: got %d", len(file.Records))
	}
}

func TestUndefinedLocalType(t *testing.T) {
	payload := []byte{0x03} // data record, local type never defined
	data := wrapPayload(payload)
	if _, err := Decode(data, Options{Logger: golog.NewTestLogger(t)}); err == nil {
		t.Fatal("expected an error for an undefined local message type")
	}
}

func TestBadHeader(t *testing.T) {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	data := buildMonitoringFIT(t, base, nil)
	copy(data[8:12], ".BAD")
	if _, err := Decode(data, Options{Logger: golog.NewTestLogger(t)}); err == nil {
		t.Fatal("expected an error for a bad data type tag")
	}
}

func buildTestFIT(t *testing.T, start time.Time) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}

	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}

	record := fit.NewRecordMsg()
	record.Timestamp = start.Add(30 * time.Second)
	record.HeartRate = 135
	record.Cadence = 92
	activity.Records = append(activity.Records, record)

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}

// buildMonitoringFIT hand-assembles a stream with one absolute-timestamp
// monitoring record followed by one counter record per given counter value.
func buildMonitoringFIT(t *testing.T, base time.Time, counters []uint16) []byte {
	t.Helper()

	var payload bytes.Buffer

	// Local type 0: monitoring with a single absolute timestamp field.
	payload.Write([]byte{0x40, 0x00, 0x00, 55, 0x00, 1})
	payload.Write([]byte{253, 4, 0x86})

	payload.WriteByte(0x00)
	raw := uint32(base.Sub(fields.Epoch) / time.Second)
	if err := binary.Write(&payload, binary.LittleEndian, raw); err != nil {
		t.Fatalf("write timestamp: %v", err)
	}

	// Local type 1: monitoring with a 16-bit counter and a heart rate.
	payload.Write([]byte{0x41, 0x00, 0x00, 55, 0x00, 2})
	payload.Write([]byte{26, 2, 0x84})
	payload.Write([]byte{27, 1, 0x02})

	hr := uint8(88)
	for _, counter := range counters {
		payload.WriteByte(0x01)
		if err := binary.Write(&payload, binary.LittleEndian, counter); err != nil {
			t.Fatalf("write counter: %v", err)
		}
		payload.WriteByte(hr)
		hr += 2
	}

	return wrapPayload(payload.Bytes())
}

func wrapPayload(payload []byte) []byte {
	var out bytes.Buffer
	out.WriteByte(headerSizeNoCRC)
	out.WriteByte(0x10)
	binary.Write(&out, binary.LittleEndian, uint16(2132))
	binary.Write(&out, binary.LittleEndian, uint32(len(payload)))
	out.WriteString(".FIT")
	out.Write(payload)
	binary.Write(&out, binary.LittleEndian, dyncrc16.Checksum(out.Bytes()))
	return out.Bytes()
}
