package export

import (
	"math"
	"testing"
	"time"

	"github.com/edaniels/golog"

	fitdecode "github.com/lucasjlepore/fit-decoder"
	"github.com/lucasjlepore/fit-decoder/fields"
	"github.com/lucasjlepore/fit-decoder/measurement"
)

type fakeDefinition struct {
	name   string
	fields []fields.Field
}

func (d *fakeDefinition) MessageName() string       { return d.name }
func (d *fakeDefinition) Fields() []fields.Field    { return d.fields }
func (d *fakeDefinition) HasDevFields() bool        { return false }
func (d *fakeDefinition) DevFields() []fields.Field { return nil }

type fakeReader struct {
	readings []fitdecode.Reading
	n        int
}

func (r *fakeReader) ReadField(fields.Field) (fitdecode.Reading, error) {
	reading := r.readings[r.n]
	r.n++
	return reading, nil
}

func decodeRecords(t *testing.T, start time.Time) []*fitdecode.Record {
	t.Helper()
	decoder := fitdecode.NewDecoder(measurement.Metric, fitdecode.NewContext(), golog.NewTestLogger(t))

	def := &fakeDefinition{
		name: "record",
		fields: []fields.Field{
			fields.Timestamp("timestamp"),
			fields.NewNumeric("heart_rate", 1, 0),
			fields.Speed("speed"),
			fields.DistanceCMToKMs("distance"),
		},
	}
	rawTS := int64(start.Sub(fields.Epoch) / time.Second)

	full, err := decoder.Decode(def, &fakeReader{readings: []fitdecode.Reading{
		{Raw: rawTS, Invalid: 0xFFFFFFFF, Size: 4},
		{Raw: 150, Invalid: 0xFF, Size: 1},
		{Raw: 2500, Invalid: 0xFFFF, Size: 2},
		{Raw: 100000, Invalid: 0xFFFFFFFF, Size: 4},
	}})
	if err != nil {
		t.Fatalf("decode full record: %v", err)
	}

	sparse, err := decoder.Decode(def, &fakeReader{readings: []fitdecode.Reading{
		{Raw: rawTS + 1, Invalid: 0xFFFFFFFF, Size: 4},
		{Raw: 0xFF, Invalid: 0xFF, Size: 1},
		{Raw: 0xFFFF, Invalid: 0xFFFF, Size: 2},
		{Raw: 0xFFFFFFFF, Invalid: 0xFFFFFFFF, Size: 4},
	}})
	if err != nil {
		t.Fatalf("decode sparse record: %v", err)
	}

	other, err := decoder.Decode(&fakeDefinition{
		name:   "monitoring",
		fields: []fields.Field{fields.NewNumeric("heart_rate", 1, 0)},
	}, &fakeReader{readings: []fitdecode.Reading{
		{Raw: 90, Invalid: 0xFF, Size: 1},
	}})
	if err != nil {
		t.Fatalf("decode monitoring record: %v", err)
	}

	return []*fitdecode.Record{full, sparse, other}
}

func TestRows(t *testing.T) {
	start := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	rows := Rows(decodeRecords(t, start))

	// The monitoring message is not a record sample and must be skipped.
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}

	full := rows[0]
	if full.TSUTCISO != "2024-06-01T08:00:00Z" {
		t.Fatalf("timestamp: got %q", full.TSUTCISO)
	}
	if full.HeartRateBPM != 150 || !full.ValidHR {
		t.Fatalf("heart rate: got %v valid=%t", full.HeartRateBPM, full.ValidHR)
	}
	if full.SpeedMPS != 2.5 || !full.ValidSpeed {
		t.Fatalf("speed: got %v valid=%t", full.SpeedMPS, full.ValidSpeed)
	}
	if full.DistanceM != 1000 {
		t.Fatalf("distance: got %v", full.DistanceM)
	}
	if full.RecordIndex != 0 {
		t.Fatalf("record index: got %d", full.RecordIndex)
	}

	sparse := rows[1]
	if !math.IsNaN(sparse.HeartRateBPM) || sparse.ValidHR {
		t.Fatalf("sparse heart rate: got %v valid=%t", sparse.HeartRateBPM, sparse.ValidHR)
	}
	if !math.IsNaN(sparse.SpeedMPS) || sparse.ValidSpeed {
		t.Fatalf("sparse speed: got %v valid=%t", sparse.SpeedMPS, sparse.ValidSpeed)
	}
	if sparse.RecordIndex != 1 {
		t.Fatalf("sparse record index: got %d", sparse.RecordIndex)
	}
}

func TestMarshal(t *testing.T) {
	start := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	data, err := Marshal(Rows(decodeRecords(t, start)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty parquet output")
	}
	// Parquet files start and end with the magic tag.
	if string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
		t.Fatal("output is not a parquet file")
	}
}
