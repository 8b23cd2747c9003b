// Package export writes decoded record-message samples to parquet for
// downstream analysis tools.
package export

import (
	"fmt"
	"math"
	"os"
	"time"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	fitdecode "github.com/lucasjlepore/fit-decoder"
	"github.com/lucasjlepore/fit-decoder/measurement"
)

// Row is one record-message sample. Missing readings are NaN with the
// matching validity flag cleared.
type Row struct {
	TSUTCISO     string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	PositionLat  float64 `parquet:"name=position_lat_deg, type=DOUBLE"`
	PositionLon  float64 `parquet:"name=position_long_deg, type=DOUBLE"`
	AltitudeM    float64 `parquet:"name=altitude_m, type=DOUBLE"`
	SpeedMPS     float64 `parquet:"name=speed_mps, type=DOUBLE"`
	DistanceM    float64 `parquet:"name=distance_m, type=DOUBLE"`
	HeartRateBPM float64 `parquet:"name=heart_rate_bpm, type=DOUBLE"`
	CadenceRPM   float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	TemperatureC float64 `parquet:"name=temperature_c, type=DOUBLE"`
	ValidSpeed   bool    `parquet:"name=valid_speed, type=BOOLEAN"`
	ValidHR      bool    `parquet:"name=valid_hr, type=BOOLEAN"`
	RecordIndex  int64   `parquet:"name=record_index, type=INT64"`
}

// Rows projects the record messages out of a decoded file in stream order.
func Rows(records []*fitdecode.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if rec.Type() != "record" {
			continue
		}
		row := Row{
			TSUTCISO:    rec.Timestamp().UTC().Format(time.RFC3339),
			RecordIndex: int64(len(rows)),
		}
		row.PositionLat, _ = fieldFloat(rec, "position_lat")
		row.PositionLon, _ = fieldFloat(rec, "position_long")
		row.AltitudeM, _ = fieldFloat(rec, "altitude")
		row.SpeedMPS, row.ValidSpeed = fieldFloat(rec, "speed")
		row.DistanceM, _ = fieldFloat(rec, "distance")
		row.HeartRateBPM, row.ValidHR = fieldFloat(rec, "heart_rate")
		row.CadenceRPM, _ = fieldFloat(rec, "cadence")
		row.TemperatureC, _ = fieldFloat(rec, "temperature")
		rows = append(rows, row)
	}
	return rows
}

// fieldFloat extracts a numeric view of a field's semantic value: the
// canonical unit for measurements, the value itself for plain numerics.
func fieldFloat(rec *fitdecode.Record, name string) (float64, bool) {
	fv := rec.Get(name)
	if fv == nil {
		return math.NaN(), false
	}
	switch v := fv.Value().(type) {
	case measurement.Measurement:
		return v.Underlying(), true
	case float64:
		return v, true
	default:
		return math.NaN(), false
	}
}

// Marshal renders rows as a snappy-compressed parquet file in memory.
func Marshal(rows []Row) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(Row), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// WriteFile writes the record messages of a decoded file to a parquet file
// at path.
func WriteFile(path string, records []*fitdecode.Record) error {
	data, err := Marshal(Rows(records))
	if err != nil {
		return fmt.Errorf("marshal parquet: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write parquet file: %w", err)
	}
	return nil
}
