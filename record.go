package fitdecode

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucasjlepore/fit-decoder/fields"
)

// Record is one decoded data message: the resolved field values, the
// record's reconstructed timestamp, and the number of raw bytes consumed.
// Records are immutable once returned by the decoder.
type Record struct {
	def       Definition
	fields    map[string]*fields.Value
	order     []string
	timestamp time.Time
	size      int
}

func (r *Record) insert(name string, fv *fields.Value) {
	if _, ok := r.fields[name]; !ok {
		r.order = append(r.order, name)
	}
	r.fields[name] = fv
}

// Type returns the message name of the governing definition.
func (r *Record) Type() string { return r.def.MessageName() }

// Timestamp returns the record's resolved absolute timestamp.
func (r *Record) Timestamp() time.Time { return r.timestamp }

// Size returns the cumulative raw bytes consumed decoding the record.
func (r *Record) Size() int { return r.size }

// Get returns the named field value, or nil when the record has no field
// of that name.
func (r *Record) Get(name string) *fields.Value {
	return r.fields[name]
}

// GetDefault returns the named field value, or the fallback when absent.
func (r *Record) GetDefault(name string, fallback *fields.Value) *fields.Value {
	if fv, ok := r.fields[name]; ok {
		return fv
	}
	return fallback
}

// Names returns the record's field names in decode order.
func (r *Record) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Values returns the record's field values in decode order.
func (r *Record) Values() []*fields.Value {
	out := make([]*fields.Value, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.fields[name])
	}
	return out
}

// Fields returns a copy of the name-to-value mapping.
func (r *Record) Fields() map[string]*fields.Value {
	out := make(map[string]*fields.Value, len(r.fields))
	for name, fv := range r.fields {
		out[name] = fv
	}
	return out
}

// SnapshotOptions controls the dictionary snapshot of a record.
type SnapshotOptions struct {
	// OmitInvalid drops fields whose value is empty.
	OmitInvalid bool

	// FoldTimestamp replaces a timestamp_16 entry with a canonical
	// timestamp entry holding the record's resolved timestamp instead of
	// the raw counter.
	FoldTimestamp bool
}

// Snapshot returns the record as a plain name-to-value map.
func (r *Record) Snapshot(opts SnapshotOptions) map[string]any {
	out := make(map[string]any, len(r.order))
	for _, name := range r.order {
		fv := r.fields[name]
		if name == "timestamp_16" && opts.FoldTimestamp {
			out["timestamp"] = r.timestamp
			continue
		}
		if opts.OmitInvalid && fv.Value() == nil {
			continue
		}
		out[name] = fv.Value()
	}
	return out
}

func (r *Record) String() string {
	parts := make([]string, 0, len(r.order))
	for _, name := range r.order {
		parts = append(parts, r.fields[name].String())
	}
	return fmt.Sprintf("%s: %s", r.Type(), strings.Join(parts, ", "))
}
