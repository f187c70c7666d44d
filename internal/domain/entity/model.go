package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 form every stored timestamp is normalized to.
// Fixed width UTC so lexical order equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DateLayout is the calendar-date form used for travel dates
const DateLayout = "2006-01-02"

// DefaultCurrency applies when a priced entity omits its currency
const DefaultCurrency = "USD"

// Record is the plain store representation of an entity
type Record map[string]interface{}

// Now is the clock used for timestamps
var Now = func() time.Time {
	return time.Now().UTC()
}

// Meta holds the metadata shared by every document
type Meta struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (m Meta) GetID() string {
	return m.ID
}

// Exists reports whether the entity has been persisted
func (m Meta) Exists() bool {
	return m.ID != ""
}

// normalize fills in missing timestamps and keeps updatedAt >= createdAt
func (m *Meta) normalize(rec Record) {
	m.CreatedAt = NormalizeTimestamp(rec["createdAt"])
	if rec["updatedAt"] == nil {
		m.UpdatedAt = m.CreatedAt
	} else {
		m.UpdatedAt = NormalizeTimestamp(rec["updatedAt"])
	}
	if m.UpdatedAt < m.CreatedAt {
		m.UpdatedAt = m.CreatedAt
	}
}

// Model is the contract every domain entity satisfies
type Model interface {
	GetID() string
	Exists() bool
	ToRecord() Record
	Validate() error
}

// FormatTimestamp renders t in the canonical form
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a canonical or RFC 3339 timestamp
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{TimestampLayout, time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// NormalizeTimestamp converts any supported timestamp representation to the canonical
// ISO-8601 string. Absent or unrecognized values yield the current time; it never fails.
func NormalizeTimestamp(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return FormatTimestamp(Now())
	case string:
		if v == "" {
			return FormatTimestamp(Now())
		}
		t, err := ParseTimestamp(v)
		if err != nil {
			return FormatTimestamp(Now())
		}
		return FormatTimestamp(t)
	case time.Time:
		if v.IsZero() {
			return FormatTimestamp(Now())
		}
		return FormatTimestamp(v)
	case *time.Time:
		if v == nil || v.IsZero() {
			return FormatTimestamp(Now())
		}
		return FormatTimestamp(*v)
	case interface{ AsTime() time.Time }:
		return FormatTimestamp(v.AsTime())
	case interface{ Time() time.Time }:
		return FormatTimestamp(v.Time())
	case interface{ ToTime() time.Time }:
		return FormatTimestamp(v.ToTime())
	}
	return FormatTimestamp(Now())
}

// encodeRecord turns an entity struct into a record. Optional fields use omitempty so
// absent values are left out instead of written as null; the id is never part of it.
func encodeRecord(v interface{}) Record {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("entity: encode %T: %v", v, err))
	}
	rec := Record{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		panic(fmt.Sprintf("entity: encode %T: %v", v, err))
	}
	delete(rec, "id")
	return rec
}

// decodeRecord fills dst from rec
func decodeRecord(rec Record, dst interface{}) error {
	raw, err := json.Marshal(map[string]interface{}(rec))
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode record into %T: %w", dst, err)
	}
	return nil
}

// Merge returns a new record with partial applied on top of base (shallow)
func Merge(base, partial Record) Record {
	out := make(Record, len(base)+len(partial))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// WithUpdates is the sanctioned mutation path: merge the model's record with partial,
// refresh updatedAt and construct a new instance. The original is never touched.
func WithUpdates[T Model](m T, partial Record, fromRecord func(id string, rec Record) (T, error)) (T, error) {
	merged := Merge(m.ToRecord(), partial)
	delete(merged, "id")
	merged["updatedAt"] = FormatTimestamp(Now())
	return fromRecord(m.GetID(), merged)
}

// Codec ties an entity type to its collection and record conversions
type Codec[T Model] struct {
	Collection string
	FromRecord func(id string, rec Record) (T, error)
	ToRecord   func(m T) Record
}

// timestampPtr returns the canonical form of t as a pointer
func timestampPtr(t time.Time) *string {
	s := FormatTimestamp(t)
	return &s
}
