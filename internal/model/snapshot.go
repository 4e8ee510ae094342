package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the full JSON state the processor returned for an object.
// It is stored as a schema-less blob; only the fields the reconcilers need
// are extracted through the typed accessors below.
type Snapshot map[string]any

// Value implements driver.Valuer.
func (s Snapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *Snapshot) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan snapshot: unsupported type %T", value)
	}

	out := Snapshot{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	*s = out
	return nil
}

// GormDataType tells gorm which column type to use.
func (Snapshot) GormDataType() string {
	return "jsonb"
}

// SnapshotFrom converts any JSON-serializable value into a Snapshot.
func SnapshotFrom(v any) (Snapshot, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	out := Snapshot{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return out, nil
}

// Get walks nested objects by key and returns the value found, or nil.
func (s Snapshot) Get(path ...string) any {
	var cur any = map[string]any(s)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// String returns the string at path, or "".
// Expanded objects ({"id": ...}) resolve to their id.
func (s Snapshot) String(path ...string) string {
	switch v := s.Get(path...).(type) {
	case string:
		return v
	case map[string]any:
		id, _ := v["id"].(string)
		return id
	case Snapshot:
		id, _ := v["id"].(string)
		return id
	default:
		return ""
	}
}

// Int64 returns the integer at path and whether it was present.
func (s Snapshot) Int64(path ...string) (int64, bool) {
	switch v := s.Get(path...).(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool returns the boolean at path, or false.
func (s Snapshot) Bool(path ...string) bool {
	b, _ := s.Get(path...).(bool)
	return b
}

// Object returns the nested object at path, or nil.
func (s Snapshot) Object(path ...string) Snapshot {
	m, ok := asMap(s.Get(path...))
	if !ok {
		return nil
	}
	return Snapshot(m)
}

// Objects returns the list of nested objects at path.
func (s Snapshot) Objects(path ...string) []Snapshot {
	list, ok := s.Get(path...).([]any)
	if !ok {
		return nil
	}
	out := make([]Snapshot, 0, len(list))
	for _, item := range list {
		if m, ok := asMap(item); ok {
			out = append(out, Snapshot(m))
		}
	}
	return out
}

// Time converts a unix-seconds timestamp at path. Null or absent yields nil.
func (s Snapshot) Time(path ...string) *time.Time {
	sec, ok := s.Int64(path...)
	if !ok || sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Snapshot:
		return m, true
	default:
		return nil, false
	}
}
