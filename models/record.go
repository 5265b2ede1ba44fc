package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is one entry of a protected collection (a client or a transaction).
// The frontend stores collections as JSON arrays of loosely-typed objects, so
// a record is a field map rather than a rigid struct. Identity is carried by
// the "id" field; everything else is opaque to the sync core and only
// interpreted by the diff engine through its tracked-field list.
type Record map[string]any

// ID returns the record identifier normalized to a string. Numeric ids
// (float64 after JSON decoding) are rendered without a fractional part so
// `1` and `"1"` identify the same record.
func (r Record) ID() string {
	v, ok := r["id"]
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return fmt.Sprintf("%v", id)
	}
}

// Label returns a short human-readable identification of the record for
// audit summaries: the first non-empty naming field, followed by the id.
func (r Record) Label() string {
	name := ""
	for _, field := range []string{"nombre", "cliente", "descripcion"} {
		if v, ok := r[field].(string); ok && v != "" {
			name = v
			break
		}
	}
	if name == "" {
		name = "(sin nombre)"
	}
	if id := r.ID(); id != "" {
		return fmt.Sprintf("%s (id %s)", name, id)
	}
	return name
}

// DecodeRecords decodes a protected-collection value into its records.
// A missing, null or empty value decodes to an empty collection; any other
// shape than a JSON array is an error.
func DecodeRecords(raw json.RawMessage) ([]Record, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode collection value: %w", err)
	}
	return records, nil
}

// IndexRecords indexes records by normalized id. Records without an id are
// skipped: they cannot be tracked across snapshots.
func IndexRecords(records []Record) map[string]Record {
	idx := make(map[string]Record, len(records))
	for _, r := range records {
		if id := r.ID(); id != "" {
			idx[id] = r
		}
	}
	return idx
}
