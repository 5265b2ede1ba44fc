// Package audit computes field-level deltas between two snapshots of a
// protected collection and turns them into human-readable security
// notifications. The diff runs against the snapshot immediately before a
// mutation and the snapshot immediately after; its output is the sole basis
// for audit emails about record loss and record updates.
package audit

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// FieldChange describes one tracked field whose normalized value differs
// between the two snapshots.
type FieldChange struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// RecordChange pairs the old and new versions of an updated record with the
// per-field changes that were detected.
type RecordChange struct {
	Old     models.Record `json:"old"`
	New     models.Record `json:"new"`
	Changes []FieldChange `json:"changes"`
}

// ChangeSet is the result of diffing two snapshots of one protected
// collection, indexed by normalized record id.
type ChangeSet struct {
	Deleted map[string]models.Record `json:"deleted"`
	Updated map[string]RecordChange  `json:"updated"`
}

// Empty reports whether the diff found neither deletions nor updates.
func (c ChangeSet) Empty() bool {
	return len(c.Deleted) == 0 && len(c.Updated) == 0
}

// TrackedFields returns the fields the engine compares for the given
// protected collection. Untracked fields never register as changes.
func TrackedFields(collectionKey string) []string {
	switch collectionKey {
	case models.KeyClients:
		return []string{"nombre", "producto_enlace", "monto_pagado", "direccion_envio", "notas"}
	case models.KeyTransactions:
		return []string{"tipo", "monto", "cliente", "descripcion"}
	default:
		return nil
	}
}

// Diff indexes both snapshots by id and classifies every old record:
// ids absent from the new snapshot are deletions; ids present in both with
// at least one tracked field whose normalized representation differs are
// updates. Records only present in the new snapshot (additions) are not the
// audit engine's concern.
func Diff(oldSnapshot, newSnapshot []models.Record, trackedFields []string) ChangeSet {
	oldIdx := models.IndexRecords(oldSnapshot)
	newIdx := models.IndexRecords(newSnapshot)

	cs := ChangeSet{
		Deleted: make(map[string]models.Record),
		Updated: make(map[string]RecordChange),
	}

	for id, oldRec := range oldIdx {
		newRec, ok := newIdx[id]
		if !ok {
			cs.Deleted[id] = oldRec
			continue
		}

		var changes []FieldChange
		for _, field := range trackedFields {
			from := Normalize(oldRec[field])
			to := Normalize(newRec[field])
			if from != to {
				changes = append(changes, FieldChange{Field: field, From: from, To: to})
			}
		}
		if len(changes) > 0 {
			cs.Updated[id] = RecordChange{Old: oldRec, New: newRec, Changes: changes}
		}
	}

	return cs
}

// Normalize renders a field value as a comparable, human-presentable string:
// booleans as "true"/"false", nil as the empty string, objects and arrays as
// their canonical JSON text, numbers without a spurious fractional part, and
// everything else via its default string form. This is what keeps value-type
// drift ("1" vs 1) from registering as a change.
func Normalize(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case bool:
		if value {
			return "true"
		}
		return "false"
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(value, 10)
	case map[string]any, []any:
		text, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(text)
	default:
		return fmt.Sprintf("%v", value)
	}
}
