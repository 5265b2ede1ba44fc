package audit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

// maxListedEntries caps how many deleted/updated records a notification
// lists verbatim; anything beyond collapses into a single "... y N más" line
// per category so a bulk wipe cannot produce an unreadable email.
const maxListedEntries = 5

func collectionTitle(collectionKey string) string {
	switch collectionKey {
	case models.KeyClients:
		return "Clientes"
	case models.KeyTransactions:
		return "Transacciones"
	default:
		return collectionKey
	}
}

// Summarize renders a ChangeSet as the plain-text body of a security
// notification. Entries are listed in stable id order.
func Summarize(collectionKey string, cs ChangeSet) string {
	var b strings.Builder
	title := collectionTitle(collectionKey)

	if len(cs.Deleted) > 0 {
		fmt.Fprintf(&b, "%s eliminados (%d):\n", title, len(cs.Deleted))

		ids := make([]string, 0, len(cs.Deleted))
		for id := range cs.Deleted {
			ids = append(ids, id)
		}
		sortIDs(ids)

		for i, id := range ids {
			if i == maxListedEntries {
				fmt.Fprintf(&b, "... y %d más\n", len(ids)-maxListedEntries)
				break
			}
			fmt.Fprintf(&b, "- %s\n", cs.Deleted[id].Label())
		}
	}

	if len(cs.Updated) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s actualizados (%d):\n", title, len(cs.Updated))

		ids := make([]string, 0, len(cs.Updated))
		for id := range cs.Updated {
			ids = append(ids, id)
		}
		sortIDs(ids)

		for i, id := range ids {
			if i == maxListedEntries {
				fmt.Fprintf(&b, "... y %d más\n", len(ids)-maxListedEntries)
				break
			}
			change := cs.Updated[id]
			fmt.Fprintf(&b, "- %s: %s\n", change.New.Label(), formatChanges(change.Changes))
		}
	}

	return b.String()
}

// sortIDs orders record ids numerically when both sides parse as integers,
// falling back to lexical order for the rest. Frontend-generated ids are
// numeric strings, so "2" must list before "10".
func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		if errA == nil && errB == nil {
			return a < b
		}
		if errA == nil {
			return true
		}
		if errB == nil {
			return false
		}
		return ids[i] < ids[j]
	})
}

func formatChanges(changes []FieldChange) string {
	parts := make([]string, 0, len(changes))
	for _, ch := range changes {
		parts = append(parts, fmt.Sprintf("%s: %q -> %q", ch.Field, ch.From, ch.To))
	}
	return strings.Join(parts, "; ")
}
