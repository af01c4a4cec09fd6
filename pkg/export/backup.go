package export

import (
	"encoding/json"
	"fmt"
	"time"

	"tableflip.dev/flow/pkg/entry"
)

// Backup is the envelope written for a full export.
type Backup struct {
	ExportDate time.Time     `json:"exportDate"`
	UserID     string        `json:"userId"`
	Entries    []entry.Entry `json:"entries"`
}

func NewBackup(uid string, entries []entry.Entry, now time.Time) Backup {
	if entries == nil {
		entries = []entry.Entry{}
	}
	return Backup{
		ExportDate: now.UTC(),
		UserID:     uid,
		Entries:    entries,
	}
}

func (b Backup) JSON() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// Filename names the file a scoped export is saved to.
func Filename(scope entry.Scope, format Format, now time.Time) string {
	switch scope.Kind {
	case entry.ScopeDay, entry.ScopeMonth:
		return fmt.Sprintf("diary-entries-%s.%s", scope.Value, format)
	default:
		return fmt.Sprintf("diary-export-%s.%s", now.Format(entry.LayoutDate), format)
	}
}
