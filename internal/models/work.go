package models

import (
	"strings"
	"time"
)

// WorkItem — единица каталога (упражнение или видео со ссылкой).
type WorkItem struct {
	WorkID    int       `json:"work_id" db:"work_id"`
	OldWorkID *string   `json:"old_work_id,omitempty" db:"old_work_id"`
	WorkName  string    `json:"work_name" db:"work_name"`
	WorkLink  string    `json:"work_link" db:"work_link"`
	WorkLevel string    `json:"work_level" db:"work_level"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsVideo reports whether the work is a self-graded video. Videos carry a
// leading "V" in their display name ("V-Intro", "V12 ..."); they never submit
// a score and never count as assignment conflicts.
func (w WorkItem) IsVideo() bool {
	return IsVideoName(w.WorkName)
}

// IsVideoName is the single canonical video predicate. Both the assignment
// engine and the view aggregator must use it; the filter semantics are
// NOT LIKE 'V%' in SQL terms.
func IsVideoName(name string) bool {
	return strings.HasPrefix(name, "V")
}

type WorkStatus string

const (
	StatusFuture   WorkStatus = "Future"
	StatusAssigned WorkStatus = "Assigned"
	StatusDone     WorkStatus = "Done"
	StatusPast     WorkStatus = "Past"
	StatusXDelete  WorkStatus = "X-Delete"
)

func (ws WorkStatus) String() string {
	return string(ws)
}

// ParseWorkStatus normalizes a raw status value to its canonical casing.
// Historical data mixed 'assigned' and 'Assigned'; every boundary goes
// through here so only the canonical forms reach the store.
func ParseWorkStatus(raw string) (WorkStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "future":
		return StatusFuture, true
	case "assigned":
		return StatusAssigned, true
	case "done":
		return StatusDone, true
	case "past":
		return StatusPast, true
	case "x-delete", "xdelete":
		return StatusXDelete, true
	default:
		return "", false
	}
}

func IsValidWorkStatus(raw string) bool {
	_, ok := ParseWorkStatus(raw)
	return ok
}
