package models

import (
	"time"
)

// AssignedWork — материализация одной работы из пака в очереди студента.
// Composite identity (username, pack_id, work_id); at most one row per
// student per pack per work. Catalog fields are snapshots taken at
// assignment time, a later catalog edit does not rewrite them.
type AssignedWork struct {
	Username    string     `json:"username" db:"username"`
	PackID      int        `json:"pack_id" db:"pack_id"`
	WorkID      int        `json:"work_id" db:"work_id"`
	WorkName    string     `json:"work_name" db:"work_name"`
	WorkLink    string     `json:"work_link" db:"work_link"`
	WorkLevel   string     `json:"work_level" db:"work_level"`
	PackDesc    string     `json:"pack_desc" db:"pack_desc"`
	WorkRank    int        `json:"work_rank" db:"work_rank"`
	WorkStatus  WorkStatus `json:"work_status" db:"work_status"`
	WorkScore   string     `json:"work_score" db:"work_score"`
	Incorrect   string     `json:"incorrect" db:"incorrect"`
	WorkViews   int        `json:"work_views" db:"work_views"`
	LastUpdated time.Time  `json:"last_updated" db:"last_updated"`
}

// DonePack marks an entire pack complete for one student. Purely a display
// override: rows keep their own statuses, the marker only filters views.
type DonePack struct {
	Username    string    `json:"username" db:"username"`
	PackID      int       `json:"pack_id" db:"pack_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}
