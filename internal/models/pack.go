package models

import (
	"strings"
	"time"
)

// WorkPack — именованный упорядоченный набор работ внутри предметной области.
type WorkPack struct {
	PackID      int       `json:"pack_id" db:"pack_id"`
	PackDesc    string    `json:"pack_desc" db:"pack_desc"`
	BroadArea   string    `json:"broad_area" db:"broad_area"`
	IsDeleted   bool      `json:"is_deleted" db:"is_deleted"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// DisplayDesc strips the area-code prefix ("ALG1_Linear Equations" ->
// "Linear Equations"). Descriptions without a prefix pass through unchanged.
func (p WorkPack) DisplayDesc() string {
	return DisplayPackDesc(p.PackDesc)
}

func DisplayPackDesc(desc string) string {
	if i := strings.Index(desc, "_"); i >= 0 {
		return desc[i+1:]
	}
	return desc
}

// PackItem is one row of the ordered pack-contents relation. Position starts
// at 1 and defines work_rank when the pack is expanded onto a student.
type PackItem struct {
	PackID   int `json:"pack_id" db:"pack_id"`
	Position int `json:"position" db:"position"`
	WorkID   int `json:"work_id" db:"work_id"`
}

type PackWithStats struct {
	WorkPack
	TotalWorks int `json:"total_works" db:"total_works"`
}
