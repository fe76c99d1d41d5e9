package models

import "time"

// Data Transfer Objects

type CreateWorkItemRequest struct {
	OldWorkID string `json:"old_work_id" validate:"max=64"`
	WorkName  string `json:"work_name" validate:"required,min=1,max=255"`
	WorkLink  string `json:"work_link" validate:"required,url,max=2048"`
	WorkLevel string `json:"work_level" validate:"required,max=32"`
}

type CreatePackRequest struct {
	PackID    int    `json:"pack_id,omitempty"`
	PackDesc  string `json:"pack_desc" validate:"required,min=1,max=255"`
	BroadArea string `json:"broad_area" validate:"required,max=64"`
	// RawIDList is newline-delimited; each token is a numeric work_id or a
	// legacy alias.
	RawIDList string `json:"work_ids" validate:"required"`
}

type CreatePackResponse struct {
	PackID     int       `json:"pack_id"`
	TotalWorks int       `json:"total_works"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AssignRequest struct {
	Students []string `json:"students" validate:"required,min=1,dive,required"`
	PackID   int      `json:"pack_id" validate:"required,gt=0"`
	Force    bool     `json:"force"`
}

type ConflictItem struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	ExistingPack int    `json:"existing_pack"`
}

// AssignmentResult is the per-student outcome of one assignment run. When
// Conflict is set the run was a dry-run and nothing was written for that
// student.
type AssignmentResult struct {
	Student       string         `json:"student"`
	Success       bool           `json:"success"`
	Conflict      bool           `json:"conflict"`
	ConflictItems []ConflictItem `json:"conflict_items,omitempty"`
	RowsAdded     int            `json:"rows_added"`
	Message       string         `json:"message"`
}

type MarkCompleteRequest struct {
	Username string `json:"username" validate:"required"`
	PackID   int    `json:"pack_id" validate:"required,gt=0"`
	WorkID   int    `json:"work_id" validate:"required,gt=0"`
}

// FineTuneRequest is the unconstrained admin override: any status, any
// score, any incorrect summary.
type FineTuneRequest struct {
	Username  string  `json:"username" validate:"required"`
	PackID    int     `json:"pack_id" validate:"required,gt=0"`
	WorkID    int     `json:"work_id" validate:"required,gt=0"`
	Status    string  `json:"status" validate:"required"`
	Score     *string `json:"score,omitempty"`
	Incorrect *string `json:"incorrect,omitempty"`
}

type RecordViewRequest struct {
	Username string `json:"username" validate:"required"`
	PackID   int    `json:"pack_id" validate:"required,gt=0"`
	WorkID   int    `json:"work_id" validate:"required,gt=0"`
}

type DonePackRequest struct {
	Username string `json:"username" validate:"required"`
}

type StartNextRequest struct {
	BatchSize int `json:"batch_size" validate:"gte=0,lte=20"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Phone   string `json:"phone" validate:"max=32"`
	Message string `json:"message" validate:"required,min=1,max=500"`
}

// PackView is one display group of a student's queue.
type PackView struct {
	PackID      int            `json:"pack_id"`
	PackDesc    string         `json:"pack_desc"`
	DisplayDesc string         `json:"display_desc"`
	Done        bool           `json:"done"`
	Works       []AssignedWork `json:"works"`
}

type CatalogResponse struct {
	Works []WorkItem `json:"works"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

type PacksResponse struct {
	Packs []PackWithStats `json:"packs"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
