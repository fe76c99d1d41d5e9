package models

import (
	"time"
)

// InvalidResultID is the recognized "not a real result" marker produced by
// the parser for test mails and malformed subjects. Reconciliation discards
// it silently.
const InvalidResultID = "INVALID"

// ParsedResult is the structured form of one inbound notification mail.
// ID is either a numeric work_id, a legacy alias, or InvalidResultID.
type ParsedResult struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Time      string `json:"time"`
	Score     string `json:"score"`
	Incorrect string `json:"incorrect"`
}

func (r ParsedResult) IsInvalid() bool {
	return r.ID == "" || r.ID == InvalidResultID
}

// InboundNotification archives one webhook delivery verbatim together with
// whatever the parser made of it. The most recent row doubles as the
// operator-facing "last parsed result" view.
type InboundNotification struct {
	ID         string    `json:"id" db:"id"`
	Sender     string    `json:"sender" db:"sender"`
	Subject    string    `json:"subject" db:"subject"`
	ParsedID   string    `json:"parsed_id" db:"parsed_id"`
	ParsedUser string    `json:"parsed_user" db:"parsed_user"`
	Score      string    `json:"score" db:"score"`
	Incorrect  string    `json:"incorrect" db:"incorrect"`
	RowsDone   int       `json:"rows_done" db:"rows_done"`
	ObjectKey  string    `json:"object_key,omitempty" db:"object_key"`
	ReceivedAt time.Time `json:"received_at" db:"received_at"`
}
