package models

type PackAssignedEvent struct {
	Student   string `json:"student"`
	PackID    int    `json:"pack_id"`
	RowsAdded int    `json:"rows_added"`
	Forced    bool   `json:"forced"`
	Timestamp int64  `json:"timestamp"`
}

type ResultRecordedEvent struct {
	Username  string `json:"username"`
	WorkID    int    `json:"work_id"`
	Score     string `json:"score"`
	RowsDone  int    `json:"rows_done"`
	Timestamp int64  `json:"timestamp"`
}
