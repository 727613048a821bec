package entity

// ActivityLog is one row of the audit sheet.
type ActivityLog struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Action    string `json:"action"`
}

// ActivityLogFromRecord builds an ActivityLog from a decoded sheet row.
func ActivityLogFromRecord(rec map[string]interface{}) ActivityLog {
	return ActivityLog{
		Timestamp: cellString(rec, "timestamp", "date", "time"),
		User:      cellString(rec, "user", "username"),
		Action:    cellString(rec, "action"),
	}
}
