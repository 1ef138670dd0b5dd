package domain

import "time"

// Record is one persisted outcome row.
type Record struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Rule      Rule      `json:"validation_rule"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows a record listing.
// An empty FileName matches every file. Limit <= 0 means no limit.
type Filter struct {
	FileName string
	Limit    int
}

// Match reports whether rec passes the file name constraint.
func (f Filter) Match(rec Record) bool {
	return f.FileName == "" || f.FileName == rec.FileName
}
