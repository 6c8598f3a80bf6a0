package domain

import "time"

// Record is a free-form note captured during the day.
// Records are merged into the evening flow of their date.
type Record struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Source    string    `json:"source"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
