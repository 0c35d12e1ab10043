package models

import "time"

// Announcement is a front-page notice. Mode and Category are optional
// filters: a NULL mode (or category) means the announcement applies to all
// modes (or categories), which list filtering must honor.
type Announcement struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Mode      *string   `json:"mode,omitempty" db:"mode"`
	Category  *string   `json:"category,omitempty" db:"category"`
	Published bool      `json:"published" db:"published"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
