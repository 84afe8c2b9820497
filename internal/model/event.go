package model

import "time"

// Event is a calendar entry without completion semantics.
type Event struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	Title     string
	Date      time.Time
	Location  string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
