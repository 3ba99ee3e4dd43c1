package models

import "time"

// SosIncident is the persisted form of one completed dispatch attempt.
// Immutable once created; rows are only removed by capacity trimming or an
// explicit history clear.
type SosIncident struct {
	ID         string `gorm:"primaryKey;size:36"`
	Message    string `gorm:"type:text"`
	SMSSent    bool
	CallPlaced bool
	CallNumber string `gorm:"size:32"`
	Recipients string `gorm:"type:text"` // JSON-encoded list of phone strings
	CreatedAt  time.Time
}
