package models

import "time"

// ContactType categorizes an emergency contact.
type ContactType string

const (
	ContactFamily    ContactType = "family"
	ContactEmergency ContactType = "emergency"
	ContactFriend    ContactType = "friend"
)

// EmergencyContact is one entry in the user's contact registry. Only the
// phone number is consumed by dispatch; everything else belongs to the
// contact-management surface.
type EmergencyContact struct {
	ID           uint        `gorm:"primaryKey;autoIncrement"`
	Name         string      `gorm:"size:128;not null"`
	Phone        string      `gorm:"size:32;not null"`
	Type         ContactType `gorm:"size:16;not null;default:family"`
	Relationship string      `gorm:"size:64"`
	Email        string      `gorm:"size:128"`
	Position     int         `gorm:"not null;default:0;index"`
	CreatedAt    time.Time
}

// RegistrySetting holds the single-row registry configuration: the optional
// designated-primary contact. ID is always 1.
type RegistrySetting struct {
	ID               uint `gorm:"primaryKey"`
	PrimaryContactID uint `gorm:"default:0"` // 0 = no designation
	UpdatedAt        time.Time
}
