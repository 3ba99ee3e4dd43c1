// Package contacts manages the emergency contact registry and resolves it
// into dispatch recipients.
package contacts

import (
	"fmt"

	"github.com/beaconsafe/beacon/internal/models"
	"gorm.io/gorm"
)

// Registry is an immutable snapshot of the contact list taken at dispatch
// time. PrimaryID is the designated-primary contact ID, or 0 when no
// designation is set.
type Registry struct {
	Contacts  []models.EmergencyContact
	PrimaryID uint
}

// Repo reads and writes the contact registry. Dispatch only ever calls
// Snapshot; mutations belong to the contact-management surface.
type Repo struct {
	db *gorm.DB
}

// NewRepo creates a Repo backed by the given database.
func NewRepo(db *gorm.DB) (*Repo, error) {
	if db == nil {
		return nil, fmt.Errorf("contacts: db is required")
	}
	return &Repo{db: db}, nil
}

// Snapshot returns the current registry: contacts in registry order plus the
// designated-primary ID (0 if none).
func (r *Repo) Snapshot() (Registry, error) {
	var list []models.EmergencyContact
	if err := r.db.Order("position ASC, id ASC").Find(&list).Error; err != nil {
		return Registry{}, fmt.Errorf("contacts: snapshot: %w", err)
	}

	var setting models.RegistrySetting
	err := r.db.First(&setting, "id = ?", 1).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return Registry{}, fmt.Errorf("contacts: snapshot setting: %w", err)
	}

	return Registry{Contacts: list, PrimaryID: setting.PrimaryContactID}, nil
}

// Add appends a contact at the end of the registry order and returns it.
func (r *Repo) Add(c models.EmergencyContact) (*models.EmergencyContact, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("contacts: name is required")
	}
	if c.Type == "" {
		c.Type = models.ContactFamily
	}

	var maxPos int
	r.db.Model(&models.EmergencyContact{}).Select("COALESCE(MAX(position), -1)").Scan(&maxPos)
	c.Position = maxPos + 1

	if err := r.db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("contacts: add: %w", err)
	}
	return &c, nil
}

// Remove deletes a contact. If the removed contact was the designated
// primary, the designation is cleared so primary selection falls back to
// the automatic rules.
func (r *Repo) Remove(id uint) error {
	result := r.db.Delete(&models.EmergencyContact{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("contacts: remove %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("contacts: contact not found: %d", id)
	}

	var setting models.RegistrySetting
	if err := r.db.First(&setting, "id = ?", 1).Error; err == nil && setting.PrimaryContactID == id {
		setting.PrimaryContactID = 0
		if err := r.db.Save(&setting).Error; err != nil {
			return fmt.Errorf("contacts: clear primary designation: %w", err)
		}
	}
	return nil
}

// SetPrimary designates a contact as the primary. The contact must exist.
func (r *Repo) SetPrimary(id uint) error {
	var c models.EmergencyContact
	if err := r.db.First(&c, "id = ?", id).Error; err != nil {
		return fmt.Errorf("contacts: set primary: contact not found: %d", id)
	}

	setting := models.RegistrySetting{ID: 1, PrimaryContactID: id}
	if err := r.db.Save(&setting).Error; err != nil {
		return fmt.Errorf("contacts: set primary %d: %w", id, err)
	}
	return nil
}

// ClearPrimary removes the primary designation, if any.
func (r *Repo) ClearPrimary() error {
	setting := models.RegistrySetting{ID: 1, PrimaryContactID: 0}
	if err := r.db.Save(&setting).Error; err != nil {
		return fmt.Errorf("contacts: clear primary: %w", err)
	}
	return nil
}
