package incident

import (
	"encoding/json"
	"fmt"

	"github.com/beaconsafe/beacon/internal/models"
	"gorm.io/gorm"
)

// GormStore persists incidents to the Beacon database so history survives
// restarts.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("incident: db is required")
	}
	return &GormStore{db: db}, nil
}

// Insert writes one incident row.
func (s *GormStore) Insert(inc Incident) error {
	row, err := toRow(inc)
	if err != nil {
		return err
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("incident: insert %s: %w", inc.ID, err)
	}
	return nil
}

// Trim deletes rows beyond the newest capacity entries.
func (s *GormStore) Trim(capacity int) error {
	sub := s.db.Model(&models.SosIncident{}).
		Select("id").Order("created_at DESC, id DESC").Limit(capacity)
	if err := s.db.Where("id NOT IN (?)", sub).
		Delete(&models.SosIncident{}).Error; err != nil {
		return fmt.Errorf("incident: trim to %d: %w", capacity, err)
	}
	return nil
}

// Recent returns up to limit incidents, newest first.
func (s *GormStore) Recent(limit int) ([]Incident, error) {
	var rows []models.SosIncident
	if err := s.db.Order("created_at DESC, id DESC").Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("incident: recent: %w", err)
	}

	out := make([]Incident, 0, len(rows))
	for _, row := range rows {
		inc, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, nil
}

// Clear deletes all incident rows.
func (s *GormStore) Clear() error {
	if err := s.db.Where("1 = 1").Delete(&models.SosIncident{}).Error; err != nil {
		return fmt.Errorf("incident: clear: %w", err)
	}
	return nil
}

// toRow converts an Incident to its persisted form.
func toRow(inc Incident) (models.SosIncident, error) {
	recipients, err := json.Marshal(inc.Recipients)
	if err != nil {
		return models.SosIncident{}, fmt.Errorf("incident: encode recipients: %w", err)
	}
	return models.SosIncident{
		ID:         inc.ID,
		Message:    inc.Message,
		SMSSent:    inc.SMSSent,
		CallPlaced: inc.CallPlaced,
		CallNumber: inc.CallNumber,
		Recipients: string(recipients),
		CreatedAt:  inc.Timestamp,
	}, nil
}

// fromRow converts a persisted row back to an Incident.
func fromRow(row models.SosIncident) (Incident, error) {
	var recipients []string
	if row.Recipients != "" {
		if err := json.Unmarshal([]byte(row.Recipients), &recipients); err != nil {
			return Incident{}, fmt.Errorf("incident: decode recipients for %s: %w", row.ID, err)
		}
	}
	return Incident{
		ID:         row.ID,
		Message:    row.Message,
		Timestamp:  row.CreatedAt,
		SMSSent:    row.SMSSent,
		CallPlaced: row.CallPlaced,
		CallNumber: row.CallNumber,
		Recipients: recipients,
	}, nil
}
