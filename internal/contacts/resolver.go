package contacts

import (
	"strings"

	"github.com/beaconsafe/beacon/internal/models"
)

// Resolution is the outcome of resolving a registry for dispatch:
// a sanitized recipient list plus the single contact selected for voice-call
// escalation. Primary is nil when the registry is empty.
type Resolution struct {
	Recipients []string
	Primary    *models.EmergencyContact
}

// Resolve turns a registry snapshot into a Resolution. Recipients are the
// trimmed, non-empty phone numbers in registry order. The primary is the
// designated contact if it still exists, else the first emergency-typed
// contact, else the first contact. Resolve is pure and never fails; an empty
// registry yields no recipients and no primary.
func Resolve(reg Registry) Resolution {
	var res Resolution
	for _, c := range reg.Contacts {
		phone := strings.TrimSpace(c.Phone)
		if phone == "" {
			continue
		}
		res.Recipients = append(res.Recipients, phone)
	}

	if len(reg.Contacts) == 0 {
		return res
	}

	if reg.PrimaryID != 0 {
		for i := range reg.Contacts {
			if reg.Contacts[i].ID == reg.PrimaryID {
				res.Primary = &reg.Contacts[i]
				return res
			}
		}
	}
	for i := range reg.Contacts {
		if reg.Contacts[i].Type == models.ContactEmergency {
			res.Primary = &reg.Contacts[i]
			return res
		}
	}
	res.Primary = &reg.Contacts[0]
	return res
}
