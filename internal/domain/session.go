package domain

import (
	"maps"
	"time"
)

// Session is one caller's in-progress USSD dialogue, keyed by the gateway's
// session identifier.
type Session struct {
	ID          string            `json:"id"`
	Role        Role              `json:"role"`
	KYCData     map[string]string `json:"kycData"`
	Step        int               `json:"step"`
	Submitted   bool              `json:"submitted"`
	PhoneNumber string            `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewSession returns an empty session with no role selected.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Role:      RoleNone,
		KYCData:   map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers never share the KYC map.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.KYCData = maps.Clone(s.KYCData)
	if c.KYCData == nil {
		c.KYCData = map[string]string{}
	}
	return &c
}

// ResetKYC starts a fresh collection for the selected role.
func (s *Session) ResetKYC() {
	s.KYCData = map[string]string{}
	s.Step = 1
}
