package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a record a fresh UUID before insert. Keys are generated in Go
// so the same schema works on PostgreSQL and SQLite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error             { assignID(&u.ID); return nil }
func (t *RefreshToken) BeforeCreate(*gorm.DB) error     { assignID(&t.ID); return nil }
func (p *PregnancyProfile) BeforeCreate(*gorm.DB) error { assignID(&p.ID); return nil }
func (r *Reminder) BeforeCreate(*gorm.DB) error         { assignID(&r.ID); return nil }
func (e *EmergencyContact) BeforeCreate(*gorm.DB) error { assignID(&e.ID); return nil }
func (s *SymptomLog) BeforeCreate(*gorm.DB) error       { assignID(&s.ID); return nil }
func (h *HealthContent) BeforeCreate(*gorm.DB) error    { assignID(&h.ID); return nil }
func (s *Subscription) BeforeCreate(*gorm.DB) error     { assignID(&s.ID); return nil }
func (p *PaymentAttempt) BeforeCreate(*gorm.DB) error   { assignID(&p.ID); return nil }
func (l *SystemLog) BeforeCreate(*gorm.DB) error        { assignID(&l.ID); return nil }

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&PregnancyProfile{},
		&Reminder{},
		&EmergencyContact{},
		&SymptomLog{},
		&HealthContent{},
		&Subscription{},
		&PaymentAttempt{},
		&SystemLog{},
	}
}
