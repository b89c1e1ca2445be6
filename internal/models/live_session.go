package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LiveSession is a broadcast. Only the fields the comment gate needs live here;
// streaming state belongs to the broadcast service.
type LiveSession struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	HostID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"host_id"`
	VideoID   *uuid.UUID    `gorm:"type:uuid;index" json:"video_id,omitempty"`
	Title     string        `gorm:"size:200" json:"title"`
	Status    SessionStatus `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`

	// Maintained in the same transaction as each reaction.
	ReactionsCount int64 `gorm:"not null;default:0" json:"reactions_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *LiveSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SessionMute is one entry of a session's mute list. A nil ExpiresAt mutes
// for the rest of the session.
type SessionMute struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_session_mutes_session_user" json:"session_id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_session_mutes_session_user" json:"user_id"`
	MutedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"muted_by"`
	Reason    string     `gorm:"size:500" json:"reason,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (m *SessionMute) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ActiveAt reports whether the mute still applies at t.
func (m *SessionMute) ActiveAt(t time.Time) bool {
	return m.ExpiresAt == nil || m.ExpiresAt.After(t)
}
