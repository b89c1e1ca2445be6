package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LiveReaction is an append-only burst on a live session. Like comments,
// the auto-increment ID orders the stream.
type LiveReaction struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	SessionID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_live_reactions_session_type" json:"session_id"`
	SenderID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReactionType ReactionType      `gorm:"size:20;not null;index:idx_live_reactions_session_type" json:"reaction_type"`
	Intensity    Intensity         `gorm:"size:10;not null" json:"intensity"`
	Metadata     datatypes.JSONMap `json:"metadata"`
	SentAt       time.Time         `gorm:"not null" json:"sent_at"`
}
