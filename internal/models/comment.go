package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LiveComment is append-only. The auto-increment ID is the stream order;
// SentAt may collide within a millisecond.
type LiveComment struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	SessionID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_live_comments_session_type" json:"session_id"`
	SenderID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"sender_id"`
	Content     string            `gorm:"type:text;not null" json:"content"`
	CommentType CommentType       `gorm:"size:20;not null;index:idx_live_comments_session_type" json:"comment_type"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	SentAt      time.Time         `gorm:"not null" json:"sent_at"`
}
