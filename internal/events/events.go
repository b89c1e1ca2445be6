package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeVideoLiked      = "video.liked"
	TypeVideoUnliked    = "video.unliked"
	TypeVideoShared     = "video.shared"
	TypeVideoViewed     = "video.viewed"
	TypeVideoReported   = "video.reported"
	TypeModerationCheck = "video.moderation_check"
	TypeCommentSent     = "live.comment_sent"
	TypeReactionSent    = "live.reaction_sent"
)

// Event is the envelope published after a ledger or moderation write commits.
type Event struct {
	ID        string                 `json:"event_id"`
	Type      string                 `json:"type"`
	ActorID   string                 `json:"actor_id,omitempty"`
	VideoID   string                 `json:"video_id,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

func New(eventType string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Publisher delivers events downstream. Delivery is best-effort; callers
// log failures and never roll back on them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
