package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultCommentPage = 50

	metaSentByRole      = "sentByRole"
	metaUserDisplayName = "userDisplayName"
)

type SendCommentInput struct {
	Content     string
	CommentType models.CommentType
	Metadata    map[string]interface{}
}

type ListCommentsQuery struct {
	Limit       int
	Offset      int
	CommentType models.CommentType
}

// CommentService accepts live comments behind the session-state and mute
// gates and serves them back in stream order.
type CommentService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewCommentService(db *gorm.DB, publisher events.Publisher) *CommentService {
	return &CommentService{db: db, publisher: publisher, now: time.Now}
}

// Send checks, in order: session exists, session accepts comments, sender
// is not muted, content is valid.
func (s *CommentService) Send(ctx context.Context, p *principal.Principal, sessionID uuid.UUID, in SendCommentInput) (*models.LiveComment, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}

	var comment models.LiveComment
	var session *models.LiveSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = findSession(tx, sessionID)
		if err != nil {
			return err
		}
		if !session.Status.AcceptsComments() {
			return ErrSessionNotActive
		}

		now := s.now()
		muted, err := isMuted(tx, sessionID, p.ID, now)
		if err != nil {
			return err
		}
		if muted {
			return ErrMuted
		}

		content := strings.TrimSpace(in.Content)
		if content == "" {
			return validationError("content is required")
		}
		commentType := in.CommentType
		if commentType == "" {
			commentType = models.CommentGeneral
		}
		if !commentType.Valid() {
			return validationError("invalid comment_type %q", commentType)
		}

		comment = models.LiveComment{
			SessionID:   sessionID,
			SenderID:    p.ID,
			Content:     content,
			CommentType: commentType,
			Metadata:    senderMetadata(p, session, in.Metadata),
			SentAt:      now,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		if session.VideoID != nil {
			return bumpCounter(tx, *session.VideoID, "comments_count", 1)
		}
		return nil
	})
	if err != nil {
		return nil, wrapTx("send comment", err)
	}

	e := events.New(events.TypeCommentSent)
	e.ActorID = p.ID.String()
	e.SessionID = sessionID.String()
	if session.VideoID != nil {
		e.VideoID = session.VideoID.String()
	}
	e.Payload = map[string]interface{}{"comment_id": comment.ID, "comment_type": string(comment.CommentType)}
	emit(ctx, s.publisher, e)
	return &comment, nil
}

// List returns a page of the session's comments oldest first. The row id
// breaks ties between comments sent in the same instant.
func (s *CommentService) List(ctx context.Context, sessionID uuid.UUID, q ListCommentsQuery) ([]models.LiveComment, error) {
	db := s.db.WithContext(ctx)
	if _, err := findSession(db, sessionID); err != nil {
		return nil, err
	}
	if q.CommentType != "" && !q.CommentType.Valid() {
		return nil, validationError("invalid comment_type %q", q.CommentType)
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	query := db.Where("session_id = ?", sessionID)
	if q.CommentType != "" {
		query = query.Where("comment_type = ?", q.CommentType)
	}

	comments := []models.LiveComment{}
	if err := query.Order("id ASC").
		Limit(clampLimit(q.Limit, defaultCommentPage)).
		Offset(q.Offset).
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// senderMetadata merges caller metadata with the sender identity keys,
// which always win.
func senderMetadata(p *principal.Principal, session *models.LiveSession, extra map[string]interface{}) datatypes.JSONMap {
	meta := make(datatypes.JSONMap, len(extra)+2)
	for k, v := range extra {
		meta[k] = v
	}

	role := "viewer"
	switch {
	case p.ID == session.HostID:
		role = "host"
	case p.Has(principal.RoleAdmin):
		role = principal.RoleAdmin
	case p.Has(principal.RoleStaff):
		role = principal.RoleStaff
	case p.Has(principal.RoleCreator):
		role = principal.RoleCreator
	}
	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		name = "Anonymous"
	}

	meta[metaSentByRole] = role
	meta[metaUserDisplayName] = name
	return meta
}
