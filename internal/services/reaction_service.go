package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultReactionPage = 100

type SendReactionInput struct {
	ReactionType models.ReactionType
	// Intensity defaults to medium.
	Intensity models.Intensity
	Metadata  map[string]interface{}
}

type ListReactionsQuery struct {
	Limit        int
	Offset       int
	ReactionType models.ReactionType
}

// ReactionService carries live reactions. They pass the same session-state
// and mute gates as comments.
type ReactionService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewReactionService(db *gorm.DB, publisher events.Publisher) *ReactionService {
	return &ReactionService{db: db, publisher: publisher, now: time.Now}
}

// Send checks, in order: session exists, session accepts reactions, sender
// is not muted, reaction is valid.
func (s *ReactionService) Send(ctx context.Context, p *principal.Principal, sessionID uuid.UUID, in SendReactionInput) (*models.LiveReaction, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}

	var reaction models.LiveReaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := findSession(tx, sessionID)
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

		if !in.ReactionType.Valid() {
			return validationError("invalid reaction_type %q", in.ReactionType)
		}
		intensity := in.Intensity
		if intensity == "" {
			intensity = models.IntensityMedium
		}
		if !intensity.Valid() {
			return validationError("invalid intensity %q", intensity)
		}

		reaction = models.LiveReaction{
			SessionID:    sessionID,
			SenderID:     p.ID,
			ReactionType: in.ReactionType,
			Intensity:    intensity,
			Metadata:     senderMetadata(p, session, in.Metadata),
			SentAt:       now,
		}
		if err := tx.Create(&reaction).Error; err != nil {
			return err
		}
		return tx.Model(&models.LiveSession{}).Where("id = ?", sessionID).
			UpdateColumn("reactions_count", gorm.Expr("reactions_count + ?", 1)).Error
	})
	if err != nil {
		return nil, wrapTx("send reaction", err)
	}

	e := events.New(events.TypeReactionSent)
	e.ActorID = p.ID.String()
	e.SessionID = sessionID.String()
	e.Payload = map[string]interface{}{
		"reaction_id":   reaction.ID,
		"reaction_type": string(reaction.ReactionType),
		"intensity":     string(reaction.Intensity),
	}
	emit(ctx, s.publisher, e)
	return &reaction, nil
}

// List returns a page of the session's reactions, newest first.
func (s *ReactionService) List(ctx context.Context, sessionID uuid.UUID, q ListReactionsQuery) ([]models.LiveReaction, error) {
	db := s.db.WithContext(ctx)
	if _, err := findSession(db, sessionID); err != nil {
		return nil, err
	}
	if q.ReactionType != "" && !q.ReactionType.Valid() {
		return nil, validationError("invalid reaction_type %q", q.ReactionType)
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	query := db.Where("session_id = ?", sessionID)
	if q.ReactionType != "" {
		query = query.Where("reaction_type = ?", q.ReactionType)
	}

	reactions := []models.LiveReaction{}
	if err := query.Order("id DESC").
		Limit(clampLimit(q.Limit, defaultReactionPage)).
		Offset(q.Offset).
		Find(&reactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	return reactions, nil
}
