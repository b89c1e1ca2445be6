package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxMuteReasonLen = 500

type MuteInput struct {
	UserID uuid.UUID
	Reason string
	// Duration of zero mutes for the rest of the session.
	Duration time.Duration
}

// LiveSessionService is the directory of live sessions: lifecycle status
// and per-session mute lists.
type LiveSessionService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLiveSessionService(db *gorm.DB) *LiveSessionService {
	return &LiveSessionService{db: db, now: time.Now}
}

func (s *LiveSessionService) Create(ctx context.Context, p *principal.Principal, title string, videoID *uuid.UUID) (*models.LiveSession, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	if !principal.CanAuthor(p) {
		return nil, ErrNotCreator
	}
	session := &models.LiveSession{
		HostID:  p.ID,
		VideoID: videoID,
		Title:   strings.TrimSpace(title),
		Status:  models.SessionScheduled,
	}
	if utf8.RuneCountInString(session.Title) > maxTitleLen {
		return nil, validationError("title must be at most %d characters", maxTitleLen)
	}

	// The video side of the link is written in the same transaction.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if videoID != nil {
			video, err := findVideo(tx, *videoID)
			if err != nil {
				return err
			}
			if !principal.CanMutate(p, video.CreatorID) {
				return ErrNotOwner
			}
			if video.LiveSessionID != nil {
				return ErrVideoLinked
			}
		}
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		if videoID == nil {
			return nil
		}
		result := tx.Model(&models.VideoPost{}).
			Where("id = ? AND live_session_id IS NULL", *videoID).
			UpdateColumns(map[string]interface{}{"live_session_id": session.ID, "is_live": true})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVideoLinked
		}
		return nil
	})
	if err != nil {
		return nil, wrapTx("create live session", err)
	}
	return session, nil
}

func (s *LiveSessionService) Get(ctx context.Context, sessionID uuid.UUID) (*models.LiveSession, error) {
	return findSession(s.db.WithContext(ctx), sessionID)
}

// Transition moves a session along scheduled → starting → live → ended,
// or to cancelled from any state before ended.
func (s *LiveSessionService) Transition(ctx context.Context, p *principal.Principal, sessionID uuid.UUID, to models.SessionStatus) (*models.LiveSession, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	db := s.db.WithContext(ctx)
	session, err := findSession(db, sessionID)
	if err != nil {
		return nil, err
	}
	if !principal.CanHost(p, session.HostID) {
		return nil, ErrNotHost
	}
	if !to.Valid() {
		return nil, validationError("invalid session status %q", to)
	}
	if !session.Status.CanTransitionTo(to) {
		return nil, newError(KindInvalidState, "cannot move session from %s to %s", session.Status, to)
	}

	now := s.now()
	updates := map[string]interface{}{"status": to, "updated_at": now}
	switch to {
	case models.SessionLive:
		updates["started_at"] = now
	case models.SessionEnded, models.SessionCancelled:
		updates["ended_at"] = now
	}
	result := db.Model(&models.LiveSession{}).
		Where("id = ? AND status = ?", sessionID, session.Status).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update live session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, newError(KindInvalidState, "session status changed, retry")
	}

	slog.Info("live session transitioned", "session_id", sessionID.String(), "from", string(session.Status), "to", string(to))
	return findSession(db, sessionID)
}

// Mute adds userID to the session's mute list. An expired mute is renewed;
// an active one is a conflict.
func (s *LiveSessionService) Mute(ctx context.Context, p *principal.Principal, sessionID uuid.UUID, in MuteInput) (*models.SessionMute, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}

	var mute models.SessionMute
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := findSession(tx, sessionID)
		if err != nil {
			return err
		}
		if !principal.CanHost(p, session.HostID) {
			return ErrNotHost
		}
		switch {
		case in.UserID == uuid.Nil:
			return validationError("user_id is required")
		case in.UserID == session.HostID:
			return validationError("the host cannot be muted")
		case in.Duration < 0:
			return validationError("duration must not be negative")
		case utf8.RuneCountInString(in.Reason) > maxMuteReasonLen:
			return validationError("reason must be at most %d characters", maxMuteReasonLen)
		}

		now := s.now()
		var expiresAt *time.Time
		if in.Duration > 0 {
			t := now.Add(in.Duration)
			expiresAt = &t
		}

		err = tx.Where("session_id = ? AND user_id = ?", sessionID, in.UserID).First(&mute).Error
		switch {
		case err == nil:
			if mute.ActiveAt(now) {
				return ErrAlreadyMuted
			}
			mute.MutedBy = p.ID
			mute.Reason = in.Reason
			mute.ExpiresAt = expiresAt
			mute.UpdatedAt = now
			return tx.Save(&mute).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			mute = models.SessionMute{
				SessionID: sessionID,
				UserID:    in.UserID,
				MutedBy:   p.ID,
				Reason:    in.Reason,
				ExpiresAt: expiresAt,
			}
			if err := tx.Create(&mute).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrAlreadyMuted
				}
				return err
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, wrapTx("mute user", err)
	}
	return &mute, nil
}

func (s *LiveSessionService) Unmute(ctx context.Context, p *principal.Principal, sessionID, userID uuid.UUID) error {
	if p == nil {
		return ErrNotAuthenticated
	}
	db := s.db.WithContext(ctx)
	session, err := findSession(db, sessionID)
	if err != nil {
		return err
	}
	if !principal.CanHost(p, session.HostID) {
		return ErrNotHost
	}

	result := db.Where("session_id = ? AND user_id = ?", sessionID, userID).Delete(&models.SessionMute{})
	if result.Error != nil {
		return fmt.Errorf("failed to unmute user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotMuted
	}
	return nil
}

// IsMuted reports whether userID has a mute in the session that is active at t.
func (s *LiveSessionService) IsMuted(ctx context.Context, sessionID, userID uuid.UUID, at time.Time) (bool, error) {
	return isMuted(s.db.WithContext(ctx), sessionID, userID, at)
}

// ListMutes returns the session's mutes that are active now.
func (s *LiveSessionService) ListMutes(ctx context.Context, p *principal.Principal, sessionID uuid.UUID) ([]models.SessionMute, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	db := s.db.WithContext(ctx)
	session, err := findSession(db, sessionID)
	if err != nil {
		return nil, err
	}
	if !principal.CanHost(p, session.HostID) {
		return nil, ErrNotHost
	}

	var mutes []models.SessionMute
	if err := db.Where("session_id = ? AND (expires_at IS NULL OR expires_at > ?)", sessionID, s.now()).
		Order("created_at ASC").Find(&mutes).Error; err != nil {
		return nil, fmt.Errorf("failed to list mutes: %w", err)
	}
	return mutes, nil
}

func findSession(db *gorm.DB, sessionID uuid.UUID) (*models.LiveSession, error) {
	var session models.LiveSession
	if err := db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load live session: %w", err)
	}
	return &session, nil
}

func isMuted(db *gorm.DB, sessionID, userID uuid.UUID, at time.Time) (bool, error) {
	var mute models.SessionMute
	err := db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&mute).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load mute: %w", err)
	}
	return mute.ActiveAt(at), nil
}

// wrapTx passes service errors through and wraps storage failures.
func wrapTx(action string, err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
