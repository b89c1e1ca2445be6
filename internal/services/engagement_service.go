package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ViewInput is one playback report. Values are stored as given.
type ViewInput struct {
	WatchDuration  float64
	CompletionRate float64
	Device         *models.DeviceInfo
	Location       *models.GeoLocation
	SessionID      string
}

// EngagementService is the ledger of likes, shares and views. Every ledger
// row is written in the same transaction as its VideoPost counter.
type EngagementService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewEngagementService(db *gorm.DB, publisher events.Publisher) *EngagementService {
	return &EngagementService{db: db, publisher: publisher, now: time.Now}
}

func (s *EngagementService) Like(ctx context.Context, p *principal.Principal, videoID uuid.UUID) (*models.VideoPost, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}

	var video *models.VideoPost
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findVideo(tx, videoID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.VideoLike{}).
			Where("video_id = ? AND user_id = ?", videoID, p.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyLiked
		}

		like := models.VideoLike{VideoID: videoID, UserID: p.ID, CreatedAt: s.now()}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyLiked
			}
			return err
		}
		if err := bumpCounter(tx, videoID, "likes_count", 1); err != nil {
			return err
		}

		var err error
		video, err = findVideo(tx, videoID)
		return err
	})
	if err != nil {
		return nil, wrapTx("like video", err)
	}

	e := events.New(events.TypeVideoLiked)
	e.ActorID = p.ID.String()
	e.VideoID = videoID.String()
	e.Payload = map[string]interface{}{"likes_count": video.LikesCount}
	emit(ctx, s.publisher, e)
	return video, nil
}

// Unlike removes the caller's like. The counter never drops below zero;
// a clamped decrement is logged as ledger drift.
func (s *EngagementService) Unlike(ctx context.Context, p *principal.Principal, videoID uuid.UUID) (*models.VideoPost, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}

	var video *models.VideoPost
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findVideo(tx, videoID); err != nil {
			return err
		}

		deleted := tx.Where("video_id = ? AND user_id = ?", videoID, p.ID).Delete(&models.VideoLike{})
		if deleted.Error != nil {
			return deleted.Error
		}
		if deleted.RowsAffected == 0 {
			return ErrNotLiked
		}

		result := tx.Model(&models.VideoPost{}).
			Where("id = ? AND likes_count > 0", videoID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			slog.Warn("likes_count already zero on unlike", "video_id", videoID.String(), "principal_id", p.ID.String())
		}

		var err error
		video, err = findVideo(tx, videoID)
		return err
	})
	if err != nil {
		return nil, wrapTx("unlike video", err)
	}

	e := events.New(events.TypeVideoUnliked)
	e.ActorID = p.ID.String()
	e.VideoID = videoID.String()
	e.Payload = map[string]interface{}{"likes_count": video.LikesCount}
	emit(ctx, s.publisher, e)
	return video, nil
}

// Share records a share. Repeat shares are counted.
func (s *EngagementService) Share(ctx context.Context, p *principal.Principal, videoID uuid.UUID, platform models.SharePlatform) (*models.VideoPost, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	platform = models.SharePlatform(strings.ToLower(strings.TrimSpace(string(platform))))
	if platform == "" {
		platform = models.PlatformInternal
	}
	if !platform.Valid() {
		return nil, validationError("invalid platform %q", platform)
	}

	var video *models.VideoPost
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findVideo(tx, videoID); err != nil {
			return err
		}
		share := models.VideoShare{VideoID: videoID, UserID: p.ID, Platform: platform, CreatedAt: s.now()}
		if err := tx.Create(&share).Error; err != nil {
			return err
		}
		if err := bumpCounter(tx, videoID, "shares_count", 1); err != nil {
			return err
		}
		var err error
		video, err = findVideo(tx, videoID)
		return err
	})
	if err != nil {
		return nil, wrapTx("share video", err)
	}

	e := events.New(events.TypeVideoShared)
	e.ActorID = p.ID.String()
	e.VideoID = videoID.String()
	e.Payload = map[string]interface{}{"platform": string(platform), "shares_count": video.SharesCount}
	emit(ctx, s.publisher, e)
	return video, nil
}

// RecordView appends a view. p may be nil for anonymous viewers, who should
// pass a client session id instead.
func (s *EngagementService) RecordView(ctx context.Context, p *principal.Principal, videoID uuid.UUID, in ViewInput) (*models.VideoView, error) {
	view := models.VideoView{
		VideoID:        videoID,
		SessionID:      strings.TrimSpace(in.SessionID),
		WatchDuration:  in.WatchDuration,
		CompletionRate: in.CompletionRate,
		CreatedAt:      s.now(),
	}
	if p != nil {
		userID := p.ID
		view.UserID = &userID
	}
	if in.Device != nil {
		view.Device = *in.Device
	}
	if in.Location != nil {
		view.Location = *in.Location
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findVideo(tx, videoID); err != nil {
			return err
		}
		if err := tx.Create(&view).Error; err != nil {
			return err
		}
		return bumpCounter(tx, videoID, "views_count", 1)
	})
	if err != nil {
		return nil, wrapTx("record view", err)
	}

	e := events.New(events.TypeVideoViewed)
	if view.UserID != nil {
		e.ActorID = view.UserID.String()
	}
	e.VideoID = videoID.String()
	e.Payload = map[string]interface{}{
		"watch_duration":  view.WatchDuration,
		"completion_rate": view.CompletionRate,
		"session_id":      view.SessionID,
	}
	emit(ctx, s.publisher, e)
	return &view, nil
}

func (s *EngagementService) HasLiked(ctx context.Context, videoID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.VideoLike{}).
		Where("video_id = ? AND user_id = ?", videoID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return count > 0, nil
}

// bumpCounter increments one of the VideoPost counters in place. column is
// always a literal from this package.
func bumpCounter(tx *gorm.DB, videoID uuid.UUID, column string, delta int) error {
	return tx.Model(&models.VideoPost{}).
		Where("id = ?", videoID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}
