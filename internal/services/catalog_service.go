package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Column sizes on video_posts and live_sessions.
const (
	maxTitleLen     = 200
	maxStorageIDLen = 255
	maxCuisineLen   = 100
)

type CreateDraftInput struct {
	KitchenID          *uuid.UUID
	Title              string
	Description        string
	VideoStorageID     string
	ThumbnailStorageID string
	Duration           float64
	FileSize           int64
	Resolution         models.Resolution
	Tags               []string
	Cuisine            string
	Difficulty         models.Difficulty
	Visibility         models.Visibility
	IsLive             bool
	LiveSessionID      *uuid.UUID
}

// UpdateInput holds the editable attributes; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Tags        *[]string
	Cuisine     *string
	Difficulty  *models.Difficulty
	Visibility  *models.Visibility
}

// CatalogService owns VideoPost and its publish/moderation state machine.
type CatalogService struct {
	db        *gorm.DB
	publisher events.Publisher
	filter    *ContentFilter
	now       func() time.Time
}

func NewCatalogService(db *gorm.DB, publisher events.Publisher, filter *ContentFilter) *CatalogService {
	return &CatalogService{db: db, publisher: publisher, filter: filter, now: time.Now}
}

func (s *CatalogService) CreateDraft(ctx context.Context, p *principal.Principal, in CreateDraftInput) (*models.VideoPost, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	if !principal.CanAuthor(p) {
		return nil, ErrNotCreator
	}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return nil, validationError("title is required")
	case in.Duration < 0:
		return nil, validationError("duration must not be negative")
	case in.Resolution.Width <= 0 || in.Resolution.Height <= 0:
		return nil, validationError("resolution width and height must be positive")
	case strings.TrimSpace(in.VideoStorageID) == "":
		return nil, validationError("video_storage_id is required")
	case in.FileSize < 0:
		return nil, validationError("file_size must not be negative")
	case utf8.RuneCountInString(title) > maxTitleLen:
		return nil, validationError("title must be at most %d characters", maxTitleLen)
	case len(strings.TrimSpace(in.VideoStorageID)) > maxStorageIDLen,
		len(strings.TrimSpace(in.ThumbnailStorageID)) > maxStorageIDLen:
		return nil, validationError("storage ids must be at most %d characters", maxStorageIDLen)
	case utf8.RuneCountInString(in.Cuisine) > maxCuisineLen:
		return nil, validationError("cuisine must be at most %d characters", maxCuisineLen)
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if !in.Visibility.Valid() {
		return nil, validationError("invalid visibility %q", in.Visibility)
	}
	if in.Difficulty != "" && !in.Difficulty.Valid() {
		return nil, validationError("invalid difficulty %q", in.Difficulty)
	}

	now := s.now()
	video := &models.VideoPost{
		CreatorID:          p.ID,
		KitchenID:          in.KitchenID,
		Title:              title,
		Description:        in.Description,
		VideoStorageID:     strings.TrimSpace(in.VideoStorageID),
		ThumbnailStorageID: strings.TrimSpace(in.ThumbnailStorageID),
		Duration:           in.Duration,
		FileSize:           in.FileSize,
		Resolution:         in.Resolution,
		Tags:               datatypes.JSONSlice[string](normalizeTags(in.Tags)),
		Cuisine:            in.Cuisine,
		Difficulty:         in.Difficulty,
		Visibility:         in.Visibility,
		IsLive:             in.IsLive,
		LiveSessionID:      in.LiveSessionID,
		Status:             models.VideoStatusDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.LiveSessionID != nil {
		video.IsLive = true
	}
	// A session link is written on both rows or not at all.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.LiveSessionID != nil {
			session, err := findSession(tx, *in.LiveSessionID)
			if err != nil {
				return err
			}
			if !principal.CanHost(p, session.HostID) {
				return ErrNotHost
			}
			if session.VideoID != nil {
				return ErrSessionLinked
			}
		}
		if err := tx.Create(video).Error; err != nil {
			return err
		}
		if in.LiveSessionID == nil {
			return nil
		}
		result := tx.Model(&models.LiveSession{}).
			Where("id = ? AND video_id IS NULL", *in.LiveSessionID).
			UpdateColumn("video_id", video.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSessionLinked
		}
		return nil
	})
	if err != nil {
		return nil, wrapTx("create video post", err)
	}

	s.screen(ctx, video)
	return video, nil
}

func (s *CatalogService) Get(ctx context.Context, videoID uuid.UUID) (*models.VideoPost, error) {
	return findVideo(s.db.WithContext(ctx), videoID)
}

func (s *CatalogService) Update(ctx context.Context, p *principal.Principal, videoID uuid.UUID, in UpdateInput) (*models.VideoPost, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	video, err := findVideo(s.db.WithContext(ctx), videoID)
	if err != nil {
		return nil, err
	}
	if !principal.CanMutate(p, video.CreatorID) {
		return nil, ErrNotOwner
	}
	if video.Status.Terminal() {
		return nil, ErrVideoRemoved
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, validationError("title must not be empty")
		}
		if utf8.RuneCountInString(title) > maxTitleLen {
			return nil, validationError("title must be at most %d characters", maxTitleLen)
		}
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Tags != nil {
		updates["tags"] = datatypes.JSONSlice[string](normalizeTags(*in.Tags))
	}
	if in.Cuisine != nil {
		if utf8.RuneCountInString(*in.Cuisine) > maxCuisineLen {
			return nil, validationError("cuisine must be at most %d characters", maxCuisineLen)
		}
		updates["cuisine"] = *in.Cuisine
	}
	if in.Difficulty != nil {
		if *in.Difficulty != "" && !in.Difficulty.Valid() {
			return nil, validationError("invalid difficulty %q", *in.Difficulty)
		}
		updates["difficulty"] = *in.Difficulty
	}
	if in.Visibility != nil {
		if !in.Visibility.Valid() {
			return nil, validationError("invalid visibility %q", *in.Visibility)
		}
		updates["visibility"] = *in.Visibility
	}
	if len(updates) == 0 {
		return video, nil
	}
	updates["updated_at"] = s.now()

	if err := s.db.WithContext(ctx).Model(&models.VideoPost{}).Where("id = ?", videoID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update video post: %w", err)
	}

	updated, err := findVideo(s.db.WithContext(ctx), videoID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil || in.Description != nil {
		s.screen(ctx, updated)
	}
	return updated, nil
}

// Publish moves a draft to published. A flagged video may only be
// republished by an admin; that is the sole way out of flagged. For the
// owner the status is what blocks, not the role.
func (s *CatalogService) Publish(ctx context.Context, p *principal.Principal, videoID uuid.UUID) (*models.VideoPost, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	db := s.db.WithContext(ctx)
	video, err := findVideo(db, videoID)
	if err != nil {
		return nil, err
	}
	if !principal.CanMutate(p, video.CreatorID) {
		return nil, ErrNotOwner
	}
	if !video.Status.CanPublish(principal.IsAdmin(p)) {
		if video.Status == models.VideoStatusFlagged {
			return nil, ErrVideoFlagged
		}
		return nil, newError(KindInvalidState, "cannot publish a %s video", video.Status)
	}

	now := s.now()
	updates := map[string]interface{}{
		"status":     models.VideoStatusPublished,
		"updated_at": now,
	}
	if video.PublishedAt == nil {
		updates["published_at"] = now
	}
	// Compare-and-swap on the observed status so a concurrent report or
	// removal is never overwritten.
	result := db.Model(&models.VideoPost{}).
		Where("id = ? AND status = ?", videoID, video.Status).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to publish video post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, newError(KindInvalidState, "video status changed, retry")
	}

	slog.Info("video published", "video_id", videoID.String(), "principal_id", p.ID.String(), "from", string(video.Status))
	return findVideo(db, videoID)
}

// SoftDelete marks the post removed. Removing a removed post succeeds.
func (s *CatalogService) SoftDelete(ctx context.Context, p *principal.Principal, videoID uuid.UUID) (*models.VideoPost, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	db := s.db.WithContext(ctx)
	video, err := findVideo(db, videoID)
	if err != nil {
		return nil, err
	}
	if !principal.CanMutate(p, video.CreatorID) {
		return nil, ErrNotOwner
	}
	if video.Status == models.VideoStatusRemoved {
		return video, nil
	}

	err = db.Model(&models.VideoPost{}).Where("id = ?", videoID).Updates(map[string]interface{}{
		"status":     models.VideoStatusRemoved,
		"updated_at": s.now(),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to remove video post: %w", err)
	}
	return findVideo(db, videoID)
}

// ListByCreator returns a creator's posts, newest first. Only the owner and
// admins see drafts, flagged and non-public posts; removed posts are never listed.
func (s *CatalogService) ListByCreator(ctx context.Context, viewer *principal.Principal, creatorID uuid.UUID, limit, offset int) ([]models.VideoPost, int64, error) {
	limit = clampLimit(limit, 20)
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Model(&models.VideoPost{}).
		Where("creator_id = ? AND status <> ?", creatorID, models.VideoStatusRemoved)
	if !principal.CanMutate(viewer, creatorID) {
		query = query.Where("status = ? AND visibility = ?", models.VideoStatusPublished, models.VisibilityPublic)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count video posts: %w", err)
	}
	var videos []models.VideoPost
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&videos).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list video posts: %w", err)
	}
	return videos, total, nil
}

// screen runs creator text through the content filter and queues a
// moderation check for anything that fails. It never blocks the write.
func (s *CatalogService) screen(ctx context.Context, video *models.VideoPost) {
	if s.filter == nil {
		return
	}
	ok, reason := s.filter.Screen(video.Title + " " + video.Description)
	if ok {
		return
	}
	e := events.New(events.TypeModerationCheck)
	e.ActorID = video.CreatorID.String()
	e.VideoID = video.ID.String()
	e.Payload = map[string]interface{}{"reason": reason}
	emit(ctx, s.publisher, e)
}

func findVideo(db *gorm.DB, videoID uuid.UUID) (*models.VideoPost, error) {
	var video models.VideoPost
	if err := db.Where("id = ?", videoID).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to load video post: %w", err)
	}
	return &video, nil
}

// flagVideo forces a video into flagged unless it has been removed. It
// reports whether a row was changed.
func flagVideo(tx *gorm.DB, videoID uuid.UUID, at time.Time) (bool, error) {
	result := tx.Model(&models.VideoPost{}).
		Where("id = ? AND status <> ?", videoID, models.VideoStatusRemoved).
		Updates(map[string]interface{}{
			"status":     models.VideoStatusFlagged,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}
	return out
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

const maxPageSize = 100

func emit(ctx context.Context, publisher events.Publisher, e events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, e); err != nil {
		slog.Error("event publish failed", "action", e.Type, "video_id", e.VideoID, "session_id", e.SessionID, "error", err)
	}
}
