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
	"gorm.io/gorm"
)

const maxAdminNoteLen = 1000

type ReportInput struct {
	Reason      models.ReportReason
	Description string
}

type ReviewInput struct {
	Status models.ReportStatus
	Note   string
}

// ModerationService owns abuse reports. Accepting a report forces the
// video into flagged unless it has been removed.
type ModerationService struct {
	db        *gorm.DB
	publisher events.Publisher
	filter    *ContentFilter
	now       func() time.Time
}

func NewModerationService(db *gorm.DB, publisher events.Publisher, filter *ContentFilter) *ModerationService {
	return &ModerationService{db: db, publisher: publisher, filter: filter, now: time.Now}
}

func (s *ModerationService) Report(ctx context.Context, p *principal.Principal, videoID uuid.UUID, in ReportInput) (*models.VideoReport, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	if !in.Reason.Valid() {
		return nil, validationError("invalid reason %q", in.Reason)
	}
	description := strings.TrimSpace(in.Description)
	if len(description) > 1000 {
		return nil, validationError("description must be at most 1000 characters")
	}

	var report models.VideoReport
	var flagged bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findVideo(tx, videoID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.VideoReport{}).
			Where("video_id = ? AND reporter_id = ?", videoID, p.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyReported
		}

		now := s.now()
		report = models.VideoReport{
			VideoID:     videoID,
			ReporterID:  p.ID,
			Reason:      in.Reason,
			Description: description,
			Status:      models.ReportPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&report).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyReported
			}
			return err
		}

		var err error
		flagged, err = flagVideo(tx, videoID, now)
		return err
	})
	if err != nil {
		return nil, wrapTx("report video", err)
	}

	slog.Info("video reported", "video_id", videoID.String(), "principal_id", p.ID.String(), "action", string(in.Reason), "flagged", flagged)

	e := events.New(events.TypeVideoReported)
	e.ActorID = p.ID.String()
	e.VideoID = videoID.String()
	e.Payload = map[string]interface{}{
		"report_id": report.ID.String(),
		"reason":    string(report.Reason),
		"severity":  report.Reason.Severity(),
		"flagged":   flagged,
	}
	emit(ctx, s.publisher, e)
	return &report, nil
}

// ListReports returns reports newest first, optionally filtered by status.
func (s *ModerationService) ListReports(ctx context.Context, p *principal.Principal, status models.ReportStatus, limit, offset int) ([]models.VideoReport, int64, error) {
	if p == nil {
		return nil, 0, ErrNotAuthenticated
	}
	if !principal.CanModerate(p) {
		return nil, 0, ErrNotModerator
	}
	if status != "" && !status.Valid() {
		return nil, 0, validationError("invalid status %q", status)
	}
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Model(&models.VideoReport{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}
	reports := []models.VideoReport{}
	if err := query.Order("created_at DESC").Limit(clampLimit(limit, 20)).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, total, nil
}

// ReviewReport closes a pending report as reviewed or dismissed. It leaves
// the video's status untouched; reinstating a flagged video is a separate
// admin publish.
func (s *ModerationService) ReviewReport(ctx context.Context, p *principal.Principal, reportID uuid.UUID, in ReviewInput) (*models.VideoReport, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	if !principal.CanModerate(p) {
		return nil, ErrNotModerator
	}
	if in.Status != models.ReportReviewed && in.Status != models.ReportDismissed {
		return nil, validationError("status must be reviewed or dismissed")
	}
	if utf8.RuneCountInString(in.Note) > maxAdminNoteLen {
		return nil, validationError("admin_note must be at most %d characters", maxAdminNoteLen)
	}

	db := s.db.WithContext(ctx)
	var report models.VideoReport
	if err := db.Where("id = ?", reportID).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report.Status != models.ReportPending {
		return nil, ErrReportClosed
	}

	reviewer := p.ID
	result := db.Model(&models.VideoReport{}).
		Where("id = ? AND status = ?", reportID, models.ReportPending).
		Updates(map[string]interface{}{
			"status":      in.Status,
			"admin_note":  strings.TrimSpace(in.Note),
			"reviewed_by": reviewer,
			"updated_at":  s.now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to review report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrReportClosed
	}

	if err := db.Where("id = ?", reportID).First(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	slog.Info("report reviewed", "video_id", report.VideoID.String(), "principal_id", p.ID.String(), "action", string(in.Status))
	return &report, nil
}

// FilterContent screens free text. ok is false with a reason code and a
// user-facing message when the text is rejected.
func (s *ModerationService) FilterContent(text string) (ok bool, reason, message string) {
	if s.filter == nil {
		return true, "", ""
	}
	ok, reason = s.filter.Screen(text)
	if ok {
		return true, "", ""
	}
	return false, reason, s.filter.RejectionMessage(reason)
}
