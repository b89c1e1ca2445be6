package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoReport is an abuse report; one per (video, reporter).
type VideoReport struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_video_reports_video_reporter" json:"video_id"`
	ReporterID  uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_video_reports_video_reporter;index" json:"reporter_id"`
	Reason      ReportReason `gorm:"size:50;not null" json:"reason"`
	Description string       `gorm:"size:1000" json:"description,omitempty"`
	Status      ReportStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewedBy  *uuid.UUID   `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	AdminNote   string       `gorm:"size:1000" json:"admin_note,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (r *VideoReport) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
