package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoLike is unique per (video, user); its presence accounts for exactly
// one unit of VideoPost.LikesCount.
type VideoLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_video_likes_video_user" json:"video_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_video_likes_video_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *VideoLike) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type VideoShare struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"video_id"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	Platform  SharePlatform `gorm:"size:20;not null" json:"platform"`
	CreatedAt time.Time     `json:"created_at"`
}

func (s *VideoShare) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type DeviceInfo struct {
	Type    string `json:"type"`
	OS      string `json:"os"`
	Browser string `json:"browser"`
}

type GeoLocation struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// VideoView is a raw playback event. UserID is nil for anonymous viewers,
// who identify themselves with a client SessionID instead.
type VideoView struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"video_id"`
	UserID         *uuid.UUID  `gorm:"type:uuid;index" json:"user_id,omitempty"`
	SessionID      string      `gorm:"size:128;index" json:"session_id,omitempty"`
	WatchDuration  float64     `gorm:"not null;default:0" json:"watch_duration"`
	CompletionRate float64     `gorm:"not null;default:0" json:"completion_rate"`
	Device         DeviceInfo  `gorm:"embedded;embeddedPrefix:device_" json:"device_info"`
	Location       GeoLocation `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (v *VideoView) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
