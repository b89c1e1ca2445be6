package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// VideoPost is a recorded video with its publish state and the
// denormalized engagement counters maintained by the ledger.
type VideoPost struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID          uuid.UUID                   `gorm:"type:uuid;not null;index" json:"creator_id"`
	KitchenID          *uuid.UUID                  `gorm:"type:uuid;index" json:"kitchen_id,omitempty"`
	Title              string                      `gorm:"size:200;not null" json:"title"`
	Description        string                      `gorm:"type:text" json:"description,omitempty"`
	VideoStorageID     string                      `gorm:"size:255;not null" json:"video_storage_id"`
	ThumbnailStorageID string                      `gorm:"size:255" json:"thumbnail_storage_id,omitempty"`
	Duration           float64                     `gorm:"not null;default:0" json:"duration"`
	FileSize           int64                       `gorm:"not null;default:0" json:"file_size"`
	Resolution         Resolution                  `gorm:"embedded;embeddedPrefix:resolution_" json:"resolution"`
	Tags               datatypes.JSONSlice[string] `json:"tags"`
	Cuisine            string                      `gorm:"size:100" json:"cuisine,omitempty"`
	Difficulty         Difficulty                  `gorm:"size:20" json:"difficulty,omitempty"`
	Visibility         Visibility                  `gorm:"size:20;not null;default:'public'" json:"visibility"`
	IsLive             bool                        `gorm:"not null;default:false" json:"is_live"`
	LiveSessionID      *uuid.UUID                  `gorm:"type:uuid;index" json:"live_session_id,omitempty"`
	Status             VideoStatus                 `gorm:"size:20;not null;default:'draft';index" json:"status"`
	LikesCount         int64                       `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount      int64                       `gorm:"not null;default:0" json:"comments_count"`
	SharesCount        int64                       `gorm:"not null;default:0" json:"shares_count"`
	ViewsCount         int64                       `gorm:"not null;default:0" json:"views_count"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	PublishedAt        *time.Time                  `json:"published_at,omitempty"`
}

func (v *VideoPost) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
