package dto

import "github.com/google/uuid"

type ResolutionRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type CreateVideoRequest struct {
	KitchenID          *uuid.UUID        `json:"kitchen_id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	VideoStorageID     string            `json:"video_storage_id"`
	ThumbnailStorageID string            `json:"thumbnail_storage_id"`
	Duration           float64           `json:"duration"`
	FileSize           int64             `json:"file_size"`
	Resolution         ResolutionRequest `json:"resolution"`
	Tags               []string          `json:"tags"`
	Cuisine            string            `json:"cuisine"`
	Difficulty         string            `json:"difficulty"`
	Visibility         string            `json:"visibility"`
	IsLive             bool              `json:"is_live"`
	LiveSessionID      *uuid.UUID        `json:"live_session_id"`
}

// UpdateVideoRequest fields left out of the body are not changed.
type UpdateVideoRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Cuisine     *string   `json:"cuisine"`
	Difficulty  *string   `json:"difficulty"`
	Visibility  *string   `json:"visibility"`
}

type UploadURLRequest struct {
	Kind        string `json:"kind" validate:"omitempty,oneof=video thumbnail"`
	ContentType string `json:"content_type" validate:"required"`
}
