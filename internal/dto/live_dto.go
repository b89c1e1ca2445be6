package dto

import "github.com/google/uuid"

type CreateLiveSessionRequest struct {
	Title   string     `json:"title"`
	VideoID *uuid.UUID `json:"video_id"`
}

type TransitionRequest struct {
	Status string `json:"status"`
}

type MuteRequest struct {
	UserID          uuid.UUID `json:"user_id"`
	Reason          string    `json:"reason"`
	DurationMinutes int       `json:"duration_minutes"`
}

type SendCommentRequest struct {
	Content     string                 `json:"content"`
	CommentType string                 `json:"comment_type"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type SendReactionRequest struct {
	ReactionType string                 `json:"reaction_type"`
	Intensity    string                 `json:"intensity"`
	Metadata     map[string]interface{} `json:"metadata"`
}
