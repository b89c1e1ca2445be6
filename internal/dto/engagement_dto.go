package dto

type ShareRequest struct {
	Platform string `json:"platform"`
}

type DeviceInfoRequest struct {
	Type    string `json:"type"`
	OS      string `json:"os"`
	Browser string `json:"browser"`
}

type LocationRequest struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

type RecordViewRequest struct {
	WatchDuration  float64            `json:"watch_duration"`
	CompletionRate float64            `json:"completion_rate"`
	DeviceInfo     *DeviceInfoRequest `json:"device_info"`
	Location       *LocationRequest   `json:"location"`
	SessionID      string             `json:"session_id"`
}

type LikeResponse struct {
	VideoID    string `json:"video_id"`
	Liked      bool   `json:"liked"`
	LikesCount int64  `json:"likes_count"`
}
