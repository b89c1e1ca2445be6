package models

// VideoStatus is the publish/moderation state of a VideoPost.
type VideoStatus string

const (
	VideoStatusDraft     VideoStatus = "draft"
	VideoStatusPublished VideoStatus = "published"
	VideoStatusFlagged   VideoStatus = "flagged"
	VideoStatusRemoved   VideoStatus = "removed"
)

func (s VideoStatus) Valid() bool {
	switch s {
	case VideoStatusDraft, VideoStatusPublished, VideoStatusFlagged, VideoStatusRemoved:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s VideoStatus) Terminal() bool {
	return s == VideoStatusRemoved
}

// CanPublish reports whether a post in status s may move to published.
// Leaving flagged is a manual reinstatement reserved for admins.
func (s VideoStatus) CanPublish(admin bool) bool {
	switch s {
	case VideoStatusDraft:
		return true
	case VideoStatusFlagged:
		return admin
	}
	return false
}

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityPrivate:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type SharePlatform string

const (
	PlatformInternal  SharePlatform = "internal"
	PlatformFacebook  SharePlatform = "facebook"
	PlatformTwitter   SharePlatform = "twitter"
	PlatformInstagram SharePlatform = "instagram"
	PlatformWhatsApp  SharePlatform = "whatsapp"
	PlatformOther     SharePlatform = "other"
)

func (p SharePlatform) Valid() bool {
	switch p {
	case PlatformInternal, PlatformFacebook, PlatformTwitter, PlatformInstagram, PlatformWhatsApp, PlatformOther:
		return true
	}
	return false
}

type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionLaugh ReactionType = "laugh"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
	ReactionFire  ReactionType = "fire"
	ReactionClap  ReactionType = "clap"
	ReactionHeart ReactionType = "heart"
	ReactionStar  ReactionType = "star"
)

func (r ReactionType) Valid() bool {
	switch r {
	case ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad,
		ReactionAngry, ReactionFire, ReactionClap, ReactionHeart, ReactionStar:
		return true
	}
	return false
}

type Intensity string

const (
	IntensityLight  Intensity = "light"
	IntensityMedium Intensity = "medium"
	IntensityStrong Intensity = "strong"
)

func (i Intensity) Valid() bool {
	return i == IntensityLight || i == IntensityMedium || i == IntensityStrong
}

type CommentType string

const (
	CommentGeneral    CommentType = "general"
	CommentQuestion   CommentType = "question"
	CommentReaction   CommentType = "reaction"
	CommentTip        CommentType = "tip"
	CommentModeration CommentType = "moderation"
)

func (t CommentType) Valid() bool {
	switch t {
	case CommentGeneral, CommentQuestion, CommentReaction, CommentTip, CommentModeration:
		return true
	}
	return false
}

type ReportReason string

const (
	ReasonInappropriate ReportReason = "inappropriate_content"
	ReasonSpam          ReportReason = "spam"
	ReasonHarassment    ReportReason = "harassment"
	ReasonViolence      ReportReason = "violence"
	ReasonCopyright     ReportReason = "copyright"
	ReasonOther         ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonInappropriate, ReasonSpam, ReasonHarassment, ReasonViolence, ReasonCopyright, ReasonOther:
		return true
	}
	return false
}

// Severity is the alert priority attached to a new report.
func (r ReportReason) Severity() string {
	if r == ReasonViolence || r == ReasonHarassment {
		return "high"
	}
	return "normal"
}

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportDismissed ReportStatus = "dismissed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportDismissed:
		return true
	}
	return false
}

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionStarting  SessionStatus = "starting"
	SessionLive      SessionStatus = "live"
	SessionEnded     SessionStatus = "ended"
	SessionCancelled SessionStatus = "cancelled"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionScheduled: {SessionStarting, SessionCancelled},
	SessionStarting:  {SessionLive, SessionCancelled},
	SessionLive:      {SessionEnded, SessionCancelled},
}

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionStarting, SessionLive, SessionEnded, SessionCancelled:
		return true
	}
	return false
}

func (s SessionStatus) Terminal() bool {
	return s == SessionEnded || s == SessionCancelled
}

// AcceptsComments reports whether the comment gate is open in status s.
func (s SessionStatus) AcceptsComments() bool {
	return s == SessionStarting || s == SessionLive
}

func (s SessionStatus) CanTransitionTo(to SessionStatus) bool {
	for _, next := range sessionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
