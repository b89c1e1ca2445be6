package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/events/eventstest"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	ctx        context.Context
	db         *gorm.DB
	events     *eventstest.Recorder
	clock      *testClock
	catalog    *CatalogService
	engagement *EngagementService
	sessions   *LiveSessionService
	comments   *CommentService
	reactions  *ReactionService
	moderation *ModerationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t)
	rec := &eventstest.Recorder{}
	clock := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	filter := NewContentFilter()

	f := &fixture{
		ctx:        context.Background(),
		db:         db,
		events:     rec,
		clock:      clock,
		catalog:    NewCatalogService(db, rec, filter),
		engagement: NewEngagementService(db, rec),
		sessions:   NewLiveSessionService(db),
		comments:   NewCommentService(db, rec),
		reactions:  NewReactionService(db, rec),
		moderation: NewModerationService(db, rec, filter),
	}
	f.catalog.now = clock.Now
	f.engagement.now = clock.Now
	f.sessions.now = clock.Now
	f.comments.now = clock.Now
	f.reactions.now = clock.Now
	f.moderation.now = clock.Now
	return f
}

func newPrincipal(roles ...string) *principal.Principal {
	return &principal.Principal{ID: uuid.New(), Roles: roles}
}

func (f *fixture) draft(t *testing.T, owner *principal.Principal) *models.VideoPost {
	t.Helper()
	video, err := f.catalog.CreateDraft(f.ctx, owner, CreateDraftInput{
		Title:          "Suya spice rub",
		Description:    "Toasted peanuts, ginger and chilli",
		VideoStorageID: "storage/videos/suya.mp4",
		Duration:       95,
		Resolution:     models.Resolution{Width: 1280, Height: 720},
		Tags:           []string{"grill", "street food"},
	})
	require.NoError(t, err)
	return video
}

func (f *fixture) published(t *testing.T, owner *principal.Principal) *models.VideoPost {
	t.Helper()
	video := f.draft(t, owner)
	video, err := f.catalog.Publish(f.ctx, owner, video.ID)
	require.NoError(t, err)
	return video
}

func (f *fixture) reload(t *testing.T, videoID uuid.UUID) *models.VideoPost {
	t.Helper()
	video, err := f.catalog.Get(f.ctx, videoID)
	require.NoError(t, err)
	return video
}

// liveSession returns a session hosted by host that has been moved to status.
func (f *fixture) liveSession(t *testing.T, host *principal.Principal, videoID *uuid.UUID, status models.SessionStatus) *models.LiveSession {
	t.Helper()
	session, err := f.sessions.Create(f.ctx, host, "Friday night pepper soup", videoID)
	require.NoError(t, err)

	path := []models.SessionStatus{models.SessionStarting, models.SessionLive, models.SessionEnded}
	for _, next := range path {
		if session.Status == status {
			break
		}
		session, err = f.sessions.Transition(f.ctx, host, session.ID, next)
		require.NoError(t, err)
	}
	require.Equal(t, status, session.Status)
	return session
}

func requireKind(t *testing.T, want Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, KindOf(err), err.Error())
}
