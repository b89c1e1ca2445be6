package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/events/eventstest"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const secret = "handlers-test-secret"

type server struct {
	t      *testing.T
	app    *fiber.App
	events *eventstest.Recorder
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := dbtest.Open(t)
	rec := &eventstest.Recorder{}
	filter := services.NewContentFilter()
	cfg := &config.Config{JWTSecret: secret, RateLimit: 1000, CORSOrigins: "*"}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Setup(app, cfg, routes.Handlers{
		Health:     handlers.NewHealthHandler(nil),
		Video:      handlers.NewVideoHandler(services.NewCatalogService(db, rec, filter), nil),
		Engagement: handlers.NewEngagementHandler(services.NewEngagementService(db, rec)),
		Live:       handlers.NewLiveHandler(services.NewLiveSessionService(db), services.NewCommentService(db, rec), services.NewReactionService(db, rec)),
		Moderation: handlers.NewModerationHandler(services.NewModerationService(db, rec, filter)),
	}, nil)

	return &server{t: t, app: app, events: rec}
}

type user struct {
	id    uuid.UUID
	token string
}

func (s *server) user(roles ...string) user {
	s.t.Helper()
	id := uuid.New()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   id.String(),
		"roles": roles,
		"name":  "Tester",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(s.t, err)
	return user{id: id, token: token}
}

func (s *server) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(s.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// publishedVideo creates and publishes a post owned by creator.
func (s *server) publishedVideo(creator user) string {
	s.t.Helper()
	status, body := s.do(fiber.MethodPost, "/api/videos", creator.token, fiber.Map{
		"title":            "Jollof rice, party style",
		"video_storage_id": "videos/jollof.mp4",
		"duration":         240,
		"resolution":       fiber.Map{"width": 1080, "height": 1920},
		"tags":             []string{"rice", "party"},
	})
	require.Equal(s.t, fiber.StatusCreated, status, body)
	id := body["id"].(string)

	status, body = s.do(fiber.MethodPost, "/api/videos/"+id+"/publish", creator.token, nil)
	require.Equal(s.t, fiber.StatusOK, status, body)
	require.Equal(s.t, "published", body["status"])
	return id
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	status, body := s.do(fiber.MethodGet, "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "ok", body["status"])
}

func TestVideoLifecycle(t *testing.T) {
	s := newServer(t)
	creator := s.user("chef")
	viewer := s.user()

	status, body := s.do(fiber.MethodPost, "/api/videos", viewer.token, fiber.Map{
		"title": "Nope", "video_storage_id": "videos/x.mp4",
	})
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, "Forbidden", body["kind"])

	status, body = s.do(fiber.MethodPost, "/api/videos", creator.token, fiber.Map{
		"video_storage_id": "videos/x.mp4",
		"resolution":       fiber.Map{"width": 1280, "height": 720},
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "ValidationError", body["kind"])

	id := s.publishedVideo(creator)

	status, body = s.do(fiber.MethodPatch, "/api/videos/"+id, creator.token, fiber.Map{"cuisine": "West African"})
	require.Equal(t, fiber.StatusOK, status, body)
	require.Equal(t, "West African", body["cuisine"])
	require.Equal(t, "Jollof rice, party style", body["title"])

	status, _ = s.do(fiber.MethodPatch, "/api/videos/"+id, viewer.token, fiber.Map{"title": "Mine now"})
	require.Equal(t, fiber.StatusForbidden, status)

	status, body = s.do(fiber.MethodGet, "/api/creators/"+creator.id.String()+"/videos", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 1, body["total"])

	status, body = s.do(fiber.MethodDelete, "/api/videos/"+id, creator.token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "removed", body["status"])

	status, body = s.do(fiber.MethodPost, "/api/videos/"+id+"/publish", creator.token, nil)
	require.Equal(t, fiber.StatusConflict, status)
	require.Equal(t, "InvalidState", body["kind"])
}

func TestVideoNotFoundAndBadID(t *testing.T) {
	s := newServer(t)

	status, body := s.do(fiber.MethodGet, "/api/videos/"+uuid.NewString(), "", nil)
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "NotFound", body["kind"])

	status, _ = s.do(fiber.MethodGet, "/api/videos/not-a-uuid", "", nil)
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestUploadURLWithoutObjectStore(t *testing.T) {
	s := newServer(t)
	creator := s.user("creator")

	status, _ := s.do(fiber.MethodPost, "/api/videos/upload-url", creator.token, fiber.Map{"content_type": "video/mp4"})
	require.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestLikeFlow(t *testing.T) {
	s := newServer(t)
	creator := s.user("creator")
	fan := s.user()
	id := s.publishedVideo(creator)

	status, body := s.do(fiber.MethodPost, "/api/videos/"+id+"/like", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "NotAuthenticated", body["kind"])

	status, body = s.do(fiber.MethodPost, "/api/videos/"+id+"/like", fan.token, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	require.Equal(t, true, body["liked"])
	require.EqualValues(t, 1, body["likes_count"])

	status, body = s.do(fiber.MethodPost, "/api/videos/"+id+"/like", fan.token, nil)
	require.Equal(t, fiber.StatusConflict, status)
	require.Equal(t, "AlreadyLiked", body["message"])

	status, body = s.do(fiber.MethodGet, "/api/videos/"+id+"/like", fan.token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["liked"])

	status, body = s.do(fiber.MethodDelete, "/api/videos/"+id+"/like", fan.token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 0, body["likes_count"])

	status, body = s.do(fiber.MethodDelete, "/api/videos/"+id+"/like", fan.token, nil)
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "NotLiked", body["message"])

	require.Len(t, s.events.OfType(events.TypeVideoLiked), 1)
	require.Len(t, s.events.OfType(events.TypeVideoUnliked), 1)
}

func TestShareAndAnonymousView(t *testing.T) {
	s := newServer(t)
	creator := s.user("creator")
	fan := s.user()
	id := s.publishedVideo(creator)

	status, body := s.do(fiber.MethodPost, "/api/videos/"+id+"/share", fan.token, fiber.Map{"platform": "whatsapp"})
	require.Equal(t, fiber.StatusCreated, status, body)
	require.EqualValues(t, 1, body["shares_count"])

	status, _ = s.do(fiber.MethodPost, "/api/videos/"+id+"/share", fan.token, fiber.Map{"platform": "myspace"})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(fiber.MethodPost, "/api/videos/"+id+"/views", "", fiber.Map{
		"watch_duration":  30.5,
		"completion_rate": 0.4,
		"device_info":     fiber.Map{"type": "mobile", "os": "ios"},
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	require.Nil(t, body["user_id"])

	status, body = s.do(fiber.MethodGet, "/api/videos/"+id, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 1, body["views_count"])
	require.EqualValues(t, 1, body["shares_count"])
}

func TestLiveSessionComments(t *testing.T) {
	s := newServer(t)
	host := s.user("creator")
	viewer := s.user()
	troll := s.user()

	status, body := s.do(fiber.MethodPost, "/api/live-sessions", host.token, fiber.Map{"title": "Egusi soup live"})
	require.Equal(t, fiber.StatusCreated, status, body)
	sessionID := body["id"].(string)
	base := "/api/live-sessions/" + sessionID

	status, body = s.do(fiber.MethodPost, base+"/comments", viewer.token, fiber.Map{"content": "early!"})
	require.Equal(t, fiber.StatusConflict, status)
	require.Equal(t, "SessionNotActive", body["message"])

	status, _ = s.do(fiber.MethodPost, base+"/status", viewer.token, fiber.Map{"status": "starting"})
	require.Equal(t, fiber.StatusForbidden, status)

	for _, next := range []string{"starting", "live"} {
		status, body = s.do(fiber.MethodPost, base+"/status", host.token, fiber.Map{"status": next})
		require.Equal(t, fiber.StatusOK, status, body)
		require.Equal(t, next, body["status"])
	}

	status, body = s.do(fiber.MethodPost, base+"/mutes", host.token, fiber.Map{"reason": "spam"})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "user_id is required", body["message"])

	status, body = s.do(fiber.MethodPost, base+"/mutes", host.token, fiber.Map{
		"user_id": troll.id.String(), "reason": "spam", "duration_minutes": 10,
	})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, body = s.do(fiber.MethodPost, base+"/comments", troll.token, fiber.Map{"content": "buy followers"})
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, "Muted", body["message"])

	status, body = s.do(fiber.MethodPost, base+"/comments", viewer.token, fiber.Map{"content": "How much pepper?", "comment_type": "question"})
	require.Equal(t, fiber.StatusCreated, status, body)
	require.Equal(t, "question", body["comment_type"])

	status, body = s.do(fiber.MethodPost, base+"/comments", viewer.token, fiber.Map{"content": "   "})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(fiber.MethodDelete, base+"/mutes/"+troll.id.String(), host.token, nil)
	require.Equal(t, fiber.StatusOK, status, body)

	status, body = s.do(fiber.MethodPost, base+"/comments", troll.token, fiber.Map{"content": "sorry"})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, body = s.do(fiber.MethodGet, base+"/comments?limit=1", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	comments := body["comments"].([]interface{})
	require.Len(t, comments, 1)
	require.Equal(t, "How much pepper?", comments[0].(map[string]interface{})["content"])

	status, body = s.do(fiber.MethodGet, base+"/comments?comment_type=question", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, body["comments"].([]interface{}), 1)

	status, body = s.do(fiber.MethodPost, base+"/status", host.token, fiber.Map{"status": "scheduled"})
	require.Equal(t, fiber.StatusConflict, status)
	require.Equal(t, "InvalidState", body["kind"])
}

func TestLiveReactions(t *testing.T) {
	s := newServer(t)
	host := s.user("creator")
	viewer := s.user()

	status, body := s.do(fiber.MethodPost, "/api/live-sessions", host.token, fiber.Map{"title": "Suya night"})
	require.Equal(t, fiber.StatusCreated, status, body)
	base := "/api/live-sessions/" + body["id"].(string)

	status, body = s.do(fiber.MethodPost, base+"/reactions", viewer.token, fiber.Map{"reaction_type": "fire"})
	require.Equal(t, fiber.StatusConflict, status, body)
	require.Equal(t, "SessionNotActive", body["message"])

	for _, next := range []string{"starting", "live"} {
		status, body = s.do(fiber.MethodPost, base+"/status", host.token, fiber.Map{"status": next})
		require.Equal(t, fiber.StatusOK, status, body)
	}

	status, _ = s.do(fiber.MethodPost, base+"/reactions", "", fiber.Map{"reaction_type": "fire"})
	require.Equal(t, fiber.StatusUnauthorized, status)

	status, body = s.do(fiber.MethodPost, base+"/reactions", viewer.token, fiber.Map{"reaction_type": "fire"})
	require.Equal(t, fiber.StatusCreated, status, body)
	require.Equal(t, "medium", body["intensity"])

	status, body = s.do(fiber.MethodPost, base+"/reactions", viewer.token, fiber.Map{"reaction_type": "clap", "intensity": "strong"})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, body = s.do(fiber.MethodPost, base+"/reactions", viewer.token, fiber.Map{"reaction_type": "shrug"})
	require.Equal(t, fiber.StatusBadRequest, status, body)

	status, body = s.do(fiber.MethodGet, base+"/reactions", "", nil)
	require.Equal(t, fiber.StatusOK, status, body)
	require.EqualValues(t, 100, body["limit"])
	reactions := body["reactions"].([]interface{})
	require.Len(t, reactions, 2)
	require.Equal(t, "clap", reactions[0].(map[string]interface{})["reaction_type"])

	status, body = s.do(fiber.MethodGet, base+"/reactions?reaction_type=fire", "", nil)
	require.Equal(t, fiber.StatusOK, status, body)
	require.Len(t, body["reactions"].([]interface{}), 1)

	status, body = s.do(fiber.MethodGet, base, "", nil)
	require.Equal(t, fiber.StatusOK, status, body)
	require.EqualValues(t, 2, body["reactions_count"])

	require.Len(t, s.events.OfType(events.TypeReactionSent), 2)
}

func TestRoleGatesPrecedeBodyChecks(t *testing.T) {
	s := newServer(t)
	host := s.user("creator")
	viewer := s.user()

	status, body := s.do(fiber.MethodPost, "/api/videos", viewer.token, fiber.Map{"duration": -5})
	require.Equal(t, fiber.StatusForbidden, status, body)
	require.Equal(t, "Forbidden", body["kind"])

	status, body = s.do(fiber.MethodPost, "/api/live-sessions", viewer.token, fiber.Map{"title": strings.Repeat("t", 300)})
	require.Equal(t, fiber.StatusForbidden, status, body)

	status, body = s.do(fiber.MethodPost, "/api/live-sessions", host.token, fiber.Map{"title": "Okra soup"})
	require.Equal(t, fiber.StatusCreated, status, body)
	base := "/api/live-sessions/" + body["id"].(string)

	status, body = s.do(fiber.MethodPost, base+"/mutes", viewer.token, fiber.Map{"duration_minutes": -1})
	require.Equal(t, fiber.StatusForbidden, status, body)

	status, body = s.do(fiber.MethodPost, base+"/status", viewer.token, fiber.Map{})
	require.Equal(t, fiber.StatusForbidden, status, body)

	id := s.publishedVideo(host)
	status, body = s.do(fiber.MethodPatch, "/api/videos/"+id, viewer.token, fiber.Map{"title": ""})
	require.Equal(t, fiber.StatusForbidden, status, body)

	status, body = s.do(fiber.MethodPut, "/api/admin/moderation/reports/"+uuid.NewString(), viewer.token, fiber.Map{"status": "approved"})
	require.Equal(t, fiber.StatusForbidden, status, body)
}

func TestReportAndReview(t *testing.T) {
	s := newServer(t)
	creator := s.user("creator")
	reporter := s.user()
	staff := s.user("staff")
	id := s.publishedVideo(creator)

	status, body := s.do(fiber.MethodPost, "/api/videos/"+id+"/reports", reporter.token, fiber.Map{
		"reason": "spam", "description": "link farm in the description",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	reportID := body["id"].(string)
	require.Equal(t, "pending", body["status"])

	status, body = s.do(fiber.MethodPost, "/api/videos/"+id+"/reports", reporter.token, fiber.Map{"reason": "spam"})
	require.Equal(t, fiber.StatusConflict, status)
	require.Equal(t, "AlreadyReported", body["message"])

	status, body = s.do(fiber.MethodGet, "/api/videos/"+id, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "flagged", body["status"])

	status, _ = s.do(fiber.MethodGet, "/api/admin/moderation/reports", reporter.token, nil)
	require.Equal(t, fiber.StatusForbidden, status)

	status, body = s.do(fiber.MethodGet, "/api/admin/moderation/reports?status=pending", staff.token, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	require.EqualValues(t, 1, body["total"])

	status, body = s.do(fiber.MethodPut, "/api/admin/moderation/reports/"+reportID, staff.token, fiber.Map{"status": "approved"})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "ValidationError", body["kind"])

	status, body = s.do(fiber.MethodPut, "/api/admin/moderation/reports/"+reportID, staff.token, fiber.Map{
		"status": "dismissed", "admin_note": "not spam",
	})
	require.Equal(t, fiber.StatusOK, status, body)
	require.Equal(t, "dismissed", body["status"])
	require.Equal(t, staff.id.String(), body["reviewed_by"])

	status, _ = s.do(fiber.MethodPut, "/api/admin/moderation/reports/"+reportID, staff.token, fiber.Map{"status": "reviewed"})
	require.Equal(t, fiber.StatusConflict, status)

	require.Len(t, s.events.OfType(events.TypeVideoReported), 1)
}
