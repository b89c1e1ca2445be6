package services

import (
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSendRequiresActiveSession(t *testing.T) {
	f := newFixture(t)
	host := newPrincipal(principal.RoleCreator)
	viewer := newPrincipal()

	_, err := f.comments.Send(f.ctx, viewer, uuid.New(), SendCommentInput{Content: "hello"})
	require.ErrorIs(t, err, ErrSessionNotFound)

	scheduled := f.liveSession(t, host, nil, models.SessionScheduled)
	_, err = f.comments.Send(f.ctx, viewer, scheduled.ID, SendCommentInput{Content: "early"})
	require.ErrorIs(t, err, ErrSessionNotActive)

	starting := f.liveSession(t, host, nil, models.SessionStarting)
	_, err = f.comments.Send(f.ctx, viewer, starting.ID, SendCommentInput{Content: "we're here"})
	require.NoError(t, err)
}

func TestSendOnEndedSessionIgnoresMuteList(t *testing.T) {
	f := newFixture(t)
	host := newPrincipal(principal.RoleCreator)
	session := f.liveSession(t, host, nil, models.SessionLive)
	muted := newPrincipal()
	viewer := newPrincipal()

	_, err := f.sessions.Mute(f.ctx, host, session.ID, MuteInput{UserID: muted.ID})
	require.NoError(t, err)
	_, err = f.sessions.Transition(f.ctx, host, session.ID, models.SessionEnded)
	require.NoError(t, err)

	for _, p := range []*principal.Principal{muted, viewer} {
		_, err = f.comments.Send(f.ctx, p, session.ID, SendCommentInput{Content: "still there?"})
		require.ErrorIs(t, err, ErrSessionNotActive)
		requireKind(t, KindInvalidState, err)
	}
}

func TestSendFromMutedPrincipal(t *testing.T) {
	f := newFixture(t)
	host := newPrincipal(principal.RoleCreator)
	session := f.liveSession(t, host, nil, models.SessionLive)
	muted := newPrincipal()

	_, err := f.sessions.Mute(f.ctx, host, session.ID, MuteInput{UserID: muted.ID})
	require.NoError(t, err)

	_, err = f.comments.Send(f.ctx, muted, session.ID, SendCommentInput{Content: "let me talk"})
	require.ErrorIs(t, err, ErrMuted)
	requireKind(t, KindForbidden, err)

	// The mute gate runs before content validation.
	_, err = f.comments.Send(f.ctx, muted, session.ID, SendCommentInput{Content: ""})
	require.ErrorIs(t, err, ErrMuted)

	require.NoError(t, f.sessions.Unmute(f.ctx, host, session.ID, muted.ID))
	_, err = f.comments.Send(f.ctx, muted, session.ID, SendCommentInput{Content: "thanks"})
	require.NoError(t, err)
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	session := f.liveSession(t, newPrincipal(principal.RoleCreator), nil, models.SessionLive)
	viewer := newPrincipal()

	_, err := f.comments.Send(f.ctx, nil, session.ID, SendCommentInput{Content: "hi"})
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.comments.Send(f.ctx, viewer, session.ID, SendCommentInput{Content: "  \n "})
	requireKind(t, KindValidation, err)

	_, err = f.comments.Send(f.ctx, viewer, session.ID, SendCommentInput{Content: "hi", CommentType: "emoji"})
	requireKind(t, KindValidation, err)

	comment, err := f.comments.Send(f.ctx, viewer, session.ID, SendCommentInput{Content: " hi "})
	require.NoError(t, err)
	require.Equal(t, "hi", comment.Content)
	require.Equal(t, models.CommentGeneral, comment.CommentType)
}

func TestSendStampsSenderIdentity(t *testing.T) {
	f := newFixture(t)
	host := newPrincipal(principal.RoleCreator)
	host.DisplayName = "Chef Tolu"
	session := f.liveSession(t, host, nil, models.SessionLive)

	spoof := map[string]interface{}{
		"sentByRole":      "admin",
		"userDisplayName": "Official Support",
		"replyTo":         "42",
	}

	comment, err := f.comments.Send(f.ctx, newPrincipal(), session.ID, SendCommentInput{Content: "is it spicy?", CommentType: models.CommentQuestion, Metadata: spoof})
	require.NoError(t, err)
	require.Equal(t, "viewer", comment.Metadata["sentByRole"])
	require.Equal(t, "Anonymous", comment.Metadata["userDisplayName"])
	require.Equal(t, "42", comment.Metadata["replyTo"])

	comment, err = f.comments.Send(f.ctx, host, session.ID, SendCommentInput{Content: "very", Metadata: spoof})
	require.NoError(t, err)
	require.Equal(t, "host", comment.Metadata["sentByRole"])
	require.Equal(t, "Chef Tolu", comment.Metadata["userDisplayName"])

	staff := newPrincipal(principal.RoleStaff)
	comment, err = f.comments.Send(f.ctx, staff, session.ID, SendCommentInput{Content: "keep it civil", CommentType: models.CommentModeration})
	require.NoError(t, err)
	require.Equal(t, "staff", comment.Metadata["sentByRole"])

	stored, err := f.comments.List(f.ctx, session.ID, ListCommentsQuery{})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	require.Equal(t, "viewer", stored[0].Metadata["sentByRole"])
}

func TestSendCountsCommentsOnLinkedVideo(t *testing.T) {
	f := newFixture(t)
	host := newPrincipal(principal.RoleCreator)
	video := f.published(t, host)
	linked := f.liveSession(t, host, &video.ID, models.SessionLive)
	unlinked := f.liveSession(t, host, nil, models.SessionLive)
	viewer := newPrincipal()

	for i := 0; i < 3; i++ {
		_, err := f.comments.Send(f.ctx, viewer, linked.ID, SendCommentInput{Content: "yum"})
		require.NoError(t, err)
	}
	_, err := f.comments.Send(f.ctx, viewer, unlinked.ID, SendCommentInput{Content: "elsewhere"})
	require.NoError(t, err)

	require.EqualValues(t, 3, f.reload(t, video.ID).CommentsCount)

	sent := f.events.OfType(events.TypeCommentSent)
	require.Len(t, sent, 4)
	require.Equal(t, video.ID.String(), sent[0].VideoID)
	require.Empty(t, sent[3].VideoID)
}

func TestListKeepsInsertionOrderWithinSameInstant(t *testing.T) {
	f := newFixture(t)
	session := f.liveSession(t, newPrincipal(principal.RoleCreator), nil, models.SessionLive)

	// The fixture clock does not move, so every comment shares one timestamp.
	want := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		content := fmt.Sprintf("comment %02d", i)
		want = append(want, content)
		_, err := f.comments.Send(f.ctx, newPrincipal(), session.ID, SendCommentInput{Content: content})
		require.NoError(t, err)
	}

	comments, err := f.comments.List(f.ctx, session.ID, ListCommentsQuery{})
	require.NoError(t, err)
	got := make([]string, len(comments))
	for i, c := range comments {
		got[i] = c.Content
		require.True(t, c.SentAt.Equal(comments[0].SentAt))
	}
	require.Equal(t, want, got)

	page, err := f.comments.List(f.ctx, session.ID, ListCommentsQuery{Limit: 5, Offset: 10})
	require.NoError(t, err)
	require.Len(t, page, 5)
	require.Equal(t, "comment 10", page[0].Content)
}

func TestListPaginationLimits(t *testing.T) {
	f := newFixture(t)
	session := f.liveSession(t, newPrincipal(principal.RoleCreator), nil, models.SessionLive)
	sender := uuid.New()

	rows := make([]models.LiveComment, 0, 130)
	for i := 0; i < 130; i++ {
		kind := models.CommentGeneral
		if i%10 == 0 {
			kind = models.CommentQuestion
		}
		rows = append(rows, models.LiveComment{
			SessionID:   session.ID,
			SenderID:    sender,
			Content:     fmt.Sprintf("row %d", i),
			CommentType: kind,
			SentAt:      f.clock.Now(),
		})
	}
	require.NoError(t, f.db.CreateInBatches(&rows, 50).Error)

	comments, err := f.comments.List(f.ctx, session.ID, ListCommentsQuery{})
	require.NoError(t, err)
	require.Len(t, comments, 50)

	comments, err = f.comments.List(f.ctx, session.ID, ListCommentsQuery{Limit: 1000})
	require.NoError(t, err)
	require.Len(t, comments, 100)

	comments, err = f.comments.List(f.ctx, session.ID, ListCommentsQuery{Limit: 100, Offset: 120})
	require.NoError(t, err)
	require.Len(t, comments, 10)
	require.Equal(t, "row 120", comments[0].Content)

	questions, err := f.comments.List(f.ctx, session.ID, ListCommentsQuery{CommentType: models.CommentQuestion})
	require.NoError(t, err)
	require.Len(t, questions, 13)
	require.Equal(t, "row 0", questions[0].Content)
	require.Equal(t, "row 10", questions[1].Content)

	_, err = f.comments.List(f.ctx, session.ID, ListCommentsQuery{CommentType: "emoji"})
	requireKind(t, KindValidation, err)

	_, err = f.comments.List(f.ctx, uuid.New(), ListCommentsQuery{})
	require.ErrorIs(t, err, ErrSessionNotFound)
}
