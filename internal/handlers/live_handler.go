package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/principal"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LiveHandler struct {
	sessions  *services.LiveSessionService
	comments  *services.CommentService
	reactions *services.ReactionService
}

func NewLiveHandler(sessions *services.LiveSessionService, comments *services.CommentService, reactions *services.ReactionService) *LiveHandler {
	return &LiveHandler{sessions: sessions, comments: comments, reactions: reactions}
}

func (h *LiveHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateLiveSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	session, err := h.sessions.Create(c.UserContext(), principal.FromContext(c), req.Title, req.VideoID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *LiveHandler) Get(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid session ID")
	}
	session, err := h.sessions.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

func (h *LiveHandler) Transition(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid session ID")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	session, err := h.sessions.Transition(c.UserContext(), principal.FromContext(c), id, models.SessionStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(session)
}

func (h *LiveHandler) Mute(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid session ID")
	}
	var req dto.MuteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	mute, err := h.sessions.Mute(c.UserContext(), principal.FromContext(c), id, services.MuteInput{
		UserID:   req.UserID,
		Reason:   req.Reason,
		Duration: time.Duration(req.DurationMinutes) * time.Minute,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(mute)
}

func (h *LiveHandler) ListMutes(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid session ID")
	}
	mutes, err := h.sessions.ListMutes(c.UserContext(), principal.FromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"mutes": mutes})
}

func (h *LiveHandler) Unmute(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid session ID")
	}
	userID, ok := paramUUID(c, "user_id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	if err := h.sessions.Unmute(c.UserContext(), principal.FromContext(c), id, userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User unmuted"})
}

func (h *LiveHandler) SendComment(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid session ID")
	}
	var req dto.SendCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	comment, err := h.comments.Send(c.UserContext(), principal.FromContext(c), id, services.SendCommentInput{
		Content:     req.Content,
		CommentType: models.CommentType(req.CommentType),
		Metadata:    req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *LiveHandler) ListComments(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid session ID")
	}
	limit, offset := page(c, 50)
	comments, err := h.comments.List(c.UserContext(), id, services.ListCommentsQuery{
		Limit:       limit,
		Offset:      offset,
		CommentType: models.CommentType(c.Query("comment_type")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"comments": comments,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *LiveHandler) SendReaction(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid session ID")
	}
	var req dto.SendReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	reaction, err := h.reactions.Send(c.UserContext(), principal.FromContext(c), id, services.SendReactionInput{
		ReactionType: models.ReactionType(req.ReactionType),
		Intensity:    models.Intensity(req.Intensity),
		Metadata:     req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(reaction)
}

func (h *LiveHandler) ListReactions(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid session ID")
	}
	limit, offset := page(c, 100)
	reactions, err := h.reactions.List(c.UserContext(), id, services.ListReactionsQuery{
		Limit:        limit,
		Offset:       offset,
		ReactionType: models.ReactionType(c.Query("reaction_type")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"reactions": reactions,
		"limit":     limit,
		"offset":    offset,
	})
}
