package handlers

import (
	"github.com/gofiber/fiber/v2"

	"engage_workspace/dto"
	"engage_workspace/internal/authctx"
	"engage_workspace/services"
)

type FeedHandler struct {
	Feeds *services.FeedService
}

func (h *FeedHandler) Feed(c *fiber.Ctx) error {
	viewer, ok := authctx.UserIDFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "unauthorized"})
	}
	var q dto.FeedQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	resp, err := h.Feeds.GetFeed(c.Context(), viewer, q)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(resp)
}

// Trending is open to anonymous viewers; the viewer id only adds
// like/follow flags when present.
func (h *FeedHandler) Trending(c *fiber.Ctx) error {
	viewer, _ := authctx.UserIDFrom(c)
	resp, err := h.Feeds.Trending(c.Context(), viewer,
		c.QueryInt("timeRangeDays", 0), c.QueryInt("page", 0), c.QueryInt("limit", 0))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(resp)
}

func (h *FeedHandler) Industry(c *fiber.Ctx) error {
	viewer, _ := authctx.UserIDFrom(c)
	industry := c.Params("industry")
	if industry == "" {
		return badRequest(c, "industry required")
	}
	resp, err := h.Feeds.Industry(c.Context(), viewer, industry,
		c.QueryInt("timeRangeDays", 0), c.QueryInt("page", 0), c.QueryInt("limit", 0))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(resp)
}

// Invalidate drops the caller's cached feed window.
func (h *FeedHandler) Invalidate(c *fiber.Ctx) error {
	viewer, ok := authctx.UserIDFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "unauthorized"})
	}
	h.Feeds.Invalidate(viewer)
	return c.JSON(fiber.Map{"message": "feed cache cleared"})
}
