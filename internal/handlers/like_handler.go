package handlers

import (
	"github.com/gofiber/fiber/v2"

	"engage_workspace/services"
)

type LikeHandler struct {
	Likes *services.LikeService
}

func (h *LikeHandler) Like(c *fiber.Ctx) error {
	actor, postID, ok := actorAndParamID(c, "id")
	if !ok {
		return nil
	}
	resp, err := h.Likes.Like(c.Context(), actor, postID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *LikeHandler) Unlike(c *fiber.Ctx) error {
	actor, postID, ok := actorAndParamID(c, "id")
	if !ok {
		return nil
	}
	resp, err := h.Likes.Unlike(c.Context(), actor, postID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(resp)
}

func (h *LikeHandler) Status(c *fiber.Ctx) error {
	actor, postID, ok := actorAndParamID(c, "id")
	if !ok {
		return nil
	}
	resp, err := h.Likes.Status(c.Context(), actor, postID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(resp)
}
