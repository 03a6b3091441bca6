package handlers

import (
	"github.com/gofiber/fiber/v2"

	"engage_workspace/services"
)

type ShareHandler struct {
	Shares *services.ShareService
}

func (h *ShareHandler) Share(c *fiber.Ctx) error {
	actor, postID, ok := actorAndParamID(c, "id")
	if !ok {
		return nil
	}
	resp, err := h.Shares.Share(c.Context(), actor, postID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *ShareHandler) Unshare(c *fiber.Ctx) error {
	actor, postID, ok := actorAndParamID(c, "id")
	if !ok {
		return nil
	}
	resp, err := h.Shares.Unshare(c.Context(), actor, postID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(resp)
}
