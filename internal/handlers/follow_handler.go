package handlers

import (
	"github.com/gofiber/fiber/v2"

	"engage_workspace/dto"
	"engage_workspace/services"
)

type FollowHandler struct {
	Follows *services.FollowService
}

func (h *FollowHandler) Follow(c *fiber.Ctx) error {
	actor, target, ok := actorAndParamID(c, "id")
	if !ok {
		return nil
	}
	resp, err := h.Follows.Follow(c.Context(), actor, target)
	if err != nil {
		return writeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *FollowHandler) Unfollow(c *fiber.Ctx) error {
	actor, target, ok := actorAndParamID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Follows.Unfollow(c.Context(), actor, target); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(dto.FollowResponse{Message: "unfollowed"})
}

// Accept approves a pending request. The path id is the requester; the
// authenticated user is the target being followed.
func (h *FollowHandler) Accept(c *fiber.Ctx) error {
	target, requester, ok := actorAndParamID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Follows.Accept(c.Context(), target, requester); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(dto.FollowResponse{Message: "accepted", Status: "accepted"})
}

func (h *FollowHandler) Reject(c *fiber.Ctx) error {
	target, requester, ok := actorAndParamID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Follows.Reject(c.Context(), target, requester); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(dto.FollowResponse{Message: "rejected"})
}
