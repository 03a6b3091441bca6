package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/dto"
	"engage_workspace/internal/apperr"
	"engage_workspace/internal/authctx"
)

// writeErr maps the service error taxonomy onto HTTP statuses.
func writeErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "not found"})
	case errors.Is(err, apperr.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Message: "conflict"})
	case errors.Is(err, apperr.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Message: "forbidden"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "internal error"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: msg})
}

// actorAndParamID resolves the authenticated actor plus one ObjectID
// path parameter. On failure the response is already written and ok is
// false. Routes using it sit behind RequireAuth, so a missing actor only
// happens on misconfigured routing.
func actorAndParamID(c *fiber.Ctx, param string) (actor, id bson.ObjectID, ok bool) {
	actor, found := authctx.UserIDFrom(c)
	if !found {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "unauthorized"})
		return bson.NilObjectID, bson.NilObjectID, false
	}
	id, err := bson.ObjectIDFromHex(c.Params(param))
	if err != nil {
		_ = badRequest(c, "invalid id")
		return bson.NilObjectID, bson.NilObjectID, false
	}
	return actor, id, true
}
