package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"engage_workspace/dto"
	"engage_workspace/services"
)

type CommentHandler struct {
	Comments *services.CommentService
	Validate *validator.Validate
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	actor, postID, ok := actorAndParamID(c, "id")
	if !ok {
		return nil
	}
	var body dto.CreateCommentReq
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := h.Validate.Struct(body); err != nil {
		return badRequest(c, err.Error())
	}
	resp, err := h.Comments.Create(c.Context(), actor, postID, body)
	if err != nil {
		return writeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	actor, commentID, ok := actorAndParamID(c, "commentId")
	if !ok {
		return nil
	}
	resp, err := h.Comments.Delete(c.Context(), actor, commentID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(resp)
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	postID, err := bson.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var parent *bson.ObjectID
	if hex := c.Query("parent"); hex != "" {
		pid, err := bson.ObjectIDFromHex(hex)
		if err != nil {
			return badRequest(c, "invalid parent id")
		}
		parent = &pid
	}
	limit := int64(c.QueryInt("limit", 50))
	comments, err := h.Comments.List(c.Context(), postID, parent, limit)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(comments)
}
