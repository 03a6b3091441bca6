package routes

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"engage_workspace/internal/handlers"
	"engage_workspace/internal/middleware"
	"engage_workspace/services"
)

// Deps carries everything the route tree needs.
type Deps struct {
	JWTSecret string
	Likes     *services.LikeService
	Shares    *services.ShareService
	Comments  *services.CommentService
	Follows   *services.FollowService
	Feeds     *services.FeedService
}

func Register(app *fiber.App, d Deps) {
	validate := validator.New()

	like := &handlers.LikeHandler{Likes: d.Likes}
	share := &handlers.ShareHandler{Shares: d.Shares}
	comment := &handlers.CommentHandler{Comments: d.Comments, Validate: validate}
	follow := &handlers.FollowHandler{Follows: d.Follows}
	feed := &handlers.FeedHandler{Feeds: d.Feeds}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", middleware.JWTUidOnly(d.JWTSecret))

	api.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Anonymous-friendly reads.
	api.Get("/feed/trending", feed.Trending)
	api.Get("/feed/industry/:industry", feed.Industry)
	api.Get("/posts/:id/comments", comment.List)

	auth := api.Group("", middleware.RequireAuth())

	auth.Get("/feed", feed.Feed)
	auth.Post("/feed/invalidate", feed.Invalidate)

	auth.Post("/posts/:id/like", like.Like)
	auth.Delete("/posts/:id/like", like.Unlike)
	auth.Get("/posts/:id/like", like.Status)

	auth.Post("/posts/:id/share", share.Share)
	auth.Delete("/posts/:id/share", share.Unshare)

	auth.Post("/posts/:id/comments", comment.Create)
	auth.Delete("/comments/:commentId", comment.Delete)

	auth.Post("/users/:id/follow", follow.Follow)
	auth.Delete("/users/:id/follow", follow.Unfollow)
	auth.Post("/follow-requests/:id/accept", follow.Accept)
	auth.Post("/follow-requests/:id/reject", follow.Reject)
}
