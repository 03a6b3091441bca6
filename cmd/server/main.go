package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"engage_workspace/bootstrap"
	"engage_workspace/configs"
	"engage_workspace/database"
	"engage_workspace/internal/dispatch"
	"engage_workspace/internal/feedcache"
	"engage_workspace/internal/mirror"
	"engage_workspace/internal/repository"
	"engage_workspace/internal/routes"
	"engage_workspace/services"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := configs.Load()
	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	client := database.ConnectMongo(cfg.MongoURI)
	defer database.DisconnectMongo(client)
	db := client.Database(cfg.DBName)

	if err := bootstrap.EnsureIndexes(db); err != nil {
		log.Error("ensure indexes", "error", err)
		os.Exit(1)
	}

	mirrorPath, feedPath := "", ""
	if cfg.BadgerPath != "" {
		mirrorPath = filepath.Join(cfg.BadgerPath, "mirror")
		feedPath = filepath.Join(cfg.BadgerPath, "feeds")
	}
	m, err := mirror.Open(mirrorPath, configs.MirrorTTL)
	if err != nil {
		log.Error("open mirror cache", "error", err)
		os.Exit(1)
	}
	defer m.Close()
	feedCache, err := feedcache.Open(feedPath, configs.FeedCacheTTL, log)
	if err != nil {
		log.Error("open feed cache", "error", err)
		os.Exit(1)
	}
	defer feedCache.Close()

	posts := repository.NewMongoPostRepo(db)
	users := repository.NewMongoUserRepo(db)
	follows := repository.NewMongoFollowRepo(db)
	likes := repository.NewMongoLikeRepo(db)
	shares := repository.NewMongoShareRepo(db)
	comments := repository.NewMongoCommentRepo(db)
	jobRepo := repository.NewMongoJobRepo(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := dispatch.NewRegistry()

	var dispatcher dispatch.Dispatcher
	if cfg.BrokerMode {
		dispatcher = dispatch.NewBroker(jobRepo, configs.JobMaxAttempts)
	} else {
		dispatcher = dispatch.NewInline(registry, log)
	}

	advisory := mirror.NewAdvisory(m, log)

	composer := services.NewFeedComposer(posts, users, follows, likes, log)
	feedSvc := services.NewFeedService(composer, feedCache, log)
	statsSvc := services.NewStatsService(users, follows, posts, likes, log)
	likeSvc := services.NewLikeService(posts, users, likes, advisory, dispatcher, log)
	shareSvc := services.NewShareService(posts, users, shares, dispatcher, log)
	commentSvc := services.NewCommentService(posts, users, comments, dispatcher, log)
	followSvc := services.NewFollowService(users, follows, advisory, feedCache, dispatcher, log)

	services.RegisterJobHandlers(registry, feedSvc, statsSvc,
		services.LogNotifier{Log: log}, services.LogSubscriptionChecker{Log: log}, log)

	if cfg.BrokerMode {
		wcfg := dispatch.WorkerConfig{
			PollInterval:  configs.JobPollInterval,
			LeaseTTL:      configs.JobLeaseTTL,
			RetryBackoff:  configs.JobRetryBackoff,
			RetryMaxDelay: configs.JobRetryMaxDelay,
		}
		for i := 0; i < cfg.Workers; i++ {
			w := dispatch.NewWorker(jobRepo, registry, wcfg, log)
			go func() {
				if err := w.Run(ctx); err != nil && ctx.Err() == nil {
					log.Error("worker stopped", "error", err)
				}
			}()
		}
		go dispatch.RunCron(ctx, dispatcher, configs.SubscriptionSweep, log)
	}

	app := fiber.New()
	app.Use(fiberrecover.New())
	app.Use(fiberlogger.New())

	routes.Register(app, routes.Deps{
		JWTSecret: cfg.JWTSecret,
		Likes:     likeSvc,
		Shares:    shareSvc,
		Comments:  commentSvc,
		Follows:   followSvc,
		Feeds:     feedSvc,
	})

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
	}
}
