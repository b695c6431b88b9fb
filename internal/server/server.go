// Package server contains the HTTP handlers and routing for the murmur API and form pages.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"murmur/internal/config"
	"murmur/internal/database"
	"murmur/internal/featureflags"
	"murmur/internal/kv"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/notifications"
	"murmur/internal/repository"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const bodyLimit = 10 * 1024 * 1024

// Server holds all dependencies and provides handlers
type Server struct {
	config   *config.Config
	db       *gorm.DB
	redis    *redis.Client
	app      *fiber.App
	sessions *sessionManager
	limiter  *middleware.RateLimiter
	flags    *featureflags.Manager

	dispatcher    *notifications.Dispatcher
	identity      *service.IdentityService
	tweets        *service.TweetService
	likes         *service.LikeService
	feed          *service.FeedService
	subscriptions *service.SubscriptionService
	avatars       *service.AvatarService
}

// NewServer connects the database and Redis described by cfg and applies the schema.
// Redis is optional: without it sessions cannot be revoked server-side and rate
// limits are off.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	redisClient, err := kv.Connect(ctx, cfg.RedisURL)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "redis unavailable, continuing without it", "error", err)
		redisClient = nil
	}

	return NewServerWithDeps(cfg, db, redisClient, pusherFor(cfg)), nil
}

func pusherFor(cfg *config.Config) notifications.Pusher {
	if !cfg.PushEnabled() {
		return notifications.NopPusher{}
	}
	return notifications.NewWebPusher(notifications.VAPIDConfig{
		PublicKey:  cfg.VAPIDPublicKey,
		PrivateKey: cfg.VAPIDPrivateKey,
		Subscriber: cfg.VAPIDSubscriber,
		TTL:        time.Duration(cfg.PushTTLSeconds) * time.Second,
	}, nil)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil. pusher nil disables push delivery.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, pusher notifications.Pusher) *Server {
	userRepo := repository.NewUserRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	feedRepo := repository.NewFeedRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)

	s := &Server{
		config:   cfg,
		db:       db,
		redis:    redisClient,
		sessions: newSessionManager(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour, redisClient),
		limiter:  middleware.NewRateLimiter(redisClient, cfg.Env),
		flags:    flags,

		identity:      service.NewIdentityService(userRepo, 0),
		likes:         service.NewLikeService(likeRepo),
		feed:          service.NewFeedService(feedRepo),
		subscriptions: service.NewSubscriptionService(subRepo),
		avatars:       service.NewAvatarService(cfg),
	}

	var broadcaster service.Broadcaster
	if pusher != nil {
		s.dispatcher = notifications.NewDispatcher(subRepo, pusher, time.Duration(cfg.PushTimeoutSeconds)*time.Second)
		broadcaster = s.dispatcher
	}
	s.tweets = service.NewTweetService(tweetRepo, userRepo, broadcaster, flags)

	return s
}

// NewApp builds a Fiber app with the server's middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "murmur",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Propagates request and trace ids into the request context for logging
	app.Use(middleware.ContextMiddleware())

	middleware.InitMetrics(app, "murmur-api")

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses keep their headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8080"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
				"code":  "RATE_LIMITED",
			})
		},
	}))

	app.Use(s.ResolveSession())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	app.Static(strings.TrimSuffix(service.AvatarPublicPrefix, "/"), s.avatars.UploadDir())

	// Page models for the form flow
	app.Get("/", s.Index)
	app.Get("/register", s.RegisterPage)
	app.Post("/register", s.limiter.Limit(5, 10*time.Minute, "register"), s.Register)
	app.Get("/login", s.LoginPage)
	app.Post("/login", s.limiter.Limit(10, 5*time.Minute, "login"), s.Login)
	app.Get("/logout", s.Logout)

	app.Get("/profile/:username", s.GetProfile)
	app.Post("/profile/:username", s.AuthRequired(), s.UpdateProfile)
	app.Get("/home", s.Home)
	app.Post("/home", s.UpdateHome)

	app.Post("/subscribe", s.limiter.Limit(20, time.Minute, "subscribe"), s.Subscribe)

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "murmur metrics",
	}))
	api.Get("/push/public-key", s.PushPublicKey)

	tweets := api.Group("/tweets")
	tweets.Get("/", s.GetTweets)
	tweets.Post("/", s.AuthRequired(), s.limiter.Limit(30, time.Minute, "post_tweet"), s.PostTweet)
	// Specific /:tweetId/likes routes before generic /:id
	tweets.Get("/:tweetId/likes", s.GetLikes)
	tweets.Post("/:tweetId/likes", s.AuthRequired(), s.ToggleLike)
	tweets.Delete("/:id", s.AuthRequired(), s.DeleteTweet)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck reports database health. Redis is optional, so its absence
// never fails readiness, but a configured client that stops answering does.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start builds the app and listens on the configured port until Shutdown.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http: %w", err))
		}
	}
	if err := database.Close(s.db); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}

	middleware.Logger.InfoContext(ctx, "server shutdown complete")
	return errors.Join(errs...)
}
