package server

import (
	"backend-soozu/internal/analytics"
	"backend-soozu/internal/apperr"
	"backend-soozu/internal/auth"
	"backend-soozu/internal/config"
	"backend-soozu/internal/notify"
	"backend-soozu/internal/review"
	"backend-soozu/internal/stream"
	"backend-soozu/internal/ticket"
	"backend-soozu/internal/token"
	"backend-soozu/internal/tracker"
	"backend-soozu/internal/trip"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Notify *notify.Queue
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
		Notify: notify.NewQueue(redisClient, notify.NewMailer(cfg), cfg.NotifyAttempts),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	adminMiddleware := auth.AdminMiddleware(s.Cfg.JWTSecret)

	trips := trip.NewService(s.DB)
	trackers := tracker.NewService(s.DB, trips, token.NewGenerator(s.DB), s.Notify, s.Stream, s.Cfg.TokenMaxAttempts)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	trip.RegisterRoutes(s.App.Group("/trips"), trips, jwtMiddleware)
	tracker.RegisterRoutes(s.App.Group("/trackers"), trackers)
	review.RegisterRoutes(s.App.Group("/reviews"), review.NewService(s.DB))
	ticket.RegisterRoutes(s.App.Group("/tickets"), ticket.NewService(s.DB))
	analytics.RegisterRoutes(s.App.Group("/analytics"), analytics.NewService(s.DB), adminMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
