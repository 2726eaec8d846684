// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	_ "craftnexus/docs" // swagger docs
	"craftnexus/internal/config"
	"craftnexus/internal/featureflags"
	"craftnexus/internal/middleware"
	"craftnexus/internal/models"
	"craftnexus/internal/notifications"
	"craftnexus/internal/repository"
	"craftnexus/internal/service"
	"craftnexus/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the already-initialized resources a Server runs on.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store storage.ObjectStore
	// Analyzer enables the in-process analysis workers. Without it uploads
	// queue up until a process with an analyzer drains them.
	Analyzer service.Analyzer
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	done           chan struct{}
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager
	analysisWorker *service.AnalysisWorker

	profiles      *service.ProfileService
	news          *service.NewsService
	ticker        *service.TickerService
	forum         *service.ForumService
	comments      *service.CommentService
	mods          *service.ModService
	notifications *service.NotificationService
	moderation    *service.ModerationService
	analysis      *service.AnalysisService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
func NewServerWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.DB == nil {
		return nil, errors.New("database is required")
	}
	if deps.Store == nil {
		return nil, errors.New("object store is required")
	}
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:         cfg,
		db:             deps.DB,
		redis:          deps.Redis,
		promMiddleware: middleware.InitMetrics("craftnexus-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		notifier:       notifications.NewNotifier(deps.Redis),
	}
	if deps.Redis != nil {
		s.hub = notifications.NewHub()
	}

	userRepo := repository.NewUserRepository(s.db)
	commentRepo := repository.NewCommentRepository(s.db)
	forumRepo := repository.NewForumRepository(s.db)
	jobRepo := repository.NewAnalysisJobRepository(s.db)

	s.profiles = service.NewProfileService(userRepo, repository.NewLinkedAccountRepository(s.db), cfg.LinkProviderList())
	s.notifications = service.NewNotificationService(repository.NewNotificationRepository(s.db), s.notifier)
	s.news = service.NewNewsService(repository.NewNewsRepository(s.db))
	s.ticker = service.NewTickerService(repository.NewTickerRepository(s.db))
	s.forum = service.NewForumService(forumRepo, s.notifications, s.isAdminByUserID)
	s.comments = service.NewCommentService(commentRepo, s.notifications, s.isAdminByUserID)
	s.mods = service.NewModService(repository.NewModRepository(s.db))
	s.moderation = service.NewModerationService(repository.NewReportRepository(s.db), commentRepo, forumRepo, userRepo, s.notifications)
	s.analysis = service.NewAnalysisService(jobRepo, deps.Store, s.featureFlags, s.isAdminByUserID, s.maxUploadBytes())

	if deps.Analyzer != nil {
		s.analysisWorker = service.NewAnalysisWorker(jobRepo, deps.Store, deps.Analyzer, s.notifications, s.notifier, service.WorkerConfig{
			Workers:      cfg.AnalysisWorkers,
			IdleInterval: cfg.AnalysisIdleInterval,
			JobTimeout:   cfg.AnalysisJobTimeout,
			StaleAfter:   cfg.AnalysisStaleAfter,
		})
		s.analysis.SetWaker(s.analysisWorker.Wake)
	}

	return s, nil
}

func (s *Server) maxUploadBytes() int64 {
	if s.config.ImageMaxUploadSizeMB <= 0 {
		return service.DefaultAnalysisMaxUploadBytes
	}
	return int64(s.config.ImageMaxUploadSizeMB) * 1024 * 1024
}

// App builds the Fiber app with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "CraftNexus API",
		BodyLimit: int(s.maxUploadBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, fe)
			}
			return mapServiceError(c, err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New(helmet.Config{
		// Swagger UI loads inline scripts.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/swagger")
		},
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitedError("Too many requests, please try again later."))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := s.AuthRequired()
	admin := append(s.AuthRequired(), s.AdminRequired())

	// Users and linked accounts
	users := api.Group("/users")
	users.Get("/me", append(auth, s.GetMyProfile)...)
	users.Put("/me", append(auth, s.UpdateMyProfile)...)
	users.Get("/me/linked-accounts", append(auth, s.GetLinkedAccounts)...)
	users.Post("/me/linked-accounts", append(auth, s.LinkAccount)...)
	users.Delete("/me/linked-accounts/:provider", append(auth, s.UnlinkAccount)...)
	users.Get("/:username", s.GetPublicProfile)

	// News and ticker
	news := api.Group("/news")
	news.Get("/", s.GetNews)
	news.Get("/:id/comments", s.GetComments(models.CommentTargetNews))
	news.Post("/:id/comments", append(auth,
		middleware.RateLimit(s.redis, middleware.QuotaComment, s.config.Env),
		s.CreateComment(models.CommentTargetNews))...)
	news.Get("/:slug", s.GetNewsArticle)
	api.Get("/ticker", s.GetTicker)
	api.Get("/features", middleware.OptionalAuth, s.GetMyFeatures)

	// Forum
	forum := api.Group("/forum")
	forum.Get("/categories", s.GetForumCategories)
	forum.Get("/categories/:slug/threads", s.GetForumThreads)
	forum.Post("/categories/:slug/threads", append(auth,
		middleware.RateLimit(s.redis, middleware.QuotaThread, s.config.Env),
		s.CreateForumThread)...)
	forum.Get("/threads/:id", s.GetForumThread)
	forum.Post("/threads/:id/posts", append(auth,
		middleware.RateLimit(s.redis, middleware.QuotaForumReply, s.config.Env),
		s.ReplyToThread)...)
	forum.Delete("/threads/:id", append(auth, s.DeleteForumThread)...)
	forum.Put("/posts/:id", append(auth, s.EditForumPost)...)
	forum.Delete("/posts/:id", append(auth, s.DeleteForumPost)...)

	// Comments shared by every target
	comments := api.Group("/comments")
	comments.Put("/:id", append(auth, s.UpdateComment)...)
	comments.Delete("/:id", append(auth, s.DeleteComment)...)

	// Mods
	mods := api.Group("/mods")
	mods.Get("/", s.GetMods)
	mods.Get("/:id/comments", s.GetComments(models.CommentTargetMod))
	mods.Post("/:id/comments", append(auth,
		middleware.RateLimit(s.redis, middleware.QuotaComment, s.config.Env),
		s.CreateComment(models.CommentTargetMod))...)
	mods.Get("/:slug", s.GetMod)

	// Notifications
	notes := api.Group("/notifications")
	notes.Get("/", append(auth, s.GetNotifications)...)
	notes.Get("/unread-count", append(auth, s.GetUnreadCount)...)
	notes.Post("/read-all", append(auth, s.MarkAllNotificationsRead)...)
	notes.Post("/:id/read", append(auth, s.MarkNotificationRead)...)

	// Reports
	api.Post("/reports", append(auth,
		middleware.RateLimit(s.redis, middleware.QuotaReport, s.config.Env),
		s.CreateReport)...)

	// Weapon analysis
	analysis := api.Group("/weapon-analysis")
	analysis.Post("/", append(auth,
		middleware.RateLimit(s.redis, middleware.QuotaWeaponScans, s.config.Env),
		s.SubmitWeaponAnalysis)...)
	analysis.Get("/", append(auth, s.ListWeaponAnalyses)...)
	analysis.Get("/:id/preview", append(auth, s.GetWeaponAnalysisPreview)...)
	analysis.Get("/:id", append(auth, s.GetWeaponAnalysis)...)

	// Realtime push
	api.Get("/ws", append(s.WebSocketAuthRequired(), s.WebsocketUpgrade, s.WebsocketHandler())...)

	// Admin
	adm := api.Group("/admin", admin...)
	adm.Get("/feature-flags", s.GetFeatureFlags)
	adm.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "CraftNexus Metrics"}))

	adm.Get("/news", s.AdminListNews)
	adm.Post("/news", s.AdminCreateNews)
	adm.Get("/news/:id", s.AdminGetNews)
	adm.Put("/news/:id", s.AdminUpdateNews)
	adm.Post("/news/:id/publish", s.AdminPublishNews)
	adm.Delete("/news/:id", s.AdminDeleteNews)

	adm.Get("/ticker", s.AdminListTicker)
	adm.Post("/ticker", s.AdminCreateTickerItem)
	adm.Put("/ticker/order", s.AdminReorderTicker)
	adm.Put("/ticker/:id", s.AdminUpdateTickerItem)
	adm.Delete("/ticker/:id", s.AdminDeleteTickerItem)

	adm.Post("/forum/categories", s.AdminCreateForumCategory)
	adm.Put("/forum/categories/:id", s.AdminUpdateForumCategory)
	adm.Post("/forum/threads/:id/pin", s.AdminPinThread)
	adm.Post("/forum/threads/:id/lock", s.AdminLockThread)

	adm.Post("/mods", s.AdminCreateMod)
	adm.Post("/mods/import", s.AdminImportMods)
	adm.Put("/mods/:id", s.AdminUpdateMod)
	adm.Delete("/mods/:id", s.AdminDeleteMod)

	adm.Get("/reports", s.AdminListReports)
	adm.Post("/reports/:id/resolve", s.AdminResolveReport)
	adm.Post("/users/:userId/ban", s.AdminSetBan)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires realtime delivery, starts the analysis workers and blocks serving HTTP.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel
	s.done = make(chan struct{})

	app := s.App()

	if s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(ctx, s.notifier); err != nil && ctx.Err() == nil {
				slog.Error("failed to start hub wiring", slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	if s.analysisWorker != nil {
		go func() {
			defer close(s.done)
			if err := s.analysisWorker.Run(ctx); err != nil {
				slog.Error("analysis workers stopped", slog.String("error", err.Error()))
			}
		}()
	} else {
		close(s.done)
		slog.Warn("no analyzer configured; weapon analysis jobs will stay pending")
	}

	slog.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			slog.Error("error shutting down hub", slog.String("error", err.Error()))
		}
	}

	// In-flight jobs finish their terminal write before the DB goes away.
	if s.done != nil {
		select {
		case <-s.done:
		case <-ctx.Done():
			slog.Warn("analysis workers did not stop before shutdown deadline")
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
