package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokodash/internal/config"
	"tokodash/internal/handlers"
	"tokodash/internal/middleware"
	"tokodash/internal/repositories"
	"tokodash/internal/services"
	logx "tokodash/pkg/logger"
	"tokodash/pkg/rabbitmq"
	"tokodash/pkg/redisstore"
	"tokodash/pkg/shopapi"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// App is the wired HTTP application plus the resources it owns.
type App struct {
	Fiber      *fiber.App
	Moderation *services.ModerationService
	closers    []func() error
}

// Close releases the database, broker and session storage connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewApp wires repositories, services and handlers into a Fiber app.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{}

	// --- Session Store ---
	sessionCfg := fibersession.Config{
		Expiration:     cfg.SessionExpiration,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		KeyGenerator:   uuid.NewString,
	}
	if cfg.RedisURL != "" {
		redisCfg := redisstore.Config{URL: cfg.RedisURL, Prefix: "tokodash:session:", DialTimeout: 5 * time.Second}
		storage, err := redisCfg.NewStorage()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.closers = append(app.closers, storage.Close)
		sessionCfg.Storage = storage
		logx.Info().Msg("sessions stored in Redis")
	}
	store := fibersession.New(sessionCfg)

	// --- Moderation Source ---
	var source repositories.PendingItemSource
	switch cfg.ModerationSource {
	case "database":
		db, err := repositories.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			app.Close()
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		app.closers = append(app.closers, sqlDB.Close)
		if err := repositories.Migrate(db); err != nil {
			app.Close()
			return nil, err
		}
		source = repositories.NewGORMPendingSource(db)
	default:
		source = repositories.NewSamplePendingSource()
	}

	// --- Decision Publisher ---
	var publisher services.DecisionPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, mqClient.Close)
		publisher = mqClient
	}

	// --- Initialize Services ---
	shop := shopapi.NewClient(shopapi.Config{BaseURL: cfg.ShopAPIURL, Timeout: cfg.ShopAPITimeout})
	app.Moderation = services.NewModerationService(source, publisher, cfg.ModerationLoadDelay)
	accountService := services.NewAccountService(shop, cfg.LoginURL)
	authService := services.NewAuthService(shop, cfg.AdminUsername, cfg.AdminPasswordHash)
	if !cfg.AdminLoginEnabled() {
		logx.Warn().Msg("ADMIN_PASSWORD_HASH is empty, admin login is disabled")
	}

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService, store)
	accountHandler := handlers.NewAccountHandler(accountService, store)
	adminHandler := handlers.NewAdminHandler(app.Moderation, store)

	// --- Initialize Fiber App ---
	app.Fiber = fiber.New(fiber.Config{
		AppName:               "tokodash",
		Views:                 handlers.NewTemplateCache(),
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: cfg.IsProduction(),
	})

	// --- Middleware ---
	app.Fiber.Use(recover.New())
	app.Fiber.Use(logger.New())
	if cfg.CSRFEnabled {
		app.Fiber.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:_csrf",
			CookieName:     "csrf_",
			CookieSameSite: "Lax",
			CookieSecure:   cfg.CookieSecure,
			CookieHTTPOnly: true,
			Expiration:     time.Hour,
			KeyGenerator:   uuid.NewString,
			ContextKey:     handlers.CSRFContextKey,
		}))
	}

	// --- Health Check Endpoint ---
	app.Fiber.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":        "healthy",
			"time":          time.Now().Format(time.RFC3339),
			"queue_loading": app.Moderation.Loading(),
		})
	})

	// --- Routes ---
	app.Fiber.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	})
	authHandler.RegisterRoutes(app.Fiber)
	accountHandler.RegisterRoutes(app.Fiber)
	adminHandler.RegisterRoutes(app.Fiber, middleware.AdminRequired(store, "/admin/login"))

	return app, nil
}

func main() {
	// --- Configuration ---
	if err := config.LoadDotEnv(".env"); err != nil {
		logx.Fatal().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load(viper.New())
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to load configuration")
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})

	app, err := NewApp(cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialize app")
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logx.Info().Str("port", cfg.Port).Msg("starting server")
		if err := app.Fiber.Listen(cfg.Port); err != nil {
			logx.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	logx.Info().Msg("shutting down server...")

	if err := app.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		logx.Error().Err(err).Msg("error during Fiber shutdown")
	}
	if err := app.Close(); err != nil {
		logx.Error().Err(err).Msg("error releasing resources")
	}
	logx.Info().Msg("server gracefully stopped")
}
