// Package main is the entrypoint for the fleet administration API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ambufleet/ambufleet/internal/auth"
	"github.com/ambufleet/ambufleet/internal/cache"
	"github.com/ambufleet/ambufleet/internal/config"
	"github.com/ambufleet/ambufleet/internal/handler"
	"github.com/ambufleet/ambufleet/internal/middleware"
	"github.com/ambufleet/ambufleet/internal/model"
	"github.com/ambufleet/ambufleet/internal/repository"
	"github.com/ambufleet/ambufleet/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTExpiry)

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(repo, issuer, logger)
	userHandler := handler.NewUserHandler(repo, cacheClient, cfg.JWTExpiry, logger)
	employeeHandler := handler.NewEmployeeHandler(repo, cacheClient, cfg.JWTExpiry, logger)
	vehicleHandler := handler.NewVehicleHandler(repo, logger)

	r := setupRouter(routerDeps{
		health:    healthHandler,
		auth:      authHandler,
		users:     userHandler,
		employees: employeeHandler,
		vehicles:  vehicleHandler,
		issuer:    issuer,
		cache:     cacheClient,
		cfg:       cfg,
		logger:    logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health    *handler.HealthHandler
	auth      *handler.AuthHandler
	users     *handler.UserHandler
	employees *handler.EmployeeHandler
	vehicles  *handler.VehicleHandler
	issuer    *auth.Issuer
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: deps.cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Probes, no auth required
	r.Get("/health", deps.health.Health)
	r.Get("/readyz", deps.health.Readyz)

	authenticate := middleware.Authenticate(middleware.AuthConfig{
		Logger:      deps.logger,
		Verifier:    deps.issuer,
		Revocations: deps.cache,
	})

	loginThrottle := middleware.LoginRateLimit(middleware.LoginRateLimitConfig{
		Logger:  deps.logger,
		Limiter: deps.cache,
		Enabled: deps.cfg.LoginRateLimitEnabled,
		RPM:     deps.cfg.LoginRateLimitRPM,
		Burst:   deps.cfg.LoginRateLimitBurst,
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginThrottle).Post("/login", deps.auth.Login)
			r.Post("/register", deps.auth.Register)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticate)
			r.With(middleware.RequireRole(model.RoleAdministrador, model.RoleGestor)).Get("/", deps.users.List)
			r.Get("/{id}", deps.users.Get)
			r.With(middleware.RequireRole(model.RoleAdministrador)).Put("/{id}", deps.users.Update)
			r.With(middleware.RequireRole(model.RoleAdministrador)).Delete("/{id}", deps.users.Delete)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Use(authenticate)
			r.With(middleware.RequireRole(model.RoleAdministrador, model.RoleGestor)).Get("/", deps.employees.List)
			r.With(middleware.RequireRole(model.RoleAdministrador, model.RoleGestor)).Post("/", deps.employees.Create)
			r.With(middleware.RequireRole(model.RoleAdministrador, model.RoleGestor)).Put("/{id}", deps.employees.Update)
			r.With(middleware.RequireRole(model.RoleAdministrador)).Delete("/{id}", deps.employees.Delete)
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", deps.vehicles.List)
			r.Get("/{id}", deps.vehicles.Get)
			r.With(middleware.RequireRole(model.RoleAdministrador, model.RoleGestor)).Post("/", deps.vehicles.Create)
			r.With(middleware.RequireRole(model.RoleAdministrador, model.RoleGestor)).Put("/{id}", deps.vehicles.Update)
			r.With(middleware.RequireRole(model.RoleAdministrador)).Delete("/{id}", deps.vehicles.Delete)
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
