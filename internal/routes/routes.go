package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ledgerline/ledgerline/internal/config"
	"github.com/ledgerline/ledgerline/internal/engine"
	"github.com/ledgerline/ledgerline/internal/middleware"
	"github.com/ledgerline/ledgerline/internal/notification"
	"github.com/ledgerline/ledgerline/internal/snapshot"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. The engine is
// fully in-memory; Postgres and Redis are optional and only extend the
// surface (snapshot archive, idempotent replay, rate limiting).
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	notifier := notification.NewLoggerNotifier(d.Logger)
	processor := engine.New(d.Logger, notifier)

	var archive snapshot.Store
	if d.DB != nil {
		archive = snapshot.NewPostgresStore(d.DB)
	} else {
		archive = snapshot.NewMemoryStore()
	}

	handler := engine.NewHandler(processor, archive)

	api := app.Group("/api/v1")
	api.Get("/accounts", handler.ListAccounts)
	api.Get("/accounts/:clientID", handler.GetAccount)
	api.Get("/snapshots/:label", handler.GetArchivedSnapshot)

	token := middleware.TokenAuth(d.Cfg.APITokenHash)
	api.Post("/transactions", token, handler.ApplyTransaction)
	api.Post("/feeds", token, middleware.IngestRateLimit(d.Cache, d.Cfg.IngestRateLimit), handler.IngestFeed)
	api.Post("/snapshots", token, handler.ArchiveSnapshot)

	return nil
}
