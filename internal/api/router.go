package api

import (
	"github.com/bagayi/finance-api/internal/api/handler"
	"github.com/bagayi/finance-api/internal/api/middleware"
	"github.com/bagayi/finance-api/internal/config"
	"github.com/bagayi/finance-api/internal/idempotency"
	"github.com/bagayi/finance-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	redis     redis.Cmdable
	idemStore *idempotency.Store
	accounts  *service.AccountService
	transfers *service.TransferService
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *pgxpool.Pool,
	redisClient redis.Cmdable,
	idemStore *idempotency.Store,
	accounts *service.AccountService,
	transfers *service.TransferService,
) *Router {
	return &Router{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		idemStore: idemStore,
		accounts:  accounts,
		transfers: transfers,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))

	healthHandler := handler.NewHealthHandler(api.db, api.redis)
	accountHandler := handler.NewAccountHandler(api.accounts)
	categoryHandler := handler.NewCategoryHandler(api.accounts)
	transferHandler := handler.NewTransferHandler(api.transfers)

	auth := middleware.NewAuthenticator(api.cfg.JWTSecret, api.cfg.JWTIssuer, api.cfg.JWTAudience)

	// Public routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Get("/healthz/live", healthHandler.Live)
		r.Get("/healthz/ready", healthHandler.Ready)
	})
	r.Handle("/metrics", promhttp.Handler())

	// Protected routes.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Post("/v1/accounts", accountHandler.Create)
		r.Get("/v1/accounts", accountHandler.List)
		r.Get("/v1/accounts/{id}", accountHandler.Get)

		r.Post("/v1/categories", categoryHandler.Create)
		r.Get("/v1/categories", categoryHandler.List)

		r.With(middleware.IdempotencyMiddleware(api.idemStore, api.logger)).
			Post("/v1/transfers", transferHandler.Create)
		r.Post("/v1/transfers/preview", transferHandler.Preview)
		r.Get("/v1/transfers", transferHandler.List)
		r.Get("/v1/transfers/frequent-recipients", transferHandler.FrequentRecipients)
		r.Get("/v1/transfers/{id}", transferHandler.Get)
	})

	return r
}
