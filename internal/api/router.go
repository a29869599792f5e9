package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/citamed/citamed-scheduling/internal/availability"
)

type RouterConfig struct {
	Service BookingService
	Rules   availability.Repository
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Get("/doctors/{doctorID}/availability", availabilityHandler(cfg.Service))
	r.Get("/doctors/{doctorID}/availability/range", availabilityRangeHandler(cfg.Service))

	r.Post("/doctors/{doctorID}/availability-rules", createRuleHandler(cfg.Rules))
	r.Get("/doctors/{doctorID}/availability-rules", listRulesHandler(cfg.Rules))
	r.Delete("/availability-rules/{id}", deleteRuleHandler(cfg.Rules))

	r.Post("/appointments", bookAppointmentHandler(cfg.Service))

	return r
}
