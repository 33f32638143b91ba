package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/stockroom/api/controllers"
	"github.com/angelmondragon/stockroom/api/middleware"
	"github.com/angelmondragon/stockroom/internal/auth"
	"github.com/angelmondragon/stockroom/internal/inventory"
	"github.com/angelmondragon/stockroom/pkg/config"
	"github.com/angelmondragon/stockroom/pkg/db"
	"github.com/angelmondragon/stockroom/pkg/enums"
	"github.com/angelmondragon/stockroom/pkg/logger"
	"github.com/angelmondragon/stockroom/pkg/metrics"
	"github.com/angelmondragon/stockroom/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Redis is optional; a nil
// client disables auth rate limiting and is reported as disabled by readiness.
type Deps struct {
	DB               db.Pinger
	Redis            *redis.Client
	Gatherer         prometheus.Gatherer
	HTTPMetrics      *metrics.HTTPMetrics
	AuthMetrics      *metrics.AuthMetrics
	Gate             middleware.Gate
	AuthService      auth.Service
	InventoryService inventory.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
		middleware.Logging(logg),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}

	var limiter middleware.RateLimiter
	readiness := map[string]controllers.Pinger{"db": deps.DB, "redis": nil}
	if deps.Redis != nil {
		limiter = deps.Redis
		readiness["redis"] = deps.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginSubjectLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterLoginLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.With(middleware.AuthRateLimit(registerPolicy, limiter, deps.AuthMetrics, logg)).
		Post("/add_user", controllers.AddUser(deps.AuthService, logg))
	r.With(middleware.AuthRateLimit(loginPolicy, limiter, deps.AuthMetrics, logg)).
		Post("/get_token", controllers.GetToken(deps.AuthService, logg))

	r.Route("/storage", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Gate, logg))
		r.With(middleware.RequireRole(deps.Gate, enums.RoleTrader, logg)).
			Post("/add_product", controllers.AddProduct(deps.InventoryService, logg))
		r.With(middleware.RequireRole(deps.Gate, enums.RoleBuyer, logg)).
			Get("/buy_product", controllers.BuyProduct(deps.InventoryService, logg))
	})

	return r
}
