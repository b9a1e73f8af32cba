package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/coreybb/dietlog/auth"
	"github.com/coreybb/dietlog/metrics"
	rh "github.com/coreybb/dietlog/route-handlers"
	"github.com/coreybb/dietlog/webutil"
)

const (
	usersBasePath = "/users"
	mealsBasePath = "/meals"
	loginSubPath  = "/login"
	metricsPath   = "/metrics"
)

// RouterConfig carries everything SetupRoutes wires together.
type RouterConfig struct {
	Logger         *zap.Logger
	Sessions       *auth.Service
	CookieName     string
	LoginLimiter   *RateLimiter
	RequestTimeout time.Duration
}

func SetupRoutes(cfg RouterConfig, userHandler *rh.UserHandler, mealHandler *rh.MealHandler) http.Handler {
	r := chi.NewRouter()
	mk := func(h webutil.AppHandler) http.HandlerFunc { return webutil.MakeHandler(cfg.Logger, h) }

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(SetHeader(webutil.HeaderContentType, webutil.ContentTypeJSONUTF8))

	configureUserRoutes(r, userHandler, cfg.LoginLimiter, mk)
	configureMealRoutes(r, mealHandler, RequireSession(cfg.Sessions, cfg.CookieName, cfg.Logger), mk)

	r.Get("/healthz", handleHealthCheck)
	r.Method(http.MethodGet, metricsPath, metrics.Handler())

	return r
}

func pathWithParam(basePath string, paramName string) string {
	return basePath + "/{" + paramName + "}"
}

// --- User Routes ---
func configureUserRoutes(r chi.Router, h *rh.UserHandler, limiter *RateLimiter, mk func(webutil.AppHandler) http.HandlerFunc) {
	r.Route(usersBasePath, func(r chi.Router) {
		r.Get("/", mk(h.HandleGetUsers))
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Handler)
			}
			r.Post("/", mk(h.HandleCreateUser))
			r.Post(loginSubPath, mk(h.HandleLogin))
		})
	})
}

// --- Meal Routes (session required) ---
func configureMealRoutes(r chi.Router, h *rh.MealHandler, requireSession func(http.Handler) http.Handler, mk func(webutil.AppHandler) http.HandlerFunc) {
	r.Route(mealsBasePath, func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/", mk(h.HandleGetMeals))
		r.Post("/", mk(h.HandleCreateMeal))
		r.Get(metricsPath, mk(h.HandleGetMetrics))
		r.Route(pathWithParam("", rh.MealIDParam), func(r chi.Router) {
			r.Get("/", mk(h.HandleGetMeal))
			r.Put("/", mk(h.HandleUpdateMeal))
			r.Delete("/", mk(h.HandleDeleteMeal))
		})
	})
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
