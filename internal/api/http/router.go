package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	auth "github.com/mind-engage/whosthat/internal/auth/middleware"
	"github.com/mind-engage/whosthat/internal/catalog"
	"github.com/mind-engage/whosthat/internal/logging"
)

type RouterConfig struct {
	Game         GameDeps
	Auth         *auth.AuthService
	SecureCookie bool
	CORSOrigins  []string
	Logger       *zap.Logger
}

// NewRouter wires the page, the game API and the health checks.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Game.Logger == nil {
		cfg.Game.Logger = logger
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(logger), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Game.Catalog.Status() != catalog.StatusReady {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	MountAssets(r)

	r.Route("/api", func(ar chi.Router) {
		ar.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		ar.Use(auth.SessionMiddleware(cfg.Auth, cfg.SecureCookie, logger))
		MountGame(ar, cfg.Game)
	})
	return r
}
