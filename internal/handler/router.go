package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/auth"
	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Auth      *AuthHandler
	Tasks     *TaskHandler
	Store     Pinger
	SecretKey []byte
	Logger    *zap.Logger
	// Static serves the browser client at "/"; nil disables it.
	Static http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter() // Создаем роутер
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", health(cfg.Store, cfg.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)

		r.Route("/tasks", func(r chi.Router) {
			r.Use(auth.Middleware(cfg.SecretKey, cfg.Logger))

			r.Get("/", cfg.Tasks.List)
			r.Post("/", cfg.Tasks.Create)
			r.Get("/stats", cfg.Tasks.Stats)
			r.Get("/{id}", cfg.Tasks.Get)
			r.Put("/{id}/status", cfg.Tasks.UpdateStatus)
			r.Delete("/{id}", cfg.Tasks.Delete)
		})
	})

	if cfg.Static != nil {
		r.Handle("/*", cfg.Static)
	}

	return r
}

func health(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.Error("store ping failed", zap.Error(err))
			respond.Error(w, r, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
