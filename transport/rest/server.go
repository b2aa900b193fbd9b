package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-web/pkg/handlers"
)

const shutdownTimeout = 5 * time.Second

// NewRouter mounts the page, the JSON API, the websocket endpoint and the metrics
// behind the session cookie middleware.
func NewRouter(logger *slog.Logger, api *Handlers, ws http.Handler, metrics http.Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/ping", handlers.PingHandler)
	router.Method(http.MethodGet, "/metrics", metrics)

	router.Group(func(r chi.Router) {
		r.Use(handlers.SessionMiddleware(logger))

		r.Get("/", api.Index)
		r.Method(http.MethodGet, "/ws", ws)

		r.Route("/api", func(r chi.Router) {
			r.Get("/game", api.GetGame)
			r.Post("/game/cells/{index}", api.SelectCell)
			r.Post("/game/reset", api.ResetGame)
			r.Post("/scores/reset", api.ResetScores)
		})
	})

	return router
}

// Start serves handler on port until ctx is done, then shuts down gracefully.
func Start(ctx context.Context, logger *slog.Logger, port string, handler http.Handler) error {
	log := logger.With("method", "Start")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("graceful shutdown did not complete", "error", err)

			if err = srv.Close(); err != nil {
				return fmt.Errorf("failed to close server: %w", err)
			}
		}

		log.Info("HTTP server stopped")
		return nil
	}
}
