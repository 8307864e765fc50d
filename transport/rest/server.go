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

	"github.com/hotseatgames/tictactoe-service/internal/entity"
	"github.com/hotseatgames/tictactoe-service/internal/game"
)

type sessionManager interface {
	StartSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	MakeTurn(ctx context.Context, sessionID string, row, col int) (*entity.Session, error)
	ResetGame(ctx context.Context, sessionID string) (*entity.Session, error)
	RenamePlayer(ctx context.Context, sessionID string, symbol game.Mark, name string) (*entity.Player, error)
}

// Server is the re-poll surface: every response body is the same snapshot a
// socket subscriber would have been pushed.
type Server struct {
	logger  *slog.Logger
	manager sessionManager
}

func New(logger *slog.Logger, manager sessionManager) *Server {
	return &Server{
		logger:  logger.With("component", "rest"),
		manager: manager,
	}
}

func (that *Server) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/ping", that.handlePing)

	router.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", that.handleCreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", that.handleGetSession)
			r.Post("/turns", that.handleMakeTurn)
			r.Post("/reset", that.handleResetGame)
			r.Put("/players/{symbol}", that.handleRenamePlayer)
		})
	})

	return router
}

// Start - serves the REST API until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
