package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

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

type subscriptions interface {
	Subscribe(sessionID string, fn func(*entity.Session)) func()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type Server struct {
	logger        *slog.Logger
	manager       sessionManager
	subscriptions subscriptions

	handlers map[string]func(ctx context.Context, cl *client, message *Message) error
}

func New(logger *slog.Logger, manager sessionManager, subscriptions subscriptions) *Server {
	server := &Server{
		logger:        logger.With("component", "websocket"),
		manager:       manager,
		subscriptions: subscriptions,

		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameReset] = server.handleGameReset
	server.handlers[actionPlayerRename] = server.handlePlayerRename

	return server
}

// Start - serves the socket endpoint until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveConnection)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
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

// serveConnection - upgrades the request and pumps its messages until the
// client goes away.
func (that *Server) serveConnection(w http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	cl := &client{conn: conn}

	defer func() {
		if cl.unsubscribe != nil {
			cl.unsubscribe()
		}

		conn.Close()
	}()

	log.Info("connection established", "remote", conn.RemoteAddr().String())

	that.readLoop(req.Context(), cl)
}

func (that *Server) readLoop(ctx context.Context, cl *client) {
	log := that.logger.With("method", "readLoop")

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("connection dropped", "error", err)
			}

			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			that.sendError(cl, "", codeBadRequest, "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.sendError(cl, message.Action, codeBadRequest, "unknown action")
			continue
		}

		if err = handler(ctx, cl, &message); err != nil {
			log.Error("failed to handle message", "action", message.Action, "error", err)
		}
	}
}

// watch - points the connection at a session. One connection renders one
// board, so a previous subscription is dropped first.
func (that *Server) watch(cl *client, sessionID string) {
	if cl.unsubscribe != nil {
		cl.unsubscribe()
	}

	cl.sessionID = sessionID
	cl.unsubscribe = that.subscriptions.Subscribe(sessionID, func(session *entity.Session) {
		if err := that.sendState(cl, session); err != nil {
			that.logger.Error("failed to push snapshot", "session", sessionID, "error", err)
		}
	})
}

func (that *Server) sendState(cl *client, session *entity.Session) error {
	return that.sendMessage(cl, actionGameState, session)
}

func (that *Server) sendMessage(cl *client, action string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := &Message{
		Action:  action,
		Payload: raw,
	}

	if err = cl.send(message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (that *Server) sendError(cl *client, action, code, text string) {
	payload := ErrorPayload{
		Action:  action,
		Code:    code,
		Message: text,
	}

	if err := that.sendMessage(cl, actionError, payload); err != nil {
		that.logger.Error("failed to send error response", "error", err)
	}
}
