package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hotseatgames/tictactoe-service/internal/apperror"
	"github.com/hotseatgames/tictactoe-service/internal/game"
	"github.com/hotseatgames/tictactoe-service/internal/repository"
	"github.com/hotseatgames/tictactoe-service/internal/usecase"
)

type turnRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.manager.StartSession(r.Context())
	if err != nil {
		that.respondError(w, err)
		return
	}

	that.respond(w, http.StatusCreated, session)
}

func (that *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.manager.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		that.respondError(w, err)
		return
	}

	that.respond(w, http.StatusOK, session)
}

func (that *Server) handleMakeTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.respondBadRequest(w, "malformed body")
		return
	}

	if req.Row == nil || req.Col == nil {
		that.respondBadRequest(w, "row and col are required")
		return
	}

	session, err := that.manager.MakeTurn(r.Context(), chi.URLParam(r, "sessionID"), *req.Row, *req.Col)
	if err != nil {
		that.respondError(w, err)
		return
	}

	that.respond(w, http.StatusOK, session)
}

func (that *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	session, err := that.manager.ResetGame(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		that.respondError(w, err)
		return
	}

	that.respond(w, http.StatusOK, session)
}

func (that *Server) handleRenamePlayer(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.respondBadRequest(w, "malformed body")
		return
	}

	symbol := game.Mark(chi.URLParam(r, "symbol"))

	player, err := that.manager.RenamePlayer(r.Context(), chi.URLParam(r, "sessionID"), symbol, req.Name)
	if err != nil {
		that.respondError(w, err)
		return
	}

	that.respond(w, http.StatusOK, player)
}

func (that *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Server) respondBadRequest(w http.ResponseWriter, text string) {
	that.respond(w, http.StatusBadRequest, errorBody{Error: text, Code: "bad_request"})
}

func (that *Server) respondError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)

	text := err.Error()
	if status >= http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		text = "internal error"
	}

	that.respond(w, status, errorBody{Error: text, Code: code})
}

// errorStatus - how a rejection is presented over HTTP. The engine and the
// manager decide what is rejected; this layer only picks the status line.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrGameOver):
		return http.StatusConflict, "game_over"
	case errors.Is(err, apperror.ErrOutOfBounds):
		return http.StatusBadRequest, "out_of_bounds"
	case errors.Is(err, apperror.ErrCellOccupied):
		return http.StatusConflict, "cell_occupied"
	case errors.Is(err, apperror.ErrStaleState):
		return http.StatusConflict, "stale_state"
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, usecase.ErrUnknownSlot):
		return http.StatusBadRequest, "unknown_slot"
	case errors.Is(err, usecase.ErrInvalidName):
		return http.StatusBadRequest, "invalid_name"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
