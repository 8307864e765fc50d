package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hotseatgames/tictactoe-service/internal/apperror"
	"github.com/hotseatgames/tictactoe-service/internal/entity"
	"github.com/hotseatgames/tictactoe-service/internal/repository"
	"github.com/hotseatgames/tictactoe-service/internal/usecase"
)

func (that *Server) handleConnect(ctx context.Context, cl *client, message *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payload ConnectPayload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			that.sendError(cl, message.Action, codeBadRequest, "malformed payload")
			return nil
		}
	}

	var (
		session *entity.Session
		err     error
	)

	if payload.SessionID == "" {
		session, err = that.manager.StartSession(ctx)
	} else {
		session, err = that.manager.GetSession(ctx, payload.SessionID)
	}

	if err != nil {
		log.Error("failed to connect to session", "session", payload.SessionID, "error", err)
		that.sendError(cl, message.Action, errorCode(err), errorText(err))

		return nil
	}

	that.watch(cl, session.ID)

	log.Info("client connected", "session", session.ID)

	return that.sendState(cl, session)
}

func (that *Server) handleGameTurn(ctx context.Context, cl *client, message *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	if cl.sessionID == "" {
		that.sendError(cl, message.Action, codeBadRequest, "connect to a session first")
		return nil
	}

	var payload TurnPayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		that.sendError(cl, message.Action, codeBadRequest, "malformed payload")
		return nil
	}

	if payload.Row == nil || payload.Col == nil {
		that.sendError(cl, message.Action, codeBadRequest, "row and col are required")
		return nil
	}

	if _, err := that.manager.MakeTurn(ctx, cl.sessionID, *payload.Row, *payload.Col); err != nil {
		log.Info("turn rejected", "session", cl.sessionID, "error", err)
		that.sendError(cl, message.Action, errorCode(err), errorText(err))

		return nil
	}

	// the accepted turn reaches this client through its subscription
	return nil
}

func (that *Server) handleGameReset(ctx context.Context, cl *client, message *Message) error {
	log := that.logger.With("method", "handleGameReset")

	if cl.sessionID == "" {
		that.sendError(cl, message.Action, codeBadRequest, "connect to a session first")
		return nil
	}

	if _, err := that.manager.ResetGame(ctx, cl.sessionID); err != nil {
		log.Error("failed to reset game", "session", cl.sessionID, "error", err)
		that.sendError(cl, message.Action, errorCode(err), errorText(err))

		return nil
	}

	log.Info("game reset", "session", cl.sessionID)

	return nil
}

func (that *Server) handlePlayerRename(ctx context.Context, cl *client, message *Message) error {
	log := that.logger.With("method", "handlePlayerRename")

	if cl.sessionID == "" {
		that.sendError(cl, message.Action, codeBadRequest, "connect to a session first")
		return nil
	}

	var payload RenamePayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		that.sendError(cl, message.Action, codeBadRequest, "malformed payload")
		return nil
	}

	if _, err := that.manager.RenamePlayer(ctx, cl.sessionID, payload.Symbol, payload.Name); err != nil {
		log.Info("rename rejected", "session", cl.sessionID, "error", err)
		that.sendError(cl, message.Action, errorCode(err), errorText(err))

		return nil
	}

	return nil
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, apperror.ErrGameOver):
		return codeGameOver
	case errors.Is(err, apperror.ErrOutOfBounds):
		return codeOutOfBounds
	case errors.Is(err, apperror.ErrCellOccupied):
		return codeCellOccupied
	case errors.Is(err, apperror.ErrStaleState):
		return codeStaleState
	case errors.Is(err, repository.ErrSessionNotFound):
		return codeSessionNotFound
	case errors.Is(err, usecase.ErrUnknownSlot):
		return codeUnknownSlot
	case errors.Is(err, usecase.ErrInvalidName):
		return codeInvalidName
	default:
		return codeInternal
	}
}

// errorText - what the rejected client sees. Internals stay in the logs.
func errorText(err error) string {
	if errorCode(err) == codeInternal {
		return "internal error"
	}

	return err.Error()
}
