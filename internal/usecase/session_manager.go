package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hotseatgames/tictactoe-service/internal/entity"
	"github.com/hotseatgames/tictactoe-service/internal/game"
	"github.com/hotseatgames/tictactoe-service/internal/repository"
)

var (
	ErrUnknownSlot = errors.New("no player slot for that symbol")
	ErrInvalidName = errors.New("player name must be 1 to 32 characters")
)

const maxNameLength = 32

type sessionRepo interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	Update(ctx context.Context, session *entity.Session) error
}

type playerRepo interface {
	Save(ctx context.Context, sessionID string, player *entity.Player) error
	GetBySymbol(ctx context.Context, sessionID string, symbol game.Mark) (*entity.Player, error)
	ListBySession(ctx context.Context, sessionID string) ([]*entity.Player, error)
}

type publisher interface {
	Publish(sessionID string, session *entity.Session)
}

// SessionManager is the only writer of session state. Transports hand it
// intents; it loads the snapshot, runs the engine, persists the result and
// publishes the new snapshot to whoever subscribed to the session.
type SessionManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	playerRepo  playerRepo
	publisher   publisher
}

func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo, playerRepo playerRepo, publisher publisher) *SessionManager {
	return &SessionManager{
		logger: logger.With("component", "session_manager"),

		sessionRepo: sessionRepo,
		playerRepo:  playerRepo,
		publisher:   publisher,
	}
}

// StartSession - creates a session with a fresh game and both default player
// slots persisted.
func (that *SessionManager) StartSession(ctx context.Context) (*entity.Session, error) {
	log := that.logger.With("method", "StartSession")

	session := entity.NewSession(uuid.NewString())

	if err := that.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	players, err := that.seedPlayers(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	session.Players = players

	log.Info("session started", "id", session.ID)

	return session, nil
}

// GetSession - returns the current snapshot with composed player slots.
func (that *SessionManager) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err = that.attachPlayers(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// MakeTurn - applies a move intent to the session's game. A rejected move
// returns the engine's error untouched and leaves the stored state as it was;
// an accepted one lands via compare-and-swap and is published.
func (that *SessionManager) MakeTurn(ctx context.Context, sessionID string, row, col int) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	nextGame, err := session.Game.ApplyMove(row, col)
	if err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	session.Game = nextGame
	session.Version++

	if err = that.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if err = that.attachPlayers(ctx, session); err != nil {
		return nil, err
	}

	that.publisher.Publish(session.ID, session)

	return session, nil
}

// ResetGame - swaps in a fresh game. This is the only way out of a terminal
// state; it also works mid-game as a restart.
func (that *SessionManager) ResetGame(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.Game = game.NewGame()
	session.Version++

	if err = that.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if err = that.attachPlayers(ctx, session); err != nil {
		return nil, err
	}

	that.publisher.Publish(session.ID, session)

	return session, nil
}

// RenamePlayer - relabels one slot. Identity lives in its own records, so the
// session record and its version are not touched; subscribers still get a
// snapshot push so rendered labels refresh.
func (that *SessionManager) RenamePlayer(ctx context.Context, sessionID string, symbol game.Mark, name string) (*entity.Player, error) {
	log := that.logger.With("method", "RenamePlayer")

	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if symbol != game.MarkX && symbol != game.MarkO {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, symbol)
	}

	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, ErrInvalidName
	}

	player := &entity.Player{Symbol: symbol, Name: name}
	if err = that.playerRepo.Save(ctx, sessionID, player); err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}

	if err = that.attachPlayers(ctx, session); err != nil {
		// the rename landed; only the notification snapshot is lost
		log.Error("failed to compose session after rename", "error", err, "id", sessionID)

		return player, nil
	}

	that.publisher.Publish(session.ID, session)

	return player, nil
}

// attachPlayers - composes the slot records onto the session. Slot records
// expire on their own ttl, so a long-lived session can outlive them; in that
// case the missing slots are re-seeded rather than serving a board with no
// labels.
func (that *SessionManager) attachPlayers(ctx context.Context, session *entity.Session) error {
	players, err := that.playerRepo.ListBySession(ctx, session.ID)

	if errors.Is(err, repository.ErrPlayerNotFound) {
		players, err = that.healPlayers(ctx, session.ID)
	}

	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}

	session.Players = players

	return nil
}

// healPlayers - re-seeds only the slots whose records expired; a slot that
// survived keeps its name.
func (that *SessionManager) healPlayers(ctx context.Context, sessionID string) ([]*entity.Player, error) {
	players := make([]*entity.Player, 0, 2)

	for _, fallback := range entity.DefaultPlayers() {
		player, err := that.playerRepo.GetBySymbol(ctx, sessionID, fallback.Symbol)

		if errors.Is(err, repository.ErrPlayerNotFound) {
			player = fallback
			err = that.playerRepo.Save(ctx, sessionID, player)
		}

		if err != nil {
			return nil, err
		}

		players = append(players, player)
	}

	return players, nil
}

func (that *SessionManager) seedPlayers(ctx context.Context, sessionID string) ([]*entity.Player, error) {
	players := entity.DefaultPlayers()

	for _, player := range players {
		if err := that.playerRepo.Save(ctx, sessionID, player); err != nil {
			return nil, fmt.Errorf("failed to save player: %w", err)
		}
	}

	return players, nil
}
