package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hotseatgames/tictactoe-service/internal/entity"
	"github.com/hotseatgames/tictactoe-service/internal/game"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	Save(ctx context.Context, sessionID string, player *entity.Player) error
	GetBySymbol(ctx context.Context, sessionID string, symbol game.Mark) (*entity.Player, error)
	ListBySession(ctx context.Context, sessionID string) ([]*entity.Player, error)
}

type dbPlayer struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPlayerRepository - stores one identity record per board slot under
// player:<session>:<symbol>, separate from the session record so a rename
// never rewrites game state.
func NewPlayerRepository(client *redis.Client, ttl time.Duration) PlayerRepository {
	return &dbPlayer{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbPlayer) Save(ctx context.Context, sessionID string, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	err = that.client.Set(ctx, playerKey(sessionID, player.Symbol), playerJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetBySymbol(ctx context.Context, sessionID string, symbol game.Mark) (*entity.Player, error) {
	response, err := that.client.Get(ctx, playerKey(sessionID, symbol)).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Player{}, ErrPlayerNotFound
	}

	if err != nil {
		return &entity.Player{}, fmt.Errorf("failed to get player by symbol: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return &entity.Player{}, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}

func (that *dbPlayer) ListBySession(ctx context.Context, sessionID string) ([]*entity.Player, error) {
	players := make([]*entity.Player, 0, 2)

	for _, symbol := range []game.Mark{game.MarkX, game.MarkO} {
		player, err := that.GetBySymbol(ctx, sessionID, symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to list players for session %s: %w", sessionID, err)
		}

		players = append(players, player)
	}

	return players, nil
}

func playerKey(sessionID string, symbol game.Mark) string {
	return "player:" + sessionID + ":" + string(symbol)
}
