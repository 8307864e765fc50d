package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hotseatgames/tictactoe-service/internal/apperror"
	"github.com/hotseatgames/tictactoe-service/internal/entity"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	Update(ctx context.Context, session *entity.Session) error
}

type dbSession struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository - stores session records under session:<id>. Records are
// live state, not an archive: every write refreshes the ttl so abandoned boards
// expire on their own.
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &dbSession{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbSession) Create(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	err = that.client.Set(ctx, sessionKey(session.ID), sessionJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	response, err := that.client.Get(ctx, sessionKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Session{}, ErrSessionNotFound
	}

	if err != nil {
		return &entity.Session{}, fmt.Errorf("failed to get session by id: %w", err)
	}

	var existingSession entity.Session
	if err = json.Unmarshal([]byte(response), &existingSession); err != nil {
		return &entity.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	// a snapshot the engine could not have produced must not flow back into play
	if err = existingSession.Game.Validate(); err != nil {
		return &entity.Session{}, fmt.Errorf("stored session %s: %w", id, err)
	}

	return &existingSession, nil
}

// Update - writes the session only if the stored record still carries the
// version this one was built from. A move computed against a snapshot someone
// else already replaced fails with ErrStaleState instead of overwriting.
func (that *dbSession) Update(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	key := sessionKey(session.ID)

	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		current, txErr := tx.Get(ctx, key).Result()
		if errors.Is(txErr, redis.Nil) {
			return ErrSessionNotFound
		}

		if txErr != nil {
			return fmt.Errorf("failed to get session by id: %w", txErr)
		}

		var stored entity.Session
		if txErr = json.Unmarshal([]byte(current), &stored); txErr != nil {
			return fmt.Errorf("failed to unmarshal session: %w", txErr)
		}

		if stored.Version+1 != session.Version {
			return fmt.Errorf("%w: stored version %d, update built on %d", apperror.ErrStaleState, stored.Version, session.Version-1)
		}

		_, txErr = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, that.ttl)
			return nil
		})

		return txErr
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: session %s changed mid-update", apperror.ErrStaleState, session.ID)
	}

	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

// marshalSession - serializes the record without the composed player slots;
// those live under their own keys.
func marshalSession(session *entity.Session) ([]byte, error) {
	record := *session
	record.Players = nil

	sessionJSON, err := json.Marshal(&record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	return sessionJSON, nil
}

func sessionKey(id string) string {
	return "session:" + id
}
