package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotseatgames/tictactoe-service/internal/apperror"
	"github.com/hotseatgames/tictactoe-service/internal/entity"
	"github.com/hotseatgames/tictactoe-service/testing/suite"
)

const testTTL = time.Minute

func TestSessionRepository_Create(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Redis, testTTL)

	// Given: a fresh session
	session := entity.NewSession("123")

	// When: Create is called
	err := sessionRepo.Create(ctx, session)

	// Then: no error is returned and the record carries a ttl
	require.NoError(t, err)

	ttl, err := st.Redis.TTL(ctx, sessionKey(session.ID)).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Redis, testTTL)

		// Given: a stored session with one move played
		session := entity.NewSession("123")

		nextGame, err := session.Game.ApplyMove(1, 1)
		require.NoError(t, err)

		session.Game = nextGame
		session.Version = 1

		require.NoError(t, sessionRepo.Create(ctx, session))

		// When: GetByID is called with the existing ID
		retrievedSession, err := sessionRepo.GetByID(ctx, session.ID)

		// Then: the retrieved session matches the saved one
		require.NoError(t, err)
		require.Equal(t, session.ID, retrievedSession.ID)
		require.Equal(t, session.Game, retrievedSession.Game)
		require.Equal(t, session.Version, retrievedSession.Version)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Redis, testTTL)

		nonExistentSessionID := "9999999"

		// When: GetByID is called with a non-existent ID
		retrievedSession, err := sessionRepo.GetByID(ctx, nonExistentSessionID)

		// Then: an ErrSessionNotFound error is returned
		require.Error(t, err)
		assert.Equal(t, ErrSessionNotFound, err)
		assert.Empty(t, retrievedSession.ID)
	})

	t.Run("GetByID_CorruptRecord", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Redis, testTTL)

		// Given: a stored record whose board no sequence of moves can produce
		corruptJSON := `{"id":"123","game":{"board":["X","X","X","","","","","",""],"active_player":"X","status":"ongoing"},"version":3}`
		require.NoError(t, st.Redis.Set(ctx, sessionKey("123"), corruptJSON, testTTL).Err())

		// When: GetByID is called
		_, err := sessionRepo.GetByID(ctx, "123")

		// Then: the record is rejected instead of flowing back into play
		require.Error(t, err)
		require.ErrorIs(t, err, apperror.ErrInvalidState)
	})
}

func TestSessionRepository_Update(t *testing.T) {
	t.Run("Update_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Redis, testTTL)

		// Given: a stored session at version 0
		session := entity.NewSession("123")
		require.NoError(t, sessionRepo.Create(ctx, session))

		// When: an update built on version 0 is written
		nextGame, err := session.Game.ApplyMove(0, 0)
		require.NoError(t, err)

		session.Game = nextGame
		session.Version = 1

		err = sessionRepo.Update(ctx, session)

		// Then: the write lands and the stored record carries the move
		require.NoError(t, err)

		retrievedSession, err := sessionRepo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		require.Equal(t, session.Game, retrievedSession.Game)
		require.Equal(t, uint64(1), retrievedSession.Version)
	})

	t.Run("Update_StaleVersion", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Redis, testTTL)

		// Given: two holders of the same version 0 snapshot
		session := entity.NewSession("123")
		require.NoError(t, sessionRepo.Create(ctx, session))

		first, err := sessionRepo.GetByID(ctx, session.ID)
		require.NoError(t, err)

		second, err := sessionRepo.GetByID(ctx, session.ID)
		require.NoError(t, err)

		// When: the first write lands and the second follows
		firstGame, err := first.Game.ApplyMove(0, 0)
		require.NoError(t, err)

		first.Game = firstGame
		first.Version = 1
		require.NoError(t, sessionRepo.Update(ctx, first))

		secondGame, err := second.Game.ApplyMove(1, 1)
		require.NoError(t, err)

		second.Game = secondGame
		second.Version = 1

		err = sessionRepo.Update(ctx, second)

		// Then: the second write is rejected as stale and the first survives
		require.Error(t, err)
		require.ErrorIs(t, err, apperror.ErrStaleState)

		retrievedSession, err := sessionRepo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		require.Equal(t, first.Game, retrievedSession.Game)
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Redis, testTTL)

		// Given: a session that was never stored
		session := entity.NewSession("9999999")
		session.Version = 1

		// When: Update is called
		err := sessionRepo.Update(ctx, session)

		// Then: an ErrSessionNotFound error is returned
		require.Error(t, err)
		require.ErrorIs(t, err, ErrSessionNotFound)
	})
}
