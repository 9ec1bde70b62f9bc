package usecase

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidola36/run-game/internal/apperror"
	"github.com/davidola36/run-game/internal/entity"
	"github.com/davidola36/run-game/internal/repository"
)

func newManager(t *testing.T) *RoomManager {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRoomManager(logger, repository.NewRoomRepository())
}

func TestRoomManager_CreateRoom(t *testing.T) {
	t.Run("Creates a room with the creator as host", func(t *testing.T) {
		manager := newManager(t)

		// When: a connection creates a room
		room, err := manager.CreateRoom("host-1")

		// Then: the code is well-formed and the host is the sole participant
		require.NoError(t, err)
		assert.Len(t, room.ID, 6)
		assert.Equal(t, entity.NormalizeRoomCode(room.ID), room.ID)
		assert.Equal(t, "host-1", room.HostID)
		assert.Len(t, room.Players, 1)
		assert.False(t, room.IsStarted())
	})

	t.Run("Rejects a creator who already owns a room", func(t *testing.T) {
		manager := newManager(t)

		_, err := manager.CreateRoom("host-1")
		require.NoError(t, err)

		_, err = manager.CreateRoom("host-1")

		require.ErrorIs(t, err, apperror.ErrAlreadyInRoom)
	})
}

func TestRoomManager_JoinRoom(t *testing.T) {
	t.Run("Normalizes the code and starts the room", func(t *testing.T) {
		manager := newManager(t)

		room, err := manager.CreateRoom("host-1")
		require.NoError(t, err)

		// When: a second connection joins with a lowercase, padded code
		joined, player, err := manager.JoinRoom("  "+strings.ToLower(room.ID)+" ", "guest-1")

		// Then: the join lands in the same room, which is now started
		require.NoError(t, err)
		assert.Equal(t, room.ID, joined.ID)
		assert.Equal(t, entity.GuestPlayerNumber, player.Number)
		assert.True(t, joined.IsStarted())
	})

	t.Run("Unknown code never mutates any room", func(t *testing.T) {
		manager := newManager(t)

		room, err := manager.CreateRoom("host-1")
		require.NoError(t, err)

		_, _, err = manager.JoinRoom("ZZZZZZ", "guest-1")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
		assert.Len(t, room.Players, 1)
	})

	t.Run("Empty code is rejected", func(t *testing.T) {
		manager := newManager(t)

		_, _, err := manager.JoinRoom("   ", "guest-1")

		require.ErrorIs(t, err, apperror.ErrEmptyRoomCode)
	})

	t.Run("Started room rejects a third joiner", func(t *testing.T) {
		manager := newManager(t)

		room, err := manager.CreateRoom("host-1")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(room.ID, "guest-1")
		require.NoError(t, err)

		_, _, err = manager.JoinRoom(room.ID, "guest-2")

		require.ErrorIs(t, err, apperror.ErrGameInProgress)
	})
}

func TestRoomManager_LeaveRoom(t *testing.T) {
	t.Run("Room survives while a participant remains", func(t *testing.T) {
		manager := newManager(t)

		room, err := manager.CreateRoom("host-1")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(room.ID, "guest-1")
		require.NoError(t, err)

		// When: the guest disconnects
		left, err := manager.LeaveRoom("guest-1")

		// Then: the room is retained with the host still inside
		require.NoError(t, err)
		assert.Len(t, left.Players, 1)

		still, err := manager.Room(room.ID)
		require.NoError(t, err)
		assert.Equal(t, room.ID, still.ID)
	})

	t.Run("Room is deleted once the last participant leaves", func(t *testing.T) {
		manager := newManager(t)

		room, err := manager.CreateRoom("host-1")
		require.NoError(t, err)

		left, err := manager.LeaveRoom("host-1")
		require.NoError(t, err)
		assert.True(t, left.IsEmpty())

		_, err = manager.Room(room.ID)
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Unknown player reports not-in-room", func(t *testing.T) {
		manager := newManager(t)

		_, err := manager.LeaveRoom("ghost")

		require.ErrorIs(t, err, apperror.ErrNotInRoom)
	})
}

func TestRoomManager_RoomOf(t *testing.T) {
	t.Run("Finds the room a player belongs to", func(t *testing.T) {
		manager := newManager(t)

		room, err := manager.CreateRoom("host-1")
		require.NoError(t, err)
		_, _, err = manager.JoinRoom(room.ID, "guest-1")
		require.NoError(t, err)

		found, err := manager.RoomOf("guest-1")

		require.NoError(t, err)
		assert.Equal(t, room.ID, found.ID)
	})

	t.Run("Unknown player reports not-in-room", func(t *testing.T) {
		manager := newManager(t)

		_, err := manager.RoomOf("ghost")

		require.ErrorIs(t, err, apperror.ErrNotInRoom)
	})
}

func TestRoomManager_RestartRoom(t *testing.T) {
	manager := newManager(t)

	room, err := manager.CreateRoom("host-1")
	require.NoError(t, err)
	_, _, err = manager.JoinRoom(room.ID, "guest-1")
	require.NoError(t, err)

	// When: a rematch is accepted
	restarted, err := manager.RestartRoom(room.ID)

	// Then: the room stays started with both participants in place
	require.NoError(t, err)
	assert.True(t, restarted.IsStarted())
	assert.Len(t, restarted.Players, 2)
}
