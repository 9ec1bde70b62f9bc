package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidola36/run-game/internal/apperror"
)

func TestRoom_AddPlayer(t *testing.T) {
	t.Run("Starts the room once the second player joins", func(t *testing.T) {
		// Given: a room with only its host
		room := NewRoom("AB12CD", "host-1")
		require.False(t, room.IsStarted())

		// When: a second player joins
		player, err := room.AddPlayer("guest-1")

		// Then: the player gets number 2 and the room starts
		require.NoError(t, err)
		assert.Equal(t, GuestPlayerNumber, player.Number)
		assert.False(t, player.IsHost())
		assert.Equal(t, HostPlayerNumber, room.PlayerNumber("host-1"))
		assert.True(t, room.IsStarted())
	})

	t.Run("Rejects a third joiner once started", func(t *testing.T) {
		// Given: a started two-player room
		room := NewRoom("AB12CD", "host-1")
		_, err := room.AddPlayer("guest-1")
		require.NoError(t, err)

		// When: a third connection tries to join
		_, err = room.AddPlayer("guest-2")

		// Then: the join fails with the in-progress error
		require.ErrorIs(t, err, apperror.ErrGameInProgress)
		assert.Len(t, room.Players, MaxPlayers)
	})

	t.Run("Rejects the same player joining twice", func(t *testing.T) {
		room := NewRoom("AB12CD", "host-1")

		_, err := room.AddPlayer("host-1")

		require.Error(t, err)
	})
}

func TestRoom_RemovePlayer(t *testing.T) {
	t.Run("Keeps the started flag after a player leaves", func(t *testing.T) {
		// Given: a started room
		room := NewRoom("AB12CD", "host-1")
		_, err := room.AddPlayer("guest-1")
		require.NoError(t, err)

		// When: the guest leaves
		room.RemovePlayer("guest-1")

		// Then: the room never transitions back to joinable
		assert.True(t, room.IsStarted())
		assert.False(t, room.IsEmpty())

		_, err = room.AddPlayer("guest-2")
		require.ErrorIs(t, err, apperror.ErrGameInProgress)
	})

	t.Run("Room is empty once the last participant leaves", func(t *testing.T) {
		room := NewRoom("AB12CD", "host-1")

		room.RemovePlayer("host-1")

		assert.True(t, room.IsEmpty())
	})
}

func TestRoom_Others(t *testing.T) {
	// Given: a full room
	room := NewRoom("AB12CD", "host-1")
	_, err := room.AddPlayer("guest-1")
	require.NoError(t, err)

	// When: asking for everyone but the host
	others := room.Others("host-1")

	// Then: only the guest remains
	require.Len(t, others, 1)
	assert.Equal(t, "guest-1", others[0].ID)
}

func TestRoom_Restart(t *testing.T) {
	// Given: a started room whose guest already left
	room := NewRoom("AB12CD", "host-1")
	_, err := room.AddPlayer("guest-1")
	require.NoError(t, err)
	room.RemovePlayer("guest-1")

	// When: the room restarts for a rematch
	room.Restart()

	// Then: membership is untouched and the room stays started
	assert.True(t, room.IsStarted())
	assert.Len(t, room.Players, 1)
}

func TestNewRoomCode(t *testing.T) {
	t.Run("Codes are six uppercase characters", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code := NewRoomCode()

			require.Len(t, code, 6)
			assert.Equal(t, NormalizeRoomCode(code), code)
		}
	})

	t.Run("Codes do not repeat in practice", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			seen[NewRoomCode()] = true
		}

		// Collisions are possible but vanishingly unlikely in a small sample.
		assert.Greater(t, len(seen), 990)
	})
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "AB12CD", NormalizeRoomCode("  ab12cd "))
	assert.Equal(t, "", NormalizeRoomCode("   "))
}
