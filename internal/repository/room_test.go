package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidola36/run-game/internal/entity"
)

func TestRoomRepository_Create(t *testing.T) {
	repo := NewRoomRepository()

	// Given: a room
	room := entity.NewRoom("AB12CD", "host-1")

	// When: Create is called
	err := repo.Create(room)

	// Then: the room is retrievable by its code
	require.NoError(t, err)

	stored, err := repo.GetByID("AB12CD")
	require.NoError(t, err)
	assert.Same(t, room, stored)
}

func TestRoomRepository_GetByID(t *testing.T) {
	t.Run("GetByID_NotFound", func(t *testing.T) {
		repo := NewRoomRepository()

		_, err := repo.GetByID("ZZZZZZ")

		require.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestRoomRepository_DeleteByID(t *testing.T) {
	repo := NewRoomRepository()

	room := entity.NewRoom("AB12CD", "host-1")
	require.NoError(t, repo.Create(room))

	// When: the room is deleted
	err := repo.DeleteByID(room.ID)

	// Then: it is gone and the table is empty
	require.NoError(t, err)
	assert.Equal(t, 0, repo.Len())

	_, err = repo.GetByID(room.ID)
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomRepository_UniqueCode(t *testing.T) {
	repo := NewRoomRepository()

	// When: generating codes against a populated table
	for i := 0; i < 50; i++ {
		code, err := repo.UniqueCode()
		require.NoError(t, err)

		// Then: every code is fresh among active rooms
		_, getErr := repo.GetByID(code)
		require.ErrorIs(t, getErr, ErrRoomNotFound)

		require.NoError(t, repo.Create(entity.NewRoom(code, "host")))
	}

	assert.Equal(t, 50, repo.Len())
}
