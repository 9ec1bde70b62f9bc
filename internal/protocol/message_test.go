package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidola36/run-game/internal/apperror"
)

func TestParseMessage(t *testing.T) {
	t.Run("Decodes a playerUpdate with pass-through fields", func(t *testing.T) {
		raw := []byte(`{"type":"playerUpdate","roomId":"AB12CD","position":{"x":1,"y":1,"z":-5},"animation":"Run","score":10}`)

		msg, err := ParseMessage(raw)

		require.NoError(t, err)
		assert.Equal(t, TypePlayerUpdate, msg.Type)
		assert.Equal(t, "AB12CD", msg.RoomID)
		require.NotNil(t, msg.Position)
		assert.InDelta(t, -5.0, msg.Position.Z, 0.0001)
		assert.Equal(t, "Run", msg.Animation)
		require.NotNil(t, msg.Score)
		assert.Equal(t, 10, *msg.Score)
	})

	t.Run("Malformed JSON yields the invalid-format error", func(t *testing.T) {
		_, err := ParseMessage([]byte(`{"type":`))

		require.ErrorIs(t, err, apperror.ErrInvalidMessage)
	})

	t.Run("Missing type yields the invalid-format error", func(t *testing.T) {
		_, err := ParseMessage([]byte(`{"roomId":"AB12CD"}`))

		require.ErrorIs(t, err, apperror.ErrInvalidMessage)
	})

	t.Run("Unknown type yields its own error kind", func(t *testing.T) {
		_, err := ParseMessage([]byte(`{"type":"teleport"}`))

		require.ErrorIs(t, err, apperror.ErrUnrecognizedMessage)
	})

	t.Run("Zero score survives the round trip", func(t *testing.T) {
		raw := []byte(`{"type":"gameOver","roomId":"AB12CD","score":0}`)

		msg, err := ParseMessage(raw)

		require.NoError(t, err)
		require.NotNil(t, msg.Score)
		assert.Equal(t, 0, *msg.Score)
	})
}
