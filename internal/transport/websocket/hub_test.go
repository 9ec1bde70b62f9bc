package websocket

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopHandler struct{}

func (nopHandler) onConnect(*client)         {}
func (nopHandler) onDisconnect(*client)      {}
func (nopHandler) onMessage(*client, []byte) {}

func TestHub_Shutdown(t *testing.T) {
	// Given: a running hub with one registered connection
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := newHub(logger, nopHandler{})

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := &client{id: "conn-1", hub: h, send: make(chan []byte, 1)}
	require.True(t, h.add(c))
	require.True(t, h.receive(c, []byte(`{"type":"init"}`)))

	// When: the relay shuts down
	cancel()

	require.Eventually(t, func() bool {
		select {
		case <-h.done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	// Then: pump goroutines are released instead of blocking forever on
	// the stopped event loop
	released := make(chan struct{})
	go func() {
		assert.False(t, h.receive(c, []byte(`{"type":"init"}`)))
		h.remove(c)
		assert.False(t, h.add(&client{id: "conn-2", hub: h, send: make(chan []byte, 1)}))
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("pump operations blocked after hub shutdown")
	}
}
