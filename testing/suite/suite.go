package suite

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/davidola36/run-game/internal/repository"
	relay "github.com/davidola36/run-game/internal/transport/websocket"
	"github.com/davidola36/run-game/internal/usecase"
)

const maxWaitDuration = 30 * time.Second

// Suite boots a complete in-process relay on an httptest listener and hands
// out WebSocket connections to it.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	// URL is the ws:// address of the relay endpoint.
	URL string
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	roomRepo := repository.NewRoomRepository()
	roomManager := usecase.NewRoomManager(logger, roomRepo)

	server := relay.New(logger, roomManager)
	server.Run(ctx)

	httpServer := httptest.NewServer(http.HandlerFunc(server.ServeWS))
	t.Cleanup(httpServer.Close)

	return ctx, &Suite{
		T:      t,
		Logger: logger,
		URL:    "ws" + strings.TrimPrefix(httpServer.URL, "http"),
	}
}

// Dial - opens a client connection to the relay and registers its cleanup.
func (that *Suite) Dial() *websocket.Conn {
	that.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(that.URL, nil)
	if err != nil {
		that.Fatalf("could not dial relay: %v", err)
	}

	that.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}
