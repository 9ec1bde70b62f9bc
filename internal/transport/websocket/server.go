package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/davidola36/run-game/internal/entity"
)

type roomManager interface {
	CreateRoom(hostID string) (*entity.Room, error)
	JoinRoom(code, playerID string) (*entity.Room, *entity.Player, error)
	LeaveRoom(playerID string) (*entity.Room, error)
	RestartRoom(code string) (*entity.Room, error)
	RoomOf(playerID string) (*entity.Room, error)
}

// Server is the relay: it upgrades connections, assigns identities and
// routes typed messages between the participants of a room.
type Server struct {
	logger   *slog.Logger
	rooms    roomManager
	hub      *hub
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The game is served from a static host; any origin may connect.
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}

	server.hub = newHub(logger, server)

	return server
}

// Run - starts the relay event loop without binding a listener. Start calls
// this; tests mount ServeWS on their own test server and call Run directly.
func (that *Server) Run(ctx context.Context) {
	go that.hub.Run(ctx)
}

// Start - starts the relay WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	that.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.ServeWS)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeWS - upgrades the connection, assigns it a unique identity and hands
// it to the hub.
func (that *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		hub:  that.hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	if !that.hub.add(c) {
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
