package websocket

import (
	"context"
	"log/slog"
)

// inboundMessage pairs a raw frame with the client that sent it.
type inboundMessage struct {
	client *client
	data   []byte
}

// hub serializes every relay event. The room table is mutated exclusively
// from Run's goroutine, so no operation needs further synchronization.
type hub struct {
	logger *slog.Logger

	clients    map[string]*client
	register   chan *client
	unregister chan *client
	inbound    chan inboundMessage
	done       chan struct{}

	handler eventHandler
}

type eventHandler interface {
	onConnect(c *client)
	onDisconnect(c *client)
	onMessage(c *client, data []byte)
}

func newHub(logger *slog.Logger, handler eventHandler) *hub {
	return &hub{
		logger:     logger,
		clients:    make(map[string]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		inbound:    make(chan inboundMessage),
		done:       make(chan struct{}),
		handler:    handler,
	}
}

// Run - the relay event loop; exits when the context is canceled. Closing
// done releases any pump goroutine still blocked on the event channels.
func (that *hub) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")
	defer close(that.done)

	for {
		select {
		case c := <-that.register:
			that.clients[c.id] = c
			that.handler.onConnect(c)

		case c := <-that.unregister:
			if _, ok := that.clients[c.id]; !ok {
				continue
			}
			delete(that.clients, c.id)
			close(c.send)
			that.handler.onDisconnect(c)

		case msg := <-that.inbound:
			that.handler.onMessage(msg.client, msg.data)

		case <-ctx.Done():
			log.Info("hub stopped")
			return
		}
	}
}

// add - hands a new connection to the event loop; reports false once the
// hub has stopped.
func (that *hub) add(c *client) bool {
	select {
	case that.register <- c:
		return true
	case <-that.done:
		return false
	}
}

// remove - takes a connection out of the event loop; a no-op once the hub
// has stopped.
func (that *hub) remove(c *client) {
	select {
	case that.unregister <- c:
	case <-that.done:
	}
}

// receive - hands an inbound frame to the event loop; reports false once
// the hub has stopped.
func (that *hub) receive(c *client, data []byte) bool {
	select {
	case that.inbound <- inboundMessage{client: c, data: data}:
		return true
	case <-that.done:
		return false
	}
}

// send - queues data for one client, dropping the frame if the client's
// write queue is full rather than blocking the event loop.
func (that *hub) send(id string, data []byte) {
	c, ok := that.clients[id]
	if !ok {
		return
	}

	select {
	case c.send <- data:
	default:
		that.logger.Warn("dropping message for slow client", "clientID", id)
	}
}
