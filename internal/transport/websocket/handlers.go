package websocket

import (
	"encoding/json"
	"errors"

	"github.com/davidola36/run-game/internal/apperror"
	"github.com/davidola36/run-game/internal/entity"
	"github.com/davidola36/run-game/internal/protocol"
)

// onConnect - nothing to do until the client speaks; identity was assigned
// at upgrade time.
func (that *Server) onConnect(c *client) {
	that.logger.Info("connection established", "clientID", c.id)
}

// onDisconnect - removes the connection from its room and tells the
// remaining participants.
func (that *Server) onDisconnect(c *client) {
	log := that.logger.With("method", "onDisconnect")

	room, err := that.rooms.LeaveRoom(c.id)
	if errors.Is(err, apperror.ErrNotInRoom) {
		log.Info("connection closed", "clientID", c.id)
		return
	}

	if err != nil {
		log.Error("failed to leave room", "clientID", c.id, "error", err)
		return
	}

	that.broadcast(room, &protocol.Message{
		Type:     protocol.TypePlayerLeft,
		RoomID:   room.ID,
		PlayerID: c.id,
	})

	log.Info("player disconnected", "clientID", c.id, "roomID", room.ID)
}

// onMessage - decodes one inbound frame and routes it. A fault in one
// connection's message never reaches any other room or connection: every
// failure is answered with an error message to the sender only.
func (that *Server) onMessage(c *client, data []byte) {
	log := that.logger.With("method", "onMessage")

	msg, err := protocol.ParseMessage(data)
	if errors.Is(err, apperror.ErrInvalidMessage) {
		that.sendError(c, "Invalid message format")
		return
	}

	if err != nil {
		that.sendError(c, err.Error())
		return
	}

	switch msg.Type {
	case protocol.TypeInit:
		that.handleInit(c)
	case protocol.TypeCreateRoom:
		that.handleCreateRoom(c)
	case protocol.TypeJoinRoom:
		that.handleJoinRoom(c, msg)
	case protocol.TypePlayerUpdate, protocol.TypeGameOver,
		protocol.TypePlayAgainRequest, protocol.TypePlayAgainDeclined:
		that.handleForward(c, data)
	case protocol.TypePlayAgainAccepted:
		that.handlePlayAgainAccepted(c, msg, data)
	default:
		log.Warn("message type not handled by relay", "type", msg.Type, "clientID", c.id)
		that.sendError(c, "unrecognized message type")
	}
}

// handleInit - acknowledges the handshake with the assigned identity.
func (that *Server) handleInit(c *client) {
	that.send(c, &protocol.Message{
		Type:     protocol.TypeInit,
		PlayerID: c.id,
	})
}

func (that *Server) handleCreateRoom(c *client) {
	log := that.logger.With("method", "handleCreateRoom")

	room, err := that.rooms.CreateRoom(c.id)
	if err != nil {
		log.Error("failed to create room", "clientID", c.id, "error", err)
		that.sendError(c, err.Error())
		return
	}

	that.send(c, &protocol.Message{
		Type:         protocol.TypeRoomCreated,
		RoomID:       room.ID,
		PlayerNumber: entity.HostPlayerNumber,
	})
}

func (that *Server) handleJoinRoom(c *client, msg *protocol.Message) {
	log := that.logger.With("method", "handleJoinRoom")

	room, player, err := that.rooms.JoinRoom(msg.RoomID, c.id)
	if err != nil {
		log.Info("join rejected", "clientID", c.id, "roomID", msg.RoomID, "error", err)
		that.sendError(c, joinErrorText(err))
		return
	}

	that.send(c, &protocol.Message{
		Type:         protocol.TypeJoinedRoom,
		RoomID:       room.ID,
		PlayerNumber: player.Number,
	})

	that.hub.send(room.HostID, mustMarshal(&protocol.Message{
		Type:         protocol.TypePlayerJoined,
		RoomID:       room.ID,
		PlayerID:     c.id,
		PlayerNumber: room.PlayerNumber(room.HostID),
	}))

	if room.IsStarted() {
		that.broadcastAll(room, &protocol.Message{
			Type:   protocol.TypeGameStart,
			RoomID: room.ID,
		})
	}
}

// handleForward - forwards a gameplay frame to every other participant in
// the sender's room, with the sender's identity attached. The frame is
// forwarded from its raw bytes, so fields the relay does not model pass
// through untouched; nothing is validated, the relay is not authoritative.
func (that *Server) handleForward(c *client, raw []byte) {
	log := that.logger.With("method", "handleForward")

	room, err := that.rooms.RoomOf(c.id)
	if err != nil {
		// Best-effort traffic; an update from a connection outside any
		// room is dropped.
		log.Debug("forward dropped", "clientID", c.id, "error", err)
		return
	}

	data, err := protocol.AttachSender(raw, c.id)
	if err != nil {
		log.Error("failed to attach sender identity", "clientID", c.id, "error", err)
		return
	}

	that.broadcastRaw(room, c.id, data)
}

// handlePlayAgainAccepted - re-arms the room and broadcasts the acceptance
// to all participants, the sender included, so both ends restart together.
func (that *Server) handlePlayAgainAccepted(c *client, msg *protocol.Message, raw []byte) {
	log := that.logger.With("method", "handlePlayAgainAccepted")

	room, err := that.rooms.RestartRoom(msg.RoomID)
	if err != nil {
		log.Info("restart rejected", "clientID", c.id, "roomID", msg.RoomID, "error", err)
		that.sendError(c, joinErrorText(err))
		return
	}

	data, err := protocol.AttachSender(raw, c.id)
	if err != nil {
		log.Error("failed to attach sender identity", "clientID", c.id, "error", err)
		return
	}

	that.broadcastAllRaw(room, data)

	log.Info("room restarted", "roomID", room.ID)
}

// broadcast - sends a message to every participant except the one named in
// msg.PlayerID.
func (that *Server) broadcast(room *entity.Room, msg *protocol.Message) {
	that.broadcastRaw(room, msg.PlayerID, mustMarshal(msg))
}

// broadcastAll - sends a message to every participant.
func (that *Server) broadcastAll(room *entity.Room, msg *protocol.Message) {
	that.broadcastAllRaw(room, mustMarshal(msg))
}

func (that *Server) broadcastRaw(room *entity.Room, exceptID string, data []byte) {
	for _, player := range room.Others(exceptID) {
		that.hub.send(player.ID, data)
	}
}

func (that *Server) broadcastAllRaw(room *entity.Room, data []byte) {
	for _, player := range room.Players {
		that.hub.send(player.ID, data)
	}
}

func (that *Server) send(c *client, msg *protocol.Message) {
	that.hub.send(c.id, mustMarshal(msg))
}

func (that *Server) sendError(c *client, text string) {
	that.send(c, &protocol.Message{
		Type:    protocol.TypeError,
		Message: text,
	})
}

// joinErrorText - maps room lookup errors onto the wire error strings the
// game client expects.
func joinErrorText(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound), errors.Is(err, apperror.ErrEmptyRoomCode):
		return "Room not found, please check the code and try again"
	case errors.Is(err, apperror.ErrGameInProgress):
		return "Game already in progress"
	case errors.Is(err, apperror.ErrRoomFull):
		return "Game already in progress"
	default:
		return err.Error()
	}
}

func mustMarshal(msg *protocol.Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return data
}
