package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/davidola36/run-game/internal/apperror"
)

// Message types sent by the client.
const (
	TypeInit              = "init"
	TypeCreateRoom        = "createRoom"
	TypeJoinRoom          = "joinRoom"
	TypePlayerUpdate      = "playerUpdate"
	TypeGameOver          = "gameOver"
	TypePlayAgainRequest  = "playAgainRequest"
	TypePlayAgainAccepted = "playAgainAccepted"
	TypePlayAgainDeclined = "playAgainDeclined"
)

// Message types sent by the relay.
const (
	TypeRoomCreated  = "roomCreated"
	TypeJoinedRoom   = "joinedRoom"
	TypePlayerJoined = "playerJoined"
	TypeGameStart    = "gameStart"
	TypePlayerLeft   = "playerLeft"
	TypeError        = "error"
)

// Vector3 is a position in the game world.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Message is the envelope for all relay traffic. The relay only interprets
// Type, RoomID and PlayerID; position, animation and score are carried
// through untouched.
type Message struct {
	Type         string   `json:"type"`
	RoomID       string   `json:"roomId,omitempty"`
	PlayerID     string   `json:"playerId,omitempty"`
	PlayerNumber int      `json:"playerNumber,omitempty"`
	Position     *Vector3 `json:"position,omitempty"`
	Animation    string   `json:"animation,omitempty"`
	Score        *int     `json:"score,omitempty"`
	Message      string   `json:"message,omitempty"`
}

// ParseMessage - decodes raw bytes into a Message and validates the type tag.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidMessage, err)
	}

	switch msg.Type {
	case TypeInit, TypeCreateRoom, TypeJoinRoom, TypePlayerUpdate, TypeGameOver,
		TypePlayAgainRequest, TypePlayAgainAccepted, TypePlayAgainDeclined,
		TypeRoomCreated, TypeJoinedRoom, TypePlayerJoined, TypeGameStart,
		TypePlayerLeft, TypeError:
		return &msg, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", apperror.ErrInvalidMessage)
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnrecognizedMessage, msg.Type)
	}
}

// AttachSender - stamps the sender's identity onto a raw frame without
// touching any other field, so fields the relay does not model pass through
// intact.
func AttachSender(raw []byte, playerID string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidMessage, err)
	}

	id, err := json.Marshal(playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player id: %w", err)
	}

	fields["playerId"] = id

	return json.Marshal(fields)
}

// ScoreOf - returns a score value suitable for the Score field.
func ScoreOf(score int) *int {
	return &score
}
