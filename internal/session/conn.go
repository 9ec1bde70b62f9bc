package session

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

// Conn is the slice of a WebSocket connection the session manager needs.
// Tests substitute an in-memory implementation.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// DialFunc opens a connection to the relay.
type DialFunc func(url string) (Conn, error)

type wsConn struct {
	conn *websocket.Conn
}

// Dial - the production dialer.
func Dial(url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	return &wsConn{conn: conn}, nil
}

func (that *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := that.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (that *wsConn) WriteMessage(data []byte) error {
	return that.conn.WriteMessage(websocket.TextMessage, data)
}

func (that *wsConn) Close() error {
	return that.conn.Close()
}

// isProtocolFatal - close codes that indicate a protocol-level fault; the
// session gives up immediately instead of retrying.
func isProtocolFatal(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return false
	}

	switch closeErr.Code {
	case websocket.CloseProtocolError,
		websocket.CloseUnsupportedData,
		websocket.CloseInvalidFramePayloadData,
		websocket.ClosePolicyViolation,
		websocket.CloseMessageTooBig:
		return true
	default:
		return false
	}
}
