package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/davidola36/run-game/internal/apperror"
	"github.com/davidola36/run-game/internal/entity"
	"github.com/davidola36/run-game/internal/protocol"
)

// Manager owns one outbound connection to the relay: lifecycle, bounded
// reconnection, room commands and inbound dispatch into game callbacks.
type Manager struct {
	logger *slog.Logger
	url    string
	policy Policy
	dial   DialFunc

	// cbMu gates callback invocation; Dispose takes it to wait out any
	// in-flight callback. Lock order: cbMu before mu.
	cbMu sync.Mutex

	mu           sync.Mutex
	callbacks    Callbacks
	state        string
	conn         Conn
	playerID     string
	roomID       string
	isHost       bool
	playerNumber int
	attempts     int
	opponents    map[string]*OpponentState
	retryTimer   *time.Timer
	disposed     bool
}

// New - builds a session manager. A nil dial falls back to the production
// WebSocket dialer; a zero policy falls back to DefaultPolicy.
func New(logger *slog.Logger, url string, policy Policy, dial DialFunc, callbacks Callbacks) *Manager {
	if dial == nil {
		dial = Dial
	}

	if policy.MaxAttempts == 0 {
		policy = DefaultPolicy()
	}

	return &Manager{
		logger:    logger,
		url:       url,
		policy:    policy,
		dial:      dial,
		callbacks: callbacks,
		state:     StateDisconnected,
		opponents: make(map[string]*OpponentState),
	}
}

// Connect - starts a connection attempt. A no-op while another attempt is in
// flight, the connection is already open, or the session closed for good.
func (that *Manager) Connect() {
	that.mu.Lock()
	if that.disposed || that.state != StateDisconnected {
		that.mu.Unlock()
		return
	}
	// A user-initiated connect starts a fresh attempt series.
	that.attempts = 0
	that.state = StateConnecting
	that.mu.Unlock()

	go that.attemptConnect()
}

func (that *Manager) attemptConnect() {
	log := that.logger.With("method", "attemptConnect")

	conn, err := that.dial(that.url)
	if err != nil {
		log.Error("failed to connect", "url", that.url, "error", err)
		that.handleDisconnect(nil, err)
		return
	}

	if err = writeTo(conn, &protocol.Message{Type: protocol.TypeInit}); err != nil {
		log.Error("failed to send handshake", "error", err)
	}

	that.mu.Lock()
	if that.disposed {
		that.mu.Unlock()
		_ = conn.Close()
		return
	}
	that.conn = conn
	that.state = StateOpen
	that.attempts = 0
	that.mu.Unlock()

	log.Info("connected to relay", "url", that.url)

	go that.readLoop(conn)
}

func (that *Manager) readLoop(conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			that.handleDisconnect(conn, err)
			return
		}

		that.dispatch(data)
	}
}

// handleDisconnect - classifies a transport failure and drives the retry
// state machine. Protocol-fatal closes never retry; transient failures retry
// up to the policy maximum and then park the session permanently.
func (that *Manager) handleDisconnect(conn Conn, err error) {
	log := that.logger.With("method", "handleDisconnect")

	that.mu.Lock()
	if that.disposed {
		that.mu.Unlock()
		return
	}

	// A stale readLoop from an already-replaced connection must not touch
	// the state machine.
	if conn != nil && that.conn != conn {
		that.mu.Unlock()
		return
	}

	if conn != nil {
		_ = conn.Close()
		that.conn = nil
	}

	hadRoom := that.roomID != ""
	that.roomID = ""
	that.isHost = false
	that.playerNumber = 0
	that.opponents = make(map[string]*OpponentState)

	that.attempts++

	var reasons []string
	if hadRoom {
		// The relay has no session resumption, so an in-progress game
		// cannot survive a reconnect.
		reasons = append(reasons, ReasonConnectionLost)
	}

	end := that.callbacks.OnGameEnd

	switch {
	case isProtocolFatal(err):
		that.state = StateClosed
		that.callbacks = Callbacks{}
		if !hadRoom {
			reasons = append(reasons, ReasonConnectionLost)
		}
		log.Error("protocol error, not reconnecting", "error", err)

	case that.attempts < that.policy.MaxAttempts:
		that.state = StateConnecting
		that.retryTimer = time.AfterFunc(that.policy.ReconnectDelay, that.retryConnect)
		log.Info("scheduling reconnect", "attempt", that.attempts, "delay", that.policy.ReconnectDelay)

	default:
		that.state = StateDisconnected
		that.callbacks = Callbacks{}
		reasons = append(reasons, ReasonConnectFailed)
		log.Error("reconnect attempts exhausted", "attempts", that.attempts)
	}

	that.mu.Unlock()

	if end != nil && len(reasons) > 0 {
		that.invoke(func() {
			for _, reason := range reasons {
				end(reason)
			}
		})
	}
}

func (that *Manager) retryConnect() {
	that.mu.Lock()
	if that.disposed || that.state != StateConnecting {
		that.mu.Unlock()
		return
	}
	that.mu.Unlock()

	that.attemptConnect()
}

// dispatch - routes one inbound relay message into a local state mutation
// and at most a few game callbacks, invoked outside the lock.
func (that *Manager) dispatch(data []byte) {
	log := that.logger.With("method", "dispatch")

	msg, err := protocol.ParseMessage(data)
	if err != nil {
		log.Error("failed to parse message", "error", err)
		return
	}

	that.mu.Lock()
	if that.disposed {
		that.mu.Unlock()
		return
	}

	var notify func()

	switch msg.Type {
	case protocol.TypeInit:
		that.playerID = msg.PlayerID

	case protocol.TypeRoomCreated:
		that.roomID = msg.RoomID
		that.isHost = true
		that.playerNumber = entity.HostPlayerNumber
		if cb, code := that.callbacks.OnShowRoomCode, msg.RoomID; cb != nil {
			notify = func() { cb(code) }
		}

	case protocol.TypeJoinedRoom:
		that.roomID = msg.RoomID
		that.isHost = false
		that.playerNumber = entity.GuestPlayerNumber
		if msg.PlayerNumber != 0 {
			that.playerNumber = msg.PlayerNumber
		}

	case protocol.TypePlayerJoined:
		if msg.PlayerNumber != 0 {
			that.playerNumber = msg.PlayerNumber
		}

	case protocol.TypeGameStart:
		if cb := that.callbacks.OnGameStart; cb != nil {
			notify = cb
		}

	case protocol.TypePlayerUpdate:
		state := that.upsertOpponentLocked(msg)
		if cb, id := that.callbacks.OnOpponentUpdate, msg.PlayerID; cb != nil {
			notify = func() { cb(id, state) }
		}

	case protocol.TypeGameOver:
		that.upsertOpponentLocked(msg)
		if cb := that.callbacks.OnGameEnd; cb != nil {
			notify = func() { cb(ReasonOpponentGameOver) }
		}

	case protocol.TypePlayerLeft:
		registered, id := that.teardownLocked(), msg.PlayerID
		notify = func() {
			if registered.OnOpponentLeft != nil {
				registered.OnOpponentLeft(id)
			}
			if registered.OnGameEnd != nil {
				registered.OnGameEnd(ReasonOpponentLeft)
			}
		}

	case protocol.TypePlayAgainRequest:
		if cb, id := that.callbacks.OnShowPlayAgainPrompt, msg.PlayerID; cb != nil {
			notify = func() { cb(id) }
		}

	case protocol.TypePlayAgainAccepted:
		that.clearOpponentScoresLocked()
		if cb := that.callbacks.OnGameRestart; cb != nil {
			notify = cb
		}

	case protocol.TypePlayAgainDeclined:
		registered := that.teardownLocked()
		if registered.OnGameEnd != nil {
			notify = func() { registered.OnGameEnd(ReasonRematchDeclined) }
		}

	case protocol.TypeError:
		if cb, text := that.callbacks.OnGameEnd, msg.Message; cb != nil {
			notify = func() { cb(text) }
		}

	default:
		log.Warn("message type not handled by session", "type", msg.Type)
	}

	that.mu.Unlock()

	if notify != nil {
		that.invoke(notify)
	}
}

// teardownLocked - clears room and opponent state and deregisters all
// callbacks, returning the callbacks that were registered so the caller can
// surface the final game-ending reason. Callers hold mu.
func (that *Manager) teardownLocked() Callbacks {
	that.roomID = ""
	that.isHost = false
	that.playerNumber = 0
	that.opponents = make(map[string]*OpponentState)

	registered := that.callbacks
	that.callbacks = Callbacks{}

	return registered
}

// invoke - runs callbacks outside the state lock while holding the callback
// gate, so Dispose waits for any in-flight callback before returning and
// nothing fires once the session is disposed.
func (that *Manager) invoke(notify func()) {
	that.cbMu.Lock()
	defer that.cbMu.Unlock()

	that.mu.Lock()
	disposed := that.disposed
	that.mu.Unlock()

	if disposed {
		return
	}

	notify()
}

// CreateRoom - asks the relay for a fresh room. Host state is assumed
// optimistically and confirmed by the roomCreated reply.
func (that *Manager) CreateRoom() error {
	conn, err := that.openConn()
	if err != nil {
		return err
	}

	that.mu.Lock()
	that.isHost = true
	that.playerNumber = entity.HostPlayerNumber
	that.mu.Unlock()

	return writeTo(conn, &protocol.Message{Type: protocol.TypeCreateRoom})
}

// JoinRoom - joins an existing room by code.
func (that *Manager) JoinRoom(code string) error {
	normalized := entity.NormalizeRoomCode(code)
	if normalized == "" {
		return apperror.ErrEmptyRoomCode
	}

	conn, err := that.openConn()
	if err != nil {
		return err
	}

	return writeTo(conn, &protocol.Message{
		Type:   protocol.TypeJoinRoom,
		RoomID: normalized,
	})
}

// SendPlayerUpdate - best-effort periodic state broadcast; silently dropped
// when disconnected or outside a room.
func (that *Manager) SendPlayerUpdate(position protocol.Vector3, animation string, score int) {
	conn, roomID, ok := that.roomConn()
	if !ok {
		return
	}

	_ = writeTo(conn, &protocol.Message{
		Type:      protocol.TypePlayerUpdate,
		RoomID:    roomID,
		Position:  &position,
		Animation: animation,
		Score:     protocol.ScoreOf(score),
	})
}

// SendGameOver - reports the local final score; best-effort.
func (that *Manager) SendGameOver(score int) {
	conn, roomID, ok := that.roomConn()
	if !ok {
		return
	}

	_ = writeTo(conn, &protocol.Message{
		Type:   protocol.TypeGameOver,
		RoomID: roomID,
		Score:  protocol.ScoreOf(score),
	})
}

// RequestPlayAgain - asks the opponent for a rematch.
func (that *Manager) RequestPlayAgain() {
	that.sendRoomMessage(protocol.TypePlayAgainRequest)
}

// AcceptPlayAgain - clears locally cached opponent scores, then accepts; the
// relay drives the actual restart for both ends.
func (that *Manager) AcceptPlayAgain() {
	that.mu.Lock()
	that.clearOpponentScoresLocked()
	that.mu.Unlock()

	that.sendRoomMessage(protocol.TypePlayAgainAccepted)
}

// DeclinePlayAgain - declines the opponent's rematch request.
func (that *Manager) DeclinePlayAgain() {
	that.sendRoomMessage(protocol.TypePlayAgainDeclined)
}

// Dispose - deregisters all callbacks and waits out any in-flight callback
// before closing the connection, so no callback runs past the return of
// Dispose. Not cancellable, no failure mode. Calling Dispose from inside a
// callback deadlocks.
func (that *Manager) Dispose() {
	that.cbMu.Lock()
	defer that.cbMu.Unlock()

	that.mu.Lock()
	that.disposed = true
	that.state = StateClosed
	that.callbacks = Callbacks{}
	if that.retryTimer != nil {
		that.retryTimer.Stop()
		that.retryTimer = nil
	}
	conn := that.conn
	that.conn = nil
	that.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// State - the current connection lifecycle state.
func (that *Manager) State() string {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.state
}

// RoomID - the active room code, or empty.
func (that *Manager) RoomID() string {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.roomID
}

func (that *Manager) IsHost() bool {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.isHost
}

func (that *Manager) PlayerNumber() int {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.playerNumber
}

// PlayerID - the relay-assigned identity, known after the init ack.
func (that *Manager) PlayerID() string {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.playerID
}

// Opponents - a snapshot of the opponent cache.
func (that *Manager) Opponents() map[string]OpponentState {
	that.mu.Lock()
	defer that.mu.Unlock()

	snapshot := make(map[string]OpponentState, len(that.opponents))
	for id, opponent := range that.opponents {
		snapshot[id] = *opponent
	}
	return snapshot
}

// openConn - returns the open connection, or surfaces the not-connected
// condition and triggers a reconnect attempt.
func (that *Manager) openConn() (Conn, error) {
	that.mu.Lock()
	if that.disposed {
		that.mu.Unlock()
		return nil, apperror.ErrSessionDisposed
	}

	if that.state == StateClosed {
		that.mu.Unlock()
		return nil, apperror.ErrReconnectExhausted
	}

	if that.state != StateOpen || that.conn == nil {
		that.mu.Unlock()
		that.Connect()
		return nil, apperror.ErrNotConnected
	}

	conn := that.conn
	that.mu.Unlock()

	return conn, nil
}

// roomConn - like openConn but additionally requires an active room and
// reports absence as a silent drop instead of an error.
func (that *Manager) roomConn() (Conn, string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.disposed || that.state != StateOpen || that.conn == nil || that.roomID == "" {
		return nil, "", false
	}

	return that.conn, that.roomID, true
}

func (that *Manager) sendRoomMessage(msgType string) {
	conn, roomID, ok := that.roomConn()
	if !ok {
		return
	}

	_ = writeTo(conn, &protocol.Message{
		Type:   msgType,
		RoomID: roomID,
	})
}

func (that *Manager) upsertOpponentLocked(msg *protocol.Message) OpponentState {
	opponent, ok := that.opponents[msg.PlayerID]
	if !ok {
		opponent = &OpponentState{}
		that.opponents[msg.PlayerID] = opponent
	}

	if msg.Position != nil {
		opponent.Position = *msg.Position
	}
	if msg.Animation != "" {
		opponent.Animation = msg.Animation
	}
	if msg.Score != nil {
		opponent.Score = *msg.Score
		opponent.HasScore = true
	}

	return *opponent
}

func (that *Manager) clearOpponentScoresLocked() {
	for _, opponent := range that.opponents {
		opponent.Score = 0
		opponent.HasScore = false
	}
}

func writeTo(conn Conn, msg *protocol.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return conn.WriteMessage(data)
}
