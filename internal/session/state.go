package session

import "time"

// Connection lifecycle states.
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateOpen         = "open"
	StateClosed       = "closed"
)

// Game-ending reasons surfaced through Callbacks.OnGameEnd.
const (
	ReasonConnectionLost   = "Connection to server lost"
	ReasonConnectFailed    = "Unable to connect to server"
	ReasonOpponentLeft     = "Opponent disconnected"
	ReasonRematchDeclined  = "Opponent declined to play again"
	ReasonOpponentGameOver = "Game over"
)

const (
	DefaultMaxAttempts    = 3
	DefaultReconnectDelay = 2 * time.Second
)

// Policy bounds the automatic reconnect behaviour. Injectable so tests can
// run without real timers.
type Policy struct {
	MaxAttempts    int
	ReconnectDelay time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		ReconnectDelay: DefaultReconnectDelay,
	}
}

// Callbacks is the surface the game-lifecycle layer plugs into. Nil entries
// are skipped. No callback fires after Dispose returns.
type Callbacks struct {
	OnGameStart           func()
	OnGameRestart         func()
	OnGameEnd             func(reason string)
	OnShowRoomCode        func(code string)
	OnShowPlayAgainPrompt func(playerID string)
	OnOpponentUpdate      func(playerID string, state OpponentState)
	OnOpponentLeft        func(playerID string)
}
