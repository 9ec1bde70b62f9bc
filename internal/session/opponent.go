package session

import (
	"fmt"

	"github.com/davidola36/run-game/internal/entity"
	"github.com/davidola36/run-game/internal/protocol"
)

// OpponentState is the last-known state of a remote player, used for
// rendering and scoring.
type OpponentState struct {
	Position  protocol.Vector3
	Animation string
	Score     int
	HasScore  bool
}

// Result outcomes that do not name an opponent.
const (
	ResultWon = "You Won!"
	ResultTie = "It's a Tie!"
)

// Result - compares the local score against the best recorded opponent score.
// Presentation-only: the relay transmits no verdict.
func (that *Manager) Result(localScore int) string {
	that.mu.Lock()
	defer that.mu.Unlock()

	best := 0
	seen := false
	for _, opponent := range that.opponents {
		if !opponent.HasScore {
			continue
		}
		if !seen || opponent.Score > best {
			best = opponent.Score
			seen = true
		}
	}

	if !seen || localScore > best {
		return ResultWon
	}

	if localScore == best {
		return ResultTie
	}

	return fmt.Sprintf("Player %d Won!", that.opponentNumberLocked())
}

// opponentNumberLocked - in a two-player room the opponent holds whichever
// number the local player does not. Callers hold mu.
func (that *Manager) opponentNumberLocked() int {
	if that.playerNumber == entity.GuestPlayerNumber {
		return entity.HostPlayerNumber
	}
	return entity.GuestPlayerNumber
}
