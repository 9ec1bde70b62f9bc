package entity

import (
	"github.com/davidola36/run-game/internal/apperror"
)

const (
	MaxPlayers = 2

	HostPlayerNumber  = 1
	GuestPlayerNumber = 2
)

// Room is a relay-managed pairing of up to two connections identified by a
// short code. Once Started is true the room accepts no further joins; the
// same room is reused for a rematch by restarting it without clearing
// membership.
type Room struct {
	ID      string    `json:"id"`
	HostID  string    `json:"hostId"`
	Started bool      `json:"started"`
	Players []*Player `json:"players,omitempty"`
}

func NewRoom(id, hostID string) *Room {
	return &Room{
		ID:     id,
		HostID: hostID,
		Players: []*Player{
			{ID: hostID, Number: HostPlayerNumber},
		},
	}
}

// AddPlayer - adds a second participant and starts the room once it is full.
func (that *Room) AddPlayer(playerID string) (*Player, error) {
	if that.Started {
		return nil, apperror.ErrGameInProgress
	}

	if len(that.Players) >= MaxPlayers {
		return nil, apperror.ErrRoomFull
	}

	if that.HasPlayer(playerID) {
		return nil, apperror.ErrAlreadyInRoom
	}

	player := &Player{ID: playerID, Number: GuestPlayerNumber}
	that.Players = append(that.Players, player)

	if len(that.Players) == MaxPlayers {
		that.Started = true
	}

	return player, nil
}

// RemovePlayer - removes a participant; the started flag is deliberately
// left untouched so a started room can never be joined again.
func (that *Room) RemovePlayer(playerID string) {
	for i, player := range that.Players {
		if player.ID == playerID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return
		}
	}
}

func (that *Room) HasPlayer(playerID string) bool {
	for _, player := range that.Players {
		if player.ID == playerID {
			return true
		}
	}
	return false
}

// Others - returns every participant except the given one.
func (that *Room) Others(playerID string) []*Player {
	others := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		if player.ID != playerID {
			others = append(others, player)
		}
	}
	return others
}

func (that *Room) PlayerNumber(playerID string) int {
	for _, player := range that.Players {
		if player.ID == playerID {
			return player.Number
		}
	}
	return 0
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

func (that *Room) IsStarted() bool {
	return that.Started
}

// Restart - re-arms the room for a rematch without changing membership.
func (that *Room) Restart() {
	that.Started = true
}
