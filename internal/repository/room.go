package repository

import (
	"errors"
	"fmt"
	"sync"

	"github.com/davidola36/run-game/internal/entity"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrCodeExhausted = errors.New("could not generate a unique room code")
)

const maxCodeAttempts = 10

type RoomRepository interface {
	Create(room *entity.Room) error
	GetByID(id string) (*entity.Room, error)
	DeleteByID(id string) error
	UniqueCode() (string, error)
	Len() int
}

// dbRoom is the in-process room table. The relay owns exactly one instance,
// scoped to process lifetime; nothing is persisted across restarts.
type dbRoom struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
}

func NewRoomRepository() RoomRepository {
	return &dbRoom{
		rooms: make(map[string]*entity.Room),
	}
}

func (that *dbRoom) Create(room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = room

	return nil
}

func (that *dbRoom) GetByID(id string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}

	return room, nil
}

func (that *dbRoom) DeleteByID(id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, id)

	return nil
}

// UniqueCode - generates a room code that does not collide with any active
// room.
func (that *dbRoom) UniqueCode() (string, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for i := 0; i < maxCodeAttempts; i++ {
		code := entity.NewRoomCode()
		if _, exists := that.rooms[code]; !exists {
			return code, nil
		}
	}

	return "", ErrCodeExhausted
}

func (that *dbRoom) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}
