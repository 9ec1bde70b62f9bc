package usecase

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/davidola36/run-game/internal/apperror"
	"github.com/davidola36/run-game/internal/entity"
	"github.com/davidola36/run-game/internal/repository"
)

type roomRepo interface {
	Create(room *entity.Room) error
	GetByID(id string) (*entity.Room, error)
	DeleteByID(id string) error
	UniqueCode() (string, error)
	Len() int
}

// RoomManager owns room lifecycle bookkeeping for the relay. It carries no
// game logic; the relay forwards gameplay messages without interpreting them.
type RoomManager struct {
	logger   *slog.Logger
	roomRepo roomRepo

	// player connection id -> room code, so a disconnect can find its room.
	playerRooms map[string]string
}

func NewRoomManager(logger *slog.Logger, roomRepo roomRepo) *RoomManager {
	return &RoomManager{
		logger:      logger,
		roomRepo:    roomRepo,
		playerRooms: make(map[string]string),
	}
}

// CreateRoom - creates a room with a fresh unique code and the given
// connection as host and sole participant.
func (that *RoomManager) CreateRoom(hostID string) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom")

	if _, ok := that.playerRooms[hostID]; ok {
		return nil, apperror.ErrAlreadyInRoom
	}

	code, err := that.roomRepo.UniqueCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	room := entity.NewRoom(code, hostID)
	if err = that.roomRepo.Create(room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	that.playerRooms[hostID] = room.ID

	log.Info("room created", "roomID", room.ID, "hostID", hostID, "activeRooms", that.roomRepo.Len())

	return room, nil
}

// JoinRoom - normalizes the code, looks the room up and adds the connection
// as the second participant. The room starts once it is full.
func (that *RoomManager) JoinRoom(code, playerID string) (*entity.Room, *entity.Player, error) {
	log := that.logger.With("method", "JoinRoom")

	room, err := that.getRoomByCode(code)
	if err != nil {
		return nil, nil, err
	}

	player, err := room.AddPlayer(playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to join room %s: %w", room.ID, err)
	}

	that.playerRooms[playerID] = room.ID

	log.Info("player joined room", "roomID", room.ID, "playerID", playerID, "started", room.Started)

	return room, player, nil
}

// LeaveRoom - removes the player from its room and deletes the room once the
// last participant is gone. Returns the room so the caller can notify the
// remaining participants.
func (that *RoomManager) LeaveRoom(playerID string) (*entity.Room, error) {
	log := that.logger.With("method", "LeaveRoom")

	roomID, ok := that.playerRooms[playerID]
	if !ok {
		return nil, apperror.ErrNotInRoom
	}

	delete(that.playerRooms, playerID)

	room, err := that.roomRepo.GetByID(roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room.RemovePlayer(playerID)

	if room.IsEmpty() {
		if err = that.roomRepo.DeleteByID(room.ID); err != nil {
			return nil, fmt.Errorf("failed to delete room: %w", err)
		}
		log.Info("room deleted", "roomID", room.ID, "activeRooms", that.roomRepo.Len())
	}

	log.Info("player left room", "roomID", room.ID, "playerID", playerID)

	return room, nil
}

// RestartRoom - re-arms a room for a rematch. Membership is not validated;
// a room whose opponent already left restarts with one participant, matching
// the relay's dumb-pipe role.
func (that *RoomManager) RestartRoom(code string) (*entity.Room, error) {
	room, err := that.getRoomByCode(code)
	if err != nil {
		return nil, err
	}

	room.Restart()

	return room, nil
}

// Room - looks a room up by its (possibly unnormalized) code.
func (that *RoomManager) Room(code string) (*entity.Room, error) {
	return that.getRoomByCode(code)
}

// RoomOf - returns the room the player currently belongs to.
func (that *RoomManager) RoomOf(playerID string) (*entity.Room, error) {
	roomID, ok := that.playerRooms[playerID]
	if !ok {
		return nil, apperror.ErrNotInRoom
	}

	room, err := that.roomRepo.GetByID(roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

func (that *RoomManager) getRoomByCode(code string) (*entity.Room, error) {
	normalized := entity.NormalizeRoomCode(code)
	if normalized == "" {
		return nil, apperror.ErrEmptyRoomCode
	}

	room, err := that.roomRepo.GetByID(normalized)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}
