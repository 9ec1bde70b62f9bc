package entity

import (
	"strings"

	"github.com/google/uuid"
)

const roomCodeLength = 6

// NewRoomCode - derives a 6-character uppercase room code from a random
// unique identifier. Uniqueness among active rooms is the caller's job.
func NewRoomCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:roomCodeLength])
}

// NormalizeRoomCode - trims and uppercases a user-supplied room code so
// codes compare case-insensitively.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
