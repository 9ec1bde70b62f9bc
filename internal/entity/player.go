package entity

// Player is a room participant. The ID is the relay-assigned connection
// identity; Number is 1 for the host and 2 for the joiner.
type Player struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
}

func (that *Player) IsHost() bool {
	return that.Number == HostPlayerNumber
}
