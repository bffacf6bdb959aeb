package entity

// Session - the connection-identity-to-player binding. Owned by the session
// layer, persisted so a player can reconnect into their room.
type Session struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
	RoomCode string `json:"room_code,omitempty"`
}
