package websocket

import (
	"encoding/json"

	"github.com/baiyoke1207/spellcast-backend/internal/board"
	"github.com/baiyoke1207/spellcast-backend/internal/entity"
	"github.com/baiyoke1207/spellcast-backend/internal/usecase"
)

// Message is the envelope for every frame in both directions: a client
// command going in, a server event going out.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type createRoomRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players,omitempty"`
}

type joinRoomRequest struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

type startGameRequest struct {
	usecase.StartSettings
}

type submitWordRequest struct {
	Word string        `json:"word"`
	Path []board.Coord `json:"path"`
}

type useAbilityRequest struct {
	Ability  string       `json:"ability"`
	Position *board.Coord `json:"position,omitempty"`
	Letter   string       `json:"letter,omitempty"`
}

type timerSettingsRequest struct {
	TimerType    entity.TimerType `json:"timer_type"`
	FixedMinutes int              `json:"fixed_minutes,omitempty"`
}

type tileSelectionRequest struct {
	Positions []board.Coord `json:"positions"`
	Action    string        `json:"action"`
}

// roomResponse acknowledges create_room and join_room to the requester.
type roomResponse struct {
	Room     *entity.Room `json:"room"`
	PlayerID string       `json:"player_id"`
	IsHost   bool         `json:"is_host"`
}

type wordRejectedResponse struct {
	Word   string `json:"word"`
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}

type errorResponse struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}
