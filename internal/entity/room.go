package entity

import (
	"fmt"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
	"github.com/baiyoke1207/spellcast-backend/internal/board"
)

type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseInRound    Phase = "in_round"
	PhaseRoundEnded Phase = "round_ended"
	PhaseGameOver   Phase = "game_over"
)

type TimerType string

const (
	TimerVoting TimerType = "voting"
	TimerFixed  TimerType = "fixed"
)

type BoardMode string

const (
	BoardShared    BoardMode = "shared"
	BoardPerPlayer BoardMode = "per_player"
)

const (
	MinPlayers = 2
	MaxPlayers = 5

	MinFixedMinutes = 1
	MaxFixedMinutes = 10

	DefaultMaxRounds    = 5
	DefaultFixedMinutes = 2
)

type Settings struct {
	TimerType    TimerType `json:"timer_type"`
	FixedMinutes int       `json:"fixed_minutes"`
	BoardMode    BoardMode `json:"board_mode"`
	MaxRounds    int       `json:"max_rounds"`
	MaxPlayers   int       `json:"max_players"`
}

// DefaultSettings - lobby defaults before the host changes anything.
func DefaultSettings(maxPlayers int) Settings {
	if maxPlayers < MinPlayers {
		maxPlayers = MinPlayers
	}
	if maxPlayers > MaxPlayers {
		maxPlayers = MaxPlayers
	}

	return Settings{
		TimerType:    TimerVoting,
		FixedMinutes: DefaultFixedMinutes,
		BoardMode:    BoardShared,
		MaxRounds:    DefaultMaxRounds,
		MaxPlayers:   maxPlayers,
	}
}

// ClampFixedMinutes - keeps the fixed timer inside the 1-10 minute range.
func ClampFixedMinutes(minutes int) int {
	if minutes < MinFixedMinutes {
		return MinFixedMinutes
	}
	if minutes > MaxFixedMinutes {
		return MaxFixedMinutes
	}

	return minutes
}

// Room - one game room. Join order of Players is meaningful: it decides host
// promotion and the turn rotation in per-player board mode.
type Room struct {
	Code        string    `json:"code"`
	HostID      string    `json:"host_id"`
	Players     []*Player `json:"players"`
	Settings    Settings  `json:"settings"`
	Phase       Phase     `json:"phase"`
	RoundNumber int       `json:"round_number"`

	Board        *board.Board            `json:"board,omitempty"`
	PlayerBoards map[string]*board.Board `json:"player_boards,omitempty"`

	ActivePlayerID string `json:"active_player_id,omitempty"`
	TurnNumber     int    `json:"turn_number,omitempty"`
}

func NewRoom(code string, host *Player, maxPlayers int) *Room {
	return &Room{
		Code:     code,
		HostID:   host.ID,
		Players:  []*Player{host},
		Settings: DefaultSettings(maxPlayers),
		Phase:    PhaseLobby,
	}
}

func (that *Room) PlayerByID(id string) *Player {
	for _, p := range that.Players {
		if p.ID == id {
			return p
		}
	}

	return nil
}

func (that *Room) IsHost(playerID string) bool {
	return that.HostID == playerID
}

// AddPlayer - appends a player in join order. Joining twice is idempotent and
// returns the existing membership.
func (that *Room) AddPlayer(player *Player) (*Player, error) {
	if existing := that.PlayerByID(player.ID); existing != nil {
		return existing, apperror.ErrAlreadyInRoom
	}

	if that.Phase != PhaseLobby {
		return nil, apperror.ErrGameInProgress
	}

	if len(that.Players) >= that.Settings.MaxPlayers {
		return nil, fmt.Errorf("%w: %d players max", apperror.ErrRoomFull, that.Settings.MaxPlayers)
	}

	that.Players = append(that.Players, player)

	return player, nil
}

// RemovePlayer - drops a player, promoting the next-joined player to host if
// the host left. Returns true when the room is now empty.
func (that *Room) RemovePlayer(playerID string) bool {
	for i, p := range that.Players {
		if p.ID != playerID {
			continue
		}

		that.Players = append(that.Players[:i], that.Players[i+1:]...)
		break
	}

	if len(that.Players) == 0 {
		return true
	}

	if that.HostID == playerID {
		that.HostID = that.Players[0].ID
	}

	if that.ActivePlayerID == playerID {
		that.ActivePlayerID = that.Players[0].ID
	}

	return false
}

// MajorityThreshold - votes needed to start the countdown, recomputed from
// the current player count.
func (that *Room) MajorityThreshold() int {
	return (len(that.Players) + 1) / 2
}

// BoardFor - the grid a player submits against: the shared grid, or their
// private one in per-player mode.
func (that *Room) BoardFor(playerID string) *board.Board {
	if that.Settings.BoardMode == BoardPerPlayer {
		return that.PlayerBoards[playerID]
	}

	return that.Board
}

// NextPlayerAfter - rotation by join order, wrapping to the first player.
func (that *Room) NextPlayerAfter(playerID string) *Player {
	for i, p := range that.Players {
		if p.ID == playerID {
			return that.Players[(i+1)%len(that.Players)]
		}
	}

	return that.Players[0]
}

// AllDone - true when every player marked themselves done this round.
func (that *Room) AllDone() bool {
	for _, p := range that.Players {
		if !p.Done {
			return false
		}
	}

	return true
}

// AllSubmitted - true when every player has at least one accepted word this
// round; the shared-board fast path for ending a round early.
func (that *Room) AllSubmitted() bool {
	for _, p := range that.Players {
		if len(p.RoundWords) == 0 {
			return false
		}
	}

	return true
}
