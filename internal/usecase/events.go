package usecase

import (
	"github.com/baiyoke1207/spellcast-backend/internal/board"
	"github.com/baiyoke1207/spellcast-backend/internal/entity"
)

// Broadcaster - fan-out of state-change events to a room's connected
// members. Implementations must not block the caller: a slow client gets its
// events dropped and resyncs with a room_info snapshot.
type Broadcaster interface {
	ToRoom(roomCode, event string, payload any)
	ToRoomExcept(roomCode, exceptPlayerID, event string, payload any)
	ToPlayer(playerID, event string, payload any)
}

// Server-to-client event names.
const (
	EventPlayerJoined    = "player_joined"
	EventPlayerLeft      = "player_left"
	EventHostChanged     = "host_changed"
	EventGameStarted     = "game_started"
	EventGameOver        = "game_over"
	EventRoundStarted    = "round_started"
	EventRoundEnded      = "round_ended"
	EventTurnEnded       = "turn_ended"
	EventWordAccepted    = "word_accepted"
	EventPlayerDone      = "player_marked_done"
	EventTileSwapped     = "tile_swapped"
	EventBoardShuffled   = "board_shuffled"
	EventTileHighlight   = "opponent_tile_highlight"
	EventSettingsUpdated = "timer_settings_updated"

	EventGraceStarted     = "timer_grace_started"
	EventGraceTick        = "timer_grace_tick"
	EventVotingEnabled    = "timer_voting_enabled"
	EventVoteUpdate       = "timer_vote_update"
	EventCountdownStarted = "timer_countdown_started"
	EventCountdownTick    = "timer_countdown_tick"
	EventFixedStarted     = "timer_fixed_started"
	EventFixedTick        = "timer_fixed_tick"
	EventTimerExpired     = "timer_expired"
)

type PlayerJoinedPayload struct {
	Player      *entity.Player `json:"player"`
	PlayerCount int            `json:"player_count"`
	Reconnected bool           `json:"reconnected,omitempty"`
}

type PlayerLeftPayload struct {
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	PlayerCount  int    `json:"player_count"`
	NewHostID    string `json:"new_host_id,omitempty"`
	Disconnected bool   `json:"disconnected,omitempty"`
}

type HostChangedPayload struct {
	HostID string `json:"host_id"`
}

type GameStartedPayload struct {
	TimerType      entity.TimerType `json:"timer_type"`
	BoardMode      entity.BoardMode `json:"board_mode"`
	Duration       int              `json:"duration"`
	MaxRounds      int              `json:"max_rounds"`
	BoardState     *board.Board     `json:"board_state,omitempty"`
	ActivePlayerID string           `json:"active_player_id,omitempty"`
}

type WordAcceptedPayload struct {
	PlayerID          string       `json:"player_id"`
	Word              string       `json:"word"`
	Score             int          `json:"score"`
	GemsCollected     int          `json:"gems_collected"`
	BoardState        *board.Board `json:"board_state,omitempty"`
	ConsumedPositions []board.Coord `json:"consumed_positions,omitempty"`
	NextPlayerID      string       `json:"next_player_id,omitempty"`
	TurnNumber        int          `json:"turn_number,omitempty"`
}

type PlayerDonePayload struct {
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	PlayersDone  int    `json:"players_done"`
	TotalPlayers int    `json:"total_players"`
}

type RoundStartedPayload struct {
	RoundNumber    int          `json:"round_number"`
	Duration       int          `json:"duration"`
	BoardState     *board.Board `json:"board_state,omitempty"`
	ActivePlayerID string       `json:"active_player_id,omitempty"`
}

type RoundResult struct {
	Name      string   `json:"name"`
	Score     int      `json:"score"`
	WordCount int      `json:"word_count"`
	Words     []string `json:"words"`
}

type RoundEndedPayload struct {
	Results           map[string]RoundResult `json:"results"`
	RoundNumber       int                    `json:"round_number"`
	PlayerScores      map[string]int         `json:"player_scores"`
	BoardState        *board.Board           `json:"board_state,omitempty"`
	ConsumedPositions []board.Coord          `json:"consumed_positions"`
}

type GameOverPayload struct {
	PlayerScores map[string]int `json:"player_scores"`
	WinnerID     string         `json:"winner_id,omitempty"`
}

type TurnEndedPayload struct {
	PlayerID     string `json:"player_id"`
	NextPlayerID string `json:"next_player_id,omitempty"`
	TurnNumber   int    `json:"turn_number,omitempty"`
	TimedOut     bool   `json:"timed_out,omitempty"`
}

type TileSwappedPayload struct {
	PlayerID  string      `json:"player_id"`
	Position  board.Coord `json:"position"`
	NewLetter string      `json:"new_letter"`
}

type BoardShuffledPayload struct {
	PlayerID   string       `json:"player_id"`
	BoardState *board.Board `json:"board_state"`
}

type TileHighlightPayload struct {
	PlayerID  string        `json:"player_id"`
	Positions []board.Coord `json:"positions"`
	Action    string        `json:"action"`
}

type SettingsUpdatedPayload struct {
	TimerType    entity.TimerType `json:"timer_type"`
	FixedMinutes int              `json:"fixed_minutes"`
}

type DurationPayload struct {
	Duration int `json:"duration"`
}

type SecondsPayload struct {
	Seconds int `json:"seconds"`
}

type VoteUpdatePayload struct {
	Votes    int `json:"votes"`
	Required int `json:"required"`
}

type TimerExpiredPayload struct {
	PlayerID string `json:"player_id,omitempty"`
}
