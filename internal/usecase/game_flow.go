package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
	"github.com/baiyoke1207/spellcast-backend/internal/board"
	"github.com/baiyoke1207/spellcast-backend/internal/entity"
	"github.com/baiyoke1207/spellcast-backend/internal/timer"
)

const secondsPerMinute = 60

// StartSettings - host-provided settings locked in when the game starts.
// Zero values keep whatever the lobby already had.
type StartSettings struct {
	TimerType    entity.TimerType `json:"timer_type,omitempty"`
	FixedMinutes int              `json:"fixed_minutes,omitempty"`
	BoardMode    entity.BoardMode `json:"board_mode,omitempty"`
	MaxRounds    int              `json:"max_rounds,omitempty"`
}

// StartGame - host-only: locks in settings, generates the board(s), moves the
// room into its first round and starts the configured timer discipline.
func (that *RoomManager) StartGame(ctx context.Context, sessionID string, settings StartSettings) error {
	log := that.logger.With("method", "StartGame")

	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	room := rs.room

	if !room.IsHost(sess.PlayerID) {
		return apperror.ErrNotHost
	}

	if room.Phase != entity.PhaseLobby {
		return apperror.ErrGameInProgress
	}

	if len(room.Players) < entity.MinPlayers {
		return apperror.ErrInsufficientPlayers
	}

	applyStartSettings(&room.Settings, settings)

	room.Phase = entity.PhaseInRound
	room.RoundNumber = 1
	rs.consumed = make(map[board.Coord]bool)

	if room.Settings.BoardMode == entity.BoardPerPlayer {
		room.PlayerBoards = make(map[string]*board.Board, len(room.Players))
		for _, p := range room.Players {
			room.PlayerBoards[p.ID] = board.Generate()
		}
		room.ActivePlayerID = room.Players[0].ID
		room.TurnNumber = 1
	} else {
		room.Board = board.Generate()
	}

	started := GameStartedPayload{
		TimerType:      room.Settings.TimerType,
		BoardMode:      room.Settings.BoardMode,
		Duration:       that.timerDuration(room),
		MaxRounds:      room.Settings.MaxRounds,
		ActivePlayerID: room.ActivePlayerID,
	}

	if room.Settings.BoardMode == entity.BoardShared {
		started.BoardState = room.Board
		that.broadcaster.ToRoom(room.Code, EventGameStarted, started)
	} else {
		// Each player only ever sees their own grid.
		for _, p := range room.Players {
			personal := started
			personal.BoardState = room.PlayerBoards[p.ID]
			that.broadcaster.ToPlayer(p.ID, EventGameStarted, personal)
		}
	}

	that.startTimer(rs)

	code := room.Code
	rs.runner = timer.StartRunner(context.Background(), time.Second, func() bool {
		return that.tickRoom(code)
	})

	that.saveSnapshot(ctx, room)

	log.Info("game started", "roomCode", room.Code,
		"timerType", room.Settings.TimerType, "boardMode", room.Settings.BoardMode)

	return nil
}

func applyStartSettings(current *entity.Settings, overrides StartSettings) {
	if overrides.TimerType == entity.TimerVoting || overrides.TimerType == entity.TimerFixed {
		current.TimerType = overrides.TimerType
	}

	if overrides.BoardMode == entity.BoardShared || overrides.BoardMode == entity.BoardPerPlayer {
		current.BoardMode = overrides.BoardMode
	}

	if overrides.FixedMinutes > 0 {
		current.FixedMinutes = entity.ClampFixedMinutes(overrides.FixedMinutes)
	}

	if overrides.MaxRounds > 0 {
		current.MaxRounds = overrides.MaxRounds
	}
}

func (that *RoomManager) timerDuration(room *entity.Room) int {
	if room.Settings.TimerType == entity.TimerFixed {
		return room.Settings.FixedMinutes * secondsPerMinute
	}

	return that.conf.GraceSeconds
}

// startTimer - enters the configured discipline and announces it. Called with
// the room lock held.
func (that *RoomManager) startTimer(rs *roomState) {
	room := rs.room

	if room.Settings.TimerType == entity.TimerFixed {
		seconds := room.Settings.FixedMinutes * secondsPerMinute
		rs.machine.StartFixed(seconds)
		that.broadcaster.ToRoom(room.Code, EventFixedStarted, DurationPayload{Duration: seconds})
		return
	}

	rs.machine.StartGrace(room.MajorityThreshold())
	that.broadcaster.ToRoom(room.Code, EventGraceStarted, DurationPayload{Duration: rs.machine.GraceDuration()})
}

// tickRoom - the per-second callback of a room's timer runner. Returning
// false stops the runner: that happens when the room is gone or has left the
// in-round phase. A tick for a deleted room mutates nothing.
func (that *RoomManager) tickRoom(code string) bool {
	rs, ok := that.roomByCode(code)
	if !ok {
		return false
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.room.Phase != entity.PhaseInRound {
		return false
	}

	mode, seconds, signal := rs.machine.Tick()

	if signal == timer.SignalNone {
		switch mode {
		case timer.ModeGrace:
			that.broadcaster.ToRoom(code, EventGraceTick, SecondsPayload{Seconds: seconds})
		case timer.ModeCountdown:
			that.broadcaster.ToRoom(code, EventCountdownTick, SecondsPayload{Seconds: seconds})
		case timer.ModeFixed:
			that.broadcaster.ToRoom(code, EventFixedTick, SecondsPayload{Seconds: seconds})
		case timer.ModeIdle, timer.ModeVoting:
		}

		return true
	}

	switch signal {
	case timer.SignalVotingEnabled:
		that.broadcaster.ToRoom(code, EventVotingEnabled, struct{}{})
		that.broadcaster.ToRoom(code, EventVoteUpdate, VoteUpdatePayload{
			Votes:    rs.machine.Votes(),
			Required: rs.machine.Required(),
		})

	case timer.SignalExpired:
		that.handleExpiry(context.Background(), rs)

	case timer.SignalNone, timer.SignalCountdownStarted:
	}

	return rs.room.Phase == entity.PhaseInRound
}

// handleExpiry - the authoritative timeout. In shared mode it ends the round;
// in per-player mode it skips the active player's turn. Called with the room
// lock held.
func (that *RoomManager) handleExpiry(ctx context.Context, rs *roomState) {
	room := rs.room

	that.broadcaster.ToRoom(room.Code, EventTimerExpired, TimerExpiredPayload{PlayerID: room.ActivePlayerID})

	if room.Settings.BoardMode == entity.BoardPerPlayer {
		that.advanceTurn(ctx, rs, room.ActivePlayerID, true)
		return
	}

	that.broadcaster.ToRoom(room.Code, EventTurnEnded, TurnEndedPayload{TimedOut: true})
	that.endRound(ctx, rs)
}

// VoteTimer - one vote toward starting the countdown. The threshold is a
// majority of the current player count.
func (that *RoomManager) VoteTimer(ctx context.Context, sessionID string) error {
	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.room.Phase != entity.PhaseInRound {
		return apperror.ErrNotVoting
	}

	if rs.room.PlayerByID(sess.PlayerID) == nil {
		return apperror.ErrNotInRoom
	}

	signal, err := rs.machine.Vote(sess.PlayerID)
	if err != nil {
		return fmt.Errorf("vote rejected: %w", err)
	}

	that.broadcaster.ToRoom(rs.room.Code, EventVoteUpdate, VoteUpdatePayload{
		Votes:    rs.machine.Votes(),
		Required: rs.machine.Required(),
	})

	if signal == timer.SignalCountdownStarted {
		that.broadcaster.ToRoom(rs.room.Code, EventCountdownStarted, DurationPayload{
			Duration: rs.machine.CountdownDuration(),
		})
	}

	return nil
}

// PlayerDone - simultaneous-play "I'm done" flag; the round ends as soon as
// every player has raised it.
func (that *RoomManager) PlayerDone(ctx context.Context, sessionID string) error {
	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	room := rs.room

	if room.Phase != entity.PhaseInRound {
		return apperror.ErrRoundOver
	}

	// Done flags drive the shared-board fast path; in turn mode the turn is
	// passed with end_turn instead.
	if room.Settings.BoardMode == entity.BoardPerPlayer {
		return apperror.ErrNotYourTurn
	}

	player := room.PlayerByID(sess.PlayerID)
	if player == nil {
		return apperror.ErrNotInRoom
	}

	player.Done = true

	if room.AllDone() {
		that.endRound(ctx, rs)
		return nil
	}

	done := 0
	for _, p := range room.Players {
		if p.Done {
			done++
		}
	}

	that.broadcaster.ToRoom(room.Code, EventPlayerDone, PlayerDonePayload{
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		PlayersDone:  done,
		TotalPlayers: len(room.Players),
	})

	that.saveSnapshot(ctx, room)

	return nil
}

// EndTurn - the active player yields their turn early (per-player mode). In
// shared mode this is the same as marking done.
func (that *RoomManager) EndTurn(ctx context.Context, sessionID string) error {
	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	rs.mu.Lock()

	if rs.room.Settings.BoardMode != entity.BoardPerPlayer {
		rs.mu.Unlock()
		return that.PlayerDone(ctx, sessionID)
	}

	defer rs.mu.Unlock()

	if rs.room.Phase != entity.PhaseInRound {
		return apperror.ErrRoundOver
	}

	if rs.room.ActivePlayerID != sess.PlayerID {
		return apperror.ErrNotYourTurn
	}

	that.advanceTurn(ctx, rs, sess.PlayerID, false)

	return nil
}

// advanceTurn - rotates to the next player by join order; a full rotation
// ends the round. Called with the room lock held.
func (that *RoomManager) advanceTurn(ctx context.Context, rs *roomState, fromPlayerID string, timedOut bool) {
	room := rs.room

	next := room.NextPlayerAfter(fromPlayerID)
	room.ActivePlayerID = next.ID
	room.TurnNumber++

	that.broadcaster.ToRoom(room.Code, EventTurnEnded, TurnEndedPayload{
		PlayerID:     fromPlayerID,
		NextPlayerID: next.ID,
		TurnNumber:   room.TurnNumber,
		TimedOut:     timedOut,
	})

	if next.ID == room.Players[0].ID {
		that.endRound(ctx, rs)
		return
	}

	that.startTimer(rs)
	that.saveSnapshot(ctx, room)
}

// passTurnFromLeaver - an active player's departure ends their turn the same
// way an explicit end_turn would. When the leaver held the last seat of the
// rotation the round is over. Called with the room lock held.
func (that *RoomManager) passTurnFromLeaver(ctx context.Context, rs *roomState, leaverID string, next *entity.Player, lastInRotation bool) {
	room := rs.room

	room.ActivePlayerID = next.ID
	room.TurnNumber++

	that.broadcaster.ToRoom(room.Code, EventTurnEnded, TurnEndedPayload{
		PlayerID:     leaverID,
		NextPlayerID: next.ID,
		TurnNumber:   room.TurnNumber,
	})

	if lastInRotation {
		that.endRound(ctx, rs)
		return
	}

	that.startTimer(rs)
	that.saveSnapshot(ctx, room)
}

// endRound - reveals the round results, resets per-round flags and either
// starts the next round or finishes the game. Called with the room lock held.
func (that *RoomManager) endRound(ctx context.Context, rs *roomState) {
	room := rs.room

	rs.machine.Stop()

	results := make(map[string]RoundResult, len(room.Players))
	scores := make(map[string]int, len(room.Players))
	for _, p := range room.Players {
		results[p.ID] = RoundResult{
			Name:      p.Name,
			Score:     p.RoundScore,
			WordCount: len(p.RoundWords),
			Words:     p.RoundWords,
		}
		scores[p.ID] = p.Score
	}

	consumed := make([]board.Coord, 0, len(rs.consumed))
	for c := range rs.consumed {
		consumed = append(consumed, c)
	}

	that.broadcaster.ToRoom(room.Code, EventRoundEnded, RoundEndedPayload{
		Results:           results,
		RoundNumber:       room.RoundNumber,
		PlayerScores:      scores,
		BoardState:        room.Board,
		ConsumedPositions: consumed,
	})

	for _, p := range room.Players {
		p.ResetRound()
	}
	rs.consumed = make(map[board.Coord]bool)

	if room.RoundNumber >= room.Settings.MaxRounds {
		that.finishGame(ctx, rs)
		return
	}

	room.RoundNumber++

	// Each round plays on fresh boards, the same initialization the game
	// start performs.
	if room.Settings.BoardMode == entity.BoardPerPlayer {
		room.PlayerBoards = make(map[string]*board.Board, len(room.Players))
		for _, p := range room.Players {
			room.PlayerBoards[p.ID] = board.Generate()
		}
		room.ActivePlayerID = room.Players[0].ID
		room.TurnNumber = 1
	} else {
		room.Board = board.Generate()
	}

	started := RoundStartedPayload{
		RoundNumber:    room.RoundNumber,
		Duration:       that.timerDuration(room),
		ActivePlayerID: room.ActivePlayerID,
	}

	if room.Settings.BoardMode == entity.BoardShared {
		started.BoardState = room.Board
		that.broadcaster.ToRoom(room.Code, EventRoundStarted, started)
	} else {
		for _, p := range room.Players {
			personal := started
			personal.BoardState = room.PlayerBoards[p.ID]
			that.broadcaster.ToPlayer(p.ID, EventRoundStarted, personal)
		}
	}

	that.startTimer(rs)
	that.saveSnapshot(ctx, room)
}

// finishGame - freezes the room; no further mutation is accepted and the
// timer runner winds down on its next tick.
func (that *RoomManager) finishGame(ctx context.Context, rs *roomState) {
	room := rs.room

	room.Phase = entity.PhaseGameOver

	if rs.runner != nil {
		rs.runner.Stop()
	}

	scores := make(map[string]int, len(room.Players))
	winnerID := ""
	best := -1
	for _, p := range room.Players {
		scores[p.ID] = p.Score
		if p.Score > best {
			best = p.Score
			winnerID = p.ID
		}
	}

	that.broadcaster.ToRoom(room.Code, EventGameOver, GameOverPayload{
		PlayerScores: scores,
		WinnerID:     winnerID,
	})

	that.saveSnapshot(ctx, room)

	that.logger.Info("game over", "roomCode", room.Code, "winner", winnerID)
}
