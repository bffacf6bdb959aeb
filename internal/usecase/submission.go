package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
	"github.com/baiyoke1207/spellcast-backend/internal/board"
	"github.com/baiyoke1207/spellcast-backend/internal/entity"
)

// SubmissionResult - what an accepted word earned, returned to the submitter.
type SubmissionResult struct {
	Word              string        `json:"word"`
	Score             int           `json:"score"`
	GemsCollected     int           `json:"gems_collected"`
	BoardState        *board.Board  `json:"board_state"`
	ConsumedPositions []board.Coord `json:"consumed_positions"`
}

// SubmitWord - the authoritative scoring transaction. Validates the path
// against the submitter's grid, checks the dictionary, then atomically scores
// the player, consumes and regenerates the path's tiles and collects gems.
// The whole transaction runs under the room lock, so two submissions against
// a shared board can never consume the same tile twice.
func (that *RoomManager) SubmitWord(ctx context.Context, sessionID, word string, path []board.Coord) (*SubmissionResult, error) {
	log := that.logger.With("method", "SubmitWord")

	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	room := rs.room

	if room.Phase == entity.PhaseGameOver {
		return nil, apperror.ErrGameOver
	}
	if room.Phase != entity.PhaseInRound {
		return nil, apperror.ErrRoundOver
	}

	player := room.PlayerByID(sess.PlayerID)
	if player == nil {
		return nil, apperror.ErrNotInRoom
	}

	if room.Settings.BoardMode == entity.BoardPerPlayer && room.ActivePlayerID != player.ID {
		return nil, apperror.ErrNotYourTurn
	}

	word = strings.ToLower(strings.TrimSpace(word))

	if len(word) < board.MinWordLen {
		return nil, fmt.Errorf("%w: %d letters minimum", apperror.ErrWordTooShort, board.MinWordLen)
	}
	if len(word) > board.MaxWordLen {
		return nil, fmt.Errorf("%w: %d letters maximum", apperror.ErrWordTooLong, board.MaxWordLen)
	}

	if player.HasPlayed(word) {
		return nil, fmt.Errorf("%w: %q", apperror.ErrWordAlreadyPlayed, word)
	}

	grid := room.BoardFor(player.ID)
	if grid == nil {
		return nil, apperror.ErrRoundOver
	}

	if err = board.ValidatePath(path); err != nil {
		return nil, err
	}

	if !grid.MatchesWord(path, word) {
		return nil, fmt.Errorf("%w: path spells %q", apperror.ErrBoardMismatch, strings.ToLower(grid.Word(path)))
	}

	lookupCtx, cancel := context.WithTimeout(ctx, that.conf.DictLookupTimeout())
	defer cancel()

	known, err := that.dict.Lookup(lookupCtx, word)
	if err != nil {
		// A broken dictionary degrades to a conservative rejection; it never
		// stalls or kills the room.
		log.Error("dictionary lookup failed", "word", word, "error", err)
		return nil, apperror.ErrNotAWord
	}
	if !known {
		return nil, fmt.Errorf("%w: %q", apperror.ErrNotAWord, word)
	}

	score := grid.ScorePath(path)
	gems := grid.Consume(path)

	player.RecordWord(word, score)
	player.Gems += gems

	for _, c := range path {
		rs.consumed[c] = true
	}

	result := &SubmissionResult{
		Word:              word,
		Score:             score,
		GemsCollected:     gems,
		BoardState:        grid,
		ConsumedPositions: path,
	}

	log.Info("word accepted", "roomCode", room.Code, "player", player.Name, "word", word, "score", score)

	if room.Settings.BoardMode == entity.BoardPerPlayer {
		// Turn-based play is public: everyone sees the word, and the turn
		// passes to the next player.
		that.broadcaster.ToRoom(room.Code, EventWordAccepted, WordAcceptedPayload{
			PlayerID:          player.ID,
			Word:              word,
			Score:             score,
			GemsCollected:     gems,
			BoardState:        grid,
			ConsumedPositions: path,
			NextPlayerID:      room.NextPlayerAfter(player.ID).ID,
			TurnNumber:        room.TurnNumber + 1,
		})

		that.advanceTurn(ctx, rs, player.ID, false)

		return result, nil
	}

	// Shared-board play is secret until the reveal: only the submitter learns
	// the score, and the round ends early once everyone has submitted.
	that.saveSnapshot(ctx, room)

	if room.AllSubmitted() {
		that.endRound(ctx, rs)
	}

	return result, nil
}
