package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
	"github.com/baiyoke1207/spellcast-backend/internal/board"
	"github.com/baiyoke1207/spellcast-backend/internal/dictionary"
	"github.com/baiyoke1207/spellcast-backend/internal/entity"
)

type Ability string

const (
	AbilityShuffle Ability = "shuffle"
	AbilitySwap    Ability = "swap"
	AbilityHint    Ability = "hint"
)

// GemCosts - gem price of every ability.
var GemCosts = map[Ability]int{
	AbilityShuffle: 1,
	AbilitySwap:    3,
	AbilityHint:    4,
}

// AbilityParams - extra input for abilities that need it (swap target).
type AbilityParams struct {
	Position  *board.Coord `json:"position,omitempty"`
	NewLetter string       `json:"new_letter,omitempty"`
}

type AbilityResult struct {
	Ability    Ability      `json:"ability"`
	GemsLeft   int          `json:"gems_left"`
	BoardState *board.Board `json:"board_state"`
	Hint       *board.Hint  `json:"hint,omitempty"`
}

// UseAbility - spends gems on shuffle, swap or hint against the player's
// grid. The cost is refunded when the ability cannot be applied.
func (that *RoomManager) UseAbility(ctx context.Context, sessionID string, ability Ability, params AbilityParams) (*AbilityResult, error) {
	log := that.logger.With("method", "UseAbility", "ability", string(ability))

	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	room := rs.room

	if room.Phase != entity.PhaseInRound {
		return nil, apperror.ErrRoundOver
	}

	player := room.PlayerByID(sess.PlayerID)
	if player == nil {
		return nil, apperror.ErrNotInRoom
	}

	cost, known := GemCosts[ability]
	if !known {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownAbility, ability)
	}

	if player.Gems < cost {
		return nil, fmt.Errorf("%w: %s costs %d", apperror.ErrInsufficientGems, ability, cost)
	}

	grid := room.BoardFor(player.ID)
	if grid == nil {
		return nil, apperror.ErrRoundOver
	}

	player.Gems -= cost

	result := &AbilityResult{Ability: ability, BoardState: grid}

	switch ability {
	case AbilityShuffle:
		grid.Shuffle()
		that.broadcastBoardChange(room, player.ID, EventBoardShuffled, BoardShuffledPayload{
			PlayerID:   player.ID,
			BoardState: grid,
		})

	case AbilitySwap:
		if params.Position == nil {
			player.Gems += cost
			return nil, fmt.Errorf("%w: position required", apperror.ErrInvalidSwap)
		}

		letter := strings.ToUpper(strings.TrimSpace(params.NewLetter))
		if letter == "" {
			letter = board.DrawLetter()
		}

		if err = grid.SwapLetter(*params.Position, letter); err != nil {
			player.Gems += cost
			return nil, err
		}

		that.broadcastBoardChange(room, player.ID, EventTileSwapped, TileSwappedPayload{
			PlayerID:  player.ID,
			Position:  *params.Position,
			NewLetter: letter,
		})

	case AbilityHint:
		hint := that.searchHint(grid, player)
		if hint == nil {
			player.Gems += cost
			return nil, apperror.ErrNoHintFound
		}

		// Hints are private; nothing is broadcast.
		result.Hint = hint
	}

	result.GemsLeft = player.Gems

	that.saveSnapshot(ctx, room)

	log.Info("ability used", "roomCode", room.Code, "player", player.Name, "gemsLeft", player.Gems)

	return result, nil
}

// broadcastBoardChange - board mutations are public on a shared grid but
// private to the owner in per-player mode.
func (that *RoomManager) broadcastBoardChange(room *entity.Room, playerID, event string, payload any) {
	if room.Settings.BoardMode == entity.BoardPerPlayer {
		that.broadcaster.ToPlayer(playerID, event, payload)
		return
	}

	that.broadcaster.ToRoom(room.Code, event, payload)
}

func (that *RoomManager) searchHint(grid *board.Board, player *entity.Player) *board.Hint {
	lister, ok := that.dict.(dictionary.WordLister)
	if !ok {
		return nil
	}

	exclude := make(map[string]bool, len(player.RoundWords))
	for _, w := range player.RoundWords {
		exclude[w] = true
	}

	return grid.FindBestWord(lister.Words(), exclude)
}
