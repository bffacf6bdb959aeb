package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
	"github.com/baiyoke1207/spellcast-backend/internal/board"
	"github.com/baiyoke1207/spellcast-backend/internal/entity"
)

// giveGems tops up a player's ability currency for tests that need more than
// the starting amount.
func giveGems(t *testing.T, manager *RoomManager, code, playerID string, gems int) {
	t.Helper()

	rs, ok := manager.roomByCode(code)
	require.True(t, ok)

	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.room.PlayerByID(playerID).Gems = gems
}

func TestRoomManager_UseAbility_Shuffle(t *testing.T) {
	manager, broadcaster := newTestManager()
	room := startedRoom(t, manager, StartSettings{}, "Alice", "Bob")
	ctx := context.Background()

	// When: the host shuffles
	result, err := manager.UseAbility(ctx, "sess-0", AbilityShuffle, AbilityParams{})

	// Then: one gem is spent and the new layout is public
	require.NoError(t, err)
	assert.Equal(t, AbilityShuffle, result.Ability)
	assert.Equal(t, entity.StartingGems-1, result.GemsLeft)
	require.NotNil(t, result.BoardState)

	ev, ok := broadcaster.last(EventBoardShuffled)
	require.True(t, ok)
	assert.Equal(t, "room", ev.Kind)
	assert.Equal(t, room.Code, ev.Target)
}

func TestRoomManager_UseAbility_Swap(t *testing.T) {
	t.Run("swap replaces a chosen tile", func(t *testing.T) {
		manager, broadcaster := newTestManager()
		room := startedRoom(t, manager, StartSettings{}, "Alice", "Bob")
		ctx := context.Background()

		setBoard(t, manager, room.Code, testBoard("CATSXAAAAAAAAAAAAAAAAAAAA"))

		// When: the host swaps (0,0) for a Q
		pos := &board.Coord{Row: 0, Col: 0}
		result, err := manager.UseAbility(ctx, "sess-0", AbilitySwap, AbilityParams{
			Position:  pos,
			NewLetter: "q",
		})

		// Then: three gems are spent and everyone sees the new letter
		require.NoError(t, err)
		assert.Equal(t, 0, result.GemsLeft)
		assert.Equal(t, "Q", result.BoardState.TileAt(*pos).Letter)

		ev, ok := broadcaster.last(EventTileSwapped)
		require.True(t, ok)
		payload, isSwap := ev.Payload.(TileSwappedPayload)
		require.True(t, isSwap)
		assert.Equal(t, "Q", payload.NewLetter)
		assert.Equal(t, *pos, payload.Position)
	})

	t.Run("swap without a letter draws one", func(t *testing.T) {
		manager, _ := newTestManager()
		room := startedRoom(t, manager, StartSettings{}, "Alice", "Bob")

		setBoard(t, manager, room.Code, testBoard("CATSXAAAAAAAAAAAAAAAAAAAA"))

		result, err := manager.UseAbility(context.Background(), "sess-0", AbilitySwap, AbilityParams{
			Position: &board.Coord{Row: 0, Col: 0},
		})

		require.NoError(t, err)
		letter := result.BoardState.TileAt(board.Coord{Row: 0, Col: 0}).Letter
		require.Len(t, letter, 1)
		assert.GreaterOrEqual(t, letter[0], byte('A'))
		assert.LessOrEqual(t, letter[0], byte('Z'))
	})

	t.Run("swap without a position refunds the cost", func(t *testing.T) {
		manager, _ := newTestManager()
		room := startedRoom(t, manager, StartSettings{}, "Alice", "Bob")

		_, err := manager.UseAbility(context.Background(), "sess-0", AbilitySwap, AbilityParams{})

		require.ErrorIs(t, err, apperror.ErrInvalidSwap)
		assert.Equal(t, entity.StartingGems, room.Players[0].Gems)
	})

	t.Run("out-of-bounds swap refunds the cost", func(t *testing.T) {
		manager, _ := newTestManager()
		room := startedRoom(t, manager, StartSettings{}, "Alice", "Bob")

		_, err := manager.UseAbility(context.Background(), "sess-0", AbilitySwap, AbilityParams{
			Position: &board.Coord{Row: 9, Col: 9},
		})

		require.ErrorIs(t, err, apperror.ErrInvalidSwap)
		assert.Equal(t, entity.StartingGems, room.Players[0].Gems)
	})
}

func TestRoomManager_UseAbility_Hint(t *testing.T) {
	t.Run("hint finds a playable word privately", func(t *testing.T) {
		manager, broadcaster := newTestManager("cats")
		room := startedRoom(t, manager, StartSettings{}, "Alice", "Bob")
		ctx := context.Background()

		setBoard(t, manager, room.Code, testBoard("CATSXXXXXXXXXXXXXXXXXXXXX"))
		giveGems(t, manager, room.Code, room.Players[0].ID, 5)

		result, err := manager.UseAbility(ctx, "sess-0", AbilityHint, AbilityParams{})

		// Then: four gems are spent on a word with a valid path
		require.NoError(t, err)
		assert.Equal(t, 1, result.GemsLeft)
		require.NotNil(t, result.Hint)
		assert.Equal(t, "cats", result.Hint.Word)
		require.NoError(t, board.ValidatePath(result.Hint.Path))

		// Then: nothing about the hint is broadcast
		assert.Empty(t, broadcaster.named(EventBoardShuffled))
		assert.Empty(t, broadcaster.named(EventTileSwapped))
	})

	t.Run("hint skips words already played and refunds when none remain", func(t *testing.T) {
		manager, _ := newTestManager("cats")
		room := startedRoom(t, manager, StartSettings{}, "Alice", "Bob")
		ctx := context.Background()

		setBoard(t, manager, room.Code, testBoard("CATSXXXXXXXXXXXXXXXXXXXXX"))
		giveGems(t, manager, room.Code, room.Players[0].ID, 8)

		_, err := manager.SubmitWord(ctx, "sess-0", "cats", catsPath())
		require.NoError(t, err)

		// When: the only dictionary word is already played and the redrawn
		// grid is forced wordless
		setBoard(t, manager, room.Code, testBoard("XXXXXXXXXXXXXXXXXXXXXXXXX"))
		_, err = manager.UseAbility(ctx, "sess-0", AbilityHint, AbilityParams{})

		// Then: no hint, and the gems come back
		require.ErrorIs(t, err, apperror.ErrNoHintFound)
		assert.Equal(t, 8, room.Players[0].Gems)
	})
}

func TestRoomManager_UseAbility_Errors(t *testing.T) {
	t.Run("insufficient gems", func(t *testing.T) {
		manager, _ := newTestManager()
		room := startedRoom(t, manager, StartSettings{}, "Alice", "Bob")
		ctx := context.Background()

		// Given: the starting three gems cannot cover a hint
		_, err := manager.UseAbility(ctx, "sess-0", AbilityHint, AbilityParams{})

		require.ErrorIs(t, err, apperror.ErrInsufficientGems)
		assert.Equal(t, entity.StartingGems, room.Players[0].Gems)
	})

	t.Run("unknown ability", func(t *testing.T) {
		manager, _ := newTestManager()
		_ = startedRoom(t, manager, StartSettings{}, "Alice", "Bob")

		_, err := manager.UseAbility(context.Background(), "sess-0", Ability("teleport"), AbilityParams{})

		require.ErrorIs(t, err, apperror.ErrUnknownAbility)
	})

	t.Run("abilities are locked outside a round", func(t *testing.T) {
		manager, _ := newTestManager()
		ctx := context.Background()

		_, _, err := manager.CreateRoom(ctx, "sess-0", "Alice", 4)
		require.NoError(t, err)

		_, err = manager.UseAbility(ctx, "sess-0", AbilityShuffle, AbilityParams{})

		require.ErrorIs(t, err, apperror.ErrRoundOver)
	})

	t.Run("per-player ability changes stay private", func(t *testing.T) {
		manager, broadcaster := newTestManager()
		room := startedRoom(t, manager, StartSettings{BoardMode: entity.BoardPerPlayer}, "Alice", "Bob")

		_, err := manager.UseAbility(context.Background(), "sess-1", AbilityShuffle, AbilityParams{})
		require.NoError(t, err)

		ev, ok := broadcaster.last(EventBoardShuffled)
		require.True(t, ok)
		assert.Equal(t, "player", ev.Kind)
		assert.Equal(t, room.Players[1].ID, ev.Target)
	})
}
