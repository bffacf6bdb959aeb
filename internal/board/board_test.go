package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
)

// plainBoard builds a board spelling the given 25 letters row by row, with no
// specials and no gems.
func plainBoard(letters string) *Board {
	b := &Board{}
	for i := 0; i < Size*Size; i++ {
		b.Tiles[i] = Tile{Letter: string(letters[i])}
	}

	return b
}

func TestGenerate(t *testing.T) {
	// When: a board is generated
	b := Generate()

	// Then: every tile carries a single uppercase letter
	for i, tile := range b.Tiles {
		require.Len(t, tile.Letter, 1, "tile %d", i)
		require.GreaterOrEqual(t, tile.Letter[0], byte('A'))
		require.LessOrEqual(t, tile.Letter[0], byte('Z'))
	}

	// Then: exactly one tile has a letter multiplier
	specials := 0
	specialIdx := -1
	for i, tile := range b.Tiles {
		if tile.Special != SpecialNone {
			specials++
			specialIdx = i
		}
	}
	require.Equal(t, 1, specials)

	// Then: the double-word position exists and avoids the special tile
	require.NotNil(t, b.DoubleWordPos)
	assert.True(t, b.DoubleWordPos.InBounds())
	assert.NotEqual(t, specialIdx, b.DoubleWordPos.Index())

	// Then: exactly ten tiles hold a gem
	gems := 0
	for _, tile := range b.Tiles {
		if tile.HasGem {
			gems++
		}
	}
	require.Equal(t, 10, gems)
}

func TestValidatePath(t *testing.T) {
	t.Run("accepts adjacent chain", func(t *testing.T) {
		// Given: a diagonal then horizontal chain of distinct tiles
		path := []Coord{{0, 0}, {1, 1}, {1, 2}, {0, 2}}

		// Then: it validates
		require.NoError(t, ValidatePath(path))
	})

	t.Run("rejects too short path", func(t *testing.T) {
		err := ValidatePath([]Coord{{0, 0}})
		require.ErrorIs(t, err, apperror.ErrInvalidPath)
	})

	t.Run("rejects out of bounds", func(t *testing.T) {
		err := ValidatePath([]Coord{{0, 0}, {0, -1}})
		require.ErrorIs(t, err, apperror.ErrInvalidPath)

		err = ValidatePath([]Coord{{4, 4}, {5, 4}})
		require.ErrorIs(t, err, apperror.ErrInvalidPath)
	})

	t.Run("rejects repeated tile", func(t *testing.T) {
		err := ValidatePath([]Coord{{0, 0}, {0, 1}, {0, 0}})
		require.ErrorIs(t, err, apperror.ErrInvalidPath)
	})

	t.Run("rejects non-adjacent step", func(t *testing.T) {
		err := ValidatePath([]Coord{{0, 0}, {0, 2}})
		require.ErrorIs(t, err, apperror.ErrInvalidPath)

		err = ValidatePath([]Coord{{0, 0}, {2, 2}})
		require.ErrorIs(t, err, apperror.ErrInvalidPath)
	})
}

func TestBoard_Word(t *testing.T) {
	// Given: a board whose first row spells CATSX
	b := plainBoard("CATSXAAAAAAAAAAAAAAAAAAAA")

	// When: the first four tiles of the row are traced
	path := []Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}}

	// Then: the path spells CATS, case-insensitively
	assert.Equal(t, "CATS", b.Word(path))
	assert.True(t, b.MatchesWord(path, "cats"))
	assert.True(t, b.MatchesWord(path, "CATS"))
	assert.False(t, b.MatchesWord(path, "cast"))
}

func TestBoard_ScorePath(t *testing.T) {
	t.Run("plain letters sum their values", func(t *testing.T) {
		// Given: C=5 A=1 T=2 S=2 on plain tiles
		b := plainBoard("CATSXAAAAAAAAAAAAAAAAAAAA")

		// When: CATS is scored
		score := b.ScorePath([]Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}})

		// Then: 5+1+2+2 = 10
		require.Equal(t, 10, score)
	})

	t.Run("double letter multiplies one tile", func(t *testing.T) {
		b := plainBoard("CATSXAAAAAAAAAAAAAAAAAAAA")
		b.Tiles[0].Special = SpecialDoubleLetter

		// Then: 5*2+1+2+2 = 15
		require.Equal(t, 15, b.ScorePath([]Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}}))
	})

	t.Run("triple letter multiplies one tile", func(t *testing.T) {
		b := plainBoard("CATSXAAAAAAAAAAAAAAAAAAAA")
		b.Tiles[2].Special = SpecialTripleLetter

		// Then: 5+1+2*3+2 = 14
		require.Equal(t, 14, b.ScorePath([]Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}}))
	})

	t.Run("double word doubles the letter sum", func(t *testing.T) {
		b := plainBoard("CATSXAAAAAAAAAAAAAAAAAAAA")
		b.DoubleWordPos = &Coord{Row: 0, Col: 1}

		// Then: (5+1+2+2)*2 = 20
		require.Equal(t, 20, b.ScorePath([]Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}}))
	})

	t.Run("long word bonus lands after the word multiplier", func(t *testing.T) {
		// Given: STREAM = 2+2+2+1+1+4 = 12, across the top row then down a cell
		b := plainBoard("STREAAAAAMAAAAAAAAAAAAAAA")
		path := []Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {1, 4}}
		require.NoError(t, ValidatePath(path))

		// Then: plain 6-letter word earns the flat bonus
		require.Equal(t, 22, b.ScorePath(path))

		// Then: a double word position doubles the sum but not the bonus
		b.DoubleWordPos = &Coord{Row: 0, Col: 0}
		require.Equal(t, 34, b.ScorePath(path))
	})
}

func TestBoard_Consume(t *testing.T) {
	t.Run("collects gems and redraws consumed letters", func(t *testing.T) {
		// Given: a board with gems on the consumed path
		b := plainBoard("CATSXAAAAAAAAAAAAAAAAAAAA")
		b.Tiles[0].HasGem = true
		b.Tiles[1].HasGem = true
		path := []Coord{{0, 0}, {0, 1}, {0, 2}, {0, 3}}

		// When: the path is consumed
		gems := b.Consume(path)

		// Then: both gems were collected and respawned among the fresh tiles
		require.Equal(t, 2, gems)
		respawned := 0
		for _, c := range path {
			if b.TileAt(c).HasGem {
				respawned++
			}
		}
		assert.Equal(t, 2, respawned)
	})

	t.Run("relocates a consumed multiplier off the path", func(t *testing.T) {
		// Given: a multiplier sitting on the path
		b := plainBoard("CATSXAAAAAAAAAAAAAAAAAAAA")
		b.Tiles[0].Special = SpecialTripleLetter
		path := []Coord{{0, 0}, {0, 1}}

		// When: the path is consumed
		b.Consume(path)

		// Then: exactly one multiplier survives, outside the consumed tiles
		specialIdx := -1
		specials := 0
		for i, tile := range b.Tiles {
			if tile.Special != SpecialNone {
				specials++
				specialIdx = i
			}
		}
		require.Equal(t, 1, specials)
		assert.NotContains(t, []int{0, 1}, specialIdx)
	})

	t.Run("untouched tiles keep their letters", func(t *testing.T) {
		b := plainBoard("CATSXBBBBBBBBBBBBBBBBBBBB")
		before := b.Letters()

		b.Consume([]Coord{{0, 0}, {0, 1}})

		after := b.Letters()
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				if r == 0 && c < 2 {
					continue
				}
				assert.Equal(t, before[r][c], after[r][c], "tile (%d,%d)", r, c)
			}
		}
	})
}

func TestBoard_Shuffle(t *testing.T) {
	// Given: a generated board
	b := Generate()

	gemsBefore := 0
	for _, tile := range b.Tiles {
		if tile.HasGem {
			gemsBefore++
		}
	}

	// When: the board is shuffled
	b.Shuffle()

	// Then: tiles moved but nothing was created or lost
	gemsAfter := 0
	specials := 0
	for _, tile := range b.Tiles {
		if tile.HasGem {
			gemsAfter++
		}
		if tile.Special != SpecialNone {
			specials++
		}
	}
	require.Equal(t, gemsBefore, gemsAfter)
	require.Equal(t, 1, specials)
}

func TestBoard_SwapLetter(t *testing.T) {
	t.Run("replaces the letter only", func(t *testing.T) {
		b := plainBoard("CATSXAAAAAAAAAAAAAAAAAAAA")
		b.Tiles[0].HasGem = true

		err := b.SwapLetter(Coord{0, 0}, "Q")

		require.NoError(t, err)
		assert.Equal(t, "Q", b.Tiles[0].Letter)
		assert.True(t, b.Tiles[0].HasGem)
	})

	t.Run("rejects out of bounds position", func(t *testing.T) {
		b := plainBoard("CATSXAAAAAAAAAAAAAAAAAAAA")
		err := b.SwapLetter(Coord{5, 0}, "Q")
		require.ErrorIs(t, err, apperror.ErrInvalidSwap)
	})

	t.Run("rejects non-letter input", func(t *testing.T) {
		b := plainBoard("CATSXAAAAAAAAAAAAAAAAAAAA")

		require.ErrorIs(t, b.SwapLetter(Coord{0, 0}, "q"), apperror.ErrInvalidSwap)
		require.ErrorIs(t, b.SwapLetter(Coord{0, 0}, "QQ"), apperror.ErrInvalidSwap)
		require.ErrorIs(t, b.SwapLetter(Coord{0, 0}, ""), apperror.ErrInvalidSwap)
	})
}

func TestCoord_JSON(t *testing.T) {
	// Given: a coord
	c := Coord{Row: 2, Col: 4}

	// When: marshaled
	data, err := c.MarshalJSON()
	require.NoError(t, err)

	// Then: it is a [row, col] pair
	assert.JSONEq(t, "[2,4]", string(data))

	// When: unmarshaled back
	var got Coord
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, c, got)
}

func TestDrawLetter(t *testing.T) {
	// Then: draws are always single uppercase letters
	for i := 0; i < 1000; i++ {
		letter := DrawLetter()
		require.Len(t, letter, 1)
		require.GreaterOrEqual(t, letter[0], byte('A'))
		require.LessOrEqual(t, letter[0], byte('Z'))
	}
}
