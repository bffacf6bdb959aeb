package board

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
)

const (
	// Size - the grid is always Size x Size.
	Size = 5

	gemCount = 10

	doubleLetterChance = 0.75
)

type Special string

const (
	SpecialNone         Special = ""
	SpecialDoubleLetter Special = "DL"
	SpecialTripleLetter Special = "TL"
)

type Tile struct {
	Letter  string  `json:"letter"`
	Special Special `json:"special,omitempty"`
	HasGem  bool    `json:"gem,omitempty"`
}

// Coord - a grid position. Serialized as a [row, col] pair on the wire.
type Coord struct {
	Row int
	Col int
}

func (that Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{that.Row, that.Col})
}

func (that *Coord) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("failed to unmarshal coord: %w", err)
	}

	that.Row, that.Col = pair[0], pair[1]

	return nil
}

func (that Coord) InBounds() bool {
	return that.Row >= 0 && that.Row < Size && that.Col >= 0 && that.Col < Size
}

func (that Coord) Index() int {
	return that.Row*Size + that.Col
}

// Board - the canonical letter grid. At most one tile carries a special
// multiplier and at most one position doubles the word score.
type Board struct {
	Tiles         [Size * Size]Tile `json:"tiles"`
	DoubleWordPos *Coord            `json:"double_word_pos,omitempty"`
}

// Generate - builds a fresh board: frequency-weighted letters, one special
// tile, one double-word position and gemCount gem tiles.
func Generate() *Board {
	b := &Board{}

	for i := range b.Tiles {
		b.Tiles[i] = Tile{Letter: DrawLetter()}
	}

	specialIdx := rand.Intn(len(b.Tiles)) //nolint: gosec // game randomness
	if rand.Float64() < doubleLetterChance {
		b.Tiles[specialIdx].Special = SpecialDoubleLetter
	} else {
		b.Tiles[specialIdx].Special = SpecialTripleLetter
	}

	dwIdx := rand.Intn(len(b.Tiles)) //nolint: gosec // game randomness
	for dwIdx == specialIdx {
		dwIdx = rand.Intn(len(b.Tiles))
	}
	b.DoubleWordPos = &Coord{Row: dwIdx / Size, Col: dwIdx % Size}

	for _, idx := range rand.Perm(len(b.Tiles))[:gemCount] {
		b.Tiles[idx].HasGem = true
	}

	return b
}

func (that *Board) TileAt(c Coord) Tile {
	return that.Tiles[c.Index()]
}

// Letters - the grid as rows of single letters, for snapshots.
func (that *Board) Letters() [][]string {
	rows := make([][]string, Size)
	for r := 0; r < Size; r++ {
		rows[r] = make([]string, Size)
		for c := 0; c < Size; c++ {
			rows[r][c] = that.Tiles[r*Size+c].Letter
		}
	}

	return rows
}

// Consume - applies an accepted submission to the grid: collects gems,
// relocates special multipliers off the consumed tiles, redraws the letters
// and respawns the collected gems among the fresh tiles. Returns the number
// of gems collected. Positions are claimed before any regeneration, so a
// consumed tile changes its letter exactly once per submission.
func (that *Board) Consume(path []Coord) int {
	gems := 0
	claimed := make([]int, 0, len(path))
	for _, c := range path {
		claimed = append(claimed, c.Index())
	}

	for _, idx := range claimed {
		if that.Tiles[idx].HasGem {
			gems++
			that.Tiles[idx].HasGem = false
		}

		if that.Tiles[idx].Special != SpecialNone {
			that.relocateSpecial(that.Tiles[idx].Special, claimed)
		}

		that.Tiles[idx].Letter = DrawLetter()
		that.Tiles[idx].Special = SpecialNone
	}

	fresh := append([]int(nil), claimed...)
	for i := 0; i < gems && len(fresh) > 0; i++ {
		pick := rand.Intn(len(fresh)) //nolint: gosec // game randomness
		that.Tiles[fresh[pick]].HasGem = true
		fresh = append(fresh[:pick], fresh[pick+1:]...)
	}

	return gems
}

// relocateSpecial - moves a consumed multiplier to a random plain tile
// outside the consumed path, so the board never loses its special tile.
func (that *Board) relocateSpecial(special Special, claimed []int) {
	avoid := make(map[int]bool, len(claimed))
	for _, idx := range claimed {
		avoid[idx] = true
	}

	candidates := make([]int, 0, len(that.Tiles))
	for i, tile := range that.Tiles {
		if tile.Special == SpecialNone && !avoid[i] {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) == 0 {
		return
	}

	that.Tiles[candidates[rand.Intn(len(candidates))]].Special = special //nolint: gosec // game randomness
}

// Shuffle - permutes whole tiles, so letters keep their multipliers and gems.
func (that *Board) Shuffle() {
	rand.Shuffle(len(that.Tiles), func(i, j int) {
		that.Tiles[i], that.Tiles[j] = that.Tiles[j], that.Tiles[i]
	})
}

// SwapLetter - replaces a single tile's letter, keeping its special and gem
// flags untouched.
func (that *Board) SwapLetter(pos Coord, newLetter string) error {
	if !pos.InBounds() {
		return fmt.Errorf("%w: position out of bounds", apperror.ErrInvalidSwap)
	}

	if len(newLetter) != 1 || newLetter[0] < 'A' || newLetter[0] > 'Z' {
		return fmt.Errorf("%w: letter must be A-Z", apperror.ErrInvalidSwap)
	}

	that.Tiles[pos.Index()].Letter = newLetter

	return nil
}
