package board

import (
	"fmt"
	"strings"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
)

const (
	// MinWordLen / MaxWordLen - accepted submission length bounds.
	MinWordLen = 2
	MaxWordLen = 25

	longWordBonus    = 10
	longWordMinLen   = 6
	doubleLetterMult = 2
	tripleLetterMult = 3
)

// ValidatePath - checks that a path stays on the grid, repeats no tile and
// only ever steps to an 8-directionally adjacent tile (Chebyshev distance 1).
func ValidatePath(path []Coord) error {
	if len(path) < MinWordLen {
		return fmt.Errorf("%w: need at least %d tiles", apperror.ErrInvalidPath, MinWordLen)
	}

	seen := make(map[Coord]bool, len(path))
	for i, c := range path {
		if !c.InBounds() {
			return fmt.Errorf("%w: position (%d,%d) out of bounds", apperror.ErrInvalidPath, c.Row, c.Col)
		}

		if seen[c] {
			return fmt.Errorf("%w: tile (%d,%d) used twice", apperror.ErrInvalidPath, c.Row, c.Col)
		}
		seen[c] = true

		if i == 0 {
			continue
		}

		prev := path[i-1]
		if chebyshev(prev, c) != 1 {
			return fmt.Errorf("%w: step (%d,%d) -> (%d,%d) is not adjacent",
				apperror.ErrInvalidPath, prev.Row, prev.Col, c.Row, c.Col)
		}
	}

	return nil
}

func chebyshev(a, b Coord) int {
	dr := abs(a.Row - b.Row)
	dc := abs(a.Col - b.Col)
	if dr > dc {
		return dr
	}

	return dc
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}

// Word - the uppercase word spelled by a path.
func (that *Board) Word(path []Coord) string {
	var sb strings.Builder
	for _, c := range path {
		sb.WriteString(that.TileAt(c).Letter)
	}

	return sb.String()
}

// MatchesWord - verifies the path spells the submitted word, case-insensitively.
func (that *Board) MatchesWord(path []Coord, word string) bool {
	return that.Word(path) == strings.ToUpper(word)
}

// ScorePath - the authoritative score of a path. Letter values are multiplied
// by the tile's letter multiplier and summed, the sum is multiplied by 2 for
// every double-word position in the path, and words of 6+ letters get a flat
// +10 after the multiplier. This ordering changes totals for special-tile
// words and must not be rearranged.
func (that *Board) ScorePath(path []Coord) int {
	base := 0
	wordMult := 1

	for _, c := range path {
		tile := that.TileAt(c)

		letterMult := 1
		switch tile.Special {
		case SpecialDoubleLetter:
			letterMult = doubleLetterMult
		case SpecialTripleLetter:
			letterMult = tripleLetterMult
		case SpecialNone:
		}

		if that.DoubleWordPos != nil && *that.DoubleWordPos == c {
			wordMult *= 2
		}

		base += LetterValues[tile.Letter] * letterMult
	}

	score := base * wordMult
	if len(path) >= longWordMinLen {
		score += longWordBonus
	}

	return score
}
