package board

import "strings"

// maxHintWords bounds how much of the word list a single hint may scan.
const maxHintWords = 50000

// Hint - a suggested word together with a valid path spelling it.
type Hint struct {
	Word string  `json:"word"`
	Path []Coord `json:"path"`
}

// FindBestWord - searches the grid for the highest-scoring word from the
// candidate list that is reachable by a valid adjacency path, skipping words
// in exclude. Returns nil when nothing playable is found within the search
// bound.
func (that *Board) FindBestWord(candidates []string, exclude map[string]bool) *Hint {
	var best *Hint
	bestScore := -1

	scanned := 0
	for _, word := range candidates {
		if scanned >= maxHintWords {
			break
		}
		scanned++

		word = strings.ToUpper(word)
		if len(word) < MinWordLen || len(word) > MaxWordLen || exclude[strings.ToLower(word)] {
			continue
		}

		path := that.findPath(word)
		if path == nil {
			continue
		}

		if score := that.ScorePath(path); score > bestScore {
			bestScore = score
			best = &Hint{Word: strings.ToLower(word), Path: path}
		}
	}

	return best
}

// findPath - depth-first search for any path spelling the word.
func (that *Board) findPath(word string) []Coord {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			start := Coord{Row: r, Col: c}
			if that.TileAt(start).Letter != word[:1] {
				continue
			}

			if path := that.extendPath(word, []Coord{start}); path != nil {
				return path
			}
		}
	}

	return nil
}

func (that *Board) extendPath(word string, path []Coord) []Coord {
	if len(path) == len(word) {
		return append([]Coord(nil), path...)
	}

	last := path[len(path)-1]
	next := word[len(path) : len(path)+1]

	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}

			c := Coord{Row: last.Row + dr, Col: last.Col + dc}
			if !c.InBounds() || that.TileAt(c).Letter != next {
				continue
			}

			if containsCoord(path, c) {
				continue
			}

			if found := that.extendPath(word, append(path, c)); found != nil {
				return found
			}
		}
	}

	return nil
}

func containsCoord(path []Coord, c Coord) bool {
	for _, p := range path {
		if p == c {
			return true
		}
	}

	return false
}
