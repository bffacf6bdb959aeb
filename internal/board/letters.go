package board

import "math/rand"

// LetterValues - scrabble-style point value for every letter.
var LetterValues = map[string]int{
	"A": 1, "B": 4, "C": 5, "D": 3, "E": 1, "F": 5, "G": 3, "H": 4, "I": 1, "J": 7,
	"K": 6, "L": 3, "M": 4, "N": 2, "O": 1, "P": 4, "Q": 8, "R": 2, "S": 2, "T": 2,
	"U": 4, "V": 5, "W": 5, "X": 7, "Y": 4, "Z": 8,
}

// letterWeights - english language letter frequency, used for drawing fresh tiles.
var letterWeights = []struct {
	letter string
	weight int
}{
	{"E", 127}, {"T", 91}, {"A", 82}, {"O", 75}, {"I", 70}, {"N", 67}, {"S", 63}, {"H", 61},
	{"R", 60}, {"D", 43}, {"L", 40}, {"U", 28}, {"C", 28}, {"M", 24}, {"W", 24}, {"F", 22},
	{"G", 20}, {"Y", 20}, {"P", 19}, {"B", 15}, {"V", 10}, {"K", 8}, {"X", 2}, {"J", 2},
	{"Q", 1}, {"Z", 1},
}

var totalLetterWeight = func() int {
	total := 0
	for _, lw := range letterWeights {
		total += lw.weight
	}
	return total
}()

// DrawLetter - picks a random uppercase letter weighted by english frequency.
func DrawLetter() string {
	n := rand.Intn(totalLetterWeight) //nolint: gosec // game randomness, not crypto
	for _, lw := range letterWeights {
		n -= lw.weight
		if n < 0 {
			return lw.letter
		}
	}

	return letterWeights[0].letter
}
