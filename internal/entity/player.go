package entity

// StartingGems - ability currency every player begins the game with.
const StartingGems = 3

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Gems  int    `json:"gems"`
	Done  bool   `json:"done"`

	// Per-round bookkeeping, reset when a round ends. RoundScore stays
	// hidden from broadcasts until the round-end reveal.
	RoundScore int      `json:"-"`
	RoundWords []string `json:"-"`
}

func NewPlayer(id, name string) *Player {
	return &Player{
		ID:   id,
		Name: name,
		Gems: StartingGems,
	}
}

func (that *Player) HasPlayed(word string) bool {
	for _, played := range that.RoundWords {
		if played == word {
			return true
		}
	}

	return false
}

func (that *Player) RecordWord(word string, score int) {
	that.RoundWords = append(that.RoundWords, word)
	that.RoundScore += score
	that.Score += score
}

func (that *Player) ResetRound() {
	that.Done = false
	that.RoundScore = 0
	that.RoundWords = nil
}
