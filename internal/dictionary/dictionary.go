package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Dictionary - the injected lookup-by-word collaborator. Implementations may
// be remote; callers bound every lookup with a context deadline and treat a
// failed lookup as "not a word".
type Dictionary interface {
	Lookup(ctx context.Context, word string) (bool, error)
}

// WordLister - optional capability exposing the word list for hint searches.
type WordLister interface {
	Words() []string
}

// WordList - an in-memory dictionary loaded from a newline-separated file.
type WordList struct {
	words map[string]bool
	list  []string
}

// NewWordList builds an in-memory dictionary from the given words.
func NewWordList(words []string) *WordList {
	wl := &WordList{words: make(map[string]bool, len(words))}
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" || wl.words[word] {
			continue
		}
		wl.words[word] = true
		wl.list = append(wl.list, word)
	}

	return wl
}

func LoadFile(path string) (*WordList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer file.Close()

	wl := &WordList{words: make(map[string]bool)}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}

		if !wl.words[word] {
			wl.words[word] = true
			wl.list = append(wl.list, word)
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	return wl, nil
}

func (that *WordList) Lookup(ctx context.Context, word string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("lookup canceled: %w", err)
	}

	return that.words[strings.ToLower(word)], nil
}

func (that *WordList) Words() []string {
	return that.list
}

func (that *WordList) Len() int {
	return len(that.list)
}
