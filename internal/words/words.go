// internal/words/words.go
//
// Provides word list management for the game engine.
//
// Responsibilities:
//   - Load answer and allowed guess lists from configured files or fall back
//     to the embedded defaults in the assets package.
//   - Maintain sets for quick lookups (answers only, answers∪guesses).
//   - Supply utility functions like Random, IsAllowed, IsAnswer, and Stats.
//
// Word Lists:
//   - "answers": canonical solutions (exactly Length letters).
//   - "allowed": valid guesses (always includes answers).
//
// Load behavior:
//   1. If AnswersFile and AllowedFile are both set,
//      load answers from the first and allowed guesses from the second.
//   2. If only AllowedFile is set,
//      load that file and use it for both answers and allowed guesses.
//   3. If only AnswersFile is set, use it for answers and allow only answers.
//   4. If neither is set, use the embedded lists.
//
// Constraints:
//   • Words must be Length alphabetic letters; other lines are dropped.
//   • Lists are normalized to lowercase.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/robalobadob/eldrow/assets"
)

// DefaultLength is the conventional word length.
const DefaultLength = 5

// ErrEmptyAnswers is returned when no usable answer survives filtering.
var ErrEmptyAnswers = errors.New("words: answers list is empty")

// Config selects where word lists come from.
type Config struct {
	AnswersFile string // optional path, one word per line
	AllowedFile string // optional path, one word per line
	Length      int    // word length; DefaultLength when zero
}

// List is an immutable pair of answer/allowed sets.
type List struct {
	length     int
	answers    []string            // canonical answers
	answersSet map[string]struct{} // answers only
	allowedSet map[string]struct{} // answers ∪ guesses
}

var (
	defaultOnce sync.Once
	defaultList *List
	defaultErr  error
)

// Default returns the embedded lists at DefaultLength, loaded once.
func Default() (*List, error) {
	defaultOnce.Do(func() {
		defaultList, defaultErr = Load(Config{})
	})
	return defaultList, defaultErr
}

// Load builds a List according to cfg.
func Load(cfg Config) (*List, error) {
	n := cfg.Length
	if n <= 0 {
		n = DefaultLength
	}

	var ansList, allowList []string
	var err error
	switch {
	case cfg.AnswersFile != "" && cfg.AllowedFile != "":
		if ansList, err = readWordFile(cfg.AnswersFile, n); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(cfg.AllowedFile, n); err != nil {
			return nil, err
		}

	case cfg.AllowedFile != "":
		if allowList, err = readWordFile(cfg.AllowedFile, n); err != nil {
			return nil, err
		}
		ansList = allowList

	case cfg.AnswersFile != "":
		if ansList, err = readWordFile(cfg.AnswersFile, n); err != nil {
			return nil, err
		}

	default:
		raw, err := assets.AnswersList()
		if err != nil {
			return nil, fmt.Errorf("words: embedded answers: %w", err)
		}
		ansList = filter(raw, n)
		raw, err = assets.AllowedList()
		if err != nil {
			return nil, fmt.Errorf("words: embedded allowed: %w", err)
		}
		allowList = filter(raw, n)
	}

	return NewList(n, ansList, allowList)
}

// NewList builds a List from in-memory slices. Words of the wrong length or
// with non-letters are dropped; answers are always allowed.
func NewList(length int, answers, allowed []string) (*List, error) {
	ans := filter(answers, length)
	if len(ans) == 0 {
		return nil, ErrEmptyAnswers
	}
	l := &List{
		length:     length,
		answers:    ans,
		answersSet: toSet(ans),
		allowedSet: toSet(ans),
	}
	for _, w := range filter(allowed, length) {
		l.allowedSet[w] = struct{}{}
	}
	return l, nil
}

// readWordFile loads one word per line from a file and keeps valid words.
func readWordFile(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", path, err)
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	return filter(out, n), nil
}

// filter lowercases, trims, and keeps only n-letter alphabetic words,
// preserving order and dropping duplicates.
func filter(in []string, n int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, w := range in {
		w = strings.TrimSpace(strings.ToLower(w))
		if len([]rune(w)) != n || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Length is the word length every entry has.
func (l *List) Length() int { return l.length }

// Random returns a cryptographically random answer.
func (l *List) Random() string {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.answers))))
	if err != nil {
		return l.answers[0]
	}
	return l.answers[nBig.Int64()]
}

// At returns the answer at index i modulo the list size; negative indexes
// count back from the end.
func (l *List) At(i int) string {
	n := len(l.answers)
	i %= n
	if i < 0 {
		i += n
	}
	return l.answers[i]
}

// Answers returns a copy of the answer list.
func (l *List) Answers() []string {
	return append([]string(nil), l.answers...)
}

// IsAllowed reports whether w is a valid guess (answers ∪ guesses).
func (l *List) IsAllowed(w string) bool {
	_, ok := l.allowedSet[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (l *List) IsAnswer(w string) bool {
	_, ok := l.answersSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (l *List) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowedSet)
}
