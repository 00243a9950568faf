// internal/game/types.go
//
// Core type definitions for the eldrow game engine.
// Defines:
//   - Mark: per-position verdict for a guess (exact/present/absent).
//   - Rule: duplicate-letter policy used by the evaluator.
//   - State: coarse session state (playing/won/lost).
//   - Turn/Game: state for a single in-progress or finished session.

package game

import (
	"fmt"
	"strings"

	"github.com/robalobadob/eldrow/internal/words"
)

// Mark represents the evaluation result for a single position in a guess.
// Possible values:
//   - "exact":   letter equals the target letter at the same position.
//   - "present": letter occurs elsewhere in the target.
//   - "absent":  letter does not occur in the target (or all of its
//     occurrences are already accounted for, under RuleStandard).
type Mark string

const (
	MarkExact   Mark = "exact"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// String implements fmt.Stringer.
func (m Mark) String() string { return string(m) }

// MarshalText implements encoding.TextMarshaler.
func (m Mark) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("game: unknown mark %q", string(m))
	}
	return []byte(m), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mark) UnmarshalText(b []byte) error {
	v := Mark(strings.ToLower(string(b)))
	if !v.valid() {
		return fmt.Errorf("game: unknown mark %q", string(b))
	}
	*m = v
	return nil
}

func (m Mark) valid() bool {
	return m == MarkExact || m == MarkPresent || m == MarkAbsent
}

// rank orders marks by how much they reveal; used by Keyboard.
func (m Mark) rank() int {
	switch m {
	case MarkExact:
		return 3
	case MarkPresent:
		return 2
	case MarkAbsent:
		return 1
	}
	return 0
}

// Rule selects how repeated letters in a guess are classified.
type Rule int

const (
	// RuleStandard reserves "present" with one-count-per-letter consumption
	// against the target letters that were not matched exactly.
	RuleStandard Rule = iota
	// RuleNaive marks any non-exact letter "present" when it occurs anywhere
	// in the target, so repeated guess letters may all come back "present".
	RuleNaive
)

// String implements fmt.Stringer.
func (r Rule) String() string {
	switch r {
	case RuleStandard:
		return "standard"
	case RuleNaive:
		return "naive"
	default:
		return "unknown"
	}
}

// ParseRule converts a config/flag value into a Rule.
// An empty string selects RuleStandard.
func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return RuleStandard, nil
	case "naive":
		return RuleNaive, nil
	default:
		return RuleStandard, fmt.Errorf("game: unknown rule %q (want standard or naive)", s)
	}
}

// State is the coarse lifecycle state of a Game.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Turn is one submitted guess and its marks.
type Turn struct {
	Guess string `json:"guess"`
	Marks []Mark `json:"marks"`
}

// Game holds the state of a single eldrow session.
type Game struct {
	ID       string `json:"id"`       // Unique game identifier (uuid).
	Answer   string `json:"answer"`   // The target word (always lowercase).
	Rows     int    `json:"rows"`     // Maximum number of guesses allowed (typically 6).
	Cols     int    `json:"cols"`     // Number of letters per word (typically 5).
	Rule     Rule   `json:"rule"`     // Duplicate-letter policy.
	Turns    []Turn `json:"turns"`    // Guesses made so far with their marks.
	Finished bool   `json:"finished"` // True once the game is over (won or lost).
	Won      bool   `json:"won"`      // True if the game was finished with a win.

	words *words.List // optional allowed-guess list
}
