// internal/game/engine.go
//
// Game engine for a single eldrow session.
// Responsibilities:
//   - Create new games (default 6 rows, word length taken from the answer).
//   - Validate and apply guesses (length, letters only, allowed list).
//   - Score guesses with the evaluator under the session's Rule.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - Answers/allowed lists come from the words package and are optional;
//     a game built WithAnswer and no list accepts any word of the right length.
//   - Invalid guesses never consume a row.

package game

import (
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/robalobadob/eldrow/internal/words"
)

// DefaultRows is the guess budget used when WithRows is not given.
const DefaultRows = 6

var (
	ErrGameFinished  = errors.New("game finished")
	ErrNotAlpha      = errors.New("guess must contain letters only")
	ErrNotInWordList = errors.New("not in word list")
	ErrNoAnswer      = errors.New("no answer available")
	ErrInvalidAnswer = errors.New("answer must contain letters only")
)

// Option configures a Game in New.
type Option func(*Game)

// WithAnswer fixes the target word instead of drawing one from the list.
func WithAnswer(answer string) Option {
	return func(g *Game) { g.Answer = strings.ToLower(strings.TrimSpace(answer)) }
}

// WithRows sets the guess budget. Values below 1 are ignored.
func WithRows(rows int) Option {
	return func(g *Game) {
		if rows > 0 {
			g.Rows = rows
		}
	}
}

// WithRule sets the duplicate-letter rule.
func WithRule(r Rule) Option {
	return func(g *Game) { g.Rule = r }
}

// WithWords attaches a word list: answers are drawn from it and guesses must
// be allowed by it.
func WithWords(l *words.List) Option {
	return func(g *Game) { g.words = l }
}

// WithID overrides the generated identifier.
func WithID(id string) Option {
	return func(g *Game) { g.ID = id }
}

// New constructs a new game instance.
// If no answer is given, a random answer is chosen from the attached list.
// A fixed answer must be alphabetic; it is always accepted as a guess even
// when the attached list does not contain it.
func New(opts ...Option) (*Game, error) {
	g := &Game{
		ID:   uuid.NewString(),
		Rows: DefaultRows,
		Rule: RuleStandard,
	}
	for _, o := range opts {
		o(g)
	}
	if g.Answer == "" && g.words != nil {
		g.Answer = g.words.Random()
	}
	if g.Answer == "" {
		return nil, ErrNoAnswer
	}
	if !isAlpha(g.Answer) {
		return nil, ErrInvalidAnswer
	}
	g.Cols = len([]rune(g.Answer))
	g.Turns = []Turn{}
	return g, nil
}

// UseWords re-attaches a word list, e.g. after a game is loaded from a store.
func (g *Game) UseWords(l *words.List) { g.words = l }

// ApplyGuess validates and scores a guess, mutating the game state.
// Returns: the per-position marks, the new state, or an error.
//
// Validation rules:
//   - Game must not be finished.
//   - Guess must be exactly g.Cols letters (*LengthError otherwise).
//   - Guess must be alphabetic.
//   - Guess must be present in the allowed list, when one is attached,
//     unless it is the answer itself.
//
// State transitions:
//   - If all tiles are exact → Finished = true, Won = true.
//   - Else if the number of guesses reaches g.Rows → Finished = true (loss).
func (g *Game) ApplyGuess(guess string) ([]Mark, State, error) {
	if g.Finished {
		return nil, g.State(), ErrGameFinished
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if n := len([]rune(guess)); n != g.Cols {
		return nil, g.State(), &LengthError{Want: g.Cols, Got: n}
	}
	if !isAlpha(guess) {
		return nil, g.State(), ErrNotAlpha
	}
	if g.words != nil && guess != g.Answer && !g.words.IsAllowed(guess) {
		return nil, g.State(), ErrNotInWordList
	}

	marks, err := EvaluateWith(g.Rule, g.Answer, guess)
	if err != nil {
		return nil, g.State(), err
	}
	g.Turns = append(g.Turns, Turn{Guess: guess, Marks: marks})

	if AllExact(marks) {
		g.Finished, g.Won = true, true
	} else if len(g.Turns) >= g.Rows {
		g.Finished = true
	}
	return marks, g.State(), nil
}

// State reports the current lifecycle state.
func (g *Game) State() State {
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// Remaining is the number of guesses left.
func (g *Game) Remaining() int {
	if r := g.Rows - len(g.Turns); r > 0 {
		return r
	}
	return 0
}

// History returns a copy of the turns played so far.
func (g *Game) History() []Turn {
	out := make([]Turn, len(g.Turns))
	for i, t := range g.Turns {
		out[i] = Turn{Guess: t.Guess, Marks: append([]Mark(nil), t.Marks...)}
	}
	return out
}

// Clone returns a deep copy that shares only the attached word list.
func (g *Game) Clone() *Game {
	c := *g
	c.Turns = g.History()
	return &c
}

// isAlpha checks that a string consists only of letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
