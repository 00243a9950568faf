// internal/game/evaluate.go
//
// Guess evaluation: the pure classification core.
//
// Evaluate compares a guess against a target word position by position and
// returns one Mark per position. It knows nothing about colours or terminals;
// see the render package for the presentation mapping.

package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGuessLength reports a guess whose length differs from the target.
	ErrInvalidGuessLength = errors.New("invalid guess length")
	// ErrEmptyTarget reports an evaluation against an empty target word.
	ErrEmptyTarget = errors.New("empty target word")
)

// LengthError is the concrete error returned for a length mismatch.
// It matches ErrInvalidGuessLength with errors.Is.
type LengthError struct {
	Want int // target length in runes
	Got  int // guess length in runes
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: want %d letters, got %d", ErrInvalidGuessLength, e.Want, e.Got)
}

// Is lets errors.Is(err, ErrInvalidGuessLength) match.
func (e *LengthError) Is(target error) bool { return target == ErrInvalidGuessLength }

// Evaluate scores guess against target with RuleStandard.
//
// Duplicate letters: a non-exact guess letter is "present" only while the
// target still has an occurrence of it that was neither matched exactly nor
// already claimed by an earlier guess position. For target "crane" and guess
// "eerie" this yields absent, absent, present, absent, exact.
//
// Comparison is exact on runes; callers normalise case. Neither input is
// modified and the returned slice is freshly allocated.
func Evaluate(target, guess string) ([]Mark, error) {
	return EvaluateWith(RuleStandard, target, guess)
}

// EvaluateWith scores guess against target using the given duplicate-letter
// rule. With RuleNaive, every non-exact letter that occurs anywhere in the
// target is "present", so "eerie" against "crane" yields present, present,
// present, absent, exact.
//
// A length mismatch returns a *LengthError and no marks.
func EvaluateWith(rule Rule, target, guess string) ([]Mark, error) {
	t := []rune(target)
	g := []rune(guess)
	if len(t) == 0 {
		return nil, ErrEmptyTarget
	}
	if len(g) != len(t) {
		return nil, &LengthError{Want: len(t), Got: len(g)}
	}
	switch rule {
	case RuleNaive:
		return scoreNaive(t, g), nil
	default:
		return scoreStandard(t, g), nil
	}
}

// scoreStandard implements the two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches.
//   - Count remaining (non-exact) target letters.
//
// Pass 2:
//   - For each non-exact guess letter: if there is remaining count for that
//     letter, mark Present and decrement the count; otherwise mark Absent.
func scoreStandard(target, guess []rune) []Mark {
	n := len(guess)
	res := make([]Mark, n)

	// Letter frequency for the non-exact positions.
	counts := make(map[rune]int, n)

	for i := 0; i < n; i++ {
		if guess[i] == target[i] {
			res[i] = MarkExact
		} else {
			counts[target[i]]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == MarkExact {
			continue
		}
		if counts[guess[i]] > 0 {
			res[i] = MarkPresent
			counts[guess[i]]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// scoreNaive classifies each position independently using a membership test.
func scoreNaive(target, guess []rune) []Mark {
	in := make(map[rune]struct{}, len(target))
	for _, r := range target {
		in[r] = struct{}{}
	}
	res := make([]Mark, len(guess))
	for i, r := range guess {
		switch _, ok := in[r]; {
		case r == target[i]:
			res[i] = MarkExact
		case ok:
			res[i] = MarkPresent
		default:
			res[i] = MarkAbsent
		}
	}
	return res
}

// AllExact reports whether every mark is MarkExact.
func AllExact(m []Mark) bool {
	for _, x := range m {
		if x != MarkExact {
			return false
		}
	}
	return len(m) > 0
}

// Keyboard folds a history of turns into the most informative mark seen for
// each letter (exact beats present beats absent).
func Keyboard(turns []Turn) map[rune]Mark {
	out := make(map[rune]Mark)
	for _, t := range turns {
		for i, r := range []rune(t.Guess) {
			if i >= len(t.Marks) {
				break
			}
			if t.Marks[i].rank() > out[r].rank() {
				out[r] = t.Marks[i]
			}
		}
	}
	return out
}
