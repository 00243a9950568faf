// Package console runs a game in line mode: one guess per input line,
// one decorated row per answer.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/eldrow/internal/game"
	"github.com/robalobadob/eldrow/internal/render"
)

// Result summarises a finished (or abandoned) session.
type Result struct {
	State   game.State
	Guesses int
	Elapsed time.Duration
	Quit    bool // input ended or the player typed :quit before finishing
}

// Play drives g from in until the game ends, input runs out or ctx is done.
// Invalid guesses are reported and do not consume a row.
// Cancellation is noticed while waiting for input; the line reader itself
// stays blocked on in until in returns.
func Play(ctx context.Context, in io.Reader, out io.Writer, g *game.Game, r render.Renderer) (Result, error) {
	start := time.Now()
	lines, readErr, stop := readLines(in)
	defer stop()

	fmt.Fprintf(out, "Guess the %d-letter word in %d tries. Type :quit to give up.\n", g.Cols, g.Rows)
	for !g.Finished {
		if err := ctx.Err(); err != nil {
			return result(g, start, true), err
		}
		fmt.Fprintf(out, "%d/%d> ", len(g.Turns)+1, g.Rows)
		var text string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return result(g, start, true), ctx.Err()
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return result(g, start, true), <-readErr
			}
			text = l
		}
		line := strings.TrimSpace(text)
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			fmt.Fprintf(out, "The word was %s.\n", strings.ToUpper(g.Answer))
			return result(g, start, true), nil
		}

		marks, _, err := g.ApplyGuess(line)
		if err != nil {
			fmt.Fprintf(out, "  %s\n", describe(err))
			log.Debug().Err(err).Str("guess", line).Msg("rejected guess")
			continue
		}
		fmt.Fprintln(out, r.Row(g.Turns[len(g.Turns)-1].Guess, marks))
		if !g.Finished {
			fmt.Fprintln(out, r.Keyboard(game.Keyboard(g.Turns)))
		}
	}

	switch g.State() {
	case game.StateWon:
		fmt.Fprintf(out, "Solved in %d/%d.\n", len(g.Turns), g.Rows)
	default:
		fmt.Fprintf(out, "Out of guesses. The word was %s.\n", strings.ToUpper(g.Answer))
	}
	return result(g, start, false), nil
}

// readLines scans in on its own goroutine. The error channel carries the
// scanner error once the lines channel is closed. stop releases a reader
// that is waiting to hand over a line.
func readLines(in io.Reader) (<-chan string, <-chan error, func()) {
	lines := make(chan string)
	errc := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc, func() { close(done) }
}

func result(g *game.Game, start time.Time, quit bool) Result {
	return Result{State: g.State(), Guesses: len(g.Turns), Elapsed: time.Since(start), Quit: quit && !g.Finished}
}

// describe turns a validation error into a player-facing hint.
func describe(err error) string {
	var le *game.LengthError
	switch {
	case errors.As(err, &le):
		return fmt.Sprintf("need %d letters, got %d", le.Want, le.Got)
	case errors.Is(err, game.ErrNotAlpha):
		return "letters only"
	case errors.Is(err, game.ErrNotInWordList):
		return "not in word list"
	default:
		return err.Error()
	}
}
