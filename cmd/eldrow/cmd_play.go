package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/eldrow/internal/console"
	"github.com/robalobadob/eldrow/internal/daily"
	"github.com/robalobadob/eldrow/internal/game"
	"github.com/robalobadob/eldrow/internal/render"
)

var errAlreadyPlayed = errors.New("today's puzzle is already done; come back tomorrow")

// sessionFlags are shared by play and tui.
type sessionFlags struct {
	answer string
	rows   int
	rule   string
	daily  bool
	noSave bool
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.answer, "answer", "", "fix the target word (practice)")
	cmd.Flags().IntVar(&f.rows, "rows", 0, "number of guesses (default from config)")
	cmd.Flags().StringVar(&f.rule, "rule", "", "duplicate-letter rule: standard or naive")
	cmd.Flags().BoolVar(&f.daily, "daily", false, "play today's shared puzzle")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "do not record the result")
}

// session is one playable game plus what is needed to record it.
type session struct {
	game      *game.Game
	challenge *daily.Challenge
	results   *daily.Store
	player    string
}

// newSession builds a game from config and flags.
func (a *app) newSession(ctx context.Context, f sessionFlags) (*session, func(), error) {
	list, err := a.wordList()
	if err != nil {
		return nil, nil, err
	}
	ruleName := a.cfg.Rule
	if f.rule != "" {
		ruleName = f.rule
	}
	rule, err := game.ParseRule(ruleName)
	if err != nil {
		return nil, nil, err
	}
	rows := a.cfg.MaxGuesses
	if f.rows > 0 {
		rows = f.rows
	}

	s := &session{player: a.cfg.Player}
	closer := func() {}
	if !f.noSave {
		s.results, closer = a.openResults(ctx)
	}

	opts := []game.Option{game.WithWords(list), game.WithRows(rows), game.WithRule(rule)}
	switch {
	case f.daily:
		c := daily.Today(time.Now(), a.cfg.DailySalt, list)
		if s.results != nil {
			played, err := s.results.AlreadyPlayed(ctx, s.player, c.Date)
			if err != nil {
				closer()
				return nil, nil, err
			}
			if played {
				closer()
				return nil, nil, errAlreadyPlayed
			}
		}
		s.challenge = &c
		opts = append(opts, game.WithAnswer(c.Answer))
	case f.answer != "":
		opts = append(opts, game.WithAnswer(f.answer))
	}

	g, err := game.New(opts...)
	if err != nil {
		closer()
		return nil, nil, err
	}
	s.game = g
	log.Debug().Str("gameId", g.ID).Str("rule", rule.String()).Bool("daily", f.daily).Msg("session started")
	return s, closer, nil
}

// record stores a finished game; abandoned games are not recorded.
func (s *session) record(ctx context.Context, elapsed time.Duration) {
	if s.results == nil || !s.game.Finished {
		return
	}
	r := daily.Result{
		Player:    s.player,
		Mode:      daily.ModeFree,
		Date:      daily.DateKey(time.Now()),
		WordIndex: -1,
		Guesses:   len(s.game.Turns),
		Won:       s.game.Won,
		ElapsedMs: int(elapsed.Milliseconds()),
	}
	if s.challenge != nil {
		r.Mode = daily.ModeDaily
		r.Date = s.challenge.Date
		r.WordIndex = s.challenge.WordIndex
	}
	if err := s.results.InsertResult(ctx, r); err != nil {
		log.Warn().Err(err).Msg("save result")
	}
}

func newPlayCmd(a *app) *cobra.Command {
	var f sessionFlags
	var noColor bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in line mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			s, closer, err := a.newSession(ctx, f)
			if err != nil {
				return err
			}
			defer closer()

			color := !noColor && isatty.IsTerminal(os.Stdout.Fd())
			res, err := console.Play(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), s.game, render.New(color))
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			s.record(ctx, res.Elapsed)
			if s.results != nil && s.game.Finished {
				if st, err := s.results.Stats(ctx, s.player); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Played %d  Win %d%%  Streak %d  Best %d\n",
						st.Played, st.WinRate(), st.Streak, st.MaxStreak)
				}
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&noColor, "no-color", false, "plain output without colours")
	return cmd
}
