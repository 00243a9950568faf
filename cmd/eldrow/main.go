// cmd/eldrow/main.go
//
// Entry point for the eldrow CLI.
//
// Commands:
//   play         line-mode game (default when no command is given)
//   tui          full-screen game
//   check        evaluate one guess against a target
//   serve        JSON HTTP API
//   stats        local player statistics
//   leaderboard  daily leaderboard

package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/eldrow/internal/config"
	"github.com/robalobadob/eldrow/internal/daily"
	"github.com/robalobadob/eldrow/internal/db"
	"github.com/robalobadob/eldrow/internal/logging"
	"github.com/robalobadob/eldrow/internal/words"
)

// app carries state shared by all commands after PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "eldrow",
		Short: "eldrow - guess the hidden word",
		Long: `eldrow is a word-guessing game.

Each guess is scored per letter:
  exact    right letter, right position   (green)
  present  letter elsewhere in the word   (yellow)
  absent   letter not in the word

Run without arguments to play in the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			a.cfg = cfg
			logging.Setup(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	play := newPlayCmd(a)
	root.RunE = play.RunE
	root.Flags().AddFlagSet(play.Flags())

	root.AddCommand(
		play,
		newTUICmd(a),
		newCheckCmd(a),
		newServeCmd(a),
		newStatsCmd(a),
		newLeaderboardCmd(a),
	)
	return root
}

// wordList loads the configured word list.
func (a *app) wordList() (*words.List, error) {
	return words.Load(a.cfg.WordList())
}

// openResults opens the results database. Failures are logged and reported
// as a nil store so games can still be played without persistence.
func (a *app) openResults(ctx context.Context) (*daily.Store, func()) {
	conn, err := db.OpenAndMigrate(ctx, a.cfg.DBPath)
	if err != nil {
		log.Warn().Err(err).Str("db", a.cfg.DBPath).Msg("results will not be saved")
		return nil, func() {}
	}
	return daily.NewStore(conn), func() { closeDB(conn) }
}

func closeDB(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		log.Warn().Err(err).Msg("close db")
	}
}
