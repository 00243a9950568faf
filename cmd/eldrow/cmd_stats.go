package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/eldrow/internal/daily"
	"github.com/robalobadob/eldrow/internal/db"
)

func newStatsCmd(a *app) *cobra.Command {
	var player string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a player's statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if player == "" {
				player = a.cfg.Player
			}
			conn, err := db.OpenAndMigrate(cmd.Context(), a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer closeDB(conn)

			st, err := daily.NewStore(conn).Stats(cmd.Context(), player)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Player      %s\n", player)
			fmt.Fprintf(out, "Played      %d\n", st.Played)
			fmt.Fprintf(out, "Win %%       %d\n", st.WinRate())
			fmt.Fprintf(out, "Streak      %d\n", st.Streak)
			fmt.Fprintf(out, "Max streak  %d\n", st.MaxStreak)
			return nil
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "player name (default from config)")
	return cmd
}

func newLeaderboardCmd(a *app) *cobra.Command {
	var date string
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the daily leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = daily.DateKey(time.Now())
			} else if _, err := time.Parse("2006-01-02", date); err != nil {
				return errors.New("leaderboard: --date must be YYYY-MM-DD")
			}
			conn, err := db.OpenAndMigrate(cmd.Context(), a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer closeDB(conn)

			rows, err := daily.NewStore(conn).Leaderboard(cmd.Context(), date, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "No wins on %s yet.\n", date)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "#\tPLAYER\tGUESSES\tTIME\n")
			for i, r := range rows {
				elapsed := (time.Duration(r.ElapsedMs) * time.Millisecond).Round(time.Second)
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i+1, r.Player, r.Guesses, elapsed)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today, UTC)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	return cmd
}
