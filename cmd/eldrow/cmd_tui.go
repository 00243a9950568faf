package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/robalobadob/eldrow/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var f sessionFlags
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Play full-screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closer, err := a.newSession(ctx, f)
			if err != nil {
				return err
			}
			defer closer()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("tui: new screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("tui: init screen: %w", err)
			}
			start := time.Now()
			state := tui.New(s.game).Run(screen)
			screen.Fini()

			s.record(ctx, time.Since(start))
			fmt.Fprintf(cmd.OutOrStdout(), "%s after %d guesses.\n", state, len(s.game.Turns))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
