package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/eldrow/internal/game"
	"github.com/robalobadob/eldrow/internal/render"
)

type checkOutput struct {
	Target      string              `json:"target"`
	Guess       string              `json:"guess"`
	Rule        string              `json:"rule"`
	Marks       []game.Mark         `json:"marks"`
	Decorations []render.Decoration `json:"decorations"`
	Solved      bool                `json:"solved"`
}

func newCheckCmd(a *app) *cobra.Command {
	var ruleName string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check TARGET GUESS",
		Short: "Score one guess against a target word",
		Example: `  eldrow check crane eerie
  eldrow check --rule naive --json crane eerie`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ruleName == "" {
				ruleName = a.cfg.Rule
			}
			rule, err := game.ParseRule(ruleName)
			if err != nil {
				return err
			}
			target := strings.ToLower(args[0])
			guess := strings.ToLower(args[1])
			marks, err := game.EvaluateWith(rule, target, guess)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(checkOutput{
					Target:      target,
					Guess:       guess,
					Rule:        rule.String(),
					Marks:       marks,
					Decorations: render.Decorations(marks),
					Solved:      game.AllExact(marks),
				})
			}

			fmt.Fprintln(out, render.Plain{}.Row(guess, marks))
			for i, r := range []rune(guess) {
				d := render.Decorate(marks[i])
				if d == render.DecorNone {
					d = "-"
				}
				fmt.Fprintf(out, "%d  %c  %-8s %s\n", i+1, r, marks[i], d)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ruleName, "rule", "", "duplicate-letter rule: standard or naive")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
