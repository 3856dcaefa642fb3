package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jask/statebox/internal/journal"
	"github.com/jask/statebox/internal/projection"
	"github.com/jask/statebox/internal/scenario"
	"github.com/jask/statebox/internal/state"
	"github.com/jask/statebox/internal/store"
)

func newReplayCmd(c *cli) *cobra.Command {
	var (
		session string
		expr    string
	)
	cmd := &cobra.Command{
		Use:   "replay [scenario.yaml]",
		Short: "Dispatch a scenario file or journal session and print the order line after each step",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (session != "") {
				return errors.New("give either a scenario file or --session")
			}
			if expr == "" {
				expr = c.cfg.UI.OrderExpr
			}
			order, err := projection.CompileOrder(expr)
			if err != nil {
				return err
			}

			var actions []store.Action
			if session != "" {
				db, err := journal.Open(c.cfg.Journal.Path)
				if err != nil {
					return err
				}
				defer db.Close()
				actions, err = journal.Load(cmd.Context(), journal.NewRepo(db), session, state.Registry())
				if err != nil {
					return err
				}
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				script, err := scenario.Parse(f, state.Registry())
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				actions = script.Actions
			}

			st := state.NewStore(store.WithLogger[state.State](c.log))
			lines, err := scenario.Run[state.State](st, actions, order.Eval)
			for _, line := range lines {
				fmt.Fprintf(cmd.OutOrStdout(), "%q\n", line)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "replay a recorded journal session instead of a file")
	cmd.Flags().StringVar(&expr, "expr", "", "order expression (default from config)")
	return cmd
}
