package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jask/statebox/internal/journal"
)

func newHistoryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "history [session-id]",
		Short: "List journal sessions, or the actions of one session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := journal.Open(c.cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			repo := journal.NewRepo(db)

			t := table.New()
			if len(args) == 0 {
				sessions, err := repo.Sessions(cmd.Context())
				if err != nil {
					return err
				}
				t.Headers("SESSION", "STARTED", "ACTIONS")
				for _, s := range sessions {
					t.Row(s.ID, s.StartedAt.Local().Format(time.DateTime), strconv.Itoa(s.Actions))
				}
			} else {
				ok, err := repo.SessionExists(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %s", journal.ErrNoSession, args[0])
				}
				entries, err := repo.Entries(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				t.Headers("#", "ACTION", "PAYLOAD", "AT")
				for _, e := range entries {
					t.Row(strconv.Itoa(e.Seq), e.Kind(), e.Payload, e.DispatchedAt.Local().Format(time.TimeOnly))
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
