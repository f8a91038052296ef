package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"imagesieve/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var rootFilter string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past commits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			var records []history.Record
			if rootFilter != "" {
				records, err = store.ForRoot(cmd.Context(), rootFilter)
			} else {
				records, err = store.List(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No commits recorded")
				return nil
			}

			headers := []string{"Finished", "Root", "Destination", "Method", "Committed", "Failed", "Deleted"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.FinishedAt.Local().Format(time.DateTime),
					rec.Root,
					rec.Dest,
					rec.Method,
					strconv.Itoa(rec.Committed),
					strconv.Itoa(rec.Failed),
					strconv.Itoa(rec.Deleted),
				})
			}
			fmt.Fprintln(out, renderRows(out, headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of commits to show")
	cmd.Flags().StringVar(&rootFilter, "root", "", "Only show commits for this directory")
	return cmd
}
