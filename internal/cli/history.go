package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect request history",
	}
	cmd.AddCommand(newHistoryListCommand(root), newHistoryClearCommand(root))
	return cmd
}

func newHistoryListCommand(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent requests, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()

			entries, err := e.store.ListHistory(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tMETHOD\tURL\tSTATUS\tELAPSED")
			for _, entry := range entries {
				status := fmt.Sprintf("%d", entry.ResponseStatus)
				if entry.ResponseStatus == 0 {
					status = entry.ResponseStatusText
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dms\n",
					entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
					entry.RequestMethod, entry.RequestURL, status, entry.ResponseTime)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

func newHistoryClearCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.build()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := context.Background()

			count, err := e.store.CountHistory(ctx)
			if err != nil {
				return err
			}
			if err := e.store.ClearHistory(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries\n", count)
			return nil
		},
	}
}
