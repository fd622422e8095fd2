package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jobalert-exporter/internal/export"
	"jobalert-exporter/internal/poll"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Export job alerts matching the configured search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

func runSearch(ctx context.Context, opts *rootOptions, out io.Writer) error {
	a, err := loadApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	sum, err := a.withExporter(ctx, func(e *poll.Exporter) (poll.Summary, error) {
		return e.RunSearch(ctx)
	})
	if err != nil {
		return err
	}
	printSummary(out, sum)
	return nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every message in the search window (date, from, to, subject)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			sum, err := a.withExporter(ctx, func(e *poll.Exporter) (poll.Summary, error) {
				return e.RunList(ctx)
			})
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}

func newLabelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "Print the mailboxes (Gmail labels) on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			box, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = box.Close() }()

			names, err := box.ListMailboxes(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No labels found.")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newFilterCmd(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <csv>",
		Short: "Drop rows whose job link repeats an earlier row",
		Long:  "Writes <name>-filtered.csv next to the input, keeping the first row for every link.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := export.DedupeCSV(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d unique\n", res.Path, res.Before, res.After)
			return nil
		},
	}
}

func newAlertsCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Print alerts saved in the store, newest first, as CSV rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			db, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if db == nil {
				return errors.New("store is disabled; set store.enabled in " + a.cfgPath)
			}
			defer func() { _ = db.Close() }()

			alerts, err := db.ListAlerts(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(alerts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored alerts.")
				return nil
			}
			for _, al := range alerts {
				fmt.Fprintln(cmd.OutOrStdout(), al.CSV())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum rows to print (<= 0 prints up to 500)")
	return cmd
}

func printSummary(w io.Writer, sum poll.Summary) {
	if sum.CSVPath == "" {
		fmt.Fprintln(w, "No new messages.")
		return
	}
	fmt.Fprintf(w, "%d messages, %d records -> %s\n", sum.Messages, sum.Records, sum.CSVPath)
	if sum.LinksPath != "" {
		fmt.Fprintf(w, "links -> %s\n", sum.LinksPath)
	}
	if sum.FilteredPath != "" {
		fmt.Fprintf(w, "filtered -> %s\n", sum.FilteredPath)
	}
	if sum.Added > 0 {
		fmt.Fprintf(w, "%d new alerts stored\n", sum.Added)
	}
	if sum.Removed > 0 {
		fmt.Fprintf(w, "%d messages removed\n", sum.Removed)
	}
}
