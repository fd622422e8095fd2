package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions are the flags every command shares.
type rootOptions struct {
	cfgFile string
	dataDir string
	debug   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "exporter",
		Short: "Export LinkedIn job alert e-mails to CSV",
		Long: `exporter reads LinkedIn job alert digests from an IMAP mailbox and writes
one CSV line per job (date, title, company, location, additional, link).

Without a subcommand it runs "search".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "",
		"config file (default is <data-dir>/config.yml, created on first run)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "",
		"directory for config and database (default $"+dataDirEnv+" or .)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newSearchCmd(opts),
		newListCmd(opts),
		newLabelsCmd(opts),
		newFilterCmd(opts),
		newAlertsCmd(opts),
		newWatchCmd(opts),
		newPasswordCmd(opts),
	)
	return root
}

// Execute runs the CLI until it finishes or is interrupted.
func Execute() error {
	// .env is optional; the environment wins over it.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}
