package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobalert-exporter/internal/poll"
	"jobalert-exporter/internal/scheduler"
)

const stopTimeout = 30 * time.Second

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var skipFirst bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run search on the configured cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			if strings.TrimSpace(a.cfg.Schedule.Cron) == "" {
				return errors.New("schedule.cron is empty; set it in " + a.cfgPath + " to use watch")
			}

			tracker := &poll.Tracker{Log: a.log.Named("watch")}
			task := func(ctx context.Context) error {
				_, err := tracker.Run(ctx, func(ctx context.Context) (poll.Summary, error) {
					return a.withExporter(ctx, func(e *poll.Exporter) (poll.Summary, error) {
						return e.RunSearch(ctx)
					})
				})
				return err
			}

			s, err := scheduler.New(a.cfg.Schedule.Cron, "search", task, a.log)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if !skipFirst {
				_ = s.RunNow(ctx)
			}
			s.Start(ctx)

			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			if err := s.Stop(stopCtx); err != nil {
				a.log.Warn("scheduler did not stop cleanly", zap.Error(err))
			}

			st := tracker.Status()
			a.log.Info("watch stopped",
				zap.String("last_run", st.LastRunAt),
				zap.String("last_ok", st.LastOkAt),
				zap.String("last_error", st.LastError),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipFirst, "skip-first", false, "wait for the first scheduled tick instead of running at once")
	return cmd
}
