package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/transactai/transactai/internal/training"
)

func retrainDaemonCmd() *cobra.Command {
	var hour, minute int
	cmd := &cobra.Command{
		Use:   "retrain-daemon",
		Short: "Run the nightly retraining scheduler",
		Long: `Retrain-daemon blocks and fires a retraining job once a day at the
configured local time. A run is skipped when no new feedback has arrived
since the previous successful one.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := buildApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			scheduler := training.NewScheduler(a.Retrainer, a.Store, hour, minute)
			if err := scheduler.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&hour, "hour", 2, "hour of day to retrain (local time)")
	cmd.Flags().IntVar(&minute, "minute", 0, "minute of the hour to retrain")
	return cmd
}
