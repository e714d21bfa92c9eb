package main

import (
	"github.com/spf13/cobra"

	"github.com/transactai/transactai/internal/cli"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <text> <correct-category>",
		Short: "Record a correction for a misclassified notification",
		Long: `Feedback appends a user correction to the feedback log. The live
model is untouched; corrections are folded in on the next retraining
cycle, where they override conflicting corpus labels.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := buildApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Engine.SubmitCorrection(ctx, args[0], args[1]); err != nil {
				return err
			}
			cmd.Println(cli.TitleStyle.Render("Correction recorded") +
				cli.SubtleStyle.Render("  (applied on next retrain)"))
			return nil
		},
	}
	return cmd
}
