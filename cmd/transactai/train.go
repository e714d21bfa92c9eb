package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/transactai/transactai/internal/cli"
	"github.com/transactai/transactai/internal/model"
	"github.com/transactai/transactai/internal/normalize"
	"github.com/transactai/transactai/internal/training"
)

func trainCmd() *cobra.Command {
	var importPath string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a new model from the corpus and feedback log",
		Long: `Train runs the full pipeline synchronously: merge the corpus with
the feedback log, split, fit, evaluate, and swap the new artifacts in
if they pass validation. With --import, a CSV of "text,label" rows is
normalized and appended to the corpus first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := buildApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if importPath != "" {
				n, err := importCorpus(cmd, importPath, a)
				if err != nil {
					return err
				}
				cmd.Printf("Imported %d examples from %s\n", n, importPath)
			}

			job, err := a.Engine.TriggerRetrain(ctx)
			if err != nil {
				return err
			}
			if err := a.Retrainer.Wait(ctx, job); err != nil {
				return err
			}
			if job.Status == training.JobFailed {
				return fmt.Errorf("training failed: %s", job.Err)
			}

			printReport(cmd, job.Report)
			return nil
		},
	}
	cmd.Flags().StringVar(&importPath, "import", "", "CSV file of text,label rows to append to the corpus")
	return cmd
}

func importCorpus(cmd *cobra.Command, path string, a *app) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse import file: %w", err)
	}

	examples := make([]model.TrainingExample, 0, len(records))
	skipped := 0
	for _, record := range records {
		clean := normalize.Clean(record[0])
		if clean == "" || record[1] == "" {
			skipped++
			continue
		}
		examples = append(examples, model.TrainingExample{
			CleanText: clean,
			Label:     record[1],
		})
	}
	if skipped > 0 {
		cmd.Println(cli.WarningStyle.Render(
			fmt.Sprintf("Skipped %d rows with empty text or label", skipped)))
	}

	if err := a.Store.SaveTrainingExamples(cmd.Context(), examples); err != nil {
		return 0, err
	}
	return len(examples), nil
}

func printReport(cmd *cobra.Command, report *training.Report) {
	if report == nil {
		return
	}

	cmd.Println(cli.TitleStyle.Render("Training complete"))
	cmd.Printf("  splits    train=%d val=%d holdout=%d\n",
		report.TrainSize, report.ValSize, report.HoldoutSize)
	cmd.Printf("  feedback  %d entries folded in\n", report.FeedbackUsed)
	if len(report.DroppedLabels) > 0 {
		cmd.Println(cli.WarningStyle.Render(
			fmt.Sprintf("  dropped   %v (too few examples)", report.DroppedLabels)))
	}
	cmd.Printf("  accuracy  %.3f\n", report.Metrics.Accuracy)
	cmd.Printf("  macro F1  %.3f\n", report.Metrics.MacroF1)
	cmd.Printf("  wtd F1    %.3f\n", report.Metrics.WeightedF1)

	labels := make([]string, 0, len(report.Metrics.PerLabel))
	for label := range report.Metrics.PerLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		m := report.Metrics.PerLabel[label]
		cmd.Println(cli.SubtleStyle.Render(fmt.Sprintf(
			"    %-18s P=%.2f R=%.2f F1=%.2f n=%d",
			label, m.Precision, m.Recall, m.F1, m.Support)))
	}
}
