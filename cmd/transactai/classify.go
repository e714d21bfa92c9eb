package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/transactai/transactai/internal/cli"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Categorize one or more notification strings",
		Long: `Classify runs the hybrid pipeline on each argument, or on every
line of stdin when no arguments are given, and prints the decision with
its full trace.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := buildApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			texts := args
			if len(texts) == 0 {
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					texts = append(texts, scanner.Text())
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}

			decisions, err := a.Engine.ClassifyBatch(ctx, texts)
			if err != nil {
				return err
			}
			for _, decision := range decisions {
				cmd.Print(cli.RenderDecision(decision))
			}
			return nil
		},
	}
	return cmd
}
