package main

import (
	"github.com/spf13/cobra"

	"github.com/transactai/transactai/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the category label universe",
	}
	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return err
			}
			for _, cat := range categories {
				line := cat.Name
				if cat.Description != "" {
					line += "  " + cli.SubtleStyle.Render(cat.Description)
				}
				cmd.Println(line)
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new category label",
		Long: `Add registers a new label for rules and manual assignment. The label
gets no classifier weight or centroid until the next retraining cycle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			cat, err := store.CreateCategory(ctx, args[0], description)
			if err != nil {
				return err
			}
			cmd.Printf("Registered %s\n", cli.TitleStyle.Render(cat.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "optional category description")
	return cmd
}
