package main

import (
	"strings"
	"text/tabwriter"

	"tally/internal/model"
	"tally/internal/storage"

	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage ledger categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesRemoveCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.ListCategories(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			_, _ = w.Write([]byte("ID\tNAME\tKIND\tCUSTOM\n"))
			for _, cat := range categories {
				custom := ""
				if cat.IsCustom {
					custom = "yes"
				}
				_, _ = w.Write([]byte(cat.ID + "\t" + cat.Name + "\t" + string(cat.Kind) + "\t" + custom + "\n"))
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")

			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat := model.Category{
				ID:       args[0],
				Name:     args[1],
				Kind:     model.Kind(strings.ToUpper(kind)),
				IsCustom: true,
			}
			if err := store.AddCategory(cmd.Context(), cat); err != nil {
				return err
			}
			cmd.Printf("Added category %s\n", cat.ID)
			return nil
		},
	}

	cmd.Flags().String("kind", "EXPENDITURE", "category kind (INCOME or EXPENDITURE)")
	return cmd
}

func categoriesRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a category",
		Long: `Delete a category. Records referencing it are either left uncategorized
(the default) or moved to another category with --move-to.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			moveTo, _ := cmd.Flags().GetString("move-to")

			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			strategy := storage.DeleteSetNull
			if moveTo != "" {
				strategy = storage.DeleteMoveToOther
			}

			if err := store.DeleteCategory(cmd.Context(), args[0], strategy, moveTo); err != nil {
				return err
			}
			cmd.Printf("Deleted category %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().String("move-to", "", "reassign referencing records to this category id")
	return cmd
}
