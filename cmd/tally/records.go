package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"tally/internal/common"
	"tally/internal/model"
	"tally/internal/storage"

	"github.com/spf13/cobra"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage ledger records",
	}

	cmd.AddCommand(recordsListCmd())
	cmd.AddCommand(recordsAddCmd())
	cmd.AddCommand(recordsRemoveCmd())

	return cmd
}

func recordsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, optionally filtered by date range or category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			category, _ := cmd.Flags().GetString("category")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			orderBy, _ := cmd.Flags().GetString("order-by")

			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.QueryRecords(cmd.Context(), storage.QueryOptions{
				Start:      start,
				End:        end,
				CategoryID: category,
				Limit:      limit,
				Offset:     offset,
				OrderBy:    orderBy,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			_, _ = w.Write([]byte("ID\tKIND\tAMOUNT\tDATE\tCATEGORY\tREMARK\n"))
			for _, rec := range records {
				category := ""
				if rec.CategoryID != nil {
					category = *rec.CategoryID
				}
				remark := ""
				if rec.Remark != nil {
					remark = *rec.Remark
				}
				line := strings.Join([]string{
					rec.ID,
					string(rec.Kind),
					strconv.FormatFloat(rec.Amount, 'f', 2, 64),
					rec.Date,
					category,
					remark,
				}, "\t")
				_, _ = w.Write([]byte(line + "\n"))
			}
			return nil
		},
	}

	cmd.Flags().StringP("start", "s", "", "inclusive start date (ISO-8601)")
	cmd.Flags().StringP("end", "e", "", "inclusive end date (ISO-8601)")
	cmd.Flags().StringP("category", "c", "", "filter by category id")
	cmd.Flags().Int("limit", 0, "maximum rows to return (0 = default page size)")
	cmd.Flags().Int("offset", 0, "rows to skip")
	cmd.Flags().String("order-by", "", `sort clause, e.g. "date DESC" or "amount ASC"`)

	return cmd
}

func recordsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <id> <amount> <date>",
		Short: "Add a record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			category, _ := cmd.Flags().GetString("category")
			remark, _ := cmd.Flags().GetString("remark")

			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid amount %q", args[1]), err)
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rec := &model.Record{
				ID:     args[0],
				Kind:   model.Kind(strings.ToUpper(kind)),
				Amount: amount,
				Date:   args[2],
			}
			if category != "" {
				rec.CategoryID = &category
			}
			if remark != "" {
				rec.Remark = &remark
			}

			if err := store.SaveRecord(cmd.Context(), rec); err != nil {
				return err
			}
			cmd.Printf("Saved record %s\n", rec.ID)
			return nil
		},
	}

	cmd.Flags().String("kind", "EXPENDITURE", "record kind (INCOME or EXPENDITURE)")
	cmd.Flags().StringP("category", "c", "", "category id")
	cmd.Flags().StringP("remark", "r", "", "free-text remark")

	return cmd
}

func recordsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRecord(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("Deleted record %s\n", args[0])
			return nil
		},
	}
}
