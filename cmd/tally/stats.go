package main

import (
	"sort"
	"strconv"
	"text/tabwriter"

	"tally/internal/model"
	"tally/internal/service"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show ledger statistics",
	}

	cmd.AddCommand(statsTotalsCmd())
	cmd.AddCommand(statsCategoriesCmd())
	cmd.AddCommand(statsTimeseriesCmd())

	return cmd
}

func statsTotalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Total amounts by record kind",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats := service.NewStatisticsService(store)
			totals, err := stats.TotalByType(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Income:      %.2f\n", totals[model.KindIncome])
			cmd.Printf("Expenditure: %.2f\n", totals[model.KindExpenditure])
			return nil
		},
	}
}

func statsCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Total amounts by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats := service.NewStatisticsService(store)
			totals, err := stats.ByCategory(cmd.Context())
			if err != nil {
				return err
			}

			printBuckets(cmd, totals, "(uncategorized)")
			return nil
		},
	}
}

func statsTimeseriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeseries",
		Short: "Total amounts bucketed by day, month or year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, _ := cmd.Flags().GetString("period")

			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats := service.NewStatisticsService(store)
			totals, err := stats.Timeseries(cmd.Context(), service.Period(period))
			if err != nil {
				return err
			}

			printBuckets(cmd, totals, "")
			return nil
		},
	}

	cmd.Flags().StringP("period", "p", "day", "bucket size: day, month or year")
	return cmd
}

// printBuckets writes key/amount pairs in key order, substituting
// emptyLabel for the empty-string bucket.
func printBuckets(cmd *cobra.Command, totals map[string]float64, emptyLabel string) {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	for _, k := range keys {
		label := k
		if label == "" {
			label = emptyLabel
		}
		_, _ = w.Write([]byte(label + "\t" + strconv.FormatFloat(totals[k], 'f', 2, 64) + "\n"))
	}
}
