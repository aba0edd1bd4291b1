package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"tally/internal/common"
	"tally/internal/importer"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import records from a CSV or OFX file",
		Long: `Import transactions into the ledger. CSV files are mapped by header
names (or an explicit --map); OFX/QFX statements are detected by file
extension. Rows matching an existing record on date, amount, category,
remark and kind are skipped as duplicates; unparsable rows are reported
but never abort the run.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringToString("map", nil, "field mapping, e.g. --map date=Posted,amount=Value")
	cmd.Flags().String("delimiter", ",", "CSV field delimiter")
	cmd.Flags().Float64("tolerance", importer.DefaultAmountTolerance, "amount tolerance for duplicate detection")
	_ = viper.BindPFlag("import.amount_tolerance", cmd.Flags().Lookup("tolerance"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	path := expandPath(args[0])

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat import file: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	im := importer.New(store, viper.GetFloat64("import.amount_tolerance"))

	bar := progressbar.DefaultBytes(info.Size(), "importing")
	reader := progressbar.NewReader(file, bar)

	var report *importer.Report
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		report, err = im.ImportOFX(cmd.Context(), &reader)
	default:
		fieldMap, _ := cmd.Flags().GetStringToString("map")
		delimiter, _ := cmd.Flags().GetString("delimiter")

		sep, sepErr := parseDelimiter(delimiter)
		if sepErr != nil {
			return sepErr
		}
		opts := importer.CSVOptions{FieldMap: fieldMap, Delimiter: sep}
		report, err = im.ImportCSV(cmd.Context(), &reader, opts)
	}
	if err != nil {
		return err
	}

	cmd.Printf("\nImported: %d\nSkipped:  %d\nErrors:   %d\n",
		report.Imported, report.Skipped, len(report.Errors))
	for _, rowErr := range report.Errors {
		cmd.Printf("  row %d: %s\n", rowErr.Row, rowErr.Reason)
	}
	return nil
}

// parseDelimiter decodes the --delimiter flag as a single rune. Empty
// means "use the importer default". Multi-byte characters are fine; more
// than one rune is not.
func parseDelimiter(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, common.NewUserError(
			fmt.Sprintf("delimiter must be a single character, got %q", s),
			common.ErrValidation)
	}
	return r, nil
}
