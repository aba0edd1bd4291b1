package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"tally/internal/model"

	"github.com/aclindsa/ofxgo"
)

var severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)

// preprocessOFX fixes common formatting issues in OFX files before they
// reach the parser: leading whitespace and mixed-case SEVERITY values.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	return severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
}

// ImportOFX parses an OFX/QFX statement from r and saves its transactions
// as ledger records through the same strict-duplicate path as CSV import.
// Negative statement amounts become EXPENDITURE records, positive amounts
// INCOME; the payee name or memo becomes the remark.
func (im *Importer) ImportOFX(ctx context.Context, r io.Reader) (*Report, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var candidates []ofxgo.Transaction
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			candidates = append(candidates, stmt.BankTranList.Transactions...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			candidates = append(candidates, stmt.BankTranList.Transactions...)
		}
	}

	existing, err := im.snapshotExisting(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for i := range candidates {
		rowNum := i + 1
		rec, reason := convertOFXTransaction(&candidates[i])
		if reason != "" {
			report.Errors = append(report.Errors, RowError{
				Row:    rowNum,
				Reason: reason,
				Data:   map[string]string{"fitid": string(candidates[i].FiTID)},
			})
			continue
		}

		raw := map[string]string{"fitid": string(candidates[i].FiTID), "name": string(candidates[i].Name)}
		if im.saveCandidate(ctx, rec, &existing, report, rowNum, raw) {
			report.Imported++
		}
	}

	slog.Info("OFX import finished",
		"imported", report.Imported,
		"skipped", report.Skipped,
		"errors", len(report.Errors))
	return report, nil
}

// convertOFXTransaction maps one OFX transaction to a ledger record.
func convertOFXTransaction(txn *ofxgo.Transaction) (*model.Record, string) {
	amount, _ := txn.TrnAmt.Float64()

	kind := model.KindIncome
	if amount < 0 {
		kind = model.KindExpenditure
		amount = -amount
	}

	remark := strings.TrimSpace(string(txn.Name))
	if memo := strings.TrimSpace(string(txn.Memo)); memo != "" {
		remark = memo
	}

	rec := &model.Record{
		ID:     newRecordID(),
		Kind:   kind,
		Amount: amount,
		Date:   txn.DtPosted.Time.UTC().Format(normalizedDateLayout),
	}
	if remark != "" {
		rec.Remark = &remark
	}

	if err := model.ValidateRecord(rec); err != nil {
		return nil, "validation_failed"
	}
	return rec, ""
}
