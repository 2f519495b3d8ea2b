package sheets

import (
	"context"
	"fmt"
	"strconv"

	"walletwhisper/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter mirrors ledger entries into an external sheet.
	TransactionExporter interface {
		// ExportTransactions appends rows for entries not exported yet.
		// Exporting the same transaction twice is a no-op.
		ExportTransactions(ctx context.Context, list []core.Transaction) error
		// ReplaceTransactions overwrites the sheet with a full ledger snapshot.
		ReplaceTransactions(ctx context.Context, list []core.Transaction) error
	}
)

// Header is the first row of every exported sheet.
var Header = []string{"Date", "Category", "Amount", "Note", "Recurring", "Repayment", "ID"}

// IDColumn is the zero-based index of the transaction id in a row.
const IDColumn = 6

// Row renders tx as sheet cells in Header order.
func Row(tx core.Transaction) []any {
	return []any{
		tx.Date.String(),
		string(tx.Category),
		tx.Amount.Major(),
		tx.Note,
		tx.Recurring,
		tx.IsRepayment,
		tx.ID,
	}
}

// RowID extracts the transaction id from a row read back from a sheet.
func RowID(row []any) (int64, bool) {
	if len(row) <= IDColumn {
		return 0, false
	}
	id, err := strconv.ParseInt(fmt.Sprint(row[IDColumn]), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
