package memory

import (
	"context"
	"sync"

	"walletwhisper/internal/core"
	ports "walletwhisper/internal/sheets"
)

// Exporter keeps exported rows in memory. It stands in for the spreadsheet
// when none is configured.
type Exporter struct {
	mu   sync.Mutex
	rows [][]any
	ids  map[int64]struct{}
}

var _ ports.TransactionExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{ids: map[int64]struct{}{}}
}

func (e *Exporter) ExportTransactions(ctx context.Context, list []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, tx := range list {
		if _, ok := e.ids[tx.ID]; ok {
			continue
		}
		e.ids[tx.ID] = struct{}{}
		e.rows = append(e.rows, ports.Row(tx))
	}
	return nil
}

func (e *Exporter) ReplaceTransactions(ctx context.Context, list []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = make([][]any, 0, len(list))
	e.ids = make(map[int64]struct{}, len(list))
	for _, tx := range list {
		e.ids[tx.ID] = struct{}{}
		e.rows = append(e.rows, ports.Row(tx))
	}
	return nil
}

// Rows returns a copy of the exported rows in sheet order.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]any, len(e.rows))
	copy(out, e.rows)
	return out
}
