package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/bodega-sync/internal/application/sync"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
)

var _ sync.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. El bloqueo de
// fila de StockRecordRepo.GetForUpdate dentro de la transacción serializa las
// operaciones por llave (producto, bodega); llaves distintas avanzan en paralelo.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRecordRepository,
	ledgerRepo repository.LedgerEntryRepository,
	scanResultRepo repository.ScanResultRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stockRepo := NewStockRecordRepository(tx)
	ledgerRepo := NewLedgerEntryRepository(tx)
	scanResultRepo := NewScanResultRepository(tx)
	productRepo := NewProductRepository(tx)

	if err := fn(stockRepo, ledgerRepo, scanResultRepo, productRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
