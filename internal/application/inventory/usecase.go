package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-sync/internal/application/sync"
	"github.com/jhoicas/bodega-sync/internal/domain"
	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
)

// UseCase expone las operaciones de inventario que rodean al motor de escaneos:
// el ajuste manual de mesa (fija una cantidad absoluta, sin pasar por el
// validador de escaneos) y las consultas de solo lectura para reportería.
type UseCase struct {
	txRunner    sync.TxRunner
	stockRepo   repository.StockRecordRepository
	ledgerRepo  repository.LedgerEntryRepository
	productRepo repository.ProductRepository
}

// NewUseCase construye el caso de uso. Los repositorios van atados al pool
// (lecturas); las escrituras abren su propia transacción vía txRunner.
func NewUseCase(
	txRunner sync.TxRunner,
	stockRepo repository.StockRecordRepository,
	ledgerRepo repository.LedgerEntryRepository,
	productRepo repository.ProductRepository,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		stockRepo:   stockRepo,
		ledgerRepo:  ledgerRepo,
		productRepo: productRepo,
	}
}

// AdjustmentInput entrada del ajuste manual.
type AdjustmentInput struct {
	ProductID   int64
	WarehouseID int64
	NewQuantity int64
	Reference   string
	Notes       string
	UserID      string
}

// AdjustStock fija la existencia de (producto, bodega) en NewQuantity dentro de
// una transacción, con la misma disciplina de serialización por fila que usa el
// motor de escaneos. El asiento ADJUSTMENT registra el delta efectivo.
func (uc *UseCase) AdjustStock(ctx context.Context, input AdjustmentInput) (*entity.StockRecord, error) {
	if input.ProductID <= 0 || input.WarehouseID <= 0 || input.NewQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	var record *entity.StockRecord
	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.LedgerEntryRepository,
		_ repository.ScanResultRepository,
		_ repository.ProductRepository,
	) error {
		ledger := sync.NewStockLedger(stockRepo, ledgerRepo)
		record, err = ledger.ApplyAdjustment(input.ProductID, input.WarehouseID, input.NewQuantity, sync.EntryMeta{
			Reference: input.Reference,
			Notes:     input.Notes,
			CreatedBy: input.UserID,
			Now:       time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListWarehouseStock lista las existencias de una bodega (paginado).
func (uc *UseCase) ListWarehouseStock(warehouseID int64, limit, offset int) ([]*entity.StockRecord, error) {
	if warehouseID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.stockRepo.ListByWarehouse(warehouseID, limit, offset)
}

// ListLedger lista asientos del libro de movimientos (reportería, solo lectura).
func (uc *UseCase) ListLedger(filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	return uc.ledgerRepo.List(filter)
}
