package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-sync/internal/domain"
	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
	"github.com/jhoicas/bodega-sync/internal/infrastructure/memory"
)

// Un Run que falla debe revertir TODO: existencias, asientos y deduplicación,
// igual que el rollback del adaptador PostgreSQL.
func TestStore_RollbackAnteError(t *testing.T) {
	store := memory.NewStore()
	boom := errors.New("boom")

	err := store.Run(context.Background(), func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.LedgerEntryRepository,
		scanResultRepo repository.ScanResultRepository,
		_ repository.ProductRepository,
	) error {
		require.NoError(t, stockRepo.Upsert(&entity.StockRecord{ProductID: 1, WarehouseID: 1, QuantityOnHand: 10, ModifiedAt: time.Now()}))
		require.NoError(t, ledgerRepo.Append(&entity.LedgerEntry{ID: "e1", ProductID: 1, WarehouseID: 1, Type: entity.EntryTypeRECEIPT, QuantityChange: 10}))
		qty := int64(10)
		require.NoError(t, scanResultRepo.Create("dev", &entity.SyncResult{ClientScanID: "s1", Outcome: entity.OutcomeApplied, ResultingQuantity: &qty}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	rec, err := store.StockRecords().Get(1, 1)
	require.NoError(t, err)
	assert.Nil(t, rec, "el upsert debe revertirse")

	sum, err := store.Ledger().SumByRecord(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum, "el asiento debe revertirse")

	res, err := store.ScanResults().GetByClientScanID("s1")
	require.NoError(t, err)
	assert.Nil(t, res, "la deduplicación debe revertirse")
}

// La secuencia del libro es monotónica incluso tras rollbacks intermedios.
func TestStore_SecuenciaMonotonica(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	appendEntry := func(id string) (int64, error) {
		var txID int64
		err := store.Run(ctx, func(
			_ repository.StockRecordRepository,
			ledgerRepo repository.LedgerEntryRepository,
			_ repository.ScanResultRepository,
			_ repository.ProductRepository,
		) error {
			e := &entity.LedgerEntry{ID: id, ProductID: 1, WarehouseID: 1, Type: entity.EntryTypeRECEIPT, QuantityChange: 1}
			if err := ledgerRepo.Append(e); err != nil {
				return err
			}
			txID = e.TransactionID
			return nil
		})
		return txID, err
	}

	first, err := appendEntry("e1")
	require.NoError(t, err)
	second, err := appendEntry("e2")
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

// El constraint único de client_scan_id se reporta como domain.ErrDuplicate.
func TestStore_ScanResultDuplicado(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	create := func() error {
		return store.Run(ctx, func(
			_ repository.StockRecordRepository,
			_ repository.LedgerEntryRepository,
			scanResultRepo repository.ScanResultRepository,
			_ repository.ProductRepository,
		) error {
			return scanResultRepo.Create("dev", &entity.SyncResult{ClientScanID: "dup", Outcome: entity.OutcomeApplied})
		})
	}
	require.NoError(t, create())
	assert.ErrorIs(t, create(), domain.ErrDuplicate)
}

func TestStore_ListByWarehousePaginado(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	err := store.Run(ctx, func(
		stockRepo repository.StockRecordRepository,
		_ repository.LedgerEntryRepository,
		_ repository.ScanResultRepository,
		_ repository.ProductRepository,
	) error {
		for i := int64(1); i <= 5; i++ {
			if err := stockRepo.Upsert(&entity.StockRecord{ProductID: i, WarehouseID: 1, QuantityOnHand: i}); err != nil {
				return err
			}
		}
		return stockRepo.Upsert(&entity.StockRecord{ProductID: 9, WarehouseID: 2, QuantityOnHand: 9})
	})
	require.NoError(t, err)

	page, err := store.StockRecords().ListByWarehouse(1, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].ProductID)
	assert.Equal(t, int64(4), page[1].ProductID)

	empty, err := store.StockRecords().ListByWarehouse(1, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
