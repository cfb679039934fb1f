package sync

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodega-sync/internal/domain"
	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
)

// EntryMeta metadatos comunes de un asiento del libro.
type EntryMeta struct {
	Reference string
	Notes     string
	CreatedBy string
	Now       time.Time
}

// StockLedger es el registro autoritativo de existencias por (producto, bodega)
// más su libro de movimientos append-only. Opera sobre repositorios atados a la
// transacción vigente: el caller (motor de conciliación o ajuste manual) abre la
// transacción vía TxRunner y el bloqueo de fila en GetForUpdate serializa todas
// las operaciones sobre la misma llave.
type StockLedger struct {
	stockRepo  repository.StockRecordRepository
	ledgerRepo repository.LedgerEntryRepository
}

// NewStockLedger construye el libro sobre repositorios de una misma transacción.
func NewStockLedger(stockRepo repository.StockRecordRepository, ledgerRepo repository.LedgerEntryRepository) *StockLedger {
	return &StockLedger{stockRepo: stockRepo, ledgerRepo: ledgerRepo}
}

// Lookup devuelve el registro de existencias, o (nil, nil) si no existe.
func (l *StockLedger) Lookup(productID, warehouseID int64) (*entity.StockRecord, error) {
	return l.stockRepo.Get(productID, warehouseID)
}

// ApplyReceipt suma delta unidades; crea el StockRecord si no existe (creación
// perezosa en la primera entrada). Asienta un RECEIPT con cambio +delta.
func (l *StockLedger) ApplyReceipt(productID, warehouseID, delta int64, meta EntryMeta) (*entity.StockRecord, error) {
	if delta <= 0 {
		return nil, domain.ErrInvalidInput
	}
	record, err := l.stockRepo.GetForUpdate(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &entity.StockRecord{ProductID: productID, WarehouseID: warehouseID}
	}
	record.QuantityOnHand += delta
	record.ModifiedAt = meta.Now
	if err := l.stockRepo.Upsert(record); err != nil {
		return nil, err
	}
	if err := l.append(record, entity.EntryTypeRECEIPT, delta, meta); err != nil {
		return nil, err
	}
	return record, nil
}

// ApplyShipment resta delta unidades. Requiere un StockRecord existente con
// QuantityOnHand >= delta; si no alcanza, falla con InsufficientStockError sin
// mutar estado, reportando la existencia actual. Asienta un SHIPMENT con -delta.
func (l *StockLedger) ApplyShipment(productID, warehouseID, delta int64, meta EntryMeta) (*entity.StockRecord, error) {
	if delta <= 0 {
		return nil, domain.ErrInvalidInput
	}
	record, err := l.stockRepo.GetForUpdate(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	if record.QuantityOnHand < delta {
		return nil, &domain.InsufficientStockError{Available: record.QuantityOnHand, Requested: delta}
	}
	record.QuantityOnHand -= delta
	record.ModifiedAt = meta.Now
	if err := l.stockRepo.Upsert(record); err != nil {
		return nil, err
	}
	if err := l.append(record, entity.EntryTypeSHIPMENT, -delta, meta); err != nil {
		return nil, err
	}
	return record, nil
}

// ApplyAdjustment fija QuantityOnHand en un valor absoluto (ajuste manual, no
// pasa por el validador de escaneos). El asiento ADJUSTMENT registra el delta
// efectivo newQuantity - anterior, preservando el invariante de suma del libro.
func (l *StockLedger) ApplyAdjustment(productID, warehouseID, newQuantity int64, meta EntryMeta) (*entity.StockRecord, error) {
	if newQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	record, err := l.stockRepo.GetForUpdate(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &entity.StockRecord{ProductID: productID, WarehouseID: warehouseID}
	}
	change := newQuantity - record.QuantityOnHand
	record.QuantityOnHand = newQuantity
	record.ModifiedAt = meta.Now
	if err := l.stockRepo.Upsert(record); err != nil {
		return nil, err
	}
	if err := l.append(record, entity.EntryTypeADJUSTMENT, change, meta); err != nil {
		return nil, err
	}
	return record, nil
}

func (l *StockLedger) append(record *entity.StockRecord, entryType string, change int64, meta EntryMeta) error {
	entry := &entity.LedgerEntry{
		ID:              uuid.New().String(),
		ProductID:       record.ProductID,
		WarehouseID:     record.WarehouseID,
		Type:            entryType,
		QuantityChange:  change,
		ReferenceNumber: meta.Reference,
		Notes:           meta.Notes,
		CreatedBy:       meta.CreatedBy,
		CreatedAt:       meta.Now,
	}
	if err := l.ledgerRepo.Append(entry); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}
