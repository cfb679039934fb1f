package repository

import (
	"time"

	"github.com/jhoicas/bodega-sync/internal/domain/entity"
)

// LedgerEntryRepository define el puerto de persistencia del libro de movimientos.
// El libro es append-only: no hay Update ni Delete.
type LedgerEntryRepository interface {
	// Append inserta el asiento y asigna entry.TransactionID (secuencia monotónica).
	Append(entry *entity.LedgerEntry) error
	List(filter LedgerFilter) ([]*entity.LedgerEntry, error)
	// SumByRecord devuelve la suma de QuantityChange de los asientos de una llave
	// (invariante de conciliación contra QuantityOnHand).
	SumByRecord(productID, warehouseID int64) (int64, error)
}

// LedgerFilter filtros de consulta del libro (reportería, solo lectura).
type LedgerFilter struct {
	ProductID   int64 // 0 = sin filtro
	WarehouseID int64 // 0 = sin filtro
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
