package repository

import "github.com/jhoicas/bodega-sync/internal/domain/entity"

// StockRecordRepository define el puerto de persistencia para StockRecord.
// Get y GetForUpdate devuelven (nil, nil) si no existe el registro.
type StockRecordRepository interface {
	Get(productID, warehouseID int64) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la transacción
	// vigente. Es la sección crítica por llave (producto, bodega).
	GetForUpdate(productID, warehouseID int64) (*entity.StockRecord, error)
	Upsert(record *entity.StockRecord) error
	ListByWarehouse(warehouseID int64, limit, offset int) ([]*entity.StockRecord, error)
}
