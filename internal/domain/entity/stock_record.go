package entity

import "time"

// StockRecord representa la existencia actual de un producto en una bodega.
// Clave: (ProductID, WarehouseID). QuantityOnHand nunca es negativa; el registro
// se crea de forma perezosa en la primera entrada y este subsistema nunca lo borra.
type StockRecord struct {
	ProductID        int64
	WarehouseID      int64
	QuantityOnHand   int64
	QuantityReserved int64
	ReorderLevel     *int64
	ModifiedAt       time.Time
}

// BelowReorderLevel indica si la existencia está en o por debajo del punto de reorden.
func (s *StockRecord) BelowReorderLevel() bool {
	return s.ReorderLevel != nil && s.QuantityOnHand <= *s.ReorderLevel
}
