package dto

import (
	"time"

	"github.com/jhoicas/bodega-sync/internal/domain/entity"
)

// AdjustmentRequest ajuste manual de mesa (cantidad absoluta, no delta).
type AdjustmentRequest struct {
	ProductID   int64  `json:"product_id"`
	WarehouseID int64  `json:"warehouse_id"`
	NewQuantity *int64 `json:"new_quantity"`
	Reference   string `json:"reference"`
	Notes       string `json:"notes"`
}

// StockRecordResponse fila de existencias con la señal de punto de reorden.
type StockRecordResponse struct {
	ProductID        int64     `json:"product_id"`
	WarehouseID      int64     `json:"warehouse_id"`
	QuantityOnHand   int64     `json:"quantity_on_hand"`
	QuantityReserved int64     `json:"quantity_reserved"`
	ReorderLevel     *int64    `json:"reorder_level,omitempty"`
	LowStock         bool      `json:"low_stock"`
	ModifiedAt       time.Time `json:"modified_at"`
}

// FromStockRecord mapea la entidad a su DTO.
func FromStockRecord(s *entity.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ProductID:        s.ProductID,
		WarehouseID:      s.WarehouseID,
		QuantityOnHand:   s.QuantityOnHand,
		QuantityReserved: s.QuantityReserved,
		ReorderLevel:     s.ReorderLevel,
		LowStock:         s.BelowReorderLevel(),
		ModifiedAt:       s.ModifiedAt,
	}
}

// LedgerEntryResponse asiento del libro para reportería.
type LedgerEntryResponse struct {
	TransactionID   int64     `json:"transaction_id"`
	ProductID       int64     `json:"product_id"`
	WarehouseID     int64     `json:"warehouse_id"`
	Type            string    `json:"type"`
	QuantityChange  int64     `json:"quantity_change"`
	ReferenceNumber string    `json:"reference_number,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// FromLedgerEntry mapea el asiento a su DTO.
func FromLedgerEntry(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		TransactionID:   e.TransactionID,
		ProductID:       e.ProductID,
		WarehouseID:     e.WarehouseID,
		Type:            e.Type,
		QuantityChange:  e.QuantityChange,
		ReferenceNumber: e.ReferenceNumber,
		Notes:           e.Notes,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
	}
}
