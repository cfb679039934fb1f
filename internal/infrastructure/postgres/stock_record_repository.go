package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL
// (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

const stockRecordColumns = "product_id, warehouse_id, quantity_on_hand, quantity_reserved, reorder_level, modified_at"

// Get obtiene el registro de existencias de un producto en una bodega, o (nil, nil) si no existe.
func (r *StockRecordRepo) Get(productID, warehouseID int64) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2`
	return r.scanOne(query, productID, warehouseID)
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE). Es la
// sección crítica por llave: todo mutador del libro pasa por aquí dentro de su tx.
func (r *StockRecordRepo) GetForUpdate(productID, warehouseID int64) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	return r.scanOne(query, productID, warehouseID)
}

func (r *StockRecordRepo) scanOne(query string, productID, warehouseID int64) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := r.q.QueryRow(context.Background(), query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.QuantityOnHand, &s.QuantityReserved, &s.ReorderLevel, &s.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza el registro de existencias (por producto y bodega).
func (r *StockRecordRepo) Upsert(record *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (product_id, warehouse_id, quantity_on_hand, quantity_reserved, reorder_level, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity_on_hand = EXCLUDED.quantity_on_hand,
		              quantity_reserved = EXCLUDED.quantity_reserved,
		              modified_at = EXCLUDED.modified_at`
	_, err := r.q.Exec(context.Background(), query,
		record.ProductID, record.WarehouseID, record.QuantityOnHand,
		record.QuantityReserved, record.ReorderLevel, record.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock record: %w", err)
	}
	return nil
}

// ListByWarehouse lista las existencias de una bodega (paginado).
func (r *StockRecordRepo) ListByWarehouse(warehouseID int64, limit, offset int) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE warehouse_id = $1
		ORDER BY product_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock by warehouse: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.QuantityOnHand,
			&s.QuantityReserved, &s.ReorderLevel, &s.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
