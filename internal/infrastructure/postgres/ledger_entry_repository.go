package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

// LedgerEntryRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only; transaction_id es un bigserial
// que da la secuencia monotónica.
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

// Append inserta el asiento y asigna entry.TransactionID desde la secuencia.
func (r *LedgerEntryRepo) Append(entry *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, product_id, warehouse_id, type, quantity_change, reference_number, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING transaction_id`
	createdBy := (*string)(nil)
	if entry.CreatedBy != "" {
		createdBy = &entry.CreatedBy
	}
	err := r.q.QueryRow(context.Background(), query,
		entry.ID, entry.ProductID, entry.WarehouseID, entry.Type, entry.QuantityChange,
		entry.ReferenceNumber, entry.Notes, createdBy, entry.CreatedAt,
	).Scan(&entry.TransactionID)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// List lista asientos según el filtro (reportería, solo lectura).
func (r *LedgerEntryRepo) List(filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT id, transaction_id, product_id, warehouse_id, type, quantity_change, reference_number, notes, created_by, created_at
		FROM ledger_entries WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID > 0 {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.WarehouseID > 0 {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, filter.WarehouseID)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY transaction_id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var createdBy *string
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.ProductID, &e.WarehouseID, &e.Type,
			&e.QuantityChange, &e.ReferenceNumber, &e.Notes, &createdBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if createdBy != nil {
			e.CreatedBy = *createdBy
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// SumByRecord suma QuantityChange de los asientos de una llave (producto, bodega).
func (r *LedgerEntryRepo) SumByRecord(productID, warehouseID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity_change), 0)
		FROM ledger_entries WHERE product_id = $1 AND warehouse_id = $2`
	var sum int64
	if err := r.q.QueryRow(context.Background(), query, productID, warehouseID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum ledger entries: %w", err)
	}
	return sum, nil
}
