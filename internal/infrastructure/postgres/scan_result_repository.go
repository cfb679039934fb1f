package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodega-sync/internal/domain"
	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
)

var _ repository.ScanResultRepository = (*ScanResultRepo)(nil)

// ScanResultRepo almacén de deduplicación sobre PostgreSQL. El índice único
// sobre client_scan_id es el constraint de idempotencia: se verifica dentro de
// la misma transacción que muta el libro, no como paso aparte.
type ScanResultRepo struct {
	q Querier
}

// NewScanResultRepository construye el adaptador. Pasar pool o tx (Querier).
func NewScanResultRepository(q Querier) *ScanResultRepo {
	return &ScanResultRepo{q: q}
}

// GetByClientScanID devuelve el resultado guardado de un escaneo aplicado, o (nil, nil).
func (r *ScanResultRepo) GetByClientScanID(clientScanID string) (*entity.SyncResult, error) {
	query := `
		SELECT client_scan_id, outcome, resulting_quantity, product_id, product_name, message
		FROM scan_results WHERE client_scan_id = $1`
	var s entity.SyncResult
	err := r.q.QueryRow(context.Background(), query, clientScanID).Scan(
		&s.ClientScanID, &s.Outcome, &s.ResultingQuantity, &s.ProductID, &s.ProductName, &s.Message,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get scan result: %w", err)
	}
	return &s, nil
}

// Create inserta el resultado aplicado. Una violación del índice único sobre
// client_scan_id (otro worker ganó la carrera) se reporta como domain.ErrDuplicate.
func (r *ScanResultRepo) Create(deviceID string, result *entity.SyncResult) error {
	query := `
		INSERT INTO scan_results (client_scan_id, device_id, outcome, resulting_quantity, product_id, product_name, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`
	_, err := r.q.Exec(context.Background(), query,
		result.ClientScanID, deviceID, result.Outcome, result.ResultingQuantity,
		result.ProductID, result.ProductName, result.Message,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create scan result: %w", err)
	}
	return nil
}
