package repository

import "github.com/jhoicas/bodega-sync/internal/domain/entity"

// ScanResultRepository es el almacén de deduplicación: guarda el SyncResult de
// cada escaneo aplicado, indexado por su ClientScanID (llave de idempotencia).
type ScanResultRepository interface {
	// GetByClientScanID devuelve (nil, nil) si el escaneo no se ha aplicado.
	GetByClientScanID(clientScanID string) (*entity.SyncResult, error)
	// Create inserta el resultado. Debe ejecutarse en la MISMA transacción que la
	// mutación del libro; una violación del constraint único sobre client_scan_id
	// se reporta como domain.ErrDuplicate (cierra la carrera check/commit).
	Create(deviceID string, result *entity.SyncResult) error
}
