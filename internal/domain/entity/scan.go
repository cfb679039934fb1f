package entity

import "time"

// Operaciones de escaneo.
const (
	OperationEntrada = "entrada" // recepción de mercancía
	OperationSalida  = "salida"  // despacho de mercancía
)

// Resultados posibles de conciliar un escaneo.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
)

// Clasificación de por qué un escaneo no se aplicó limpiamente.
// Terminales (el reintento no ayuda): invalid_data, invalid_operation,
// invalid_quantity, product_not_found, batch_too_large, empty_batch.
// Con estado (reintentar tras corregir): negative_inventory.
// Transitorio (reintento seguro gracias a la idempotencia): server_error.
const (
	ConflictInvalidData       = "invalid_data"
	ConflictInvalidOperation  = "invalid_operation"
	ConflictInvalidQuantity   = "invalid_quantity"
	ConflictProductNotFound   = "product_not_found"
	ConflictNegativeInventory = "negative_inventory"
	ConflictBatchTooLarge     = "batch_too_large"
	ConflictEmptyBatch        = "empty_batch"
	ConflictServerError       = "server_error"
)

// ScanIntent es un escaneo capturado en el dispositivo, pendiente de aplicarse en
// el servidor. ClientScanID lo genera el cliente y es la llave de idempotencia:
// el escaneo puede transmitirse muchas veces (reintentos) pero se aplica a lo sumo
// una vez.
type ScanIntent struct {
	ClientScanID    string
	Barcode         string
	WarehouseID     int64
	Operation       string
	Quantity        int64
	ClientTimestamp time.Time
	DeviceID        string
	SubmittedBy     string
}

// SyncResult es el resultado por escaneo de una conciliación. Solo los resultados
// con Outcome=applied se persisten (almacén de deduplicación); el resto es efímero
// y se devuelve de forma síncrona al llamador.
type SyncResult struct {
	ClientScanID      string
	Outcome           string
	ConflictKind      string
	ResultingQuantity *int64 // cantidad final si Outcome=applied
	AvailableQuantity *int64 // existencia actual si ConflictKind=negative_inventory
	ProductID         int64
	ProductName       string
	Message           string
}

// Applied indica si el escaneo mutó el libro.
func (r *SyncResult) Applied() bool { return r.Outcome == OutcomeApplied }
