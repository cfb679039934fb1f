package dto

import (
	"time"

	"github.com/jhoicas/bodega-sync/internal/domain/entity"
)

// ProductInfo datos mínimos del producto en respuestas de escaneo.
type ProductInfo struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Barcode string `json:"barcode"`
}

// ScanRequest escaneo interactivo (POST /api/scan). Quantity omitida vale 1
// SOLO en este endpoint; una cantidad explícita <= 0 se rechaza igual.
// ClientScanID es opcional aquí: si falta, el servidor genera uno.
type ScanRequest struct {
	Barcode      string `json:"barcode"`
	WarehouseID  int64  `json:"warehouse_id"`
	Operation    string `json:"operation"`
	Quantity     *int64 `json:"quantity"`
	ClientScanID string `json:"client_scan_id"`
}

// ScanResponse respuesta del escaneo interactivo aplicado.
type ScanResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Product   ProductInfo `json:"product"`
	Quantity  int64       `json:"quantity"`
	Operation string      `json:"operation"`
}

// ConflictResponse cuerpo del 409: contexto completo del conflicto para que la
// UI muestre "disponible vs solicitado" y pre-llene la corrección.
type ConflictResponse struct {
	InternalErrorCode string       `json:"internal_error_code"`
	Message           string       `json:"message"`
	Product           *ProductInfo `json:"product,omitempty"`
	AvailableQuantity int64        `json:"available_quantity"`
	RequestedQuantity int64        `json:"requested_quantity"`
}

// ScanItem un escaneo del outbox del dispositivo (lote).
type ScanItem struct {
	ClientScanID    string    `json:"client_scan_id"`
	Barcode         string    `json:"barcode"`
	WarehouseID     int64     `json:"warehouse_id"`
	Operation       string    `json:"operation"`
	Quantity        int64     `json:"quantity"`
	ClientTimestamp time.Time `json:"client_timestamp"`
}

// SyncRequest lote de escaneos encolados (POST /api/scan/sync).
type SyncRequest struct {
	DeviceID string     `json:"device_id"`
	Scans    []ScanItem `json:"scans"`
}

// SyncResultDTO resultado por ítem del lote.
type SyncResultDTO struct {
	ClientScanID      string `json:"client_scan_id"`
	Outcome           string `json:"outcome"`
	ConflictKind      string `json:"conflict_kind,omitempty"`
	ResultingQuantity *int64 `json:"resulting_quantity,omitempty"`
	AvailableQuantity *int64 `json:"available_quantity,omitempty"`
	ProductID         int64  `json:"product_id,omitempty"`
	ProductName       string `json:"product_name,omitempty"`
	Message           string `json:"message,omitempty"`
}

// SyncSummaryDTO conteos del lote.
type SyncSummaryDTO struct {
	Total  int `json:"total"`
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// SyncResponse respuesta del lote completo.
type SyncResponse struct {
	Success    bool            `json:"success"`
	Results    []SyncResultDTO `json:"results"`
	ServerTime time.Time       `json:"server_time"`
	Summary    SyncSummaryDTO  `json:"summary"`
}

// FromSyncResult mapea un resultado del motor al DTO de salida.
func FromSyncResult(r entity.SyncResult) SyncResultDTO {
	return SyncResultDTO{
		ClientScanID:      r.ClientScanID,
		Outcome:           r.Outcome,
		ConflictKind:      r.ConflictKind,
		ResultingQuantity: r.ResultingQuantity,
		AvailableQuantity: r.AvailableQuantity,
		ProductID:         r.ProductID,
		ProductName:       r.ProductName,
		Message:           r.Message,
	}
}

// ToScanIntent convierte un ítem del lote en el intent del motor.
func (i ScanItem) ToScanIntent(deviceID, submittedBy string) entity.ScanIntent {
	return entity.ScanIntent{
		ClientScanID:    i.ClientScanID,
		Barcode:         i.Barcode,
		WarehouseID:     i.WarehouseID,
		Operation:       i.Operation,
		Quantity:        i.Quantity,
		ClientTimestamp: i.ClientTimestamp,
		DeviceID:        deviceID,
		SubmittedBy:     submittedBy,
	}
}
