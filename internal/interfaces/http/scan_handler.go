package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/bodega-sync/internal/application/dto"
	appsync "github.com/jhoicas/bodega-sync/internal/application/sync"
	"github.com/jhoicas/bodega-sync/internal/domain/entity"
)

// ScanHandler maneja el escaneo interactivo y la sincronización de lotes (protegido).
type ScanHandler struct {
	engine      *appsync.ReconciliationEngine
	coordinator *appsync.BatchSyncCoordinator
}

// NewScanHandler construye el handler.
func NewScanHandler(engine *appsync.ReconciliationEngine, coordinator *appsync.BatchSyncCoordinator) *ScanHandler {
	return &ScanHandler{engine: engine, coordinator: coordinator}
}

// Scan godoc
// @Summary      Aplicar un escaneo de código de barras
// @Tags         scan
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "barcode, warehouse_id, operation (entrada|salida), quantity opcional (default 1)"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ConflictResponse
// @Router       /api/scan [post]
func (h *ScanHandler) Scan(c *fiber.Ctx) error {
	username := GetUsername(c)
	if username == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{InternalErrorCode: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: entity.ConflictInvalidData, Message: "cuerpo inválido"})
	}

	// Solo en el endpoint interactivo: cantidad omitida vale 1. Una cantidad
	// explícita <= 0 sigue su curso y el validador la rechaza.
	quantity := int64(1)
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	clientScanID := in.ClientScanID
	if clientScanID == "" {
		clientScanID = uuid.New().String()
	}

	intent := entity.ScanIntent{
		ClientScanID:    clientScanID,
		Barcode:         in.Barcode,
		WarehouseID:     in.WarehouseID,
		Operation:       in.Operation,
		Quantity:        quantity,
		ClientTimestamp: time.Now().UTC(),
		DeviceID:        "web",
		SubmittedBy:     username,
	}
	if verr := appsync.ValidateScanIntent(intent); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: verr.Kind, Message: verr.Message})
	}

	result := h.engine.Reconcile(c.Context(), intent)
	switch {
	case result.Applied():
		resulting := int64(0)
		if result.ResultingQuantity != nil {
			resulting = *result.ResultingQuantity
		}
		return c.JSON(dto.ScanResponse{
			Success:   true,
			Message:   result.Message,
			Product:   dto.ProductInfo{ID: result.ProductID, Name: result.ProductName, Barcode: in.Barcode},
			Quantity:  resulting,
			Operation: intent.Operation,
		})
	case result.ConflictKind == entity.ConflictNegativeInventory:
		available := int64(0)
		if result.AvailableQuantity != nil {
			available = *result.AvailableQuantity
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ConflictResponse{
			InternalErrorCode: result.ConflictKind,
			Message:           result.Message,
			Product:           &dto.ProductInfo{ID: result.ProductID, Name: result.ProductName, Barcode: in.Barcode},
			AvailableQuantity: available,
			RequestedQuantity: intent.Quantity,
		})
	case result.ConflictKind == entity.ConflictProductNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{InternalErrorCode: result.ConflictKind, Message: result.Message})
	case result.ConflictKind == entity.ConflictServerError:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{InternalErrorCode: result.ConflictKind, Message: result.Message})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: result.ConflictKind, Message: result.Message})
	}
}

// Sync godoc
// @Summary      Sincronizar el lote de escaneos offline de un dispositivo
// @Description  Procesa los escaneos en orden de envío con semántica de fallo
//               parcial: cada ítem reporta su desenlace y el lote solo es
//               success si todos aplicaron. Reenviar el lote es seguro
//               (idempotencia por client_scan_id).
// @Tags         scan
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SyncRequest  true  "device_id y escaneos del outbox"
// @Success      200   {object}  dto.SyncResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/scan/sync [post]
func (h *ScanHandler) Sync(c *fiber.Ctx) error {
	username := GetUsername(c)
	if username == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{InternalErrorCode: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SyncRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: entity.ConflictInvalidData, Message: "cuerpo inválido"})
	}
	if in.DeviceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: entity.ConflictInvalidData, Message: "device_id es requerido"})
	}

	intents := make([]entity.ScanIntent, 0, len(in.Scans))
	for _, item := range in.Scans {
		intents = append(intents, item.ToScanIntent(in.DeviceID, username))
	}

	report, err := h.coordinator.SyncBatch(c.Context(), in.DeviceID, intents)
	if err != nil {
		var batchErr *appsync.BatchError
		if errors.As(err, &batchErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: batchErr.Kind, Message: batchErr.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{InternalErrorCode: entity.ConflictServerError, Message: err.Error()})
	}

	results := make([]dto.SyncResultDTO, 0, len(report.Results))
	for _, r := range report.Results {
		results = append(results, dto.FromSyncResult(r))
	}
	return c.JSON(dto.SyncResponse{
		Success:    report.Success(),
		Results:    results,
		ServerTime: report.ServerTime,
		Summary: dto.SyncSummaryDTO{
			Total:  report.Summary.Total,
			Synced: report.Summary.Synced,
			Failed: report.Summary.Failed,
		},
	})
}
