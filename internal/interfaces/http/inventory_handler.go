package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-sync/internal/application/dto"
	"github.com/jhoicas/bodega-sync/internal/application/inventory"
	"github.com/jhoicas/bodega-sync/internal/domain"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
)

// InventoryHandler maneja el ajuste manual y las consultas de inventario (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Adjust godoc
// @Summary      Ajuste manual de existencias (cantidad absoluta)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "product_id, warehouse_id, new_quantity, reference, notes"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{InternalErrorCode: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.NewQuantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: "VALIDATION", Message: "new_quantity es requerido"})
	}

	record, err := h.uc.AdjustStock(c.Context(), inventory.AdjustmentInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		NewQuantity: *in.NewQuantity,
		Reference:   in.Reference,
		Notes:       in.Notes,
		UserID:      GetUsername(c),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{InternalErrorCode: "NOT_FOUND", Message: "producto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{InternalErrorCode: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.FromStockRecord(record))
}

// ListStock godoc
// @Summary      Existencias de una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouseID  path   int  true   "ID de la bodega"
// @Param        limit        query  int  false  "Tamaño de página (default 20)"
// @Param        offset       query  int  false  "Desplazamiento"
// @Success      200  {array}   dto.StockRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{warehouseID} [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	warehouseID, err := c.ParamsInt("warehouseID")
	if err != nil || warehouseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: "VALIDATION", Message: "warehouseID debe ser positivo"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	records, err := h.uc.ListWarehouseStock(int64(warehouseID), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{InternalErrorCode: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.StockRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.FromStockRecord(r))
	}
	return c.JSON(fiber.Map{"total": len(out), "stock": out})
}

// ListLedger godoc
// @Summary      Historial del libro de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  int     false  "Filtrar por producto"
// @Param        warehouse_id  query  int     false  "Filtrar por bodega"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/ledger [get]
func (h *InventoryHandler) ListLedger(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	filter := repository.LedgerFilter{
		ProductID:   int64(c.QueryInt("product_id")),
		WarehouseID: int64(c.QueryInt("warehouse_id")),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: "VALIDATION", Message: "from inválido, usar RFC3339"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{InternalErrorCode: "VALIDATION", Message: "to inválido, usar RFC3339"})
		}
		filter.To = &t
	}

	entries, err := h.uc.ListLedger(filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{InternalErrorCode: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FromLedgerEntry(e))
	}
	return c.JSON(fiber.Map{"total": len(out), "entries": out})
}
