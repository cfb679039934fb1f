package sync

import (
	"fmt"

	"github.com/jhoicas/bodega-sync/internal/domain/entity"
)

// ValidationError describe por qué un ScanIntent es inválido. Es terminal para
// ese intent: ningún reintento lo arregla y nunca toca el libro.
type ValidationError struct {
	Kind    string // invalid_data | invalid_operation | invalid_quantity
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ValidateScanIntent verifica forma y legalidad de negocio de un escaneo, en
// orden: identificador, código de barras, bodega, operación y cantidad.
// Cantidad <= 0 se rechaza explícitamente, nunca se ajusta en silencio.
func ValidateScanIntent(intent entity.ScanIntent) *ValidationError {
	if intent.ClientScanID == "" {
		return &ValidationError{Kind: entity.ConflictInvalidData, Message: "client_scan_id es requerido"}
	}
	if intent.Barcode == "" {
		return &ValidationError{Kind: entity.ConflictInvalidData, Message: "barcode es requerido"}
	}
	if intent.WarehouseID <= 0 {
		return &ValidationError{Kind: entity.ConflictInvalidData, Message: "warehouse_id debe ser positivo"}
	}
	if intent.Operation != entity.OperationEntrada && intent.Operation != entity.OperationSalida {
		return &ValidationError{Kind: entity.ConflictInvalidOperation, Message: fmt.Sprintf("operación desconocida: %q", intent.Operation)}
	}
	if intent.Quantity <= 0 {
		return &ValidationError{Kind: entity.ConflictInvalidQuantity, Message: fmt.Sprintf("quantity debe ser un entero positivo, llegó %d", intent.Quantity)}
	}
	return nil
}
