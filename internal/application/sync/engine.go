package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/bodega-sync/internal/domain"
	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
	"github.com/jhoicas/bodega-sync/pkg/logger"
)

// errDuplicateInFlight señala que otro worker confirmó el mismo ClientScanID
// mientras esta transacción estaba en vuelo. La transacción propia se revierte
// completa (incluida la mutación del libro) y se responde con el resultado que
// quedó guardado.
var errDuplicateInFlight = errors.New("client_scan_id duplicado en vuelo")

// ReconciliationEngine aplica un ScanIntent validado contra el StockLedger de
// forma atómica y clasifica el desenlace (applied / rejected / conflict).
//
// Toda la secuencia —consulta de deduplicación, resolución del código de barras,
// mutación del libro y registro de idempotencia— corre dentro de UNA transacción
// por intent, de modo que un reenvío del mismo ClientScanID nunca aplica el
// efecto dos veces y una caída a mitad de camino nunca deja el libro mutado sin
// su registro de deduplicación.
type ReconciliationEngine struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewReconciliationEngine construye el motor.
func NewReconciliationEngine(txRunner TxRunner, log *logger.Logger) *ReconciliationEngine {
	return &ReconciliationEngine{txRunner: txRunner, log: log}
}

// Reconcile aplica un intent y devuelve siempre un SyncResult: los fallos de
// negocio se clasifican (product_not_found, negative_inventory) y los fallos de
// infraestructura se reportan como server_error, nunca como panic ni error crudo.
func (e *ReconciliationEngine) Reconcile(ctx context.Context, intent entity.ScanIntent) entity.SyncResult {
	result, err := e.reconcileTx(ctx, intent)
	if errors.Is(err, errDuplicateInFlight) {
		result, err = e.storedResult(ctx, intent.ClientScanID)
	}
	if err != nil {
		e.log.Error().Err(err).
			Str("client_scan_id", intent.ClientScanID).
			Str("device_id", intent.DeviceID).
			Msg("conciliación fallida")
		return entity.SyncResult{
			ClientScanID: intent.ClientScanID,
			Outcome:      entity.OutcomeRejected,
			ConflictKind: entity.ConflictServerError,
			Message:      "error interno al conciliar el escaneo",
		}
	}
	return result
}

// reconcileTx ejecuta los cuatro pasos dentro de una sola transacción.
func (e *ReconciliationEngine) reconcileTx(ctx context.Context, intent entity.ScanIntent) (entity.SyncResult, error) {
	var result entity.SyncResult
	err := e.txRunner.Run(ctx, func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.LedgerEntryRepository,
		scanResultRepo repository.ScanResultRepository,
		productRepo repository.ProductRepository,
	) error {
		// Paso 1: deduplicación. Un reenvío devuelve el resultado guardado tal cual.
		previous, err := scanResultRepo.GetByClientScanID(intent.ClientScanID)
		if err != nil {
			return fmt.Errorf("consultar deduplicación: %w", err)
		}
		if previous != nil {
			result = *previous
			return nil
		}

		// Paso 2: resolver código de barras contra el catálogo.
		product, err := productRepo.GetByBarcode(intent.Barcode)
		if err != nil {
			return fmt.Errorf("resolver barcode: %w", err)
		}
		if product == nil {
			result = rejected(intent, entity.ConflictProductNotFound,
				fmt.Sprintf("ningún producto con código de barras %q", intent.Barcode))
			return nil
		}

		// Paso 3: aplicar la operación sobre el libro (fila bloqueada por llave).
		ledger := NewStockLedger(stockRepo, ledgerRepo)
		meta := EntryMeta{
			Reference: intent.ClientScanID,
			Notes:     fmt.Sprintf("escaneo %s desde dispositivo %s", intent.Operation, intent.DeviceID),
			CreatedBy: intent.SubmittedBy,
			Now:       time.Now().UTC(),
		}

		var record *entity.StockRecord
		switch intent.Operation {
		case entity.OperationEntrada:
			record, err = ledger.ApplyReceipt(product.ID, intent.WarehouseID, intent.Quantity, meta)
			if err != nil {
				return fmt.Errorf("aplicar entrada: %w", err)
			}
		case entity.OperationSalida:
			record, err = ledger.ApplyShipment(product.ID, intent.WarehouseID, intent.Quantity, meta)
			var insufficient *domain.InsufficientStockError
			switch {
			case errors.As(err, &insufficient):
				// Conflicto con estado: reportar la existencia actual para que el
				// operador vea "disponible vs solicitado" sin otra vuelta.
				available := insufficient.Available
				result = entity.SyncResult{
					ClientScanID:      intent.ClientScanID,
					Outcome:           entity.OutcomeConflict,
					ConflictKind:      entity.ConflictNegativeInventory,
					AvailableQuantity: &available,
					ProductID:         product.ID,
					ProductName:       product.Name,
					Message:           insufficient.Error(),
				}
				return nil
			case errors.Is(err, domain.ErrNotFound):
				// Sin fila de existencias en esta bodega: mismo tratamiento que un
				// barcode desconocido, mensaje distinto para diagnóstico.
				result = rejected(intent, entity.ConflictProductNotFound,
					fmt.Sprintf("producto %q sin existencias registradas en la bodega %d", product.Name, intent.WarehouseID))
				return nil
			case err != nil:
				return fmt.Errorf("aplicar salida: %w", err)
			}
		default:
			// El validador corre antes; esto solo se alcanza si el caller lo saltó.
			result = rejected(intent, entity.ConflictInvalidOperation,
				fmt.Sprintf("operación desconocida: %q", intent.Operation))
			return nil
		}

		resulting := record.QuantityOnHand
		result = entity.SyncResult{
			ClientScanID:      intent.ClientScanID,
			Outcome:           entity.OutcomeApplied,
			ResultingQuantity: &resulting,
			ProductID:         product.ID,
			ProductName:       product.Name,
			Message:           fmt.Sprintf("%s de %d unidades aplicada", intent.Operation, intent.Quantity),
		}

		// Paso 4: registrar la idempotencia en la misma transacción que mutó el
		// libro. Solo los applied se recuerdan; un duplicado concurrente revierte
		// todo y se responde con el resultado del ganador.
		if err := scanResultRepo.Create(intent.DeviceID, &result); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return errDuplicateInFlight
			}
			return fmt.Errorf("registrar deduplicación: %w", err)
		}
		return nil
	})
	if err != nil {
		return entity.SyncResult{}, err
	}
	return result, nil
}

// storedResult lee el resultado que dejó el ganador de una carrera de duplicados.
func (e *ReconciliationEngine) storedResult(ctx context.Context, clientScanID string) (entity.SyncResult, error) {
	var result entity.SyncResult
	err := e.txRunner.Run(ctx, func(
		_ repository.StockRecordRepository,
		_ repository.LedgerEntryRepository,
		scanResultRepo repository.ScanResultRepository,
		_ repository.ProductRepository,
	) error {
		previous, err := scanResultRepo.GetByClientScanID(clientScanID)
		if err != nil {
			return err
		}
		if previous == nil {
			return fmt.Errorf("resultado de %s no encontrado tras duplicado en vuelo", clientScanID)
		}
		result = *previous
		return nil
	})
	return result, err
}

func rejected(intent entity.ScanIntent, kind, message string) entity.SyncResult {
	return entity.SyncResult{
		ClientScanID: intent.ClientScanID,
		Outcome:      entity.OutcomeRejected,
		ConflictKind: kind,
		Message:      message,
	}
}
