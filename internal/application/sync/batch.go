package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/pkg/logger"
)

// DefaultMaxBatchSize tope de ítems por lote cuando la configuración no fija otro.
const DefaultMaxBatchSize = 100

// BatchError rechazo del lote completo, sin procesar ningún ítem.
type BatchError struct {
	Kind    string // batch_too_large | empty_batch
	Message string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// BatchSummary conteos del lote. Se derivan de los resultados, nunca se llevan
// por separado, para que no puedan divergir.
type BatchSummary struct {
	Total  int
	Synced int
	Failed int
}

// BatchReport resultado de sincronizar un lote: un SyncResult por ítem en el
// orden de envío del cliente, más el resumen y la hora del servidor.
type BatchReport struct {
	Results    []entity.SyncResult
	Summary    BatchSummary
	ServerTime time.Time
}

// Success indica si todos los ítems del lote quedaron aplicados.
func (r *BatchReport) Success() bool { return r.Summary.Failed == 0 }

// BatchSyncCoordinator drena el outbox de un dispositivo: valida y concilia cada
// escaneo secuencialmente, en orden de envío, con aislamiento por ítem (un fallo
// se registra y el procesamiento continúa).
type BatchSyncCoordinator struct {
	engine       *ReconciliationEngine
	maxBatchSize int
	log          *logger.Logger
}

// NewBatchSyncCoordinator construye el coordinador. maxBatchSize <= 0 usa el tope por defecto.
func NewBatchSyncCoordinator(engine *ReconciliationEngine, maxBatchSize int, log *logger.Logger) *BatchSyncCoordinator {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	return &BatchSyncCoordinator{engine: engine, maxBatchSize: maxBatchSize, log: log}
}

// MaxBatchSize tope vigente de ítems por lote.
func (c *BatchSyncCoordinator) MaxBatchSize() int { return c.maxBatchSize }

// SyncBatch procesa un lote. Los rechazos de lote completo (vacío o sobre el
// tope) se devuelven como *BatchError sin tocar ningún ítem; a partir de ahí el
// error devuelto es siempre nil y cada desenlace viaja en su SyncResult.
//
// El procesamiento es deliberadamente secuencial: mantiene predecible el orden
// por ítem y acota la contención de bloqueos a una fila a la vez.
func (c *BatchSyncCoordinator) SyncBatch(ctx context.Context, deviceID string, intents []entity.ScanIntent) (*BatchReport, error) {
	if len(intents) == 0 {
		return nil, &BatchError{Kind: entity.ConflictEmptyBatch, Message: "el lote no contiene escaneos"}
	}
	if len(intents) > c.maxBatchSize {
		return nil, &BatchError{
			Kind:    entity.ConflictBatchTooLarge,
			Message: fmt.Sprintf("el lote trae %d escaneos y el máximo es %d", len(intents), c.maxBatchSize),
		}
	}

	results := make([]entity.SyncResult, 0, len(intents))
	for _, intent := range intents {
		intent.DeviceID = deviceID
		results = append(results, c.processOne(ctx, intent))
	}

	summary := BatchSummary{Total: len(results)}
	for _, r := range results {
		if r.Applied() {
			summary.Synced++
		} else {
			summary.Failed++
		}
	}

	c.log.Info().
		Str("device_id", deviceID).
		Int("total", summary.Total).
		Int("synced", summary.Synced).
		Int("failed", summary.Failed).
		Msg("lote sincronizado")

	return &BatchReport{Results: results, Summary: summary, ServerTime: time.Now().UTC()}, nil
}

// processOne valida y concilia un ítem, convirtiendo cualquier pánico en un
// server_error para que un ítem malformado nunca aborte el resto del lote.
func (c *BatchSyncCoordinator) processOne(ctx context.Context, intent entity.ScanIntent) (result entity.SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().
				Str("client_scan_id", intent.ClientScanID).
				Interface("panic", r).
				Msg("pánico conciliando ítem del lote")
			result = entity.SyncResult{
				ClientScanID: intent.ClientScanID,
				Outcome:      entity.OutcomeRejected,
				ConflictKind: entity.ConflictServerError,
				Message:      "error interno al conciliar el escaneo",
			}
		}
	}()

	if verr := ValidateScanIntent(intent); verr != nil {
		return rejected(intent, verr.Kind, verr.Message)
	}
	return c.engine.Reconcile(ctx, intent)
}
