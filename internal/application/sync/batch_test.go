package sync_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/jhoicas/bodega-sync/internal/application/sync"
	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/pkg/logger"
)

// newCoordinator construye el coordinador con el motor en memoria y tope dado.
func newCoordinator(t *testing.T, maxBatch int) (*appsync.BatchSyncCoordinator, func(t *testing.T) int64) {
	t.Helper()
	engine, store := newEngine(t)
	coordinator := appsync.NewBatchSyncCoordinator(engine, maxBatch, logger.Nop())
	return coordinator, func(t *testing.T) int64 { return quantityOnHand(t, store) }
}

// ──────────────────────────────────────────────────────────────────────────────
// Guardas de lote completo
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncBatch_LoteVacio_Rechazado(t *testing.T) {
	coordinator, _ := newCoordinator(t, 10)

	_, err := coordinator.SyncBatch(context.Background(), "device-01", nil)

	var batchErr *appsync.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, entity.ConflictEmptyBatch, batchErr.Kind)
}

// El tope es fail-fast: ningún ítem se procesa, ni siquiera los primeros N.
func TestSyncBatch_SobreElTope_RechazadoSinProcesar(t *testing.T) {
	coordinator, onHand := newCoordinator(t, 3)

	intents := make([]entity.ScanIntent, 4)
	for i := range intents {
		intents[i] = intent(fmt.Sprintf("scan-%d", i), entity.OperationEntrada, 1)
	}
	_, err := coordinator.SyncBatch(context.Background(), "device-01", intents)

	var batchErr *appsync.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, entity.ConflictBatchTooLarge, batchErr.Kind)
	assert.Equal(t, int64(0), onHand(t), "un lote rechazado no debe tocar el libro")
}

func TestSyncBatch_TopePorDefecto(t *testing.T) {
	coordinator, _ := newCoordinator(t, 0)
	assert.Equal(t, appsync.DefaultMaxBatchSize, coordinator.MaxBatchSize())
}

// ──────────────────────────────────────────────────────────────────────────────
// Semántica de fallo parcial
// ──────────────────────────────────────────────────────────────────────────────

// Lote de 3 con el segundo inválido: los otros 2 aplican y el resumen refleja
// synced=2, failed=1. Un ítem malo nunca bloquea a los siguientes.
func TestSyncBatch_ItemInvalido_NoBloqueaElResto(t *testing.T) {
	coordinator, onHand := newCoordinator(t, 10)

	intents := []entity.ScanIntent{
		intent("scan-1", entity.OperationEntrada, 10),
		intent("scan-2", "invalida", 5),
		intent("scan-3", entity.OperationEntrada, 7),
	}
	report, err := coordinator.SyncBatch(context.Background(), "device-01", intents)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Synced)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.False(t, report.Success(), "con un fallo el lote no es success")

	require.Len(t, report.Results, 3)
	assert.Equal(t, entity.OutcomeApplied, report.Results[0].Outcome)
	assert.Equal(t, entity.OutcomeRejected, report.Results[1].Outcome)
	assert.Equal(t, entity.ConflictInvalidOperation, report.Results[1].ConflictKind)
	assert.Equal(t, entity.OutcomeApplied, report.Results[2].Outcome)

	assert.Equal(t, int64(17), onHand(t))
	assert.False(t, report.ServerTime.IsZero())
}

// Los resultados conservan el orden de envío del cliente, ítem por ítem.
func TestSyncBatch_ConservaOrden(t *testing.T) {
	coordinator, _ := newCoordinator(t, 10)

	intents := []entity.ScanIntent{
		intent("scan-a", entity.OperationEntrada, 1),
		intent("scan-b", entity.OperationEntrada, 2),
		intent("scan-c", entity.OperationEntrada, 3),
	}
	report, err := coordinator.SyncBatch(context.Background(), "device-01", intents)
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	for i, id := range []string{"scan-a", "scan-b", "scan-c"} {
		assert.Equal(t, id, report.Results[i].ClientScanID)
	}
}

// Reenviar el lote completo (corte de red después del commit) devuelve los
// mismos resultados sin aplicar nada dos veces.
func TestSyncBatch_ReenvioCompleto_Idempotente(t *testing.T) {
	coordinator, onHand := newCoordinator(t, 10)
	ctx := context.Background()

	intents := []entity.ScanIntent{
		intent("scan-1", entity.OperationEntrada, 10),
		intent("scan-2", entity.OperationSalida, 4),
	}
	first, err := coordinator.SyncBatch(ctx, "device-01", intents)
	require.NoError(t, err)
	require.True(t, first.Success())
	require.Equal(t, int64(6), onHand(t))

	second, err := coordinator.SyncBatch(ctx, "device-01", intents)
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results, "el reenvío devuelve los resultados guardados")
	assert.Equal(t, int64(6), onHand(t), "el reenvío no aplica efectos adicionales")
}

// Todo aplicado: success true y failed 0.
func TestSyncBatch_TodoAplicado_Success(t *testing.T) {
	coordinator, _ := newCoordinator(t, 10)

	report, err := coordinator.SyncBatch(context.Background(), "device-01", []entity.ScanIntent{
		intent("scan-1", entity.OperationEntrada, 5),
		intent("scan-2", entity.OperationSalida, 2),
	})
	require.NoError(t, err)
	assert.True(t, report.Success())
	assert.Equal(t, 0, report.Summary.Failed)
}

// Un motor que truena a mitad del lote produce server_error en ese ítem y el
// resto sigue su curso.
func TestSyncBatch_ErrorDeMotor_AislaElItem(t *testing.T) {
	engine := appsync.NewReconciliationEngine(&failingTxRunner{err: errors.New("conexión perdida")}, logger.Nop())
	coordinator := appsync.NewBatchSyncCoordinator(engine, 10, logger.Nop())

	report, err := coordinator.SyncBatch(context.Background(), "device-01", []entity.ScanIntent{
		intent("scan-1", entity.OperationEntrada, 5),
		intent("scan-2", entity.OperationEntrada, 5),
	})
	require.NoError(t, err, "los fallos por ítem no abortan el lote")

	require.Len(t, report.Results, 2)
	for _, res := range report.Results {
		assert.Equal(t, entity.ConflictServerError, res.ConflictKind)
	}
	assert.Equal(t, 2, report.Summary.Failed)
}
