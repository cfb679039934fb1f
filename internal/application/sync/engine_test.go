package sync_test

import (
	"context"
	"errors"
	gosync "sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/jhoicas/bodega-sync/internal/application/sync"
	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
	"github.com/jhoicas/bodega-sync/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-sync/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testBarcode     = "7501031311309"
	testProductID   = int64(42)
	testWarehouseID = int64(1)
)

// newEngine construye el motor sobre el almacén en memoria con el catálogo sembrado.
func newEngine(t *testing.T) (*appsync.ReconciliationEngine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddProduct(entity.Product{
		ID:      testProductID,
		Barcode: testBarcode,
		SKU:     "TOR-14",
		Name:    "Caja tornillos 1/4",
		Price:   decimal.NewFromInt(12500),
	})
	return appsync.NewReconciliationEngine(store, logger.Nop()), store
}

// intent construye un ScanIntent válido con los campos variables del caso.
func intent(clientScanID, operation string, quantity int64) entity.ScanIntent {
	return entity.ScanIntent{
		ClientScanID: clientScanID,
		Barcode:      testBarcode,
		WarehouseID:  testWarehouseID,
		Operation:    operation,
		Quantity:     quantity,
		DeviceID:     "device-01",
		SubmittedBy:  "bodeguero1",
	}
}

// quantityOnHand lee la existencia actual del registro de pruebas.
func quantityOnHand(t *testing.T, store *memory.Store) int64 {
	t.Helper()
	rec, err := store.StockRecords().Get(testProductID, testWarehouseID)
	require.NoError(t, err)
	if rec == nil {
		return 0
	}
	return rec.QuantityOnHand
}

// ledgerSum suma QuantityChange de los asientos del registro de pruebas
// (invariante de conciliación: debe igualar QuantityOnHand en todo momento).
func ledgerSum(t *testing.T, store *memory.Store) int64 {
	t.Helper()
	sum, err := store.Ledger().SumByRecord(testProductID, testWarehouseID)
	require.NoError(t, err)
	return sum
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario base del motor: entrada, salida y conflicto
// ──────────────────────────────────────────────────────────────────────────────

// El escenario completo de la operación diaria: el registro no existe, una
// entrada lo crea, una salida descuenta y una salida imposible queda en conflicto
// sin tocar la existencia.
func TestReconcile_EscenarioEntradaSalidaConflicto(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	// Entrada de 100 sobre registro ausente: creación perezosa.
	res := engine.Reconcile(ctx, intent("scan-1", entity.OperationEntrada, 100))
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	require.NotNil(t, res.ResultingQuantity)
	assert.Equal(t, int64(100), *res.ResultingQuantity)
	assert.Equal(t, int64(100), quantityOnHand(t, store))

	// Salida de 30: descuenta.
	res = engine.Reconcile(ctx, intent("scan-2", entity.OperationSalida, 30))
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	require.NotNil(t, res.ResultingQuantity)
	assert.Equal(t, int64(70), *res.ResultingQuantity)

	// Salida de 9999: conflicto negative_inventory con la existencia actual.
	res = engine.Reconcile(ctx, intent("scan-3", entity.OperationSalida, 9999))
	assert.Equal(t, entity.OutcomeConflict, res.Outcome)
	assert.Equal(t, entity.ConflictNegativeInventory, res.ConflictKind)
	require.NotNil(t, res.AvailableQuantity, "el conflicto debe traer la existencia actual")
	assert.Equal(t, int64(70), *res.AvailableQuantity)
	assert.Equal(t, int64(70), quantityOnHand(t, store), "el conflicto no debe mutar la existencia")

	// Invariante del libro: la suma de los asientos iguala la existencia.
	assert.Equal(t, quantityOnHand(t, store), ledgerSum(t, store))
}

// Nunca stock negativo: ninguna secuencia de salidas deja QuantityOnHand < 0.
func TestReconcile_NuncaStockNegativo(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	engine.Reconcile(ctx, intent("seed", entity.OperationEntrada, 10))
	for i := 0; i < 5; i++ {
		engine.Reconcile(ctx, entity.ScanIntent{
			ClientScanID: string(rune('a'+i)) + "-salida",
			Barcode:      testBarcode,
			WarehouseID:  testWarehouseID,
			Operation:    entity.OperationSalida,
			Quantity:     4,
			DeviceID:     "device-01",
		})
		assert.GreaterOrEqual(t, quantityOnHand(t, store), int64(0))
	}
	// 10 unidades alcanzan para dos salidas de 4; las demás quedan en conflicto.
	assert.Equal(t, int64(2), quantityOnHand(t, store))
	assert.Equal(t, quantityOnHand(t, store), ledgerSum(t, store))
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución de producto
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_BarcodeDesconocido_Rechazado(t *testing.T) {
	engine, store := newEngine(t)

	scan := intent("scan-x", entity.OperationEntrada, 5)
	scan.Barcode = "0000000000000"
	res := engine.Reconcile(context.Background(), scan)

	assert.Equal(t, entity.OutcomeRejected, res.Outcome)
	assert.Equal(t, entity.ConflictProductNotFound, res.ConflictKind)
	assert.Equal(t, int64(0), quantityOnHand(t, store), "un rechazo no toca el libro")
}

// Salida sobre bodega sin fila de existencias: mismo kind que barcode desconocido,
// mensaje distinto para diagnóstico.
func TestReconcile_SalidaSinRegistro_Rechazada(t *testing.T) {
	engine, _ := newEngine(t)

	res := engine.Reconcile(context.Background(), intent("scan-y", entity.OperationSalida, 1))

	assert.Equal(t, entity.OutcomeRejected, res.Outcome)
	assert.Equal(t, entity.ConflictProductNotFound, res.ConflictKind)
	assert.Contains(t, res.Message, "sin existencias")
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

// Reenviar el mismo ClientScanID devuelve el resultado guardado sin segundo asiento.
func TestReconcile_ReenvioMismoScan_NoDuplicaEfecto(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	first := engine.Reconcile(ctx, intent("scan-dup", entity.OperationEntrada, 25))
	second := engine.Reconcile(ctx, intent("scan-dup", entity.OperationEntrada, 25))

	assert.Equal(t, first, second, "ambas llamadas deben devolver el mismo SyncResult")
	assert.Equal(t, int64(25), quantityOnHand(t, store), "el efecto se aplica a lo sumo una vez")

	entries, err := store.Ledger().List(repository.LedgerFilter{ProductID: testProductID, WarehouseID: testWarehouseID})
	require.NoError(t, err)
	assert.Len(t, entries, 1, "el reenvío no debe crear un segundo asiento")
}

// Reenvíos concurrentes del mismo intent: a lo sumo un efecto, mismo resultado para todos.
func TestReconcile_ReenvioConcurrente_AplicaUnaVez(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	const workers = 8
	results := make([]entity.SyncResult, workers)
	var wg gosync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Reconcile(ctx, intent("scan-race", entity.OperationEntrada, 5))
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		assert.Equal(t, entity.OutcomeApplied, res.Outcome, "worker %d", i)
		assert.Equal(t, results[0], res, "todos los workers deben ver el mismo resultado")
	}
	assert.Equal(t, int64(5), quantityOnHand(t, store))
	assert.Equal(t, int64(5), ledgerSum(t, store))
}

// Dos salidas concurrentes que compiten por la última existencia: una gana, la
// otra queda en conflicto con la existencia post-descuento. Sin sobreventa.
func TestReconcile_SalidasConcurrentes_SinSobreventa(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	engine.Reconcile(ctx, intent("seed", entity.OperationEntrada, 10))

	var wg gosync.WaitGroup
	outcomes := make([]entity.SyncResult, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "salida-a"
			if i == 1 {
				id = "salida-b"
			}
			outcomes[i] = engine.Reconcile(ctx, intent(id, entity.OperationSalida, 10))
		}(i)
	}
	wg.Wait()

	applied, conflicted := 0, 0
	for _, res := range outcomes {
		switch res.Outcome {
		case entity.OutcomeApplied:
			applied++
		case entity.OutcomeConflict:
			conflicted++
			require.NotNil(t, res.AvailableQuantity)
			assert.Equal(t, int64(0), *res.AvailableQuantity, "el perdedor ve la existencia post-descuento")
		}
	}
	assert.Equal(t, 1, applied, "exactamente una salida debe aplicar")
	assert.Equal(t, 1, conflicted)
	assert.Equal(t, int64(0), quantityOnHand(t, store))
	assert.Equal(t, int64(0), ledgerSum(t, store))
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos de infraestructura
// ──────────────────────────────────────────────────────────────────────────────

// failingTxRunner simula una BD caída.
type failingTxRunner struct{ err error }

func (f *failingTxRunner) Run(ctx context.Context, fn func(
	repository.StockRecordRepository,
	repository.LedgerEntryRepository,
	repository.ScanResultRepository,
	repository.ProductRepository,
) error) error {
	return f.err
}

func TestReconcile_ErrorDeInfraestructura_ServerError(t *testing.T) {
	engine := appsync.NewReconciliationEngine(&failingTxRunner{err: errors.New("conexión perdida")}, logger.Nop())

	res := engine.Reconcile(context.Background(), intent("scan-err", entity.OperationEntrada, 1))

	assert.Equal(t, entity.OutcomeRejected, res.Outcome)
	assert.Equal(t, entity.ConflictServerError, res.ConflictKind)
	assert.Equal(t, "scan-err", res.ClientScanID)
}
