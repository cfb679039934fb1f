package sync

import (
	"context"

	"github.com/jhoicas/bodega-sync/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad de la secuencia
// leer-calcular-escribir-asentar-deduplicar sobre una llave (producto, bodega).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.LedgerEntryRepository,
		scanResultRepo repository.ScanResultRepository,
		productRepo repository.ProductRepository,
	) error) error
}
