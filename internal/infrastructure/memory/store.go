// Package memory implementa los puertos de persistencia en memoria, con la misma
// semántica transaccional que el adaptador PostgreSQL (atomicidad por Run con
// rollback ante error, constraint único de client_scan_id, secuencia monotónica
// del libro). Lo usan las suites de prueba del motor y el arranque local sin DB.
package memory

import (
	"context"
	"sort"
	gosync "sync"

	appsync "github.com/jhoicas/bodega-sync/internal/application/sync"
	"github.com/jhoicas/bodega-sync/internal/domain"
	"github.com/jhoicas/bodega-sync/internal/domain/entity"
	"github.com/jhoicas/bodega-sync/internal/domain/repository"
)

var _ appsync.TxRunner = (*Store)(nil)

type stockKey struct {
	productID   int64
	warehouseID int64
}

type scanResultRow struct {
	deviceID string
	result   entity.SyncResult
}

// Store estado compartido protegido por un mutex global: Run serializa las
// transacciones completas, que es una sobre-aproximación válida del bloqueo por
// fila del adaptador PostgreSQL (misma consistencia, menos paralelismo).
type Store struct {
	mu          gosync.Mutex
	stock       map[stockKey]entity.StockRecord
	ledger      []entity.LedgerEntry
	nextTxID    int64
	scanResults map[string]scanResultRow
	products    map[int64]entity.Product
	byBarcode   map[string]int64
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		stock:       make(map[stockKey]entity.StockRecord),
		nextTxID:    1,
		scanResults: make(map[string]scanResultRow),
		products:    make(map[int64]entity.Product),
		byBarcode:   make(map[string]int64),
	}
}

// AddProduct registra un producto en el catálogo (seed para desarrollo y tests).
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	s.byBarcode[p.Barcode] = p.ID
}

// Run ejecuta fn con repos atados al "tx": toma el lock global, guarda un
// snapshot y lo restaura completo si fn falla (rollback).
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRecordRepository,
	ledgerRepo repository.LedgerEntryRepository,
	scanResultRepo repository.ScanResultRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapStock := make(map[stockKey]entity.StockRecord, len(s.stock))
	for k, v := range s.stock {
		snapStock[k] = v
	}
	snapLedgerLen := len(s.ledger)
	snapTxID := s.nextTxID
	snapResults := make(map[string]scanResultRow, len(s.scanResults))
	for k, v := range s.scanResults {
		snapResults[k] = v
	}

	err := fn(
		&stockRepo{s: s},
		&ledgerRepo{s: s},
		&scanResultRepo{s: s},
		&productRepo{s: s},
	)
	if err != nil {
		s.stock = snapStock
		s.ledger = s.ledger[:snapLedgerLen]
		s.nextTxID = snapTxID
		s.scanResults = snapResults
		return err
	}
	return nil
}

// StockRecords repo de lecturas sueltas (toma el lock por operación).
func (s *Store) StockRecords() repository.StockRecordRepository { return &stockRepo{s: s, lock: true} }

// Ledger repo de lecturas sueltas del libro.
func (s *Store) Ledger() repository.LedgerEntryRepository { return &ledgerRepo{s: s, lock: true} }

// ScanResults repo de lecturas sueltas de deduplicación.
func (s *Store) ScanResults() repository.ScanResultRepository { return &scanResultRepo{s: s, lock: true} }

// Products repo de catálogo.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s, lock: true} }

// ── adaptadores ──────────────────────────────────────────────────────────────

type stockRepo struct {
	s    *Store
	lock bool
}

func (r *stockRepo) locked(fn func()) {
	if r.lock {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	fn()
}

func (r *stockRepo) Get(productID, warehouseID int64) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	r.locked(func() {
		if rec, ok := r.s.stock[stockKey{productID, warehouseID}]; ok {
			c := rec
			out = &c
		}
	})
	return out, nil
}

// GetForUpdate en memoria equivale a Get: el lock global del Run ya serializa.
func (r *stockRepo) GetForUpdate(productID, warehouseID int64) (*entity.StockRecord, error) {
	return r.Get(productID, warehouseID)
}

func (r *stockRepo) Upsert(record *entity.StockRecord) error {
	r.locked(func() {
		r.s.stock[stockKey{record.ProductID, record.WarehouseID}] = *record
	})
	return nil
}

func (r *stockRepo) ListByWarehouse(warehouseID int64, limit, offset int) ([]*entity.StockRecord, error) {
	var list []*entity.StockRecord
	r.locked(func() {
		for k, rec := range r.s.stock {
			if k.warehouseID == warehouseID {
				c := rec
				list = append(list, &c)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
		if offset >= len(list) {
			list = nil
			return
		}
		list = list[offset:]
		if limit > 0 && limit < len(list) {
			list = list[:limit]
		}
	})
	return list, nil
}

type ledgerRepo struct {
	s    *Store
	lock bool
}

func (r *ledgerRepo) locked(fn func()) {
	if r.lock {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	fn()
}

func (r *ledgerRepo) Append(entry *entity.LedgerEntry) error {
	r.locked(func() {
		entry.TransactionID = r.s.nextTxID
		r.s.nextTxID++
		r.s.ledger = append(r.s.ledger, *entry)
	})
	return nil
}

func (r *ledgerRepo) List(filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	r.locked(func() {
		for i := len(r.s.ledger) - 1; i >= 0; i-- {
			e := r.s.ledger[i]
			if filter.ProductID > 0 && e.ProductID != filter.ProductID {
				continue
			}
			if filter.WarehouseID > 0 && e.WarehouseID != filter.WarehouseID {
				continue
			}
			if filter.From != nil && e.CreatedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && e.CreatedAt.After(*filter.To) {
				continue
			}
			c := e
			list = append(list, &c)
		}
		if filter.Offset > 0 {
			if filter.Offset >= len(list) {
				list = nil
				return
			}
			list = list[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(list) {
			list = list[:filter.Limit]
		}
	})
	return list, nil
}

func (r *ledgerRepo) SumByRecord(productID, warehouseID int64) (int64, error) {
	var sum int64
	r.locked(func() {
		for _, e := range r.s.ledger {
			if e.ProductID == productID && e.WarehouseID == warehouseID {
				sum += e.QuantityChange
			}
		}
	})
	return sum, nil
}

type scanResultRepo struct {
	s    *Store
	lock bool
}

func (r *scanResultRepo) locked(fn func()) {
	if r.lock {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	fn()
}

func (r *scanResultRepo) GetByClientScanID(clientScanID string) (*entity.SyncResult, error) {
	var out *entity.SyncResult
	r.locked(func() {
		if row, ok := r.s.scanResults[clientScanID]; ok {
			c := row.result
			out = &c
		}
	})
	return out, nil
}

func (r *scanResultRepo) Create(deviceID string, result *entity.SyncResult) error {
	var err error
	r.locked(func() {
		if _, ok := r.s.scanResults[result.ClientScanID]; ok {
			err = domain.ErrDuplicate
			return
		}
		r.s.scanResults[result.ClientScanID] = scanResultRow{deviceID: deviceID, result: *result}
	})
	return err
}

type productRepo struct {
	s    *Store
	lock bool
}

func (r *productRepo) locked(fn func()) {
	if r.lock {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	fn()
}

func (r *productRepo) GetByBarcode(barcode string) (*entity.Product, error) {
	var out *entity.Product
	r.locked(func() {
		if id, ok := r.s.byBarcode[barcode]; ok {
			p := r.s.products[id]
			out = &p
		}
	})
	return out, nil
}

func (r *productRepo) GetByID(id int64) (*entity.Product, error) {
	var out *entity.Product
	r.locked(func() {
		if p, ok := r.s.products[id]; ok {
			c := p
			out = &c
		}
	})
	return out, nil
}
