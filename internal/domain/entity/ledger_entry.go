package entity

import "time"

// Tipos de asiento en el libro de movimientos.
const (
	EntryTypeRECEIPT    = "RECEIPT"    // entrada
	EntryTypeSHIPMENT   = "SHIPMENT"   // salida
	EntryTypeADJUSTMENT = "ADJUSTMENT" // ajuste manual (absoluto)
)

// LedgerEntry es un asiento inmutable del libro de movimientos (append-only).
// TransactionID es monotónico y lo asigna el almacén al insertar. Invariante de
// conciliación: la suma de QuantityChange de los asientos de un StockRecord debe
// ser igual a su QuantityOnHand actual.
type LedgerEntry struct {
	ID              string // uuid
	TransactionID   int64  // asignado por el almacén (secuencia monotónica)
	ProductID       int64
	WarehouseID     int64
	Type            string
	QuantityChange  int64 // positivo en RECEIPT, negativo en SHIPMENT, signo libre en ADJUSTMENT
	ReferenceNumber string
	Notes           string
	CreatedBy       string
	CreatedAt       time.Time
}
