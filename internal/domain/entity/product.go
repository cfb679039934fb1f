package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es el modelo de lectura del catálogo para resolver códigos de barras.
// La administración del catálogo (altas, precios, categorías) vive fuera de este
// servicio; aquí solo se consulta.
type Product struct {
	ID        int64
	Barcode   string
	SKU       string
	Name      string
	Price     decimal.Decimal
	Cost      decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
