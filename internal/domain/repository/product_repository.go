package repository

import "github.com/jhoicas/bodega-sync/internal/domain/entity"

// ProductRepository define el puerto de consulta del catálogo (solo lectura aquí).
// Ambos métodos devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	GetByBarcode(barcode string) (*entity.Product, error)
	GetByID(id int64) (*entity.Product, error)
}
