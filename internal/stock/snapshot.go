package stock

import (
	"github.com/shopspring/decimal"

	"github.com/frigosur/backoffice/internal/catalog"
)

// Snapshot es la foto de stock de un producto en un instante dado.
// Disponibles es el tope de unidades para pedidos nuevos; el stock físico
// incluye además lo que está apartado en reservas.
type Snapshot struct {
	ProductoID    int64           `json:"id"`
	Producto      string          `json:"producto"`
	PrecioPorKilo decimal.Decimal `json:"precio_por_kilo"`
	Estado        string          `json:"estado"`
	Disponibles   int             `json:"disponibles"`
	Stock         int             `json:"stock"`
	Reservas      int             `json:"reservas"`
	KilosActuales decimal.Decimal `json:"kilos_actuales"`
}

// Movimientos acumula entradas (compras por factura) y salidas (detalles de
// pedidos no anulados) de un producto. UnidadesReservadas son las unidades de
// pedidos vigentes que todavía no tienen kilos pesados.
type Movimientos struct {
	EntradasUnidades   int
	EntradasKilos      decimal.Decimal
	SalidasUnidades    int
	SalidasKilos       decimal.Decimal
	UnidadesReservadas int
}

// Build deriva el snapshot de un producto a partir de sus movimientos.
func Build(p catalog.Producto, m Movimientos) Snapshot {
	disponibles := m.EntradasUnidades - m.SalidasUnidades
	return Snapshot{
		ProductoID:    p.ID,
		Producto:      p.Nombre,
		PrecioPorKilo: p.PrecioPorKilo,
		Estado:        p.Estado,
		Disponibles:   disponibles,
		Stock:         disponibles + m.UnidadesReservadas,
		Reservas:      m.UnidadesReservadas,
		KilosActuales: m.EntradasKilos.Sub(m.SalidasKilos).Round(2),
	}
}
