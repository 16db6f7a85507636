package facturas

import (
	"time"

	"github.com/shopspring/decimal"
)

// Factura es una factura de compra a proveedor. La clave es el número de
// factura que asigna el proveedor, no un id propio.
type Factura struct {
	NumeroFactura   string           `json:"numero_factura"`
	ProveedorID     int64            `json:"proveedor"`
	ProveedorNombre string           `json:"proveedor_nombre,omitempty"`
	Fecha           time.Time        `json:"fecha"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	IVA             decimal.Decimal  `json:"iva"`
	Total           decimal.Decimal  `json:"total"`
	Detalles        []DetalleFactura `json:"detalles"`
	Pago            *PagoFactura     `json:"pago,omitempty"`
}

type DetalleFactura struct {
	ID               int64           `json:"id"`
	ProductoID       int64           `json:"producto"`
	ProductoNombre   string          `json:"producto_nombre,omitempty"`
	CantidadUnidades int             `json:"cantidad_unidades"`
	CantidadKilos    decimal.Decimal `json:"cantidad_kilos"`
	CostoPorKilo     decimal.Decimal `json:"costo_por_kilo"`
	CostoTotal       decimal.Decimal `json:"costo_total"`
}

type PagoFactura struct {
	FechaDePago  time.Time       `json:"fecha_de_pago"`
	MontoDelPago decimal.Decimal `json:"monto_del_pago"`
}

// DetalleEntrada alimenta la pantalla de entradas de inventario.
type DetalleEntrada struct {
	ID               int64           `json:"id"`
	NumeroFactura    string          `json:"numero_factura"`
	ProveedorNombre  string          `json:"proveedor_nombre"`
	ProductoNombre   string          `json:"producto_nombre"`
	CantidadUnidades int             `json:"cantidad_unidades"`
	CantidadKilos    decimal.Decimal `json:"cantidad_kilos"`
	CostoPorKilo     decimal.Decimal `json:"costo_por_kilo"`
	CostoTotal       decimal.Decimal `json:"costo_total"`
	Fecha            time.Time       `json:"fecha"`
}
