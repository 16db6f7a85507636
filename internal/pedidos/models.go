package pedidos

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/frigosur/backoffice/internal/catalog"
	"github.com/frigosur/backoffice/internal/clientes"
)

type Pedido struct {
	ID       int64             `json:"id"`
	Cliente  clientes.Cliente  `json:"cliente"`
	Vendedor clientes.Vendedor `json:"vendedor"`
	Fecha    time.Time         `json:"fecha"`
	Estado   Estado            `json:"estado"`
	Total    decimal.Decimal   `json:"total"`
	Detalles []Detalle         `json:"detalles"`
}

type Detalle struct {
	ID               int64            `json:"id"`
	Producto         catalog.Producto `json:"producto"`
	CantidadUnidades int              `json:"cantidad_unidades"`
	CantidadKilos    decimal.Decimal  `json:"cantidad_kilos"`
	PrecioVenta      decimal.Decimal  `json:"precio_venta"`
	TotalVenta       decimal.Decimal  `json:"total_venta"`
	CostoPorKilo     decimal.Decimal  `json:"costo_por_kilo"`
	TotalCosto       decimal.Decimal  `json:"total_costo"`
	Facturas         []string         `json:"facturas"`
}

// DetalleMovimiento es la fila que consume la pantalla de movimientos de
// inventario: el detalle con los nombres ya resueltos.
type DetalleMovimiento struct {
	ID               int64           `json:"id"`
	PedidoID         int64           `json:"pedido"`
	ProductoNombre   string          `json:"producto_nombre"`
	ClienteNombre    string          `json:"cliente_nombre"`
	VendedorNombre   string          `json:"vendedor_nombre"`
	CantidadUnidades int             `json:"cantidad_unidades"`
	CantidadKilos    decimal.Decimal `json:"cantidad_kilos"`
	TotalVenta       decimal.Decimal `json:"total_venta"`
	Fecha            time.Time       `json:"fecha"`
}
