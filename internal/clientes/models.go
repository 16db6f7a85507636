package clientes

import (
	"time"

	"github.com/shopspring/decimal"
)

type Vendedor struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Sigla  string `json:"sigla"`
}

type Cliente struct {
	ID        int64    `json:"id"`
	Nombre    string   `json:"nombre"`
	Direccion string   `json:"direccion"`
	Telefono  string   `json:"telefono,omitempty"`
	Email     string   `json:"email,omitempty"`
	Vendedor  Vendedor `json:"vendedor"`
}

type Proveedor struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

const (
	TipoPago      = "pago"
	TipoDescuento = "descuento"
)

// PagoVendedor registra un pago o descuento aplicado a un vendedor.
type PagoVendedor struct {
	ID          int64           `json:"id"`
	VendedorID  int64           `json:"vendedor"`
	Monto       decimal.Decimal `json:"monto"`
	Comentario  string          `json:"comentario,omitempty"`
	Tipo        string          `json:"tipo"`
	Fecha       time.Time       `json:"fecha"`
	Comprobante string          `json:"comprobante,omitempty"`
}
