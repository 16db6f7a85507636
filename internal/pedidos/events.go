package pedidos

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventPedidoCreado     = "PedidoCreado"
	EventPedidoAnulado    = "PedidoAnulado"
	EventFacturaIngresada = "FacturaIngresada"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type ItemPedido struct {
	ProductoID       int64           `json:"producto_id"`
	CantidadKilos    decimal.Decimal `json:"cantidad_kilos"`
	CantidadUnidades int             `json:"cantidad_unidades"`
}

type PedidoCreadoPayload struct {
	PedidoID   int64           `json:"pedido_id"`
	ClienteID  int64           `json:"cliente_id"`
	VendedorID int64           `json:"vendedor_id"`
	Estado     Estado          `json:"estado"`
	Total      decimal.Decimal `json:"total"`
	Items      []ItemPedido    `json:"items"`
}

type PedidoAnuladoPayload struct {
	PedidoID int64 `json:"pedido_id"`
}

type FacturaIngresadaPayload struct {
	NumeroFactura string  `json:"numero_factura"`
	ProveedorID   int64   `json:"proveedor_id"`
	Productos     []int64 `json:"productos"`
}
