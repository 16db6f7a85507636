package redisx

import "time"

const (
	// Snapshot de stock completo (lista JSON): stock:snapshot
	KeyStockSnapshot = "stock:snapshot"

	// Cache de un pedido serializado: pedido:{pedido_id}
	KeyPedido = "pedido:%d"

	// Dedup de eventos consumidos: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStockSnapshot = 1 * time.Minute
	TTLPedidoCache   = 5 * time.Minute
	TTLDedup         = 48 * time.Hour
)
