package pedidos

import "strconv"

const (
	TopicPedidoCreado      = "pedido.creado"
	TopicPedidoAnulado     = "pedido.anulado"
	TopicFacturaIngresada  = "factura.ingresada"
)

// Partition key = pedido_id para mantener el orden de los eventos de un
// mismo pedido.
func PartitionKey(pedidoID int64) []byte {
	return []byte(strconv.FormatInt(pedidoID, 10))
}
