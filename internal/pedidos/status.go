package pedidos

type Estado string

const (
	EstadoReservado Estado = "Reservado"
	EstadoPreparado Estado = "Preparado"
	EstadoPagado    Estado = "Pagado"
	EstadoAnulado   Estado = "Anulado"
)

var validNext = map[Estado]map[Estado]bool{
	EstadoReservado: {EstadoPreparado: true, EstadoPagado: true, EstadoAnulado: true},
	EstadoPreparado: {EstadoPagado: true, EstadoAnulado: true},
	EstadoPagado:    {EstadoAnulado: true},
	EstadoAnulado:   {},
}

func CanTransition(from, to Estado) bool {
	return validNext[from][to]
}

// EstadoInicial: un pedido nace Reservado si alguna línea quedó sin pesar
// (kilos en 0), Preparado si todas tienen peso.
func EstadoInicial(lineas []Linea) Estado {
	for _, l := range lineas {
		if l.Kilos.IsZero() {
			return EstadoReservado
		}
	}
	return EstadoPreparado
}

// estadoTrasPesaje ajusta Reservado/Preparado tras reescribir cantidades,
// según cuántas líneas siguen sin pesar. Pagado y Anulado no se tocan.
func estadoTrasPesaje(estado Estado, sinPesar int) Estado {
	if estado != EstadoReservado && estado != EstadoPreparado {
		return estado
	}
	if sinPesar > 0 {
		return EstadoReservado
	}
	return EstadoPreparado
}
