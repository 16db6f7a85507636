package pedidos

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrStockInsuficiente = errors.New("no hay suficiente stock disponible para el producto")

// Entrada es una partida de stock ingresada por factura de proveedor,
// pendiente de consumir. Las entradas se consumen por FIFO según fecha.
type Entrada struct {
	ID               int64
	NumeroFactura    string
	CantidadUnidades int
	CantidadKilos    decimal.Decimal
	CostoPorKilo     decimal.Decimal
	FechaEntrada     time.Time
}

// ConsumoFactura registra cuántas unidades de un detalle salieron de cada
// factura, para trazabilidad y para poder revertir al anular.
type ConsumoFactura struct {
	NumeroFactura    string
	CantidadUnidades int
	CostoPorKilo     decimal.Decimal
}

type ResultadoFIFO struct {
	Costo    decimal.Decimal
	Consumos []ConsumoFactura
	// Agotadas son las entradas consumidas por completo (a borrar);
	// Parcial, si existe, es la entrada que quedó con unidades restantes.
	Agotadas []int64
	Parcial  *Entrada
}

// ConsumirFIFO asigna las unidades pedidas contra las entradas más viejas
// primero y devuelve el costo acumulado. No muta el slice recibido. Si las
// entradas no alcanzan devuelve ErrStockInsuficiente sin resultado parcial.
func ConsumirFIFO(entradas []Entrada, unidades int) (ResultadoFIFO, error) {
	res := ResultadoFIFO{Costo: decimal.Zero}
	if unidades <= 0 {
		return res, nil
	}

	total := 0
	for _, e := range entradas {
		total += e.CantidadUnidades
	}
	if total < unidades {
		return ResultadoFIFO{}, ErrStockInsuficiente
	}

	restantes := unidades
	for _, e := range entradas {
		if restantes == 0 {
			break
		}
		take := e.CantidadUnidades
		if take > restantes {
			take = restantes
		}
		restantes -= take

		res.Costo = res.Costo.Add(decimal.NewFromInt(int64(take)).Mul(e.CostoPorKilo))
		res.Consumos = append(res.Consumos, ConsumoFactura{
			NumeroFactura:    e.NumeroFactura,
			CantidadUnidades: take,
			CostoPorKilo:     e.CostoPorKilo,
		})

		if take == e.CantidadUnidades {
			res.Agotadas = append(res.Agotadas, e.ID)
		} else {
			quedo := e
			quedo.CantidadUnidades -= take
			res.Parcial = &quedo
		}
	}
	return res, nil
}
