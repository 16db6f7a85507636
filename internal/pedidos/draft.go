package pedidos

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/frigosur/backoffice/internal/catalog"
	"github.com/frigosur/backoffice/internal/stock"
)

// El borrador de pedido es la única implementación de las reglas de armado:
// topes de stock, pesos mínimos y subtotales viven acá y en ningún otro lado.

var (
	ErrProductoDuplicado = errors.New("el producto ya está en el pedido")
	ErrLineaInexistente  = errors.New("línea de pedido inexistente")
	ErrSinCliente        = errors.New("debe seleccionar un cliente")
	ErrSinProductos      = errors.New("debe agregar al menos un producto")
)

type Campo string

const (
	CampoKilos    Campo = "kilos"
	CampoUnidades Campo = "unidades"
)

// Linea es una línea del borrador. Precio, peso mínimo y tope de stock quedan
// congelados al momento de agregar el producto; no siguen al catálogo.
type Linea struct {
	ProductoID     int64           `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre"`
	Kilos          decimal.Decimal `json:"kilos"`
	Unidades       int             `json:"unidades"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	PesoMinimo     decimal.Decimal `json:"peso_minimo"`
	TopeStock      int             `json:"stock_disponible"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// Borrador es un pedido en armado. Una sola sesión lo muta; no hay
// sincronización interna.
type Borrador struct {
	ClienteID     int64
	Observaciones string
	Lineas        []Linea
}

// PesoMinimoError identifica la primera línea cuyo promedio de kilos por
// unidad quedó por debajo del mínimo del producto.
type PesoMinimoError struct {
	Indice   int
	Producto string
	Promedio decimal.Decimal
	Minimo   decimal.Decimal
}

func (e *PesoMinimoError) Error() string {
	return fmt.Sprintf("el producto %s promedia %skg por unidad, el mínimo es %skg",
		e.Producto, e.Promedio.StringFixed(3), e.Minimo.String())
}

// AddProduct agrega una línea nueva para el producto. Los kilos arrancan en 0
// para obligar a pesar; las unidades en 1 si hay disponibles. Agregar un
// producto ya presente es rechazado.
func (b *Borrador) AddProduct(p catalog.Producto, snap stock.Snapshot) error {
	for _, l := range b.Lineas {
		if l.ProductoID == p.ID {
			return ErrProductoDuplicado
		}
	}

	unidades := 0
	if snap.Disponibles > 0 {
		unidades = 1
	}
	b.Lineas = append(b.Lineas, Linea{
		ProductoID:     p.ID,
		ProductoNombre: p.Nombre,
		Kilos:          decimal.Zero,
		Unidades:       unidades,
		PrecioUnitario: p.PrecioPorKilo,
		PesoMinimo:     p.PesoMinimo,
		TopeStock:      snap.Disponibles,
		Subtotal:       decimal.Zero,
	})
	return nil
}

// UpdateQuantity actualiza kilos o unidades de una línea y recalcula el
// subtotal en el acto. Los valores se recortan a >= 0; las unidades además al
// tope de stock capturado al agregar. Unidades en 0 fuerza kilos a 0: una
// línea no puede llevar peso sin al menos una unidad.
func (b *Borrador) UpdateQuantity(i int, campo Campo, valor decimal.Decimal) error {
	if i < 0 || i >= len(b.Lineas) {
		return ErrLineaInexistente
	}
	l := &b.Lineas[i]

	if valor.IsNegative() {
		valor = decimal.Zero
	}

	switch campo {
	case CampoKilos:
		if l.Unidades == 0 {
			valor = decimal.Zero
		}
		l.Kilos = valor
	case CampoUnidades:
		n := int(valor.IntPart())
		if n > l.TopeStock {
			n = l.TopeStock
		}
		l.Unidades = n
		if l.Unidades == 0 {
			l.Kilos = decimal.Zero
		}
	default:
		return fmt.Errorf("campo desconocido: %q", campo)
	}

	l.Subtotal = l.Kilos.Mul(l.PrecioUnitario)
	return nil
}

func (b *Borrador) RemoveLine(i int) error {
	if i < 0 || i >= len(b.Lineas) {
		return ErrLineaInexistente
	}
	b.Lineas = append(b.Lineas[:i], b.Lineas[i+1:]...)
	return nil
}

// ValidateMinimumWeights revisa el promedio kilos/unidades de cada línea
// pesada. Devuelve el primer incumplimiento para poder mostrarlo; no corrige
// valores, eso queda en manos del operador.
func (b *Borrador) ValidateMinimumWeights() error {
	for i, l := range b.Lineas {
		if l.Unidades <= 0 || !l.Kilos.IsPositive() || !l.PesoMinimo.IsPositive() {
			continue
		}
		promedio := l.Kilos.Div(decimal.NewFromInt(int64(l.Unidades)))
		if promedio.LessThan(l.PesoMinimo) {
			return &PesoMinimoError{
				Indice:   i,
				Producto: l.ProductoNombre,
				Promedio: promedio,
				Minimo:   l.PesoMinimo,
			}
		}
	}
	return nil
}

// Total suma los subtotales. Se recalcula en cada llamada, sin cache.
func (b *Borrador) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Lineas {
		total = total.Add(l.Subtotal)
	}
	return total
}

// Validate es la compuerta final antes de persistir: cliente elegido, al menos
// una línea y pesos mínimos cumplidos. Se corre siempre al confirmar aunque ya
// se haya validado antes, porque el operador pudo volver atrás y reeditar.
func (b *Borrador) Validate() error {
	if b.ClienteID == 0 {
		return ErrSinCliente
	}
	if len(b.Lineas) == 0 {
		return ErrSinProductos
	}
	return b.ValidateMinimumWeights()
}

// DetalleInput es el formato con el que llega un detalle por la API.
type DetalleInput struct {
	Producto         int64           `json:"producto"`
	CantidadKilos    decimal.Decimal `json:"cantidad_kilos"`
	CantidadUnidades int             `json:"cantidad_unidades"`
}

// ArmarBorrador reconstruye el borrador del lado del servidor a partir del
// request, pasando cada detalle por el motor de líneas. Así las cantidades
// enviadas quedan sujetas a los mismos recortes y reglas que en el armado
// interactivo.
func ArmarBorrador(clienteID int64, observaciones string, detalles []DetalleInput,
	productos map[int64]catalog.Producto, snaps map[int64]stock.Snapshot) (*Borrador, error) {

	b := &Borrador{ClienteID: clienteID, Observaciones: observaciones}
	for _, d := range detalles {
		p, ok := productos[d.Producto]
		if !ok {
			return nil, fmt.Errorf("%w: id=%d", catalog.ErrProductoInexistente, d.Producto)
		}
		if err := b.AddProduct(p, snaps[d.Producto]); err != nil {
			return nil, err
		}
		i := len(b.Lineas) - 1
		if err := b.UpdateQuantity(i, CampoUnidades, decimal.NewFromInt(int64(d.CantidadUnidades))); err != nil {
			return nil, err
		}
		if err := b.UpdateQuantity(i, CampoKilos, d.CantidadKilos); err != nil {
			return nil, err
		}
	}
	return b, nil
}
