package pedidos

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frigosur/backoffice/internal/catalog"
	"github.com/frigosur/backoffice/internal/stock"
)

func productoDePrueba(id int64, nombre string, precio, pesoMin string) catalog.Producto {
	return catalog.Producto{
		ID:            id,
		Nombre:        nombre,
		PrecioPorKilo: decimal.RequireFromString(precio),
		PesoMinimo:    decimal.RequireFromString(pesoMin),
		Estado:        catalog.EstadoDisponible,
	}
}

func snapConStock(disponibles int) stock.Snapshot {
	return stock.Snapshot{Disponibles: disponibles}
}

func TestAddProduct(t *testing.T) {
	vacio := productoDePrueba(1, "Vacío", "1000", "0.5")

	t.Run("arranca sin pesar y con una unidad", func(t *testing.T) {
		b := &Borrador{ClienteID: 7}
		require.NoError(t, b.AddProduct(vacio, snapConStock(10)))
		require.Len(t, b.Lineas, 1)

		l := b.Lineas[0]
		assert.True(t, l.Kilos.IsZero())
		assert.Equal(t, 1, l.Unidades)
		assert.Equal(t, 10, l.TopeStock)
		assert.True(t, l.Subtotal.IsZero())
		assert.True(t, l.PrecioUnitario.Equal(decimal.RequireFromString("1000")))
	})

	t.Run("sin disponibles arranca en cero unidades", func(t *testing.T) {
		b := &Borrador{ClienteID: 7}
		require.NoError(t, b.AddProduct(vacio, snapConStock(0)))
		assert.Equal(t, 0, b.Lineas[0].Unidades)
	})

	t.Run("producto repetido es rechazado", func(t *testing.T) {
		b := &Borrador{ClienteID: 7}
		require.NoError(t, b.AddProduct(vacio, snapConStock(10)))
		err := b.AddProduct(vacio, snapConStock(10))
		assert.ErrorIs(t, err, ErrProductoDuplicado)
		assert.Len(t, b.Lineas, 1)
	})

	t.Run("el precio queda congelado al agregar", func(t *testing.T) {
		b := &Borrador{ClienteID: 7}
		p := productoDePrueba(2, "Matambre", "1500", "0.3")
		require.NoError(t, b.AddProduct(p, snapConStock(5)))

		p.PrecioPorKilo = decimal.RequireFromString("9999")
		require.NoError(t, b.UpdateQuantity(0, CampoKilos, decimal.RequireFromString("2")))
		assert.True(t, b.Lineas[0].Subtotal.Equal(decimal.RequireFromString("3000")))
	})
}

func TestUpdateQuantity(t *testing.T) {
	nuevo := func(disponibles int) *Borrador {
		b := &Borrador{ClienteID: 7}
		require.NoError(t, b.AddProduct(productoDePrueba(1, "Vacío", "1000", "0.5"), snapConStock(disponibles)))
		return b
	}

	t.Run("kilos recalculan el subtotal en el acto", func(t *testing.T) {
		b := nuevo(10)
		require.NoError(t, b.UpdateQuantity(0, CampoKilos, decimal.RequireFromString("3")))
		assert.True(t, b.Lineas[0].Subtotal.Equal(decimal.RequireFromString("3000")))
	})

	t.Run("unidades se recortan al tope de stock", func(t *testing.T) {
		b := nuevo(10)
		require.NoError(t, b.UpdateQuantity(0, CampoUnidades, decimal.NewFromInt(12)))
		assert.Equal(t, 10, b.Lineas[0].Unidades)
	})

	t.Run("valores negativos se recortan a cero", func(t *testing.T) {
		b := nuevo(10)
		require.NoError(t, b.UpdateQuantity(0, CampoKilos, decimal.RequireFromString("-2")))
		assert.True(t, b.Lineas[0].Kilos.IsZero())

		require.NoError(t, b.UpdateQuantity(0, CampoUnidades, decimal.NewFromInt(-3)))
		assert.Equal(t, 0, b.Lineas[0].Unidades)
	})

	t.Run("unidades en cero fuerzan kilos a cero", func(t *testing.T) {
		b := nuevo(10)
		require.NoError(t, b.UpdateQuantity(0, CampoKilos, decimal.RequireFromString("4.5")))
		require.NoError(t, b.UpdateQuantity(0, CampoUnidades, decimal.Zero))

		l := b.Lineas[0]
		assert.True(t, l.Kilos.IsZero())
		assert.True(t, l.Subtotal.IsZero())
	})

	t.Run("tope congelado aunque el stock cambie después", func(t *testing.T) {
		b := nuevo(3)
		require.NoError(t, b.UpdateQuantity(0, CampoUnidades, decimal.NewFromInt(8)))
		assert.Equal(t, 3, b.Lineas[0].Unidades)
	})

	t.Run("línea fuera de rango", func(t *testing.T) {
		b := nuevo(10)
		assert.ErrorIs(t, b.UpdateQuantity(5, CampoKilos, decimal.Zero), ErrLineaInexistente)
		assert.ErrorIs(t, b.UpdateQuantity(-1, CampoKilos, decimal.Zero), ErrLineaInexistente)
	})

	t.Run("campo desconocido", func(t *testing.T) {
		b := nuevo(10)
		assert.Error(t, b.UpdateQuantity(0, Campo("precio"), decimal.Zero))
	})
}

func TestRemoveLine(t *testing.T) {
	b := &Borrador{ClienteID: 7}
	require.NoError(t, b.AddProduct(productoDePrueba(1, "Vacío", "1000", "0.5"), snapConStock(10)))
	require.NoError(t, b.AddProduct(productoDePrueba(2, "Matambre", "1500", "0.3"), snapConStock(5)))

	require.NoError(t, b.RemoveLine(0))
	require.Len(t, b.Lineas, 1)
	assert.Equal(t, int64(2), b.Lineas[0].ProductoID)

	// un producto removido se puede volver a agregar
	require.NoError(t, b.AddProduct(productoDePrueba(1, "Vacío", "1000", "0.5"), snapConStock(10)))
	assert.Len(t, b.Lineas, 2)

	assert.ErrorIs(t, b.RemoveLine(9), ErrLineaInexistente)
}

func TestValidateMinimumWeights(t *testing.T) {
	arma := func(t *testing.T, kilos string, unidades int) *Borrador {
		t.Helper()
		b := &Borrador{ClienteID: 7}
		require.NoError(t, b.AddProduct(productoDePrueba(1, "Vacío", "1000", "0.5"), snapConStock(10)))
		require.NoError(t, b.UpdateQuantity(0, CampoUnidades, decimal.NewFromInt(int64(unidades))))
		require.NoError(t, b.UpdateQuantity(0, CampoKilos, decimal.RequireFromString(kilos)))
		return b
	}

	t.Run("promedio por debajo del mínimo", func(t *testing.T) {
		b := arma(t, "0.9", 3) // 0.3 por unidad, mínimo 0.5
		err := b.ValidateMinimumWeights()
		require.Error(t, err)

		var pm *PesoMinimoError
		require.ErrorAs(t, err, &pm)
		assert.Equal(t, 0, pm.Indice)
		assert.Equal(t, "Vacío", pm.Producto)
		assert.True(t, pm.Promedio.Equal(decimal.RequireFromString("0.3")))
		assert.True(t, pm.Minimo.Equal(decimal.RequireFromString("0.5")))
	})

	t.Run("promedio justo en el mínimo pasa", func(t *testing.T) {
		b := arma(t, "1.5", 3)
		assert.NoError(t, b.ValidateMinimumWeights())
	})

	t.Run("línea sin pesar no se controla", func(t *testing.T) {
		b := arma(t, "0", 3)
		assert.NoError(t, b.ValidateMinimumWeights())
	})

	t.Run("producto sin mínimo no se controla", func(t *testing.T) {
		b := &Borrador{ClienteID: 7}
		require.NoError(t, b.AddProduct(productoDePrueba(9, "Achuras", "800", "0"), snapConStock(10)))
		require.NoError(t, b.UpdateQuantity(0, CampoUnidades, decimal.NewFromInt(4)))
		require.NoError(t, b.UpdateQuantity(0, CampoKilos, decimal.RequireFromString("0.1")))
		assert.NoError(t, b.ValidateMinimumWeights())
	})

	t.Run("reporta el primer incumplimiento", func(t *testing.T) {
		b := &Borrador{ClienteID: 7}
		require.NoError(t, b.AddProduct(productoDePrueba(1, "Vacío", "1000", "0.5"), snapConStock(10)))
		require.NoError(t, b.AddProduct(productoDePrueba(2, "Matambre", "1500", "0.4"), snapConStock(10)))
		require.NoError(t, b.UpdateQuantity(0, CampoUnidades, decimal.NewFromInt(2)))
		require.NoError(t, b.UpdateQuantity(0, CampoKilos, decimal.RequireFromString("0.2")))
		require.NoError(t, b.UpdateQuantity(1, CampoUnidades, decimal.NewFromInt(2)))
		require.NoError(t, b.UpdateQuantity(1, CampoKilos, decimal.RequireFromString("0.2")))

		var pm *PesoMinimoError
		require.ErrorAs(t, b.ValidateMinimumWeights(), &pm)
		assert.Equal(t, 0, pm.Indice)
	})
}

func TestTotal(t *testing.T) {
	b := &Borrador{ClienteID: 7}
	require.NoError(t, b.AddProduct(productoDePrueba(1, "Vacío", "1000", "0.5"), snapConStock(10)))
	require.NoError(t, b.AddProduct(productoDePrueba(2, "Matambre", "1500", "0.3"), snapConStock(10)))

	assert.True(t, b.Total().IsZero())

	require.NoError(t, b.UpdateQuantity(0, CampoKilos, decimal.RequireFromString("2")))
	require.NoError(t, b.UpdateQuantity(1, CampoKilos, decimal.RequireFromString("1.5")))
	assert.True(t, b.Total().Equal(decimal.RequireFromString("4250")))

	require.NoError(t, b.RemoveLine(1))
	assert.True(t, b.Total().Equal(decimal.RequireFromString("2000")))
}

func TestValidate(t *testing.T) {
	t.Run("sin cliente", func(t *testing.T) {
		b := &Borrador{}
		assert.ErrorIs(t, b.Validate(), ErrSinCliente)
	})

	t.Run("sin productos", func(t *testing.T) {
		b := &Borrador{ClienteID: 7}
		assert.ErrorIs(t, b.Validate(), ErrSinProductos)
	})

	t.Run("repite el control de peso mínimo", func(t *testing.T) {
		b := &Borrador{ClienteID: 7}
		require.NoError(t, b.AddProduct(productoDePrueba(1, "Vacío", "1000", "0.5"), snapConStock(10)))
		require.NoError(t, b.UpdateQuantity(0, CampoUnidades, decimal.NewFromInt(3)))
		require.NoError(t, b.UpdateQuantity(0, CampoKilos, decimal.RequireFromString("0.9")))

		var pm *PesoMinimoError
		assert.ErrorAs(t, b.Validate(), &pm)
	})

	t.Run("borrador completo pasa", func(t *testing.T) {
		b := &Borrador{ClienteID: 7}
		require.NoError(t, b.AddProduct(productoDePrueba(1, "Vacío", "1000", "0.5"), snapConStock(10)))
		require.NoError(t, b.UpdateQuantity(0, CampoUnidades, decimal.NewFromInt(2)))
		require.NoError(t, b.UpdateQuantity(0, CampoKilos, decimal.RequireFromString("3")))
		assert.NoError(t, b.Validate())
	})
}

func TestArmarBorrador(t *testing.T) {
	productos := map[int64]catalog.Producto{
		1: productoDePrueba(1, "Vacío", "1000", "0.5"),
		2: productoDePrueba(2, "Matambre", "1500", "0.3"),
	}
	snaps := map[int64]stock.Snapshot{
		1: snapConStock(10),
		2: snapConStock(2),
	}

	t.Run("aplica recortes a las cantidades enviadas", func(t *testing.T) {
		b, err := ArmarBorrador(7, "reparto lunes", []DetalleInput{
			{Producto: 1, CantidadKilos: decimal.RequireFromString("3"), CantidadUnidades: 2},
			{Producto: 2, CantidadKilos: decimal.RequireFromString("4"), CantidadUnidades: 5},
		}, productos, snaps)
		require.NoError(t, err)
		require.Len(t, b.Lineas, 2)

		assert.Equal(t, 2, b.Lineas[0].Unidades)
		assert.True(t, b.Lineas[0].Subtotal.Equal(decimal.RequireFromString("3000")))

		// pidió 5 con 2 disponibles
		assert.Equal(t, 2, b.Lineas[1].Unidades)
		assert.Equal(t, "reparto lunes", b.Observaciones)
	})

	t.Run("producto desconocido", func(t *testing.T) {
		_, err := ArmarBorrador(7, "", []DetalleInput{{Producto: 99}}, productos, snaps)
		assert.True(t, errors.Is(err, catalog.ErrProductoInexistente))
	})

	t.Run("producto repetido en el request", func(t *testing.T) {
		_, err := ArmarBorrador(7, "", []DetalleInput{
			{Producto: 1, CantidadUnidades: 1},
			{Producto: 1, CantidadUnidades: 1},
		}, productos, snaps)
		assert.ErrorIs(t, err, ErrProductoDuplicado)
	})

	t.Run("producto sin snapshot queda sin unidades", func(t *testing.T) {
		sinSnap := map[int64]stock.Snapshot{}
		b, err := ArmarBorrador(7, "", []DetalleInput{
			{Producto: 1, CantidadKilos: decimal.RequireFromString("2"), CantidadUnidades: 3},
		}, productos, sinSnap)
		require.NoError(t, err)
		assert.Equal(t, 0, b.Lineas[0].Unidades)
		assert.True(t, b.Lineas[0].Kilos.IsZero())
	})
}
