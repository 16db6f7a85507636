package pedidos

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entrada(id int64, factura string, unidades int, costo string, dia int) Entrada {
	return Entrada{
		ID:               id,
		NumeroFactura:    factura,
		CantidadUnidades: unidades,
		CantidadKilos:    decimal.NewFromInt(int64(unidades) * 20),
		CostoPorKilo:     decimal.RequireFromString(costo),
		FechaEntrada:     time.Date(2025, 3, dia, 0, 0, 0, 0, time.UTC),
	}
}

func TestConsumirFIFO(t *testing.T) {
	t.Run("consume la entrada más vieja primero", func(t *testing.T) {
		entradas := []Entrada{
			entrada(1, "F-001", 5, "700", 1),
			entrada(2, "F-002", 5, "800", 2),
		}
		res, err := ConsumirFIFO(entradas, 3)
		require.NoError(t, err)

		require.Len(t, res.Consumos, 1)
		assert.Equal(t, "F-001", res.Consumos[0].NumeroFactura)
		assert.Equal(t, 3, res.Consumos[0].CantidadUnidades)
		assert.True(t, res.Costo.Equal(decimal.RequireFromString("2100")))

		assert.Empty(t, res.Agotadas)
		require.NotNil(t, res.Parcial)
		assert.Equal(t, int64(1), res.Parcial.ID)
		assert.Equal(t, 2, res.Parcial.CantidadUnidades)
	})

	t.Run("cruza entradas y agota la primera", func(t *testing.T) {
		entradas := []Entrada{
			entrada(1, "F-001", 5, "700", 1),
			entrada(2, "F-002", 5, "800", 2),
		}
		res, err := ConsumirFIFO(entradas, 7)
		require.NoError(t, err)

		require.Len(t, res.Consumos, 2)
		assert.Equal(t, 5, res.Consumos[0].CantidadUnidades)
		assert.Equal(t, 2, res.Consumos[1].CantidadUnidades)
		// 5x700 + 2x800
		assert.True(t, res.Costo.Equal(decimal.RequireFromString("5100")))

		assert.Equal(t, []int64{1}, res.Agotadas)
		require.NotNil(t, res.Parcial)
		assert.Equal(t, int64(2), res.Parcial.ID)
		assert.Equal(t, 3, res.Parcial.CantidadUnidades)
	})

	t.Run("consumo exacto agota todo sin parcial", func(t *testing.T) {
		entradas := []Entrada{
			entrada(1, "F-001", 5, "700", 1),
			entrada(2, "F-002", 5, "800", 2),
		}
		res, err := ConsumirFIFO(entradas, 10)
		require.NoError(t, err)

		assert.Equal(t, []int64{1, 2}, res.Agotadas)
		assert.Nil(t, res.Parcial)
	})

	t.Run("stock insuficiente no consume nada", func(t *testing.T) {
		entradas := []Entrada{entrada(1, "F-001", 5, "700", 1)}
		_, err := ConsumirFIFO(entradas, 6)
		assert.ErrorIs(t, err, ErrStockInsuficiente)
	})

	t.Run("cero unidades devuelve resultado vacío", func(t *testing.T) {
		res, err := ConsumirFIFO(nil, 0)
		require.NoError(t, err)
		assert.True(t, res.Costo.IsZero())
		assert.Empty(t, res.Consumos)
	})

	t.Run("no muta el slice recibido", func(t *testing.T) {
		entradas := []Entrada{entrada(1, "F-001", 5, "700", 1)}
		_, err := ConsumirFIFO(entradas, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, entradas[0].CantidadUnidades)
	})
}
