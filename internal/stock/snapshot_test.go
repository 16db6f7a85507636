package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/frigosur/backoffice/internal/catalog"
)

func TestBuild(t *testing.T) {
	vacio := catalog.Producto{
		ID:            1,
		Nombre:        "Vacío",
		PrecioPorKilo: decimal.RequireFromString("1000"),
		Estado:        catalog.EstadoDisponible,
	}

	tests := []struct {
		name            string
		mov             Movimientos
		wantDisponibles int
		wantStock       int
		wantReservas    int
		wantKilos       string
	}{
		{
			name:            "sin movimientos",
			mov:             Movimientos{},
			wantDisponibles: 0, wantStock: 0, wantReservas: 0, wantKilos: "0",
		},
		{
			name: "solo entradas",
			mov: Movimientos{
				EntradasUnidades: 10,
				EntradasKilos:    decimal.RequireFromString("200"),
			},
			wantDisponibles: 10, wantStock: 10, wantReservas: 0, wantKilos: "200",
		},
		{
			name: "entradas y salidas vendidas",
			mov: Movimientos{
				EntradasUnidades: 10,
				EntradasKilos:    decimal.RequireFromString("200"),
				SalidasUnidades:  4,
				SalidasKilos:     decimal.RequireFromString("78.5"),
			},
			wantDisponibles: 6, wantStock: 6, wantReservas: 0, wantKilos: "121.5",
		},
		{
			name: "reservas sin pesar apartan del disponible pero no del físico",
			mov: Movimientos{
				// las reservas son un subconjunto de las salidas: las tres
				// unidades sin pesar ya salieron como detalle de pedido
				EntradasUnidades:   10,
				EntradasKilos:      decimal.RequireFromString("200"),
				SalidasUnidades:    3,
				UnidadesReservadas: 3,
			},
			wantDisponibles: 7, wantStock: 10, wantReservas: 3, wantKilos: "200",
		},
		{
			name: "kilos se redondean a dos decimales",
			mov: Movimientos{
				EntradasUnidades: 3,
				EntradasKilos:    decimal.RequireFromString("10.005"),
			},
			wantDisponibles: 3, wantStock: 3, wantReservas: 0, wantKilos: "10.01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Build(vacio, tt.mov)
			assert.Equal(t, int64(1), s.ProductoID)
			assert.Equal(t, "Vacío", s.Producto)
			assert.Equal(t, tt.wantDisponibles, s.Disponibles)
			assert.Equal(t, tt.wantStock, s.Stock)
			assert.Equal(t, tt.wantReservas, s.Reservas)
			assert.True(t, s.KilosActuales.Equal(decimal.RequireFromString(tt.wantKilos)),
				"kilos: got %s want %s", s.KilosActuales, tt.wantKilos)
		})
	}
}
