package pedidos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Estado
		ok       bool
	}{
		{EstadoReservado, EstadoPreparado, true},
		{EstadoReservado, EstadoPagado, true},
		{EstadoReservado, EstadoAnulado, true},
		{EstadoPreparado, EstadoPagado, true},
		{EstadoPreparado, EstadoAnulado, true},
		{EstadoPagado, EstadoAnulado, true},
		{EstadoPreparado, EstadoReservado, false},
		{EstadoPagado, EstadoReservado, false},
		{EstadoPagado, EstadoPreparado, false},
		{EstadoAnulado, EstadoReservado, false},
		{EstadoAnulado, EstadoPagado, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestEstadoTrasPesaje(t *testing.T) {
	tests := []struct {
		name     string
		estado   Estado
		sinPesar int
		want     Estado
	}{
		{"reservado ya pesado pasa a preparado", EstadoReservado, 0, EstadoPreparado},
		{"reservado con líneas sin pesar sigue reservado", EstadoReservado, 2, EstadoReservado},
		{"preparado con una línea despesada vuelve a reservado", EstadoPreparado, 1, EstadoReservado},
		{"preparado pesado sigue preparado", EstadoPreparado, 0, EstadoPreparado},
		{"pagado no cambia", EstadoPagado, 1, EstadoPagado},
		{"anulado no cambia", EstadoAnulado, 0, EstadoAnulado},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, estadoTrasPesaje(tt.estado, tt.sinPesar))
		})
	}
}

func TestEstadoInicial(t *testing.T) {
	pesada := Linea{Kilos: decimal.RequireFromString("2.5"), Unidades: 2}
	sinPesar := Linea{Kilos: decimal.Zero, Unidades: 1}

	tests := []struct {
		name   string
		lineas []Linea
		want   Estado
	}{
		{"todas pesadas", []Linea{pesada, pesada}, EstadoPreparado},
		{"alguna sin pesar", []Linea{pesada, sinPesar}, EstadoReservado},
		{"todas sin pesar", []Linea{sinPesar}, EstadoReservado},
		{"sin líneas", nil, EstadoPreparado},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstadoInicial(tt.lineas))
		})
	}
}
