package pedidos

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductoRefUnmarshal(t *testing.T) {
	t.Run("acepta id numérico", func(t *testing.T) {
		var u KilosUpdate
		require.NoError(t, json.Unmarshal([]byte(`{"producto": 7, "cantidad_kilos": "2.5"}`), &u))
		assert.Equal(t, int64(7), u.Producto.ID)
	})

	t.Run("acepta objeto con id", func(t *testing.T) {
		var u KilosUpdate
		require.NoError(t, json.Unmarshal([]byte(`{"producto": {"id": 7, "nombre": "Vacío"}}`), &u))
		assert.Equal(t, int64(7), u.Producto.ID)
	})

	t.Run("rechaza otros formatos", func(t *testing.T) {
		var u KilosUpdate
		assert.Error(t, json.Unmarshal([]byte(`{"producto": "siete"}`), &u))
	})
}
