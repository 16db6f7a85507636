package catalog

import "github.com/shopspring/decimal"

const (
	EstadoDisponible  = "disponible"
	EstadoAgotado     = "agotado"
	EstadoDesactivado = "desactivado"
)

// Producto es el snapshot de catálogo que consume el resto del sistema.
// Los campos opcionales se resuelven al leer de la base: acá nunca hay nil.
type Producto struct {
	ID            int64           `json:"id"`
	Nombre        string          `json:"nombre"`
	Descripcion   string          `json:"descripcion,omitempty"`
	Categoria     string          `json:"categoria,omitempty"`
	PrecioPorKilo decimal.Decimal `json:"precio_por_kilo"`
	// PesoMinimo es el mínimo de kilos por unidad exigido al pesar.
	// Cero significa sin restricción.
	PesoMinimo decimal.Decimal `json:"peso_minimo"`
	Estado     string          `json:"estado"`
}
