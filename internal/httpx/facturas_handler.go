package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/frigosur/backoffice/internal/facturas"
	kafkax "github.com/frigosur/backoffice/internal/kafka"
	"github.com/frigosur/backoffice/internal/pedidos"
	"github.com/frigosur/backoffice/internal/redisx"
)

type FacturasHandler struct {
	Repo     *facturas.Repo
	Ingresos *kafkax.Producer
	Redis    *redis.Client
	Service  string
}

type PagarFacturaReq struct {
	NumeroFactura string          `json:"numero_factura"`
	Monto         decimal.Decimal `json:"monto_del_pago"`
	Fecha         time.Time       `json:"fecha_de_pago"`
}

func (h *FacturasHandler) Register(r *chi.Mux) {
	r.Get("/facturas", h.listFacturas)
	r.Post("/facturas/crear", h.crearFactura)
	r.Post("/facturas/pagar", h.pagarFactura)
	r.Get("/inventario/detalle-facturas", h.listDetalles)
}

func (h *FacturasHandler) listFacturas(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	fs, err := h.Repo.List(ctx)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	if fs == nil {
		fs = []facturas.Factura{}
	}
	writeJSON(w, http.StatusOK, fs)
}

// crearFactura registra la compra y sus entradas de stock. El snapshot de
// stock cacheado queda viejo, así que se invalida acá además del consumidor
// de eventos.
func (h *FacturasHandler) crearFactura(w http.ResponseWriter, r *http.Request) {
	var f facturas.Factura
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}
	if f.NumeroFactura == "" || f.ProveedorID == 0 || len(f.Detalles) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "faltan campos"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Crear(ctx, f); err != nil {
		switch {
		case errors.Is(err, facturas.ErrFacturaDuplicada):
			errJSON(w, http.StatusConflict, err)
		case errors.Is(err, facturas.ErrSinDetalles):
			errJSON(w, http.StatusBadRequest, err)
		default:
			errJSON(w, http.StatusInternalServerError, err)
		}
		return
	}

	_ = h.Redis.Del(ctx, redisx.KeyStockSnapshot).Err()

	productos := make([]int64, 0, len(f.Detalles))
	for _, d := range f.Detalles {
		productos = append(productos, d.ProductoID)
	}
	ev := pedidos.Envelope{
		EventID:       uuid.NewString(),
		EventType:     pedidos.EventFacturaIngresada,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: f.NumeroFactura,
	}
	ev.Payload = kafkax.MustMarshal(pedidos.FacturaIngresadaPayload{
		NumeroFactura: f.NumeroFactura,
		ProveedorID:   f.ProveedorID,
		Productos:     productos,
	})
	h.Ingresos.Publish([]byte(f.NumeroFactura), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(pedidos.EventFacturaIngresada)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusCreated, map[string]string{"numero_factura": f.NumeroFactura})
}

func (h *FacturasHandler) pagarFactura(w http.ResponseWriter, r *http.Request) {
	var req PagarFacturaReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}
	if req.NumeroFactura == "" || !req.Monto.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "faltan campos"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Repo.Pagar(ctx, req.NumeroFactura, req.Monto, req.Fecha)
	switch {
	case errors.Is(err, facturas.ErrFacturaInexistente):
		errJSON(w, http.StatusNotFound, err)
		return
	case errors.Is(err, facturas.ErrFacturaYaPagada):
		errJSON(w, http.StatusConflict, err)
		return
	case err != nil:
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"numero_factura": req.NumeroFactura, "estado": "pagada"})
}

func (h *FacturasHandler) listDetalles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ds, err := h.Repo.ListDetalles(ctx)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	if ds == nil {
		ds = []facturas.DetalleEntrada{}
	}
	writeJSON(w, http.StatusOK, ds)
}
