package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/frigosur/backoffice/internal/catalog"
	"github.com/frigosur/backoffice/internal/clientes"
	kafkax "github.com/frigosur/backoffice/internal/kafka"
	"github.com/frigosur/backoffice/internal/pedidos"
	"github.com/frigosur/backoffice/internal/redisx"
	"github.com/frigosur/backoffice/internal/stock"
)

type PedidosHandler struct {
	Repo     *pedidos.Repo
	Catalogo *catalog.Repo
	Stock    *stock.Repo
	Clientes *clientes.Repo
	Creados  *kafkax.Producer
	Anulados *kafkax.Producer
	Redis    *redis.Client
	Service  string
}

type CrearPedidoReq struct {
	Cliente       int64                  `json:"cliente"`
	Vendedor      int64                  `json:"vendedor"`
	Observaciones string                 `json:"observaciones"`
	Detalles      []pedidos.DetalleInput `json:"detalles"`
}

type CancelarPedidoReq struct {
	Pedido int64 `json:"pedido"`
}

type ActualizarKilosReq struct {
	Detalles []pedidos.KilosUpdate `json:"detalles"`
}

func (h *PedidosHandler) Register(r *chi.Mux) {
	r.Get("/pedidos", h.listPedidos)
	r.Get("/pedidos/{id}", h.getPedido)
	r.Post("/pedidos/crear", h.crearPedido)
	r.Post("/pedidos/cancelar", h.cancelarPedido)
	r.Post("/pedidos/actualizar_kilos/{id}", h.actualizarKilos)
	r.Put("/pedidos/{id}", h.actualizarPedido)
	r.Get("/inventario/detalle-pedidos", h.listDetalles)
}

// crearPedido rearma el borrador del lado del servidor con las mismas reglas
// del armado interactivo (tope de stock, líneas sin pesar, peso mínimo) y
// recién entonces lo persiste. Cualquier regla que falle corta con 400 antes
// de tocar el stock.
func (h *PedidosHandler) crearPedido(w http.ResponseWriter, r *http.Request) {
	var req CrearPedidoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}
	if req.Cliente == 0 || req.Vendedor == 0 || len(req.Detalles) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "faltan campos"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Clientes.GetCliente(ctx, req.Cliente); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, clientes.ErrClienteInexistente) {
			code = http.StatusBadRequest
		}
		errJSON(w, code, err)
		return
	}

	ids := make([]int64, 0, len(req.Detalles))
	for _, d := range req.Detalles {
		ids = append(ids, d.Producto)
	}
	productos, err := h.Catalogo.GetByIDs(ctx, ids)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	snaps, err := h.Stock.Map(ctx)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}

	b, err := pedidos.ArmarBorrador(req.Cliente, req.Observaciones, req.Detalles, productos, snaps)
	if err != nil {
		errJSON(w, http.StatusBadRequest, err)
		return
	}

	pedidoID, err := h.Repo.Crear(ctx, b, req.Vendedor)
	if err != nil {
		code := http.StatusInternalServerError
		var pm *pedidos.PesoMinimoError
		if errors.Is(err, pedidos.ErrStockInsuficiente) || errors.As(err, &pm) ||
			errors.Is(err, pedidos.ErrSinCliente) || errors.Is(err, pedidos.ErrSinProductos) {
			code = http.StatusBadRequest
		}
		errJSON(w, code, err)
		return
	}

	pedido, err := h.Repo.Get(ctx, pedidoID)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}

	h.cachear(ctx, pedido)
	_ = h.Redis.Del(ctx, redisx.KeyStockSnapshot).Err()

	items := make([]pedidos.ItemPedido, 0, len(b.Lineas))
	for _, l := range b.Lineas {
		items = append(items, pedidos.ItemPedido{
			ProductoID:       l.ProductoID,
			CantidadKilos:    l.Kilos,
			CantidadUnidades: l.Unidades,
		})
	}
	ev := pedidos.Envelope{
		EventID:       uuid.NewString(),
		EventType:     pedidos.EventPedidoCreado,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: strconv.FormatInt(pedidoID, 10),
	}
	ev.Payload = kafkax.MustMarshal(pedidos.PedidoCreadoPayload{
		PedidoID:   pedidoID,
		ClienteID:  req.Cliente,
		VendedorID: req.Vendedor,
		Estado:     pedido.Estado,
		Total:      pedido.Total,
		Items:      items,
	})
	h.Creados.Publish(pedidos.PartitionKey(pedidoID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(pedidos.EventPedidoCreado)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusCreated, pedido)
}

func (h *PedidosHandler) cancelarPedido(w http.ResponseWriter, r *http.Request) {
	var req CancelarPedidoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pedido == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Anular(ctx, req.Pedido); err != nil {
		switch {
		case errors.Is(err, pedidos.ErrPedidoInexistente):
			errJSON(w, http.StatusNotFound, err)
		case errors.Is(err, pedidos.ErrPedidoYaAnulado):
			errJSON(w, http.StatusConflict, err)
		default:
			errJSON(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.invalidar(ctx, req.Pedido)

	ev := pedidos.Envelope{
		EventID:       uuid.NewString(),
		EventType:     pedidos.EventPedidoAnulado,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: strconv.FormatInt(req.Pedido, 10),
	}
	ev.Payload = kafkax.MustMarshal(pedidos.PedidoAnuladoPayload{PedidoID: req.Pedido})
	h.Anulados.Publish(pedidos.PartitionKey(req.Pedido), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(pedidos.EventPedidoAnulado)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusOK, map[string]any{"pedido": req.Pedido, "estado": pedidos.EstadoAnulado})
}

func (h *PedidosHandler) actualizarKilos(w http.ResponseWriter, r *http.Request) {
	pedidoID, ok := idParam(w, r)
	if !ok {
		return
	}
	var req ActualizarKilosReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Detalles) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.ActualizarKilos(ctx, pedidoID, req.Detalles); err != nil {
		switch {
		case errors.Is(err, pedidos.ErrPedidoInexistente):
			errJSON(w, http.StatusNotFound, err)
		case errors.Is(err, pedidos.ErrPedidoAnulado), errors.Is(err, pedidos.ErrDetalleInexistente):
			errJSON(w, http.StatusBadRequest, err)
		default:
			errJSON(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.invalidar(ctx, pedidoID)

	pedido, err := h.Repo.Get(ctx, pedidoID)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	h.cachear(ctx, pedido)
	writeJSON(w, http.StatusOK, pedido)
}

func (h *PedidosHandler) actualizarPedido(w http.ResponseWriter, r *http.Request) {
	pedidoID, ok := idParam(w, r)
	if !ok {
		return
	}
	var req pedidos.ActualizacionPedido
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Actualizar(ctx, pedidoID, req); err != nil {
		switch {
		case errors.Is(err, pedidos.ErrPedidoInexistente):
			errJSON(w, http.StatusNotFound, err)
		case errors.Is(err, pedidos.ErrTransicionInvalida), errors.Is(err, pedidos.ErrDetalleInexistente):
			errJSON(w, http.StatusBadRequest, err)
		default:
			errJSON(w, http.StatusInternalServerError, err)
		}
		return
	}

	h.invalidar(ctx, pedidoID)

	pedido, err := h.Repo.Get(ctx, pedidoID)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	h.cachear(ctx, pedido)
	writeJSON(w, http.StatusOK, pedido)
}

func (h *PedidosHandler) getPedido(w http.ResponseWriter, r *http.Request) {
	pedidoID, ok := idParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) cache
	key := fmt.Sprintf(redisx.KeyPedido, pedidoID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	// 2) fallback a la base
	pedido, err := h.Repo.Get(ctx, pedidoID)
	if errors.Is(err, pedidos.ErrPedidoInexistente) {
		errJSON(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	h.cachear(ctx, pedido)
	writeJSON(w, http.StatusOK, pedido)
}

func (h *PedidosHandler) listPedidos(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ps, err := h.Repo.List(ctx)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	if ps == nil {
		ps = []pedidos.Pedido{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *PedidosHandler) listDetalles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ds, err := h.Repo.ListDetalles(ctx)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	if ds == nil {
		ds = []pedidos.DetalleMovimiento{}
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *PedidosHandler) cachear(ctx context.Context, p pedidos.Pedido) {
	key := fmt.Sprintf(redisx.KeyPedido, p.ID)
	if b, err := json.Marshal(p); err == nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLPedidoCache).Err()
	}
}

func (h *PedidosHandler) invalidar(ctx context.Context, pedidoID int64) {
	_ = h.Redis.Del(ctx,
		fmt.Sprintf(redisx.KeyPedido, pedidoID),
		redisx.KeyStockSnapshot,
	).Err()
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id inválido"})
		return 0, false
	}
	return id, true
}
