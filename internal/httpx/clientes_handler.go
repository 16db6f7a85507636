package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/frigosur/backoffice/internal/clientes"
)

type ClientesHandler struct {
	Repo *clientes.Repo
}

func (h *ClientesHandler) Register(r *chi.Mux) {
	r.Get("/clientes", h.listClientes)
	r.Post("/clientes/crear", h.crearCliente)
	r.Get("/clientes/{id}", h.getCliente)
	r.Get("/vendedores", h.listVendedores)
	r.Get("/proveedores", h.listProveedores)
	r.Get("/pagos-vendedor", h.listPagos)
	r.Post("/pagos-vendedor", h.crearPago)
}

func (h *ClientesHandler) listClientes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Repo.ListClientes(ctx)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	if cs == nil {
		cs = []clientes.Cliente{}
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *ClientesHandler) getCliente(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Repo.GetCliente(ctx, id)
	if errors.Is(err, clientes.ErrClienteInexistente) {
		errJSON(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type CrearClienteReq struct {
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Email     string `json:"email"`
	Vendedor  int64  `json:"vendedor"`
}

func (h *ClientesHandler) crearCliente(w http.ResponseWriter, r *http.Request) {
	var req CrearClienteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}
	if req.Nombre == "" || req.Vendedor == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "faltan campos"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Repo.CrearCliente(ctx, clientes.Cliente{
		Nombre:    req.Nombre,
		Direccion: req.Direccion,
		Telefono:  req.Telefono,
		Email:     req.Email,
		Vendedor:  clientes.Vendedor{ID: req.Vendedor},
	})
	if errors.Is(err, clientes.ErrVendedorInexistente) {
		errJSON(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ClientesHandler) listVendedores(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	vs, err := h.Repo.ListVendedores(ctx)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	if vs == nil {
		vs = []clientes.Vendedor{}
	}
	writeJSON(w, http.StatusOK, vs)
}

func (h *ClientesHandler) listProveedores(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.ListProveedores(ctx)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	if ps == nil {
		ps = []clientes.Proveedor{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// listPagos acepta ?vendedor=N para filtrar los pagos de un solo vendedor.
func (h *ClientesHandler) listPagos(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var vendedorID *int64
	if v := r.URL.Query().Get("vendedor"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "vendedor inválido"})
			return
		}
		vendedorID = &id
	}

	pagos, err := h.Repo.ListPagos(ctx, vendedorID)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	if pagos == nil {
		pagos = []clientes.PagoVendedor{}
	}
	writeJSON(w, http.StatusOK, pagos)
}

func (h *ClientesHandler) crearPago(w http.ResponseWriter, r *http.Request) {
	var p clientes.PagoVendedor
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}
	if p.VendedorID == 0 || !p.Monto.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "faltan campos"})
		return
	}
	if p.Tipo == "" {
		p.Tipo = clientes.TipoPago
	}
	if p.Tipo != clientes.TipoPago && p.Tipo != clientes.TipoDescuento {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tipo inválido"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	creado, err := h.Repo.CrearPago(ctx, p)
	if errors.Is(err, clientes.ErrVendedorInexistente) {
		errJSON(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, creado)
}
