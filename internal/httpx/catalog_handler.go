package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/frigosur/backoffice/internal/catalog"
)

type CatalogHandler struct {
	Repo *catalog.Repo
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/productos", h.listProductos)
	r.Post("/productos/crear", h.crearProducto)
	r.Put("/productos/{id}", h.actualizarProducto)
}

func (h *CatalogHandler) listProductos(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.List(ctx)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	if ps == nil {
		ps = []catalog.Producto{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) crearProducto(w http.ResponseWriter, r *http.Request) {
	var p catalog.Producto
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}
	if p.Nombre == "" || !p.PrecioPorKilo.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "faltan campos"})
		return
	}
	if p.Estado == "" {
		p.Estado = catalog.EstadoDisponible
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	creado, err := h.Repo.Crear(ctx, p)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, creado)
}

func (h *CatalogHandler) actualizarProducto(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var c catalog.Cambios
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "json inválido"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.Actualizar(ctx, id, c)
	if errors.Is(err, catalog.ErrProductoInexistente) {
		errJSON(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
