package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/frigosur/backoffice/internal/redisx"
	"github.com/frigosur/backoffice/internal/stock"
)

type StockHandler struct {
	Repo  *stock.Repo
	Redis *redis.Client
}

func (h *StockHandler) Register(r *chi.Mux) {
	r.Get("/stock", h.getStock)
}

// getStock sirve el tablero de stock. El snapshot se recalcula desde la base
// y se cachea con TTL corto; cualquier pedido, anulación o factura lo
// invalida.
func (h *StockHandler) getStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s, err := h.Redis.Get(ctx, redisx.KeyStockSnapshot).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	snaps, err := h.Repo.List(ctx)
	if err != nil {
		errJSON(w, http.StatusInternalServerError, err)
		return
	}
	if snaps == nil {
		snaps = []stock.Snapshot{}
	}

	if b, err := json.Marshal(snaps); err == nil {
		_ = h.Redis.Set(ctx, redisx.KeyStockSnapshot, b, redisx.TTLStockSnapshot).Err()
	}
	writeJSON(w, http.StatusOK, snaps)
}
