package stock

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/frigosur/backoffice/internal/catalog"
)

type Repo struct {
	DB       *pgxpool.Pool
	Catalogo *catalog.Repo
}

// List arma el snapshot de stock de todos los productos del catálogo.
// Las entradas salen de detalle_facturas (compras, inmutables) y las salidas
// de detalle_pedidos excluyendo pedidos anulados.
func (r *Repo) List(ctx context.Context) ([]Snapshot, error) {
	productos, err := r.Catalogo.List(ctx)
	if err != nil {
		return nil, err
	}

	movs, err := r.movimientos(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Snapshot, 0, len(productos))
	for _, p := range productos {
		out = append(out, Build(p, movs[p.ID]))
	}
	return out, nil
}

// Map devuelve los snapshots indexados por producto.
func (r *Repo) Map(ctx context.Context) (map[int64]Snapshot, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]Snapshot, len(list))
	for _, s := range list {
		out[s.ProductoID] = s
	}
	return out, nil
}

func (r *Repo) movimientos(ctx context.Context) (map[int64]Movimientos, error) {
	movs := map[int64]Movimientos{}

	rows, err := r.DB.Query(ctx, `
		SELECT producto_id,
		       COALESCE(SUM(cantidad_unidades), 0),
		       COALESCE(SUM(cantidad_kilos), 0)
		FROM detalle_facturas
		GROUP BY producto_id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id int64
		var unidades int
		var kilos decimal.Decimal
		if err := rows.Scan(&id, &unidades, &kilos); err != nil {
			rows.Close()
			return nil, err
		}
		m := movs[id]
		m.EntradasUnidades = unidades
		m.EntradasKilos = kilos
		movs[id] = m
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx, `
		SELECT dp.producto_id,
		       COALESCE(SUM(dp.cantidad_unidades), 0),
		       COALESCE(SUM(dp.cantidad_kilos), 0),
		       COALESCE(SUM(dp.cantidad_unidades) FILTER (WHERE dp.cantidad_kilos = 0), 0)
		FROM detalle_pedidos dp
		JOIN pedidos p ON p.id = dp.pedido_id
		WHERE p.estado <> 'Anulado'
		GROUP BY dp.producto_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var unidades, reservadas int
		var kilos decimal.Decimal
		if err := rows.Scan(&id, &unidades, &kilos, &reservadas); err != nil {
			return nil, err
		}
		m := movs[id]
		m.SalidasUnidades = unidades
		m.SalidasKilos = kilos
		m.UnidadesReservadas = reservadas
		movs[id] = m
	}
	return movs, rows.Err()
}
