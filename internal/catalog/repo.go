package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrProductoInexistente = errors.New("producto no encontrado")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context) ([]Producto, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, nombre, descripcion, categoria, precio_por_kilo, peso_minimo, estado
		FROM productos ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Producto
	for rows.Next() {
		p, err := scanProducto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByIDs devuelve los productos pedidos indexados por id. Los ids que no
// existen simplemente no aparecen en el mapa; el caller decide si eso es error.
func (r *Repo) GetByIDs(ctx context.Context, ids []int64) (map[int64]Producto, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, nombre, descripcion, categoria, precio_por_kilo, peso_minimo, estado
		FROM productos WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]Producto, len(ids))
	for rows.Next() {
		p, err := scanProducto(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *Repo) Crear(ctx context.Context, p Producto) (Producto, error) {
	if p.Estado == "" {
		p.Estado = EstadoDisponible
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO productos(nombre, descripcion, categoria, precio_por_kilo, peso_minimo, estado)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, $6)
		RETURNING id`,
		p.Nombre, p.Descripcion, p.Categoria, p.PrecioPorKilo, p.PesoMinimo, p.Estado,
	).Scan(&p.ID)
	if err != nil {
		return Producto{}, err
	}
	return p, nil
}

// Cambios describe una actualización parcial: los campos nil no se tocan.
type Cambios struct {
	Nombre        *string          `json:"nombre"`
	Descripcion   *string          `json:"descripcion"`
	Categoria     *string          `json:"categoria"`
	PrecioPorKilo *decimal.Decimal `json:"precio_por_kilo"`
	PesoMinimo    *decimal.Decimal `json:"peso_minimo"`
	Estado        *string          `json:"estado"`
}

func (r *Repo) Actualizar(ctx context.Context, id int64, c Cambios) (Producto, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE productos SET
			nombre          = COALESCE($2, nombre),
			descripcion     = COALESCE($3, descripcion),
			categoria       = COALESCE($4, categoria),
			precio_por_kilo = COALESCE($5, precio_por_kilo),
			peso_minimo     = COALESCE($6, peso_minimo),
			estado          = COALESCE($7, estado)
		WHERE id = $1
		RETURNING id, nombre, descripcion, categoria, precio_por_kilo, peso_minimo, estado`,
		id, c.Nombre, c.Descripcion, c.Categoria, c.PrecioPorKilo, c.PesoMinimo, c.Estado)

	p, err := scanProducto(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Producto{}, ErrProductoInexistente
	}
	if err != nil {
		return Producto{}, err
	}
	return p, nil
}

func scanProducto(row pgx.Row) (Producto, error) {
	var p Producto
	var desc, cat *string
	if err := row.Scan(&p.ID, &p.Nombre, &desc, &cat, &p.PrecioPorKilo, &p.PesoMinimo, &p.Estado); err != nil {
		return Producto{}, err
	}
	if desc != nil {
		p.Descripcion = *desc
	}
	if cat != nil {
		p.Categoria = *cat
	}
	return p, nil
}
