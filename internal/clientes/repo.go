package clientes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrVendedorInexistente = errors.New("vendedor no encontrado")
	ErrClienteInexistente  = errors.New("cliente no encontrado")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListClientes(ctx context.Context) ([]Cliente, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.id, c.nombre, c.direccion, c.telefono, c.email,
		       v.id, v.nombre, v.sigla
		FROM clientes c
		JOIN vendedores v ON v.id = c.vendedor_id
		ORDER BY c.nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cliente
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) GetCliente(ctx context.Context, id int64) (Cliente, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT c.id, c.nombre, c.direccion, c.telefono, c.email,
		       v.id, v.nombre, v.sigla
		FROM clientes c
		JOIN vendedores v ON v.id = c.vendedor_id
		WHERE c.id = $1`, id)
	c, err := scanCliente(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cliente{}, ErrClienteInexistente
	}
	return c, err
}

func (r *Repo) CrearCliente(ctx context.Context, c Cliente) (Cliente, error) {
	// El vendedor se valida antes para distinguir "vendedor inexistente"
	// de cualquier otro error de inserción.
	var v Vendedor
	err := r.DB.QueryRow(ctx, `SELECT id, nombre, sigla FROM vendedores WHERE id=$1`,
		c.Vendedor.ID).Scan(&v.ID, &v.Nombre, &v.Sigla)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cliente{}, ErrVendedorInexistente
	}
	if err != nil {
		return Cliente{}, err
	}

	err = r.DB.QueryRow(ctx, `
		INSERT INTO clientes(nombre, direccion, telefono, email, vendedor_id)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), $5)
		RETURNING id`,
		c.Nombre, c.Direccion, c.Telefono, c.Email, v.ID).Scan(&c.ID)
	if err != nil {
		return Cliente{}, err
	}
	c.Vendedor = v
	return c, nil
}

func (r *Repo) ListVendedores(ctx context.Context) ([]Vendedor, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, nombre, sigla FROM vendedores ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vendedor
	for rows.Next() {
		var v Vendedor
		if err := rows.Scan(&v.ID, &v.Nombre, &v.Sigla); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) ListProveedores(ctx context.Context) ([]Proveedor, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, nombre FROM proveedores ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Proveedor
	for rows.Next() {
		var p Proveedor
		if err := rows.Scan(&p.ID, &p.Nombre); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanCliente(row pgx.Row) (Cliente, error) {
	var c Cliente
	var tel, email *string
	err := row.Scan(&c.ID, &c.Nombre, &c.Direccion, &tel, &email,
		&c.Vendedor.ID, &c.Vendedor.Nombre, &c.Vendedor.Sigla)
	if err != nil {
		return Cliente{}, err
	}
	if tel != nil {
		c.Telefono = *tel
	}
	if email != nil {
		c.Email = *email
	}
	return c, nil
}
