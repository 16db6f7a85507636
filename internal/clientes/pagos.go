package clientes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ListPagos devuelve los pagos a vendedores, más recientes primero.
// Con vendedorID nil trae todos.
func (r *Repo) ListPagos(ctx context.Context, vendedorID *int64) ([]PagoVendedor, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, vendedor_id, monto, comentario, tipo, fecha, comprobante
		FROM pagos_vendedor
		WHERE $1::bigint IS NULL OR vendedor_id = $1
		ORDER BY fecha DESC`, vendedorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PagoVendedor
	for rows.Next() {
		var p PagoVendedor
		var comentario, comprobante *string
		if err := rows.Scan(&p.ID, &p.VendedorID, &p.Monto, &comentario, &p.Tipo, &p.Fecha, &comprobante); err != nil {
			return nil, err
		}
		if comentario != nil {
			p.Comentario = *comentario
		}
		if comprobante != nil {
			p.Comprobante = *comprobante
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) CrearPago(ctx context.Context, p PagoVendedor) (PagoVendedor, error) {
	if p.Tipo == "" {
		p.Tipo = TipoPago
	}

	err := r.DB.QueryRow(ctx, `SELECT id FROM vendedores WHERE id=$1`, p.VendedorID).Scan(&p.VendedorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return PagoVendedor{}, ErrVendedorInexistente
	}
	if err != nil {
		return PagoVendedor{}, err
	}

	err = r.DB.QueryRow(ctx, `
		INSERT INTO pagos_vendedor(vendedor_id, monto, comentario, tipo, comprobante)
		VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''))
		RETURNING id, fecha`,
		p.VendedorID, p.Monto, p.Comentario, p.Tipo, p.Comprobante).Scan(&p.ID, &p.Fecha)
	if err != nil {
		return PagoVendedor{}, err
	}
	return p, nil
}
