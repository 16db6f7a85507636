package facturas

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrFacturaInexistente = errors.New("factura no encontrada")
	ErrFacturaDuplicada   = errors.New("ya existe una factura con ese número")
	ErrFacturaYaPagada    = errors.New("la factura ya está pagada")
	ErrSinDetalles        = errors.New("la factura no tiene detalles")
)

type Repo struct{ DB *pgxpool.Pool }

// Crear registra la factura del proveedor y da de alta una entrada de stock
// por cada detalle. El costo total del detalle se deriva de kilos por costo
// cuando no viene informado; el subtotal de la factura, de la suma de los
// detalles.
func (r *Repo) Crear(ctx context.Context, f Factura) error {
	if len(f.Detalles) == 0 {
		return ErrSinDetalles
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	fecha := f.Fecha
	if fecha.IsZero() {
		fecha = time.Now()
	}

	subtotal := decimal.Zero
	for i := range f.Detalles {
		d := &f.Detalles[i]
		if d.CostoTotal.IsZero() {
			d.CostoTotal = d.CantidadKilos.Mul(d.CostoPorKilo)
		}
		subtotal = subtotal.Add(d.CostoTotal)
	}
	if f.Subtotal.IsZero() {
		f.Subtotal = subtotal
	}
	if f.Total.IsZero() {
		f.Total = f.Subtotal.Add(f.IVA)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO facturas(numero_factura, proveedor_id, fecha, subtotal, iva, total)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		f.NumeroFactura, f.ProveedorID, fecha, f.Subtotal, f.IVA, f.Total)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrFacturaDuplicada, f.NumeroFactura)
	}
	if err != nil {
		return err
	}

	for _, d := range f.Detalles {
		_, err = tx.Exec(ctx, `
			INSERT INTO detalle_facturas(numero_factura, producto_id, cantidad_unidades,
				cantidad_kilos, costo_por_kilo, costo_total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			f.NumeroFactura, d.ProductoID, d.CantidadUnidades,
			d.CantidadKilos, d.CostoPorKilo, d.CostoTotal)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO entradas_producto(numero_factura, producto_id, cantidad_kilos,
				cantidad_unidades, costo_por_kilo, fecha_entrada)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			f.NumeroFactura, d.ProductoID, d.CantidadKilos,
			d.CantidadUnidades, d.CostoPorKilo, fecha)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Pagar marca la factura como pagada. El pago es único por factura.
func (r *Repo) Pagar(ctx context.Context, numeroFactura string, monto decimal.Decimal, fecha time.Time) error {
	if fecha.IsZero() {
		fecha = time.Now()
	}

	var existe bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM facturas WHERE numero_factura=$1)`, numeroFactura).Scan(&existe)
	if err != nil {
		return err
	}
	if !existe {
		return fmt.Errorf("%w: %s", ErrFacturaInexistente, numeroFactura)
	}

	_, err = r.DB.Exec(ctx, `
		INSERT INTO pagos_factura(numero_factura, fecha_de_pago, monto_del_pago)
		VALUES ($1, $2, $3)`, numeroFactura, fecha, monto)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrFacturaYaPagada, numeroFactura)
	}
	return err
}

func (r *Repo) List(ctx context.Context) ([]Factura, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT f.numero_factura, f.proveedor_id, pr.nombre, f.fecha,
		       f.subtotal, f.iva, f.total,
		       pg.fecha_de_pago, pg.monto_del_pago
		FROM facturas f
		JOIN proveedores pr ON pr.id = f.proveedor_id
		LEFT JOIN pagos_factura pg ON pg.numero_factura = f.numero_factura
		ORDER BY f.fecha DESC, f.numero_factura`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facturas []Factura
	index := map[string]int{}
	var numeros []string
	for rows.Next() {
		var f Factura
		var fechaPago *time.Time
		var montoPago *decimal.Decimal
		err := rows.Scan(&f.NumeroFactura, &f.ProveedorID, &f.ProveedorNombre, &f.Fecha,
			&f.Subtotal, &f.IVA, &f.Total, &fechaPago, &montoPago)
		if err != nil {
			return nil, err
		}
		if fechaPago != nil && montoPago != nil {
			f.Pago = &PagoFactura{FechaDePago: *fechaPago, MontoDelPago: *montoPago}
		}
		f.Detalles = []DetalleFactura{}
		index[f.NumeroFactura] = len(facturas)
		numeros = append(numeros, f.NumeroFactura)
		facturas = append(facturas, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(facturas) == 0 {
		return facturas, nil
	}

	det, err := r.DB.Query(ctx, `
		SELECT df.numero_factura, df.id, df.producto_id, pr.nombre,
		       df.cantidad_unidades, df.cantidad_kilos, df.costo_por_kilo, df.costo_total
		FROM detalle_facturas df
		JOIN productos pr ON pr.id = df.producto_id
		WHERE df.numero_factura = ANY($1)
		ORDER BY df.id`, numeros)
	if err != nil {
		return nil, err
	}
	defer det.Close()

	for det.Next() {
		var numero string
		var d DetalleFactura
		err := det.Scan(&numero, &d.ID, &d.ProductoID, &d.ProductoNombre,
			&d.CantidadUnidades, &d.CantidadKilos, &d.CostoPorKilo, &d.CostoTotal)
		if err != nil {
			return nil, err
		}
		if i, ok := index[numero]; ok {
			facturas[i].Detalles = append(facturas[i].Detalles, d)
		}
	}
	return facturas, det.Err()
}

// ListDetalles alimenta la pantalla de entradas de inventario.
func (r *Repo) ListDetalles(ctx context.Context) ([]DetalleEntrada, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT df.id, df.numero_factura, pv.nombre, pr.nombre,
		       df.cantidad_unidades, df.cantidad_kilos, df.costo_por_kilo,
		       df.costo_total, f.fecha
		FROM detalle_facturas df
		JOIN facturas f ON f.numero_factura = df.numero_factura
		JOIN proveedores pv ON pv.id = f.proveedor_id
		JOIN productos pr ON pr.id = df.producto_id
		ORDER BY f.fecha DESC, df.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DetalleEntrada
	for rows.Next() {
		var d DetalleEntrada
		err := rows.Scan(&d.ID, &d.NumeroFactura, &d.ProveedorNombre, &d.ProductoNombre,
			&d.CantidadUnidades, &d.CantidadKilos, &d.CostoPorKilo, &d.CostoTotal, &d.Fecha)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
