package pedidos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrPedidoInexistente  = errors.New("pedido no encontrado")
	ErrPedidoYaAnulado    = errors.New("el pedido ya está anulado")
	ErrPedidoAnulado      = errors.New("el pedido está anulado y no admite cambios")
	ErrTransicionInvalida = errors.New("transición de estado inválida")
	ErrDetalleInexistente = errors.New("el pedido no tiene detalle para ese producto")
)

type Repo struct{ DB *pgxpool.Pool }

// Crear persiste el borrador como pedido. Corre la validación del borrador
// como última compuerta, bloquea las entradas de stock por producto
// (FOR UPDATE) y las consume por FIFO registrando de qué factura salió cada
// unidad. Si algún producto se quedó sin entradas no se commitea nada.
func (r *Repo) Crear(ctx context.Context, b *Borrador, vendedorID int64) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	estado := EstadoInicial(b.Lineas)
	var pedidoID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO pedidos(cliente_id, vendedor_id, estado, total, observaciones)
		VALUES ($1, $2, $3, 0, NULLIF($4,''))
		RETURNING id`,
		b.ClienteID, vendedorID, estado, b.Observaciones).Scan(&pedidoID)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, l := range b.Lineas {
		entradas, err := lockEntradas(ctx, tx, l.ProductoID)
		if err != nil {
			return 0, err
		}

		res, err := ConsumirFIFO(entradas, l.Unidades)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", err, l.ProductoNombre)
		}
		if err := aplicarConsumo(ctx, tx, res); err != nil {
			return 0, err
		}

		// Una línea sin pesar reserva las unidades pero todavía no vende:
		// venta y costo quedan en 0 hasta que se carguen los kilos.
		totalVenta := decimal.Zero
		costoTotal := decimal.Zero
		costoXkilo := decimal.Zero
		if l.Kilos.IsPositive() && l.Unidades > 0 {
			totalVenta = l.Subtotal
			costoTotal = res.Costo
			costoXkilo = res.Costo.Div(decimal.NewFromInt(int64(l.Unidades)))
			total = total.Add(totalVenta)
		}

		var detalleID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO detalle_pedidos(pedido_id, producto_id, cantidad_kilos,
				cantidad_unidades, precio_venta, total_venta, costo_por_kilo, total_costo)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			pedidoID, l.ProductoID, l.Kilos, l.Unidades,
			l.PrecioUnitario, totalVenta, costoXkilo, costoTotal).Scan(&detalleID)
		if err != nil {
			return 0, err
		}

		for _, con := range res.Consumos {
			_, err = tx.Exec(ctx, `
				INSERT INTO factura_detalle_pedido(detalle_pedido_id, numero_factura,
					cantidad_unidades, costo_por_kilo)
				VALUES ($1, $2, $3, $4)`,
				detalleID, con.NumeroFactura, con.CantidadUnidades, con.CostoPorKilo)
			if err != nil {
				return 0, err
			}
		}
	}

	if _, err = tx.Exec(ctx, `UPDATE pedidos SET total=$2 WHERE id=$1`, pedidoID, total); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return pedidoID, nil
}

// Anular revierte el stock consumido por el pedido, devolviendo las unidades
// a entradas_producto con su costo original y fechadas antes de la entrada
// más vieja para mantener el orden FIFO. Los detalles se conservan como
// historial; solo cambia el estado.
func (r *Repo) Anular(ctx context.Context, pedidoID int64) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var estado Estado
	err = tx.QueryRow(ctx, `SELECT estado FROM pedidos WHERE id=$1 FOR UPDATE`, pedidoID).Scan(&estado)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPedidoInexistente
	}
	if err != nil {
		return err
	}
	if estado == EstadoAnulado {
		return ErrPedidoYaAnulado
	}

	type det struct {
		id         int64
		productoID int64
		kilos      decimal.Decimal
		unidades   int
	}
	rows, err := tx.Query(ctx, `
		SELECT id, producto_id, cantidad_kilos, cantidad_unidades
		FROM detalle_pedidos WHERE pedido_id=$1`, pedidoID)
	if err != nil {
		return err
	}
	var dets []det
	for rows.Next() {
		var d det
		if err := rows.Scan(&d.id, &d.productoID, &d.kilos, &d.unidades); err != nil {
			rows.Close()
			return err
		}
		dets = append(dets, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, d := range dets {
		rel, err := tx.Query(ctx, `
			SELECT numero_factura, cantidad_unidades, costo_por_kilo
			FROM factura_detalle_pedido WHERE detalle_pedido_id=$1`, d.id)
		if err != nil {
			return err
		}
		var consumos []ConsumoFactura
		for rel.Next() {
			var c ConsumoFactura
			if err := rel.Scan(&c.NumeroFactura, &c.CantidadUnidades, &c.CostoPorKilo); err != nil {
				rel.Close()
				return err
			}
			consumos = append(consumos, c)
		}
		rel.Close()
		if err := rel.Err(); err != nil {
			return err
		}

		for _, c := range consumos {
			costo, err := costoOriginal(ctx, tx, c, d.productoID)
			if err != nil {
				return err
			}

			var minFecha *time.Time
			if err := tx.QueryRow(ctx, `
				SELECT MIN(fecha_entrada) FROM entradas_producto WHERE producto_id=$1`,
				d.productoID).Scan(&minFecha); err != nil {
				return err
			}
			fecha := time.Now()
			if minFecha != nil {
				fecha = minFecha.Add(-time.Second)
			}

			kilos := decimal.Zero
			if d.unidades > 0 {
				kilos = d.kilos.Div(decimal.NewFromInt(int64(d.unidades))).
					Mul(decimal.NewFromInt(int64(c.CantidadUnidades)))
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO entradas_producto(numero_factura, producto_id, cantidad_kilos,
					cantidad_unidades, costo_por_kilo, fecha_entrada)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				c.NumeroFactura, d.productoID, kilos, c.CantidadUnidades, costo, fecha)
			if err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE pedidos SET estado=$2 WHERE id=$1`, pedidoID, EstadoAnulado); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// KilosUpdate actualiza los kilos pesados de un producto del pedido.
type KilosUpdate struct {
	Producto      ProductoRef     `json:"producto"`
	CantidadKilos decimal.Decimal `json:"cantidad_kilos"`
}

// ActualizarKilos registra el pesaje posterior de un pedido reservado:
// actualiza kilos y subtotal por detalle y recalcula total y estado.
func (r *Repo) ActualizarKilos(ctx context.Context, pedidoID int64, updates []KilosUpdate) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	estado, err := lockPedido(ctx, tx, pedidoID)
	if err != nil {
		return err
	}
	if estado == EstadoAnulado {
		return ErrPedidoAnulado
	}

	for _, u := range updates {
		kilos := u.CantidadKilos
		if kilos.IsNegative() {
			kilos = decimal.Zero
		}
		ct, err := tx.Exec(ctx, `
			UPDATE detalle_pedidos
			SET cantidad_kilos = $3, total_venta = $3 * precio_venta
			WHERE pedido_id = $1 AND producto_id = $2`,
			pedidoID, u.Producto.ID, kilos)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("%w: producto=%d", ErrDetalleInexistente, u.Producto.ID)
		}
	}

	if _, err := recalcular(ctx, tx, pedidoID, estado); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ActualizacionPedido es el cuerpo del PUT: estado y/o cantidades.
type ActualizacionPedido struct {
	Estado   *Estado         `json:"estado"`
	Detalles []DetalleUpdate `json:"detalles"`
}

type DetalleUpdate struct {
	Producto         ProductoRef     `json:"producto"`
	CantidadKilos    decimal.Decimal `json:"cantidad_kilos"`
	CantidadUnidades int             `json:"cantidad_unidades"`
}

// Actualizar aplica ediciones post-creación: marcar pagado, ajustar kilos o
// unidades. Los cambios de estado pasan por la tabla de transiciones.
func (r *Repo) Actualizar(ctx context.Context, pedidoID int64, a ActualizacionPedido) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	estado, err := lockPedido(ctx, tx, pedidoID)
	if err != nil {
		return err
	}

	nuevoEstado := estado
	if a.Estado != nil && *a.Estado != estado {
		if !CanTransition(estado, *a.Estado) {
			return fmt.Errorf("%w: %s -> %s", ErrTransicionInvalida, estado, *a.Estado)
		}
		nuevoEstado = *a.Estado
	}

	for _, d := range a.Detalles {
		kilos := d.CantidadKilos
		if kilos.IsNegative() {
			kilos = decimal.Zero
		}
		unidades := d.CantidadUnidades
		if unidades < 0 {
			unidades = 0
		}
		ct, err := tx.Exec(ctx, `
			UPDATE detalle_pedidos
			SET cantidad_kilos = $3, cantidad_unidades = $4,
			    total_venta = $3 * precio_venta
			WHERE pedido_id = $1 AND producto_id = $2`,
			pedidoID, d.Producto.ID, kilos, unidades)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("%w: producto=%d", ErrDetalleInexistente, d.Producto.ID)
		}
	}

	if len(a.Detalles) > 0 {
		derivado, err := recalcular(ctx, tx, pedidoID, nuevoEstado)
		if err != nil {
			return err
		}
		// sin estado explícito en el request, el pesaje manda
		if a.Estado == nil {
			nuevoEstado = derivado
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE pedidos SET estado=$2 WHERE id=$1`, pedidoID, nuevoEstado); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) Get(ctx context.Context, pedidoID int64) (Pedido, error) {
	pedidos, err := r.query(ctx, `WHERE p.id = $1`, pedidoID)
	if err != nil {
		return Pedido{}, err
	}
	if len(pedidos) == 0 {
		return Pedido{}, ErrPedidoInexistente
	}
	return pedidos[0], nil
}

func (r *Repo) List(ctx context.Context) ([]Pedido, error) {
	return r.query(ctx, ``)
}

// ListDetalles alimenta la pantalla de salidas de inventario.
func (r *Repo) ListDetalles(ctx context.Context) ([]DetalleMovimiento, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT dp.id, dp.pedido_id, pr.nombre, c.nombre, v.nombre,
		       dp.cantidad_unidades, dp.cantidad_kilos, dp.total_venta, p.fecha
		FROM detalle_pedidos dp
		JOIN pedidos p ON p.id = dp.pedido_id
		JOIN productos pr ON pr.id = dp.producto_id
		JOIN clientes c ON c.id = p.cliente_id
		JOIN vendedores v ON v.id = p.vendedor_id
		ORDER BY p.fecha DESC, dp.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DetalleMovimiento
	for rows.Next() {
		var d DetalleMovimiento
		if err := rows.Scan(&d.ID, &d.PedidoID, &d.ProductoNombre, &d.ClienteNombre,
			&d.VendedorNombre, &d.CantidadUnidades, &d.CantidadKilos, &d.TotalVenta, &d.Fecha); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) query(ctx context.Context, where string, args ...any) ([]Pedido, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.fecha, p.estado, p.total,
		       c.id, c.nombre, c.direccion, c.telefono, c.email,
		       v.id, v.nombre, v.sigla
		FROM pedidos p
		JOIN clientes c ON c.id = p.cliente_id
		JOIN vendedores v ON v.id = p.vendedor_id
		`+where+`
		ORDER BY p.fecha DESC, p.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pedidos []Pedido
	index := map[int64]int{}
	var ids []int64
	for rows.Next() {
		var p Pedido
		var tel, email *string
		err := rows.Scan(&p.ID, &p.Fecha, &p.Estado, &p.Total,
			&p.Cliente.ID, &p.Cliente.Nombre, &p.Cliente.Direccion, &tel, &email,
			&p.Vendedor.ID, &p.Vendedor.Nombre, &p.Vendedor.Sigla)
		if err != nil {
			return nil, err
		}
		if tel != nil {
			p.Cliente.Telefono = *tel
		}
		if email != nil {
			p.Cliente.Email = *email
		}
		p.Cliente.Vendedor = p.Vendedor
		p.Detalles = []Detalle{}
		index[p.ID] = len(pedidos)
		ids = append(ids, p.ID)
		pedidos = append(pedidos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(pedidos) == 0 {
		return pedidos, nil
	}

	det, err := r.DB.Query(ctx, `
		SELECT dp.pedido_id, dp.id, dp.cantidad_unidades, dp.cantidad_kilos,
		       dp.precio_venta, dp.total_venta, dp.costo_por_kilo, dp.total_costo,
		       pr.id, pr.nombre, pr.descripcion, pr.categoria, pr.precio_por_kilo,
		       pr.peso_minimo, pr.estado,
		       COALESCE(array_agg(fdp.numero_factura) FILTER (WHERE fdp.numero_factura IS NOT NULL), '{}')
		FROM detalle_pedidos dp
		JOIN productos pr ON pr.id = dp.producto_id
		LEFT JOIN factura_detalle_pedido fdp ON fdp.detalle_pedido_id = dp.id
		WHERE dp.pedido_id = ANY($1)
		GROUP BY dp.pedido_id, dp.id, pr.id
		ORDER BY dp.id`, ids)
	if err != nil {
		return nil, err
	}
	defer det.Close()

	for det.Next() {
		var pedidoID int64
		var d Detalle
		var desc, cat *string
		err := det.Scan(&pedidoID, &d.ID, &d.CantidadUnidades, &d.CantidadKilos,
			&d.PrecioVenta, &d.TotalVenta, &d.CostoPorKilo, &d.TotalCosto,
			&d.Producto.ID, &d.Producto.Nombre, &desc, &cat, &d.Producto.PrecioPorKilo,
			&d.Producto.PesoMinimo, &d.Producto.Estado, &d.Facturas)
		if err != nil {
			return nil, err
		}
		if desc != nil {
			d.Producto.Descripcion = *desc
		}
		if cat != nil {
			d.Producto.Categoria = *cat
		}
		if i, ok := index[pedidoID]; ok {
			pedidos[i].Detalles = append(pedidos[i].Detalles, d)
		}
	}
	return pedidos, det.Err()
}

func lockPedido(ctx context.Context, tx pgx.Tx, pedidoID int64) (Estado, error) {
	var estado Estado
	err := tx.QueryRow(ctx, `SELECT estado FROM pedidos WHERE id=$1 FOR UPDATE`, pedidoID).Scan(&estado)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrPedidoInexistente
	}
	return estado, err
}

func lockEntradas(ctx context.Context, tx pgx.Tx, productoID int64) ([]Entrada, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, numero_factura, cantidad_unidades, cantidad_kilos, costo_por_kilo, fecha_entrada
		FROM entradas_producto
		WHERE producto_id = $1
		ORDER BY fecha_entrada, id
		FOR UPDATE`, productoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entrada
	for rows.Next() {
		var e Entrada
		if err := rows.Scan(&e.ID, &e.NumeroFactura, &e.CantidadUnidades,
			&e.CantidadKilos, &e.CostoPorKilo, &e.FechaEntrada); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func aplicarConsumo(ctx context.Context, tx pgx.Tx, res ResultadoFIFO) error {
	if len(res.Agotadas) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM entradas_producto WHERE id = ANY($1)`, res.Agotadas); err != nil {
			return err
		}
	}
	if res.Parcial != nil {
		if _, err := tx.Exec(ctx, `UPDATE entradas_producto SET cantidad_unidades=$2 WHERE id=$1`,
			res.Parcial.ID, res.Parcial.CantidadUnidades); err != nil {
			return err
		}
	}
	return nil
}

// costoOriginal recupera el costo de compra del producto en la factura de la
// que salió; si el detalle de factura ya no existe cae al costo guardado en
// la relación.
func costoOriginal(ctx context.Context, tx pgx.Tx, c ConsumoFactura, productoID int64) (decimal.Decimal, error) {
	var costo decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT costo_por_kilo FROM detalle_facturas
		WHERE numero_factura=$1 AND producto_id=$2`,
		c.NumeroFactura, productoID).Scan(&costo)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.CostoPorKilo, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return costo, nil
}

// recalcular rehace el total del pedido sumando todos los detalles, ajusta el
// estado según queden líneas sin pesar y devuelve el estado que persistió.
func recalcular(ctx context.Context, tx pgx.Tx, pedidoID int64, estado Estado) (Estado, error) {
	var total decimal.Decimal
	var sinPesar int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_venta), 0),
		       COUNT(*) FILTER (WHERE cantidad_kilos = 0)
		FROM detalle_pedidos WHERE pedido_id=$1`, pedidoID).Scan(&total, &sinPesar)
	if err != nil {
		return estado, err
	}

	nuevo := estadoTrasPesaje(estado, sinPesar)
	_, err = tx.Exec(ctx, `UPDATE pedidos SET total=$2, estado=$3 WHERE id=$1`, pedidoID, total, nuevo)
	return nuevo, err
}

// ProductoRef acepta el producto como id numérico o como objeto {"id": n};
// el formato se resuelve acá, una sola vez, al entrar el dato.
type ProductoRef struct {
	ID int64
}

func (p *ProductoRef) UnmarshalJSON(b []byte) error {
	var id int64
	if err := json.Unmarshal(b, &id); err == nil {
		p.ID = id
		return nil
	}
	var obj struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("producto inválido: %s", string(b))
	}
	p.ID = obj.ID
	return nil
}

func (p ProductoRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ID)
}
