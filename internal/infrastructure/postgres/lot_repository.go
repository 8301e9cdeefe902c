package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o
// tx). Igual que con los ítems, una implementación parametrizada por tabla y
// columna FK sirve a lotes de materia prima y de producto terminado.
type LotRepo struct {
	q         Querier
	table     string
	fkColumn  string
	itemTable string
}

// NewRawMaterialLotRepository construye el adaptador sobre lotes_materia_prima.
func NewRawMaterialLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q, table: "lotes_materia_prima", fkColumn: "materia_prima_id", itemTable: "materias_primas"}
}

// NewFinishedGoodLotRepository construye el adaptador sobre lotes_producto.
func NewFinishedGoodLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q, table: "lotes_producto", fkColumn: "producto_terminado_id", itemTable: "productos_terminados"}
}

func (r *LotRepo) columns() string {
	return fmt.Sprintf(`id, %s, codigo_lote, fecha_recepcion, fecha_produccion, fecha_caducidad,
		cantidad, cantidad_disponible, estado, COALESCE(notas, ''), fecha_creacion`, r.fkColumn)
}

// Create persiste un nuevo lote. Devuelve domain.ErrDuplicate si el código de
// lote ya existe para el ítem.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, codigo_lote, fecha_recepcion, fecha_produccion, fecha_caducidad, cantidad, cantidad_disponible, estado, notas, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)`, r.table, r.fkColumn)
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ItemID, lot.LotCode, lot.ReceivedDate, lot.ProductionDate, lot.ExpiryDate,
		lot.Quantity, lot.QuantityAvailable, lot.Status, lot.Notes, lot.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.columns(), r.table)
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, r.columns(), r.table)
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// ListAvailableForUpdate devuelve los lotes Disponibles no caducados del ítem
// con cantidad_disponible > 0, en orden FIFO (fecha_caducidad ASC NULLS LAST,
// fecha_recepcion ASC), todos bloqueados FOR UPDATE. Es la entrada del motor
// de asignación, siempre dentro de una transacción.
func (r *LotRepo) ListAvailableForUpdate(ctx context.Context, itemID string) ([]*entity.Lot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND estado = 'Disponible' AND cantidad_disponible > 0
		  AND (fecha_caducidad IS NULL OR fecha_caducidad >= now())
		ORDER BY fecha_caducidad ASC NULLS LAST, fecha_recepcion ASC
		FOR UPDATE`, r.columns(), r.table, r.fkColumn)
	rows, err := r.q.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list available %s: %w", r.table, err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// List lista lotes aplicando los filtros presentes.
func (r *LotRepo) List(ctx context.Context, filter repository.LotFilter) ([]*entity.Lot, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE 1=1`, r.columns(), r.table)
	args := []any{}
	pos := 1
	if filter.ItemID != "" {
		query += fmt.Sprintf(" AND %s = $%d", r.fkColumn, pos)
		args = append(args, filter.ItemID)
		pos++
	}
	if filter.LotCode != "" {
		query += fmt.Sprintf(" AND codigo_lote ILIKE $%d", pos)
		args = append(args, "%"+filter.LotCode+"%")
		pos++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND estado = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.ExpiryFrom != nil {
		query += fmt.Sprintf(" AND fecha_caducidad >= $%d", pos)
		args = append(args, *filter.ExpiryFrom)
		pos++
	}
	if filter.ExpiryTo != nil {
		query += fmt.Sprintf(" AND fecha_caducidad <= $%d", pos)
		args = append(args, *filter.ExpiryTo)
		pos++
	}
	query += " ORDER BY fecha_caducidad ASC NULLS LAST, fecha_recepcion ASC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListByItem lista los lotes de un ítem, opcionalmente filtrados por estado,
// en orden FIFO.
func (r *LotRepo) ListByItem(ctx context.Context, itemID, status string) ([]*entity.Lot, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, r.columns(), r.table, r.fkColumn)
	args := []any{itemID}
	if status != "" {
		query += " AND estado = $2"
		args = append(args, status)
	}
	query += " ORDER BY fecha_caducidad ASC NULLS LAST, fecha_recepcion ASC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by item %s: %w", r.table, err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// Update actualiza fechas, estado y notas del lote. Las cantidades son
// intocables por esta vía: solo cambian a través del libro de movimientos.
func (r *LotRepo) Update(ctx context.Context, lot *entity.Lot) error {
	query := fmt.Sprintf(`
		UPDATE %s SET fecha_produccion = $2, fecha_caducidad = $3, estado = $4, notas = NULLIF($5, '')
		WHERE id = $1`, r.table)
	cmd, err := r.q.Exec(ctx, query, lot.ID, lot.ProductionDate, lot.ExpiryDate, lot.Status, lot.Notes)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetAvailable fija cantidad_disponible y estado. Solo el libro de movimientos lo invoca.
func (r *LotRepo) SetAvailable(ctx context.Context, id string, available decimal.Decimal, status string) error {
	query := fmt.Sprintf(`UPDATE %s SET cantidad_disponible = $2, estado = $3 WHERE id = $1`, r.table)
	cmd, err := r.q.Exec(ctx, query, id, available, status)
	if err != nil {
		return fmt.Errorf("set available %s: %w", r.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatus cambia el estado del lote.
func (r *LotRepo) SetStatus(ctx context.Context, id, status string) error {
	query := fmt.Sprintf(`UPDATE %s SET estado = $2 WHERE id = $1`, r.table)
	cmd, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("set status %s: %w", r.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un lote por ID (borrado físico; el caso de uso decide antes).
func (r *LotRepo) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	cmd, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByItem cuenta los lotes de un ítem.
func (r *LotRepo) CountByItem(ctx context.Context, itemID string) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, r.table, r.fkColumn)
	var n int64
	if err := r.q.QueryRow(ctx, query, itemID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count by item %s: %w", r.table, err)
	}
	return n, nil
}

// SumAvailableByItem suma cantidad_disponible sobre los lotes no bloqueados del
// ítem. Es la base de la verificación de consistencia contra stock_actual.
func (r *LotRepo) SumAvailableByItem(ctx context.Context, itemID string) (decimal.Decimal, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(cantidad_disponible), 0) FROM %s
		WHERE %s = $1 AND estado <> 'Bloqueado'`, r.table, r.fkColumn)
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, itemID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum available %s: %w", r.table, err)
	}
	return sum, nil
}

// ListNearExpiry devuelve lotes con caducidad dentro de [hoy, hoy+days] y
// cantidad disponible, junto con datos del ítem dueño, por caducidad ascendente.
func (r *LotRepo) ListNearExpiry(ctx context.Context, days int) ([]*repository.NearExpiryLot, error) {
	query := fmt.Sprintf(`
		SELECT l.id, l.%s, l.codigo_lote, l.fecha_recepcion, l.fecha_produccion, l.fecha_caducidad,
		       l.cantidad, l.cantidad_disponible, l.estado, COALESCE(l.notas, ''), l.fecha_creacion,
		       i.codigo, i.nombre, i.unidad_medida,
		       GREATEST(0, EXTRACT(DAY FROM l.fecha_caducidad - now())::int)
		FROM %s l
		JOIN %s i ON i.id = l.%s
		WHERE l.estado = 'Disponible' AND l.cantidad_disponible > 0
		  AND l.fecha_caducidad IS NOT NULL
		  AND l.fecha_caducidad >= now()
		  AND l.fecha_caducidad <= now() + make_interval(days => $1)
		ORDER BY l.fecha_caducidad ASC`, r.fkColumn, r.table, r.itemTable, r.fkColumn)
	rows, err := r.q.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("list near expiry %s: %w", r.table, err)
	}
	defer rows.Close()

	var list []*repository.NearExpiryLot
	for rows.Next() {
		var n repository.NearExpiryLot
		if err := rows.Scan(
			&n.Lot.ID, &n.Lot.ItemID, &n.Lot.LotCode, &n.Lot.ReceivedDate, &n.Lot.ProductionDate,
			&n.Lot.ExpiryDate, &n.Lot.Quantity, &n.Lot.QuantityAvailable, &n.Lot.Status,
			&n.Lot.Notes, &n.Lot.CreatedAt,
			&n.ItemCode, &n.ItemName, &n.UnitMeasure, &n.DaysToExpiry,
		); err != nil {
			return nil, fmt.Errorf("scan near expiry %s: %w", r.table, err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

func (r *LotRepo) scanOne(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.ItemID, &l.LotCode, &l.ReceivedDate, &l.ProductionDate, &l.ExpiryDate,
		&l.Quantity, &l.QuantityAvailable, &l.Status, &l.Notes, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan %s: %w", r.table, err)
	}
	return &l, nil
}

func (r *LotRepo) scanMany(rows pgx.Rows) ([]*entity.Lot, error) {
	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(
			&l.ID, &l.ItemID, &l.LotCode, &l.ReceivedDate, &l.ProductionDate, &l.ExpiryDate,
			&l.Quantity, &l.QuantityAvailable, &l.Status, &l.Notes, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
