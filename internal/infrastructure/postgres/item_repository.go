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

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, codigo, nombre, unidad_medida, stock_minimo, stock_actual,
		COALESCE(ubicacion_fisica, ''), estado, COALESCE(notas, ''), fecha_creacion, fecha_modificacion`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool
// o tx). Las tablas de materias primas y productos terminados tienen la misma
// forma, así que una sola implementación parametrizada por tabla sirve a ambas.
type ItemRepo struct {
	q     Querier
	table string
}

// NewRawMaterialRepository construye el adaptador sobre materias_primas.
func NewRawMaterialRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q, table: "materias_primas"}
}

// NewFinishedGoodRepository construye el adaptador sobre productos_terminados.
func NewFinishedGoodRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q, table: "productos_terminados"}
}

// Create persiste un nuevo ítem. Devuelve domain.ErrDuplicate si el código ya existe.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, codigo, nombre, unidad_medida, stock_minimo, stock_actual, ubicacion_fisica, estado, notas, fecha_creacion, fecha_modificacion)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, NULLIF($9, ''), $10, $11)`, r.table)
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Code, item.Name, item.UnitMeasure, item.MinStock, item.CurrentStock,
		item.Location, item.Status, item.Notes, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, itemColumns, r.table)
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByCode obtiene un ítem por su código único.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*entity.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE codigo = $1`, itemColumns, r.table)
	return r.scanOne(r.q.QueryRow(ctx, query, code))
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE).
// Serializa movimientos concurrentes sobre el mismo ítem; usar dentro de tx.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, itemColumns, r.table)
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// Update actualiza un ítem. No toca codigo ni stock_actual: el código es
// inmutable y el stock solo cambia por el libro de movimientos.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := fmt.Sprintf(`
		UPDATE %s SET nombre = $2, unidad_medida = $3, stock_minimo = $4, ubicacion_fisica = NULLIF($5, ''), estado = $6, notas = NULLIF($7, ''), fecha_modificacion = $8
		WHERE id = $1`, r.table)
	cmd, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.UnitMeasure, item.MinStock,
		item.Location, item.Status, item.Notes, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStock fija el stock agregado del ítem. Solo el libro de movimientos lo invoca.
func (r *ItemRepo) SetStock(ctx context.Context, id string, stock decimal.Decimal) error {
	query := fmt.Sprintf(`UPDATE %s SET stock_actual = $2, fecha_modificacion = now() WHERE id = $1`, r.table)
	cmd, err := r.q.Exec(ctx, query, id, stock)
	if err != nil {
		return fmt.Errorf("set stock %s: %w", r.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatus cambia el estado del ítem.
func (r *ItemRepo) SetStatus(ctx context.Context, id, status string) error {
	query := fmt.Sprintf(`UPDATE %s SET estado = $2, fecha_modificacion = now() WHERE id = $1`, r.table)
	cmd, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("set status %s: %w", r.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista ítems aplicando los filtros presentes; sin filtros devuelve todo.
func (r *ItemRepo) List(ctx context.Context, filter repository.ItemFilter) ([]*entity.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE 1=1`, itemColumns, r.table)
	args := []any{}
	pos := 1
	if filter.Code != "" {
		query += fmt.Sprintf(" AND codigo ILIKE $%d", pos)
		args = append(args, "%"+filter.Code+"%")
		pos++
	}
	if filter.Name != "" {
		query += fmt.Sprintf(" AND nombre ILIKE $%d", pos)
		args = append(args, "%"+filter.Name+"%")
		pos++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND estado = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.LowStock {
		query += " AND stock_actual <= stock_minimo"
	}
	query += " ORDER BY nombre ASC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListLowStock devuelve los ítems activos bajo mínimo, mayor déficit primero.
func (r *ItemRepo) ListLowStock(ctx context.Context) ([]*entity.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE estado = 'Activo' AND stock_actual <= stock_minimo
		ORDER BY (stock_minimo - stock_actual) DESC, nombre ASC`, itemColumns, r.table)
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list low stock %s: %w", r.table, err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// Delete elimina un ítem por ID (borrado físico; el caso de uso decide antes
// si corresponde o si el ítem pasa a Inactivo).
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
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

func (r *ItemRepo) scanOne(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(
		&it.ID, &it.Code, &it.Name, &it.UnitMeasure, &it.MinStock, &it.CurrentStock,
		&it.Location, &it.Status, &it.Notes, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan %s: %w", r.table, err)
	}
	return &it, nil
}

func (r *ItemRepo) scanMany(rows pgx.Rows) ([]*entity.Item, error) {
	var list []*entity.Item
	for rows.Next() {
		var it entity.Item
		if err := rows.Scan(
			&it.ID, &it.Code, &it.Name, &it.UnitMeasure, &it.MinStock, &it.CurrentStock,
			&it.Location, &it.Status, &it.Notes, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
