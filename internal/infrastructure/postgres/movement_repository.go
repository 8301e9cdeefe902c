package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, tipo_movimiento, tipo_elemento, elemento_id, lote_id, cantidad,
		unidad_medida, documento_referencia, referencia_id, motivo, usuario_id, notas,
		clave_idempotencia, fecha, fecha_creacion`

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). El libro es append-only: este adaptador no expone
// UPDATE ni DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento. Devuelve domain.ErrDuplicate si la clave de
// idempotencia ya fue usada.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movimientos_inventario (id, tipo_movimiento, tipo_elemento, elemento_id, lote_id, cantidad, unidad_medida, documento_referencia, referencia_id, motivo, usuario_id, notas, clave_idempotencia, fecha, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.MovementType, movement.ElementType, movement.ElementID,
		movement.LotID, movement.Quantity, movement.UnitMeasure, movement.DocumentReference,
		movement.ReferenceID, movement.Reason, movement.UserID, movement.Notes,
		movement.IdempotencyKey, movement.Date, movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := fmt.Sprintf(`SELECT %s FROM movimientos_inventario WHERE id = $1`, movementColumns)
	var m entity.Movement
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.MovementType, &m.ElementType, &m.ElementID, &m.LotID, &m.Quantity,
		&m.UnitMeasure, &m.DocumentReference, &m.ReferenceID, &m.Reason, &m.UserID,
		&m.Notes, &m.IdempotencyKey, &m.Date, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// List devuelve la página solicitada del libro (más recientes primero) junto
// con el total de filas que cumplen el filtro.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, int64, error) {
	where, args := buildMovementWhere(filter)

	var total int64
	countQuery := "SELECT COUNT(*) FROM movimientos_inventario" + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pos := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM movimientos_inventario%s ORDER BY fecha DESC, fecha_creacion DESC LIMIT $%d OFFSET $%d`,
		movementColumns, where, pos, pos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(
			&m.ID, &m.MovementType, &m.ElementType, &m.ElementID, &m.LotID, &m.Quantity,
			&m.UnitMeasure, &m.DocumentReference, &m.ReferenceID, &m.Reason, &m.UserID,
			&m.Notes, &m.IdempotencyKey, &m.Date, &m.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, total, rows.Err()
}

// CountByLot cuenta los movimientos que referencian un lote.
func (r *MovementRepo) CountByLot(ctx context.Context, lotID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movimientos_inventario WHERE lote_id = $1`, lotID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by lot: %w", err)
	}
	return n, nil
}

// CountByElement cuenta los movimientos de un elemento.
func (r *MovementRepo) CountByElement(ctx context.Context, elementType, elementID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM movimientos_inventario WHERE tipo_elemento = $1 AND elemento_id = $2`,
		elementType, elementID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by element: %w", err)
	}
	return n, nil
}

// Report agrega el libro bajo el filtro: totales por tipo de movimiento y
// conteos agrupados por tipo de elemento, usuario y día.
func (r *MovementRepo) Report(ctx context.Context, filter repository.MovementFilter) (*repository.MovementReport, error) {
	where, args := buildMovementWhere(filter)
	report := &repository.MovementReport{}

	query := `
		SELECT tipo_movimiento, COUNT(*) FROM movimientos_inventario` + where + `
		GROUP BY tipo_movimiento`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("report by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tipo string
		var n int64
		if err := rows.Scan(&tipo, &n); err != nil {
			return nil, fmt.Errorf("scan report type: %w", err)
		}
		switch tipo {
		case entity.MovementTypeEntry:
			report.TotalEntries = n
		case entity.MovementTypeExit:
			report.TotalExits = n
		case entity.MovementTypePositiveAdj:
			report.TotalPositiveAdjust = n
		case entity.MovementTypeNegativeAdj:
			report.TotalNegativeAdjust = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	report.ByElementType, err = r.groupCount(ctx, "tipo_elemento", where, args)
	if err != nil {
		return nil, err
	}
	report.ByUser, err = r.groupCount(ctx, "usuario_id::text", where, args)
	if err != nil {
		return nil, err
	}
	report.ByDate, err = r.groupCount(ctx, "to_char(fecha, 'YYYY-MM-DD')", where, args)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *MovementRepo) groupCount(ctx context.Context, expr, where string, args []any) ([]repository.MovementCount, error) {
	query := fmt.Sprintf(`SELECT %s AS k, COUNT(*) FROM movimientos_inventario%s GROUP BY k ORDER BY k`, expr, where)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("report group %s: %w", expr, err)
	}
	defer rows.Close()
	var counts []repository.MovementCount
	for rows.Next() {
		var c repository.MovementCount
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("scan report group: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// buildMovementWhere arma la cláusula WHERE y sus argumentos a partir de los
// filtros presentes.
func buildMovementWhere(filter repository.MovementFilter) (string, []any) {
	where := ""
	args := []any{}
	add := func(cond string, arg any) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args)+1)
		args = append(args, arg)
	}
	if filter.DateFrom != nil {
		add("fecha >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("fecha <= $%d", *filter.DateTo)
	}
	if filter.MovementType != "" {
		add("tipo_movimiento = $%d", filter.MovementType)
	}
	if filter.ElementType != "" {
		add("tipo_elemento = $%d", filter.ElementType)
	}
	if filter.ElementID != "" {
		add("elemento_id = $%d", filter.ElementID)
	}
	if filter.LotID != "" {
		add("lote_id = $%d", filter.LotID)
	}
	if filter.UserID != "" {
		add("usuario_id = $%d", filter.UserID)
	}
	if filter.DocumentReference != "" {
		add("documento_referencia = $%d", filter.DocumentReference)
	}
	return where, args
}
