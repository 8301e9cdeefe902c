package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/apptest"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/usecase"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
)

// ─────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────

type stubExporter struct {
	rows []dto.DetailedMovementResponse
}

func (s *stubExporter) MovementsXLSX(rows []dto.DetailedMovementResponse) ([]byte, error) {
	s.rows = rows
	return []byte("xlsx"), nil
}

func newQueryUC(store *apptest.Store, exporter *stubExporter) *usecase.MovementQueryUseCase {
	return usecase.NewMovementQueryUseCase(
		&apptest.MovementRepo{S: store},
		&apptest.ItemRepo{S: store},
		&apptest.ItemRepo{S: store},
		&apptest.LotRepo{S: store},
		&apptest.LotRepo{S: store},
		&apptest.UserRepo{S: store},
		exporter,
	)
}

func sembrarLibro(store *apptest.Store) {
	store.AddItem(entity.Item{
		ID: "item-1", Code: "MP-001", Name: "Malta Pilsen",
		UnitMeasure: "kg", Status: entity.ItemStatusActive,
	})
	store.AddLot(entity.Lot{
		ID: "lote-1", ItemID: "item-1", LotCode: "L-2025-001",
		Quantity: d("100"), QuantityAvailable: d("70"),
		Status: entity.LotStatusAvailable,
	})
	store.AddUser(entity.User{
		ID: "user-1", Email: "ana@cerveceria.co",
		FirstName: "Ana", LastName: "Bodega",
		Role: entity.RoleWarehouse, Status: "active",
	})
	lotID := "lote-1"
	store.Movements = append(store.Movements,
		&entity.Movement{
			ID: "mov-1", MovementType: entity.MovementTypeEntry,
			ElementType: entity.ElementRawMaterial, ElementID: "item-1",
			LotID: &lotID, Quantity: d("100"), UnitMeasure: "kg",
			UserID: "user-1", Date: time.Now().Add(-time.Hour),
		},
		&entity.Movement{
			ID: "mov-2", MovementType: entity.MovementTypeExit,
			ElementType: entity.ElementRawMaterial, ElementID: "item-1",
			LotID: &lotID, Quantity: d("30"), UnitMeasure: "kg",
			UserID: "user-1", Date: time.Now(),
		},
	)
}

// ─────────────────────────────────────────────────────────────
// Consultas
// ─────────────────────────────────────────────────────────────

func TestMovementQuery_ListFiltraPorTipo(t *testing.T) {
	store := apptest.NewStore()
	sembrarLibro(store)
	uc := newQueryUC(store, &stubExporter{})

	resp, err := uc.List(context.Background(), dto.MovementFilterRequest{
		MovementType: entity.MovementTypeExit,
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "mov-2", resp.Data[0].ID)
	assert.Equal(t, int64(1), resp.Pagination.Total)
}

func TestMovementQuery_FiltrosInvalidos(t *testing.T) {
	uc := newQueryUC(apptest.NewStore(), &stubExporter{})
	ctx := context.Background()

	_, err := uc.List(ctx, dto.MovementFilterRequest{MovementType: "Traslado"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, dto.MovementFilterRequest{ElementType: "Insumo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovementQuery_GetByIDNoEncontrado(t *testing.T) {
	uc := newQueryUC(apptest.NewStore(), &stubExporter{})

	_, err := uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovementQuery_ListByElementTypeValidaElemento(t *testing.T) {
	store := apptest.NewStore()
	sembrarLibro(store)
	uc := newQueryUC(store, &stubExporter{})
	ctx := context.Background()

	_, err := uc.ListByElementType(ctx, "Insumo", "item-1", dto.MovementFilterRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ListByElementType(ctx, entity.ElementRawMaterial, "no-existe", dto.MovementFilterRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resp, err := uc.ListByElementType(ctx, entity.ElementRawMaterial, "item-1", dto.MovementFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
}

func TestMovementQuery_Report(t *testing.T) {
	store := apptest.NewStore()
	sembrarLibro(store)
	uc := newQueryUC(store, &stubExporter{})

	rep, err := uc.Report(context.Background(), dto.MovementFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rep.TotalEntries)
	assert.Equal(t, int64(1), rep.TotalExits)
	assert.Zero(t, rep.TotalPositiveAdjust)
}

// ─────────────────────────────────────────────────────────────
// Detallado y export
// ─────────────────────────────────────────────────────────────

func TestMovementQuery_DetailedEnriqueceLasFilas(t *testing.T) {
	store := apptest.NewStore()
	sembrarLibro(store)
	uc := newQueryUC(store, &stubExporter{})

	resp, err := uc.Detailed(context.Background(), dto.MovementFilterRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)

	fila := resp.Data[0]
	assert.Equal(t, "Malta Pilsen", fila.ElementName)
	assert.Equal(t, "MP-001", fila.ElementCode)
	assert.Equal(t, "L-2025-001", fila.LotCode)
	assert.Equal(t, "Ana Bodega", fila.UserName)
}

func TestMovementQuery_ExportDetailedUsaElExportador(t *testing.T) {
	store := apptest.NewStore()
	sembrarLibro(store)
	exporter := &stubExporter{}
	uc := newQueryUC(store, exporter)

	data, err := uc.ExportDetailed(context.Background(), dto.MovementFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	assert.Len(t, exporter.rows, 2, "exporta las mismas filas del listado detallado")
}
