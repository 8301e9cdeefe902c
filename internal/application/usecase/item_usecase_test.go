package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
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

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func newItemUC(store *apptest.Store) *usecase.ItemUseCase {
	return usecase.NewItemUseCase(
		entity.ElementRawMaterial,
		&apptest.ItemRepo{S: store},
		&apptest.TxRunner{S: store},
	)
}

func crearItem(t *testing.T, uc *usecase.ItemUseCase, code string) *dto.ItemResponse {
	t.Helper()
	resp, err := uc.Create(context.Background(), dto.CreateItemRequest{
		Code:        code,
		Name:        "Lúpulo Cascade",
		UnitMeasure: "kg",
		MinStock:    d("5"),
	})
	require.NoError(t, err)
	return resp
}

// ─────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────

func TestItemUseCase_CreateIniciaConStockCero(t *testing.T) {
	store := apptest.NewStore()
	uc := newItemUC(store)

	resp := crearItem(t, uc, "MP-001")

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "MP-001", resp.Code)
	assert.Equal(t, entity.ItemStatusActive, resp.Status)
	assert.True(t, resp.CurrentStock.IsZero(), "el stock inicial siempre es 0")
}

func TestItemUseCase_CreateCodigoDuplicado(t *testing.T) {
	store := apptest.NewStore()
	uc := newItemUC(store)
	crearItem(t, uc, "MP-001")

	_, err := uc.Create(context.Background(), dto.CreateItemRequest{
		Code:        "MP-001",
		Name:        "Otro nombre",
		UnitMeasure: "kg",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestItemUseCase_CreateValidaCamposObligatorios(t *testing.T) {
	uc := newItemUC(apptest.NewStore())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateItemRequest{Name: "Sin código", UnitMeasure: "kg"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateItemRequest{Code: "MP-002", UnitMeasure: "kg"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateItemRequest{
		Code: "MP-003", Name: "Stock mínimo negativo", UnitMeasure: "kg", MinStock: d("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────
// Consultas
// ─────────────────────────────────────────────────────────────

func TestItemUseCase_GetByIDNoEncontrado(t *testing.T) {
	uc := newItemUC(apptest.NewStore())

	_, err := uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemUseCase_GetByCode(t *testing.T) {
	store := apptest.NewStore()
	uc := newItemUC(store)
	creado := crearItem(t, uc, "MP-010")

	resp, err := uc.GetByCode(context.Background(), "MP-010")
	require.NoError(t, err)
	assert.Equal(t, creado.ID, resp.ID)
}

// ─────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────

func TestItemUseCase_UpdateNoTocaCodigoNiStock(t *testing.T) {
	store := apptest.NewStore()
	uc := newItemUC(store)
	creado := crearItem(t, uc, "MP-001")
	store.Items[creado.ID].CurrentStock = d("42")

	resp, err := uc.Update(context.Background(), creado.ID, dto.UpdateItemRequest{
		Name: strPtr("Lúpulo Citra"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lúpulo Citra", resp.Name)

	stored := store.Items[creado.ID]
	assert.Equal(t, "MP-001", stored.Code)
	assert.True(t, stored.CurrentStock.Equal(d("42")), "el patch no transporta stock")
}

func TestItemUseCase_UpdateEstadoInvalido(t *testing.T) {
	store := apptest.NewStore()
	uc := newItemUC(store)
	creado := crearItem(t, uc, "MP-001")

	_, err := uc.Update(context.Background(), creado.ID, dto.UpdateItemRequest{
		Status: strPtr("Eliminado"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────────────────────

func TestItemUseCase_DeleteSinReferenciasEliminaDeVerdad(t *testing.T) {
	store := apptest.NewStore()
	uc := newItemUC(store)
	creado := crearItem(t, uc, "MP-001")

	err := uc.Delete(context.Background(), creado.ID)
	require.NoError(t, err)
	assert.NotContains(t, store.Items, creado.ID)
}

func TestItemUseCase_DeleteConLotesDesactiva(t *testing.T) {
	store := apptest.NewStore()
	uc := newItemUC(store)
	creado := crearItem(t, uc, "MP-001")
	store.AddLot(entity.Lot{
		ID:                "lote-1",
		ItemID:            creado.ID,
		LotCode:           "L-001",
		Quantity:          d("10"),
		QuantityAvailable: d("10"),
		Status:            entity.LotStatusAvailable,
	})

	err := uc.Delete(context.Background(), creado.ID)
	require.NoError(t, err)

	stored := store.Items[creado.ID]
	require.NotNil(t, stored, "con lotes el ítem sobrevive")
	assert.Equal(t, entity.ItemStatusInactive, stored.Status)
}

func TestItemUseCase_DeleteConAsientosDesactiva(t *testing.T) {
	store := apptest.NewStore()
	uc := newItemUC(store)
	creado := crearItem(t, uc, "MP-001")
	store.Movements = append(store.Movements, &entity.Movement{
		ID:           "mov-1",
		MovementType: entity.MovementTypeEntry,
		ElementType:  entity.ElementRawMaterial,
		ElementID:    creado.ID,
		Quantity:     d("10"),
		UserID:       "user-1",
	})

	err := uc.Delete(context.Background(), creado.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ItemStatusInactive, store.Items[creado.ID].Status)
}

func TestItemUseCase_DeleteNoEncontrado(t *testing.T) {
	uc := newItemUC(apptest.NewStore())
	err := uc.Delete(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
