package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/apptest"
	"github.com/cerveceria-ancestral/inventario-api/internal/application/usecase"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
)

// ─────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────

// Dos almacenes separados: uno por registro, como las dos tablas en la DB.
func newReconciliationUC(raw, finished *apptest.Store) *usecase.ReconciliationUseCase {
	return usecase.NewReconciliationUseCase(
		&apptest.ItemRepo{S: raw},
		&apptest.ItemRepo{S: finished},
		&apptest.LotRepo{S: raw},
		&apptest.LotRepo{S: finished},
	)
}

func itemConStock(id, stock, min string) entity.Item {
	return entity.Item{
		ID:           id,
		Code:         "C-" + id,
		Name:         "Ítem " + id,
		UnitMeasure:  "kg",
		MinStock:     d(min),
		CurrentStock: d(stock),
		Status:       entity.ItemStatusActive,
	}
}

// ─────────────────────────────────────────────────────────────
// Stock bajo
// ─────────────────────────────────────────────────────────────

func TestReconciliation_LowStockMezclaAmbosRegistrosPorDeficit(t *testing.T) {
	raw := apptest.NewStore()
	finished := apptest.NewStore()
	raw.AddItem(itemConStock("mp-1", "2", "10"))       // déficit 8
	finished.AddItem(itemConStock("pt-1", "0", "20"))  // déficit 20
	raw.AddItem(itemConStock("mp-ok", "100", "10"))    // sobre el mínimo
	inactivo := itemConStock("mp-inactivo", "0", "50") // estaría primero, pero inactivo
	inactivo.Status = entity.ItemStatusInactive
	raw.AddItem(inactivo)

	uc := newReconciliationUC(raw, finished)
	out, err := uc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "pt-1", out[0].ID, "mayor déficit primero")
	assert.Equal(t, entity.ElementFinishedGood, out[0].ElementType)
	assert.True(t, out[0].Deficit.Equal(d("20")))
	assert.Equal(t, "mp-1", out[1].ID)
	assert.Equal(t, entity.ElementRawMaterial, out[1].ElementType)
}

// ─────────────────────────────────────────────────────────────
// Por caducar
// ─────────────────────────────────────────────────────────────

func TestReconciliation_NearExpiryOrdenaPorCaducidad(t *testing.T) {
	raw := apptest.NewStore()
	finished := apptest.NewStore()
	raw.AddItem(itemConStock("mp-1", "50", "5"))
	finished.AddItem(itemConStock("pt-1", "30", "5"))

	en20 := time.Now().AddDate(0, 0, 20)
	en3 := time.Now().AddDate(0, 0, 3)
	lejano := time.Now().AddDate(0, 0, 90)
	raw.AddLot(entity.Lot{
		ID: "lote-mp", ItemID: "mp-1", LotCode: "L-1",
		ExpiryDate: &en20, Quantity: d("50"), QuantityAvailable: d("50"),
		Status: entity.LotStatusAvailable,
	})
	finished.AddLot(entity.Lot{
		ID: "lote-pt", ItemID: "pt-1", LotCode: "L-2",
		ExpiryDate: &en3, Quantity: d("30"), QuantityAvailable: d("30"),
		Status: entity.LotStatusAvailable,
	})
	raw.AddLot(entity.Lot{
		ID: "lote-lejano", ItemID: "mp-1", LotCode: "L-3",
		ExpiryDate: &lejano, Quantity: d("10"), QuantityAvailable: d("10"),
		Status: entity.LotStatusAvailable,
	})

	uc := newReconciliationUC(raw, finished)
	out, err := uc.NearExpiry(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, out, 2, "el lote fuera de la ventana no aparece")

	assert.Equal(t, "lote-pt", out[0].ID, "caduca primero aunque sea de otro registro")
	assert.Equal(t, "C-pt-1", out[0].ItemCode)
	assert.Equal(t, "lote-mp", out[1].ID)
}

func TestReconciliation_NearExpiryDiasInvalidos(t *testing.T) {
	uc := newReconciliationUC(apptest.NewStore(), apptest.NewStore())

	_, err := uc.NearExpiry(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.NearExpiry(context.Background(), -7)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────
// Verificación stock agregado vs lotes
// ─────────────────────────────────────────────────────────────

func TestReconciliation_VerifyConsistente(t *testing.T) {
	raw := apptest.NewStore()
	raw.AddItem(itemConStock("mp-1", "70", "5"))
	raw.AddLot(entity.Lot{
		ID: "l1", ItemID: "mp-1", LotCode: "L-1",
		Quantity: d("50"), QuantityAvailable: d("50"), Status: entity.LotStatusAvailable,
	})
	raw.AddLot(entity.Lot{
		ID: "l2", ItemID: "mp-1", LotCode: "L-2",
		Quantity: d("40"), QuantityAvailable: d("20"), Status: entity.LotStatusAvailable,
	})

	uc := newReconciliationUC(raw, apptest.NewStore())
	resp, err := uc.Verify(context.Background(), entity.ElementRawMaterial, "mp-1")
	require.NoError(t, err)

	assert.True(t, resp.Consistent)
	assert.True(t, resp.Difference.IsZero())
}

func TestReconciliation_VerifyReportaInconsistenciaSinCorregirla(t *testing.T) {
	raw := apptest.NewStore()
	raw.AddItem(itemConStock("mp-1", "100", "5"))
	raw.AddLot(entity.Lot{
		ID: "l1", ItemID: "mp-1", LotCode: "L-1",
		Quantity: d("60"), QuantityAvailable: d("60"), Status: entity.LotStatusAvailable,
	})

	uc := newReconciliationUC(raw, apptest.NewStore())
	resp, err := uc.Verify(context.Background(), entity.ElementRawMaterial, "mp-1")
	require.NoError(t, err)

	assert.False(t, resp.Consistent)
	assert.True(t, resp.Difference.Equal(d("40")))
	assert.True(t, raw.Items["mp-1"].CurrentStock.Equal(d("100")), "la verificación nunca corrige nada")
}

func TestReconciliation_VerifyExcluyeLotesBloqueados(t *testing.T) {
	raw := apptest.NewStore()
	raw.AddItem(itemConStock("mp-1", "30", "5"))
	raw.AddLot(entity.Lot{
		ID: "l1", ItemID: "mp-1", LotCode: "L-1",
		Quantity: d("30"), QuantityAvailable: d("30"), Status: entity.LotStatusAvailable,
	})
	raw.AddLot(entity.Lot{
		ID: "l2", ItemID: "mp-1", LotCode: "L-2",
		Quantity: d("25"), QuantityAvailable: d("25"), Status: entity.LotStatusBlocked,
	})

	uc := newReconciliationUC(raw, apptest.NewStore())
	resp, err := uc.Verify(context.Background(), entity.ElementRawMaterial, "mp-1")
	require.NoError(t, err)
	assert.True(t, resp.Consistent, "lo bloqueado no cuenta en la suma")
}

func TestReconciliation_VerifyValidaciones(t *testing.T) {
	uc := newReconciliationUC(apptest.NewStore(), apptest.NewStore())
	ctx := context.Background()

	_, err := uc.Verify(ctx, "Insumo", "mp-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Verify(ctx, entity.ElementRawMaterial, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
