package excel_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/infrastructure/excel"
)

func TestMovementsXLSX(t *testing.T) {
	motivo := "Producción lote IPA"
	rows := []dto.DetailedMovementResponse{
		{
			MovementResponse: dto.MovementResponse{
				ID:           "mov-1",
				MovementType: entity.MovementTypeExit,
				ElementType:  entity.ElementRawMaterial,
				Quantity:     decimal.RequireFromString("25.5"),
				UnitMeasure:  "kg",
				Reason:       &motivo,
				Date:         time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC),
			},
			ElementCode: "MP-001",
			ElementName: "Malta Pilsen",
			LotCode:     "L-2025-014",
			UserName:    "Ana Bodega",
		},
	}

	data, err := excel.NewExporter().MovementsXLSX(rows)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	encabezado, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Fecha", encabezado)

	casos := map[string]string{
		"A2": "2025-06-10 09:30",
		"B2": entity.MovementTypeExit,
		"D2": "MP-001",
		"E2": "Malta Pilsen",
		"F2": "L-2025-014",
		"G2": "25.5",
		"H2": "kg",
		"J2": motivo,
		"K2": "Ana Bodega",
	}
	for celda, esperado := range casos {
		valor, err := f.GetCellValue(sheet, celda)
		require.NoError(t, err)
		assert.Equal(t, esperado, valor, "celda %s", celda)
	}
}

func TestMovementsXLSX_SinFilas(t *testing.T) {
	data, err := excel.NewExporter().MovementsXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "solo el encabezado")
}
