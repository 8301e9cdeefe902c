package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
)

// Exporter genera archivos XLSX para los reportes de inventario.
type Exporter struct{}

// NewExporter construye el exportador.
func NewExporter() *Exporter {
	return &Exporter{}
}

// MovementsXLSX genera una hoja con el listado detallado de movimientos:
// fila de encabezado más una fila por movimiento.
func (e *Exporter) MovementsXLSX(rows []dto.DetailedMovementResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"Fecha",
		"Tipo Movimiento",
		"Tipo Elemento",
		"Código",
		"Elemento",
		"Lote",
		"Cantidad",
		"Unidad",
		"Documento",
		"Motivo",
		"Usuario",
		"Notas",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("escribir encabezado: %w", err)
	}

	for i, m := range rows {
		excelRow := []interface{}{
			m.Date.Format("2006-01-02 15:04"),
			m.MovementType,
			m.ElementType,
			m.ElementCode,
			m.ElementName,
			m.LotCode,
			m.Quantity.String(),
			m.UnitMeasure,
			deref(m.DocumentReference),
			deref(m.Reason),
			m.UserName,
			deref(m.Notes),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("celda: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("escribir fila: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializar xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
