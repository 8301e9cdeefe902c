package usecase

import (
	"context"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/dto"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
)

// ReportExporter genera la representación XLSX del listado detallado.
type ReportExporter interface {
	MovementsXLSX(rows []dto.DetailedMovementResponse) ([]byte, error)
}

// MovementQueryUseCase consultas de solo lectura sobre el libro de movimientos.
// Nunca pasa por el motor de asignación: solo lee el libro y enriquece.
type MovementQueryUseCase struct {
	movements     repository.MovementRepository
	rawItems      repository.ItemRepository
	finishedItems repository.ItemRepository
	rawLots       repository.LotRepository
	finishedLots  repository.LotRepository
	users         repository.UserRepository
	exporter      ReportExporter
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(
	movements repository.MovementRepository,
	rawItems, finishedItems repository.ItemRepository,
	rawLots, finishedLots repository.LotRepository,
	users repository.UserRepository,
	exporter ReportExporter,
) *MovementQueryUseCase {
	return &MovementQueryUseCase{
		movements:     movements,
		rawItems:      rawItems,
		finishedItems: finishedItems,
		rawLots:       rawLots,
		finishedLots:  finishedLots,
		users:         users,
		exporter:      exporter,
	}
}

// List devuelve una página del libro, más recientes primero. Con filtros
// idénticos y sin escrituras concurrentes el resultado es idéntico.
func (uc *MovementQueryUseCase) List(ctx context.Context, in dto.MovementFilterRequest) (*dto.MovementListResponse, error) {
	filter, err := toMovementFilter(in)
	if err != nil {
		return nil, err
	}
	movs, total, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		data = append(data, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Data:       data,
		Pagination: dto.BuildPagination(total, filter.Page, filter.Limit),
	}, nil
}

// GetByID obtiene un asiento por ID.
func (uc *MovementQueryUseCase) GetByID(ctx context.Context, id string) (*dto.MovementResponse, error) {
	mov, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	out := toMovementResponse(mov)
	return &out, nil
}

// ListByElementType lista movimientos de un tipo de elemento; si viene un
// elementoId valida que exista.
func (uc *MovementQueryUseCase) ListByElementType(ctx context.Context, elementType, elementID string, in dto.MovementFilterRequest) (*dto.MovementListResponse, error) {
	if !entity.ValidElementType(elementType) {
		return nil, domain.ErrInvalidInput
	}
	if elementID != "" {
		items := uc.itemsFor(elementType)
		item, err := items.GetByID(ctx, elementID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrNotFound
		}
	}
	in.ElementType = elementType
	in.ElementID = elementID
	return uc.List(ctx, in)
}

// Report genera el resumen agregado: totales por tipo y conteos por tipo de
// elemento, usuario y día.
func (uc *MovementQueryUseCase) Report(ctx context.Context, in dto.MovementFilterRequest) (*dto.MovementReportResponse, error) {
	filter, err := toMovementFilter(in)
	if err != nil {
		return nil, err
	}
	rep, err := uc.movements.Report(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.MovementReportResponse{
		TotalEntries:        rep.TotalEntries,
		TotalExits:          rep.TotalExits,
		TotalPositiveAdjust: rep.TotalPositiveAdjust,
		TotalNegativeAdjust: rep.TotalNegativeAdjust,
		ByElementType:       toCountDTOs(rep.ByElementType),
		ByUser:              toCountDTOs(rep.ByUser),
		ByDate:              toCountDTOs(rep.ByDate),
	}, nil
}

// Detailed devuelve una página del libro enriquecida con nombre y código del
// elemento, código del lote y nombre del usuario.
func (uc *MovementQueryUseCase) Detailed(ctx context.Context, in dto.MovementFilterRequest) (*dto.DetailedMovementListResponse, error) {
	filter, err := toMovementFilter(in)
	if err != nil {
		return nil, err
	}
	movs, total, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	itemNames := map[string][2]string{} // elementType/id -> {nombre, codigo}
	lotCodes := map[string]string{}
	userNames := map[string]string{}

	data := make([]dto.DetailedMovementResponse, 0, len(movs))
	for _, m := range movs {
		row := dto.DetailedMovementResponse{MovementResponse: toMovementResponse(m)}

		itemKey := m.ElementType + "/" + m.ElementID
		if _, ok := itemNames[itemKey]; !ok {
			item, err := uc.itemsFor(m.ElementType).GetByID(ctx, m.ElementID)
			if err != nil {
				return nil, err
			}
			if item != nil {
				itemNames[itemKey] = [2]string{item.Name, item.Code}
			} else {
				itemNames[itemKey] = [2]string{}
			}
		}
		row.ElementName = itemNames[itemKey][0]
		row.ElementCode = itemNames[itemKey][1]

		if m.LotID != nil {
			if _, ok := lotCodes[*m.LotID]; !ok {
				lot, err := uc.lotsFor(m.ElementType).GetByID(ctx, *m.LotID)
				if err != nil {
					return nil, err
				}
				if lot != nil {
					lotCodes[*m.LotID] = lot.LotCode
				} else {
					lotCodes[*m.LotID] = ""
				}
			}
			row.LotCode = lotCodes[*m.LotID]
		}

		if _, ok := userNames[m.UserID]; !ok {
			user, err := uc.users.GetByID(ctx, m.UserID)
			if err != nil {
				return nil, err
			}
			if user != nil {
				userNames[m.UserID] = user.FirstName + " " + user.LastName
			} else {
				userNames[m.UserID] = ""
			}
		}
		row.UserName = userNames[m.UserID]

		data = append(data, row)
	}
	return &dto.DetailedMovementListResponse{
		Data:       data,
		Pagination: dto.BuildPagination(total, filter.Page, filter.Limit),
	}, nil
}

// ExportDetailed genera el XLSX del listado detallado con los mismos filtros.
func (uc *MovementQueryUseCase) ExportDetailed(ctx context.Context, in dto.MovementFilterRequest) ([]byte, error) {
	detailed, err := uc.Detailed(ctx, in)
	if err != nil {
		return nil, err
	}
	return uc.exporter.MovementsXLSX(detailed.Data)
}

func (uc *MovementQueryUseCase) itemsFor(elementType string) repository.ItemRepository {
	if elementType == entity.ElementFinishedGood {
		return uc.finishedItems
	}
	return uc.rawItems
}

func (uc *MovementQueryUseCase) lotsFor(elementType string) repository.LotRepository {
	if elementType == entity.ElementFinishedGood {
		return uc.finishedLots
	}
	return uc.rawLots
}

func toMovementFilter(in dto.MovementFilterRequest) (repository.MovementFilter, error) {
	if in.MovementType != "" && !entity.ValidMovementType(in.MovementType) {
		return repository.MovementFilter{}, domain.ErrInvalidInput
	}
	if in.ElementType != "" && !entity.ValidElementType(in.ElementType) {
		return repository.MovementFilter{}, domain.ErrInvalidInput
	}
	in.DefaultPage()
	return repository.MovementFilter{
		DateFrom:          in.DateFrom,
		DateTo:            in.DateTo,
		MovementType:      in.MovementType,
		ElementType:       in.ElementType,
		ElementID:         in.ElementID,
		LotID:             in.LotID,
		UserID:            in.UserID,
		DocumentReference: in.DocumentReference,
		Page:              in.Page,
		Limit:             in.Limit,
	}, nil
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                m.ID,
		MovementType:      m.MovementType,
		ElementType:       m.ElementType,
		ElementID:         m.ElementID,
		LotID:             m.LotID,
		Quantity:          m.Quantity,
		UnitMeasure:       m.UnitMeasure,
		DocumentReference: m.DocumentReference,
		ReferenceID:       m.ReferenceID,
		Reason:            m.Reason,
		UserID:            m.UserID,
		Notes:             m.Notes,
		Date:              m.Date,
	}
}

func toCountDTOs(in []repository.MovementCount) []dto.MovementCountDTO {
	out := make([]dto.MovementCountDTO, 0, len(in))
	for _, c := range in {
		out = append(out, dto.MovementCountDTO{Key: c.Key, Count: c.Count})
	}
	return out
}
