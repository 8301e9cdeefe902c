// Package apptest provee implementaciones en memoria de los puertos de
// persistencia para pruebas de los casos de uso, incluyendo un TxRunner que
// imita la semántica transaccional con instantánea y restauración.
package apptest

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cerveceria-ancestral/inventario-api/internal/application/inventory"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/entity"
	"github.com/cerveceria-ancestral/inventario-api/internal/domain/repository"
)

// ErrInjected es el error que devuelve un repo configurado para fallar.
var ErrInjected = errors.New("fallo inyectado")

// Store simula la base de datos en memoria. Los repos devuelven y guardan
// copias, igual que un repo real devuelve filas escaneadas, para que mutar un
// puntero devuelto no toque el almacén sin pasar por el repo.
type Store struct {
	Items     map[string]*entity.Item
	Lots      map[string]*entity.Lot
	Movements []*entity.Movement
	Users     map[string]*entity.User
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		Items: make(map[string]*entity.Item),
		Lots:  make(map[string]*entity.Lot),
		Users: make(map[string]*entity.User),
	}
}

// Clone devuelve una copia profunda del almacén.
func (s *Store) Clone() *Store {
	c := NewStore()
	for id, it := range s.Items {
		cp := *it
		c.Items[id] = &cp
	}
	for id, l := range s.Lots {
		cp := *l
		c.Lots[id] = &cp
	}
	c.Movements = make([]*entity.Movement, len(s.Movements))
	for i, m := range s.Movements {
		cp := *m
		c.Movements[i] = &cp
	}
	for id, u := range s.Users {
		cp := *u
		c.Users[id] = &cp
	}
	return c
}

// AddItem siembra un ítem en el almacén.
func (s *Store) AddItem(it entity.Item) { s.Items[it.ID] = &it }

// AddLot siembra un lote en el almacén.
func (s *Store) AddLot(l entity.Lot) { s.Lots[l.ID] = &l }

// AddUser siembra un usuario en el almacén.
func (s *Store) AddUser(u entity.User) { s.Users[u.ID] = &u }

// ─────────────────────────────────────────────────────────────
// ItemRepo
// ─────────────────────────────────────────────────────────────

// ItemRepo implementa repository.ItemRepository sobre un Store.
type ItemRepo struct{ S *Store }

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	for _, it := range r.S.Items {
		if it.Code == item.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *item
	r.S.Items[item.ID] = &cp
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	it, ok := r.S.Items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *ItemRepo) GetByCode(_ context.Context, code string) (*entity.Item, error) {
	for _, it := range r.S.Items {
		if it.Code == code {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	stored, ok := r.S.Items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *item
	cp.Code = stored.Code
	cp.CurrentStock = stored.CurrentStock
	r.S.Items[item.ID] = &cp
	return nil
}

func (r *ItemRepo) SetStock(_ context.Context, id string, stock decimal.Decimal) error {
	it, ok := r.S.Items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.CurrentStock = stock
	return nil
}

func (r *ItemRepo) SetStatus(_ context.Context, id, status string) error {
	it, ok := r.S.Items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.Status = status
	return nil
}

func (r *ItemRepo) List(_ context.Context, filter repository.ItemFilter) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range r.S.Items {
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		if filter.Code != "" && it.Code != filter.Code {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ItemRepo) ListLowStock(_ context.Context) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range r.S.Items {
		if it.Status != entity.ItemStatusActive {
			continue
		}
		if it.CurrentStock.GreaterThan(it.MinStock) {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		di := out[i].MinStock.Sub(out[i].CurrentStock)
		dj := out[j].MinStock.Sub(out[j].CurrentStock)
		return di.GreaterThan(dj)
	})
	return out, nil
}

func (r *ItemRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.S.Items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.S.Items, id)
	return nil
}

// ─────────────────────────────────────────────────────────────
// LotRepo
// ─────────────────────────────────────────────────────────────

// LotRepo implementa repository.LotRepository sobre un Store.
type LotRepo struct{ S *Store }

func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	for _, l := range r.S.Lots {
		if l.ItemID == lot.ItemID && l.LotCode == lot.LotCode {
			return domain.ErrDuplicate
		}
	}
	cp := *lot
	r.S.Lots[lot.ID] = &cp
	return nil
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	l, ok := r.S.Lots[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *LotRepo) ListAvailableForUpdate(_ context.Context, itemID string) ([]*entity.Lot, error) {
	now := time.Now()
	var out []*entity.Lot
	for _, l := range r.S.Lots {
		if l.ItemID != itemID || l.Status != entity.LotStatusAvailable {
			continue
		}
		if l.Expired(now) || !l.QuantityAvailable.GreaterThan(decimal.Zero) {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return a.ReceivedDate.Before(b.ReceivedDate)
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		case a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ReceivedDate.Before(b.ReceivedDate)
		default:
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
	})
	return out, nil
}

func (r *LotRepo) List(_ context.Context, filter repository.LotFilter) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.S.Lots {
		if filter.ItemID != "" && l.ItemID != filter.ItemID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.LotCode != "" && l.LotCode != filter.LotCode {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *LotRepo) ListByItem(_ context.Context, itemID, status string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.S.Lots {
		if l.ItemID != itemID {
			continue
		}
		if status != "" && l.Status != status {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *LotRepo) Update(_ context.Context, lot *entity.Lot) error {
	stored, ok := r.S.Lots[lot.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.ProductionDate = lot.ProductionDate
	stored.ExpiryDate = lot.ExpiryDate
	stored.Status = lot.Status
	stored.Notes = lot.Notes
	return nil
}

func (r *LotRepo) SetAvailable(_ context.Context, id string, available decimal.Decimal, status string) error {
	l, ok := r.S.Lots[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.QuantityAvailable = available
	l.Status = status
	return nil
}

func (r *LotRepo) SetStatus(_ context.Context, id, status string) error {
	l, ok := r.S.Lots[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.Status = status
	return nil
}

func (r *LotRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.S.Lots[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.S.Lots, id)
	return nil
}

func (r *LotRepo) CountByItem(_ context.Context, itemID string) (int64, error) {
	var n int64
	for _, l := range r.S.Lots {
		if l.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

func (r *LotRepo) SumAvailableByItem(_ context.Context, itemID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range r.S.Lots {
		if l.ItemID == itemID && l.Status != entity.LotStatusBlocked {
			sum = sum.Add(l.QuantityAvailable)
		}
	}
	return sum, nil
}

func (r *LotRepo) ListNearExpiry(_ context.Context, days int) ([]*repository.NearExpiryLot, error) {
	now := time.Now()
	limit := now.AddDate(0, 0, days)
	var out []*repository.NearExpiryLot
	for _, l := range r.S.Lots {
		if l.ExpiryDate == nil || l.Status != entity.LotStatusAvailable {
			continue
		}
		if !l.QuantityAvailable.GreaterThan(decimal.Zero) {
			continue
		}
		if l.ExpiryDate.Before(now) || l.ExpiryDate.After(limit) {
			continue
		}
		ne := &repository.NearExpiryLot{
			Lot:          *l,
			DaysToExpiry: int(l.ExpiryDate.Sub(now).Hours() / 24),
		}
		if it := r.S.Items[l.ItemID]; it != nil {
			ne.ItemCode = it.Code
			ne.ItemName = it.Name
			ne.UnitMeasure = it.UnitMeasure
		}
		out = append(out, ne)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Lot.ExpiryDate.Before(*out[j].Lot.ExpiryDate)
	})
	return out, nil
}

// ─────────────────────────────────────────────────────────────
// MovementRepo
// ─────────────────────────────────────────────────────────────

// MovementRepo implementa repository.MovementRepository sobre un Store.
// Con FailCreate toda inserción devuelve ErrInjected, útil para probar que la
// transacción revierte.
type MovementRepo struct {
	S          *Store
	FailCreate bool
}

func (r *MovementRepo) Create(_ context.Context, movement *entity.Movement) error {
	if r.FailCreate {
		return ErrInjected
	}
	if movement.IdempotencyKey != nil {
		for _, m := range r.S.Movements {
			if m.IdempotencyKey != nil && *m.IdempotencyKey == *movement.IdempotencyKey {
				return domain.ErrDuplicate
			}
		}
	}
	cp := *movement
	r.S.Movements = append(r.S.Movements, &cp)
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	for _, m := range r.S.Movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.Movement, int64, error) {
	var out []*entity.Movement
	for _, m := range r.S.Movements {
		if filter.ElementID != "" && m.ElementID != filter.ElementID {
			continue
		}
		if filter.ElementType != "" && m.ElementType != filter.ElementType {
			continue
		}
		if filter.MovementType != "" && m.MovementType != filter.MovementType {
			continue
		}
		if filter.LotID != "" && (m.LotID == nil || *m.LotID != filter.LotID) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *MovementRepo) CountByLot(_ context.Context, lotID string) (int64, error) {
	var n int64
	for _, m := range r.S.Movements {
		if m.LotID != nil && *m.LotID == lotID {
			n++
		}
	}
	return n, nil
}

func (r *MovementRepo) CountByElement(_ context.Context, elementType, elementID string) (int64, error) {
	var n int64
	for _, m := range r.S.Movements {
		if m.ElementType == elementType && m.ElementID == elementID {
			n++
		}
	}
	return n, nil
}

func (r *MovementRepo) Report(_ context.Context, _ repository.MovementFilter) (*repository.MovementReport, error) {
	rep := &repository.MovementReport{}
	for _, m := range r.S.Movements {
		switch m.MovementType {
		case entity.MovementTypeEntry:
			rep.TotalEntries++
		case entity.MovementTypeExit:
			rep.TotalExits++
		case entity.MovementTypePositiveAdj:
			rep.TotalPositiveAdjust++
		case entity.MovementTypeNegativeAdj:
			rep.TotalNegativeAdjust++
		}
	}
	return rep, nil
}

// ─────────────────────────────────────────────────────────────
// UserRepo
// ─────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository sobre un Store. Permissions
// mapea userID a los nombres de permisos concedidos.
type UserRepo struct {
	S           *Store
	Permissions map[string][]string
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	for _, u := range r.S.Users {
		if u.Email == user.Email {
			return domain.ErrDuplicate
		}
	}
	cp := *user
	r.S.Users[user.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.S.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.S.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetPermissions(_ context.Context, userID string) ([]string, error) {
	return r.Permissions[userID], nil
}

// ─────────────────────────────────────────────────────────────
// TxRunner
// ─────────────────────────────────────────────────────────────

// TxRunner imita la semántica transaccional: toma una instantánea del almacén
// antes de ejecutar fn y la restaura si fn falla. Con FailMovements el repo de
// movimientos de la "transacción" rechaza toda inserción.
type TxRunner struct {
	S             *Store
	FailMovements bool
}

func (t *TxRunner) Run(_ context.Context, fn func(repos inventory.TxRepos) error) error {
	snapshot := t.S.Clone()
	repos := inventory.TxRepos{
		RawItems:      &ItemRepo{S: t.S},
		FinishedItems: &ItemRepo{S: t.S},
		RawLots:       &LotRepo{S: t.S},
		FinishedLots:  &LotRepo{S: t.S},
		Movements:     &MovementRepo{S: t.S, FailCreate: t.FailMovements},
	}
	if err := fn(repos); err != nil {
		*t.S = *snapshot
		return err
	}
	return nil
}
