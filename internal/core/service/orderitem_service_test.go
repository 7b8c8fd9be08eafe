package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	orders  map[int64]*domain.Order
	nextID  int64
	updated []int64
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[int64]*domain.Order)}
}

func (r *stubOrderRepo) seed(id int64, deleted bool) {
	r.orders[id] = &domain.Order{ID: id, CreatedDate: time.Now().UTC(), Deleted: deleted}
	if id > r.nextID {
		r.nextID = id
	}
}

func (r *stubOrderRepo) Create(_ context.Context, createdDate time.Time, customerID, loggedByID *int64) (int64, error) {
	r.nextID++
	r.orders[r.nextID] = &domain.Order{
		ID:          r.nextID,
		CreatedDate: createdDate,
		CustomerID:  customerID,
		LoggedByID:  loggedByID,
	}
	return r.nextID, nil
}

func (r *stubOrderRepo) ByID(_ context.Context, id int64, includeDeleted bool) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok || (o.Deleted && !includeDeleted) {
		return nil, domain.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *stubOrderRepo) List(_ context.Context, includeDeleted bool) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.Deleted && !includeDeleted {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *stubOrderRepo) UpdateDates(_ context.Context, id int64, start, end *time.Time) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Deleted {
		return false, nil
	}
	o.StartDate, o.EndDate = start, end
	r.updated = append(r.updated, id)
	return true, nil
}

func (r *stubOrderRepo) SoftDelete(_ context.Context, id int64) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Deleted {
		return false, nil
	}
	o.Deleted = true
	return true, nil
}

type stubItemRepo struct {
	items  map[int64]*domain.Item
	nextID int64
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: make(map[int64]*domain.Item)}
}

func (r *stubItemRepo) seed(id int64, tag string, deleted bool) {
	r.items[id] = &domain.Item{ID: id, TagID: tag, Position: domain.PositionHome, Deleted: deleted}
	if id > r.nextID {
		r.nextID = id
	}
}

func (r *stubItemRepo) Create(_ context.Context, tagID string, position domain.Position, overdue bool) (int64, error) {
	for _, it := range r.items {
		if it.TagID == tagID {
			return 0, domain.ErrDuplicateTag
		}
	}
	r.nextID++
	r.items[r.nextID] = &domain.Item{ID: r.nextID, TagID: tagID, Position: position, IsOverdue: overdue}
	return r.nextID, nil
}

func (r *stubItemRepo) ByID(_ context.Context, id int64, includeDeleted bool) (*domain.Item, error) {
	it, ok := r.items[id]
	if !ok || (it.Deleted && !includeDeleted) {
		return nil, domain.ErrItemNotFound
	}
	copied := *it
	return &copied, nil
}

func (r *stubItemRepo) ByTag(_ context.Context, tagID string, includeDeleted bool) (*domain.Item, error) {
	for _, it := range r.items {
		if it.TagID == tagID && (!it.Deleted || includeDeleted) {
			copied := *it
			return &copied, nil
		}
	}
	return nil, domain.ErrItemNotFound
}

func (r *stubItemRepo) List(_ context.Context, includeDeleted bool) ([]domain.Item, error) {
	var out []domain.Item
	for _, it := range r.items {
		if it.Deleted && !includeDeleted {
			continue
		}
		out = append(out, *it)
	}
	return out, nil
}

func (r *stubItemRepo) ListByOrder(context.Context, int64, bool) ([]domain.Item, error) {
	return nil, nil
}

func (r *stubItemRepo) UpdatePosition(_ context.Context, id int64, position domain.Position) (bool, error) {
	it, ok := r.items[id]
	if !ok || it.Deleted || it.Position == position {
		return false, nil
	}
	it.Position = position
	return true, nil
}

func (r *stubItemRepo) UpdateOverdue(_ context.Context, id int64, overdue bool) (bool, error) {
	it, ok := r.items[id]
	if !ok || it.Deleted || it.IsOverdue == overdue {
		return false, nil
	}
	it.IsOverdue = overdue
	return true, nil
}

func (r *stubItemRepo) UpdateTag(_ context.Context, id int64, tagID string) (bool, error) {
	it, ok := r.items[id]
	if !ok || it.Deleted {
		return false, nil
	}
	it.TagID = tagID
	return true, nil
}

func (r *stubItemRepo) SoftDelete(_ context.Context, id int64) (bool, error) {
	it, ok := r.items[id]
	if !ok || it.Deleted {
		return false, nil
	}
	it.Deleted = true
	return true, nil
}

type relKey struct {
	order, item int64
}

// stubRelRepo keys relations by (order, item); the map value is the deleted
// flag. Transact snapshots the map and restores it when fn fails, modelling
// the rollback of the real repository.
type stubRelRepo struct {
	rels      map[relKey]bool
	attachErr error
}

func newStubRelRepo() *stubRelRepo {
	return &stubRelRepo{rels: make(map[relKey]bool)}
}

func (r *stubRelRepo) Attach(_ context.Context, orderID, itemID int64) (*domain.OrderItem, error) {
	if r.attachErr != nil {
		return nil, r.attachErr
	}
	for k, deleted := range r.rels {
		if k.item == itemID && !deleted {
			return nil, fmt.Errorf("item %d on order %d: %w", itemID, k.order, domain.ErrItemAttached)
		}
	}
	r.rels[relKey{orderID, itemID}] = false
	return &domain.OrderItem{OrderID: orderID, ItemID: itemID}, nil
}

func (r *stubRelRepo) Detach(_ context.Context, orderID, itemID int64) (bool, error) {
	k := relKey{orderID, itemID}
	deleted, ok := r.rels[k]
	if !ok || deleted {
		return false, nil
	}
	r.rels[k] = true
	return true, nil
}

func (r *stubRelRepo) IsAttached(_ context.Context, orderID, itemID int64, includeDeleted bool) (bool, error) {
	deleted, ok := r.rels[relKey{orderID, itemID}]
	return ok && (!deleted || includeDeleted), nil
}

func (r *stubRelRepo) CountActive(_ context.Context, orderID int64) (int, error) {
	n := 0
	for k, deleted := range r.rels {
		if k.order == orderID && !deleted {
			n++
		}
	}
	return n, nil
}

func (r *stubRelRepo) ListByOrder(_ context.Context, orderID int64, includeDeleted bool) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	for k, deleted := range r.rels {
		if k.order == orderID && (!deleted || includeDeleted) {
			out = append(out, domain.OrderItem{OrderID: k.order, ItemID: k.item, Deleted: deleted})
		}
	}
	return out, nil
}

func (r *stubRelRepo) ListAll(_ context.Context, includeDeleted bool) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	for k, deleted := range r.rels {
		if !deleted || includeDeleted {
			out = append(out, domain.OrderItem{OrderID: k.order, ItemID: k.item, Deleted: deleted})
		}
	}
	return out, nil
}

func (r *stubRelRepo) Transact(_ context.Context, fn func(ports.OrderItemRepository) error) error {
	snapshot := make(map[relKey]bool, len(r.rels))
	for k, v := range r.rels {
		snapshot[k] = v
	}
	if err := fn(r); err != nil {
		r.rels = snapshot
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func newRelSvc(orders *stubOrderRepo, items *stubItemRepo, rels *stubRelRepo) ports.OrderItemService {
	return NewOrderItemService(orders, items, rels, zerolog.Nop())
}

func TestOrderItemService_Attach_HappyPath(t *testing.T) {
	orders := newStubOrderRepo()
	orders.seed(1, false)
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	rels := newStubRelRepo()

	svc := newRelSvc(orders, items, rels)
	rel, err := svc.Attach(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if rel.OrderID != 1 || rel.ItemID != 10 {
		t.Errorf("unexpected relation: %+v", rel)
	}
	if attached, _ := svc.IsAttached(context.Background(), 1, 10); !attached {
		t.Error("expected relation to be active")
	}
}

func TestOrderItemService_Attach_HeldElsewhere(t *testing.T) {
	orders := newStubOrderRepo()
	orders.seed(1, false)
	orders.seed(2, false)
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	rels := newStubRelRepo()

	svc := newRelSvc(orders, items, rels)
	if _, err := svc.Attach(context.Background(), 10, 1); err != nil {
		t.Fatalf("first attach failed: %v", err)
	}

	_, err := svc.Attach(context.Background(), 10, 2)
	if !errors.Is(err, domain.ErrItemAttached) {
		t.Errorf("expected ErrItemAttached, got: %v", err)
	}
}

func TestOrderItemService_Attach_RevivesDetachedPair(t *testing.T) {
	orders := newStubOrderRepo()
	orders.seed(1, false)
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	rels := newStubRelRepo()

	svc := newRelSvc(orders, items, rels)
	ctx := context.Background()

	if _, err := svc.Attach(ctx, 10, 1); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if ok, _ := svc.Detach(ctx, 10, 1); !ok {
		t.Fatal("detach had no effect")
	}
	if _, err := svc.Attach(ctx, 10, 1); err != nil {
		t.Fatalf("re-attach failed: %v", err)
	}

	// one relation row, active again
	all, _ := svc.ListAll(ctx, true)
	if len(all) != 1 || all[0].Deleted {
		t.Errorf("expected one active relation, got: %+v", all)
	}
}

func TestOrderItemService_Attach_MissingParents(t *testing.T) {
	orders := newStubOrderRepo()
	orders.seed(1, false)
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	rels := newStubRelRepo()

	svc := newRelSvc(orders, items, rels)

	if _, err := svc.Attach(context.Background(), 10, 99); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got: %v", err)
	}
	if _, err := svc.Attach(context.Background(), 99, 1); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got: %v", err)
	}
}

func TestOrderItemService_Attach_DeletedParentsStillAnchor(t *testing.T) {
	orders := newStubOrderRepo()
	orders.seed(1, true)
	items := newStubItemRepo()
	items.seed(10, "TAG-10", true)
	rels := newStubRelRepo()

	svc := newRelSvc(orders, items, rels)
	if _, err := svc.Attach(context.Background(), 10, 1); err != nil {
		t.Errorf("expected soft-deleted parents to anchor the relation, got: %v", err)
	}
}

func TestOrderItemService_Detach_Idempotent(t *testing.T) {
	orders := newStubOrderRepo()
	orders.seed(1, false)
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	rels := newStubRelRepo()

	svc := newRelSvc(orders, items, rels)
	ctx := context.Background()

	if _, err := svc.Attach(ctx, 10, 1); err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	if ok, err := svc.Detach(ctx, 10, 1); err != nil || !ok {
		t.Fatalf("first detach: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.Detach(ctx, 10, 1); err != nil || ok {
		t.Errorf("second detach should be a no-op: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.Detach(ctx, 10, 2); err != nil || ok {
		t.Errorf("detach of never-attached pair should be a no-op: ok=%v err=%v", ok, err)
	}
}

func TestOrderItemService_Move_HappyPath(t *testing.T) {
	orders := newStubOrderRepo()
	orders.seed(1, false)
	orders.seed(2, false)
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	rels := newStubRelRepo()

	svc := newRelSvc(orders, items, rels)
	ctx := context.Background()

	if _, err := svc.Attach(ctx, 10, 1); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if err := svc.Move(ctx, 10, 1, 2); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	if attached, _ := svc.IsAttached(ctx, 1, 10); attached {
		t.Error("expected source relation to be gone")
	}
	if attached, _ := svc.IsAttached(ctx, 2, 10); !attached {
		t.Error("expected target relation to be active")
	}
}

func TestOrderItemService_Move_SameOrderIsNoOp(t *testing.T) {
	svc := newRelSvc(newStubOrderRepo(), newStubItemRepo(), newStubRelRepo())
	if err := svc.Move(context.Background(), 10, 1, 1); err != nil {
		t.Errorf("expected no-op, got: %v", err)
	}
}

func TestOrderItemService_Move_AttachFailureRollsBack(t *testing.T) {
	orders := newStubOrderRepo()
	orders.seed(1, false)
	orders.seed(2, false)
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	rels := newStubRelRepo()

	svc := newRelSvc(orders, items, rels)
	ctx := context.Background()

	if _, err := svc.Attach(ctx, 10, 1); err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	rels.attachErr = errors.New("insert failed")
	if err := svc.Move(ctx, 10, 1, 2); err == nil {
		t.Fatal("expected move to fail")
	}

	// the detach inside the transaction must have been rolled back
	if attached, _ := svc.IsAttached(ctx, 1, 10); !attached {
		t.Error("expected item to remain on the original order after rollback")
	}
}

func TestOrderItemService_RandomInterleaving_HoldsExclusivity(t *testing.T) {
	orders := newStubOrderRepo()
	items := newStubItemRepo()
	for id := int64(1); id <= 5; id++ {
		orders.seed(id, false)
	}
	for id := int64(10); id < 18; id++ {
		items.seed(id, fmt.Sprintf("TAG-%d", id), false)
	}
	rels := newStubRelRepo()

	svc := newRelSvc(orders, items, rels)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))

	randOrder := func() int64 { return 1 + rng.Int63n(5) }
	randItem := func() int64 { return 10 + rng.Int63n(8) }

	for step := 0; step < 500; step++ {
		var err error
		switch rng.Intn(3) {
		case 0:
			_, err = svc.Attach(ctx, randItem(), randOrder())
		case 1:
			_, err = svc.Detach(ctx, randItem(), randOrder())
		case 2:
			err = svc.Move(ctx, randItem(), randOrder(), randOrder())
		}
		if err != nil && !errors.Is(err, domain.ErrItemAttached) {
			t.Fatalf("step %d: unexpected error: %v", step, err)
		}

		active, err := svc.ListAll(ctx, false)
		if err != nil {
			t.Fatalf("step %d: list failed: %v", step, err)
		}
		holders := make(map[int64]int64, len(active))
		for _, rel := range active {
			if other, dup := holders[rel.ItemID]; dup {
				t.Fatalf("step %d: item %d active on orders %d and %d", step, rel.ItemID, other, rel.OrderID)
			}
			holders[rel.ItemID] = rel.OrderID
		}
	}
}

func TestOrderItemService_Move_UnknownTargetOrder(t *testing.T) {
	orders := newStubOrderRepo()
	orders.seed(1, false)
	items := newStubItemRepo()
	items.seed(10, "TAG-10", false)
	rels := newStubRelRepo()

	svc := newRelSvc(orders, items, rels)
	if err := svc.Move(context.Background(), 10, 1, 99); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got: %v", err)
	}
}
