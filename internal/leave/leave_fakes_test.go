package leave_test

import (
	"bytes"
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"go-leave/internal/actor"
	actorerrors "go-leave/internal/actor/errors"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memRepository is a stateful Repository with the same compare-and-set
// semantics as the gorm one. Injected errors take precedence.
type memRepository struct {
	mu          sync.Mutex
	leaves      map[uuid.UUID]leave.LeaveRequest
	transitions []leave.TransitionRecord
	managerOf   map[uuid.UUID]uuid.UUID

	findExpirableCalls  int
	listTransitionsHits int

	createErr           error
	updateStatusErr     error
	createTransitionErr error
	findExpirableErr    error
	overlap             bool
}

func newMemRepository() *memRepository {
	return &memRepository{
		leaves:    map[uuid.UUID]leave.LeaveRequest{},
		managerOf: map[uuid.UUID]uuid.UUID{},
	}
}

func (r *memRepository) put(l leave.LeaveRequest) leave.LeaveRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.leaves[l.ID] = l
	return l
}

func (r *memRepository) get(id uuid.UUID) leave.LeaveRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaves[id]
}

func (r *memRepository) recorded() []leave.TransitionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]leave.TransitionRecord, len(r.transitions))
	copy(out, r.transitions)
	return out
}

func (r *memRepository) WithTx(*sql.Tx) leave.Repository { return r }

func (r *memRepository) Create(_ context.Context, l *leave.LeaveRequest) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(*l)
	return nil
}

func (r *memRepository) FindByID(_ context.Context, id string) (*leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *memRepository) FindByIDForUpdate(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *memRepository) UpdateStatus(_ context.Context, id string, from, to leave.Status, at time.Time) (bool, error) {
	if r.updateStatusErr != nil {
		return false, r.updateStatusErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[uuid.MustParse(id)]
	if !ok || l.Status != from {
		return false, nil
	}
	l.Status = to
	l.UpdatedAt = at
	r.leaves[l.ID] = l
	return true, nil
}

func (r *memRepository) CreateTransition(_ context.Context, rec *leave.TransitionRecord) error {
	if r.createTransitionErr != nil {
		return r.createTransitionErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, *rec)
	return nil
}

func (r *memRepository) ListTransitions(_ context.Context, filter leave.AuditFilter) ([]leave.TransitionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listTransitionsHits++

	var out []leave.TransitionRecord
	for _, rec := range r.transitions {
		if filter.LeaveRequestID != "" && rec.LeaveRequestID.String() != filter.LeaveRequestID {
			continue
		}
		if filter.Action != "" && rec.Action != filter.Action {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (r *memRepository) filter(keep func(leave.LeaveRequest) bool) []leave.LeaveRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.LeaveRequest
	for _, l := range r.leaves {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memRepository) FindAllByOwner(_ context.Context, ownerID string) ([]leave.LeaveRequest, error) {
	return r.filter(func(l leave.LeaveRequest) bool { return l.OwnerID.String() == ownerID }), nil
}

func (r *memRepository) FindAllByManager(_ context.Context, managerID string) ([]leave.LeaveRequest, error) {
	return r.filter(func(l leave.LeaveRequest) bool {
		m, ok := r.managerOf[l.OwnerID]
		return ok && m.String() == managerID
	}), nil
}

func (r *memRepository) FindAll(_ context.Context) ([]leave.LeaveRequest, error) {
	return r.filter(func(leave.LeaveRequest) bool { return true }), nil
}

func (r *memRepository) FindExpirable(_ context.Context, cutoff time.Time, after *leave.ExpiryCursor, limit int) ([]leave.LeaveRequest, error) {
	r.mu.Lock()
	r.findExpirableCalls++
	r.mu.Unlock()
	if r.findExpirableErr != nil {
		return nil, r.findExpirableErr
	}
	out := r.filter(func(l leave.LeaveRequest) bool {
		return l.Status.Pending() && l.UpdatedAt.Before(cutoff) && (after == nil || expiryAfter(l, *after))
	})
	sort.Slice(out, func(i, j int) bool {
		return expiryAfter(out[j], leave.ExpiryCursor{UpdatedAt: out[i].UpdatedAt, ID: out[i].ID})
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func expiryAfter(l leave.LeaveRequest, c leave.ExpiryCursor) bool {
	if !l.UpdatedAt.Equal(c.UpdatedAt) {
		return l.UpdatedAt.After(c.UpdatedAt)
	}
	return bytes.Compare(l.ID[:], c.ID[:]) > 0
}

func (r *memRepository) HasOverlappingPeriod(context.Context, string, time.Time, time.Time) (bool, error) {
	return r.overlap, nil
}

type fakeDirectory struct {
	mu     sync.Mutex
	actors map[uuid.UUID]actor.Actor
	calls  int
}

func newFakeDirectory(actors ...actor.Actor) *fakeDirectory {
	d := &fakeDirectory{actors: map[uuid.UUID]actor.Actor{}}
	for _, a := range actors {
		d.actors[a.ID] = a
	}
	return d
}

func (d *fakeDirectory) GetByID(_ context.Context, id string) (actor.Actor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	a, ok := d.actors[uuid.MustParse(id)]
	if !ok {
		return actor.Actor{}, actorerrors.ErrActorNotFound
	}
	return a, nil
}

type fakeOutbox struct {
	mu      sync.Mutex
	events  []kafka.OutboxEvent
	txs     []*sql.Tx
	createF func(ctx context.Context, e kafka.OutboxEvent) error
}

func (o *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	o.mu.Lock()
	o.txs = append(o.txs, tx)
	o.mu.Unlock()
	return o
}

func (o *fakeOutbox) Create(ctx context.Context, e kafka.OutboxEvent) error {
	if o.createF != nil {
		if err := o.createF(ctx, e); err != nil {
			return err
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
	return nil
}

func (o *fakeOutbox) ListPending(context.Context, int) ([]kafka.OutboxEvent, error) { return nil, nil }
func (o *fakeOutbox) MarkSent(context.Context, string) error                         { return nil }
func (o *fakeOutbox) MarkFailed(context.Context, string, string) error               { return nil }
