package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go-leave/internal/actor"
	"go-leave/internal/clock"
	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/lock"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/counter"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultExpirationThreshold = 72 * time.Hour
	dateLayout                 = "2006-01-02"
	tracerName                 = "go-leave/internal/leave"
)

// Directory resolves actors; the owner's manager drives manager checks.
type Directory interface {
	GetByID(ctx context.Context, id string) (actor.Actor, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	CreateDraft(ctx context.Context, a actor.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	Submit(ctx context.Context, a actor.Actor, id string) (LeaveResponse, error)
	Approve(ctx context.Context, a actor.Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, a actor.Actor, id string) (LeaveResponse, error)
	Cancel(ctx context.Context, a actor.Actor, id string) (LeaveResponse, error)
	Expire(ctx context.Context, id string, now time.Time) (LeaveResponse, error)
	GetVisible(ctx context.Context, a actor.Actor, id string) (LeaveResponse, error)
	ListVisible(ctx context.Context, a actor.Actor) ([]LeaveResponse, error)
	ListAuditLog(ctx context.Context, a actor.Actor, filter AuditFilter) ([]TransitionResponse, error)
}

type Option func(*service)

func WithClock(c clock.Clock) Option {
	return func(s *service) { s.clock = c }
}

func WithExpirationThreshold(d time.Duration) Option {
	return func(s *service) {
		if d > 0 {
			s.threshold = d
		}
	}
}

func WithLocker(l lock.Locker) Option {
	return func(s *service) { s.locker = l }
}

// WithOutbox enqueues a leave_transitioned event in the same transaction as
// every status change.
func WithOutbox(o kafka.OutboxRepository) Option {
	return func(s *service) { s.outbox = o }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *service) { s.tracer = t }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l.Named("leave.service")
		}
	}
}

type service struct {
	db        *sql.DB
	repo      Repository
	counter   counter.Repository
	directory Directory
	outbox    kafka.OutboxRepository
	locker    lock.Locker
	clock     clock.Clock
	threshold time.Duration
	tracer    trace.Tracer
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counterRepo counter.Repository, directory Directory, opts ...Option) Service {
	s := &service{
		db:        db,
		repo:      repo,
		counter:   counterRepo,
		directory: directory,
		locker:    lock.NewMemoryLocker(lock.DefaultOptions().Wait),
		clock:     clock.System(),
		threshold: DefaultExpirationThreshold,
		tracer:    otel.Tracer(tracerName),
		logger:    zap.L().Named("leave.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func LockKey(id string) string {
	return "leave_request:" + id
}

func ownerLockKey(ownerID string) string {
	return "leave_owner:" + ownerID
}

func (s *service) CreateDraft(ctx context.Context, a actor.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("actor_id", a.ID.String()),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if a.Role != actor.RoleEmployee {
		return LeaveResponse{}, leaveerrors.ErrOnlyEmployeesCreate
	}
	leaveType := LeaveType(req.LeaveType)
	if !leaveType.Valid() {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveType
	}
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	release, err := s.locker.Acquire(ctx, ownerLockKey(a.ID.String()))
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, a.ID.String(), startDate, endDate)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("owner_id", a.ID.String()),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	seq, err := s.counter.WithTx(tx).GetNextValue(ctx, counter.TypeLeaveRequest)
	if err != nil {
		s.logger.Error("create leave request number failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	now := s.clock.Now()
	l := &LeaveRequest{
		ID:            uuid.New(),
		RequestNumber: counter.FormatLeaveRequestNumber(seq),
		OwnerID:       a.ID,
		LeaveType:     leaveType,
		StartDate:     startDate,
		EndDate:       endDate,
		Reason:        req.Reason,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("request_number", l.RequestNumber),
		zap.String("owner_id", a.ID.String()),
	)

	return mapToResponse(*l), nil
}

func (s *service) Submit(ctx context.Context, a actor.Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, "submit", id, ActorRefFor(a.ID), s.clock.Now, func(_ context.Context, l LeaveRequest) (Transition, error) {
		return DecideSubmit(a, l)
	})
}

func (s *service) Approve(ctx context.Context, a actor.Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, "approve", id, ActorRefFor(a.ID), s.clock.Now, func(ctx context.Context, l LeaveRequest) (Transition, error) {
		owner, err := s.ownerFor(ctx, a, l)
		if err != nil {
			return Transition{}, err
		}
		return DecideApprove(a, l, owner)
	})
}

func (s *service) Reject(ctx context.Context, a actor.Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, "reject", id, ActorRefFor(a.ID), s.clock.Now, func(ctx context.Context, l LeaveRequest) (Transition, error) {
		owner, err := s.ownerFor(ctx, a, l)
		if err != nil {
			return Transition{}, err
		}
		return DecideReject(a, l, owner)
	})
}

func (s *service) Cancel(ctx context.Context, a actor.Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, "cancel", id, ActorRefFor(a.ID), s.clock.Now, func(_ context.Context, l LeaveRequest) (Transition, error) {
		return DecideCancel(a, l)
	})
}

// Expire is the system-driven cancellation used by the sweeper. now is the
// sweep's reference time, not the wall clock.
func (s *service) Expire(ctx context.Context, id string, now time.Time) (LeaveResponse, error) {
	at := func() time.Time { return now }
	return s.transition(ctx, "expire", id, SystemActor(), at, func(_ context.Context, l LeaveRequest) (Transition, error) {
		return DecideExpire(l, now, s.threshold)
	})
}

// ownerFor only hits the directory when the decision needs the owner's manager.
func (s *service) ownerFor(ctx context.Context, a actor.Actor, l LeaveRequest) (actor.Actor, error) {
	if a.Role != actor.RoleManager {
		return actor.Actor{ID: l.OwnerID}, nil
	}
	return s.directory.GetByID(ctx, l.OwnerID.String())
}

type decideFunc func(ctx context.Context, l LeaveRequest) (Transition, error)

func (s *service) transition(ctx context.Context, op, id string, by ActorRef, now func() time.Time, decide decideFunc) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	ctx, span := s.tracer.Start(ctx, "leave."+op, trace.WithAttributes(
		attribute.String("leave.id", id),
		attribute.String("leave.actor", by.String()),
	))
	defer span.End()

	log := s.logger.With(
		zap.String("op", op),
		zap.String("leave_id", id),
		zap.String("actor", by.String()),
		zap.String("request_id", contextutil.GetRequestID(ctx)),
	)
	log.Debug("leave transition requested")

	resp, err := s.applyTransition(ctx, id, by, now, decide, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return LeaveResponse{}, err
	}
	span.SetAttributes(attribute.String("leave.status", resp.Status))
	return resp, nil
}

func (s *service) applyTransition(ctx context.Context, id string, by ActorRef, now func() time.Time, decide decideFunc, log *zap.Logger) (LeaveResponse, error) {
	release, err := s.locker.Acquire(ctx, LockKey(id))
	if err != nil {
		log.Warn("leave transition lock not acquired", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("leave transition begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	t, err := decide(ctx, *l)
	if err != nil {
		log.Warn("leave transition refused",
			zap.String("status", string(l.Status)),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	at := now()
	ok, err := qtx.UpdateStatus(ctx, id, t.From, t.To, at)
	if err != nil {
		log.Error("leave transition persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if !ok {
		log.Warn("leave transition lost compare-and-set", zap.String("expected_status", string(t.From)))
		return LeaveResponse{}, leaveerrors.ErrConcurrentUpdate
	}

	rec := newTransitionRecord(*l, t, by, at)
	if err := qtx.CreateTransition(ctx, &rec); err != nil {
		log.Error("leave transition record failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueueTransition(ctx, tx, *l, rec); err != nil {
		log.Error("leave transition outbox failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("leave transition commit failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	l.Status = t.To
	l.UpdatedAt = at
	log.Info("leave transition success",
		zap.String("action", string(t.Action)),
		zap.String("from_status", string(t.From)),
		zap.String("to_status", string(t.To)),
	)
	return mapToResponse(*l), nil
}

func (s *service) enqueueTransition(ctx context.Context, tx *sql.Tx, l LeaveRequest, rec TransitionRecord) error {
	if s.outbox == nil {
		return nil
	}

	evt := events.LeaveTransitioned{
		EventType:      events.LeaveTransitionedEvent,
		LeaveRequestID: l.ID.String(),
		RequestNumber:  l.RequestNumber,
		OwnerID:        l.OwnerID.String(),
		Action:         string(rec.Action),
		FromStatus:     string(rec.FromStatus),
		ToStatus:       string(rec.ToStatus),
		ActorKind:      string(rec.ActorKind),
		OccurredAt:     rec.OccurredAt,
	}
	if rec.ActorID != nil {
		evt.ActorID = rec.ActorID.String()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: events.LeaveAggregateType,
		AggregateID:   l.ID.String(),
		EventType:     events.LeaveTransitionedEvent,
		Topic:         events.LeaveTransitionsTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) GetVisible(ctx context.Context, a actor.Actor, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	visible, err := s.canSee(ctx, a, *l)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !visible {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}
	return mapToResponse(*l), nil
}

func (s *service) canSee(ctx context.Context, a actor.Actor, l LeaveRequest) (bool, error) {
	switch a.Role {
	case actor.RoleHR:
		return true, nil
	case actor.RoleEmployee:
		return l.OwnerID == a.ID, nil
	case actor.RoleManager:
		owner, err := s.directory.GetByID(ctx, l.OwnerID.String())
		if err != nil {
			if apperror.HasCode(err, apperror.CodeNotFound) {
				return false, nil
			}
			return false, err
		}
		return a.Manages(owner), nil
	default:
		return false, nil
	}
}

func (s *service) ListVisible(ctx context.Context, a actor.Actor) ([]LeaveResponse, error) {
	var (
		leaves []LeaveRequest
		err    error
	)
	switch a.Role {
	case actor.RoleHR:
		leaves, err = s.repo.FindAll(ctx)
	case actor.RoleManager:
		leaves, err = s.repo.FindAllByManager(ctx, a.ID.String())
	case actor.RoleEmployee:
		leaves, err = s.repo.FindAllByOwner(ctx, a.ID.String())
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

// ListAuditLog is HR-only. Everyone else gets an empty log, not an error.
func (s *service) ListAuditLog(ctx context.Context, a actor.Actor, filter AuditFilter) ([]TransitionResponse, error) {
	if a.Role != actor.RoleHR {
		return []TransitionResponse{}, nil
	}

	records, err := s.repo.ListTransitions(ctx, filter)
	if err != nil {
		s.logger.Error("list audit log failed", zap.Error(err))
		return nil, err
	}

	resp := mapToTransitionResponses(records)
	s.summarizeActors(ctx, records, resp)
	return resp, nil
}

const systemActorName = "System"

// summarizeActors names each entry's actor for display, one directory lookup
// per distinct actor. An actor the directory no longer knows keeps its id.
func (s *service) summarizeActors(ctx context.Context, records []TransitionRecord, resp []TransitionResponse) {
	known := map[uuid.UUID]ActorSummary{}
	for i, r := range records {
		if r.ActorID == nil {
			resp[i].Actor = ActorSummary{Name: systemActorName}
			continue
		}
		summary, ok := known[*r.ActorID]
		if !ok {
			summary = ActorSummary{Name: r.ActorID.String()}
			a, err := s.directory.GetByID(ctx, r.ActorID.String())
			if err != nil {
				s.logger.Warn("audit actor lookup failed", zap.String("actor_id", r.ActorID.String()), zap.Error(err))
			} else {
				if a.FullName != "" {
					summary.Name = a.FullName
				}
				summary.Role = string(a.Role)
			}
			known[*r.ActorID] = summary
		}
		resp[i].Actor = summary
	}
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	return LeaveResponse{
		ID:            l.ID.String(),
		RequestNumber: l.RequestNumber,
		OwnerID:       l.OwnerID.String(),
		LeaveType:     string(l.LeaveType),
		StartDate:     l.StartDate.Format(dateLayout),
		EndDate:       l.EndDate.Format(dateLayout),
		TotalDays:     l.TotalDays(),
		Reason:        l.Reason,
		Status:        string(l.Status),
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     l.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}

func mapToTransitionResponses(records []TransitionRecord) []TransitionResponse {
	resp := make([]TransitionResponse, len(records))
	for i, r := range records {
		resp[i] = TransitionResponse{
			ID:             r.ID.String(),
			LeaveRequestID: r.LeaveRequestID.String(),
			Action:         string(r.Action),
			FromStatus:     string(r.FromStatus),
			ToStatus:       string(r.ToStatus),
			ActorKind:      string(r.ActorKind),
			OccurredAt:     r.OccurredAt.Format(time.RFC3339),
		}
		if r.ActorID != nil {
			v := r.ActorID.String()
			resp[i].ActorID = &v
		}
	}
	return resp
}
