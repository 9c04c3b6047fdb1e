package leave

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusSubmitted       Status = "SUBMITTED"
	StatusApprovedManager Status = "APPROVED_MANAGER"
	StatusApprovedHR      Status = "APPROVED_HR"
	StatusRejected        Status = "REJECTED"
	StatusCancelled       Status = "CANCELLED"
)

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApprovedHR || s == StatusRejected || s == StatusCancelled
}

func (s Status) Pending() bool {
	return s == StatusSubmitted || s == StatusApprovedManager
}

type Action string

const (
	ActionSubmitted         Action = "submitted"
	ActionApprovedByManager Action = "approved_by_manager"
	ActionApprovedByHR      Action = "approved_by_hr"
	ActionRejected          Action = "rejected"
	ActionCancelled         Action = "cancelled"
	ActionAutoCancelled     Action = "auto_cancelled_due_to_expiration"
)

// Target is the status a request lands in once the action is applied.
func (a Action) Target() (Status, bool) {
	switch a {
	case ActionSubmitted:
		return StatusSubmitted, true
	case ActionApprovedByManager:
		return StatusApprovedManager, true
	case ActionApprovedByHR:
		return StatusApprovedHR, true
	case ActionRejected:
		return StatusRejected, true
	case ActionCancelled, ActionAutoCancelled:
		return StatusCancelled, true
	default:
		return "", false
	}
}

type LeaveType string

const (
	LeaveTypeCasual LeaveType = "CASUAL"
	LeaveTypeSick   LeaveType = "SICK"
	LeaveTypePaid   LeaveType = "PAID"
)

func (t LeaveType) Valid() bool {
	return t == LeaveTypeCasual || t == LeaveTypeSick || t == LeaveTypePaid
}

type ActorKind string

const (
	ActorKindUser   ActorKind = "USER"
	ActorKindSystem ActorKind = "SYSTEM"
)

// ActorRef identifies who performed a transition: a specific actor, or the
// system itself. The zero value is not valid.
type ActorRef struct {
	kind ActorKind
	id   uuid.UUID
}

func ActorRefFor(id uuid.UUID) ActorRef {
	return ActorRef{kind: ActorKindUser, id: id}
}

func SystemActor() ActorRef {
	return ActorRef{kind: ActorKindSystem}
}

func (r ActorRef) Kind() ActorKind { return r.kind }

func (r ActorRef) IsSystem() bool { return r.kind == ActorKindSystem }

// ActorID returns the acting user's id. ok is false for the system.
func (r ActorRef) ActorID() (id uuid.UUID, ok bool) {
	if r.kind != ActorKindUser {
		return uuid.Nil, false
	}
	return r.id, true
}

func (r ActorRef) String() string {
	if r.IsSystem() {
		return "system"
	}
	return r.id.String()
}

type LeaveRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestNumber string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	OwnerID       uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_owner_dates"`

	LeaveType LeaveType `gorm:"type:varchar(10);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_owner_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_owner_dates"`
	Reason    string    `gorm:"type:text"`

	Status    Status    `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_leave_requests_status_updated"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;not null;index:idx_leave_requests_status_updated"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// TotalDays counts calendar days, both ends inclusive.
func (l LeaveRequest) TotalDays() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}

// TransitionRecord is an append-only audit entry for one successful transition.
type TransitionRecord struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeaveRequestID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Action         Action     `gorm:"type:varchar(40);not null"`
	FromStatus     Status     `gorm:"type:varchar(20);not null"`
	ToStatus       Status     `gorm:"type:varchar(20);not null"`
	ActorKind      ActorKind  `gorm:"type:varchar(10);not null"`
	ActorID        *uuid.UUID `gorm:"type:uuid;index"`
	OccurredAt     time.Time  `gorm:"not null;index"`
}

func (TransitionRecord) TableName() string {
	return "leave_transitions"
}

func (r TransitionRecord) Actor() ActorRef {
	if r.ActorKind == ActorKindSystem || r.ActorID == nil {
		return SystemActor()
	}
	return ActorRefFor(*r.ActorID)
}

func newTransitionRecord(l LeaveRequest, t Transition, by ActorRef, at time.Time) TransitionRecord {
	rec := TransitionRecord{
		ID:             uuid.New(),
		LeaveRequestID: l.ID,
		Action:         t.Action,
		FromStatus:     t.From,
		ToStatus:       t.To,
		ActorKind:      by.Kind(),
		OccurredAt:     at,
	}
	if id, ok := by.ActorID(); ok {
		rec.ActorID = &id
	}
	return rec
}
