package leave

import (
	"time"

	"go-leave/internal/actor"
	leaveerrors "go-leave/internal/leave/errors"
)

// Transition is the outcome of a successful decision.
type Transition struct {
	Action Action
	From   Status
	To     Status
}

func newTransition(a Action, from Status) Transition {
	to, _ := a.Target()
	return Transition{Action: a, From: from, To: to}
}

func isOwner(a actor.Actor, l LeaveRequest) bool {
	return a.ID == l.OwnerID
}

// DecideSubmit: only the owning employee may submit, and only a draft.
func DecideSubmit(a actor.Actor, l LeaveRequest) (Transition, error) {
	if !isOwner(a, l) || a.Role != actor.RoleEmployee {
		return Transition{}, leaveerrors.ErrNotOwner
	}
	if l.Status != StatusDraft {
		return Transition{}, leaveerrors.ErrNotDraft
	}
	return newTransition(ActionSubmitted, l.Status), nil
}

// DecideApprove dispatches on the approver's role. A manager approves the
// first step for their direct reports, HR approves the second step.
func DecideApprove(a actor.Actor, l LeaveRequest, owner actor.Actor) (Transition, error) {
	switch a.Role {
	case actor.RoleManager:
		if l.Status != StatusSubmitted {
			return Transition{}, leaveerrors.ErrNotAwaitingManager
		}
		if !a.Manages(owner) {
			return Transition{}, leaveerrors.ErrNotOwnersManager
		}
		return newTransition(ActionApprovedByManager, l.Status), nil
	case actor.RoleHR:
		if l.Status != StatusApprovedManager {
			return Transition{}, leaveerrors.ErrNotAwaitingHR
		}
		return newTransition(ActionApprovedByHR, l.Status), nil
	default:
		return Transition{}, leaveerrors.ErrApproverRole
	}
}

func DecideReject(a actor.Actor, l LeaveRequest, owner actor.Actor) (Transition, error) {
	if a.Role != actor.RoleManager && a.Role != actor.RoleHR {
		return Transition{}, leaveerrors.ErrApproverRole
	}
	if !l.Status.Pending() {
		return Transition{}, leaveerrors.ErrNotPending
	}
	if a.Role == actor.RoleManager && !a.Manages(owner) {
		return Transition{}, leaveerrors.ErrNotOwnersManager
	}
	return newTransition(ActionRejected, l.Status), nil
}

func DecideCancel(a actor.Actor, l LeaveRequest) (Transition, error) {
	if !isOwner(a, l) || a.Role != actor.RoleEmployee {
		return Transition{}, leaveerrors.ErrNotOwner
	}
	if l.Status.Terminal() {
		return Transition{}, leaveerrors.ErrAlreadyFinal
	}
	return newTransition(ActionCancelled, l.Status), nil
}

// DecideExpire cancels a pending request whose last status change is strictly
// older than threshold at now.
func DecideExpire(l LeaveRequest, now time.Time, threshold time.Duration) (Transition, error) {
	if !l.Status.Pending() {
		return Transition{}, leaveerrors.ErrNotPending
	}
	if now.Sub(l.UpdatedAt) <= threshold {
		return Transition{}, leaveerrors.ErrNotExpired
	}
	return newTransition(ActionAutoCancelled, l.Status), nil
}

// ReplayStatus folds an oldest-first transition history onto a fresh draft.
// It fails if any record does not continue from the status before it.
func ReplayStatus(records []TransitionRecord) (Status, error) {
	status := StatusDraft
	for _, rec := range records {
		to, ok := rec.Action.Target()
		if !ok || rec.FromStatus != status || rec.ToStatus != to || !allowed(rec.Action, status) {
			return status, leaveerrors.ErrBrokenHistory
		}
		status = to
	}
	return status, nil
}

func allowed(a Action, from Status) bool {
	switch a {
	case ActionSubmitted:
		return from == StatusDraft
	case ActionApprovedByManager:
		return from == StatusSubmitted
	case ActionApprovedByHR:
		return from == StatusApprovedManager
	case ActionRejected, ActionAutoCancelled:
		return from.Pending()
	case ActionCancelled:
		return !from.Terminal()
	default:
		return false
	}
}
