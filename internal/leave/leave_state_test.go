package leave_test

import (
	"testing"
	"time"

	"go-leave/internal/actor"
	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type cast struct {
	employee actor.Actor
	other    actor.Actor
	manager  actor.Actor
	stranger actor.Actor
	hr       actor.Actor
}

func newCast() cast {
	managerID := uuid.New()
	strangerID := uuid.New()
	return cast{
		employee: actor.Actor{ID: uuid.New(), FullName: "Siti Rahma", Role: actor.RoleEmployee, ManagerID: &managerID},
		other:    actor.Actor{ID: uuid.New(), Role: actor.RoleEmployee, ManagerID: &strangerID},
		manager:  actor.Actor{ID: managerID, Role: actor.RoleManager},
		stranger: actor.Actor{ID: strangerID, Role: actor.RoleManager},
		hr:       actor.Actor{ID: uuid.New(), FullName: "Budi Santoso", Role: actor.RoleHR},
	}
}

func requestIn(owner actor.Actor, status leave.Status) leave.LeaveRequest {
	return leave.LeaveRequest{ID: uuid.New(), OwnerID: owner.ID, Status: status}
}

func TestDecideSubmit(t *testing.T) {
	c := newCast()

	tests := []struct {
		name    string
		by      actor.Actor
		status  leave.Status
		wantErr error
	}{
		{"owner submits draft", c.employee, leave.StatusDraft, nil},
		{"other employee", c.other, leave.StatusDraft, leaveerrors.ErrNotOwner},
		{"manager", c.manager, leave.StatusDraft, leaveerrors.ErrNotOwner},
		{"already submitted", c.employee, leave.StatusSubmitted, leaveerrors.ErrNotDraft},
		{"cancelled", c.employee, leave.StatusCancelled, leaveerrors.ErrNotDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := leave.DecideSubmit(tt.by, requestIn(c.employee, tt.status))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, leave.Transition{Action: leave.ActionSubmitted, From: leave.StatusDraft, To: leave.StatusSubmitted}, got)
		})
	}
}

func TestDecideApprove(t *testing.T) {
	c := newCast()

	tests := []struct {
		name    string
		by      actor.Actor
		status  leave.Status
		want    leave.Transition
		wantErr error
	}{
		{
			name:   "manager approves submitted",
			by:     c.manager,
			status: leave.StatusSubmitted,
			want:   leave.Transition{Action: leave.ActionApprovedByManager, From: leave.StatusSubmitted, To: leave.StatusApprovedManager},
		},
		{
			name:   "hr approves manager approved",
			by:     c.hr,
			status: leave.StatusApprovedManager,
			want:   leave.Transition{Action: leave.ActionApprovedByHR, From: leave.StatusApprovedManager, To: leave.StatusApprovedHR},
		},
		{name: "manager of someone else", by: c.stranger, status: leave.StatusSubmitted, wantErr: leaveerrors.ErrNotOwnersManager},
		{name: "manager state checked before relationship", by: c.stranger, status: leave.StatusDraft, wantErr: leaveerrors.ErrNotAwaitingManager},
		{name: "manager on manager approved", by: c.manager, status: leave.StatusApprovedManager, wantErr: leaveerrors.ErrNotAwaitingManager},
		{name: "hr skips manager step", by: c.hr, status: leave.StatusSubmitted, wantErr: leaveerrors.ErrNotAwaitingHR},
		{name: "hr on terminal", by: c.hr, status: leave.StatusApprovedHR, wantErr: leaveerrors.ErrNotAwaitingHR},
		{name: "employee cannot approve", by: c.employee, status: leave.StatusSubmitted, wantErr: leaveerrors.ErrApproverRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := leave.DecideApprove(tt.by, requestIn(c.employee, tt.status), c.employee)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideReject(t *testing.T) {
	c := newCast()

	tests := []struct {
		name    string
		by      actor.Actor
		status  leave.Status
		wantErr error
	}{
		{"manager rejects submitted", c.manager, leave.StatusSubmitted, nil},
		{"manager rejects manager approved", c.manager, leave.StatusApprovedManager, nil},
		{"hr rejects submitted", c.hr, leave.StatusSubmitted, nil},
		{"hr rejects manager approved", c.hr, leave.StatusApprovedManager, nil},
		{"employee", c.employee, leave.StatusSubmitted, leaveerrors.ErrApproverRole},
		{"draft", c.manager, leave.StatusDraft, leaveerrors.ErrNotPending},
		{"terminal", c.hr, leave.StatusApprovedHR, leaveerrors.ErrNotPending},
		{"unrelated manager", c.stranger, leave.StatusSubmitted, leaveerrors.ErrNotOwnersManager},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := leave.DecideReject(tt.by, requestIn(c.employee, tt.status), c.employee)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, leave.ActionRejected, got.Action)
			assert.Equal(t, tt.status, got.From)
			assert.Equal(t, leave.StatusRejected, got.To)
		})
	}
}

func TestDecideCancel(t *testing.T) {
	c := newCast()

	for _, status := range []leave.Status{leave.StatusDraft, leave.StatusSubmitted, leave.StatusApprovedManager} {
		t.Run("owner cancels "+string(status), func(t *testing.T) {
			got, err := leave.DecideCancel(c.employee, requestIn(c.employee, status))
			assert.NoError(t, err)
			assert.Equal(t, leave.Transition{Action: leave.ActionCancelled, From: status, To: leave.StatusCancelled}, got)
		})
	}

	for _, status := range []leave.Status{leave.StatusApprovedHR, leave.StatusRejected, leave.StatusCancelled} {
		t.Run("terminal "+string(status), func(t *testing.T) {
			_, err := leave.DecideCancel(c.employee, requestIn(c.employee, status))
			assert.ErrorIs(t, err, leaveerrors.ErrAlreadyFinal)
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
		})
	}

	t.Run("not owner", func(t *testing.T) {
		_, err := leave.DecideCancel(c.other, requestIn(c.employee, leave.StatusSubmitted))
		assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
		assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	})

	t.Run("manager of owner", func(t *testing.T) {
		_, err := leave.DecideCancel(c.manager, requestIn(c.employee, leave.StatusSubmitted))
		assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
	})
}

func TestDecideExpire(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	threshold := 72 * time.Hour

	stale := func(status leave.Status, age time.Duration) leave.LeaveRequest {
		return leave.LeaveRequest{ID: uuid.New(), Status: status, UpdatedAt: now.Add(-age)}
	}

	t.Run("submitted past threshold", func(t *testing.T) {
		got, err := leave.DecideExpire(stale(leave.StatusSubmitted, threshold+time.Second), now, threshold)
		assert.NoError(t, err)
		assert.Equal(t, leave.ActionAutoCancelled, got.Action)
		assert.Equal(t, leave.StatusCancelled, got.To)
	})

	t.Run("manager approved past threshold", func(t *testing.T) {
		got, err := leave.DecideExpire(stale(leave.StatusApprovedManager, 100*time.Hour), now, threshold)
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApprovedManager, got.From)
	})

	t.Run("exactly at threshold", func(t *testing.T) {
		_, err := leave.DecideExpire(stale(leave.StatusSubmitted, threshold), now, threshold)
		assert.ErrorIs(t, err, leaveerrors.ErrNotExpired)
	})

	t.Run("draft never expires", func(t *testing.T) {
		_, err := leave.DecideExpire(stale(leave.StatusDraft, 1000*time.Hour), now, threshold)
		assert.ErrorIs(t, err, leaveerrors.ErrNotPending)
	})

	t.Run("terminal", func(t *testing.T) {
		_, err := leave.DecideExpire(stale(leave.StatusApprovedHR, 1000*time.Hour), now, threshold)
		assert.ErrorIs(t, err, leaveerrors.ErrNotPending)
	})
}

func TestReplayStatus(t *testing.T) {
	rec := func(a leave.Action, from, to leave.Status) leave.TransitionRecord {
		return leave.TransitionRecord{Action: a, FromStatus: from, ToStatus: to}
	}

	t.Run("empty history is a draft", func(t *testing.T) {
		got, err := leave.ReplayStatus(nil)
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusDraft, got)
	})

	t.Run("full approval", func(t *testing.T) {
		got, err := leave.ReplayStatus([]leave.TransitionRecord{
			rec(leave.ActionSubmitted, leave.StatusDraft, leave.StatusSubmitted),
			rec(leave.ActionApprovedByManager, leave.StatusSubmitted, leave.StatusApprovedManager),
			rec(leave.ActionApprovedByHR, leave.StatusApprovedManager, leave.StatusApprovedHR),
		})
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApprovedHR, got)
	})

	t.Run("expired after manager approval", func(t *testing.T) {
		got, err := leave.ReplayStatus([]leave.TransitionRecord{
			rec(leave.ActionSubmitted, leave.StatusDraft, leave.StatusSubmitted),
			rec(leave.ActionApprovedByManager, leave.StatusSubmitted, leave.StatusApprovedManager),
			rec(leave.ActionAutoCancelled, leave.StatusApprovedManager, leave.StatusCancelled),
		})
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, got)
	})

	t.Run("gap in history", func(t *testing.T) {
		_, err := leave.ReplayStatus([]leave.TransitionRecord{
			rec(leave.ActionSubmitted, leave.StatusDraft, leave.StatusSubmitted),
			rec(leave.ActionApprovedByHR, leave.StatusApprovedManager, leave.StatusApprovedHR),
		})
		assert.ErrorIs(t, err, leaveerrors.ErrBrokenHistory)
	})

	t.Run("transition out of terminal", func(t *testing.T) {
		_, err := leave.ReplayStatus([]leave.TransitionRecord{
			rec(leave.ActionCancelled, leave.StatusDraft, leave.StatusCancelled),
			rec(leave.ActionCancelled, leave.StatusCancelled, leave.StatusCancelled),
		})
		assert.ErrorIs(t, err, leaveerrors.ErrBrokenHistory)
	})

	t.Run("expire from draft", func(t *testing.T) {
		_, err := leave.ReplayStatus([]leave.TransitionRecord{
			rec(leave.ActionAutoCancelled, leave.StatusDraft, leave.StatusCancelled),
		})
		assert.ErrorIs(t, err, leaveerrors.ErrBrokenHistory)
	})
}

func TestActorRef(t *testing.T) {
	id := uuid.New()

	user := leave.ActorRefFor(id)
	got, ok := user.ActorID()
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, leave.ActorKindUser, user.Kind())
	assert.Equal(t, id.String(), user.String())

	sys := leave.SystemActor()
	_, ok = sys.ActorID()
	assert.False(t, ok)
	assert.True(t, sys.IsSystem())
	assert.Equal(t, "system", sys.String())

	rec := leave.TransitionRecord{ActorKind: leave.ActorKindSystem}
	assert.True(t, rec.Actor().IsSystem())
	rec = leave.TransitionRecord{ActorKind: leave.ActorKindUser, ActorID: &id}
	assert.Equal(t, user, rec.Actor())
}
