package events

import "time"

const (
	LeaveTransitionsTopic  = "hr.leave.transitions.v1"
	LeaveTransitionedEvent = "leave_transitioned"
	LeaveAggregateType     = "leave_request"
)

type LeaveTransitioned struct {
	EventType      string    `json:"event_type"`
	LeaveRequestID string    `json:"leave_request_id"`
	RequestNumber  string    `json:"request_number"`
	OwnerID        string    `json:"owner_id"`
	Action         string    `json:"action"`
	FromStatus     string    `json:"from_status"`
	ToStatus       string    `json:"to_status"`
	ActorKind      string    `json:"actor_kind"`
	ActorID        string    `json:"actor_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
