package leave

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required,oneof=CASUAL SICK PAID"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"max=1000"`
}

type AuditLogQuery struct {
	LeaveRequestID string `form:"leave_request_id" binding:"omitempty,uuid"`
	Action         string `form:"action" binding:"omitempty,oneof=submitted approved_by_manager approved_by_hr rejected cancelled auto_cancelled_due_to_expiration"`
	ActorID        string `form:"actor_id" binding:"omitempty,uuid"`
	From           string `form:"from"`
	To             string `form:"to"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

type LeaveResponse struct {
	ID            string `json:"id"`
	RequestNumber string `json:"request_number"`
	OwnerID       string `json:"owner_id"`
	LeaveType     string `json:"leave_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	TotalDays     int    `json:"total_days"`
	Reason        string `json:"reason"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// ActorSummary is how an audit entry names who acted.
type ActorSummary struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type TransitionResponse struct {
	ID             string       `json:"id"`
	LeaveRequestID string       `json:"leave_request_id"`
	Action         string       `json:"action"`
	FromStatus     string       `json:"from_status"`
	ToStatus       string       `json:"to_status"`
	ActorKind      string       `json:"actor_kind"`
	ActorID        *string      `json:"actor_id,omitempty"`
	Actor          ActorSummary `json:"actor"`
	OccurredAt     string       `json:"occurred_at"`
}
