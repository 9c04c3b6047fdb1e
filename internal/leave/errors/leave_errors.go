package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type must be one of CASUAL, SICK, PAID",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
	ErrDuplicateLeave = apperror.New(
		apperror.CodeConflict,
		"leave request already exists",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)

	ErrOnlyEmployeesCreate = apperror.New(
		apperror.CodeForbidden,
		"only employees can create leave requests",
		http.StatusForbidden,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the owning employee can perform this action",
		http.StatusForbidden,
	)
	ErrNotOwnersManager = apperror.New(
		apperror.CodeForbidden,
		"only the direct manager of the owner can perform this action",
		http.StatusForbidden,
	)
	ErrApproverRole = apperror.New(
		apperror.CodeForbidden,
		"only managers or HR can perform this action",
		http.StatusForbidden,
	)

	ErrNotDraft = apperror.New(
		apperror.CodeInvalidState,
		"only draft requests can be submitted",
		http.StatusBadRequest,
	)
	ErrNotAwaitingManager = apperror.New(
		apperror.CodeInvalidState,
		"request is not awaiting manager approval",
		http.StatusBadRequest,
	)
	ErrNotAwaitingHR = apperror.New(
		apperror.CodeInvalidState,
		"request is not awaiting HR approval",
		http.StatusBadRequest,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"request is not pending approval",
		http.StatusBadRequest,
	)
	ErrAlreadyFinal = apperror.New(
		apperror.CodeInvalidState,
		"request is already in a final state",
		http.StatusBadRequest,
	)
	ErrNotExpired = apperror.New(
		apperror.CodeInvalidState,
		"request has not expired yet",
		http.StatusBadRequest,
	)
	ErrBrokenHistory = apperror.New(
		apperror.CodeInvalidState,
		"transition history is not a valid sequence",
		http.StatusInternalServerError,
	)

	ErrConcurrentUpdate = apperror.New(
		apperror.CodeTransientConflict,
		"leave request is being modified, retry the operation",
		http.StatusConflict,
	)
)
