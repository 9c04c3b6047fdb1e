package actorerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrActorNotFound = apperror.New(
		apperror.CodeNotFound,
		"actor not found",
		http.StatusNotFound,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
)
