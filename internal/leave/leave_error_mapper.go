package leave

import (
	"errors"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/lock"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	if errors.Is(err, lock.ErrNotAcquired) {
		return leaveerrors.ErrConcurrentUpdate
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return leaveerrors.ErrConcurrentUpdate
		case pgUniqueViolation:
			return leaveerrors.ErrDuplicateLeave
		}
	}
	return err
}
