package service

import (
	"errors"

	"go-leather-stock/pkg/apperror"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// lookupError turns a repository lookup failure into a not-found or
// internal error.
func lookupError(op, what string, id any, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(op, what, id)
	}
	return apperror.Internal(op, err)
}

// failed logs infrastructure errors and returns err with a kind attached.
// Domain errors pass through unlogged.
func failed(log *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	err = apperror.Internal(op, err)
	if apperror.KindOf(err) == apperror.KindInternal {
		log.Error("operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

// duplicateError reports a unique violation as a conflict. The active
// location index is the only unique constraint writes inside the ledger can hit.
func duplicateError(err error, op, format string, args ...any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict(op, format, args...)
	}
	return err
}
