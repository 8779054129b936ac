package persistence

import (
	"errors"
	"strings"

	"github.com/stockflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ErrOptimisticLock is returned when an update finds the row at another version
var ErrOptimisticLock = shared.NewDomainError(shared.CodeConflict, "Record was modified by another transaction")

// isUniqueViolation detects unique constraint failures from postgres and sqlite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// notFound maps gorm.ErrRecordNotFound to a domain NOT_FOUND error
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NotFoundf(format, args...)
	}
	return err
}

// checkVersioned turns a versioned update result into a domain error
func checkVersioned(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOptimisticLock
	}
	return nil
}
