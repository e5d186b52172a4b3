// Package datastore provides error handling helpers for database operations
package datastore

import (
	"strings"

	"gorm.io/gorm"

	"hikelog/internal/errors"
)

// dbError creates a properly categorized database error with context.
// SQLite-level constraint and corruption failures are recognized by message
// so callers can distinguish them from generic storage faults.
func dbError(err error, operation string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(categorizeDBError(err)).
		Context("operation", operation)

	// Add context pairs
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

func categorizeDBError(err error) errors.ErrorCategory {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.CategoryNotFound
	}
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "constraint failed"),
		strings.Contains(errStr, "constraint violation"),
		strings.Contains(errStr, "foreign key"):
		return errors.CategoryConstraint
	case strings.Contains(errStr, "malformed"),
		strings.Contains(errStr, "corrupt"),
		strings.Contains(errStr, "not a database"),
		strings.Contains(errStr, "disk i/o error"):
		return errors.CategoryCorruption
	default:
		return errors.CategoryDatabase
	}
}

// notFoundError reports an update or delete that targeted a missing id
func notFoundError(entity string, id uint) error {
	return errors.Newf("%s with id %d not found", entity, id).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Context("entity", entity).
		Context("id", id).
		Build()
}

// constraintError reports a not-null or referential violation detected
// before the write reached the database (defense in depth, the form layer
// is expected to have validated already)
func constraintError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryConstraint).
		Context("field", field).
		Context("value", value).
		Build()
}
