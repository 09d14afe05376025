package catalog

import (
	"errors"
	"fmt"
	"net/http"

	"magazine-catalog/internal/infrastructure/database"
)

// Sentinels usable with errors.Is. Every typed error below matches one of them.
var (
	ErrValidation     = errors.New("validation failed")
	ErrImmutableField = errors.New("field is immutable")
	ErrNotFound       = errors.New("not found")
	ErrStorage        = errors.New("storage failure")
)

// ValidationKind separates wrong-kind values from out-of-bounds values.
type ValidationKind int

const (
	KindType ValidationKind = iota + 1
	KindRange
)

func (k ValidationKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}

// ValidationError is raised before any mutation or I/O when a value
// breaks a field constraint.
type ValidationError struct {
	Entity string
	Field  string
	Kind   ValidationKind
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Entity, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ImmutableFieldError is returned for any attempt to change a
// construction-time field.
type ImmutableFieldError struct {
	Entity string
	Field  string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("%s %s cannot be changed after construction", e.Entity, e.Field)
}

func (e *ImmutableFieldError) Is(target error) bool { return target == ErrImmutableField }

// NotFoundError means a lookup by id or relationship matched no row.
// It is distinct from an empty but valid collection.
type NotFoundError struct {
	Entity string
	ID     int64
	Via    string // relationship used for the lookup, empty for direct lookups
}

func (e *NotFoundError) Error() string {
	if e.Via != "" {
		return fmt.Sprintf("%s of %s %d not found", e.Entity, e.Via, e.ID)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StorageError carries a gateway failure to the caller unmodified.
type StorageError struct {
	Op         string
	Entity     string
	Constraint database.Constraint
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func newTypeError(entity, field, msg string) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Kind: KindType, Err: errors.New(msg)}
}

func newRangeError(entity, field string, err error) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Kind: KindRange, Err: err}
}

// NewTypeError lets outer layers (request decoding) report a wrong-kind value
// with the same taxonomy as the entities.
func NewTypeError(entity, field, msg string) error {
	return newTypeError(entity, field, msg)
}

// NewImmutableFieldError reports an attempted change of field.
func NewImmutableFieldError(entity, field string) error {
	return &ImmutableFieldError{Entity: entity, Field: field}
}

func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsTypeError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e) && e.Kind == KindType
}

func IsRangeError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e) && e.Kind == KindRange
}

func IsImmutable(err error) bool {
	var e *ImmutableFieldError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsStorageError(err error) bool {
	var e *StorageError
	return errors.As(err, &e)
}

// IsConstraint reports whether err is a storage error caused by constraint c.
func IsConstraint(err error, c database.Constraint) bool {
	var e *StorageError
	return errors.As(err, &e) && e.Constraint == c
}

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	var storageErr *StorageError
	switch {
	case IsTypeError(err):
		return "TYPE_VALIDATION_ERROR"
	case IsRangeError(err):
		return "RANGE_VALIDATION_ERROR"
	case IsImmutable(err):
		return "IMMUTABLE_FIELD"
	case IsNotFound(err):
		return "NOT_FOUND"
	case errors.As(err, &storageErr):
		switch storageErr.Constraint {
		case database.ConstraintForeignKey:
			return "REFERENCE_CONFLICT"
		case database.ConstraintUnique:
			return "DUPLICATE"
		}
		return "STORAGE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch ToErrorCode(err) {
	case "TYPE_VALIDATION_ERROR", "RANGE_VALIDATION_ERROR":
		return http.StatusBadRequest
	case "IMMUTABLE_FIELD":
		return http.StatusUnprocessableEntity
	case "NOT_FOUND":
		return http.StatusNotFound
	case "REFERENCE_CONFLICT", "DUPLICATE":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
