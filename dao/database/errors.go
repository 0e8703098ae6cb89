package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies a storage failure.
type Kind int

const (
	KindTransport Kind = iota
	KindNotFound
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConstraint:
		return "constraint violation"
	default:
		return "transport failure"
	}
}

// ErrNotFound is matched by errors.Is for every NotFound DataError.
var ErrNotFound = errors.New("record not found")

// DataError wraps a storage failure with the operation that hit it.
type DataError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// IsConstraint reports whether err is a unique or foreign key violation.
func IsConstraint(err error) bool {
	var de *DataError
	return errors.As(err, &de) && de.Kind == KindConstraint
}

// wrap classifies err under op. An error that is already a DataError
// keeps its kind and gains the outer operation name.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DataError
	if errors.As(err, &de) {
		return &DataError{Op: op, Kind: de.Kind, Err: de.Err}
	}
	kind := KindTransport
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		kind = KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		kind = KindConstraint
	}
	return &DataError{Op: op, Kind: kind, Err: err}
}
