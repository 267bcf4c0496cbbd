package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a lookup by identifier or name matches no row.
	ErrNotFound = errors.New("not found")
	// ErrIntegrity is returned when a write references a missing or mismatched owner.
	ErrIntegrity = errors.New("integrity violation")
	// ErrInvalidField is returned for update bodies naming a field outside the allow-list
	// or carrying a malformed value.
	ErrInvalidField = errors.New("invalid field")
)

// mapError converts driver constraint failures into ErrIntegrity.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintNotNull:
			return fmt.Errorf("%w: %v", ErrIntegrity, err)
		}
	}
	return err
}
