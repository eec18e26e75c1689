package repository

import (
	"errors"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
)

var ErrNotFound = errors.New("not found")

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}

// IsReferenced detects foreign key violation on delete.
func IsReferenced(err error) bool {
	return db.IsForeignKeyViolation(err)
}
