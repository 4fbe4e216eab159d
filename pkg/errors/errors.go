// Package errors holds storage-level sentinels shared by repositories,
// services and handlers.
package errors

import (
	"errors"

	"gorm.io/gorm"
)

// ErrOptimisticLock the row was modified by someone else since it was read.
var ErrOptimisticLock = errors.New("record was modified by another request, reload and retry")

// ErrDuplicate a unique constraint rejected the write. The database is opened
// with TranslateError so driver errors arrive as gorm.ErrDuplicatedKey.
var ErrDuplicate = gorm.ErrDuplicatedKey

// IsConflict reports whether err should be answered with 409.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOptimisticLock) || errors.Is(err, ErrDuplicate)
}
