package sequence

import (
	"context" // Context for store operations
	"fmt"     // Code formatting

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

const (
	// CodeTag prefixes every issued fallback code.
	CodeTag = "REFONL"
	// StartOffset is the legacy starting value of a fresh counter; the first
	// issued value is StartOffset+1.
	StartOffset = 40
)

// Allocator issues globally unique, strictly increasing formatted codes from a
// named counter. Correctness under concurrent callers rests entirely on the
// backing store's transaction; there is no in-process lock, since allocation
// must be safe across multiple processes.
type Allocator interface {
	Allocate(ctx context.Context, counterName string) (string, error)
}

type counterAllocator struct {
	db *gorm.DB
}

// NewAllocator returns an Allocator backed by the counters table.
func NewAllocator(db *gorm.DB) Allocator {
	return &counterAllocator{db: db}
}

// Allocate performs one atomic read-increment-write against the named counter
// and returns the new value formatted as a tagged, zero-padded code. A missing
// counter is created lazily at the documented offset. Any store failure is
// returned to the caller; no placeholder code is ever substituted.
func (a *counterAllocator) Allocate(ctx context.Context, counterName string) (string, error) {
	var next int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current int64
		// Lock the counter row for the duration of the transaction
		res := tx.Raw("SELECT value FROM counters WHERE name = ? FOR UPDATE", counterName).Scan(&current)
		if res.Error != nil {
			return res.Error // Bubble store error to the caller
		}
		if res.RowsAffected == 0 {
			// First allocation for this name: create the row at the offset
			next = StartOffset + 1
			return tx.Exec("INSERT INTO counters (name, value) VALUES (?, ?)", counterName, next).Error
		}
		next = current + 1
		return tx.Exec("UPDATE counters SET value = ? WHERE name = ?", next, counterName).Error
	})
	if err != nil {
		// Log the failure with context
		logrus.WithFields(logrus.Fields{
			"counter": counterName, // Counter name
			"error":   err.Error(), // Error message
		}).Error("Code allocation failed") // Log allocation failure
		return "", fmt.Errorf("allocate %q: %w", counterName, err)
	}
	return Format(next), nil
}

// Format renders a counter value as an issued code, e.g. REFONL#0041.
func Format(value int64) string {
	return fmt.Sprintf("%s#%04d", CodeTag, value)
}
