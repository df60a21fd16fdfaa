package domain

// Wallet Model
// One per referrer, created on first credit. Balance and TotalEarned move only
// through the reward ledger's atomic increment.
type Wallet struct {
	ID          uint    `gorm:"primaryKey"`           // Primary key
	OwnerID     uint    `gorm:"uniqueIndex;not null"` // Foreign key to User
	Balance     float64 `gorm:"not null;default:0"`   // Current balance
	TotalEarned float64 `gorm:"not null;default:0"`   // Lifetime earned, never decreases
	UpdatedAt   int64   `gorm:"autoUpdateTime:milli"` // Timestamp of last update in milliseconds
}
