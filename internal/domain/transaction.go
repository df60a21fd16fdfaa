package domain

// WalletTransaction Model
// Immutable, append-only. One record per qualifying event; no update or delete path.
type WalletTransaction struct {
	ID            uint    `gorm:"primaryKey"`           // Primary key
	UserID        uint    `gorm:"index;not null"`       // Owning wallet's user
	Amount        float64 `gorm:"not null"`             // Credited amount
	Type          string  `gorm:"not null"`             // Transaction type: referral_reward
	Description   string  // Human-readable context
	RelatedUserID uint    `gorm:"index"`                // Triggering counterpart (e.g. the new registrant), non-owning
	CreatedAt     int64   `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
