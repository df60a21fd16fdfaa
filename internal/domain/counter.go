package domain

// Counter Model
// One row per named monotonic sequence. Only the sequence allocator writes it.
type Counter struct {
	Name  string `gorm:"primaryKey;size:64"` // Counter name, e.g. "referral_fallback"
	Value int64  `gorm:"not null"`           // Last issued value, monotonically non-decreasing
}
