package domain

// Company registration categories. Only CategoryCompany qualifies for a
// referral reward.
const (
	CategoryCompany = "company"
	CategoryPrivate = "private"
)

// Company Model
// The registrant record created by a public registration. ReferrerCode holds the
// code the registrant supplied; FallbackCode the allocated one if none resolved.
type Company struct {
	ID           uint   `gorm:"primaryKey"`           // Primary key
	Name         string `gorm:"not null"`             // Company name
	Email        string `gorm:"uniqueIndex;not null"` // Contact email
	Category     string `gorm:"not null"`             // Registration category
	ReferrerCode string `gorm:"size:32"`              // Referral code supplied at registration, may be empty
	FallbackCode string `gorm:"size:32"`              // Allocated fallback code when no referrer resolved
	CreatedAt    int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
