package domain

// User Model
type User struct {
	ID           uint   `gorm:"primaryKey"`           // Primary key
	Name         string `gorm:"not null"`             // Display name
	Email        string `gorm:"uniqueIndex;not null"` // Unique email
	Password     string `gorm:"not null"`             // Hashed password
	Role         string `gorm:"default:user"`         // Role: user or admin
	ReferralCode string `gorm:"uniqueIndex;size:32"`  // Personal referral code handed out to others
	Wallet       Wallet `gorm:"foreignKey:OwnerID"`   // One-to-one relationship with Wallet
}
