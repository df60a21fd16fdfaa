package domain

// TaskStatus is the consent state of a single recommendation task.
// pending -> sent -> accepted | declined; accepted and declined are terminal.
type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskSent     TaskStatus = "sent"
	TaskAccepted TaskStatus = "accepted"
	TaskDeclined TaskStatus = "declined"
)

// Terminal reports whether no further transition is permitted out of s.
func (s TaskStatus) Terminal() bool {
	return s == TaskAccepted || s == TaskDeclined
}

// Recommendation contact channels.
const (
	ContactEmail = "email"
	ContactPhone = "phone"
)

// RecommendationBatch Model
// Parent record of one fan-out. AcceptedCount is derived, always <= RecipientsCount,
// mutated only by the consent state machine's aggregate step.
type RecommendationBatch struct {
	ID              uint   `gorm:"primaryKey"`           // Primary key
	SenderID        uint   `gorm:"index"`                // Sending user, 0 for anonymous senders
	SenderContact   string `gorm:"not null"`             // Sender's email or phone
	RecipientsCount int    `gorm:"not null"`             // Number of tasks fanned out
	AcceptedCount   int    `gorm:"not null;default:0"`   // Number of accepted tasks
	Status          string `gorm:"default:open"`         // Batch status
	CreatedAt       int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

// RecommendationTask Model
// One per recipient, owned by exactly one batch. Created once, transitions
// forward-only, never deleted (audit trail).
type RecommendationTask struct {
	ID               uint       `gorm:"primaryKey"`           // Primary key
	BatchID          uint       `gorm:"index;not null"`       // Owning batch
	RecipientName    string     `gorm:"not null"`             // Recipient display name
	RecipientContact string     `gorm:"not null"`             // Email address or phone number
	ContactType      string     `gorm:"not null"`             // email or phone
	Status           TaskStatus `gorm:"size:16;not null"`     // Consent state
	CreatedAt        int64      `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
	SentAt           *int64     // Set when delivery handed off
	HandledAt        *int64     // Set when a terminal state was recorded
}
