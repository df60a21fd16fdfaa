package reward

import (
	"context" // Context for store operations
	"fmt"     // Error wrapping
	"time"    // Timestamps

	"referral_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// TypeReferralReward is the transaction type written for referral payouts.
const TypeReferralReward = "referral_reward"

// qualifyingKinds lists the beneficiary kinds that earn a reward.
var qualifyingKinds = map[string]bool{
	domain.CategoryCompany: true,
}

// QualifyingEvent is one business event that may trigger a payout.
type QualifyingEvent struct {
	Referrer         domain.ReferralIdentity // Resolved attribution target
	BeneficiaryKind  string                  // Registration category of the new registrant
	RelatedSubjectID uint                    // The triggering counterpart (the new registrant)
	Amount           float64                 // Fixed reward amount
}

// Ledger disburses at most one reward per qualifying event. The ledger does not
// deduplicate by event identity; the caller owns idempotency, since the
// triggering registration is itself a create-once operation and invokes
// Disburse exactly once.
type Ledger interface {
	Disburse(ctx context.Context, event QualifyingEvent) (applied bool, err error)
}

type walletLedger struct {
	db *gorm.DB
}

// NewLedger returns a Ledger writing to the wallets and wallet_transactions tables.
func NewLedger(db *gorm.DB) Ledger {
	return &walletLedger{db: db}
}

// skipReason reports why no disbursement is due, or "" when all preconditions pass.
func skipReason(event QualifyingEvent) string {
	switch {
	case event.Referrer.Kind != domain.IdentityUser:
		return "system referrer" // The house account cannot earn from itself
	case !qualifyingKinds[event.BeneficiaryKind]:
		return "non-qualifying category"
	case event.Referrer.SubjectID == event.RelatedSubjectID:
		return "self referral"
	}
	return ""
}

// Disburse credits the referrer's wallet and appends one immutable transaction
// record inside a single atomic store transaction: either both land or neither
// does. Failed preconditions are not errors, simply "no disbursement due".
func (l *walletLedger) Disburse(ctx context.Context, event QualifyingEvent) (bool, error) {
	if reason := skipReason(event); reason != "" {
		// Log the skip with context
		logrus.WithFields(logrus.Fields{
			"referrer_id": event.Referrer.SubjectID, // Referrer user ID
			"related_id":  event.RelatedSubjectID,   // Triggering registrant
			"reason":      reason,                   // Why no payout is due
		}).Info("Reward not due") // Log skipped disbursement
		return false, nil
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UnixMilli()
		// Upsert-increment the wallet: created on first credit, incremented after
		if err := tx.Exec(
			"INSERT INTO wallets (owner_id, balance, total_earned, updated_at) VALUES (?, ?, ?, ?) "+
				"ON DUPLICATE KEY UPDATE balance = balance + ?, total_earned = total_earned + ?, updated_at = ?",
			event.Referrer.SubjectID, event.Amount, event.Amount, now,
			event.Amount, event.Amount, now,
		).Error; err != nil {
			return err // Return error to rollback
		}
		// Append the immutable transaction record
		t := domain.WalletTransaction{
			UserID:        event.Referrer.SubjectID,                        // Owning wallet's user
			Amount:        event.Amount,                                    // Credited amount
			Type:          TypeReferralReward,                              // Transaction type
			Description:   "Referral reward for " + event.BeneficiaryKind, // Human-readable context
			RelatedUserID: event.RelatedSubjectID,                          // Triggering counterpart
		}
		if err := tx.Create(&t).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
	if err != nil {
		// Log the error with context; callers treat a failed payout as best-effort
		logrus.WithFields(logrus.Fields{
			"referrer_id": event.Referrer.SubjectID, // Referrer user ID
			"related_id":  event.RelatedSubjectID,   // Triggering registrant
			"amount":      event.Amount,             // Reward amount
			"error":       err.Error(),              // Error message
		}).Error("Reward disbursement failed") // Log disbursement failure
		return false, fmt.Errorf("disburse reward: %w", err)
	}
	// Log successful disbursement
	logrus.WithFields(logrus.Fields{
		"referrer_id": event.Referrer.SubjectID, // Referrer user ID
		"related_id":  event.RelatedSubjectID,   // Triggering registrant
		"amount":      event.Amount,             // Reward amount
		"type":        TypeReferralReward,       // Transaction type
	}).Info("Reward disbursed") // Log disbursement success
	return true, nil
}
