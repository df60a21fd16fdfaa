package referral

import (
	"context" // Context for store operations
	"errors"  // Error inspection
	"strings" // Code trimming

	"referral_system/internal/domain"   // Importing domain models
	"referral_system/internal/sequence" // Fallback code allocation

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// FallbackCounter names the counter that issues fallback referral codes.
const FallbackCounter = "referral_fallback"

// IdentityStore looks up referrer identities by their referral code.
type IdentityStore interface {
	FindByCode(ctx context.Context, code string) (*domain.User, error)
}

type gormIdentityStore struct {
	db *gorm.DB
}

// NewIdentityStore returns an IdentityStore backed by the users table.
func NewIdentityStore(db *gorm.DB) IdentityStore {
	return &gormIdentityStore{db: db}
}

// FindByCode returns the user whose referral code exactly matches code.
func (s *gormIdentityStore) FindByCode(ctx context.Context, code string) (*domain.User, error) {
	var user domain.User
	// Case-sensitive exact match on the stored code
	if err := s.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Resolver maps an optional human-entered referral code to exactly one
// attribution target. Resolve is total: it never fails and never returns an
// ambiguous result. Self-referral is not rejected here; that is a reward
// ledger concern, resolution stays a pure lookup.
type Resolver interface {
	Resolve(ctx context.Context, code *string) domain.ReferralIdentity
}

type resolver struct {
	identities IdentityStore
	allocator  sequence.Allocator
}

// NewResolver wires a Resolver from its collaborators.
func NewResolver(identities IdentityStore, allocator sequence.Allocator) Resolver {
	return &resolver{identities: identities, allocator: allocator}
}

// Resolve returns the matching user identity for a present, non-empty code, or
// the system identity carrying a freshly allocated fallback code otherwise.
// Registration must never block or fail merely because a code is invalid or
// absent, so every failure path degrades to the house account.
func (r *resolver) Resolve(ctx context.Context, code *string) domain.ReferralIdentity {
	if code != nil {
		trimmed := strings.TrimSpace(*code)
		if trimmed != "" {
			user, err := r.identities.FindByCode(ctx, trimmed)
			if err == nil {
				// A real referrer record was found
				return domain.ReferralIdentity{
					SubjectID: user.ID,            // Referrer user ID
					Code:      user.ReferralCode,  // Stored referral code
					Kind:      domain.IdentityUser, // Real referrer
				}
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				// Store error, not a miss: still fall back, but keep a trace
				logrus.WithFields(logrus.Fields{
					"code":  trimmed,     // Supplied referral code
					"error": err.Error(), // Error message
				}).Warn("Referral code lookup failed") // Log lookup failure
			}
		}
	}
	// Absent, empty or unresolvable code: attribute to the house account with a
	// traceable fallback code for later analytics.
	fallback, err := r.allocator.Allocate(ctx, FallbackCounter)
	if err != nil {
		// Allocation failed; never mint a reused placeholder into the ledger.
		// Resolve stays total: the system identity is returned without a code.
		logrus.WithField("error", err.Error()).Error("Fallback code allocation failed")
		return domain.SystemIdentity("")
	}
	return domain.SystemIdentity(fallback)
}
