package domain

// IdentityKind distinguishes a real referring user from the house account.
type IdentityKind string

const (
	IdentityUser   IdentityKind = "user"   // A real referrer record
	IdentitySystem IdentityKind = "system" // The fallback house account
)

// ReferralIdentity is the single attribution target a registration resolves to.
// A system identity has no underlying person; SubjectID is zero and Code carries
// the freshly allocated fallback code.
type ReferralIdentity struct {
	SubjectID uint         // Referrer user ID, 0 for the system identity
	Code      string       // Referral code the attribution was resolved from
	Kind      IdentityKind // user or system
}

// SystemIdentity returns the house account carrying the given fallback code.
func SystemIdentity(code string) ReferralIdentity {
	return ReferralIdentity{SubjectID: 0, Code: code, Kind: IdentitySystem}
}
