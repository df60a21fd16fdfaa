package api

import (
	"context"  // Bounded disbursement context
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Time durations

	"referral_system/internal/domain"   // Importing domain models
	"referral_system/internal/referral" // Referrer resolution
	"referral_system/internal/reward"   // Reward disbursement

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// disburseTimeout bounds how long a reward disbursement may run after the
// registration response has been sent.
const disburseTimeout = 5 * time.Second

// RegisterRequest represents a public registration request. Payload shape
// validation is handled by the binding layer.
type RegisterRequest struct {
	Name         string  `json:"name" binding:"required"`           // Registrant name
	Email        string  `json:"email" binding:"required,email"`    // Contact email
	Category     string  `json:"category" binding:"required"`       // Registration category
	ReferralCode *string `json:"referral_code"`                     // Optional human-entered referral code
}

// RegisterCompanyHandler creates the registrant record, resolves the referral
// attribution and triggers a best-effort reward disbursement. The resolver
// completes before the ledger evaluates preconditions; a failed or slow
// disbursement never fails or blocks the registration.
func RegisterCompanyHandler(db *gorm.DB, resolver referral.Resolver, ledger reward.Ledger, rewardAmount float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Resolve attribution first; Resolve is total and never fails
		identity := resolver.Resolve(c.Request.Context(), req.ReferralCode)
		company := domain.Company{
			Name:     req.Name,                    // Registrant name
			Email:    strings.ToLower(req.Email),  // Lowercased for uniqueness
			Category: req.Category,                // Registration category
		}
		if identity.Kind == domain.IdentityUser {
			company.ReferrerCode = identity.Code // Attributed to a real referrer
		} else {
			company.FallbackCode = identity.Code // House account with a traceable code
		}
		// Attempt to create the registrant in the database
		if err := db.Create(&company).Error; err != nil {
			// If creation fails (e.g., duplicate email), return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Registration already exists"})
			return
		}
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"company_id":  company.ID,         // New registrant ID
			"category":    company.Category,   // Registration category
			"referrer_id": identity.SubjectID, // Resolved referrer, 0 for system
			"kind":        identity.Kind,      // user or system attribution
		}).Info("Company registered") // Log registration
		// Best-effort reward: fire-and-continue with a bounded deadline, so a
		// stalled store never delays the registration response.
		event := reward.QualifyingEvent{
			Referrer:         identity,         // Resolved attribution target
			BeneficiaryKind:  company.Category, // Registration category
			RelatedSubjectID: company.ID,       // Triggering registrant
			Amount:           rewardAmount,     // Fixed reward amount
		}
		go disburse(ledger, event)
		// Return success response, carrying any allocated fallback code
		resp := gin.H{"message": "Registration successful", "company_id": company.ID}
		if company.FallbackCode != "" {
			resp["fallback_code"] = company.FallbackCode
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// disburse runs one reward disbursement under its own bounded context.
// Failures are logged and abandoned; the registration already succeeded.
func disburse(ledger reward.Ledger, event reward.QualifyingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), disburseTimeout)
	defer cancel()
	if _, err := ledger.Disburse(ctx, event); err != nil {
		// Log the abandonment with context
		logrus.WithFields(logrus.Fields{
			"referrer_id": event.Referrer.SubjectID, // Resolved referrer
			"related_id":  event.RelatedSubjectID,   // Triggering registrant
			"error":       err.Error(),              // Error message
		}).Error("Reward disbursement abandoned") // Log disbursement failure
	}
}
