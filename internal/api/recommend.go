package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // Task id parsing
	"strings"  // String manipulation

	"referral_system/internal/domain"    // Importing domain models
	"referral_system/internal/recommend" // Fan-out and consent state machine

	"github.com/gin-gonic/gin" // Gin web framework
)

// RecipientPayload is one recipient in a recommendation submission.
type RecipientPayload struct {
	Name  string `json:"name" binding:"required"` // Recipient name
	Email string `json:"email"`                   // Email address
	Phone string `json:"phone"`                   // Phone number
}

// RecommendRequest represents a recommendation submission.
type RecommendRequest struct {
	SenderContact string             `json:"sender_contact" binding:"required"`       // Sender's email or phone
	Recipients    []RecipientPayload `json:"recipients" binding:"required,min=1,dive"` // Fan-out targets
}

// SubmitRecommendationHandler fans one submission out into per-recipient tasks.
func SubmitRecommendationHandler(svc recommend.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecommendRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		sender := recommend.Sender{Contact: req.SenderContact}
		// Attach the sending user when the request is authenticated
		if userID, exists := c.Get("userID"); exists {
			sender.UserID = userID.(uint)
		}
		recipients := make([]recommend.Recipient, len(req.Recipients))
		for i, r := range req.Recipients {
			recipients[i] = recommend.Recipient{Name: r.Name, Email: r.Email, Phone: r.Phone}
		}
		batchID, err := svc.CreateBatch(c.Request.Context(), sender, recipients)
		if err != nil {
			// Validation failures are the caller's fault
			if errors.Is(err, recommend.ErrNoRecipients) || errors.Is(err, recommend.ErrMissingContact) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit recommendation"})
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{
			"message":    "Recommendation submitted", // Confirmation
			"batch_id":   batchID,                    // New batch ID
			"recipients": len(recipients),            // Fan-out size
		})
	}
}

// ConsentCallbackHandler applies one consent click to a task. The caller is a
// human following an email link, so the response is always a plain confirmation
// string; 4xx statuses are reserved for malformed or unknown requests.
// One handler serves both outcomes, parameterized by the desired terminal state.
func ConsentCallbackHandler(svc recommend.Service, outcome domain.TaskStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := strings.TrimSpace(c.Param("id"))
		if idStr == "" {
			// Missing task id
			c.String(http.StatusBadRequest, "Missing task id.")
			return
		}
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			// Malformed task id
			c.String(http.StatusBadRequest, "Invalid task id.")
			return
		}
		err = svc.HandleConsent(c.Request.Context(), uint(id), outcome)
		switch {
		case errors.Is(err, recommend.ErrTaskNotFound):
			// Unknown task; no state mutation occurred
			c.String(http.StatusNotFound, "We could not find this recommendation.")
		case errors.Is(err, recommend.ErrConflict):
			// A different outcome was already recorded; never overwritten
			c.String(http.StatusOK, "Your response was already recorded.")
		case err != nil:
			c.String(http.StatusInternalServerError, "Something went wrong, please try again later.")
		case outcome == domain.TaskAccepted:
			c.String(http.StatusOK, "Thank you! Your acceptance has been recorded.")
		default:
			c.String(http.StatusOK, "Your decline has been recorded.")
		}
	}
}
