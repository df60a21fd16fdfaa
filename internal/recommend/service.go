package recommend

import (
	"context" // Context for store operations
	"errors"  // Sentinel errors
	"strings" // Contact trimming

	"referral_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
)

var (
	// ErrNoRecipients means a batch submission carried an empty recipient list.
	ErrNoRecipients = errors.New("at least one recipient is required")
	// ErrMissingContact means a recipient has neither an email nor a phone.
	ErrMissingContact = errors.New("recipient needs an email or phone contact")
)

// Sender identifies who submitted a recommendation batch.
type Sender struct {
	UserID  uint   // Sending user, 0 for anonymous senders
	Contact string // Sender's email or phone, shown in the invite mail
}

// Recipient is one person a recommendation fans out to.
type Recipient struct {
	Name  string // Display name
	Email string // Email address, preferred channel when present
	Phone string // Phone number
}

// Service is the recommendation fan-out and consent entry point.
type Service interface {
	CreateBatch(ctx context.Context, sender Sender, recipients []Recipient) (uint, error)
	HandleConsent(ctx context.Context, taskID uint, outcome domain.TaskStatus) error
}

type service struct {
	repo  Repository
	queue Queue
}

// NewService wires a Service from its collaborators.
func NewService(repo Repository, queue Queue) Service {
	return &service{repo: repo, queue: queue}
}

// CreateBatch validates the recipient list, creates the parent batch and one
// pending task per recipient in a single atomic write, then enqueues one
// task-created event per task. Validation fails before anything is written;
// nothing is ever partially applied.
func (s *service) CreateBatch(ctx context.Context, sender Sender, recipients []Recipient) (uint, error) {
	if len(recipients) == 0 {
		return 0, ErrNoRecipients
	}
	tasks := make([]domain.RecommendationTask, 0, len(recipients))
	for _, rec := range recipients {
		contact, contactType := pickContact(rec)
		if contact == "" {
			return 0, ErrMissingContact // Rejected synchronously, before any write
		}
		tasks = append(tasks, domain.RecommendationTask{
			RecipientName:    strings.TrimSpace(rec.Name), // Recipient display name
			RecipientContact: contact,                     // Chosen contact
			ContactType:      contactType,                 // email or phone
			Status:           domain.TaskPending,          // Initial consent state
		})
	}
	batch := &domain.RecommendationBatch{
		SenderID:        sender.UserID,  // Sending user
		SenderContact:   sender.Contact, // Sender's contact
		RecipientsCount: len(tasks),     // Number of tasks fanned out
		Status:          "open",         // Batch status
	}
	if err := s.repo.CreateBatch(ctx, batch, tasks); err != nil {
		return 0, err
	}
	// Hand each task to the delivery worker. Enqueue failures are logged, not
	// fatal: the task stays pending and can be re-enqueued later.
	for _, task := range tasks {
		if err := s.queue.Enqueue(ctx, task.ID); err != nil {
			logrus.WithFields(logrus.Fields{
				"task_id": task.ID,     // Task left pending
				"error":   err.Error(), // Error message
			}).Error("Failed to enqueue delivery event") // Log enqueue failure
		}
	}
	// Log successful fan-out
	logrus.WithFields(logrus.Fields{
		"batch_id":   batch.ID,   // New batch ID
		"recipients": len(tasks), // Fan-out size
	}).Info("Recommendation batch created") // Log batch creation
	return batch.ID, nil
}

// pickContact chooses the delivery channel for one recipient: email when
// present, phone otherwise, empty when neither exists.
func pickContact(rec Recipient) (contact, contactType string) {
	if email := strings.TrimSpace(rec.Email); email != "" {
		return email, domain.ContactEmail
	}
	if phone := strings.TrimSpace(rec.Phone); phone != "" {
		return phone, domain.ContactPhone
	}
	return "", ""
}

// HandleConsent applies one consent callback to a task. It is safe under
// replay: a repeat of the same terminal state is a no-op, a different terminal
// state surfaces ErrConflict, an unknown task surfaces ErrTaskNotFound.
func (s *service) HandleConsent(ctx context.Context, taskID uint, outcome domain.TaskStatus) error {
	decision, err := s.repo.ApplyConsent(ctx, taskID, outcome)
	if err != nil {
		return err
	}
	if decision == DecisionNoop {
		// Replayed callback, nothing changed
		logrus.WithFields(logrus.Fields{
			"task_id": taskID,  // Replayed task
			"outcome": outcome, // Repeated terminal state
		}).Debug("Consent callback replayed") // Log the no-op
		return nil
	}
	// Log the recorded outcome
	logrus.WithFields(logrus.Fields{
		"task_id": taskID,  // Handled task
		"outcome": outcome, // Recorded terminal state
	}).Info("Consent recorded") // Log consent
	return nil
}
