package recommend

import (
	"context" // Worker lifecycle
	"errors"  // Error inspection
	"fmt"     // Callback link building
	"time"    // Dequeue timeout

	"referral_system/internal/domain" // Importing domain models
	"referral_system/internal/mailer" // Outbound mail collaborator

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

const (
	dequeueTimeout = 5 * time.Second // Blocking pop timeout per loop turn
	maxTries       = 3               // Delivery attempts before dead-lettering
)

// Worker consumes task-created events and performs the delivery step of the
// consent state machine. The queue is at-least-once, so every transition the
// worker makes must be idempotent: a replayed event for an already-sent task
// is dropped without re-sending mail.
type Worker struct {
	repo    Repository
	queue   Queue
	mail    mailer.Mailer
	baseURL string // Public base URL the consent links point at
	locale  string // Mail template locale
}

// NewWorker wires a delivery Worker.
func NewWorker(repo Repository, queue Queue, mail mailer.Mailer, baseURL, locale string) *Worker {
	return &Worker{repo: repo, queue: queue, mail: mail, baseURL: baseURL, locale: locale}
}

// Run consumes the delivery queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	logrus.Info("Delivery worker started") // Log worker start
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Delivery worker stopped") // Log worker stop
			return
		default:
		}
		msg, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				logrus.Info("Delivery worker stopped") // Cancelled mid-pop
				return
			}
			logrus.WithField("error", err.Error()).Error("Failed to read delivery queue")
			time.Sleep(time.Second) // Back off before hitting the queue again
			continue
		}
		if msg == nil {
			continue // Timeout, nothing queued
		}
		if err := w.Deliver(ctx, msg.TaskID); err != nil {
			// Transient failure: retry with a bounded budget, then dead-letter
			if msg.Tries+1 >= maxTries {
				w.queue.Fail(ctx, msg, err)
				continue
			}
			if rerr := w.queue.Retry(ctx, msg); rerr != nil {
				w.queue.Fail(ctx, msg, rerr)
			}
		}
	}
}

// Deliver performs the delivery step for one task. A nil return means the
// event is consumed (delivered, replayed, undeliverable channel, or the task
// vanished); a non-nil return means the event should be retried.
func (w *Worker) Deliver(ctx context.Context, taskID uint) error {
	task, err := w.repo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing to deliver; drop the event
			logrus.WithField("task_id", taskID).Warn("Delivery event for unknown task")
			return nil
		}
		return err // Transient store error, retry
	}
	if task.Status != domain.TaskPending {
		// Replayed event: the task was already sent or has reached a terminal
		// state; do not send mail again.
		logrus.WithFields(logrus.Fields{
			"task_id": task.ID,     // Replayed task
			"status":  task.Status, // Current consent state
		}).Debug("Delivery event replayed") // Log the no-op
		return nil
	}
	if task.ContactType != domain.ContactEmail {
		// No delivery channel for this contact type. The task stays pending
		// rather than claiming sent for a channel nothing was delivered on; a
		// recipient reached out of band can still accept or decline.
		logrus.WithFields(logrus.Fields{
			"task_id":      task.ID,          // Undeliverable task
			"contact_type": task.ContactType, // Channel with no delivery path
		}).Warn("No delivery channel for contact type") // Log the gap
		return nil
	}
	subject, body, err := RenderInvite(w.locale, InviteData{
		RecipientName: task.RecipientName,                                          // Recipient display name
		SenderContact: w.senderContact(ctx, task.BatchID),                          // Who recommended them
		AcceptURL:     fmt.Sprintf("%s/recommendations/accept/%d", w.baseURL, task.ID),  // Accept link
		DeclineURL:    fmt.Sprintf("%s/recommendations/decline/%d", w.baseURL, task.ID), // Decline link
	})
	if err != nil {
		return err
	}
	// Fire-and-forget hand-off: a failed send is logged but does not block the
	// sent transition, the terminal outcome is driven by the recipient's click.
	if err := w.mail.Send(task.RecipientContact, subject, body); err != nil {
		logrus.WithFields(logrus.Fields{
			"task_id": task.ID,              // Task whose mail failed
			"to":      task.RecipientContact, // Recipient address
			"error":   err.Error(),          // Error message
		}).Error("Invite mail hand-off failed") // Log mail failure
	}
	updated, err := w.repo.MarkSent(ctx, task.ID)
	if err != nil {
		return err // Transient store error, retry
	}
	if !updated {
		// A concurrent consumer won the transition; nothing more to do
		logrus.WithField("task_id", task.ID).Debug("Task already marked sent")
		return nil
	}
	// Log the transition
	logrus.WithFields(logrus.Fields{
		"task_id": task.ID,              // Delivered task
		"to":      task.RecipientContact, // Recipient address
	}).Info("Recommendation sent") // Log delivery
	return nil
}

// senderContact loads the batch's sender contact for the mail body; an unknown
// batch degrades to an empty sender rather than failing delivery.
func (w *Worker) senderContact(ctx context.Context, batchID uint) string {
	batch, err := w.repo.GetBatch(ctx, batchID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"batch_id": batchID,     // Batch the task belongs to
			"error":    err.Error(), // Error message
		}).Warn("Failed to load batch for invite mail")
		return ""
	}
	return batch.SenderContact
}
