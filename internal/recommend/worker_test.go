package recommend

import (
	"context"
	"errors"
	"testing"

	"referral_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func pendingEmailTask() *domain.RecommendationTask {
	return &domain.RecommendationTask{
		ID:               5,
		BatchID:          42,
		RecipientName:    "Alice",
		RecipientContact: "alice@example.com",
		ContactType:      domain.ContactEmail,
		Status:           domain.TaskPending,
	}
}

func newTestWorker(repo Repository, queue Queue, mail *MockMailer) *Worker {
	return NewWorker(repo, queue, mail, "https://example.com", "en")
}

func TestDeliver_SendsMailAndMarksSent(t *testing.T) {
	repo := new(MockRepository)
	queue := new(MockQueue)
	mail := new(MockMailer)
	w := newTestWorker(repo, queue, mail)

	repo.On("GetTask", mock.Anything, uint(5)).Return(pendingEmailTask(), nil)
	repo.On("GetBatch", mock.Anything, uint(42)).
		Return(&domain.RecommendationBatch{ID: 42, SenderContact: "bob@example.com"}, nil)
	mail.On("Send", "alice@example.com", "You have been recommended", mock.AnythingOfType("string")).Return(nil)
	repo.On("MarkSent", mock.Anything, uint(5)).Return(true, nil)

	err := w.Deliver(context.Background(), 5)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
	mail.AssertExpectations(t)

	// The consent links point at this task
	body := mail.Calls[0].Arguments.String(2)
	assert.Contains(t, body, "https://example.com/recommendations/accept/5")
	assert.Contains(t, body, "https://example.com/recommendations/decline/5")
}

func TestDeliver_ReplayedEventDoesNotResend(t *testing.T) {
	repo := new(MockRepository)
	queue := new(MockQueue)
	mail := new(MockMailer)
	w := newTestWorker(repo, queue, mail)

	task := pendingEmailTask()
	task.Status = domain.TaskSent
	repo.On("GetTask", mock.Anything, uint(5)).Return(task, nil)

	err := w.Deliver(context.Background(), 5)
	assert.NoError(t, err)
	mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
}

func TestDeliver_PhoneContactStaysPending(t *testing.T) {
	repo := new(MockRepository)
	queue := new(MockQueue)
	mail := new(MockMailer)
	w := newTestWorker(repo, queue, mail)

	task := pendingEmailTask()
	task.ContactType = domain.ContactPhone
	task.RecipientContact = "+4912345"
	repo.On("GetTask", mock.Anything, uint(5)).Return(task, nil)

	// No error, no mail, and no sent claim for a channel nothing was delivered on
	err := w.Deliver(context.Background(), 5)
	assert.NoError(t, err)
	mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
}

func TestDeliver_UnknownTaskIsDropped(t *testing.T) {
	repo := new(MockRepository)
	queue := new(MockQueue)
	mail := new(MockMailer)
	w := newTestWorker(repo, queue, mail)

	repo.On("GetTask", mock.Anything, uint(5)).Return(nil, gorm.ErrRecordNotFound)

	err := w.Deliver(context.Background(), 5)
	assert.NoError(t, err) // Consumed, not retried
}

func TestDeliver_StoreErrorIsRetried(t *testing.T) {
	repo := new(MockRepository)
	queue := new(MockQueue)
	mail := new(MockMailer)
	w := newTestWorker(repo, queue, mail)

	repo.On("GetTask", mock.Anything, uint(5)).Return(nil, errors.New("connection reset"))

	err := w.Deliver(context.Background(), 5)
	assert.Error(t, err) // Non-nil means the event goes back on the queue
}

func TestDeliver_MailFailureStillMarksSent(t *testing.T) {
	repo := new(MockRepository)
	queue := new(MockQueue)
	mail := new(MockMailer)
	w := newTestWorker(repo, queue, mail)

	repo.On("GetTask", mock.Anything, uint(5)).Return(pendingEmailTask(), nil)
	repo.On("GetBatch", mock.Anything, uint(42)).
		Return(&domain.RecommendationBatch{ID: 42, SenderContact: "bob@example.com"}, nil)
	mail.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	repo.On("MarkSent", mock.Anything, uint(5)).Return(true, nil)

	// The hand-off is fire-and-forget; the click drives the terminal outcome
	err := w.Deliver(context.Background(), 5)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
