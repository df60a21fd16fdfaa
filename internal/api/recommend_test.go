package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"referral_system/internal/domain"
	"referral_system/internal/recommend"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRecommendService mocks the fan-out and consent service
type MockRecommendService struct{ mock.Mock }

func (m *MockRecommendService) CreateBatch(ctx context.Context, sender recommend.Sender, recipients []recommend.Recipient) (uint, error) {
	args := m.Called(ctx, sender, recipients)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockRecommendService) HandleConsent(ctx context.Context, taskID uint, outcome domain.TaskStatus) error {
	return m.Called(ctx, taskID, outcome).Error(0)
}

func consentRouter(svc recommend.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/recommendations/accept/:id", ConsentCallbackHandler(svc, domain.TaskAccepted))
	r.GET("/recommendations/decline/:id", ConsentCallbackHandler(svc, domain.TaskDeclined))
	return r
}

func TestConsentCallback_AcceptReturnsConfirmation(t *testing.T) {
	svc := new(MockRecommendService)
	svc.On("HandleConsent", mock.Anything, uint(5), domain.TaskAccepted).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recommendations/accept/5", nil)
	consentRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "acceptance has been recorded")
}

func TestConsentCallback_DeclineReturnsConfirmation(t *testing.T) {
	svc := new(MockRecommendService)
	svc.On("HandleConsent", mock.Anything, uint(5), domain.TaskDeclined).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recommendations/decline/5", nil)
	consentRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "decline has been recorded")
}

func TestConsentCallback_UnknownTaskIs404(t *testing.T) {
	svc := new(MockRecommendService)
	svc.On("HandleConsent", mock.Anything, uint(99), domain.TaskAccepted).Return(recommend.ErrTaskNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recommendations/accept/99", nil)
	consentRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConsentCallback_ConflictStaysHumanReadable(t *testing.T) {
	svc := new(MockRecommendService)
	svc.On("HandleConsent", mock.Anything, uint(5), domain.TaskDeclined).Return(recommend.ErrConflict)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recommendations/decline/5", nil)
	consentRouter(svc).ServeHTTP(w, req)

	// The caller is a human clicking an email link; 4xx is reserved for
	// malformed or unknown requests
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already recorded")
}

func TestConsentCallback_MalformedIDIs400(t *testing.T) {
	svc := new(MockRecommendService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recommendations/accept/not-a-number", nil)
	consentRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "HandleConsent", mock.Anything, mock.Anything, mock.Anything)
}

func TestConsentCallback_MissingIDIs400(t *testing.T) {
	svc := new(MockRecommendService)
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/recommendations/accept/", nil)
	ConsentCallbackHandler(svc, domain.TaskAccepted)(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitRecommendation_CreatesBatch(t *testing.T) {
	svc := new(MockRecommendService)
	svc.On("CreateBatch", mock.Anything, recommend.Sender{Contact: "bob@example.com"}, mock.Anything).
		Return(uint(42), nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/recommendations", SubmitRecommendationHandler(svc))

	body := []byte(`{"sender_contact":"bob@example.com","recipients":[{"name":"A","email":"a@example.com"},{"name":"B","phone":"+49123"},{"name":"C","email":"c@example.com"}]}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"batch_id":42`)
	assert.Contains(t, w.Body.String(), `"recipients":3`)

	recipients := svc.Calls[0].Arguments.Get(2).([]recommend.Recipient)
	assert.Len(t, recipients, 3)
}

func TestSubmitRecommendation_MissingContactIs400(t *testing.T) {
	svc := new(MockRecommendService)
	svc.On("CreateBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(uint(0), recommend.ErrMissingContact)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/recommendations", SubmitRecommendationHandler(svc))

	body := []byte(`{"sender_contact":"bob@example.com","recipients":[{"name":"B"}]}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitRecommendation_EmptyRecipientListIs400(t *testing.T) {
	svc := new(MockRecommendService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/recommendations", SubmitRecommendationHandler(svc))

	// min=1 binding rejects this before the service is reached
	body := []byte(`{"sender_contact":"bob@example.com","recipients":[]}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything)
}
