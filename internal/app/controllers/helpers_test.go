package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"strata-portal/internal/app/middleware"
	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/domain/store"
	"strata-portal/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newContainer() *container.ServiceContainer {
	return container.NewEmptyContainer(&config.Config{CORSAllowedOrigins: []string{"http://localhost:3000"}})
}

// newRouter returns an engine that authenticates every request as userID/role
func newRouter(userID uint, role models.UserRole) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

type mockMaintenanceService struct {
	mock.Mock
}

func (m *mockMaintenanceService) GetRequests(ctx context.Context, filter store.MaintenanceFilter, page models.Pagination) ([]models.MaintenanceRequest, int64, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]models.MaintenanceRequest), args.Get(1).(int64), args.Error(2)
}

func (m *mockMaintenanceService) GetRequestByID(ctx context.Context, id uint) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id)
	req, _ := args.Get(0).(*models.MaintenanceRequest)
	return req, args.Error(1)
}

func (m *mockMaintenanceService) CreateRequest(ctx context.Context, req *models.MaintenanceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockMaintenanceService) UpdateRequest(ctx context.Context, id uint, updates map[string]interface{}) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id, updates)
	req, _ := args.Get(0).(*models.MaintenanceRequest)
	return req, args.Error(1)
}

func (m *mockMaintenanceService) UpdateStatus(ctx context.Context, id uint, status models.MaintenanceStatus) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id, status)
	req, _ := args.Get(0).(*models.MaintenanceRequest)
	return req, args.Error(1)
}

func (m *mockMaintenanceService) AssignRequest(ctx context.Context, id, assigneeID uint) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id, assigneeID)
	req, _ := args.Get(0).(*models.MaintenanceRequest)
	return req, args.Error(1)
}

func (m *mockMaintenanceService) DeleteRequest(ctx context.Context, id uint, actor services.Actor) error {
	return m.Called(ctx, id, actor).Error(0)
}

func (m *mockMaintenanceService) GetComments(ctx context.Context, requestID uint) ([]models.Comment, error) {
	args := m.Called(ctx, requestID)
	comments, _ := args.Get(0).([]models.Comment)
	return comments, args.Error(1)
}

func (m *mockMaintenanceService) AddComment(ctx context.Context, requestID, userID uint, text string) (*models.Comment, error) {
	args := m.Called(ctx, requestID, userID, text)
	comment, _ := args.Get(0).(*models.Comment)
	return comment, args.Error(1)
}

func (m *mockMaintenanceService) DeleteComment(ctx context.Context, requestID, commentID uint, actor services.Actor) error {
	return m.Called(ctx, requestID, commentID, actor).Error(0)
}

func (m *mockMaintenanceService) StoreName() string {
	return "orm"
}

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) GetPayments(ctx context.Context, filter services.PaymentFilter, page models.Pagination) ([]models.LevyPayment, int64, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]models.LevyPayment), args.Get(1).(int64), args.Error(2)
}

func (m *mockPaymentService) GetPaymentByID(ctx context.Context, id uint) (*models.LevyPayment, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.LevyPayment)
	return p, args.Error(1)
}

func (m *mockPaymentService) CreatePayment(ctx context.Context, payment *models.LevyPayment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockPaymentService) UpdatePayment(ctx context.Context, id uint, updates map[string]interface{}) (*models.LevyPayment, error) {
	args := m.Called(ctx, id, updates)
	p, _ := args.Get(0).(*models.LevyPayment)
	return p, args.Error(1)
}

func (m *mockPaymentService) MarkPaid(ctx context.Context, id uint) (*models.LevyPayment, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.LevyPayment)
	return p, args.Error(1)
}

func (m *mockPaymentService) DeletePayment(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPaymentService) RunLevy(ctx context.Context, in services.LevyRunInput) ([]models.LevyPayment, error) {
	args := m.Called(ctx, in)
	payments, _ := args.Get(0).([]models.LevyPayment)
	return payments, args.Error(1)
}

func (m *mockPaymentService) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
