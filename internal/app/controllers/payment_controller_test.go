package controllers

import (
	"net/http"
	"testing"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/error/code"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func paymentRouter(svc *mockPaymentService, userID uint, role models.UserRole) *gin.Engine {
	c := newContainer()
	c.SetService("payment", svc)

	r := newRouter(userID, role)
	r.GET("/payments", HandlePaymentFunc(c, "getPayments"))
	r.GET("/payments/:id", HandlePaymentFunc(c, "getPayment"))
	r.POST("/payments", HandlePaymentFunc(c, "createPayment"))
	r.PUT("/payments/:id", HandlePaymentFunc(c, "updatePayment"))
	r.PATCH("/payments/:id/pay", HandlePaymentFunc(c, "markPaid"))
	r.POST("/payments/levy-run", HandlePaymentFunc(c, "runLevy"))
	return r
}

func TestGetPayments_ResidentScopedToSelf(t *testing.T) {
	svc := new(mockPaymentService)
	self := uint(9)
	svc.On("GetPayments", mock.Anything, services.PaymentFilter{PayerID: &self}, models.NewPagination(1, 10)).
		Return([]models.LevyPayment{}, int64(0), nil)

	w, _ := doJSON(t, paymentRouter(svc, 9, models.RoleResident), http.MethodGet, "/payments?payer_id=3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetPayment_ResidentCannotSeeOthers(t *testing.T) {
	svc := new(mockPaymentService)
	other := uint(3)
	svc.On("GetPaymentByID", mock.Anything, uint(7)).Return(&models.LevyPayment{PayerID: &other}, nil)

	w, _ := doJSON(t, paymentRouter(svc, 9, models.RoleResident), http.MethodGet, "/payments/7", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatePayment(t *testing.T) {
	svc := new(mockPaymentService)
	svc.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p *models.LevyPayment) bool {
		return p.PropertyID == 2 &&
			p.Amount.Equal(decimal.RequireFromString("450.5")) &&
			p.DueDate.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	})).Return(nil)
	r := paymentRouter(svc, 1, models.RoleManager)

	w, _ := doJSON(t, r, http.MethodPost, "/payments", gin.H{
		"property_id": 2,
		"levy_type":   "admin_fund",
		"amount":      "450.50",
		"due_date":    "2026-04-01",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)

	w, _ = doJSON(t, r, http.MethodPost, "/payments", gin.H{
		"property_id": 2, "levy_type": "admin_fund", "amount": "10", "due_date": "01/04/2026",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/payments", gin.H{
		"property_id": 2, "levy_type": "parking", "amount": "10", "due_date": "2026-04-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePayment_NonPositiveAmount(t *testing.T) {
	svc := new(mockPaymentService)
	svc.On("CreatePayment", mock.Anything, mock.Anything).Return(services.ErrInvalidAmount)

	w, env := doJSON(t, paymentRouter(svc, 1, models.RoleManager), http.MethodPost, "/payments", gin.H{
		"property_id": 2, "levy_type": "special", "amount": "0", "due_date": "2026-04-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrValidation, env.Code)
	assert.Equal(t, services.ErrInvalidAmount.Error(), env.Message)
}

func TestUpdatePayment_CannotSetPaid(t *testing.T) {
	svc := new(mockPaymentService)
	w, _ := doJSON(t, paymentRouter(svc, 1, models.RoleManager), http.MethodPut, "/payments/3", gin.H{"status": "paid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkPaid_NotPayable(t *testing.T) {
	svc := new(mockPaymentService)
	svc.On("MarkPaid", mock.Anything, uint(3)).Return(nil, services.ErrPaymentNotPayable)

	w, env := doJSON(t, paymentRouter(svc, 1, models.RoleManager), http.MethodPatch, "/payments/3/pay", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, code.ErrPaymentNotPayable, env.Code)
}

func TestRunLevy(t *testing.T) {
	svc := new(mockPaymentService)
	svc.On("RunLevy", mock.Anything, mock.MatchedBy(func(in services.LevyRunInput) bool {
		return in.BuildingID == 1 && in.LevyType == models.LevyTypeSinkingFund &&
			in.TotalAmount.Equal(decimal.NewFromInt(1000))
	})).Return([]models.LevyPayment{{PropertyID: 1}, {PropertyID: 2}}, nil).Once()
	svc.On("RunLevy", mock.Anything, mock.Anything).Return(nil, services.ErrNoPropertiesToLevy)
	r := paymentRouter(svc, 1, models.RoleAdmin)

	w, env := doJSON(t, r, http.MethodPost, "/payments/levy-run", gin.H{
		"building_id": 1, "levy_type": "sinking_fund", "total_amount": 1000, "due_date": "2026-07-01",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(env.Data), `"count":2`)

	w, env = doJSON(t, r, http.MethodPost, "/payments/levy-run", gin.H{
		"building_id": 2, "levy_type": "sinking_fund", "total_amount": 1000, "due_date": "2026-07-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrLevyRunNoProperties, env.Code)
}
