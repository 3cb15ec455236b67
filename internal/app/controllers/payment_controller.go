package controllers

import (
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InterfacePaymentController defines the levy endpoints
type InterfacePaymentController interface {
	GetPayments()
	GetPayment()
	CreatePayment()
	UpdatePayment()
	MarkPaid()
	DeletePayment()
	RunLevy()
}

// PaymentController handles strata levies
type PaymentController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPaymentController creates a payment controller
func NewPaymentController(ctx *gin.Context, container *container.ServiceContainer) *PaymentController {
	return &PaymentController{
		Ctx:       ctx,
		Container: container,
	}
}

// PaymentRequest is the body for raising a single levy
type PaymentRequest struct {
	PropertyID  uint            `json:"property_id" binding:"required" example:"1"`
	PayerID     *uint           `json:"payer_id" example:"5"`
	LevyType    models.LevyType `json:"levy_type" binding:"required,levy_type" example:"admin_fund"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"450.00"`
	DueDate     string          `json:"due_date" binding:"required,date" example:"2026-04-01"`
	Description string          `json:"description" binding:"omitempty,max=255" example:"Q2 admin fund"`
}

// UpdatePaymentRequest holds the fields to change. Use the pay endpoint to settle a levy.
type UpdatePaymentRequest struct {
	PayerID     *uint                 `json:"payer_id"`
	LevyType    *models.LevyType      `json:"levy_type" binding:"omitempty,levy_type"`
	Amount      *decimal.Decimal      `json:"amount" swaggertype:"string"`
	DueDate     *string               `json:"due_date" binding:"omitempty,date"`
	Status      *models.PaymentStatus `json:"status" binding:"omitempty,payment_status,ne=paid"`
	Description *string               `json:"description" binding:"omitempty,max=255"`
}

// LevyRunRequest apportions a total across a building's lots
type LevyRunRequest struct {
	BuildingID  uint            `json:"building_id" binding:"required" example:"1"`
	LevyType    models.LevyType `json:"levy_type" binding:"required,levy_type" example:"sinking_fund"`
	TotalAmount decimal.Decimal `json:"total_amount" swaggertype:"string" example:"12000.00"`
	DueDate     string          `json:"due_date" binding:"required,date" example:"2026-04-01"`
	Description string          `json:"description" binding:"omitempty,max=255" example:"Q2 sinking fund"`
}

// HandlePaymentFunc returns a gin handler dispatching to the named payment method
func HandlePaymentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPaymentController(ctx, container)

		switch method {
		case "getPayments":
			controller.GetPayments()
		case "getPayment":
			controller.GetPayment()
		case "createPayment":
			controller.CreatePayment()
		case "updatePayment":
			controller.UpdatePayment()
		case "markPaid":
			controller.MarkPaid()
		case "deletePayment":
			controller.DeletePayment()
		case "runLevy":
			controller.RunLevy()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *PaymentController) service() services.InterfacePaymentService {
	return c.Container.GetService("payment").(services.InterfacePaymentService)
}

func parseDate(value string) time.Time {
	t, _ := time.Parse(DateLayout, value)
	return t
}

// 1. GetPayments lists levies. Residents only see levies they are the payer of.
// @Summary      List levies
// @Tags         Payment
// @Produce      json
// @Security     BearerAuth
// @Param        property_id  query  int     false  "property"
// @Param        building_id  query  int     false  "building"
// @Param        payer_id     query  int     false  "payer"
// @Param        status       query  string  false  "pending, paid, overdue or cancelled"
// @Param        levy_type    query  string  false  "admin_fund, sinking_fund or special"
// @Success      200  {object}  models.PageResult
// @Router       /payments [get]
func (c *PaymentController) GetPayments() {
	filter := services.PaymentFilter{
		Status:   models.PaymentStatus(c.Ctx.Query("status")),
		LevyType: models.LevyType(c.Ctx.Query("levy_type")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		response.ParamError(c.Ctx, "invalid status")
		return
	}
	if filter.LevyType != "" && !filter.LevyType.Valid() {
		response.ParamError(c.Ctx, "invalid levy_type")
		return
	}

	var ok bool
	if filter.PropertyID, ok = queryUint(c.Ctx, "property_id"); !ok {
		return
	}
	if filter.BuildingID, ok = queryUint(c.Ctx, "building_id"); !ok {
		return
	}
	if filter.PayerID, ok = queryUint(c.Ctx, "payer_id"); !ok {
		return
	}
	if !isStaff(c.Ctx) {
		self := currentUserID(c.Ctx)
		filter.PayerID = &self
	}

	page := pagination(c.Ctx)
	items, total, err := c.service().GetPayments(c.Ctx.Request.Context(), filter, page)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, models.NewPageResult(items, total, page.Page, page.PageSize))
}

// 2. GetPayment returns one levy
// @Summary      Get levy
// @Tags         Payment
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "levy id"
// @Success      200  {object}  models.LevyPayment
// @Failure      404  {object}  ErrorResponse
// @Router       /payments/{id} [get]
func (c *PaymentController) GetPayment() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	payment, err := c.service().GetPaymentByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	if !isStaff(c.Ctx) && (payment.PayerID == nil || *payment.PayerID != currentUserID(c.Ctx)) {
		response.Forbidden(c.Ctx)
		return
	}
	response.Success(c.Ctx, payment)
}

// 3. CreatePayment raises a levy on one property
// @Summary      Create levy
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payment body PaymentRequest true "levy"
// @Success      201  {object}  models.LevyPayment
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /payments [post]
func (c *PaymentController) CreatePayment() {
	var req PaymentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	payment := &models.LevyPayment{
		PropertyID:  req.PropertyID,
		PayerID:     req.PayerID,
		LevyType:    req.LevyType,
		Amount:      req.Amount,
		DueDate:     parseDate(req.DueDate),
		Description: req.Description,
	}
	if err := c.service().CreatePayment(c.Ctx.Request.Context(), payment); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, payment)
}

// 4. UpdatePayment changes the supplied fields
// @Summary      Update levy
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                   true  "levy id"
// @Param        payment  body  UpdatePaymentRequest  true  "fields to change"
// @Success      200  {object}  models.LevyPayment
// @Failure      404  {object}  ErrorResponse
// @Router       /payments/{id} [put]
func (c *PaymentController) UpdatePayment() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	updates := make(map[string]interface{})
	if req.PayerID != nil {
		updates["payer_id"] = *req.PayerID
	}
	if req.LevyType != nil {
		updates["levy_type"] = *req.LevyType
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.DueDate != nil {
		updates["due_date"] = parseDate(*req.DueDate)
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	payment, err := c.service().UpdatePayment(c.Ctx.Request.Context(), id, updates)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, payment)
}

// 5. MarkPaid settles a levy
// @Summary      Mark levy paid
// @Tags         Payment
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "levy id"
// @Success      200  {object}  models.LevyPayment
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /payments/{id}/pay [patch]
func (c *PaymentController) MarkPaid() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	payment, err := c.service().MarkPaid(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, payment)
}

// 6. DeletePayment removes a levy
// @Summary      Delete levy
// @Tags         Payment
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "levy id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /payments/{id} [delete]
func (c *PaymentController) DeletePayment() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	if err := c.service().DeletePayment(c.Ctx.Request.Context(), id); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"id": id})
}

// 7. RunLevy raises one levy per lot, apportioned by unit entitlement
// @Summary      Levy run
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        run  body  LevyRunRequest  true  "levy run"
// @Success      201  {array}   models.LevyPayment
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /payments/levy-run [post]
func (c *PaymentController) RunLevy() {
	var req LevyRunRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	payments, err := c.service().RunLevy(c.Ctx.Request.Context(), services.LevyRunInput{
		BuildingID:  req.BuildingID,
		LevyType:    req.LevyType,
		TotalAmount: req.TotalAmount,
		DueDate:     parseDate(req.DueDate),
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, gin.H{
		"count":    len(payments),
		"payments": payments,
	})
}
