package controllers

import (
	"strings"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/domain/store"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// InterfaceMaintenanceController defines the maintenance endpoints
type InterfaceMaintenanceController interface {
	GetRequests()
	GetRequest()
	CreateRequest()
	UpdateRequest()
	UpdateStatus()
	AssignRequest()
	DeleteRequest()
	GetComments()
	AddComment()
	DeleteComment()
}

// MaintenanceController handles maintenance requests and their comments
type MaintenanceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewMaintenanceController creates a maintenance controller
func NewMaintenanceController(ctx *gin.Context, container *container.ServiceContainer) *MaintenanceController {
	return &MaintenanceController{
		Ctx:       ctx,
		Container: container,
	}
}

// MaintenanceRequestBody is the body for lodging a request
type MaintenanceRequestBody struct {
	Title       string                     `json:"title" binding:"required,max=200" example:"Leaking tap"`
	Description string                     `json:"description" binding:"required" example:"Kitchen tap drips constantly"`
	Priority    models.MaintenancePriority `json:"priority" binding:"omitempty,maintenance_priority" example:"medium"`
	Category    string                     `json:"category" binding:"omitempty,max=50" example:"plumbing"`
	PropertyID  *uint                      `json:"property_id" example:"1"`
	ImageURLs   []string                   `json:"image_urls" binding:"omitempty,dive,url"`
	RequesterID *uint                      `json:"requester_id" example:"5"`
}

// UpdateMaintenanceBody holds the fields to change
type UpdateMaintenanceBody struct {
	Title       *string                     `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string                     `json:"description" binding:"omitempty,min=1"`
	Priority    *models.MaintenancePriority `json:"priority" binding:"omitempty,maintenance_priority"`
	Category    *string                     `json:"category" binding:"omitempty,max=50"`
	PropertyID  *uint                       `json:"property_id"`
	ImageURLs   *[]string                   `json:"image_urls" binding:"omitempty,dive,url"`
}

// StatusBody changes a request's status
type StatusBody struct {
	Status models.MaintenanceStatus `json:"status" binding:"required,maintenance_status" example:"in_progress"`
}

// AssignBody assigns a request to staff
type AssignBody struct {
	AssigneeID uint `json:"assignee_id" binding:"required" example:"3"`
}

// CommentBody adds a comment
type CommentBody struct {
	Text string `json:"text" binding:"required" example:"Plumber booked for Tuesday"`
}

// HandleMaintenanceFunc returns a gin handler dispatching to the named maintenance method
func HandleMaintenanceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewMaintenanceController(ctx, container)

		switch method {
		case "getRequests":
			controller.GetRequests()
		case "getRequest":
			controller.GetRequest()
		case "createRequest":
			controller.CreateRequest()
		case "updateRequest":
			controller.UpdateRequest()
		case "updateStatus":
			controller.UpdateStatus()
		case "assignRequest":
			controller.AssignRequest()
		case "deleteRequest":
			controller.DeleteRequest()
		case "getComments":
			controller.GetComments()
		case "addComment":
			controller.AddComment()
		case "deleteComment":
			controller.DeleteComment()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *MaintenanceController) service() services.InterfaceMaintenanceService {
	return c.Container.GetService("maintenance").(services.InterfaceMaintenanceService)
}

// 1. GetRequests lists maintenance requests, newest first
// @Summary      List maintenance requests
// @Tags         Maintenance
// @Produce      json
// @Security     BearerAuth
// @Param        status        query  string  false  "pending, in_progress, completed or cancelled"
// @Param        priority      query  string  false  "low, medium, high or urgent"
// @Param        requester_id  query  int     false  "requester"
// @Param        assignee_id   query  int     false  "assignee"
// @Param        property_id   query  int     false  "property"
// @Param        page          query  int     false  "page, default 1"
// @Param        page_size     query  int     false  "page size, default 10"
// @Success      200  {object}  models.PageResult
// @Router       /maintenance [get]
func (c *MaintenanceController) GetRequests() {
	filter := store.MaintenanceFilter{
		Status:   models.MaintenanceStatus(c.Ctx.Query("status")),
		Priority: models.MaintenancePriority(c.Ctx.Query("priority")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		response.ParamError(c.Ctx, "invalid status")
		return
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		response.ParamError(c.Ctx, "invalid priority")
		return
	}

	var ok bool
	if filter.RequesterID, ok = queryUint(c.Ctx, "requester_id"); !ok {
		return
	}
	if filter.AssigneeID, ok = queryUint(c.Ctx, "assignee_id"); !ok {
		return
	}
	if filter.PropertyID, ok = queryUint(c.Ctx, "property_id"); !ok {
		return
	}

	page := pagination(c.Ctx)
	requests, total, err := c.service().GetRequests(c.Ctx.Request.Context(), filter, page)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, models.NewPageResult(requests, total, page.Page, page.PageSize))
}

// 2. GetRequest returns a request with requester, assignee and comments
// @Summary      Get maintenance request
// @Tags         Maintenance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "request id"
// @Success      200  {object}  models.MaintenanceRequest
// @Failure      404  {object}  ErrorResponse
// @Router       /maintenance/{id} [get]
func (c *MaintenanceController) GetRequest() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	req, err := c.service().GetRequestByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, req)
}

// 3. CreateRequest lodges a new request. Staff may lodge on behalf of a resident.
// @Summary      Create maintenance request
// @Tags         Maintenance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body MaintenanceRequestBody true "request"
// @Success      201  {object}  models.MaintenanceRequest
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /maintenance [post]
func (c *MaintenanceController) CreateRequest() {
	var body MaintenanceRequestBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		bindError(c.Ctx, err)
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		response.ParamError(c.Ctx, "title is required")
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		response.ParamError(c.Ctx, "description is required")
		return
	}

	requesterID := currentUserID(c.Ctx)
	if body.RequesterID != nil && *body.RequesterID != requesterID {
		if !isStaff(c.Ctx) {
			response.Forbidden(c.Ctx)
			return
		}
		requesterID = *body.RequesterID
	}

	req := &models.MaintenanceRequest{
		Title:       title,
		Description: body.Description,
		Priority:    body.Priority,
		Category:    body.Category,
		PropertyID:  body.PropertyID,
		RequesterID: requesterID,
		ImageURLs:   datatypes.JSONSlice[string](body.ImageURLs),
	}
	if err := c.service().CreateRequest(c.Ctx.Request.Context(), req); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, req)
}

// 4. UpdateRequest changes the supplied fields. Residents may only edit their own requests.
// @Summary      Update maintenance request
// @Tags         Maintenance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                    true  "request id"
// @Param        request  body  UpdateMaintenanceBody  true  "fields to change"
// @Success      200  {object}  models.MaintenanceRequest
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /maintenance/{id} [put]
func (c *MaintenanceController) UpdateRequest() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	var body UpdateMaintenanceBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		bindError(c.Ctx, err)
		return
	}
	if body.Title != nil && strings.TrimSpace(*body.Title) == "" {
		response.ParamError(c.Ctx, "title cannot be blank")
		return
	}
	if body.Description != nil && strings.TrimSpace(*body.Description) == "" {
		response.ParamError(c.Ctx, "description cannot be blank")
		return
	}

	if !isStaff(c.Ctx) {
		existing, err := c.service().GetRequestByID(c.Ctx.Request.Context(), id)
		if err != nil {
			handleServiceError(c.Ctx, err)
			return
		}
		if existing.RequesterID != currentUserID(c.Ctx) {
			response.Forbidden(c.Ctx)
			return
		}
	}

	updates := make(map[string]interface{})
	if body.Title != nil {
		updates["title"] = strings.TrimSpace(*body.Title)
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Priority != nil {
		updates["priority"] = *body.Priority
	}
	if body.Category != nil {
		updates["category"] = *body.Category
	}
	if body.PropertyID != nil {
		updates["property_id"] = *body.PropertyID
	}
	if body.ImageURLs != nil {
		urls := *body.ImageURLs
		if urls == nil {
			urls = []string{}
		}
		updates["image_urls"] = datatypes.JSONSlice[string](urls)
	}

	req, err := c.service().UpdateRequest(c.Ctx.Request.Context(), id, updates)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, req)
}

// 5. UpdateStatus moves a request to a new status
// @Summary      Change status
// @Tags         Maintenance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int         true  "request id"
// @Param        body  body  StatusBody  true  "new status"
// @Success      200  {object}  models.MaintenanceRequest
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /maintenance/{id}/status [patch]
func (c *MaintenanceController) UpdateStatus() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	var body StatusBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		bindError(c.Ctx, err)
		return
	}

	req, err := c.service().UpdateStatus(c.Ctx.Request.Context(), id, body.Status)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, req)
}

// 6. AssignRequest assigns a request to maintenance staff or a manager
// @Summary      Assign request
// @Tags         Maintenance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int         true  "request id"
// @Param        body  body  AssignBody  true  "assignee"
// @Success      200  {object}  models.MaintenanceRequest
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /maintenance/{id}/assign [patch]
func (c *MaintenanceController) AssignRequest() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	var body AssignBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		bindError(c.Ctx, err)
		return
	}

	req, err := c.service().AssignRequest(c.Ctx.Request.Context(), id, body.AssigneeID)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, req)
}

// 7. DeleteRequest removes a request and its comments
// @Summary      Delete maintenance request
// @Tags         Maintenance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "request id"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /maintenance/{id} [delete]
func (c *MaintenanceController) DeleteRequest() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	if err := c.service().DeleteRequest(c.Ctx.Request.Context(), id, currentActor(c.Ctx)); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"id": id})
}

// 8. GetComments lists a request's comments, oldest first
// @Summary      List comments
// @Tags         Maintenance
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "request id"
// @Success      200  {array}  models.Comment
// @Failure      404  {object}  ErrorResponse
// @Router       /maintenance/{id}/comments [get]
func (c *MaintenanceController) GetComments() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	comments, err := c.service().GetComments(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, comments)
}

// 9. AddComment posts a comment as the authenticated user
// @Summary      Add comment
// @Tags         Maintenance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int          true  "request id"
// @Param        body  body  CommentBody  true  "comment"
// @Success      201  {object}  models.Comment
// @Failure      404  {object}  ErrorResponse
// @Router       /maintenance/{id}/comments [post]
func (c *MaintenanceController) AddComment() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	var body CommentBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		bindError(c.Ctx, err)
		return
	}
	text := strings.TrimSpace(body.Text)
	if text == "" {
		response.ParamError(c.Ctx, "text is required")
		return
	}

	comment, err := c.service().AddComment(c.Ctx.Request.Context(), id, currentUserID(c.Ctx), text)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, comment)
}

// 10. DeleteComment removes a comment; only its author or an admin may
// @Summary      Delete comment
// @Tags         Maintenance
// @Produce      json
// @Security     BearerAuth
// @Param        id          path  int  true  "request id"
// @Param        comment_id  path  int  true  "comment id"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /maintenance/{id}/comments/{comment_id} [delete]
func (c *MaintenanceController) DeleteComment() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c.Ctx, "comment_id")
	if !ok {
		return
	}

	if err := c.service().DeleteComment(c.Ctx.Request.Context(), id, commentID, currentActor(c.Ctx)); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"id": commentID})
}
