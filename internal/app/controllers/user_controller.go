package controllers

import (
	"strings"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceUserController defines the user endpoints
type InterfaceUserController interface {
	GetUsers()
	GetUser()
	GetCommittee()
	CreateUser()
	UpdateUser()
	DeleteUser()
}

// UserController handles resident, committee and staff profiles
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController creates a user controller
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateUserRequest is the body for creating a user
type CreateUserRequest struct {
	Name              string          `json:"name" binding:"required,max=100" example:"Jane Citizen"`
	Email             string          `json:"email" binding:"required,email" example:"jane@example.com"`
	Phone             string          `json:"phone" binding:"omitempty,max=30" example:"0400 000 000"`
	Password          string          `json:"password" binding:"required,min=6" example:"secret123"`
	Role              models.UserRole `json:"role" binding:"omitempty,user_role" example:"resident"`
	CommitteePosition string          `json:"committee_position" binding:"omitempty,oneof=chairperson secretary treasurer member"`
	PropertyID        *uint           `json:"property_id" example:"1"`
}

// UpdateUserRequest holds the fields to change; omitted fields stay as they are
type UpdateUserRequest struct {
	Name              *string          `json:"name" binding:"omitempty,max=100"`
	Email             *string          `json:"email" binding:"omitempty,email"`
	Phone             *string          `json:"phone" binding:"omitempty,max=30"`
	Password          *string          `json:"password" binding:"omitempty,min=6"`
	Role              *models.UserRole `json:"role" binding:"omitempty,user_role"`
	CommitteePosition *string          `json:"committee_position" binding:"omitempty,oneof=chairperson secretary treasurer member none"`
	Status            *string          `json:"status" binding:"omitempty,oneof=active inactive"`
	PropertyID        *uint            `json:"property_id"`
}

// HandleUserFunc returns a gin handler dispatching to the named user method
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getUser":
			controller.GetUser()
		case "getCommittee":
			controller.GetCommittee()
		case "createUser":
			controller.CreateUser()
		case "updateUser":
			controller.UpdateUser()
		case "deleteUser":
			controller.DeleteUser()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *UserController) service() services.InterfaceUserService {
	return c.Container.GetService("user").(services.InterfaceUserService)
}

// 1. GetUsers lists users
// @Summary      List users
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        role        query  string  false  "admin, manager, maintenance_staff or resident"
// @Param        property_id query  int     false  "property id"
// @Param        committee   query  bool    false  "committee members only"
// @Param        search      query  string  false  "name, email or phone"
// @Param        page        query  int     false  "page, default 1"
// @Param        page_size   query  int     false  "page size, default 10"
// @Success      200  {object}  models.PageResult
// @Router       /users [get]
func (c *UserController) GetUsers() {
	filter := services.UserFilter{
		Role:      models.UserRole(c.Ctx.Query("role")),
		Committee: c.Ctx.Query("committee") == "true",
		Search:    strings.TrimSpace(c.Ctx.Query("search")),
	}
	if filter.Role != "" && !filter.Role.Valid() {
		response.ParamError(c.Ctx, "invalid role")
		return
	}
	propertyID, ok := queryUint(c.Ctx, "property_id")
	if !ok {
		return
	}
	filter.PropertyID = propertyID

	page := pagination(c.Ctx)
	users, total, err := c.service().GetAllUsers(c.Ctx.Request.Context(), filter, page)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, models.NewPageResult(users, total, page.Page, page.PageSize))
}

// 2. GetUser returns one user
// @Summary      Get user
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "user id"
// @Success      200  {object}  models.User
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (c *UserController) GetUser() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	user, err := c.service().GetUserByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, user)
}

// 3. GetCommittee lists users holding a committee position
// @Summary      Strata committee
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.User
// @Router       /users/committee [get]
func (c *UserController) GetCommittee() {
	users, err := c.service().GetCommittee(c.Ctx.Request.Context())
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, users)
}

// 4. CreateUser registers a user
// @Summary      Create user
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user body CreateUserRequest true "user"
// @Success      201  {object}  models.User
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users [post]
func (c *UserController) CreateUser() {
	var req CreateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleResident
	}
	if req.Role == models.RoleAdmin && currentRole(c.Ctx) != models.RoleAdmin {
		response.Forbidden(c.Ctx)
		return
	}

	user := &models.User{
		Name:              req.Name,
		Email:             models.NormalizeEmail(req.Email),
		Phone:             req.Phone,
		Role:              req.Role,
		CommitteePosition: req.CommitteePosition,
		Status:            "active",
		PropertyID:        req.PropertyID,
	}
	if err := c.service().CreateUser(c.Ctx.Request.Context(), user, req.Password); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}

	response.Created(c.Ctx, user)
}

// 5. UpdateUser changes the supplied fields. Users may edit their own name, phone and password.
// @Summary      Update user
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "user id"
// @Param        user body UpdateUserRequest true "fields to change"
// @Success      200  {object}  models.User
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [put]
func (c *UserController) UpdateUser() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	staff := isStaff(c.Ctx)
	if !staff {
		restricted := req.Email != nil || req.Role != nil || req.CommitteePosition != nil ||
			req.Status != nil || req.PropertyID != nil
		if currentUserID(c.Ctx) != id || restricted {
			response.Forbidden(c.Ctx)
			return
		}
	}
	if req.Role != nil && *req.Role == models.RoleAdmin && currentRole(c.Ctx) != models.RoleAdmin {
		response.Forbidden(c.Ctx)
		return
	}
	// only an admin may edit an admin account
	if staff && currentRole(c.Ctx) != models.RoleAdmin {
		target, err := c.service().GetUserByID(c.Ctx.Request.Context(), id)
		if err != nil {
			handleServiceError(c.Ctx, err)
			return
		}
		if target.Role == models.RoleAdmin {
			response.Forbidden(c.Ctx)
			return
		}
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = models.NormalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Password != nil {
		updates["password"] = *req.Password
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.CommitteePosition != nil {
		if *req.CommitteePosition == "none" {
			updates["committee_position"] = ""
		} else {
			updates["committee_position"] = *req.CommitteePosition
		}
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.PropertyID != nil {
		updates["property_id"] = *req.PropertyID
	}

	user, err := c.service().UpdateUser(c.Ctx.Request.Context(), id, updates)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, user)
}

// 6. DeleteUser removes a user
// @Summary      Delete user
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "user id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (c *UserController) DeleteUser() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	if err := c.service().DeleteUser(c.Ctx.Request.Context(), id); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"id": id})
}
