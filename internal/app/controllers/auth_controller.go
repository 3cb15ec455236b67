package controllers

import (
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceAuthController defines the auth endpoints
type InterfaceAuthController interface {
	Login()
	Me()
}

// AuthController handles login and the current user
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController creates an auth controller
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@strata.local"`
	Password string `json:"password" binding:"required" example:"changeme"`
}

// HandleAuthFunc returns a gin handler dispatching to the named auth method
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "me":
			controller.Me()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// 1. Login exchanges credentials for a token
// @Summary      Login
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "credentials"
// @Success      200  {object}  services.LoginResult
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *AuthController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	result, err := jwtService.Login(c.Ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, result)
}

// 2. Me returns the authenticated user
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (c *AuthController) Me() {
	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.GetUserByID(c.Ctx.Request.Context(), currentUserID(c.Ctx))
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, user)
}
