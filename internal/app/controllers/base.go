package controllers

import (
	"errors"
	"strconv"

	"strata-portal/internal/app/middleware"
	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"
	"strata-portal/internal/infrastructure/backend"
	"strata-portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorResponse documents the error envelope
type ErrorResponse struct {
	Code    int         `json:"code" example:"103000"`
	Message string      `json:"message" example:"maintenance request not found"`
	Data    interface{} `json:"data"`
}

// errorCodes maps service sentinels to business codes, checked in order
var errorCodes = []struct {
	err  error
	code int
}{
	{services.ErrUserNotFound, code.ErrUserNotFound},
	{services.ErrEmailTaken, code.ErrUserAlreadyExist},
	{services.ErrInvalidCredentials, code.ErrUserPasswordIncorrect},
	{services.ErrUserInactive, code.ErrUserInactive},
	{services.ErrLastAdmin, code.ErrUserLastAdmin},
	{services.ErrBuildingNotFound, code.ErrBuildingNotFound},
	{services.ErrBuildingNotEmpty, code.ErrBuildingHasProperties},
	{services.ErrPropertyNotFound, code.ErrPropertyNotFound},
	{services.ErrMaintenanceNotFound, code.ErrMaintenanceNotFound},
	{services.ErrInvalidTransition, code.ErrMaintenanceInvalidTransition},
	{services.ErrInvalidAssignee, code.ErrMaintenanceInvalidAssignee},
	{services.ErrCommentNotFound, code.ErrCommentNotFound},
	{services.ErrNotificationNotFound, code.ErrNotificationNotFound},
	{services.ErrAnnouncementNotFound, code.ErrAnnouncementNotFound},
	{services.ErrPaymentNotFound, code.ErrPaymentNotFound},
	{services.ErrPaymentNotPayable, code.ErrPaymentNotPayable},
	{services.ErrNoPropertiesToLevy, code.ErrLevyRunNoProperties},
	{services.ErrInvalidAmount, code.ErrValidation},
	{services.ErrInvalidPeriod, code.ErrReportPeriod},
	{services.ErrForbidden, code.ErrForbidden},
	{gorm.ErrRecordNotFound, code.ErrRecordNotFound},
	{backend.ErrUnavailable, code.ErrBackendUnavailable},
}

// handleServiceError writes the envelope for err. Unknown errors are logged and reported as database errors.
func handleServiceError(ctx *gin.Context, err error) {
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			if m.code == code.ErrValidation {
				response.ParamError(ctx, err.Error())
				return
			}
			response.Fail(ctx, m.code, nil)
			return
		}
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		logger.Error("backend error on %s %s: %v", ctx.Request.Method, ctx.FullPath(), err)
		response.Fail(ctx, code.ErrBackendUnavailable, nil)
		return
	}

	logger.Error("request %s %s failed: %v", ctx.Request.Method, ctx.FullPath(), err)
	_ = ctx.Error(err)
	response.Fail(ctx, code.ErrDatabase, nil)
}

// parseID reads a positive integer path parameter. It writes 400 and returns false otherwise.
func parseID(ctx *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		response.InvalidID(ctx, param)
		return 0, false
	}
	return uint(id), true
}

// queryUint reads an optional positive integer query parameter
func queryUint(ctx *gin.Context, name string) (*uint, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		response.ParamError(ctx, "invalid "+name)
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// pagination reads page and page_size with the usual defaults
func pagination(ctx *gin.Context) models.Pagination {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "10"))
	return models.NewPagination(page, pageSize)
}

func currentUserID(ctx *gin.Context) uint {
	id, _ := ctx.Get(middleware.ContextUserID)
	uid, _ := id.(uint)
	return uid
}

func currentRole(ctx *gin.Context) models.UserRole {
	role, _ := ctx.Get(middleware.ContextRole)
	r, _ := role.(models.UserRole)
	return r
}

func currentActor(ctx *gin.Context) services.Actor {
	return services.Actor{UserID: currentUserID(ctx), Role: currentRole(ctx)}
}

func isStaff(ctx *gin.Context) bool {
	return currentActor(ctx).IsStaff()
}

func bindError(ctx *gin.Context, err error) {
	response.FailWithMessage(ctx, code.ErrBind, "invalid request parameters: "+err.Error(), nil)
}
