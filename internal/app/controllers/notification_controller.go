package controllers

import (
	"net/http"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"
	"strata-portal/internal/infrastructure/config"
	"strata-portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// InterfaceNotificationController defines the notification endpoints
type InterfaceNotificationController interface {
	GetNotifications()
	GetUnreadCount()
	CreateNotification()
	MarkAsRead()
	MarkAllAsRead()
	DeleteNotification()
	Subscribe()
}

// NotificationController handles in-app notifications
type NotificationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewNotificationController creates a notification controller
func NewNotificationController(ctx *gin.Context, container *container.ServiceContainer) *NotificationController {
	return &NotificationController{
		Ctx:       ctx,
		Container: container,
	}
}

// NotificationRequest is the body for sending a notification
type NotificationRequest struct {
	UserID  uint   `json:"user_id" binding:"required" example:"5"`
	Title   string `json:"title" binding:"required,max=150" example:"Water shut-off"`
	Message string `json:"message" binding:"required" example:"Water is off 9am-12pm Thursday"`
	Type    string `json:"type" binding:"omitempty,oneof=general maintenance payment announcement" example:"general"`
}

// HandleNotificationFunc returns a gin handler dispatching to the named notification method
func HandleNotificationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewNotificationController(ctx, container)

		switch method {
		case "getNotifications":
			controller.GetNotifications()
		case "getUnreadCount":
			controller.GetUnreadCount()
		case "createNotification":
			controller.CreateNotification()
		case "markAsRead":
			controller.MarkAsRead()
		case "markAllAsRead":
			controller.MarkAllAsRead()
		case "deleteNotification":
			controller.DeleteNotification()
		case "subscribe":
			controller.Subscribe()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *NotificationController) service() services.InterfaceNotificationService {
	return c.Container.GetService("notification").(services.InterfaceNotificationService)
}

// targetUser is the caller, or the user_id query for admins
func (c *NotificationController) targetUser() (uint, bool) {
	userID := currentUserID(c.Ctx)
	if currentRole(c.Ctx) != models.RoleAdmin {
		return userID, true
	}
	requested, ok := queryUint(c.Ctx, "user_id")
	if !ok {
		return 0, false
	}
	if requested != nil {
		return *requested, true
	}
	return userID, true
}

// ownerScope is 0 for admins, which skips the ownership check
func (c *NotificationController) ownerScope() uint {
	if currentRole(c.Ctx) == models.RoleAdmin {
		return 0
	}
	return currentUserID(c.Ctx)
}

// 1. GetNotifications lists the caller's notifications
// @Summary      List notifications
// @Tags         Notification
// @Produce      json
// @Security     BearerAuth
// @Param        unread     query  bool  false  "unread only"
// @Param        user_id    query  int   false  "admin only: another user's notifications"
// @Param        page       query  int   false  "page, default 1"
// @Param        page_size  query  int   false  "page size, default 10"
// @Success      200  {object}  models.PageResult
// @Router       /notifications [get]
func (c *NotificationController) GetNotifications() {
	userID, ok := c.targetUser()
	if !ok {
		return
	}

	page := pagination(c.Ctx)
	items, total, err := c.service().GetNotifications(c.Ctx.Request.Context(), userID, c.Ctx.Query("unread") == "true", page)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, models.NewPageResult(items, total, page.Page, page.PageSize))
}

// 2. GetUnreadCount returns the caller's unread count
// @Summary      Unread count
// @Tags         Notification
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications/unread-count [get]
func (c *NotificationController) GetUnreadCount() {
	count, err := c.service().GetUnreadCount(c.Ctx.Request.Context(), currentUserID(c.Ctx))
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"unread": count})
}

// 3. CreateNotification sends a notification to one user
// @Summary      Send notification
// @Tags         Notification
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        notification body NotificationRequest true "notification"
// @Success      201  {object}  models.Notification
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications [post]
func (c *NotificationController) CreateNotification() {
	var req NotificationRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	n := &models.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	}
	if n.Type == "" {
		n.Type = models.NotificationTypeGeneral
	}
	if err := c.service().CreateNotification(c.Ctx.Request.Context(), n); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, n)
}

// 4. MarkAsRead marks one notification read
// @Summary      Mark read
// @Tags         Notification
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "notification id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/{id}/read [patch]
func (c *NotificationController) MarkAsRead() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	if err := c.service().MarkAsRead(c.Ctx.Request.Context(), id, c.ownerScope()); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"id": id, "read": true})
}

// 5. MarkAllAsRead marks every caller notification read
// @Summary      Mark all read
// @Tags         Notification
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications/read-all [patch]
func (c *NotificationController) MarkAllAsRead() {
	updated, err := c.service().MarkAllAsRead(c.Ctx.Request.Context(), currentUserID(c.Ctx))
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"updated": updated})
}

// 6. DeleteNotification removes a notification
// @Summary      Delete notification
// @Tags         Notification
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "notification id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/{id} [delete]
func (c *NotificationController) DeleteNotification() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	if err := c.service().DeleteNotification(c.Ctx.Request.Context(), id, c.ownerScope()); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"id": id})
}

// 7. Subscribe upgrades to a websocket that receives the caller's notifications live
// @Summary      Notification stream
// @Tags         Notification
// @Security     BearerAuth
// @Param        token  query  string  false  "JWT when the Authorization header cannot be set"
// @Router       /notifications/ws [get]
func (c *NotificationController) Subscribe() {
	cfg, _ := c.Container.GetService("config").(*config.Config)
	upgrader := newUpgrader(cfg)

	conn, err := upgrader.Upgrade(c.Ctx.Writer, c.Ctx.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.Warning("websocket upgrade failed: %v", err)
		return
	}

	c.Container.Hub().Serve(currentUserID(c.Ctx), conn)
}

// newUpgrader accepts same-host requests and the configured CORS origins
func newUpgrader(cfg *config.Config) websocket.Upgrader {
	allowed := map[string]bool{}
	if cfg != nil {
		for _, o := range cfg.CORSAllowedOrigins {
			allowed[o] = true
		}
	}

	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed["*"] || allowed[origin] {
				return true
			}
			return origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
}
