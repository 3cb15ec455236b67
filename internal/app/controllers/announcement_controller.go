package controllers

import (
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"

	"github.com/gin-gonic/gin"
)

// AnnouncementController handles the notice board
type AnnouncementController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAnnouncementController creates an announcement controller
func NewAnnouncementController(ctx *gin.Context, container *container.ServiceContainer) *AnnouncementController {
	return &AnnouncementController{
		Ctx:       ctx,
		Container: container,
	}
}

// AnnouncementRequest is the body for posting an announcement
type AnnouncementRequest struct {
	Title      string                  `json:"title" binding:"required,max=200" example:"AGM notice"`
	Content    string                  `json:"content" binding:"required" example:"The AGM is on 12 March in the common room."`
	Type       models.AnnouncementType `json:"type" binding:"omitempty,announcement_type" example:"meeting"`
	ExpiresAt  *time.Time              `json:"expires_at" example:"2026-03-13T00:00:00Z"`
	Pinned     bool                    `json:"pinned"`
	BuildingID *uint                   `json:"building_id" example:"1"`
}

// UpdateAnnouncementRequest holds the fields to change. clear_expiry removes the expiry.
type UpdateAnnouncementRequest struct {
	Title       *string                  `json:"title" binding:"omitempty,min=1,max=200"`
	Content     *string                  `json:"content" binding:"omitempty,min=1"`
	Type        *models.AnnouncementType `json:"type" binding:"omitempty,announcement_type"`
	ExpiresAt   *time.Time               `json:"expires_at"`
	ClearExpiry bool                     `json:"clear_expiry"`
	Pinned      *bool                    `json:"pinned"`
	BuildingID  *uint                    `json:"building_id"`
}

// HandleAnnouncementFunc returns a gin handler dispatching to the named announcement method
func HandleAnnouncementFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAnnouncementController(ctx, container)

		switch method {
		case "getAnnouncements":
			controller.GetAnnouncements()
		case "getAnnouncement":
			controller.GetAnnouncement()
		case "createAnnouncement":
			controller.CreateAnnouncement()
		case "updateAnnouncement":
			controller.UpdateAnnouncement()
		case "deleteAnnouncement":
			controller.DeleteAnnouncement()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *AnnouncementController) service() services.InterfaceAnnouncementService {
	return c.Container.GetService("announcement").(services.InterfaceAnnouncementService)
}

// 1. GetAnnouncements lists active announcements, pinned first
// @Summary      List announcements
// @Tags         Announcement
// @Produce      json
// @Security     BearerAuth
// @Param        type             query  string  false  "general, maintenance, meeting or emergency"
// @Param        building_id      query  int     false  "building; building-wide notices are included"
// @Param        include_expired  query  bool    false  "include expired announcements"
// @Success      200  {object}  models.PageResult
// @Router       /announcements [get]
func (c *AnnouncementController) GetAnnouncements() {
	filter := services.AnnouncementFilter{
		Type:           models.AnnouncementType(c.Ctx.Query("type")),
		IncludeExpired: c.Ctx.Query("include_expired") == "true",
	}
	if filter.Type != "" && !filter.Type.Valid() {
		response.ParamError(c.Ctx, "invalid type")
		return
	}
	buildingID, ok := queryUint(c.Ctx, "building_id")
	if !ok {
		return
	}
	filter.BuildingID = buildingID

	page := pagination(c.Ctx)
	items, total, err := c.service().GetAnnouncements(c.Ctx.Request.Context(), filter, page)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, models.NewPageResult(items, total, page.Page, page.PageSize))
}

// 2. GetAnnouncement returns one announcement
// @Summary      Get announcement
// @Tags         Announcement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "announcement id"
// @Success      200  {object}  models.Announcement
// @Failure      404  {object}  ErrorResponse
// @Router       /announcements/{id} [get]
func (c *AnnouncementController) GetAnnouncement() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	a, err := c.service().GetAnnouncementByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, a)
}

// 3. CreateAnnouncement posts an announcement and broadcasts it
// @Summary      Create announcement
// @Tags         Announcement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        announcement body AnnouncementRequest true "announcement"
// @Success      201  {object}  models.Announcement
// @Failure      400  {object}  ErrorResponse
// @Router       /announcements [post]
func (c *AnnouncementController) CreateAnnouncement() {
	var req AnnouncementRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	authorID := currentUserID(c.Ctx)
	a := &models.Announcement{
		Title:      req.Title,
		Content:    req.Content,
		Type:       req.Type,
		ExpiresAt:  req.ExpiresAt,
		Pinned:     req.Pinned,
		BuildingID: req.BuildingID,
		AuthorID:   &authorID,
	}
	if err := c.service().CreateAnnouncement(c.Ctx.Request.Context(), a); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, a)
}

// 4. UpdateAnnouncement changes the supplied fields
// @Summary      Update announcement
// @Tags         Announcement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id            path  int                        true  "announcement id"
// @Param        announcement  body  UpdateAnnouncementRequest  true  "fields to change"
// @Success      200  {object}  models.Announcement
// @Failure      404  {object}  ErrorResponse
// @Router       /announcements/{id} [put]
func (c *AnnouncementController) UpdateAnnouncement() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	var req UpdateAnnouncementRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.ClearExpiry {
		updates["expires_at"] = nil
	} else if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}
	if req.Pinned != nil {
		updates["pinned"] = *req.Pinned
	}
	if req.BuildingID != nil {
		if *req.BuildingID == 0 {
			updates["building_id"] = nil
		} else {
			updates["building_id"] = *req.BuildingID
		}
	}

	a, err := c.service().UpdateAnnouncement(c.Ctx.Request.Context(), id, updates)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, a)
}

// 5. DeleteAnnouncement removes an announcement
// @Summary      Delete announcement
// @Tags         Announcement
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "announcement id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /announcements/{id} [delete]
func (c *AnnouncementController) DeleteAnnouncement() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	if err := c.service().DeleteAnnouncement(c.Ctx.Request.Context(), id); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"id": id})
}
