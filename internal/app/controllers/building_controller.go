package controllers

import (
	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceBuildingController defines the building endpoints
type InterfaceBuildingController interface {
	GetBuildings()
	GetBuilding()
	CreateBuilding()
	UpdateBuilding()
	DeleteBuilding()
	GetBuildingProperties()
}

// BuildingController handles strata buildings
type BuildingController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewBuildingController creates a building controller
func NewBuildingController(ctx *gin.Context, container *container.ServiceContainer) *BuildingController {
	return &BuildingController{
		Ctx:       ctx,
		Container: container,
	}
}

// BuildingRequest is the body for creating a building
type BuildingRequest struct {
	Name       string `json:"name" binding:"required,max=100" example:"Harbour View"`
	Address    string `json:"address" binding:"required,max=255" example:"1 Quay St, Sydney NSW"`
	StrataPlan string `json:"strata_plan" binding:"omitempty,max=50" example:"SP12345"`
}

// UpdateBuildingRequest holds the fields to change
type UpdateBuildingRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=100"`
	Address    *string `json:"address" binding:"omitempty,min=1,max=255"`
	StrataPlan *string `json:"strata_plan" binding:"omitempty,max=50"`
}

// HandleBuildingFunc returns a gin handler dispatching to the named building method
func HandleBuildingFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewBuildingController(ctx, container)

		switch method {
		case "getBuildings":
			controller.GetBuildings()
		case "getBuilding":
			controller.GetBuilding()
		case "createBuilding":
			controller.CreateBuilding()
		case "updateBuilding":
			controller.UpdateBuilding()
		case "deleteBuilding":
			controller.DeleteBuilding()
		case "getBuildingProperties":
			controller.GetBuildingProperties()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *BuildingController) service() services.InterfaceBuildingService {
	return c.Container.GetService("building").(services.InterfaceBuildingService)
}

// 1. GetBuildings lists buildings
// @Summary      List buildings
// @Tags         Building
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "page, default 1"
// @Param        page_size  query  int  false  "page size, default 10"
// @Success      200  {object}  models.PageResult
// @Router       /buildings [get]
func (c *BuildingController) GetBuildings() {
	page := pagination(c.Ctx)
	buildings, total, err := c.service().GetAllBuildings(c.Ctx.Request.Context(), page)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, models.NewPageResult(buildings, total, page.Page, page.PageSize))
}

// 2. GetBuilding returns one building
// @Summary      Get building
// @Tags         Building
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "building id"
// @Success      200  {object}  models.Building
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /buildings/{id} [get]
func (c *BuildingController) GetBuilding() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	building, err := c.service().GetBuildingByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, building)
}

// 3. CreateBuilding adds a building
// @Summary      Create building
// @Tags         Building
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        building body BuildingRequest true "building"
// @Success      201  {object}  models.Building
// @Failure      400  {object}  ErrorResponse
// @Router       /buildings [post]
func (c *BuildingController) CreateBuilding() {
	var req BuildingRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	building := &models.Building{
		Name:       req.Name,
		Address:    req.Address,
		StrataPlan: req.StrataPlan,
	}
	if err := c.service().CreateBuilding(c.Ctx.Request.Context(), building); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, building)
}

// 4. UpdateBuilding changes the supplied fields
// @Summary      Update building
// @Tags         Building
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path  int                    true  "building id"
// @Param        building  body  UpdateBuildingRequest  true  "fields to change"
// @Success      200  {object}  models.Building
// @Failure      404  {object}  ErrorResponse
// @Router       /buildings/{id} [put]
func (c *BuildingController) UpdateBuilding() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	var req UpdateBuildingRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.StrataPlan != nil {
		updates["strata_plan"] = *req.StrataPlan
	}

	building, err := c.service().UpdateBuilding(c.Ctx.Request.Context(), id, updates)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, building)
}

// 5. DeleteBuilding removes a building without properties
// @Summary      Delete building
// @Tags         Building
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "building id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /buildings/{id} [delete]
func (c *BuildingController) DeleteBuilding() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	if err := c.service().DeleteBuilding(c.Ctx.Request.Context(), id); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"id": id})
}

// 6. GetBuildingProperties lists the lots of a building
// @Summary      Building properties
// @Tags         Building
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "building id"
// @Success      200  {array}  models.Property
// @Failure      404  {object}  ErrorResponse
// @Router       /buildings/{id}/properties [get]
func (c *BuildingController) GetBuildingProperties() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	properties, err := c.service().GetBuildingProperties(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, properties)
}
