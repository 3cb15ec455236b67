package controllers

import (
	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"

	"github.com/gin-gonic/gin"
)

// PropertyController handles lots within buildings
type PropertyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPropertyController creates a property controller
func NewPropertyController(ctx *gin.Context, container *container.ServiceContainer) *PropertyController {
	return &PropertyController{
		Ctx:       ctx,
		Container: container,
	}
}

// PropertyRequest is the body for creating a property
type PropertyRequest struct {
	UnitNumber      string `json:"unit_number" binding:"required,max=20" example:"12"`
	Address         string `json:"address" binding:"omitempty,max=255" example:"12/1 Quay St"`
	LotNumber       string `json:"lot_number" binding:"omitempty,max=20" example:"7"`
	UnitEntitlement int    `json:"unit_entitlement" binding:"omitempty,min=1" example:"25"`
	BuildingID      uint   `json:"building_id" binding:"required" example:"1"`
}

// UpdatePropertyRequest holds the fields to change
type UpdatePropertyRequest struct {
	UnitNumber      *string `json:"unit_number" binding:"omitempty,min=1,max=20"`
	Address         *string `json:"address" binding:"omitempty,max=255"`
	LotNumber       *string `json:"lot_number" binding:"omitempty,max=20"`
	UnitEntitlement *int    `json:"unit_entitlement" binding:"omitempty,min=1"`
	BuildingID      *uint   `json:"building_id"`
}

// HandlePropertyFunc returns a gin handler dispatching to the named property method
func HandlePropertyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPropertyController(ctx, container)

		switch method {
		case "getProperties":
			controller.GetProperties()
		case "getProperty":
			controller.GetProperty()
		case "createProperty":
			controller.CreateProperty()
		case "updateProperty":
			controller.UpdateProperty()
		case "deleteProperty":
			controller.DeleteProperty()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *PropertyController) service() services.InterfaceBuildingService {
	return c.Container.GetService("building").(services.InterfaceBuildingService)
}

// 1. GetProperties lists lots
// @Summary      List properties
// @Tags         Property
// @Produce      json
// @Security     BearerAuth
// @Param        building_id  query  int  false  "building id"
// @Param        page         query  int  false  "page, default 1"
// @Param        page_size    query  int  false  "page size, default 10"
// @Success      200  {object}  models.PageResult
// @Router       /properties [get]
func (c *PropertyController) GetProperties() {
	buildingID, ok := queryUint(c.Ctx, "building_id")
	if !ok {
		return
	}

	page := pagination(c.Ctx)
	properties, total, err := c.service().GetAllProperties(c.Ctx.Request.Context(), buildingID, page)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, models.NewPageResult(properties, total, page.Page, page.PageSize))
}

// 2. GetProperty returns a lot with its building and residents
// @Summary      Get property
// @Tags         Property
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "property id"
// @Success      200  {object}  models.Property
// @Failure      404  {object}  ErrorResponse
// @Router       /properties/{id} [get]
func (c *PropertyController) GetProperty() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	property, err := c.service().GetPropertyByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, property)
}

// 3. CreateProperty adds a lot to a building
// @Summary      Create property
// @Tags         Property
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        property body PropertyRequest true "property"
// @Success      201  {object}  models.Property
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /properties [post]
func (c *PropertyController) CreateProperty() {
	var req PropertyRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	property := &models.Property{
		UnitNumber:      req.UnitNumber,
		Address:         req.Address,
		LotNumber:       req.LotNumber,
		UnitEntitlement: req.UnitEntitlement,
		BuildingID:      req.BuildingID,
	}
	if err := c.service().CreateProperty(c.Ctx.Request.Context(), property); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Created(c.Ctx, property)
}

// 4. UpdateProperty changes the supplied fields
// @Summary      Update property
// @Tags         Property
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path  int                    true  "property id"
// @Param        property  body  UpdatePropertyRequest  true  "fields to change"
// @Success      200  {object}  models.Property
// @Failure      404  {object}  ErrorResponse
// @Router       /properties/{id} [put]
func (c *PropertyController) UpdateProperty() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	var req UpdatePropertyRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		bindError(c.Ctx, err)
		return
	}

	updates := make(map[string]interface{})
	if req.UnitNumber != nil {
		updates["unit_number"] = *req.UnitNumber
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.LotNumber != nil {
		updates["lot_number"] = *req.LotNumber
	}
	if req.UnitEntitlement != nil {
		updates["unit_entitlement"] = *req.UnitEntitlement
	}
	if req.BuildingID != nil {
		updates["building_id"] = *req.BuildingID
	}

	property, err := c.service().UpdateProperty(c.Ctx.Request.Context(), id, updates)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, property)
}

// 5. DeleteProperty removes a lot
// @Summary      Delete property
// @Tags         Property
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "property id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /properties/{id} [delete]
func (c *PropertyController) DeleteProperty() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}

	if err := c.service().DeleteProperty(c.Ctx.Request.Context(), id); err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, gin.H{"id": id})
}
