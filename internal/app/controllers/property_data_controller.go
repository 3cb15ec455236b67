package controllers

import (
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"

	"github.com/gin-gonic/gin"
)

// PropertyDataController serves the portfolio dashboard
type PropertyDataController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPropertyDataController creates a property data controller
func NewPropertyDataController(ctx *gin.Context, container *container.ServiceContainer) *PropertyDataController {
	return &PropertyDataController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandlePropertyDataFunc returns a gin handler dispatching to the named method
func HandlePropertyDataFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPropertyDataController(ctx, container)

		switch method {
		case "getOverview":
			controller.GetOverview()
		case "getBuildingDetail":
			controller.GetBuildingDetail()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

func (c *PropertyDataController) service() services.InterfacePropertyDataService {
	return c.Container.GetService("property_data").(services.InterfacePropertyDataService)
}

// 1. GetOverview returns per-building counts and outstanding levies
// @Summary      Property overview
// @Tags         PropertyData
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  services.PropertyOverview
// @Router       /property-data [get]
func (c *PropertyDataController) GetOverview() {
	overview, err := c.service().GetOverview(c.Ctx.Request.Context())
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, overview)
}

// 2. GetBuildingDetail returns a building with its properties and residents
// @Summary      Building detail
// @Tags         PropertyData
// @Produce      json
// @Security     BearerAuth
// @Param        building_id  path  int  true  "building id"
// @Success      200  {object}  models.Building
// @Failure      404  {object}  ErrorResponse
// @Router       /property-data/{building_id} [get]
func (c *PropertyDataController) GetBuildingDetail() {
	id, ok := parseID(c.Ctx, "building_id")
	if !ok {
		return
	}

	building, err := c.service().GetBuildingDetail(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, building)
}
