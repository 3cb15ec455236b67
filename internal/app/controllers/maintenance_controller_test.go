package controllers

import (
	"net/http"
	"testing"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/store"
	"strata-portal/internal/error/code"
	"strata-portal/internal/infrastructure/backend"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func maintenanceRouter(svc *mockMaintenanceService, userID uint, role models.UserRole) *gin.Engine {
	c := newContainer()
	c.SetService("maintenance", svc)

	r := newRouter(userID, role)
	r.GET("/maintenance", HandleMaintenanceFunc(c, "getRequests"))
	r.GET("/maintenance/:id", HandleMaintenanceFunc(c, "getRequest"))
	r.POST("/maintenance", HandleMaintenanceFunc(c, "createRequest"))
	r.PUT("/maintenance/:id", HandleMaintenanceFunc(c, "updateRequest"))
	r.PATCH("/maintenance/:id/status", HandleMaintenanceFunc(c, "updateStatus"))
	r.DELETE("/maintenance/:id", HandleMaintenanceFunc(c, "deleteRequest"))
	r.POST("/maintenance/:id/comments", HandleMaintenanceFunc(c, "addComment"))
	r.DELETE("/maintenance/:id/comments/:comment_id", HandleMaintenanceFunc(c, "deleteComment"))
	return r
}

func TestCreateRequest_DefaultsRequesterToCaller(t *testing.T) {
	svc := new(mockMaintenanceService)
	svc.On("CreateRequest", mock.Anything, mock.MatchedBy(func(req *models.MaintenanceRequest) bool {
		return req.RequesterID == 9 && req.Title == "Leaking tap" && req.Priority == models.MaintenancePriorityHigh
	})).Run(func(args mock.Arguments) {
		req := args.Get(1).(*models.MaintenanceRequest)
		req.ID = 1
		req.Status = models.MaintenanceStatusPending
	}).Return(nil)

	r := maintenanceRouter(svc, 9, models.RoleResident)
	w, env := doJSON(t, r, http.MethodPost, "/maintenance", gin.H{
		"title":       " Leaking tap ",
		"description": "Kitchen tap drips",
		"priority":    "high",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, code.ErrSuccess, env.Code)
	assert.Contains(t, string(env.Data), `"status":"pending"`)
	svc.AssertExpectations(t)
}

func TestCreateRequest_Validation(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{"missing title", gin.H{"description": "x"}},
		{"missing description", gin.H{"title": "x"}},
		{"bad priority", gin.H{"title": "x", "description": "y", "priority": "whenever"}},
		{"bad image url", gin.H{"title": "x", "description": "y", "image_urls": []string{"not a url"}}},
		{"blank title", gin.H{"title": "   ", "description": "y"}},
		{"blank description", gin.H{"title": "x", "description": "\t\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockMaintenanceService)
			w, _ := doJSON(t, maintenanceRouter(svc, 9, models.RoleResident), http.MethodPost, "/maintenance", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateRequest_ResidentCannotActForOthers(t *testing.T) {
	svc := new(mockMaintenanceService)
	w, _ := doJSON(t, maintenanceRouter(svc, 9, models.RoleResident), http.MethodPost, "/maintenance", gin.H{
		"title": "x", "description": "y", "requester_id": 3,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetRequests_Filters(t *testing.T) {
	svc := new(mockMaintenanceService)
	assignee := uint(4)
	svc.On("GetRequests", mock.Anything, store.MaintenanceFilter{
		Status:     models.MaintenanceStatusPending,
		AssigneeID: &assignee,
	}, models.Pagination{Page: 2, PageSize: 5}).
		Return([]models.MaintenanceRequest{{BaseModel: models.BaseModel{ID: 3}}}, int64(6), nil)

	w, env := doJSON(t, maintenanceRouter(svc, 1, models.RoleManager), http.MethodGet,
		"/maintenance?status=pending&assignee_id=4&page=2&page_size=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total_pages":2`)
	svc.AssertExpectations(t)
}

func TestGetRequests_BadFilter(t *testing.T) {
	svc := new(mockMaintenanceService)
	r := maintenanceRouter(svc, 1, models.RoleManager)

	w, _ := doJSON(t, r, http.MethodGet, "/maintenance?status=done", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/maintenance?property_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRequest_Errors(t *testing.T) {
	svc := new(mockMaintenanceService)
	svc.On("GetRequestByID", mock.Anything, uint(404)).Return(nil, services.ErrMaintenanceNotFound)
	svc.On("GetRequestByID", mock.Anything, uint(503)).Return(nil, backend.ErrUnavailable)
	svc.On("GetRequestByID", mock.Anything, uint(502)).Return(nil, &backend.APIError{Status: 500})
	r := maintenanceRouter(svc, 1, models.RoleManager)

	w, env := doJSON(t, r, http.MethodGet, "/maintenance/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrInvalidID, env.Code)

	w, env = doJSON(t, r, http.MethodGet, "/maintenance/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, code.ErrMaintenanceNotFound, env.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/maintenance/503", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/maintenance/502", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUpdateRequest_OnlySuppliedFields(t *testing.T) {
	svc := new(mockMaintenanceService)
	svc.On("UpdateRequest", mock.Anything, uint(5), map[string]interface{}{
		"priority": models.MaintenancePriorityUrgent,
	}).Return(&models.MaintenanceRequest{BaseModel: models.BaseModel{ID: 5}, Priority: models.MaintenancePriorityUrgent}, nil)

	w, _ := doJSON(t, maintenanceRouter(svc, 1, models.RoleAdmin), http.MethodPut, "/maintenance/5", gin.H{"priority": "urgent"})
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdateRequest_RejectsBlankTitle(t *testing.T) {
	svc := new(mockMaintenanceService)

	w, env := doJSON(t, maintenanceRouter(svc, 1, models.RoleAdmin), http.MethodPut, "/maintenance/5", gin.H{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrValidation, env.Code)
	svc.AssertNotCalled(t, "UpdateRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateRequest_ResidentOnlyOwn(t *testing.T) {
	svc := new(mockMaintenanceService)
	svc.On("GetRequestByID", mock.Anything, uint(5)).Return(&models.MaintenanceRequest{RequesterID: 2}, nil)

	w, _ := doJSON(t, maintenanceRouter(svc, 9, models.RoleResident), http.MethodPut, "/maintenance/5", gin.H{"title": "mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "UpdateRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus(t *testing.T) {
	svc := new(mockMaintenanceService)
	svc.On("UpdateStatus", mock.Anything, uint(5), models.MaintenanceStatusCancelled).Return(nil, services.ErrInvalidTransition)
	r := maintenanceRouter(svc, 1, models.RoleManager)

	w, env := doJSON(t, r, http.MethodPatch, "/maintenance/5/status", gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, code.ErrMaintenanceInvalidTransition, env.Code)

	w, _ = doJSON(t, r, http.MethodPatch, "/maintenance/5/status", gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRequest_PassesActor(t *testing.T) {
	svc := new(mockMaintenanceService)
	svc.On("DeleteRequest", mock.Anything, uint(5), services.Actor{UserID: 9, Role: models.RoleResident}).Return(services.ErrForbidden)

	w, env := doJSON(t, maintenanceRouter(svc, 9, models.RoleResident), http.MethodDelete, "/maintenance/5", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, code.ErrForbidden, env.Code)
}

func TestComments(t *testing.T) {
	svc := new(mockMaintenanceService)
	svc.On("AddComment", mock.Anything, uint(5), uint(9), "On my way").
		Return(&models.Comment{BaseModel: models.BaseModel{ID: 11}, Text: "On my way", MaintenanceRequestID: 5, UserID: 9}, nil)
	svc.On("DeleteComment", mock.Anything, uint(5), uint(12), services.Actor{UserID: 9, Role: models.RoleMaintenanceStaff}).
		Return(services.ErrCommentNotFound)
	r := maintenanceRouter(svc, 9, models.RoleMaintenanceStaff)

	w, _ := doJSON(t, r, http.MethodPost, "/maintenance/5/comments", gin.H{"text": "  On my way "})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/maintenance/5/comments", gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := doJSON(t, r, http.MethodDelete, "/maintenance/5/comments/12", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, code.ErrCommentNotFound, env.Code)
	svc.AssertExpectations(t)
}
