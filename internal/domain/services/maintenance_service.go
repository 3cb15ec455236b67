package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/store"
	"strata-portal/internal/infrastructure/config"
	"strata-portal/pkg/logger"

	"gorm.io/gorm"
)

// Actor is the authenticated user performing an operation
type Actor struct {
	UserID uint
	Role   models.UserRole
}

// IsStaff reports whether the actor is an admin or manager
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleManager
}

// InterfaceMaintenanceService is the single maintenance request API
type InterfaceMaintenanceService interface {
	GetRequests(ctx context.Context, filter store.MaintenanceFilter, page models.Pagination) ([]models.MaintenanceRequest, int64, error)
	GetRequestByID(ctx context.Context, id uint) (*models.MaintenanceRequest, error)
	CreateRequest(ctx context.Context, req *models.MaintenanceRequest) error
	UpdateRequest(ctx context.Context, id uint, updates map[string]interface{}) (*models.MaintenanceRequest, error)
	UpdateStatus(ctx context.Context, id uint, status models.MaintenanceStatus) (*models.MaintenanceRequest, error)
	AssignRequest(ctx context.Context, id, assigneeID uint) (*models.MaintenanceRequest, error)
	DeleteRequest(ctx context.Context, id uint, actor Actor) error
	GetComments(ctx context.Context, requestID uint) ([]models.Comment, error)
	AddComment(ctx context.Context, requestID, userID uint, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, requestID, commentID uint, actor Actor) error
	StoreName() string
}

// MaintenanceService runs maintenance workflows on top of a MaintenanceStore.
// People and properties are always read through the ORM.
type MaintenanceService struct {
	DB            *gorm.DB
	Config        *config.Config
	Store         store.MaintenanceStore
	Notifications InterfaceNotificationService
}

// NewMaintenanceService creates a maintenance service
func NewMaintenanceService(db *gorm.DB, cfg *config.Config, st store.MaintenanceStore, notifications InterfaceNotificationService) InterfaceMaintenanceService {
	return &MaintenanceService{
		DB:            db,
		Config:        cfg,
		Store:         st,
		Notifications: notifications,
	}
}

// StoreName reports which store implementation is active
func (s *MaintenanceService) StoreName() string {
	return s.Store.Name()
}

// 1 GetRequests lists requests, newest first
func (s *MaintenanceService) GetRequests(ctx context.Context, filter store.MaintenanceFilter, page models.Pagination) ([]models.MaintenanceRequest, int64, error) {
	return s.Store.List(ctx, filter, page)
}

// 2 GetRequestByID loads one request with its comments
func (s *MaintenanceService) GetRequestByID(ctx context.Context, id uint) (*models.MaintenanceRequest, error) {
	req, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, ErrMaintenanceNotFound)
	}
	return req, nil
}

// 3 CreateRequest stores a new pending request and notifies managers
func (s *MaintenanceService) CreateRequest(ctx context.Context, req *models.MaintenanceRequest) error {
	req.Status = models.MaintenanceStatusPending
	req.CompletedAt = nil
	if req.Priority == "" {
		req.Priority = models.MaintenancePriorityMedium
	}
	if req.ImageURLs == nil {
		req.ImageURLs = []string{}
	}

	if err := s.checkUser(ctx, req.RequesterID); err != nil {
		return err
	}
	if req.PropertyID != nil {
		if err := s.checkProperty(ctx, *req.PropertyID); err != nil {
			return err
		}
	}

	if err := s.Store.Create(ctx, req); err != nil {
		return err
	}

	s.notifyRoles(ctx, req.RequesterID,
		"New maintenance request",
		fmt.Sprintf("%s (%s priority)", req.Title, req.Priority),
		models.RoleAdmin, models.RoleManager)
	return nil
}

// 4 UpdateRequest changes only the supplied fields
func (s *MaintenanceService) UpdateRequest(ctx context.Context, id uint, updates map[string]interface{}) (*models.MaintenanceRequest, error) {
	if _, err := s.GetRequestByID(ctx, id); err != nil {
		return nil, err
	}
	if propertyID, ok := updates["property_id"].(uint); ok {
		if err := s.checkProperty(ctx, propertyID); err != nil {
			return nil, err
		}
	}
	if len(updates) == 0 {
		return s.GetRequestByID(ctx, id)
	}

	req, err := s.Store.Update(ctx, id, updates)
	if err != nil {
		return nil, mapStoreError(err, ErrMaintenanceNotFound)
	}
	return req, nil
}

// 5 UpdateStatus moves a request along the status table. completed_at is
// set on entering completed and cleared on leaving it.
func (s *MaintenanceService) UpdateStatus(ctx context.Context, id uint, status models.MaintenanceStatus) (*models.MaintenanceRequest, error) {
	current, err := s.GetRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// a request never transitions to its own status
	if !current.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	fields := map[string]interface{}{"status": status}
	if status == models.MaintenanceStatusCompleted {
		fields["completed_at"] = time.Now().UTC()
	} else if current.CompletedAt != nil {
		fields["completed_at"] = nil
	}

	updated, err := s.Store.Update(ctx, id, fields)
	if err != nil {
		return nil, mapStoreError(err, ErrMaintenanceNotFound)
	}

	s.notify(ctx, updated.RequesterID,
		"Maintenance request updated",
		fmt.Sprintf("%q is now %s", updated.Title, updated.Status))
	return updated, nil
}

// 6 AssignRequest hands a request to a staff member or manager.
// A pending request moves to in_progress.
func (s *MaintenanceService) AssignRequest(ctx context.Context, id, assigneeID uint) (*models.MaintenanceRequest, error) {
	current, err := s.GetRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var assignee models.User
	if err := s.DB.WithContext(ctx).First(&assignee, assigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if assignee.Role != models.RoleMaintenanceStaff && assignee.Role != models.RoleManager {
		return nil, ErrInvalidAssignee
	}

	fields := map[string]interface{}{"assignee_id": assigneeID}
	if current.Status == models.MaintenanceStatusPending {
		fields["status"] = models.MaintenanceStatusInProgress
	}

	updated, err := s.Store.Update(ctx, id, fields)
	if err != nil {
		return nil, mapStoreError(err, ErrMaintenanceNotFound)
	}

	s.notify(ctx, assigneeID,
		"Maintenance request assigned",
		fmt.Sprintf("You have been assigned %q (%s priority)", updated.Title, updated.Priority))
	return updated, nil
}

// 7 DeleteRequest removes a request and its comments. Staff may delete any
// request; the requester only while it is pending.
func (s *MaintenanceService) DeleteRequest(ctx context.Context, id uint, actor Actor) error {
	req, err := s.GetRequestByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsStaff() && (req.RequesterID != actor.UserID || req.Status != models.MaintenanceStatusPending) {
		return ErrForbidden
	}

	return mapStoreError(s.Store.Delete(ctx, id), ErrMaintenanceNotFound)
}

// 8 GetComments lists a request's comments, oldest first
func (s *MaintenanceService) GetComments(ctx context.Context, requestID uint) ([]models.Comment, error) {
	if _, err := s.GetRequestByID(ctx, requestID); err != nil {
		return nil, err
	}
	return s.Store.ListComments(ctx, requestID)
}

// 9 AddComment posts a comment and tells the requester when someone else wrote it
func (s *MaintenanceService) AddComment(ctx context.Context, requestID, userID uint, text string) (*models.Comment, error) {
	req, err := s.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:                 text,
		MaintenanceRequestID: requestID,
		UserID:               userID,
	}
	if err := s.Store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if userID != req.RequesterID {
		s.notify(ctx, req.RequesterID, "New comment on your request", fmt.Sprintf("%q: %s", req.Title, text))
	}
	return comment, nil
}

// 10 DeleteComment removes a comment; only its author or an admin may
func (s *MaintenanceService) DeleteComment(ctx context.Context, requestID, commentID uint, actor Actor) error {
	comment, err := s.Store.GetComment(ctx, requestID, commentID)
	if err != nil {
		return mapStoreError(err, ErrCommentNotFound)
	}
	if comment.UserID != actor.UserID && actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return mapStoreError(s.Store.DeleteComment(ctx, commentID), ErrCommentNotFound)
}

func (s *MaintenanceService) checkUser(ctx context.Context, id uint) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MaintenanceService) checkProperty(ctx context.Context, id uint) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// notify sends a notification; failures are logged and never fail the caller
func (s *MaintenanceService) notify(ctx context.Context, userID uint, title, message string) {
	if s.Notifications == nil {
		return
	}
	if err := s.Notifications.NotifyUsers(ctx, []uint{userID}, title, message, models.NotificationTypeMaintenance); err != nil {
		logger.Warning("maintenance notification to user %d failed: %v", userID, err)
	}
}

// notifyRoles notifies every active user holding roles, except skip
func (s *MaintenanceService) notifyRoles(ctx context.Context, skip uint, title, message string, roles ...models.UserRole) {
	if s.Notifications == nil {
		return
	}

	var ids []uint
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("role IN ? AND status = ? AND id <> ?", roles, "active", skip).
		Pluck("id", &ids).Error
	if err != nil {
		logger.Warning("lookup of users to notify failed: %v", err)
		return
	}
	if err := s.Notifications.NotifyUsers(ctx, ids, title, message, models.NotificationTypeMaintenance); err != nil {
		logger.Warning("maintenance notification failed: %v", err)
	}
}

func mapStoreError(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}
