package store

import (
	"context"
	"errors"

	"strata-portal/internal/domain/models"

	"gorm.io/gorm"
)

// GormStore keeps maintenance requests in the ORM database
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore creates the ORM-backed store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Name identifies the store in logs and health output
func (s *GormStore) Name() string { return "orm" }

// List returns one page of requests, newest first
func (s *GormStore) List(ctx context.Context, filter MaintenanceFilter, page models.Pagination) ([]models.MaintenanceRequest, int64, error) {
	var requests []models.MaintenanceRequest
	var total int64

	query := s.DB.WithContext(ctx).Model(&models.MaintenanceRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Get loads a request with its people, property and comments
func (s *GormStore) Get(ctx context.Context, id uint) (*models.MaintenanceRequest, error) {
	var req models.MaintenanceRequest
	err := s.DB.WithContext(ctx).
		Preload("Requester").
		Preload("Assignee").
		Preload("Property").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.User").
		First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Create inserts req and fills its id and timestamps
func (s *GormStore) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	return s.DB.WithContext(ctx).Omit("Requester", "Assignee", "Property", "Comments").Create(req).Error
}

// Update writes the given columns and returns the fresh row
func (s *GormStore) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.MaintenanceRequest, error) {
	result := s.DB.WithContext(ctx).Model(&models.MaintenanceRequest{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the request and its comments
func (s *GormStore) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("maintenance_request_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.MaintenanceRequest{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListComments returns a request's comments, oldest first
func (s *GormStore) ListComments(ctx context.Context, requestID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.DB.WithContext(ctx).
		Preload("User").
		Where("maintenance_request_id = ?", requestID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// GetComment loads one comment belonging to requestID
func (s *GormStore) GetComment(ctx context.Context, requestID, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.DB.WithContext(ctx).
		Where("id = ? AND maintenance_request_id = ?", commentID, requestID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// CreateComment inserts a comment
func (s *GormStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.DB.WithContext(ctx).Omit("User").Create(comment).Error
}

// DeleteComment removes a comment
func (s *GormStore) DeleteComment(ctx context.Context, commentID uint) error {
	result := s.DB.WithContext(ctx).Delete(&models.Comment{}, commentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
