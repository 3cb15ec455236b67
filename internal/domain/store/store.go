// Package store holds the maintenance request persistence layer. The ORM and
// the REST backend are two implementations of MaintenanceStore.
package store

import (
	"context"
	"errors"

	"strata-portal/internal/domain/models"
)

// ErrNotFound is returned when a request or comment does not exist
var ErrNotFound = errors.New("record not found")

// MaintenanceFilter narrows a request list
type MaintenanceFilter struct {
	Status      models.MaintenanceStatus
	Priority    models.MaintenancePriority
	RequesterID *uint
	AssigneeID  *uint
	PropertyID  *uint
}

// MaintenanceStore persists maintenance requests and their comments.
// List is ordered created_at DESC, comments created_at ASC.
type MaintenanceStore interface {
	Name() string
	List(ctx context.Context, filter MaintenanceFilter, page models.Pagination) ([]models.MaintenanceRequest, int64, error)
	Get(ctx context.Context, id uint) (*models.MaintenanceRequest, error)
	Create(ctx context.Context, req *models.MaintenanceRequest) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.MaintenanceRequest, error)
	Delete(ctx context.Context, id uint) error

	ListComments(ctx context.Context, requestID uint) ([]models.Comment, error)
	GetComment(ctx context.Context, requestID, commentID uint) (*models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, commentID uint) error
}
