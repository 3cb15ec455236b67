package store

import (
	"context"
	"fmt"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/backend"
)

const (
	requestsTable = "maintenance_requests"
	commentsTable = "comments"

	userColumns = "id,name,email,phone,role,committee_position,status,property_id"

	// requestSelect embeds the requester and assignee rows
	requestSelect = "*,requester:users!requester_id(" + userColumns + "),assignee:users!assignee_id(" + userColumns + ")"
	commentSelect = "*,user:users!user_id(" + userColumns + ")"
)

// BackendStore keeps maintenance requests behind the REST backend
type BackendStore struct {
	Client *backend.Client
}

// NewBackendStore creates the REST-backed store
func NewBackendStore(client *backend.Client) *BackendStore {
	return &BackendStore{Client: client}
}

// Name identifies the store in logs and health output
func (s *BackendStore) Name() string { return "backend" }

// List returns one page of requests, newest first
func (s *BackendStore) List(ctx context.Context, filter MaintenanceFilter, page models.Pagination) ([]models.MaintenanceRequest, int64, error) {
	filters := map[string]string{}
	if filter.Status != "" {
		filters["status"] = backend.Eq(filter.Status)
	}
	if filter.Priority != "" {
		filters["priority"] = backend.Eq(filter.Priority)
	}
	if filter.RequesterID != nil {
		filters["requester_id"] = backend.Eq(*filter.RequesterID)
	}
	if filter.AssigneeID != nil {
		filters["assignee_id"] = backend.Eq(*filter.AssigneeID)
	}
	if filter.PropertyID != nil {
		filters["property_id"] = backend.Eq(*filter.PropertyID)
	}

	var requests []models.MaintenanceRequest
	total, err := s.Client.Select(ctx, requestsTable, backend.Query{
		Filters: filters,
		Order:   "created_at.desc",
		Limit:   page.PageSize,
		Offset:  page.Offset(),
		Count:   true,
	}, &requests)
	if err != nil {
		return nil, 0, err
	}
	if total < 0 {
		total = int64(len(requests))
	}
	return requests, total, nil
}

// Get loads a request with its requester, assignee and comments
func (s *BackendStore) Get(ctx context.Context, id uint) (*models.MaintenanceRequest, error) {
	var rows []models.MaintenanceRequest
	_, err := s.Client.Select(ctx, requestsTable, backend.Query{
		Select:  requestSelect,
		Filters: map[string]string{"id": backend.Eq(id)},
		Limit:   1,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	req := rows[0]
	if req.Comments, err = s.ListComments(ctx, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts req and copies back the stored row
func (s *BackendStore) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	body := map[string]interface{}{
		"title":        req.Title,
		"description":  req.Description,
		"status":       req.Status,
		"priority":     req.Priority,
		"category":     req.Category,
		"requester_id": req.RequesterID,
		"assignee_id":  req.AssigneeID,
		"property_id":  req.PropertyID,
		"completed_at": req.CompletedAt,
		"image_urls":   imageURLs(req),
	}

	var rows []models.MaintenanceRequest
	if err := s.Client.Insert(ctx, requestsTable, body, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("backend returned no row for new request")
	}
	*req = rows[0]
	return nil
}

// Update writes the given columns and returns the fresh row
func (s *BackendStore) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.MaintenanceRequest, error) {
	body := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["updated_at"] = time.Now().UTC()

	var rows []models.MaintenanceRequest
	if err := s.Client.Update(ctx, requestsTable, map[string]string{"id": backend.Eq(id)}, body, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the request and its comments
func (s *BackendStore) Delete(ctx context.Context, id uint) error {
	if err := s.Client.Delete(ctx, commentsTable, map[string]string{"maintenance_request_id": backend.Eq(id)}, nil); err != nil {
		return err
	}

	var rows []models.MaintenanceRequest
	if err := s.Client.Delete(ctx, requestsTable, map[string]string{"id": backend.Eq(id)}, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// ListComments returns a request's comments, oldest first
func (s *BackendStore) ListComments(ctx context.Context, requestID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	_, err := s.Client.Select(ctx, commentsTable, backend.Query{
		Select:  commentSelect,
		Filters: map[string]string{"maintenance_request_id": backend.Eq(requestID)},
		Order:   "created_at.asc",
	}, &comments)
	return comments, err
}

// GetComment loads one comment belonging to requestID
func (s *BackendStore) GetComment(ctx context.Context, requestID, commentID uint) (*models.Comment, error) {
	var rows []models.Comment
	_, err := s.Client.Select(ctx, commentsTable, backend.Query{
		Filters: map[string]string{
			"id":                     backend.Eq(commentID),
			"maintenance_request_id": backend.Eq(requestID),
		},
		Limit: 1,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// CreateComment inserts a comment
func (s *BackendStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	body := map[string]interface{}{
		"text":                   comment.Text,
		"maintenance_request_id": comment.MaintenanceRequestID,
		"user_id":                comment.UserID,
	}

	var rows []models.Comment
	if err := s.Client.Insert(ctx, commentsTable, body, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("backend returned no row for new comment")
	}
	*comment = rows[0]
	return nil
}

// DeleteComment removes a comment
func (s *BackendStore) DeleteComment(ctx context.Context, commentID uint) error {
	var rows []models.Comment
	if err := s.Client.Delete(ctx, commentsTable, map[string]string{"id": backend.Eq(commentID)}, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func imageURLs(req *models.MaintenanceRequest) []string {
	if req.ImageURLs == nil {
		return []string{}
	}
	return req.ImageURLs
}
