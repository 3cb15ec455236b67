package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory MaintenanceStore
type memStore struct {
	mu       sync.Mutex
	nextID   uint
	requests map[uint]models.MaintenanceRequest
	comments map[uint]models.Comment
}

func newMemStore() *memStore {
	return &memStore{
		requests: map[uint]models.MaintenanceRequest{},
		comments: map[uint]models.Comment{},
	}
}

func (m *memStore) Name() string { return "memory" }

func (m *memStore) List(_ context.Context, _ store.MaintenanceFilter, _ models.Pagination) ([]models.MaintenanceRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.MaintenanceRequest, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (m *memStore) Get(_ context.Context, id uint) (*models.MaintenanceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) Create(_ context.Context, req *models.MaintenanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	req.ID = m.nextID
	req.CreatedAt = time.Now()
	m.requests[req.ID] = *req
	return nil
}

func (m *memStore) Update(_ context.Context, id uint, fields map[string]interface{}) (*models.MaintenanceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			r.Status = v.(models.MaintenanceStatus)
		case "title":
			r.Title = v.(string)
		case "assignee_id":
			id := v.(uint)
			r.AssigneeID = &id
		case "completed_at":
			if v == nil {
				r.CompletedAt = nil
			} else {
				t := v.(time.Time)
				r.CompletedAt = &t
			}
		}
	}
	m.requests[id] = r
	return &r, nil
}

func (m *memStore) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.requests, id)
	for cid, c := range m.comments {
		if c.MaintenanceRequestID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *memStore) ListComments(_ context.Context, requestID uint) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, c := range m.comments {
		if c.MaintenanceRequestID == requestID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) GetComment(_ context.Context, requestID, commentID uint) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[commentID]
	if !ok || c.MaintenanceRequestID != requestID {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) CreateComment(_ context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	comment.ID = m.nextID
	m.comments[comment.ID] = *comment
	return nil
}

func (m *memStore) DeleteComment(_ context.Context, commentID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[commentID]; !ok {
		return store.ErrNotFound
	}
	delete(m.comments, commentID)
	return nil
}

func seedRequest(st *memStore, status models.MaintenanceStatus, requesterID uint) uint {
	req := &models.MaintenanceRequest{
		Title:       "Leaking tap",
		Description: "Kitchen tap drips",
		Status:      status,
		Priority:    models.MaintenancePriorityMedium,
		RequesterID: requesterID,
	}
	if status == models.MaintenanceStatusCompleted {
		done := time.Now()
		req.CompletedAt = &done
	}
	_ = st.Create(context.Background(), req)
	return req.ID
}

func TestMaintenanceService_CreateAppliesDefaultsAndNotifiesManagers(t *testing.T) {
	db, dbMock := setupMockDB(t)
	st := newMemStore()
	notifications := new(mockNotificationService)
	svc := NewMaintenanceService(db, testConfig(), st, notifications)

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).WillReturnRows(countRows(1))
	dbMock.ExpectQuery(`SELECT "id" FROM "users" WHERE role IN \(\$1,\$2\) AND status = \$3 AND id <> \$4`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	notifications.On("NotifyUsers", mock.Anything, []uint{1, 2}, "New maintenance request", mock.Anything, models.NotificationTypeMaintenance).Return(nil)

	req := &models.MaintenanceRequest{
		Title:       "Broken intercom",
		Description: "Lobby intercom dead",
		Status:      models.MaintenanceStatusCompleted,
		RequesterID: 7,
	}
	require.NoError(t, svc.CreateRequest(context.Background(), req))

	assert.Equal(t, models.MaintenanceStatusPending, req.Status)
	assert.Equal(t, models.MaintenancePriorityMedium, req.Priority)
	assert.Nil(t, req.CompletedAt)
	assert.NotNil(t, req.ImageURLs)

	got, err := svc.GetRequestByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "Broken intercom", got.Title)
	assert.NoError(t, dbMock.ExpectationsWereMet())
	notifications.AssertExpectations(t)
}

func TestMaintenanceService_CreateUnknownRequester(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewMaintenanceService(db, testConfig(), newMemStore(), nil)

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).WillReturnRows(countRows(0))

	err := svc.CreateRequest(context.Background(), &models.MaintenanceRequest{Title: "x", Description: "y", RequesterID: 99})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMaintenanceService_UpdateStatusTracksCompletedAt(t *testing.T) {
	db, _ := setupMockDB(t)
	st := newMemStore()
	notifications := new(mockNotificationService)
	notifications.On("NotifyUsers", mock.Anything, []uint{7}, "Maintenance request updated", mock.Anything, models.NotificationTypeMaintenance).Return(nil)
	svc := NewMaintenanceService(db, testConfig(), st, notifications)
	id := seedRequest(st, models.MaintenanceStatusInProgress, 7)

	done, err := svc.UpdateStatus(context.Background(), id, models.MaintenanceStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	reopened, err := svc.UpdateStatus(context.Background(), id, models.MaintenanceStatusInProgress)
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)
	notifications.AssertNumberOfCalls(t, "NotifyUsers", 2)
}

func TestMaintenanceService_UpdateStatusRejectsInvalidTransition(t *testing.T) {
	db, _ := setupMockDB(t)
	st := newMemStore()
	svc := NewMaintenanceService(db, testConfig(), st, nil)
	id := seedRequest(st, models.MaintenanceStatusCompleted, 7)

	_, err := svc.UpdateStatus(context.Background(), id, models.MaintenanceStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(context.Background(), 404, models.MaintenanceStatusCancelled)
	assert.ErrorIs(t, err, ErrMaintenanceNotFound)
}

func TestMaintenanceService_UpdateStatusRejectsSameStatus(t *testing.T) {
	db, _ := setupMockDB(t)
	st := newMemStore()
	notifications := new(mockNotificationService)
	svc := NewMaintenanceService(db, testConfig(), st, notifications)
	id := seedRequest(st, models.MaintenanceStatusInProgress, 7)

	_, err := svc.UpdateStatus(context.Background(), id, models.MaintenanceStatusInProgress)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	notifications.AssertNotCalled(t, "NotifyUsers", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMaintenanceService_AssignMovesPendingToInProgress(t *testing.T) {
	db, dbMock := setupMockDB(t)
	st := newMemStore()
	notifications := new(mockNotificationService)
	notifications.On("NotifyUsers", mock.Anything, []uint{3}, "Maintenance request assigned", mock.Anything, models.NotificationTypeMaintenance).Return(nil)
	svc := NewMaintenanceService(db, testConfig(), st, notifications)
	id := seedRequest(st, models.MaintenanceStatusPending, 7)

	dbMock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role"}).AddRow(3, "Sam", "maintenance_staff"))

	updated, err := svc.AssignRequest(context.Background(), id, 3)

	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceStatusInProgress, updated.Status)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, uint(3), *updated.AssigneeID)
	notifications.AssertExpectations(t)
}

func TestMaintenanceService_AssignRejectsResident(t *testing.T) {
	db, dbMock := setupMockDB(t)
	st := newMemStore()
	svc := NewMaintenanceService(db, testConfig(), st, nil)
	id := seedRequest(st, models.MaintenanceStatusPending, 7)

	dbMock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role"}).AddRow(8, "Rita", "resident"))

	_, err := svc.AssignRequest(context.Background(), id, 8)
	assert.ErrorIs(t, err, ErrInvalidAssignee)
}

func TestMaintenanceService_DeletePermissions(t *testing.T) {
	db, _ := setupMockDB(t)
	st := newMemStore()
	svc := NewMaintenanceService(db, testConfig(), st, nil)
	ctx := context.Background()

	pending := seedRequest(st, models.MaintenanceStatusPending, 7)
	started := seedRequest(st, models.MaintenanceStatusInProgress, 7)
	resident := Actor{UserID: 7, Role: models.RoleResident}

	assert.ErrorIs(t, svc.DeleteRequest(ctx, pending, Actor{UserID: 8, Role: models.RoleResident}), ErrForbidden)
	assert.ErrorIs(t, svc.DeleteRequest(ctx, started, resident), ErrForbidden)
	require.NoError(t, svc.DeleteRequest(ctx, pending, resident))
	require.NoError(t, svc.DeleteRequest(ctx, started, Actor{UserID: 1, Role: models.RoleManager}))

	_, err := svc.GetRequestByID(ctx, started)
	assert.ErrorIs(t, err, ErrMaintenanceNotFound)
}

func TestMaintenanceService_Comments(t *testing.T) {
	db, _ := setupMockDB(t)
	st := newMemStore()
	notifications := new(mockNotificationService)
	notifications.On("NotifyUsers", mock.Anything, []uint{7}, "New comment on your request", mock.Anything, models.NotificationTypeMaintenance).Return(nil)
	svc := NewMaintenanceService(db, testConfig(), st, notifications)
	ctx := context.Background()
	id := seedRequest(st, models.MaintenanceStatusPending, 7)

	own, err := svc.AddComment(ctx, id, 7, "Still dripping")
	require.NoError(t, err)
	staff, err := svc.AddComment(ctx, id, 3, "Plumber booked for Monday")
	require.NoError(t, err)
	notifications.AssertNumberOfCalls(t, "NotifyUsers", 1)

	comments, err := svc.GetComments(ctx, id)
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	assert.ErrorIs(t, svc.DeleteComment(ctx, id, staff.ID, Actor{UserID: 7, Role: models.RoleResident}), ErrForbidden)
	require.NoError(t, svc.DeleteComment(ctx, id, staff.ID, Actor{UserID: 1, Role: models.RoleAdmin}))
	require.NoError(t, svc.DeleteComment(ctx, id, own.ID, Actor{UserID: 7, Role: models.RoleResident}))
	assert.ErrorIs(t, svc.DeleteComment(ctx, id, own.ID, Actor{UserID: 7, Role: models.RoleResident}), ErrCommentNotFound)

	_, err = svc.AddComment(ctx, 999, 7, "hello?")
	assert.ErrorIs(t, err, ErrMaintenanceNotFound)
}
