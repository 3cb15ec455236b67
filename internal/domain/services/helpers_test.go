package services

import (
	"context"
	"testing"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey: "test-secret",
		MQTTQoS:      1,
	}
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

// mockNotificationService records notifications sent by other services
type mockNotificationService struct {
	mock.Mock
}

func (m *mockNotificationService) GetNotifications(ctx context.Context, userID uint, unreadOnly bool, page models.Pagination) ([]models.Notification, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, page)
	return args.Get(0).([]models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *mockNotificationService) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationService) CreateNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockNotificationService) NotifyUsers(ctx context.Context, userIDs []uint, title, message, notificationType string) error {
	return m.Called(ctx, userIDs, title, message, notificationType).Error(0)
}

func (m *mockNotificationService) MarkAsRead(ctx context.Context, id, userID uint) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockNotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationService) DeleteNotification(ctx context.Context, id, userID uint) error {
	return m.Called(ctx, id, userID).Error(0)
}
