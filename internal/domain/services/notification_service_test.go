package services

import (
	"context"
	"sync"
	"testing"

	"strata-portal/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPusher struct {
	mu     sync.Mutex
	events map[uint][]string
}

func (p *recordingPusher) Push(userID uint, eventType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[uint][]string{}
	}
	p.events[userID] = append(p.events[userID], eventType)
}

func TestNotificationService_CreatePushesToUser(t *testing.T) {
	db, dbMock := setupMockDB(t)
	pusher := &recordingPusher{}
	svc := NewNotificationService(db, testConfig(), pusher)

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE id = \$1`).WithArgs(5).WillReturnRows(countRows(1))
	dbMock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	n := &models.Notification{UserID: 5, Title: "Water shut-off", Message: "Tuesday 9am-noon"}
	require.NoError(t, svc.CreateNotification(context.Background(), n))

	assert.Equal(t, uint(21), n.ID)
	assert.Equal(t, models.NotificationTypeGeneral, n.Type)
	assert.Equal(t, []string{"notification"}, pusher.events[5])
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestNotificationService_CreateUnknownUser(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewNotificationService(db, testConfig(), nil)

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).WillReturnRows(countRows(0))

	err := svc.CreateNotification(context.Background(), &models.Notification{UserID: 404, Title: "x", Message: "y"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNotificationService_NotifyUsersBatches(t *testing.T) {
	db, dbMock := setupMockDB(t)
	pusher := &recordingPusher{}
	svc := NewNotificationService(db, testConfig(), pusher)

	dbMock.ExpectQuery(`INSERT INTO "notifications" .* VALUES \(.+\),\(.+\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	require.NoError(t, svc.NotifyUsers(context.Background(), []uint{3, 4}, "Levy issued", "Q3", models.NotificationTypePayment))
	assert.Len(t, pusher.events[3], 1)
	assert.Len(t, pusher.events[4], 1)

	require.NoError(t, svc.NotifyUsers(context.Background(), nil, "ignored", "", models.NotificationTypeGeneral))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestNotificationService_ListUnread(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewNotificationService(db, testConfig(), nil)

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE user_id = \$1 AND is_read = \$2`).
		WithArgs(5, false).
		WillReturnRows(countRows(1))
	dbMock.ExpectQuery(`SELECT \* FROM "notifications" WHERE user_id = \$1 AND is_read = \$2 ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "message", "type", "is_read", "user_id"}).
			AddRow(9, "Levy overdue", "LEVY-1", "payment", false, 5))

	list, total, err := svc.GetNotifications(context.Background(), 5, true, models.NewPagination(1, 20))

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewNotificationService(db, testConfig(), nil)

	dbMock.ExpectExec(`UPDATE "notifications" SET "is_read"=\$1,"updated_at"=\$2 WHERE id = \$3 AND user_id = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, svc.MarkAsRead(context.Background(), 9, 5))

	dbMock.ExpectExec(`UPDATE "notifications"`).WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectQuery(`SELECT \* FROM "notifications" WHERE id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	assert.ErrorIs(t, svc.MarkAsRead(context.Background(), 10, 5), ErrNotificationNotFound)

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestNotificationService_MarkAllAndDelete(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewNotificationService(db, testConfig(), nil)

	dbMock.ExpectExec(`UPDATE "notifications" SET .* WHERE user_id = \$\d+ AND is_read = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	n, err := svc.MarkAllAsRead(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	dbMock.ExpectExec(`DELETE FROM "notifications" WHERE id = \$1 AND user_id = \$2`).
		WithArgs(9, 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, svc.DeleteNotification(context.Background(), 9, 5), ErrNotificationNotFound)

	assert.NoError(t, dbMock.ExpectationsWereMet())
}
