package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaintenanceStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to MaintenanceStatus
		allowed  bool
	}{
		{MaintenanceStatusPending, MaintenanceStatusInProgress, true},
		{MaintenanceStatusPending, MaintenanceStatusCompleted, true},
		{MaintenanceStatusPending, MaintenanceStatusCancelled, true},
		{MaintenanceStatusInProgress, MaintenanceStatusPending, true},
		{MaintenanceStatusCompleted, MaintenanceStatusInProgress, true},
		{MaintenanceStatusCompleted, MaintenanceStatusCancelled, false},
		{MaintenanceStatusCancelled, MaintenanceStatusPending, true},
		{MaintenanceStatusCancelled, MaintenanceStatusCompleted, false},
		{MaintenanceStatusPending, MaintenanceStatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.False(t, MaintenanceStatus("archived").Valid())
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, RoleMaintenanceStaff.Valid())
	assert.False(t, UserRole("owner").Valid())
	assert.True(t, MaintenancePriorityUrgent.Valid())
	assert.False(t, MaintenancePriority("asap").Valid())
	assert.True(t, LevyTypeSinkingFund.Valid())
	assert.True(t, PaymentStatusOverdue.Valid())
	assert.True(t, AnnouncementTypeMeeting.Valid())
	assert.False(t, AnnouncementType("party").Valid())
}

func TestAnnouncementActive(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Announcement{}).Active(now))
	assert.True(t, (&Announcement{ExpiresAt: &future}).Active(now))
	assert.False(t, (&Announcement{ExpiresAt: &past}).Active(now))
}

func TestUserPassword(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	assert.NoError(t, err)

	u := &User{Password: hashed, Role: RoleManager}
	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.True(t, u.CanManage())
	assert.False(t, (&User{Role: RoleResident}).CanManage())
}

func TestPagination(t *testing.T) {
	p := NewPagination(0, 500)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 20)
	assert.Equal(t, 40, p.Offset())

	res := NewPageResult([]int{1}, 41, 3, 20)
	assert.Equal(t, int64(3), res.TotalPages)
}
