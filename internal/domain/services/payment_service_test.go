package services

import (
	"context"
	"testing"
	"time"

	"strata-portal/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sumParts(parts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p)
	}
	return total
}

func TestApportionLevy_EvenSplit(t *testing.T) {
	parts, err := ApportionLevy(decimal.RequireFromString("3000.00"), []int{1, 1, 1})

	require.NoError(t, err)
	for _, p := range parts {
		assert.Equal(t, "1000.00", p.StringFixed(2))
	}
}

func TestApportionLevy_RemainderToLargestEntitlement(t *testing.T) {
	// 100.00 over 10/20/70 has no remainder; 100.01 leaves one cent for the 70
	parts, err := ApportionLevy(decimal.RequireFromString("100.01"), []int{10, 20, 70})

	require.NoError(t, err)
	assert.Equal(t, "10.00", parts[0].StringFixed(2))
	assert.Equal(t, "20.00", parts[1].StringFixed(2))
	assert.Equal(t, "70.01", parts[2].StringFixed(2))
}

func TestApportionLevy_TiesGoByPosition(t *testing.T) {
	parts, err := ApportionLevy(decimal.RequireFromString("10.00"), []int{1, 2, 2, 1})

	require.NoError(t, err)
	// floors: 1.66, 3.33, 3.33, 1.66 -> two cents left for the two largest
	assert.Equal(t, []string{"1.66", "3.34", "3.34", "1.66"}, []string{
		parts[0].StringFixed(2), parts[1].StringFixed(2), parts[2].StringFixed(2), parts[3].StringFixed(2),
	})
	assert.True(t, sumParts(parts).Equal(decimal.RequireFromString("10.00")))
}

func TestApportionLevy_AlwaysSumsToTotal(t *testing.T) {
	totals := []string{"0.01", "0.05", "999.99", "12345.67", "1000000.03"}
	entitlements := [][]int{{1}, {3, 7}, {5, 5, 5}, {13, 17, 19, 23, 29}, {1, 2, 3, 4, 5, 6, 7, 8, 9}}

	for _, total := range totals {
		for _, ents := range entitlements {
			want := decimal.RequireFromString(total)
			parts, err := ApportionLevy(want, ents)
			require.NoError(t, err)
			require.Len(t, parts, len(ents))
			assert.True(t, sumParts(parts).Equal(want), "total %s over %v", total, ents)
		}
	}
}

func TestApportionLevy_Rejects(t *testing.T) {
	_, err := ApportionLevy(decimal.NewFromInt(100), nil)
	assert.ErrorIs(t, err, ErrNoPropertiesToLevy)

	_, err = ApportionLevy(decimal.NewFromInt(100), []int{1, 0})
	assert.Error(t, err)

	_, err = ApportionLevy(decimal.Zero, []int{1})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNewLevyReference(t *testing.T) {
	due := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	a, b := NewLevyReference(due), NewLevyReference(due)

	assert.Regexp(t, `^LEVY-202403-[0-9A-F]{8}$`, a)
	assert.NotEqual(t, a, b)
}

var paymentColumns = []string{"id", "created_at", "updated_at", "property_id", "payer_id", "levy_type", "amount", "due_date", "status", "paid_at", "reference", "description"}

func TestPaymentService_CreateRejectsNonPositiveAmount(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewPaymentService(db, testConfig(), nil)

	err := svc.CreatePayment(context.Background(), &models.LevyPayment{PropertyID: 1, Amount: decimal.NewFromInt(-5)})

	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestPaymentService_CreateGeneratesReference(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewPaymentService(db, testConfig(), nil)

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "properties"`).WillReturnRows(countRows(1))
	dbMock.ExpectQuery(`INSERT INTO "levy_payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	payment := &models.LevyPayment{
		PropertyID: 1,
		LevyType:   models.LevyTypeAdminFund,
		Amount:     decimal.RequireFromString("420.456"),
		DueDate:    time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:     models.PaymentStatusPaid,
	}
	require.NoError(t, svc.CreatePayment(context.Background(), payment))

	assert.Equal(t, uint(3), payment.ID)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, "420.46", payment.Amount.StringFixed(2))
	assert.Contains(t, payment.Reference, "LEVY-202407-")
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestPaymentService_MarkPaidRefusesCancelled(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewPaymentService(db, testConfig(), nil)
	now := time.Now()

	dbMock.ExpectQuery(`SELECT \* FROM "levy_payments" WHERE "levy_payments"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(paymentColumns).
			AddRow(4, now, now, 1, nil, "special", "150.00", now, "cancelled", nil, "LEVY-1", ""))
	dbMock.ExpectQuery(`SELECT \* FROM "properties"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "unit_number", "building_id"}).AddRow(1, "1A", 1))

	_, err := svc.MarkPaid(context.Background(), 4)

	assert.ErrorIs(t, err, ErrPaymentNotPayable)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestPaymentService_RunLevyWithoutProperties(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewPaymentService(db, testConfig(), nil)

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "buildings"`).WillReturnRows(countRows(1))
	dbMock.ExpectQuery(`SELECT \* FROM "properties" WHERE building_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "unit_entitlement", "building_id"}))

	_, err := svc.RunLevy(context.Background(), LevyRunInput{
		BuildingID:  1,
		LevyType:    models.LevyTypeSinkingFund,
		TotalAmount: decimal.NewFromInt(1000),
		DueDate:     time.Now(),
	})

	assert.ErrorIs(t, err, ErrNoPropertiesToLevy)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestPaymentService_RunLevyCreatesShares(t *testing.T) {
	db, dbMock := setupMockDB(t)
	notifications := new(mockNotificationService)
	svc := NewPaymentService(db, testConfig(), notifications)

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "buildings"`).WillReturnRows(countRows(1))
	dbMock.ExpectQuery(`SELECT \* FROM "properties" WHERE building_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "unit_number", "unit_entitlement", "building_id"}).
			AddRow(1, "1", 30, 1).
			AddRow(2, "2", 70, 1))
	dbMock.ExpectQuery(`SELECT "id","property_id" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "property_id"}).AddRow(9, 2))
	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`INSERT INTO "levy_payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(11))
	dbMock.ExpectCommit()

	notifications.On("NotifyUsers", mock.Anything, []uint{9}, "Levy issued", mock.Anything, models.NotificationTypePayment).Return(nil)

	payments, err := svc.RunLevy(context.Background(), LevyRunInput{
		BuildingID:  1,
		LevyType:    models.LevyTypeAdminFund,
		TotalAmount: decimal.RequireFromString("1000.00"),
		DueDate:     time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
		Description: "Q3 admin fund",
	})

	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "300.00", payments[0].Amount.StringFixed(2))
	assert.Equal(t, "700.00", payments[1].Amount.StringFixed(2))
	assert.Nil(t, payments[0].PayerID)
	require.NotNil(t, payments[1].PayerID)
	assert.Equal(t, uint(9), *payments[1].PayerID)
	assert.NotEqual(t, payments[0].Reference, payments[1].Reference)
	assert.NoError(t, dbMock.ExpectationsWereMet())
	notifications.AssertExpectations(t)
}

func TestPaymentService_MarkOverdueNothingDue(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewPaymentService(db, testConfig(), nil)

	dbMock.ExpectQuery(`SELECT \* FROM "levy_payments" WHERE status = \$1 AND due_date < \$2`).
		WillReturnRows(sqlmock.NewRows(paymentColumns))

	n, err := svc.MarkOverdue(context.Background(), time.Now())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestPaymentService_UpdateLeavingPaidClearsPaidAt(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewPaymentService(db, testConfig(), nil)
	now := time.Now()
	paidRow := func(status string, paidAt interface{}) *sqlmock.Rows {
		return sqlmock.NewRows(paymentColumns).
			AddRow(4, now, now, 1, nil, "admin_fund", "150.00", now, status, paidAt, "LEVY-1", "")
	}
	propertyRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "unit_number", "building_id"}).AddRow(1, "1A", 1)
	}

	dbMock.ExpectQuery(`SELECT \* FROM "levy_payments" WHERE "levy_payments"."id" = \$1`).WillReturnRows(paidRow("paid", now))
	dbMock.ExpectQuery(`SELECT \* FROM "properties"`).WillReturnRows(propertyRows())
	dbMock.ExpectExec(`UPDATE "levy_payments" SET .*"paid_at"=\$\d`).
		WithArgs(nil, models.PaymentStatusPending, sqlmock.AnyArg(), 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectQuery(`SELECT \* FROM "levy_payments" WHERE "levy_payments"."id" = \$1`).WillReturnRows(paidRow("pending", nil))
	dbMock.ExpectQuery(`SELECT \* FROM "properties"`).WillReturnRows(propertyRows())

	updates := map[string]interface{}{"status": models.PaymentStatusPending}
	payment, err := svc.UpdatePayment(context.Background(), 4, updates)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Nil(t, payment.PaidAt)
	assert.Contains(t, updates, "paid_at")
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestPaymentService_MarkOverdueFlagsPendingBeforeToday(t *testing.T) {
	db, dbMock := setupMockDB(t)
	notifications := new(mockNotificationService)
	svc := NewPaymentService(db, testConfig(), notifications)

	now := time.Date(2024, 10, 2, 15, 30, 0, 0, time.UTC)
	cutoff := time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)

	dbMock.ExpectQuery(`SELECT \* FROM "levy_payments" WHERE status = \$1 AND due_date < \$2`).
		WithArgs(models.PaymentStatusPending, cutoff).
		WillReturnRows(sqlmock.NewRows(paymentColumns).
			AddRow(3, due, due, 1, 9, "admin_fund", "300.00", due, "pending", nil, "LEVY-A", "").
			AddRow(4, due, due, 2, nil, "admin_fund", "700.00", due, "pending", nil, "LEVY-B", ""))
	dbMock.ExpectExec(`UPDATE "levy_payments" SET "status"=\$1,"updated_at"=\$2 WHERE id IN \(\$3,\$4\) AND status = \$5`).
		WithArgs(models.PaymentStatusOverdue, sqlmock.AnyArg(), 3, 4, models.PaymentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 2))

	notifications.On("NotifyUsers", mock.Anything, []uint{9}, "Levy overdue", "Levy LEVY-A of $300.00 was due 2024-09-30", models.NotificationTypePayment).
		Return(nil)

	n, err := svc.MarkOverdue(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, dbMock.ExpectationsWereMet())
	notifications.AssertExpectations(t)
	notifications.AssertNumberOfCalls(t, "NotifyUsers", 1)
}
