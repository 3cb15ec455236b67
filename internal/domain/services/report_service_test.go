package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"strata-portal/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func levy(levyType models.LevyType, amount string, status models.PaymentStatus) models.LevyPayment {
	return models.LevyPayment{
		PropertyID: 1,
		Property:   &models.Property{UnitNumber: "4B"},
		LevyType:   levyType,
		Amount:     decimal.RequireFromString(amount),
		DueDate:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:     status,
		Reference:  "LEVY-202403-ABCD1234",
	}
}

func sampleLedger() []models.LevyPayment {
	return []models.LevyPayment{
		levy(models.LevyTypeAdminFund, "500.00", models.PaymentStatusPaid),
		levy(models.LevyTypeAdminFund, "500.00", models.PaymentStatusPending),
		levy(models.LevyTypeSinkingFund, "250.50", models.PaymentStatusOverdue),
		levy(models.LevyTypeSpecial, "999.00", models.PaymentStatusCancelled),
	}
}

func TestSummarizeLevies(t *testing.T) {
	summary := SummarizeLevies(sampleLedger())

	assert.Equal(t, "1250.50", summary.Levied.StringFixed(2))
	assert.Equal(t, "500.00", summary.Collected.StringFixed(2))
	assert.Equal(t, "750.50", summary.Outstanding.StringFixed(2))
	assert.Equal(t, "250.50", summary.Overdue.StringFixed(2))
	assert.Len(t, summary.Payments, 4)

	require.Len(t, summary.ByType, 2)
	assert.Equal(t, models.LevyTypeAdminFund, summary.ByType[0].LevyType)
	assert.Equal(t, 2, summary.ByType[0].Count)
	assert.Equal(t, "500.00", summary.ByType[0].Outstanding.StringFixed(2))
	assert.Equal(t, models.LevyTypeSinkingFund, summary.ByType[1].LevyType)
}

func TestReportService_InvalidPeriod(t *testing.T) {
	db, _ := setupMockDB(t)
	svc := NewReportService(db, testConfig())

	_, err := svc.BuildFinancialSummary(context.Background(), ReportPeriod{
		From: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func renderSample(t *testing.T, format string) ([]byte, string) {
	svc := NewReportService(nil, testConfig())
	summary := SummarizeLevies(sampleLedger())
	summary.BuildingName = "Harbour View"
	summary.From = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	summary.To = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	summary.GeneratedAt = time.Now()

	data, contentType, err := svc.Render(summary, format)
	require.NoError(t, err)
	return data, contentType
}

func TestReportService_RenderPDF(t *testing.T) {
	data, contentType := renderSample(t, ReportFormatPDF)

	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestReportService_RenderXLSX(t *testing.T) {
	data, contentType := renderSample(t, ReportFormatXLSX)
	assert.Contains(t, contentType, "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Ledger"}, f.GetSheetList())

	name, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Harbour View", name)

	rows, err := f.GetRows("Ledger")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	assert.Equal(t, "LEVY-202403-ABCD1234", rows[1][0])
	assert.Equal(t, "4B", rows[1][1])
}

func TestReportService_RenderUnknownFormat(t *testing.T) {
	svc := NewReportService(nil, testConfig())
	_, _, err := svc.Render(&FinancialSummary{}, "csv")
	assert.Error(t, err)
}
