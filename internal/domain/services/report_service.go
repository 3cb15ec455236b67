package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Report formats
const (
	ReportFormatPDF  = "pdf"
	ReportFormatXLSX = "xlsx"
)

// ReportPeriod selects levies by due date, From and To inclusive
type ReportPeriod struct {
	From       time.Time
	To         time.Time
	BuildingID *uint
}

// LevyTypeTotal is one row of the per-fund breakdown
type LevyTypeTotal struct {
	LevyType    models.LevyType `json:"levy_type"`
	Count       int             `json:"count"`
	Levied      decimal.Decimal `json:"levied"`
	Collected   decimal.Decimal `json:"collected"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// FinancialSummary is the content of a financial report
type FinancialSummary struct {
	From         time.Time            `json:"from"`
	To           time.Time            `json:"to"`
	BuildingName string               `json:"building_name"`
	Levied       decimal.Decimal      `json:"levied"`
	Collected    decimal.Decimal      `json:"collected"`
	Outstanding  decimal.Decimal      `json:"outstanding"`
	Overdue      decimal.Decimal      `json:"overdue"`
	ByType       []LevyTypeTotal      `json:"by_type"`
	Payments     []models.LevyPayment `json:"payments"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// InterfaceReportService builds downloadable financial reports
type InterfaceReportService interface {
	BuildFinancialSummary(ctx context.Context, period ReportPeriod) (*FinancialSummary, error)
	Render(summary *FinancialSummary, format string) ([]byte, string, error)
}

// ReportService reads the levy ledger and renders it as PDF or XLSX
type ReportService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewReportService creates a report service
func NewReportService(db *gorm.DB, cfg *config.Config) InterfaceReportService {
	return &ReportService{
		DB:     db,
		Config: cfg,
	}
}

// 1 BuildFinancialSummary totals the levies due within the period
func (s *ReportService) BuildFinancialSummary(ctx context.Context, period ReportPeriod) (*FinancialSummary, error) {
	if period.To.Before(period.From) {
		return nil, ErrInvalidPeriod
	}
	db := s.DB.WithContext(ctx)

	buildingName := "All buildings"
	query := db.Preload("Property").
		Where("due_date >= ? AND due_date < ?", period.From, period.To.AddDate(0, 0, 1))
	if period.BuildingID != nil {
		var building models.Building
		if err := db.First(&building, *period.BuildingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBuildingNotFound
			}
			return nil, err
		}
		buildingName = building.Name
		query = query.Where("property_id IN (?)",
			db.Model(&models.Property{}).Select("id").Where("building_id = ?", *period.BuildingID))
	}

	var payments []models.LevyPayment
	if err := query.Order("due_date ASC, id ASC").Find(&payments).Error; err != nil {
		return nil, err
	}

	summary := SummarizeLevies(payments)
	summary.From = period.From
	summary.To = period.To
	summary.BuildingName = buildingName
	summary.GeneratedAt = time.Now()
	return summary, nil
}

// SummarizeLevies computes report totals. Cancelled levies are listed but not counted.
func SummarizeLevies(payments []models.LevyPayment) *FinancialSummary {
	summary := &FinancialSummary{Payments: payments}
	byType := map[models.LevyType]*LevyTypeTotal{}
	order := []models.LevyType{models.LevyTypeAdminFund, models.LevyTypeSinkingFund, models.LevyTypeSpecial}

	for _, p := range payments {
		if p.Status == models.PaymentStatusCancelled {
			continue
		}
		row, ok := byType[p.LevyType]
		if !ok {
			row = &LevyTypeTotal{LevyType: p.LevyType}
			byType[p.LevyType] = row
		}

		row.Count++
		row.Levied = row.Levied.Add(p.Amount)
		summary.Levied = summary.Levied.Add(p.Amount)

		switch p.Status {
		case models.PaymentStatusPaid:
			row.Collected = row.Collected.Add(p.Amount)
			summary.Collected = summary.Collected.Add(p.Amount)
		case models.PaymentStatusOverdue:
			summary.Overdue = summary.Overdue.Add(p.Amount)
			fallthrough
		default:
			row.Outstanding = row.Outstanding.Add(p.Amount)
			summary.Outstanding = summary.Outstanding.Add(p.Amount)
		}
	}

	for _, t := range order {
		if row, ok := byType[t]; ok {
			summary.ByType = append(summary.ByType, *row)
		}
	}
	return summary
}

// 2 Render produces the document bytes and its content type
func (s *ReportService) Render(summary *FinancialSummary, format string) ([]byte, string, error) {
	switch format {
	case "", ReportFormatPDF:
		data, err := renderPDF(summary)
		return data, "application/pdf", err
	case ReportFormatXLSX:
		data, err := renderXLSX(summary)
		return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		return nil, "", fmt.Errorf("unsupported report format %q", format)
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func unitLabel(p models.LevyPayment) string {
	if p.Property != nil {
		return p.Property.UnitNumber
	}
	return fmt.Sprintf("#%d", p.PropertyID)
}

func renderPDF(summary *FinancialSummary) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Financial report", false)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Strata financial report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, summary.BuildingName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Period %s to %s", summary.From.Format("2006-01-02"), summary.To.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated "+summary.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Totals", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range [][2]string{
		{"Levied", money(summary.Levied)},
		{"Collected", money(summary.Collected)},
		{"Outstanding", money(summary.Outstanding)},
		{"Overdue", money(summary.Overdue)},
	} {
		pdf.CellFormat(50, 6, line[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, line[1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "By levy type", "", 1, "L", false, 0, "")
	pdfTable(pdf,
		[]string{"Levy type", "Count", "Levied", "Collected", "Outstanding"},
		[]float64{50, 20, 35, 35, 35},
		func(row func(...string)) {
			for _, t := range summary.ByType {
				row(string(t.LevyType), fmt.Sprint(t.Count), money(t.Levied), money(t.Collected), money(t.Outstanding))
			}
		})
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Ledger", "", 1, "L", false, 0, "")
	pdfTable(pdf,
		[]string{"Reference", "Unit", "Type", "Due", "Amount", "Status"},
		[]float64{45, 20, 30, 25, 30, 25},
		func(row func(...string)) {
			for _, p := range summary.Payments {
				row(p.Reference, unitLabel(p), string(p.LevyType), p.DueDate.Format("2006-01-02"), money(p.Amount), string(p.Status))
			}
		})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfTable(pdf *fpdf.Fpdf, headers []string, widths []float64, rows func(row func(...string))) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 243, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	rows(func(cells ...string) {
		for i, c := range cells {
			align := "L"
			if i > 0 && c != "" && c[0] == '$' {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	})
}

func renderXLSX(summary *FinancialSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet, ledgerSheet = "Summary", "Ledger"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ledgerSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyFormat := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	summaryRows := [][]interface{}{
		{"Strata financial report"},
		{"Building", summary.BuildingName},
		{"From", summary.From.Format("2006-01-02")},
		{"To", summary.To.Format("2006-01-02")},
		{},
		{"Levied", summary.Levied.InexactFloat64()},
		{"Collected", summary.Collected.InexactFloat64()},
		{"Outstanding", summary.Outstanding.InexactFloat64()},
		{"Overdue", summary.Overdue.InexactFloat64()},
		{},
		{"Levy type", "Count", "Levied", "Collected", "Outstanding"},
	}
	for _, t := range summary.ByType {
		summaryRows = append(summaryRows, []interface{}{
			string(t.LevyType), t.Count, t.Levied.InexactFloat64(), t.Collected.InexactFloat64(), t.Outstanding.InexactFloat64(),
		})
	}
	if err := writeRows(f, summarySheet, summaryRows); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A11", "E11", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "B6", "B9", moneyStyle); err != nil {
		return nil, err
	}
	if len(summary.ByType) > 0 {
		last := fmt.Sprintf("E%d", 11+len(summary.ByType))
		if err := f.SetCellStyle(summarySheet, "C12", last, moneyStyle); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "E", 18); err != nil {
		return nil, err
	}

	ledgerRows := [][]interface{}{{"Reference", "Unit", "Levy type", "Due date", "Amount", "Status", "Paid at", "Description"}}
	for _, p := range summary.Payments {
		paidAt := ""
		if p.PaidAt != nil {
			paidAt = p.PaidAt.Format("2006-01-02 15:04:05")
		}
		ledgerRows = append(ledgerRows, []interface{}{
			p.Reference, unitLabel(p), string(p.LevyType), p.DueDate.Format("2006-01-02"),
			p.Amount.InexactFloat64(), string(p.Status), paidAt, p.Description,
		})
	}
	if err := writeRows(f, ledgerSheet, ledgerRows); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ledgerSheet, "A1", "H1", headerStyle); err != nil {
		return nil, err
	}
	if len(summary.Payments) > 0 {
		last := fmt.Sprintf("E%d", len(ledgerRows))
		if err := f.SetCellStyle(ledgerSheet, "E2", last, moneyStyle); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(ledgerSheet, "A", "H", 20); err != nil {
		return nil, err
	}
	if err := f.SetPanes(ledgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
