package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"
	"strata-portal/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentFilter narrows the levy ledger
type PaymentFilter struct {
	PropertyID *uint
	PayerID    *uint
	BuildingID *uint
	Status     models.PaymentStatus
	LevyType   models.LevyType
}

// LevyRunInput raises one levy across every lot of a building
type LevyRunInput struct {
	BuildingID  uint
	LevyType    models.LevyType
	TotalAmount decimal.Decimal
	DueDate     time.Time
	Description string
}

// InterfacePaymentService manages levy payments
type InterfacePaymentService interface {
	GetPayments(ctx context.Context, filter PaymentFilter, page models.Pagination) ([]models.LevyPayment, int64, error)
	GetPaymentByID(ctx context.Context, id uint) (*models.LevyPayment, error)
	CreatePayment(ctx context.Context, payment *models.LevyPayment) error
	UpdatePayment(ctx context.Context, id uint, updates map[string]interface{}) (*models.LevyPayment, error)
	MarkPaid(ctx context.Context, id uint) (*models.LevyPayment, error)
	DeletePayment(ctx context.Context, id uint) error
	RunLevy(ctx context.Context, in LevyRunInput) ([]models.LevyPayment, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// PaymentService implements InterfacePaymentService on gorm
type PaymentService struct {
	DB            *gorm.DB
	Config        *config.Config
	Notifications InterfaceNotificationService
}

// NewPaymentService creates a payment service
func NewPaymentService(db *gorm.DB, cfg *config.Config, notifications InterfaceNotificationService) InterfacePaymentService {
	return &PaymentService{
		DB:            db,
		Config:        cfg,
		Notifications: notifications,
	}
}

// 1 GetPayments lists levies, newest first
func (s *PaymentService) GetPayments(ctx context.Context, filter PaymentFilter, page models.Pagination) ([]models.LevyPayment, int64, error) {
	var payments []models.LevyPayment
	var total int64

	query := s.DB.WithContext(ctx).Model(&models.LevyPayment{})
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.PayerID != nil {
		query = query.Where("payer_id = ?", *filter.PayerID)
	}
	if filter.BuildingID != nil {
		query = query.Where("property_id IN (?)",
			s.DB.Model(&models.Property{}).Select("id").Where("building_id = ?", *filter.BuildingID))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LevyType != "" {
		query = query.Where("levy_type = ?", filter.LevyType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// 2 GetPaymentByID loads a levy with its property
func (s *PaymentService) GetPaymentByID(ctx context.Context, id uint) (*models.LevyPayment, error) {
	var payment models.LevyPayment
	if err := s.DB.WithContext(ctx).Preload("Property").First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// 3 CreatePayment stores a single pending levy with a generated reference
func (s *PaymentService) CreatePayment(ctx context.Context, payment *models.LevyPayment) error {
	if !payment.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Property{}).Where("id = ?", payment.PropertyID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPropertyNotFound
	}

	payment.Amount = payment.Amount.Round(2)
	payment.Status = models.PaymentStatusPending
	payment.PaidAt = nil
	payment.Reference = NewLevyReference(payment.DueDate)

	return s.DB.WithContext(ctx).Omit("Property", "Payer").Create(payment).Error
}

// 4 UpdatePayment changes only the supplied fields. A levy that leaves
// paid loses its paid_at.
func (s *PaymentService) UpdatePayment(ctx context.Context, id uint, updates map[string]interface{}) (*models.LevyPayment, error) {
	current, err := s.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status, ok := updates["status"].(models.PaymentStatus); ok && status != models.PaymentStatusPaid && current.PaidAt != nil {
		updates["paid_at"] = nil
	}
	if amount, ok := updates["amount"].(decimal.Decimal); ok {
		if !amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		updates["amount"] = amount.Round(2)
	}

	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&models.LevyPayment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetPaymentByID(ctx, id)
}

// 5 MarkPaid settles a pending or overdue levy
func (s *PaymentService) MarkPaid(ctx context.Context, id uint) (*models.LevyPayment, error) {
	payment, err := s.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusPaid || payment.Status == models.PaymentStatusCancelled {
		return nil, ErrPaymentNotPayable
	}

	err = s.DB.WithContext(ctx).Model(&models.LevyPayment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":  models.PaymentStatusPaid,
		"paid_at": time.Now().UTC(),
	}).Error
	if err != nil {
		return nil, err
	}
	return s.GetPaymentByID(ctx, id)
}

// 6 DeletePayment removes a levy
func (s *PaymentService) DeletePayment(ctx context.Context, id uint) error {
	result := s.DB.WithContext(ctx).Delete(&models.LevyPayment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// 7 RunLevy apportions TotalAmount over the building's lots by unit
// entitlement and stores one pending levy per lot in a single transaction.
func (s *PaymentService) RunLevy(ctx context.Context, in LevyRunInput) ([]models.LevyPayment, error) {
	if !in.TotalAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	db := s.DB.WithContext(ctx)

	var buildings int64
	if err := db.Model(&models.Building{}).Where("id = ?", in.BuildingID).Count(&buildings).Error; err != nil {
		return nil, err
	}
	if buildings == 0 {
		return nil, ErrBuildingNotFound
	}

	var properties []models.Property
	if err := db.Where("building_id = ?", in.BuildingID).Order("id ASC").Find(&properties).Error; err != nil {
		return nil, err
	}
	if len(properties) == 0 {
		return nil, ErrNoPropertiesToLevy
	}

	entitlements := make([]int, len(properties))
	propertyIDs := make([]uint, len(properties))
	for i, p := range properties {
		entitlements[i] = p.UnitEntitlement
		propertyIDs[i] = p.ID
	}

	shares, err := ApportionLevy(in.TotalAmount, entitlements)
	if err != nil {
		return nil, err
	}

	payers, err := s.primaryResidents(db, propertyIDs)
	if err != nil {
		return nil, err
	}

	payments := make([]models.LevyPayment, len(properties))
	for i, p := range properties {
		payments[i] = models.LevyPayment{
			PropertyID:  p.ID,
			LevyType:    in.LevyType,
			Amount:      shares[i],
			DueDate:     in.DueDate,
			Status:      models.PaymentStatusPending,
			Reference:   NewLevyReference(in.DueDate),
			Description: in.Description,
		}
		if payer, ok := payers[p.ID]; ok {
			payerID := payer
			payments[i].PayerID = &payerID
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Property", "Payer").Create(&payments).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyPayers(ctx, payments, "Levy issued", func(p models.LevyPayment) string {
		return fmt.Sprintf("%s levy of $%s due %s (ref %s)", p.LevyType, p.Amount.StringFixed(2), p.DueDate.Format("2006-01-02"), p.Reference)
	})
	logger.Info("levy run for building %d: %d levies totalling %s", in.BuildingID, len(payments), in.TotalAmount.StringFixed(2))
	return payments, nil
}

// 8 MarkOverdue flags pending levies due before the start of now's day and
// notifies their payers. It returns how many levies changed.
func (s *PaymentService) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	db := s.DB.WithContext(ctx)

	var due []models.LevyPayment
	if err := db.Where("status = ? AND due_date < ?", models.PaymentStatusPending, cutoff).Find(&due).Error; err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	ids := make([]uint, len(due))
	for i, p := range due {
		ids[i] = p.ID
	}

	result := db.Model(&models.LevyPayment{}).
		Where("id IN ? AND status = ?", ids, models.PaymentStatusPending).
		Update("status", models.PaymentStatusOverdue)
	if result.Error != nil {
		return 0, result.Error
	}

	s.notifyPayers(ctx, due, "Levy overdue", func(p models.LevyPayment) string {
		return fmt.Sprintf("Levy %s of $%s was due %s", p.Reference, p.Amount.StringFixed(2), p.DueDate.Format("2006-01-02"))
	})
	return result.RowsAffected, nil
}

// primaryResidents maps each property to its earliest active resident
func (s *PaymentService) primaryResidents(db *gorm.DB, propertyIDs []uint) (map[uint]uint, error) {
	var residents []models.User
	err := db.Select("id", "property_id").
		Where("property_id IN ? AND role = ? AND status = ?", propertyIDs, models.RoleResident, "active").
		Order("id ASC").
		Find(&residents).Error
	if err != nil {
		return nil, err
	}

	payers := make(map[uint]uint, len(residents))
	for _, r := range residents {
		if r.PropertyID == nil {
			continue
		}
		if _, seen := payers[*r.PropertyID]; !seen {
			payers[*r.PropertyID] = r.ID
		}
	}
	return payers, nil
}

func (s *PaymentService) notifyPayers(ctx context.Context, payments []models.LevyPayment, title string, message func(models.LevyPayment) string) {
	if s.Notifications == nil {
		return
	}
	for _, p := range payments {
		if p.PayerID == nil {
			continue
		}
		if err := s.Notifications.NotifyUsers(ctx, []uint{*p.PayerID}, title, message(p), models.NotificationTypePayment); err != nil {
			logger.Warning("payment notification for %s failed: %v", p.Reference, err)
		}
	}
}

// NewLevyReference returns a unique, human-readable levy reference
func NewLevyReference(due time.Time) string {
	return fmt.Sprintf("LEVY-%s-%s", due.Format("200601"), strings.ToUpper(uuid.New().String()[:8]))
}

// ApportionLevy splits total across lots in proportion to entitlements,
// rounded to the cent. Each lot first gets its floored share; leftover
// cents then go one each to the largest entitlements, ties by position.
// The returned parts always sum to total rounded to the cent.
func ApportionLevy(total decimal.Decimal, entitlements []int) ([]decimal.Decimal, error) {
	if len(entitlements) == 0 {
		return nil, ErrNoPropertiesToLevy
	}

	var sum int64
	for _, e := range entitlements {
		if e <= 0 {
			return nil, fmt.Errorf("unit entitlement must be positive, got %d", e)
		}
		sum += int64(e)
	}

	totalCents := total.Round(2).Shift(2).IntPart()
	if totalCents <= 0 {
		return nil, ErrInvalidAmount
	}

	cents := make([]int64, len(entitlements))
	var allocated int64
	for i, e := range entitlements {
		cents[i] = totalCents * int64(e) / sum
		allocated += cents[i]
	}

	order := make([]int, len(entitlements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return entitlements[order[a]] > entitlements[order[b]]
	})

	for remainder, k := totalCents-allocated, 0; remainder > 0; remainder, k = remainder-1, k+1 {
		cents[order[k%len(order)]]++
	}

	parts := make([]decimal.Decimal, len(cents))
	for i, c := range cents {
		parts[i] = decimal.New(c, -2)
	}
	return parts, nil
}
