package services

import (
	"context"
	"errors"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"
	"strata-portal/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	propertyDataCachePrefix = "property-data:"
	propertyDataOverviewKey = propertyDataCachePrefix + "overview"
	propertyDataTTL         = time.Minute
)

// BuildingOverview summarises one building for the dashboard
type BuildingOverview struct {
	BuildingID           uint            `json:"building_id"`
	Name                 string          `json:"name"`
	StrataPlan           string          `json:"strata_plan"`
	PropertyCount        int64           `json:"property_count"`
	ResidentCount        int64           `json:"resident_count"`
	OpenMaintenanceCount int64           `json:"open_maintenance_count"`
	OutstandingLevies    decimal.Decimal `json:"outstanding_levies"`
}

// PropertyOverview is the cached dashboard payload
type PropertyOverview struct {
	Buildings   []BuildingOverview `json:"buildings"`
	GeneratedAt time.Time          `json:"generated_at"`
	Cached      bool               `json:"cached"`
}

// InterfacePropertyDataService serves the property dashboard
type InterfacePropertyDataService interface {
	GetOverview(ctx context.Context) (*PropertyOverview, error)
	GetBuildingDetail(ctx context.Context, buildingID uint) (*models.Building, error)
	Invalidate(ctx context.Context)
}

// PropertyDataService aggregates across buildings and caches the result in Redis
type PropertyDataService struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  InterfaceRedisService
}

// NewPropertyDataService creates the dashboard service. cache may be nil.
func NewPropertyDataService(db *gorm.DB, cfg *config.Config, cache InterfaceRedisService) InterfacePropertyDataService {
	return &PropertyDataService{
		DB:     db,
		Config: cfg,
		Cache:  cache,
	}
}

type buildingCount struct {
	BuildingID uint
	Total      int64
}

type buildingSum struct {
	BuildingID uint
	Total      decimal.Decimal
}

// 1 GetOverview returns per-building counts, from cache when fresh
func (s *PropertyDataService) GetOverview(ctx context.Context) (*PropertyOverview, error) {
	if s.Cache != nil {
		var cached PropertyOverview
		err := s.Cache.Get(ctx, propertyDataOverviewKey, &cached)
		if err == nil {
			cached.Cached = true
			return &cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			logger.Warning("property-data cache read failed: %v", err)
		}
	}

	overview, err := s.buildOverview(ctx)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, propertyDataOverviewKey, overview, propertyDataTTL); err != nil {
			logger.Warning("property-data cache write failed: %v", err)
		}
	}
	return overview, nil
}

func (s *PropertyDataService) buildOverview(ctx context.Context) (*PropertyOverview, error) {
	db := s.DB.WithContext(ctx)

	var buildings []models.Building
	if err := db.Order("name ASC").Find(&buildings).Error; err != nil {
		return nil, err
	}

	var properties []buildingCount
	if err := db.Model(&models.Property{}).
		Select("building_id, COUNT(*) AS total").
		Group("building_id").
		Scan(&properties).Error; err != nil {
		return nil, err
	}

	var residents []buildingCount
	if err := db.Model(&models.User{}).
		Select("properties.building_id, COUNT(users.id) AS total").
		Joins("JOIN properties ON properties.id = users.property_id").
		Where("users.role = ?", models.RoleResident).
		Group("properties.building_id").
		Scan(&residents).Error; err != nil {
		return nil, err
	}

	var open []buildingCount
	if err := db.Model(&models.MaintenanceRequest{}).
		Select("properties.building_id, COUNT(maintenance_requests.id) AS total").
		Joins("JOIN properties ON properties.id = maintenance_requests.property_id").
		Where("maintenance_requests.status IN ?", []models.MaintenanceStatus{models.MaintenanceStatusPending, models.MaintenanceStatusInProgress}).
		Group("properties.building_id").
		Scan(&open).Error; err != nil {
		return nil, err
	}

	var outstanding []buildingSum
	if err := db.Model(&models.LevyPayment{}).
		Select("properties.building_id, SUM(levy_payments.amount) AS total").
		Joins("JOIN properties ON properties.id = levy_payments.property_id").
		Where("levy_payments.status IN ?", []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusOverdue}).
		Group("properties.building_id").
		Scan(&outstanding).Error; err != nil {
		return nil, err
	}

	propertyCounts := countsByBuilding(properties)
	residentCounts := countsByBuilding(residents)
	openCounts := countsByBuilding(open)
	levies := make(map[uint]decimal.Decimal, len(outstanding))
	for _, o := range outstanding {
		levies[o.BuildingID] = o.Total
	}

	overview := &PropertyOverview{
		Buildings:   make([]BuildingOverview, 0, len(buildings)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, b := range buildings {
		overview.Buildings = append(overview.Buildings, BuildingOverview{
			BuildingID:           b.ID,
			Name:                 b.Name,
			StrataPlan:           b.StrataPlan,
			PropertyCount:        propertyCounts[b.ID],
			ResidentCount:        residentCounts[b.ID],
			OpenMaintenanceCount: openCounts[b.ID],
			OutstandingLevies:    levies[b.ID].Round(2),
		})
	}
	return overview, nil
}

// 2 GetBuildingDetail loads a building with its lots and their residents
func (s *PropertyDataService) GetBuildingDetail(ctx context.Context, buildingID uint) (*models.Building, error) {
	var building models.Building
	err := s.DB.WithContext(ctx).
		Preload("Properties", func(db *gorm.DB) *gorm.DB { return db.Order("unit_number ASC") }).
		Preload("Properties.Residents").
		First(&building, buildingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}
	return &building, nil
}

// 3 Invalidate drops cached dashboard data after writes
func (s *PropertyDataService) Invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if _, err := s.Cache.DeletePrefix(ctx, propertyDataCachePrefix); err != nil {
		logger.Warning("property-data cache invalidation failed: %v", err)
	}
}

func countsByBuilding(rows []buildingCount) map[uint]int64 {
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.BuildingID] = r.Total
	}
	return out
}
