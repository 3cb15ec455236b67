package services

import (
	"context"
	"errors"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"

	"gorm.io/gorm"
)

// InterfaceBuildingService manages buildings and their lots
type InterfaceBuildingService interface {
	GetAllBuildings(ctx context.Context, page models.Pagination) ([]models.Building, int64, error)
	GetBuildingByID(ctx context.Context, id uint) (*models.Building, error)
	CreateBuilding(ctx context.Context, building *models.Building) error
	UpdateBuilding(ctx context.Context, id uint, updates map[string]interface{}) (*models.Building, error)
	DeleteBuilding(ctx context.Context, id uint) error

	GetAllProperties(ctx context.Context, buildingID *uint, page models.Pagination) ([]models.Property, int64, error)
	GetPropertyByID(ctx context.Context, id uint) (*models.Property, error)
	GetBuildingProperties(ctx context.Context, buildingID uint) ([]models.Property, error)
	CreateProperty(ctx context.Context, property *models.Property) error
	UpdateProperty(ctx context.Context, id uint, updates map[string]interface{}) (*models.Property, error)
	DeleteProperty(ctx context.Context, id uint) error
}

// BuildingService implements InterfaceBuildingService on gorm
type BuildingService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewBuildingService creates a building service
func NewBuildingService(db *gorm.DB, cfg *config.Config) InterfaceBuildingService {
	return &BuildingService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllBuildings lists buildings, newest first
func (s *BuildingService) GetAllBuildings(ctx context.Context, page models.Pagination) ([]models.Building, int64, error) {
	var buildings []models.Building
	var total int64

	query := s.DB.WithContext(ctx).Model(&models.Building{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&buildings).Error; err != nil {
		return nil, 0, err
	}
	return buildings, total, nil
}

// 2 GetBuildingByID loads a building with its properties
func (s *BuildingService) GetBuildingByID(ctx context.Context, id uint) (*models.Building, error) {
	var building models.Building
	err := s.DB.WithContext(ctx).
		Preload("Properties", func(db *gorm.DB) *gorm.DB { return db.Order("unit_number ASC") }).
		First(&building, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}
	return &building, nil
}

// 3 CreateBuilding stores a new building
func (s *BuildingService) CreateBuilding(ctx context.Context, building *models.Building) error {
	return s.DB.WithContext(ctx).Create(building).Error
}

// 4 UpdateBuilding applies only the supplied fields
func (s *BuildingService) UpdateBuilding(ctx context.Context, id uint, updates map[string]interface{}) (*models.Building, error) {
	if _, err := s.GetBuildingByID(ctx, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&models.Building{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetBuildingByID(ctx, id)
}

// 5 DeleteBuilding removes a building without properties
func (s *BuildingService) DeleteBuilding(ctx context.Context, id uint) error {
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Property{}).Where("building_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrBuildingNotEmpty
	}

	result := db.Delete(&models.Building{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBuildingNotFound
	}
	return nil
}

// 6 GetAllProperties lists lots, optionally within one building
func (s *BuildingService) GetAllProperties(ctx context.Context, buildingID *uint, page models.Pagination) ([]models.Property, int64, error) {
	var properties []models.Property
	var total int64

	query := s.DB.WithContext(ctx).Model(&models.Property{})
	if buildingID != nil {
		query = query.Where("building_id = ?", *buildingID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&properties).Error; err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

// 7 GetPropertyByID loads a lot with its building and residents
func (s *BuildingService) GetPropertyByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := s.DB.WithContext(ctx).Preload("Building").Preload("Residents").First(&property, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

// 8 GetBuildingProperties returns every lot of a building
func (s *BuildingService) GetBuildingProperties(ctx context.Context, buildingID uint) ([]models.Property, error) {
	var properties []models.Property
	err := s.DB.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Order("unit_number ASC").
		Find(&properties).Error
	return properties, err
}

// 9 CreateProperty stores a lot inside an existing building
func (s *BuildingService) CreateProperty(ctx context.Context, property *models.Property) error {
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Building{}).Where("id = ?", property.BuildingID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrBuildingNotFound
	}
	if property.UnitEntitlement <= 0 {
		property.UnitEntitlement = 1
	}
	return db.Create(property).Error
}

// 10 UpdateProperty applies only the supplied fields
func (s *BuildingService) UpdateProperty(ctx context.Context, id uint, updates map[string]interface{}) (*models.Property, error) {
	if _, err := s.GetPropertyByID(ctx, id); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	if buildingID, ok := updates["building_id"].(uint); ok {
		var count int64
		if err := db.Model(&models.Building{}).Where("id = ?", buildingID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrBuildingNotFound
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&models.Property{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetPropertyByID(ctx, id)
}

// 11 DeleteProperty removes a lot and unlinks its residents
func (s *BuildingService) DeleteProperty(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("property_id = ?", id).Update("property_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Property{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPropertyNotFound
		}
		return nil
	})
}
