package services

import (
	"context"
	"errors"
	"time"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"
	"strata-portal/pkg/logger"

	"gorm.io/gorm"
)

// AnnouncementFilter narrows the announcement board
type AnnouncementFilter struct {
	Type           models.AnnouncementType
	BuildingID     *uint
	IncludeExpired bool
}

// InterfaceAnnouncementService manages the notice board
type InterfaceAnnouncementService interface {
	GetAnnouncements(ctx context.Context, filter AnnouncementFilter, page models.Pagination) ([]models.Announcement, int64, error)
	GetAnnouncementByID(ctx context.Context, id uint) (*models.Announcement, error)
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	UpdateAnnouncement(ctx context.Context, id uint, updates map[string]interface{}) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uint) error
}

// AnnouncementService stores announcements and broadcasts them to lobby displays
type AnnouncementService struct {
	DB        *gorm.DB
	Config    *config.Config
	Broadcast InterfaceBroadcastService
	now       func() time.Time
}

// NewAnnouncementService creates an announcement service
func NewAnnouncementService(db *gorm.DB, cfg *config.Config, broadcast InterfaceBroadcastService) InterfaceAnnouncementService {
	return &AnnouncementService{
		DB:        db,
		Config:    cfg,
		Broadcast: broadcast,
		now:       time.Now,
	}
}

// 1 GetAnnouncements lists pinned announcements first, then newest first.
// A building filter also returns announcements without a building.
func (s *AnnouncementService) GetAnnouncements(ctx context.Context, filter AnnouncementFilter, page models.Pagination) ([]models.Announcement, int64, error) {
	var announcements []models.Announcement
	var total int64

	query := s.DB.WithContext(ctx).Model(&models.Announcement{})
	if !filter.IncludeExpired {
		query = query.Where("expires_at IS NULL OR expires_at > ?", s.now())
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.BuildingID != nil {
		query = query.Where("building_id IS NULL OR building_id = ?", *filter.BuildingID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("pinned DESC").Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&announcements).Error
	if err != nil {
		return nil, 0, err
	}
	return announcements, total, nil
}

// 2 GetAnnouncementByID loads one announcement
func (s *AnnouncementService) GetAnnouncementByID(ctx context.Context, id uint) (*models.Announcement, error) {
	var a models.Announcement
	if err := s.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return &a, nil
}

// 3 CreateAnnouncement stores and broadcasts a new announcement
func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	if a.Type == "" {
		a.Type = models.AnnouncementTypeGeneral
	}
	if a.BuildingID != nil {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.Building{}).Where("id = ?", *a.BuildingID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrBuildingNotFound
		}
	}

	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return err
	}

	s.publish("created", a)
	return nil
}

// 4 UpdateAnnouncement changes only the supplied fields
func (s *AnnouncementService) UpdateAnnouncement(ctx context.Context, id uint, updates map[string]interface{}) (*models.Announcement, error) {
	if _, err := s.GetAnnouncementByID(ctx, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&models.Announcement{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	a, err := s.GetAnnouncementByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish("updated", a)
	return a, nil
}

// 5 DeleteAnnouncement removes an announcement
func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, id uint) error {
	a, err := s.GetAnnouncementByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Announcement{}, id).Error; err != nil {
		return err
	}

	s.publish("deleted", a)
	return nil
}

// publish never fails the request; the broker is best effort
func (s *AnnouncementService) publish(action string, a *models.Announcement) {
	if s.Broadcast == nil || !s.Broadcast.Enabled() {
		return
	}
	if err := s.Broadcast.PublishAnnouncement(action, a); err != nil {
		logger.Warning("announcement %d broadcast failed: %v", a.ID, err)
	}
}
