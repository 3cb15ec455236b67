package services

import (
	"context"
	"errors"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"
	"strata-portal/pkg/logger"

	"gorm.io/gorm"
)

// Pusher delivers live events to a connected user
type Pusher interface {
	Push(userID uint, eventType string, data interface{})
}

// InterfaceNotificationService manages in-app notifications
type InterfaceNotificationService interface {
	GetNotifications(ctx context.Context, userID uint, unreadOnly bool, page models.Pagination) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID uint) (int64, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
	NotifyUsers(ctx context.Context, userIDs []uint, title, message, notificationType string) error
	MarkAsRead(ctx context.Context, id, userID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) (int64, error)
	DeleteNotification(ctx context.Context, id, userID uint) error
}

// NotificationService stores notifications and pushes them live
type NotificationService struct {
	DB     *gorm.DB
	Config *config.Config
	Pusher Pusher
}

// NewNotificationService creates a notification service. pusher may be nil.
func NewNotificationService(db *gorm.DB, cfg *config.Config, pusher Pusher) InterfaceNotificationService {
	return &NotificationService{
		DB:     db,
		Config: cfg,
		Pusher: pusher,
	}
}

// 1 GetNotifications lists a user's notifications, newest first
func (s *NotificationService) GetNotifications(ctx context.Context, userID uint, unreadOnly bool, page models.Pagination) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	query := s.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// 2 GetUnreadCount counts unread notifications
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// 3 CreateNotification stores n and pushes it to the user's sockets
func (s *NotificationService) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.Type == "" {
		n.Type = models.NotificationTypeGeneral
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", n.UserID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}

	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return err
	}

	s.push(n)
	return nil
}

// 4 NotifyUsers sends the same notification to several users in one insert
func (s *NotificationService) NotifyUsers(ctx context.Context, userIDs []uint, title, message, notificationType string) error {
	if len(userIDs) == 0 {
		return nil
	}

	batch := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		batch = append(batch, models.Notification{
			Title:   title,
			Message: message,
			Type:    notificationType,
			UserID:  id,
		})
	}

	if err := s.DB.WithContext(ctx).Create(&batch).Error; err != nil {
		return err
	}

	for i := range batch {
		s.push(&batch[i])
	}
	return nil
}

// 5 MarkAsRead flags one notification. userID 0 skips the ownership check.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uint) error {
	query := s.DB.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	result := query.Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return s.notFoundOrRead(ctx, id, userID)
	}
	return nil
}

// 6 MarkAllAsRead flags every unread notification of userID
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	result := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// 7 DeleteNotification removes one notification. userID 0 skips the ownership check.
func (s *NotificationService) DeleteNotification(ctx context.Context, id, userID uint) error {
	query := s.DB.WithContext(ctx).Where("id = ?", id)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	result := query.Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// notFoundOrRead tells a missing notification apart from one already read
func (s *NotificationService) notFoundOrRead(ctx context.Context, id, userID uint) error {
	var n models.Notification
	query := s.DB.WithContext(ctx).Where("id = ?", id)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *NotificationService) push(n *models.Notification) {
	if s.Pusher == nil {
		return
	}
	s.Pusher.Push(n.UserID, "notification", n)
	logger.Info("notification %d pushed to user %d", n.ID, n.UserID)
}
