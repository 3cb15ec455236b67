package services

import (
	"context"
	"errors"

	"strata-portal/internal/domain/models"
	"strata-portal/internal/infrastructure/config"

	"gorm.io/gorm"
)

// UserFilter narrows the user list
type UserFilter struct {
	Role       models.UserRole
	PropertyID *uint
	Committee  bool
	Search     string
}

// InterfaceUserService manages resident, committee and staff profiles
type InterfaceUserService interface {
	GetAllUsers(ctx context.Context, filter UserFilter, page models.Pagination) ([]models.User, int64, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUsersByRoles(ctx context.Context, roles ...models.UserRole) ([]models.User, error)
	GetCommittee(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User, password string) error
	UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) error
	EnsureAdminExists(ctx context.Context, email, password string) (bool, error)
}

// UserService implements InterfaceUserService on gorm
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService creates a user service
func NewUserService(db *gorm.DB, cfg *config.Config) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllUsers lists users, newest first
func (s *UserService) GetAllUsers(ctx context.Context, filter UserFilter, page models.Pagination) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := s.DB.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.Committee {
		query = query.Where("committee_position <> ''")
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// 2 GetUserByID loads a user with its property
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Preload("Property").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// 3 GetUsersByRoles returns active users holding any of roles
func (s *UserService) GetUsersByRoles(ctx context.Context, roles ...models.UserRole) ([]models.User, error) {
	var users []models.User
	err := s.DB.WithContext(ctx).
		Where("role IN ? AND status = ?", roles, "active").
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// 4 GetCommittee returns the strata committee members
func (s *UserService) GetCommittee(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.DB.WithContext(ctx).
		Where("committee_position <> ''").
		Order("name ASC").
		Find(&users).Error
	return users, err
}

// 5 CreateUser hashes the password and stores the user
func (s *UserService) CreateUser(ctx context.Context, user *models.User, password string) error {
	db := s.DB.WithContext(ctx)
	user.Email = models.NormalizeEmail(user.Email)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}

	if user.PropertyID != nil {
		if err := s.checkProperty(db, *user.PropertyID); err != nil {
			return err
		}
	}

	hashed, err := models.HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hashed
	if user.Role == "" {
		user.Role = models.RoleResident
	}
	if user.Status == "" {
		user.Status = "active"
	}

	return db.Create(user).Error
}

// 6 UpdateUser applies only the supplied fields
func (s *UserService) UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	if err := s.checkAdminRemains(db, user, updates); err != nil {
		return nil, err
	}

	if email, ok := updates["email"].(string); ok {
		email = models.NormalizeEmail(email)
		updates["email"] = email
	}
	if email, ok := updates["email"].(string); ok && email != user.Email {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrEmailTaken
		}
	}

	if propertyID, ok := updates["property_id"].(uint); ok {
		if err := s.checkProperty(db, propertyID); err != nil {
			return nil, err
		}
	}

	if password, ok := updates["password"].(string); ok {
		hashed, err := models.HashPassword(password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}

	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetUserByID(ctx, id)
}

// 7 DeleteUser removes a user; the last admin cannot be removed
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	db := s.DB.WithContext(ctx)

	if user.Role == models.RoleAdmin {
		var admins int64
		if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return db.Delete(&models.User{}, id).Error
}

// 8 EnsureAdminExists creates the default admin when no admin exists.
// It reports whether an account was created.
func (s *UserService) EnsureAdminExists(ctx context.Context, email, password string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	admin := &models.User{
		Name:  "Administrator",
		Email: email,
		Role:  models.RoleAdmin,
	}
	if err := s.CreateUser(ctx, admin, password); err != nil {
		return false, err
	}
	return true, nil
}

// checkAdminRemains refuses an update that demotes or deactivates the last
// active admin
func (s *UserService) checkAdminRemains(db *gorm.DB, user *models.User, updates map[string]interface{}) error {
	if user.Role != models.RoleAdmin || user.Status == "inactive" {
		return nil
	}
	demoted := false
	if role, ok := updates["role"].(models.UserRole); ok && role != models.RoleAdmin {
		demoted = true
	}
	if status, ok := updates["status"].(string); ok && status == "inactive" {
		demoted = true
	}
	if !demoted {
		return nil
	}

	var others int64
	if err := db.Model(&models.User{}).
		Where("role = ? AND status = ? AND id <> ?", models.RoleAdmin, "active", user.ID).
		Count(&others).Error; err != nil {
		return err
	}
	if others == 0 {
		return ErrLastAdmin
	}
	return nil
}

func (s *UserService) checkProperty(db *gorm.DB, propertyID uint) error {
	var count int64
	if err := db.Model(&models.Property{}).Where("id = ?", propertyID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
