package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// UserRole is one of the fixed portal roles
type UserRole string

const (
	RoleAdmin            UserRole = "admin"
	RoleManager          UserRole = "manager"
	RoleMaintenanceStaff UserRole = "maintenance_staff"
	RoleResident         UserRole = "resident"
)

// Valid reports whether r is a known role
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMaintenanceStaff, RoleResident:
		return true
	}
	return false
}

// Committee positions held by owners on the strata committee
const (
	CommitteeChairperson = "chairperson"
	CommitteeSecretary   = "secretary"
	CommitteeTreasurer   = "treasurer"
	CommitteeMember      = "member"
)

// User is a portal account: residents, committee members, managers and staff
type User struct {
	BaseModel
	Name              string   `gorm:"type:varchar(100);not null" json:"name"`
	Email             string   `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	Phone             string   `gorm:"type:varchar(30)" json:"phone"`
	Role              UserRole `gorm:"type:varchar(30);not null;default:'resident'" json:"role"`
	CommitteePosition string   `gorm:"type:varchar(30)" json:"committee_position,omitempty"`
	Status            string   `gorm:"type:varchar(20);default:'active'" json:"status"` // active, inactive
	Password          string   `gorm:"type:varchar(100);not null" json:"-"`
	PropertyID        *uint    `gorm:"index" json:"property_id,omitempty"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

// NormalizeEmail is the stored form of an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword bcrypt-hashes a plain password
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares a plain password with the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// CanManage reports whether the user has back-office rights
func (u *User) CanManage() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}
