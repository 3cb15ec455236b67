package models

// Notification types
const (
	NotificationTypeGeneral      = "general"
	NotificationTypeMaintenance  = "maintenance"
	NotificationTypePayment      = "payment"
	NotificationTypeAnnouncement = "announcement"
)

// Notification is an in-app message for one user
type Notification struct {
	BaseModel
	Title   string `gorm:"type:varchar(150);not null" json:"title"`
	Message string `gorm:"type:text;not null" json:"message"`
	Type    string `gorm:"type:varchar(20);not null;default:'general'" json:"type"`
	Read    bool   `gorm:"column:is_read;not null;default:false" json:"read"`
	UserID  uint   `gorm:"index;not null" json:"user_id"`
}
