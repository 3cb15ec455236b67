package models

import (
	"time"

	"gorm.io/datatypes"
)

// MaintenanceStatus tracks a work order through its lifecycle
type MaintenanceStatus string

const (
	MaintenanceStatusPending    MaintenanceStatus = "pending"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
	MaintenanceStatusCancelled  MaintenanceStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s MaintenanceStatus) Valid() bool {
	_, ok := maintenanceTransitions[s]
	return ok
}

var maintenanceTransitions = map[MaintenanceStatus][]MaintenanceStatus{
	MaintenanceStatusPending:    {MaintenanceStatusInProgress, MaintenanceStatusCompleted, MaintenanceStatusCancelled},
	MaintenanceStatusInProgress: {MaintenanceStatusPending, MaintenanceStatusCompleted, MaintenanceStatusCancelled},
	MaintenanceStatusCompleted:  {MaintenanceStatusInProgress},
	MaintenanceStatusCancelled:  {MaintenanceStatusPending},
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s MaintenanceStatus) CanTransitionTo(next MaintenanceStatus) bool {
	for _, allowed := range maintenanceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MaintenancePriority orders work by urgency
type MaintenancePriority string

const (
	MaintenancePriorityLow    MaintenancePriority = "low"
	MaintenancePriorityMedium MaintenancePriority = "medium"
	MaintenancePriorityHigh   MaintenancePriority = "high"
	MaintenancePriorityUrgent MaintenancePriority = "urgent"
)

// Valid reports whether p is a known priority
func (p MaintenancePriority) Valid() bool {
	switch p {
	case MaintenancePriorityLow, MaintenancePriorityMedium, MaintenancePriorityHigh, MaintenancePriorityUrgent:
		return true
	}
	return false
}

// MaintenanceRequest is a work order raised by a resident.
// CompletedAt is set exactly while Status is completed.
type MaintenanceRequest struct {
	BaseModel
	Title       string                      `gorm:"type:varchar(200);not null" json:"title"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Status      MaintenanceStatus           `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Priority    MaintenancePriority         `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Category    string                      `gorm:"type:varchar(50)" json:"category,omitempty"` // plumbing, electrical, common_area...
	RequesterID uint                        `gorm:"index;not null" json:"requester_id"`
	AssigneeID  *uint                       `gorm:"index" json:"assignee_id,omitempty"`
	PropertyID  *uint                       `gorm:"index" json:"property_id,omitempty"`
	CompletedAt *time.Time                  `json:"completed_at,omitempty"`
	ImageURLs   datatypes.JSONSlice[string] `gorm:"column:image_urls" json:"image_urls"`

	Requester *User     `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Assignee  *User     `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Property  *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Comments  []Comment `gorm:"foreignKey:MaintenanceRequestID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// Comment is a note left on a maintenance request
type Comment struct {
	BaseModel
	Text                 string `gorm:"type:text;not null" json:"text"`
	MaintenanceRequestID uint   `gorm:"index;not null" json:"maintenance_request_id"`
	UserID               uint   `gorm:"index;not null" json:"user_id"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
