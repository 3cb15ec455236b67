package models

import "time"

// AnnouncementType classifies notices on the board
type AnnouncementType string

const (
	AnnouncementTypeGeneral     AnnouncementType = "general"
	AnnouncementTypeMaintenance AnnouncementType = "maintenance"
	AnnouncementTypeMeeting     AnnouncementType = "meeting"
	AnnouncementTypeEmergency   AnnouncementType = "emergency"
)

// Valid reports whether t is a known type
func (t AnnouncementType) Valid() bool {
	switch t {
	case AnnouncementTypeGeneral, AnnouncementTypeMaintenance, AnnouncementTypeMeeting, AnnouncementTypeEmergency:
		return true
	}
	return false
}

// Announcement is a notice for all residents, or one building when BuildingID is set
type Announcement struct {
	BaseModel
	Title      string           `gorm:"type:varchar(200);not null" json:"title"`
	Content    string           `gorm:"type:text;not null" json:"content"`
	Type       AnnouncementType `gorm:"type:varchar(20);not null;default:'general'" json:"type"`
	ExpiresAt  *time.Time       `gorm:"index" json:"expires_at,omitempty"`
	Pinned     bool             `gorm:"not null;default:false" json:"pinned"`
	BuildingID *uint            `gorm:"index" json:"building_id,omitempty"`
	AuthorID   *uint            `json:"author_id,omitempty"`
}

// Active reports whether the announcement is still shown at time now
func (a *Announcement) Active(now time.Time) bool {
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}
