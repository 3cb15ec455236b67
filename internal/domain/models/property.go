package models

// Property is a single lot/unit inside a building
type Property struct {
	BaseModel
	UnitNumber      string `gorm:"type:varchar(20);not null" json:"unit_number"`
	Address         string `gorm:"type:varchar(255)" json:"address"`
	LotNumber       string `gorm:"type:varchar(20)" json:"lot_number"`
	UnitEntitlement int    `gorm:"not null;default:1" json:"unit_entitlement"` // share used to apportion levies
	BuildingID      uint   `gorm:"index;not null" json:"building_id"`

	Building  *Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	Residents []User    `gorm:"foreignKey:PropertyID" json:"residents,omitempty"`
}
