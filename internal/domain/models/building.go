package models

// Building is a strata-titled building
type Building struct {
	BaseModel
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	Address    string `gorm:"type:varchar(255);not null" json:"address"`
	StrataPlan string `gorm:"type:varchar(50)" json:"strata_plan"` // e.g. "SP12345"

	Properties []Property `gorm:"foreignKey:BuildingID" json:"properties,omitempty"`
}
