package models

import "time"

// Dentist represents a partner clinic contact
type Dentist struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;index" json:"name"`
	Phone        string    `gorm:"size:15" json:"phone"` // masked, e.g. (11) 98765-4321
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	RegisteredAt time.Time `gorm:"<-:create;not null" json:"registered_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName specifies the table name for the Dentist model
func (Dentist) TableName() string {
	return "dentists"
}
