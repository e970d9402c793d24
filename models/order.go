package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the production status of an order
type OrderStatus string

const (
	StatusInProduction OrderStatus = "em_producao"
	StatusReady        OrderStatus = "pronto"
)

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	return s == StatusInProduction || s == StatusReady
}

func init() {
	// Money goes over the wire as a JSON number, the way clients send it.
	decimal.MarshalJSONWithoutQuotes = true
}

// Order represents a prosthesis service order placed by a partner dentist
type Order struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	DentistName  string          `gorm:"index" json:"dentist_name"` // copy of Dentist.Name, not a foreign key
	PatientName  string          `gorm:"not null" json:"patient_name"`
	ServiceType  string          `gorm:"not null" json:"service_type"`
	DeliveryDate string          `gorm:"size:10;index" json:"delivery_date"` // YYYY-MM-DD
	Value        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"value"`
	Notes        string          `gorm:"type:text" json:"notes"`
	Status       OrderStatus     `gorm:"not null;default:'em_producao'" json:"status"` // em_producao, pronto
	Paid         bool            `gorm:"not null;default:false" json:"paid"`
	CreatedAt    time.Time       `gorm:"<-:create;not null" json:"created_at"` // written once on insert
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsReady reports whether the order has left production
func (o Order) IsReady() bool {
	return o.Status == StatusReady
}
