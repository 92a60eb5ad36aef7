// Package model contains the GORM persistence models.
package model

import (
	"time"
)

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	CustomerID          string     `gorm:"column:customer_id;primaryKey"`
	Name                string     `gorm:"column:name;not null"`
	Mobile              string     `gorm:"column:mobile;not null;index"`
	Email               string     `gorm:"column:email"`
	Status              string     `gorm:"column:status;not null;index"`
	OrderDetails        string     `gorm:"column:order_details;type:text"`
	ExpectedArrivalTime *time.Time `gorm:"column:expected_arrival_time"`
	ArrivalConfirmed    bool       `gorm:"column:arrival_confirmed;not null;default:false"`
	LastCallTime        *time.Time `gorm:"column:last_call_time"`
	AdminToken          string     `gorm:"column:admin_token"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for CustomerModel.
func (CustomerModel) TableName() string {
	return "customers"
}
