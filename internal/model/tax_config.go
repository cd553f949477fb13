package model

import (
	"time"

	"github.com/google/uuid"
)

// ValueType enum constants for TaxConfig coercion
const (
	ConfigTypePercentage = "PERCENTAGE"
	ConfigTypeDecimal    = "DECIMAL"
	ConfigTypeCurrency   = "CURRENCY"
	ConfigTypeInteger    = "INTEGER"
	ConfigTypeBoolean    = "BOOLEAN"
	ConfigTypeDate       = "DATE"
	ConfigTypeString     = "STRING"
)

// TaxConfig stores a versioned named constant. Among records sharing a
// config_key, the one with the greatest valid_from_tax_year that is still
// valid for the evaluation's tax year wins.
type TaxConfig struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConfigKey        string     `gorm:"type:varchar(100);not null;index" json:"config_key"`
	Value            string     `gorm:"type:text;not null" json:"value"` // raw string, coerced by value_type at evaluation time
	ValueType        string     `gorm:"type:varchar(20);not null" json:"value_type"`
	Description      string     `gorm:"type:text" json:"description"`
	IsActive         bool       `gorm:"not null;default:true;index" json:"is_active"`
	ValidFromTaxYear int        `gorm:"not null;index" json:"valid_from_tax_year"`
	ValidToTaxYear   *int       `gorm:"index" json:"valid_to_tax_year"`
	ValidFromDate    *time.Time `gorm:"type:date" json:"valid_from_date"`
	ValidToDate      *time.Time `gorm:"type:date" json:"valid_to_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
