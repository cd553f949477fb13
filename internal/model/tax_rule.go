package model

import (
	"time"

	"github.com/google/uuid"
)

// TaxRuleCategory groups rules so evaluations can be restricted to one
// category by code.
type TaxRuleCategory struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryCode string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"category_code"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TaxRule stores a versioned declarative business rule with temporal
// validity. Conditions and actions are stored as JSON documents and parsed
// when handed to the evaluation engine; the engine never mutates stored
// rules.
type TaxRule struct {
	ID               uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RuleCode         string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"rule_code"`
	DisplayName      string           `gorm:"type:varchar(255);not null" json:"display_name"`
	RuleType         string           `gorm:"type:varchar(50);index" json:"rule_type"`
	CategoryID       *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category         *TaxRuleCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Priority         int              `gorm:"not null;default:100" json:"priority"` // higher evaluates first
	IsActive         bool             `gorm:"not null;default:true;index" json:"is_active"`
	ValidFromTaxYear int              `gorm:"not null;index" json:"valid_from_tax_year"` // inclusive
	ValidToTaxYear   *int             `gorm:"index" json:"valid_to_tax_year"`            // inclusive, nullable = open-ended
	ValidFromDate    *time.Time       `gorm:"type:date" json:"valid_from_date"`          // calendar bounds, independent of tax-year bounds
	ValidToDate      *time.Time       `gorm:"type:date" json:"valid_to_date"`
	Conditions       string           `gorm:"type:jsonb" json:"-"` // Condition Map document
	Actions          string           `gorm:"type:jsonb" json:"-"` // Action Map document
	LegalReference   string           `gorm:"type:text" json:"legal_reference"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
