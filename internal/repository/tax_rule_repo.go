package repository

import (
	"context"

	"proptax/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaxRuleRepository is the rule store consumed by the evaluation service and
// the rule CRUD surface.
type TaxRuleRepository interface {
	Create(ctx context.Context, rule *model.TaxRule) error
	Update(ctx context.Context, rule *model.TaxRule) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRule, error)
	FindByCode(ctx context.Context, ruleCode string) (*model.TaxRule, error)
	List(ctx context.Context, page, limit int) ([]model.TaxRule, int64, error)
	ListActive(ctx context.Context) ([]model.TaxRule, error)

	CreateCategory(ctx context.Context, category *model.TaxRuleCategory) error
	UpdateCategory(ctx context.Context, category *model.TaxRuleCategory) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.TaxRuleCategory, error)
	FindCategoryByCode(ctx context.Context, code string) (*model.TaxRuleCategory, error)
	ListCategories(ctx context.Context) ([]model.TaxRuleCategory, error)
}

type taxRuleRepository struct {
	db *gorm.DB
}

func NewTaxRuleRepository(db *gorm.DB) TaxRuleRepository {
	return &taxRuleRepository{db: db}
}

func (r *taxRuleRepository) Create(ctx context.Context, rule *model.TaxRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *taxRuleRepository) Update(ctx context.Context, rule *model.TaxRule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}

func (r *taxRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TaxRule{}).Error
}

func (r *taxRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRule, error) {
	var rule model.TaxRule
	if err := GetDB(ctx, r.db).Preload("Category").First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *taxRuleRepository) FindByCode(ctx context.Context, ruleCode string) (*model.TaxRule, error) {
	var rule model.TaxRule
	if err := GetDB(ctx, r.db).First(&rule, "rule_code = ?", ruleCode).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *taxRuleRepository) List(ctx context.Context, page, limit int) ([]model.TaxRule, int64, error) {
	var rules []model.TaxRule
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.TaxRule{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Category").Order("priority desc, rule_code asc").Offset(offset).Limit(limit).Find(&rules).Error; err != nil {
		return nil, 0, err
	}

	return rules, total, nil
}

// ListActive returns every active rule; temporal filtering happens in the
// engine, which needs the full set to report selection diagnostics.
func (r *taxRuleRepository) ListActive(ctx context.Context) ([]model.TaxRule, error) {
	var rules []model.TaxRule
	if err := GetDB(ctx, r.db).
		Where("is_active = ?", true).
		Order("priority desc, rule_code asc").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *taxRuleRepository) CreateCategory(ctx context.Context, category *model.TaxRuleCategory) error {
	return GetDB(ctx, r.db).Create(category).Error
}

func (r *taxRuleRepository) UpdateCategory(ctx context.Context, category *model.TaxRuleCategory) error {
	return GetDB(ctx, r.db).Save(category).Error
}

func (r *taxRuleRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TaxRuleCategory{}).Error
}

func (r *taxRuleRepository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.TaxRuleCategory, error) {
	var category model.TaxRuleCategory
	if err := GetDB(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *taxRuleRepository) FindCategoryByCode(ctx context.Context, code string) (*model.TaxRuleCategory, error) {
	var category model.TaxRuleCategory
	if err := GetDB(ctx, r.db).First(&category, "category_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *taxRuleRepository) ListCategories(ctx context.Context) ([]model.TaxRuleCategory, error) {
	var categories []model.TaxRuleCategory
	if err := GetDB(ctx, r.db).Order("category_code asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
