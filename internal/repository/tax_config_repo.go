package repository

import (
	"context"

	"proptax/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaxConfigRepository is the config store consumed by the evaluation service
// and the config CRUD surface.
type TaxConfigRepository interface {
	Create(ctx context.Context, cfg *model.TaxConfig) error
	Update(ctx context.Context, cfg *model.TaxConfig) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxConfig, error)
	List(ctx context.Context, page, limit int) ([]model.TaxConfig, int64, error)
	ListActive(ctx context.Context) ([]model.TaxConfig, error)
}

type taxConfigRepository struct {
	db *gorm.DB
}

func NewTaxConfigRepository(db *gorm.DB) TaxConfigRepository {
	return &taxConfigRepository{db: db}
}

func (r *taxConfigRepository) Create(ctx context.Context, cfg *model.TaxConfig) error {
	return GetDB(ctx, r.db).Create(cfg).Error
}

func (r *taxConfigRepository) Update(ctx context.Context, cfg *model.TaxConfig) error {
	return GetDB(ctx, r.db).Save(cfg).Error
}

func (r *taxConfigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TaxConfig{}).Error
}

func (r *taxConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxConfig, error) {
	var cfg model.TaxConfig
	if err := GetDB(ctx, r.db).First(&cfg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *taxConfigRepository) List(ctx context.Context, page, limit int) ([]model.TaxConfig, int64, error) {
	var configs []model.TaxConfig
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.TaxConfig{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("config_key asc, valid_from_tax_year desc").Offset(offset).Limit(limit).Find(&configs).Error; err != nil {
		return nil, 0, err
	}

	return configs, total, nil
}

// ListActive returns every active config record; the engine's resolver picks
// the authoritative record per key for a given tax year.
func (r *taxConfigRepository) ListActive(ctx context.Context) ([]model.TaxConfig, error) {
	var configs []model.TaxConfig
	if err := GetDB(ctx, r.db).
		Where("is_active = ?", true).
		Order("config_key asc").
		Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}
