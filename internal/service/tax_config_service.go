package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"proptax/internal/model"
	"proptax/internal/repository"
	ws "proptax/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type TaxConfigRequest struct {
	ConfigKey        string `json:"config_key" binding:"required"`
	Value            string `json:"value" binding:"required"`
	ValueType        string `json:"value_type" binding:"required"`
	Description      string `json:"description"`
	IsActive         *bool  `json:"is_active"`
	ValidFromTaxYear int    `json:"valid_from_tax_year" binding:"required"`
	ValidToTaxYear   *int   `json:"valid_to_tax_year"`
	ValidFromDate    string `json:"valid_from_date"`
	ValidToDate      string `json:"valid_to_date"`
}

type TaxConfigResponse struct {
	ID               string  `json:"id"`
	ConfigKey        string  `json:"config_key"`
	Value            string  `json:"value"`
	ValueType        string  `json:"value_type"`
	Description      string  `json:"description"`
	IsActive         bool    `json:"is_active"`
	ValidFromTaxYear int     `json:"valid_from_tax_year"`
	ValidToTaxYear   *int    `json:"valid_to_tax_year"`
	ValidFromDate    *string `json:"valid_from_date"`
	ValidToDate      *string `json:"valid_to_date"`
	CreatedAt        string  `json:"created_at"`
}

// --- Interface ---

type TaxConfigService interface {
	ListTaxConfigs(ctx context.Context, page, limit int) ([]TaxConfigResponse, int64, error)
	GetTaxConfig(ctx context.Context, id string) (*TaxConfigResponse, error)
	CreateTaxConfig(ctx context.Context, req TaxConfigRequest, userID string) (*TaxConfigResponse, error)
	UpdateTaxConfig(ctx context.Context, id string, req TaxConfigRequest, userID string) (*TaxConfigResponse, error)
	DeleteTaxConfig(ctx context.Context, id string, userID string) error
}

type taxConfigService struct {
	repo      repository.TaxConfigRepository
	auditRepo repository.AuditRepository
	hub       *ws.Hub
}

func NewTaxConfigService(repo repository.TaxConfigRepository, auditRepo repository.AuditRepository, hub *ws.Hub) TaxConfigService {
	return &taxConfigService{repo: repo, auditRepo: auditRepo, hub: hub}
}

// --- Implementation ---

func (s *taxConfigService) ListTaxConfigs(ctx context.Context, page, limit int) ([]TaxConfigResponse, int64, error) {
	configs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tax configs: %w", err)
	}

	res := make([]TaxConfigResponse, 0, len(configs))
	for _, c := range configs {
		res = append(res, toTaxConfigResponse(c))
	}
	return res, total, nil
}

func (s *taxConfigService) GetTaxConfig(ctx context.Context, id string) (*TaxConfigResponse, error) {
	configID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tax config id: %w", err)
	}

	config, err := s.repo.FindByID(ctx, configID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tax config not found")
		}
		return nil, fmt.Errorf("failed to fetch tax config: %w", err)
	}

	res := toTaxConfigResponse(*config)
	return &res, nil
}

func (s *taxConfigService) CreateTaxConfig(ctx context.Context, req TaxConfigRequest, userID string) (*TaxConfigResponse, error) {
	config, err := buildConfig(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to create tax config: %w", err)
	}

	// Best-effort audit log and dashboard push
	_ = recordAudit(ctx, s.auditRepo, userID, model.ActionCreateTaxConfig, config.ID.String(), config.ConfigKey, req)
	s.publish(config.ConfigKey)

	res := toTaxConfigResponse(*config)
	return &res, nil
}

func (s *taxConfigService) UpdateTaxConfig(ctx context.Context, id string, req TaxConfigRequest, userID string) (*TaxConfigResponse, error) {
	configID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tax config id: %w", err)
	}

	existing, err := s.repo.FindByID(ctx, configID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tax config not found")
		}
		return nil, fmt.Errorf("failed to fetch tax config: %w", err)
	}

	updated, err := buildConfig(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update tax config: %w", err)
	}

	_ = recordAudit(ctx, s.auditRepo, userID, model.ActionUpdateTaxConfig, updated.ID.String(), updated.ConfigKey, req)
	s.publish(updated.ConfigKey)

	res := toTaxConfigResponse(*updated)
	return &res, nil
}

func (s *taxConfigService) DeleteTaxConfig(ctx context.Context, id string, userID string) error {
	configID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid tax config id: %w", err)
	}

	config, err := s.repo.FindByID(ctx, configID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tax config not found")
		}
		return fmt.Errorf("failed to fetch tax config: %w", err)
	}

	if err := s.repo.Delete(ctx, configID); err != nil {
		return fmt.Errorf("failed to delete tax config: %w", err)
	}

	_ = recordAudit(ctx, s.auditRepo, userID, model.ActionDeleteTaxConfig, id, config.ConfigKey, map[string]string{"deleted_id": id})
	s.publish(config.ConfigKey)

	return nil
}

// --- Helpers ---

func (s *taxConfigService) publish(key string) {
	if s.hub != nil {
		s.hub.Publish(ws.EventConfigChanged, map[string]string{"code": key})
	}
}

// buildConfig validates the request, including that the raw value actually
// parses under the declared value type, so bad values are rejected at write
// time instead of surfacing as warnings during evaluation.
func buildConfig(req TaxConfigRequest) (*model.TaxConfig, error) {
	if err := validateConfigValue(req.Value, req.ValueType); err != nil {
		return nil, err
	}

	validFrom, validTo, err := parseDateBounds(req.ValidFromDate, req.ValidToDate)
	if err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return &model.TaxConfig{
		ConfigKey:        req.ConfigKey,
		Value:            req.Value,
		ValueType:        req.ValueType,
		Description:      req.Description,
		IsActive:         isActive,
		ValidFromTaxYear: req.ValidFromTaxYear,
		ValidToTaxYear:   req.ValidToTaxYear,
		ValidFromDate:    validFrom,
		ValidToDate:      validTo,
	}, nil
}

func validateConfigValue(value, valueType string) error {
	switch valueType {
	case model.ConfigTypePercentage, model.ConfigTypeDecimal, model.ConfigTypeCurrency, model.ConfigTypeInteger:
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Errorf("value '%s' is not numeric: %w", value, err)
		}
	case model.ConfigTypeBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("value '%s' is not a boolean: %w", value, err)
		}
	case model.ConfigTypeDate:
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return fmt.Errorf("value '%s' is not a date (expected YYYY-MM-DD): %w", value, err)
		}
	case model.ConfigTypeString:
	default:
		return fmt.Errorf("unknown value type '%s'", valueType)
	}
	return nil
}

func toTaxConfigResponse(c model.TaxConfig) TaxConfigResponse {
	resp := TaxConfigResponse{
		ID:               c.ID.String(),
		ConfigKey:        c.ConfigKey,
		Value:            c.Value,
		ValueType:        c.ValueType,
		Description:      c.Description,
		IsActive:         c.IsActive,
		ValidFromTaxYear: c.ValidFromTaxYear,
		ValidToTaxYear:   c.ValidToTaxYear,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
	}
	if c.ValidFromDate != nil {
		s := c.ValidFromDate.Format("2006-01-02")
		resp.ValidFromDate = &s
	}
	if c.ValidToDate != nil {
		s := c.ValidToDate.Format("2006-01-02")
		resp.ValidToDate = &s
	}
	return resp
}
