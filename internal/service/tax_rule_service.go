package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"proptax/internal/model"
	"proptax/internal/repository"
	ws "proptax/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type TaxRuleRequest struct {
	RuleCode         string         `json:"rule_code" binding:"required"`
	DisplayName      string         `json:"display_name" binding:"required"`
	RuleType         string         `json:"rule_type"`
	CategoryCode     string         `json:"category_code"`
	Priority         int            `json:"priority"`
	IsActive         *bool          `json:"is_active"`
	ValidFromTaxYear int            `json:"valid_from_tax_year" binding:"required"`
	ValidToTaxYear   *int           `json:"valid_to_tax_year"`
	ValidFromDate    string         `json:"valid_from_date"` // YYYY-MM-DD, optional
	ValidToDate      string         `json:"valid_to_date"`
	Conditions       map[string]any `json:"conditions"`
	Actions          map[string]any `json:"actions" binding:"required"`
	LegalReference   string         `json:"legal_reference"`
}

type TaxRuleResponse struct {
	ID               string         `json:"id"`
	RuleCode         string         `json:"rule_code"`
	DisplayName      string         `json:"display_name"`
	RuleType         string         `json:"rule_type"`
	CategoryCode     string         `json:"category_code,omitempty"`
	Priority         int            `json:"priority"`
	IsActive         bool           `json:"is_active"`
	ValidFromTaxYear int            `json:"valid_from_tax_year"`
	ValidToTaxYear   *int           `json:"valid_to_tax_year"`
	ValidFromDate    *string        `json:"valid_from_date"`
	ValidToDate      *string        `json:"valid_to_date"`
	Conditions       map[string]any `json:"conditions"`
	Actions          map[string]any `json:"actions"`
	LegalReference   string         `json:"legal_reference"`
	CreatedAt        string         `json:"created_at"`
}

type TaxRuleCategoryRequest struct {
	CategoryCode string `json:"category_code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
}

type TaxRuleCategoryResponse struct {
	ID           string `json:"id"`
	CategoryCode string `json:"category_code"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CreatedAt    string `json:"created_at"`
}

// --- Interface ---

type TaxRuleService interface {
	ListTaxRules(ctx context.Context, page, limit int) ([]TaxRuleResponse, int64, error)
	GetTaxRule(ctx context.Context, id string) (*TaxRuleResponse, error)
	CreateTaxRule(ctx context.Context, req TaxRuleRequest, userID string) (*TaxRuleResponse, error)
	UpdateTaxRule(ctx context.Context, id string, req TaxRuleRequest, userID string) (*TaxRuleResponse, error)
	DeleteTaxRule(ctx context.Context, id string, userID string) error

	ListCategories(ctx context.Context) ([]TaxRuleCategoryResponse, error)
	CreateCategory(ctx context.Context, req TaxRuleCategoryRequest, userID string) (*TaxRuleCategoryResponse, error)
	UpdateCategory(ctx context.Context, id string, req TaxRuleCategoryRequest, userID string) (*TaxRuleCategoryResponse, error)
	DeleteCategory(ctx context.Context, id string, userID string) error
}

type taxRuleService struct {
	repo      repository.TaxRuleRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewTaxRuleService(repo repository.TaxRuleRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, hub *ws.Hub) TaxRuleService {
	return &taxRuleService{repo: repo, auditRepo: auditRepo, txManager: txManager, hub: hub}
}

// --- Implementation ---

func (s *taxRuleService) ListTaxRules(ctx context.Context, page, limit int) ([]TaxRuleResponse, int64, error) {
	rules, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tax rules: %w", err)
	}

	res := make([]TaxRuleResponse, 0, len(rules))
	for _, r := range rules {
		res = append(res, toTaxRuleResponse(r))
	}
	return res, total, nil
}

func (s *taxRuleService) GetTaxRule(ctx context.Context, id string) (*TaxRuleResponse, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rule id: %w", err)
	}

	rule, err := s.repo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tax rule not found")
		}
		return nil, fmt.Errorf("failed to fetch tax rule: %w", err)
	}

	res := toTaxRuleResponse(*rule)
	return &res, nil
}

func (s *taxRuleService) CreateTaxRule(ctx context.Context, req TaxRuleRequest, userID string) (*TaxRuleResponse, error) {
	rule, err := s.buildRule(ctx, req)
	if err != nil {
		return nil, err
	}

	// Uniqueness check and insert run in one transaction
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByCode(txCtx, req.RuleCode); err == nil {
			return fmt.Errorf("a tax rule with code '%s' already exists", req.RuleCode)
		}
		if err := s.repo.Create(txCtx, rule); err != nil {
			return fmt.Errorf("failed to create tax rule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort audit log and dashboard push
	_ = recordAudit(ctx, s.auditRepo, userID, model.ActionCreateTaxRule, rule.ID.String(), rule.RuleCode, req)
	s.publish(ws.EventRuleChanged, rule.RuleCode)

	res := toTaxRuleResponse(*rule)
	return &res, nil
}

func (s *taxRuleService) UpdateTaxRule(ctx context.Context, id string, req TaxRuleRequest, userID string) (*TaxRuleResponse, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rule id: %w", err)
	}

	existing, err := s.repo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tax rule not found")
		}
		return nil, fmt.Errorf("failed to fetch tax rule: %w", err)
	}

	updated, err := s.buildRule(ctx, req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if existing.RuleCode != req.RuleCode {
			if _, err := s.repo.FindByCode(txCtx, req.RuleCode); err == nil {
				return fmt.Errorf("a tax rule with code '%s' already exists", req.RuleCode)
			}
		}
		if err := s.repo.Update(txCtx, updated); err != nil {
			return fmt.Errorf("failed to update tax rule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = recordAudit(ctx, s.auditRepo, userID, model.ActionUpdateTaxRule, updated.ID.String(), updated.RuleCode, req)
	s.publish(ws.EventRuleChanged, updated.RuleCode)

	res := toTaxRuleResponse(*updated)
	return &res, nil
}

func (s *taxRuleService) DeleteTaxRule(ctx context.Context, id string, userID string) error {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid tax rule id: %w", err)
	}

	rule, err := s.repo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tax rule not found")
		}
		return fmt.Errorf("failed to fetch tax rule: %w", err)
	}

	if err := s.repo.Delete(ctx, ruleID); err != nil {
		return fmt.Errorf("failed to delete tax rule: %w", err)
	}

	_ = recordAudit(ctx, s.auditRepo, userID, model.ActionDeleteTaxRule, id, rule.RuleCode, map[string]string{"deleted_id": id})
	s.publish(ws.EventRuleChanged, rule.RuleCode)

	return nil
}

func (s *taxRuleService) ListCategories(ctx context.Context) ([]TaxRuleCategoryResponse, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	res := make([]TaxRuleCategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, toCategoryResponse(c))
	}
	return res, nil
}

func (s *taxRuleService) CreateCategory(ctx context.Context, req TaxRuleCategoryRequest, userID string) (*TaxRuleCategoryResponse, error) {
	if _, err := s.repo.FindCategoryByCode(ctx, req.CategoryCode); err == nil {
		return nil, fmt.Errorf("a category with code '%s' already exists", req.CategoryCode)
	}

	category := &model.TaxRuleCategory{
		CategoryCode: req.CategoryCode,
		Name:         req.Name,
		Description:  req.Description,
	}

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	_ = recordAudit(ctx, s.auditRepo, userID, model.ActionCreateTaxCategory, category.ID.String(), category.CategoryCode, req)
	s.publish(ws.EventCategoryChanged, category.CategoryCode)

	res := toCategoryResponse(*category)
	return &res, nil
}

func (s *taxRuleService) UpdateCategory(ctx context.Context, id string, req TaxRuleCategoryRequest, userID string) (*TaxRuleCategoryResponse, error) {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid category id: %w", err)
	}

	category, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to fetch category: %w", err)
	}

	category.CategoryCode = req.CategoryCode
	category.Name = req.Name
	category.Description = req.Description

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	_ = recordAudit(ctx, s.auditRepo, userID, model.ActionUpdateTaxCategory, id, category.CategoryCode, req)
	s.publish(ws.EventCategoryChanged, category.CategoryCode)

	res := toCategoryResponse(*category)
	return &res, nil
}

func (s *taxRuleService) DeleteCategory(ctx context.Context, id string, userID string) error {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid category id: %w", err)
	}

	category, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category not found")
		}
		return fmt.Errorf("failed to fetch category: %w", err)
	}

	if err := s.repo.DeleteCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	_ = recordAudit(ctx, s.auditRepo, userID, model.ActionDeleteTaxCategory, id, category.CategoryCode, map[string]string{"deleted_id": id})
	s.publish(ws.EventCategoryChanged, category.CategoryCode)

	return nil
}

// --- Helpers ---

// buildRule validates the request and assembles a storable rule, resolving
// the optional category code and serializing the condition/action documents.
func (s *taxRuleService) buildRule(ctx context.Context, req TaxRuleRequest) (*model.TaxRule, error) {
	var categoryID *uuid.UUID
	if req.CategoryCode != "" {
		category, err := s.repo.FindCategoryByCode(ctx, req.CategoryCode)
		if err != nil {
			return nil, fmt.Errorf("unknown category code '%s'", req.CategoryCode)
		}
		categoryID = &category.ID
	}

	validFrom, validTo, err := parseDateBounds(req.ValidFromDate, req.ValidToDate)
	if err != nil {
		return nil, err
	}

	conditionsJSON, err := json.Marshal(req.Conditions)
	if err != nil {
		return nil, fmt.Errorf("invalid conditions document: %w", err)
	}
	actionsJSON, err := json.Marshal(req.Actions)
	if err != nil {
		return nil, fmt.Errorf("invalid actions document: %w", err)
	}

	priority := req.Priority
	if priority == 0 {
		priority = 100
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return &model.TaxRule{
		RuleCode:         req.RuleCode,
		DisplayName:      req.DisplayName,
		RuleType:         req.RuleType,
		CategoryID:       categoryID,
		Priority:         priority,
		IsActive:         isActive,
		ValidFromTaxYear: req.ValidFromTaxYear,
		ValidToTaxYear:   req.ValidToTaxYear,
		ValidFromDate:    validFrom,
		ValidToDate:      validTo,
		Conditions:       string(conditionsJSON),
		Actions:          string(actionsJSON),
		LegalReference:   req.LegalReference,
	}, nil
}

func (s *taxRuleService) publish(eventType string, code string) {
	if s.hub != nil {
		s.hub.Publish(eventType, map[string]string{"code": code})
	}
}

func parseDateBounds(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid valid_from_date format (expected YYYY-MM-DD): %w", err)
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid valid_to_date format (expected YYYY-MM-DD): %w", err)
		}
		to = &t
	}
	return from, to, nil
}

func toTaxRuleResponse(r model.TaxRule) TaxRuleResponse {
	conditions, _ := decodeDocument(r.Conditions)
	actions, _ := decodeDocument(r.Actions)

	resp := TaxRuleResponse{
		ID:               r.ID.String(),
		RuleCode:         r.RuleCode,
		DisplayName:      r.DisplayName,
		RuleType:         r.RuleType,
		Priority:         r.Priority,
		IsActive:         r.IsActive,
		ValidFromTaxYear: r.ValidFromTaxYear,
		ValidToTaxYear:   r.ValidToTaxYear,
		Conditions:       conditions,
		Actions:          actions,
		LegalReference:   r.LegalReference,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.Category != nil {
		resp.CategoryCode = r.Category.CategoryCode
	}
	if r.ValidFromDate != nil {
		s := r.ValidFromDate.Format("2006-01-02")
		resp.ValidFromDate = &s
	}
	if r.ValidToDate != nil {
		s := r.ValidToDate.Format("2006-01-02")
		resp.ValidToDate = &s
	}
	return resp
}

func toCategoryResponse(c model.TaxRuleCategory) TaxRuleCategoryResponse {
	return TaxRuleCategoryResponse{
		ID:           c.ID.String(),
		CategoryCode: c.CategoryCode,
		Name:         c.Name,
		Description:  c.Description,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}
