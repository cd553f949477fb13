package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"proptax/internal/engine"
	"proptax/internal/model"
	"proptax/internal/repository"

	"go.uber.org/zap"
)

// --- DTOs ---

type EvaluateRequest struct {
	RuleCodes     []string       `json:"rule_codes"`
	CategoryCode  string         `json:"category_code"`
	TaxYear       int            `json:"tax_year" binding:"required"`
	ReferenceDate string         `json:"reference_date"` // YYYY-MM-DD, optional
	Context       map[string]any `json:"context"`
}

// --- Interface ---

// EvaluationService wraps the rule engine with storage access: it
// materializes the active rule/config sets, runs one evaluation and writes a
// best-effort audit entry.
type EvaluationService interface {
	Evaluate(ctx context.Context, req EvaluateRequest, userID string) (*engine.Output, error)
}

type evaluationService struct {
	ruleRepo   repository.TaxRuleRepository
	configRepo repository.TaxConfigRepository
	auditRepo  repository.AuditRepository
	engine     *engine.Engine
	logger     *zap.Logger
}

func NewEvaluationService(
	ruleRepo repository.TaxRuleRepository,
	configRepo repository.TaxConfigRepository,
	auditRepo repository.AuditRepository,
	logger *zap.Logger,
) EvaluationService {
	return &evaluationService{
		ruleRepo:   ruleRepo,
		configRepo: configRepo,
		auditRepo:  auditRepo,
		engine:     engine.New(logger),
		logger:     logger.Named("evaluation_service"),
	}
}

// --- Implementation ---

func (s *evaluationService) Evaluate(ctx context.Context, req EvaluateRequest, userID string) (*engine.Output, error) {
	if req.TaxYear == 0 {
		return nil, fmt.Errorf("tax_year is required")
	}

	var refDate *time.Time
	if req.ReferenceDate != "" {
		t, err := time.Parse("2006-01-02", req.ReferenceDate)
		if err != nil {
			return nil, fmt.Errorf("invalid reference_date format (expected YYYY-MM-DD): %w", err)
		}
		refDate = &t
	}

	rules, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax rules: %w", err)
	}
	categories, err := s.ruleRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule categories: %w", err)
	}
	configs, err := s.configRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax configs: %w", err)
	}

	engineRules := make([]engine.Rule, 0, len(rules))
	var decodeErrors []string
	for _, rule := range rules {
		er, convErr := toEngineRule(rule)
		if convErr != nil {
			// A rule with an unparseable document fails alone, not the batch.
			decodeErrors = append(decodeErrors, fmt.Sprintf("Rule %s: %v", rule.RuleCode, convErr))
			continue
		}
		engineRules = append(engineRules, er)
	}

	out := s.engine.Evaluate(engineRules, toEngineCategories(categories), toEngineConfigs(configs), engine.Input{
		RuleCodes:     req.RuleCodes,
		CategoryCode:  req.CategoryCode,
		TaxYear:       req.TaxYear,
		ReferenceDate: refDate,
		Context:       engine.Context(req.Context),
	})
	out.Errors = append(out.Errors, decodeErrors...)

	s.logger.Info("evaluation completed",
		zap.Int("tax_year", req.TaxYear),
		zap.Int("rules_applied", len(out.AppliedRules)),
		zap.Int("errors", len(out.Errors)),
	)

	// Best-effort audit log, never fails the evaluation
	if err := recordAudit(ctx, s.auditRepo, userID, model.ActionEvaluateTaxRules, "", fmt.Sprintf("tax year %d", req.TaxYear), map[string]any{
		"tax_year":      req.TaxYear,
		"category_code": req.CategoryCode,
		"rule_codes":    req.RuleCodes,
		"applied_rules": out.AppliedRules,
	}); err != nil {
		s.logger.Warn("audit log write failed", zap.Error(err))
	}

	return &out, nil
}

// --- Model conversion ---

func toEngineRule(m model.TaxRule) (engine.Rule, error) {
	conditions, err := decodeDocument(m.Conditions)
	if err != nil {
		return engine.Rule{}, fmt.Errorf("invalid conditions document: %w", err)
	}
	actions, err := decodeDocument(m.Actions)
	if err != nil {
		return engine.Rule{}, fmt.Errorf("invalid actions document: %w", err)
	}

	return engine.Rule{
		ID:               m.ID,
		RuleCode:         m.RuleCode,
		DisplayName:      m.DisplayName,
		RuleType:         m.RuleType,
		CategoryID:       m.CategoryID,
		Priority:         m.Priority,
		IsActive:         m.IsActive,
		ValidFromTaxYear: m.ValidFromTaxYear,
		ValidToTaxYear:   m.ValidToTaxYear,
		ValidFromDate:    m.ValidFromDate,
		ValidToDate:      m.ValidToDate,
		Conditions:       conditions,
		Actions:          actions,
		LegalReference:   m.LegalReference,
	}, nil
}

func toEngineCategories(categories []model.TaxRuleCategory) []engine.Category {
	out := make([]engine.Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, engine.Category{
			ID:           c.ID,
			CategoryCode: c.CategoryCode,
			Name:         c.Name,
		})
	}
	return out
}

func toEngineConfigs(configs []model.TaxConfig) []engine.Config {
	out := make([]engine.Config, 0, len(configs))
	for _, c := range configs {
		out = append(out, engine.Config{
			ID:               c.ID,
			ConfigKey:        c.ConfigKey,
			Value:            c.Value,
			ValueType:        c.ValueType,
			IsActive:         c.IsActive,
			ValidFromTaxYear: c.ValidFromTaxYear,
			ValidToTaxYear:   c.ValidToTaxYear,
			ValidFromDate:    c.ValidFromDate,
			ValidToDate:      c.ValidToDate,
			CreatedAt:        c.CreatedAt,
		})
	}
	return out
}

// decodeDocument parses a stored jsonb string into a map; empty documents
// decode to nil (vacuous conditions, no-op actions).
func decodeDocument(raw string) (map[string]any, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

