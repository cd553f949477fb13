package service

import (
	"context"
	"testing"

	"proptax/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func newRuleService(repo *fakeRuleRepo, auditRepo *fakeAuditRepo) TaxRuleService {
	return NewTaxRuleService(repo, auditRepo, fakeTxManager{}, nil)
}

func validRuleRequest(code string) TaxRuleRequest {
	return TaxRuleRequest{
		RuleCode:         code,
		DisplayName:      "Base property tax",
		RuleType:         "CALCULATION",
		ValidFromTaxYear: 2020,
		Conditions:       map[string]any{"assessed_value": map[string]any{"$gt": 0}},
		Actions:          map[string]any{"base_tax": map[string]any{"$formula": "assessed_value * 0.02"}},
	}
}

func TestCreateTaxRuleDefaults(t *testing.T) {
	repo := &fakeRuleRepo{}
	auditRepo := &fakeAuditRepo{}
	svc := newRuleService(repo, auditRepo)

	res, err := svc.CreateTaxRule(context.Background(), validRuleRequest("BASE_TAX"), "")
	require.NoError(t, err)

	assert.Equal(t, "BASE_TAX", res.RuleCode)
	assert.Equal(t, 100, res.Priority)
	assert.True(t, res.IsActive)

	require.Len(t, repo.rules, 1)
	assert.JSONEq(t, `{"assessed_value":{"$gt":0}}`, repo.rules[0].Conditions)

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionCreateTaxRule, auditRepo.entries[0].Action)
}

func TestCreateTaxRuleDuplicateCode(t *testing.T) {
	svc := newRuleService(&fakeRuleRepo{}, &fakeAuditRepo{})

	_, err := svc.CreateTaxRule(context.Background(), validRuleRequest("BASE_TAX"), "")
	require.NoError(t, err)

	_, err = svc.CreateTaxRule(context.Background(), validRuleRequest("BASE_TAX"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateTaxRuleUnknownCategory(t *testing.T) {
	svc := newRuleService(&fakeRuleRepo{}, &fakeAuditRepo{})

	req := validRuleRequest("BASE_TAX")
	req.CategoryCode = "NOPE"

	_, err := svc.CreateTaxRule(context.Background(), req, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category code")
}

func TestCreateTaxRuleResolvesCategory(t *testing.T) {
	repo := &fakeRuleRepo{}
	svc := newRuleService(repo, &fakeAuditRepo{})

	_, err := svc.CreateCategory(context.Background(), TaxRuleCategoryRequest{
		CategoryCode: "EXEMPTIONS",
		Name:         "Exemptions",
	}, "")
	require.NoError(t, err)

	req := validRuleRequest("HOMESTEAD")
	req.CategoryCode = "EXEMPTIONS"

	_, err = svc.CreateTaxRule(context.Background(), req, "")
	require.NoError(t, err)

	require.Len(t, repo.rules, 1)
	require.NotNil(t, repo.rules[0].CategoryID)
	assert.Equal(t, repo.categories[0].ID, *repo.rules[0].CategoryID)
}

func TestCreateTaxRuleBadDateBound(t *testing.T) {
	svc := newRuleService(&fakeRuleRepo{}, &fakeAuditRepo{})

	req := validRuleRequest("BASE_TAX")
	req.ValidFromDate = "15-03-2024"

	_, err := svc.CreateTaxRule(context.Background(), req, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid_from_date")
}

func TestUpdateTaxRuleKeepsIdentity(t *testing.T) {
	repo := &fakeRuleRepo{}
	svc := newRuleService(repo, &fakeAuditRepo{})

	created, err := svc.CreateTaxRule(context.Background(), validRuleRequest("BASE_TAX"), "")
	require.NoError(t, err)

	req := validRuleRequest("BASE_TAX")
	req.Priority = 250

	updated, err := svc.UpdateTaxRule(context.Background(), created.ID, req, "")
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 250, updated.Priority)
}

func TestUpdateTaxRuleNotFound(t *testing.T) {
	svc := newRuleService(&fakeRuleRepo{}, &fakeAuditRepo{})

	_, err := svc.UpdateTaxRule(context.Background(), "00000000-0000-0000-0000-000000000001", validRuleRequest("X"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeleteTaxRuleWritesAudit(t *testing.T) {
	repo := &fakeRuleRepo{}
	auditRepo := &fakeAuditRepo{}
	svc := newRuleService(repo, auditRepo)

	created, err := svc.CreateTaxRule(context.Background(), validRuleRequest("BASE_TAX"), "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTaxRule(context.Background(), created.ID, ""))
	assert.Empty(t, repo.rules)

	require.Len(t, auditRepo.entries, 2)
	assert.Equal(t, model.ActionDeleteTaxRule, auditRepo.entries[1].Action)
}

func TestCreateCategoryDuplicateCode(t *testing.T) {
	svc := newRuleService(&fakeRuleRepo{}, &fakeAuditRepo{})

	req := TaxRuleCategoryRequest{CategoryCode: "EXEMPTIONS", Name: "Exemptions"}
	_, err := svc.CreateCategory(context.Background(), req, "")
	require.NoError(t, err)

	_, err = svc.CreateCategory(context.Background(), req, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
