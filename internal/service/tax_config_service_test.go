package service

import (
	"context"
	"testing"

	"proptax/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfigService(repo *fakeConfigRepo, auditRepo *fakeAuditRepo) TaxConfigService {
	return NewTaxConfigService(repo, auditRepo, nil)
}

func validConfigRequest() TaxConfigRequest {
	return TaxConfigRequest{
		ConfigKey:        "TAX_RATE",
		Value:            "0.02",
		ValueType:        model.ConfigTypePercentage,
		ValidFromTaxYear: 2020,
	}
}

func TestCreateTaxConfig(t *testing.T) {
	repo := &fakeConfigRepo{}
	auditRepo := &fakeAuditRepo{}
	svc := newConfigService(repo, auditRepo)

	res, err := svc.CreateTaxConfig(context.Background(), validConfigRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, "TAX_RATE", res.ConfigKey)
	assert.True(t, res.IsActive)
	require.Len(t, repo.configs, 1)

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionCreateTaxConfig, auditRepo.entries[0].Action)
}

func TestCreateTaxConfigValidatesValue(t *testing.T) {
	svc := newConfigService(&fakeConfigRepo{}, &fakeAuditRepo{})

	tests := []struct {
		name      string
		value     string
		valueType string
	}{
		{"non-numeric percentage", "two percent", model.ConfigTypePercentage},
		{"non-numeric currency", "lots", model.ConfigTypeCurrency},
		{"non-boolean", "maybe", model.ConfigTypeBoolean},
		{"malformed date", "2024/01/01", model.ConfigTypeDate},
		{"unknown type", "x", "BLOB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validConfigRequest()
			req.Value = tt.value
			req.ValueType = tt.valueType

			_, err := svc.CreateTaxConfig(context.Background(), req, "")
			require.Error(t, err)
		})
	}
}

func TestCreateTaxConfigAcceptsStringAnything(t *testing.T) {
	svc := newConfigService(&fakeConfigRepo{}, &fakeAuditRepo{})

	req := validConfigRequest()
	req.ConfigKey = "JURISDICTION_NAME"
	req.Value = "Travis County"
	req.ValueType = model.ConfigTypeString

	_, err := svc.CreateTaxConfig(context.Background(), req, "")
	require.NoError(t, err)
}

func TestUpdateTaxConfigNotFound(t *testing.T) {
	svc := newConfigService(&fakeConfigRepo{}, &fakeAuditRepo{})

	_, err := svc.UpdateTaxConfig(context.Background(), "00000000-0000-0000-0000-000000000001", validConfigRequest(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeleteTaxConfig(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := newConfigService(repo, &fakeAuditRepo{})

	created, err := svc.CreateTaxConfig(context.Background(), validConfigRequest(), "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTaxConfig(context.Background(), created.ID, ""))
	assert.Empty(t, repo.configs)
}
