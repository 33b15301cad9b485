package policy

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/pricing"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
)

func dp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func quote(total string) *pricing.Breakdown {
	return &pricing.Breakdown{Currency: "INR", Total: decimal.RequireFromString(total)}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		req          EvaluationRequest
		wantDecision Decision
		wantWarnings int
		wantViolated int
		wantNotices  int
	}{
		{
			name:         "clean proposal passes",
			req:          EvaluationRequest{Pricing: quote("100"), Claims: []string{}, Citations: []string{"kb/a.md"}},
			wantDecision: DecisionPass,
		},
		{
			name:         "banned claim denies",
			req:          EvaluationRequest{Pricing: quote("100"), Claims: []string{"guaranteed"}, Citations: []string{"kb/a.md"}},
			wantDecision: DecisionDeny,
			wantViolated: 1,
		},
		{
			name: "over budget warns",
			req: EvaluationRequest{
				Customer:  api.Customer{BudgetMax: dp("150000")},
				Pricing:   quote("188800"),
				Citations: []string{"x"},
			},
			wantDecision: DecisionWarn,
			wantWarnings: 1,
		},
		{
			name: "under floor and fallback and no citations",
			req: EvaluationRequest{
				Customer:     api.Customer{BudgetMin: dp("500")},
				Pricing:      quote("100"),
				UsedFallback: true,
			},
			wantDecision: DecisionWarn,
			wantWarnings: 2,
			wantNotices:  1,
		},
		{
			name: "under floor alone stays a pass",
			req: EvaluationRequest{
				Customer:  api.Customer{BudgetMin: dp("500")},
				Pricing:   quote("100"),
				Claims:    []string{},
				Citations: []string{"kb/a.md"},
			},
			wantDecision: DecisionPass,
			wantNotices:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewEngine().Evaluate(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDecision, res.Decision)
			assert.Len(t, res.Warnings, tt.wantWarnings)
			assert.Len(t, res.Violations, tt.wantViolated)
			assert.Len(t, res.Notices, tt.wantNotices)
			assert.Equal(t, 5, res.PoliciesRan)
		})
	}
}

func TestEvaluateCustomAndDisabledPolicies(t *testing.T) {
	e := NewEngine()
	e.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	e.AddPolicy(Policy{ID: "off", Type: PolicyTypeBannedClaims, Severity: SeverityError, Enabled: false})

	res, err := e.Evaluate(context.Background(), EvaluationRequest{
		Pricing:   quote("2000"),
		Claims:    []string{},
		Citations: []string{"kb/a.md"},
		CustomPolicies: []Policy{{
			ID: "cap", Name: "Deal Cap", Type: PolicyTypeTotalLimit, Severity: SeverityError,
			Threshold: decimal.NewFromInt(1000), Enabled: true,
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, DecisionDeny, res.Decision)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "Quote total (2000.00) exceeds limit (1000.00)", res.Violations[0].Message)
	assert.Equal(t, 6, res.PoliciesRan)
	assert.Equal(t, 2026, res.EvaluatedAt.Year())
}

func TestEvaluateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine().Evaluate(ctx, EvaluationRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
