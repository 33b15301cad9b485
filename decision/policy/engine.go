// Package policy provides the proposal review engine.
// Evaluates commercial and compliance policies against a generated proposal.
package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/pricing"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
)

// PolicyType defines the type of policy
type PolicyType string

const (
	PolicyTypeBannedClaims      PolicyType = "banned_claims"
	PolicyTypeBudgetCeiling     PolicyType = "budget_ceiling"
	PolicyTypeBudgetFloor       PolicyType = "budget_floor"
	PolicyTypeShortlistFallback PolicyType = "shortlist_fallback"
	PolicyTypeMissingCitations  PolicyType = "missing_citations"
	PolicyTypeTotalLimit        PolicyType = "total_limit"
)

// Severity defines policy violation severity
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Decision is the policy evaluation outcome
type Decision string

const (
	DecisionPass Decision = "pass"
	DecisionWarn Decision = "warn"
	DecisionDeny Decision = "deny"
)

// Policy defines a review rule. Threshold is only read by total_limit.
type Policy struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Type        PolicyType      `json:"type" yaml:"type"`
	Severity    Severity        `json:"severity" yaml:"severity"`
	Threshold   decimal.Decimal `json:"threshold" yaml:"-"`
	Enabled     bool            `json:"enabled" yaml:"enabled"`
}

// Violation represents a policy violation
type Violation struct {
	PolicyID   string `json:"policy_id"`
	PolicyName string `json:"policy_name"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
}

// Warning represents a policy warning
type Warning struct {
	PolicyID string `json:"policy_id"`
	Message  string `json:"message"`
}

// EvaluationRequest contains the input for policy evaluation
type EvaluationRequest struct {
	Customer       api.Customer
	Pricing        *pricing.Breakdown
	Claims         []string
	UsedFallback   bool
	Citations      []string
	CustomPolicies []Policy
}

// EvaluationResult contains the policy evaluation outcome. Info-severity
// hits land in Notices and never change the decision.
type EvaluationResult struct {
	Decision    Decision    `json:"decision"`
	Violations  []Violation `json:"violations"`
	Warnings    []Warning   `json:"warnings"`
	Notices     []Warning   `json:"notices"`
	PoliciesRan int         `json:"policies_ran"`
	EvaluatedAt time.Time   `json:"evaluated_at"`
}

// Engine evaluates policies against proposals
type Engine struct {
	policies []Policy
	now      func() time.Time
}

// NewEngine creates a policy engine with the default policies
func NewEngine() *Engine {
	return &Engine{
		policies: defaultPolicies(),
		now:      time.Now,
	}
}

// AddPolicy adds a custom policy
func (e *Engine) AddPolicy(p Policy) {
	e.policies = append(e.policies, p)
}

// Evaluate runs all enabled policies against the proposal
func (e *Engine) Evaluate(ctx context.Context, req EvaluationRequest) (*EvaluationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &EvaluationResult{
		Decision:    DecisionPass,
		Violations:  make([]Violation, 0),
		Warnings:    make([]Warning, 0),
		Notices:     make([]Warning, 0),
		EvaluatedAt: e.now(),
	}

	all := make([]Policy, 0, len(e.policies)+len(req.CustomPolicies))
	all = append(all, e.policies...)
	all = append(all, req.CustomPolicies...)

	for _, p := range all {
		if !p.Enabled {
			continue
		}

		result.PoliciesRan++
		msg, hit := e.check(p, req)
		if !hit {
			continue
		}

		switch p.Severity {
		case SeverityInfo:
			result.Notices = append(result.Notices, Warning{PolicyID: p.ID, Message: msg})
			continue
		case SeverityError:
			result.Violations = append(result.Violations, Violation{
				PolicyID:   p.ID,
				PolicyName: p.Name,
				Message:    msg,
				Severity:   string(p.Severity),
			})
			result.Decision = DecisionDeny
			continue
		}

		result.Warnings = append(result.Warnings, Warning{PolicyID: p.ID, Message: msg})
		if result.Decision == DecisionPass {
			result.Decision = DecisionWarn
		}
	}

	return result, nil
}

func (e *Engine) check(p Policy, req EvaluationRequest) (string, bool) {
	switch p.Type {
	case PolicyTypeBannedClaims:
		if len(req.Claims) > 0 {
			return fmt.Sprintf("Proposal contains banned claims: %s", strings.Join(req.Claims, ", ")), true
		}

	case PolicyTypeBudgetCeiling:
		if req.Pricing != nil && req.Customer.BudgetMax != nil && req.Pricing.Total.GreaterThan(*req.Customer.BudgetMax) {
			return fmt.Sprintf("Quote total (%s %s) exceeds customer budget (%s)",
				req.Pricing.Currency, req.Pricing.Total.StringFixed(2), req.Customer.BudgetMax.StringFixed(2)), true
		}

	case PolicyTypeBudgetFloor:
		if req.Pricing != nil && req.Customer.BudgetMin != nil && req.Pricing.Total.LessThan(*req.Customer.BudgetMin) {
			return fmt.Sprintf("Quote total (%s %s) is below customer minimum budget (%s)",
				req.Pricing.Currency, req.Pricing.Total.StringFixed(2), req.Customer.BudgetMin.StringFixed(2)), true
		}

	case PolicyTypeShortlistFallback:
		if req.UsedFallback {
			return "No product matched every requirement; the full catalog was offered", true
		}

	case PolicyTypeMissingCitations:
		if len(req.Citations) == 0 {
			return "Proposal cites no supporting documents", true
		}

	case PolicyTypeTotalLimit:
		if req.Pricing != nil && req.Pricing.Total.GreaterThan(p.Threshold) {
			return fmt.Sprintf("Quote total (%s) exceeds limit (%s)",
				req.Pricing.Total.StringFixed(2), p.Threshold.StringFixed(2)), true
		}
	}

	return "", false
}

func defaultPolicies() []Policy {
	return []Policy{
		{
			ID:          "no-banned-claims",
			Name:        "No Banned Claims",
			Description: "Block proposals that make prohibited marketing claims",
			Type:        PolicyTypeBannedClaims,
			Severity:    SeverityError,
			Enabled:     true,
		},
		{
			ID:          "within-budget",
			Name:        "Within Budget",
			Description: "Warn when the quote exceeds the customer's maximum budget",
			Type:        PolicyTypeBudgetCeiling,
			Severity:    SeverityWarning,
			Enabled:     true,
		},
		{
			ID:          "above-budget-floor",
			Name:        "Above Budget Floor",
			Description: "Note when the quote is below the customer's minimum budget",
			Type:        PolicyTypeBudgetFloor,
			Severity:    SeverityInfo,
			Enabled:     true,
		},
		{
			ID:          "shortlist-fallback",
			Name:        "Requirements Matched",
			Description: "Warn when no product satisfied the stated requirements",
			Type:        PolicyTypeShortlistFallback,
			Severity:    SeverityWarning,
			Enabled:     true,
		},
		{
			ID:          "has-citations",
			Name:        "Has Citations",
			Description: "Warn when nothing was retrieved to support the proposal",
			Type:        PolicyTypeMissingCitations,
			Severity:    SeverityWarning,
			Enabled:     true,
		},
	}
}
