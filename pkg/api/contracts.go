// Package api defines the shared contracts passed between the proposal engines.
package api

import (
	"strings"

	"github.com/shopspring/decimal"

	perrors "github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/errors"
)

const (
	DefaultRegion        = "IN"
	DefaultTimelineWeeks = 8
)

// Customer is the prospect a proposal is written for.
type Customer struct {
	Company        string           `json:"company"`
	Industry       string           `json:"industry"`
	Region         string           `json:"region"`
	UseCase        string           `json:"use_case"`
	Objectives     []string         `json:"objectives"`
	TimelineWeeks  int              `json:"timeline_weeks"`
	BudgetMin      *decimal.Decimal `json:"budget_min,omitempty"`
	BudgetMax      *decimal.Decimal `json:"budget_max,omitempty"`
	DiscoveryNotes string           `json:"discovery_notes,omitempty"`
}

// WithDefaults fills region and timeline when unset.
func (c Customer) WithDefaults() Customer {
	if strings.TrimSpace(c.Region) == "" {
		c.Region = DefaultRegion
	}
	if c.TimelineWeeks == 0 {
		c.TimelineWeeks = DefaultTimelineWeeks
	}
	if c.Objectives == nil {
		c.Objectives = []string{}
	}
	return c
}

// Validate checks required fields. The engines themselves never call it.
func (c Customer) Validate() error {
	switch {
	case strings.TrimSpace(c.Company) == "":
		return perrors.NewValidationError("company", "is required")
	case strings.TrimSpace(c.Industry) == "":
		return perrors.NewValidationError("industry", "is required")
	case strings.TrimSpace(c.UseCase) == "":
		return perrors.NewValidationError("use_case", "is required")
	case c.TimelineWeeks < 0:
		return perrors.NewValidationError("timeline_weeks", "must be positive")
	case c.BudgetMin != nil && c.BudgetMin.IsNegative():
		return perrors.NewValidationError("budget_min", "must not be negative")
	case c.BudgetMax != nil && c.BudgetMax.IsNegative():
		return perrors.NewValidationError("budget_max", "must not be negative")
	case c.BudgetMin != nil && c.BudgetMax != nil && c.BudgetMin.GreaterThan(*c.BudgetMax):
		return perrors.NewValidationError("budget_min", "exceeds budget_max")
	}
	return nil
}

// SelectedSKU is a product the planner chose, with its reason.
type SelectedSKU struct {
	SKU      string `json:"sku"`
	Reason   string `json:"reason"`
	MustHave bool   `json:"must_have"`
}

type ArchitectureItem struct {
	Component string `json:"component"`
	Role      string `json:"role"`
}

type Phase struct {
	Phase string `json:"phase"`
	Weeks int    `json:"weeks"`
}

// PricingItem is a requested quantity of a SKU.
type PricingItem struct {
	SKU string          `json:"sku"`
	Qty decimal.Decimal `json:"qty"`
}

type RiskMitigation struct {
	Risk       string `json:"risk"`
	Mitigation string `json:"mitigation"`
}

type ROISummary struct {
	PeriodMonths int      `json:"period_months"`
	Benefits     []string `json:"benefits"`
}

// Plan is the structured intermediate artifact rendered into a proposal.
type Plan struct {
	Strategy           string             `json:"strategy"`
	Customer           Customer           `json:"customer"`
	Objectives         []string           `json:"objectives"`
	SelectedSKUs       []SelectedSKU      `json:"selected_skus"`
	SolutionOverview   string             `json:"solution_overview"`
	Architecture       []ArchitectureItem `json:"architecture"`
	ImplementationPlan []Phase            `json:"implementation_plan"`
	PricingItems       []PricingItem      `json:"pricing_items"`
	RisksMitigations   []RiskMitigation   `json:"risks_mitigations"`
	ROISummary         ROISummary         `json:"roi_summary"`
	Citations          []string           `json:"citations"`
}

// TotalWeeks sums the implementation phases.
func (p Plan) TotalWeeks() int {
	total := 0
	for _, ph := range p.ImplementationPlan {
		total += ph.Weeks
	}
	return total
}
