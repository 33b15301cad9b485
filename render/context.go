// Package render turns a proposal plan and its pricing into documents.
package render

import (
	"strings"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/pricing"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
)

// SelectedProduct is a chosen SKU resolved to its display name.
type SelectedProduct struct {
	SKU    string `json:"sku"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Context is everything a renderer needs.
type Context struct {
	Title              string                 `json:"title"`
	Company            string                 `json:"company"`
	Industry           string                 `json:"industry"`
	Region             string                 `json:"region"`
	UseCase            string                 `json:"use_case"`
	Objectives         []string               `json:"objectives"`
	SolutionOverview   string                 `json:"solution_overview"`
	SelectedSKUs       []SelectedProduct      `json:"selected_skus"`
	Architecture       []api.ArchitectureItem `json:"architecture"`
	ImplementationPlan []api.Phase            `json:"implementation_plan"`
	Pricing            *pricing.Breakdown     `json:"pricing_breakdown"`
	RisksMitigations   []api.RiskMitigation   `json:"risks_mitigations"`
	ROISummary         api.ROISummary         `json:"roi_summary"`
	Assumptions        []string               `json:"assumptions"`
	Citations          []string               `json:"citations"`
}

// NameFunc resolves a SKU to a product name; "" when unknown.
type NameFunc func(sku string) string

// NewContext assembles a rendering context from a plan.
func NewContext(plan api.Plan, breakdown *pricing.Breakdown, names NameFunc, assumptions []string) Context {
	selected := make([]SelectedProduct, 0, len(plan.SelectedSKUs))
	for _, s := range plan.SelectedSKUs {
		name := ""
		if names != nil {
			name = names(s.SKU)
		}
		selected = append(selected, SelectedProduct{SKU: s.SKU, Name: name, Reason: s.Reason})
	}

	if breakdown == nil {
		breakdown = &pricing.Breakdown{Items: []pricing.ItemResult{}}
	}

	c := plan.Customer
	return Context{
		Title:              "Proposal for " + c.Company,
		Company:            c.Company,
		Industry:           c.Industry,
		Region:             c.Region,
		UseCase:            c.UseCase,
		Objectives:         plan.Objectives,
		SolutionOverview:   plan.SolutionOverview,
		SelectedSKUs:       selected,
		Architecture:       plan.Architecture,
		ImplementationPlan: plan.ImplementationPlan,
		Pricing:            breakdown,
		RisksMitigations:   plan.RisksMitigations,
		ROISummary:         plan.ROISummary,
		Assumptions:        assumptions,
		Citations:          plan.Citations,
	}
}

// FileName returns "proposal_<Company>.<ext>" with spaces replaced.
func FileName(company, ext string) string {
	return "proposal_" + strings.ReplaceAll(strings.TrimSpace(company), " ", "_") + "." + ext
}
