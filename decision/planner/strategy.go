// Package planner turns a customer, a shortlist and retrieved snippets into a
// structured proposal plan.
package planner

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/catalog"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/retrieval"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
)

// Input is everything a strategy may use.
type Input struct {
	Customer   api.Customer
	Objectives []string
	Shortlist  []catalog.Product
	Snippets   []retrieval.Snippet
}

// Strategy produces a plan. Implementations must be deterministic.
type Strategy interface {
	Name() string
	Plan(in Input) api.Plan
}

// NaiveName identifies the fixed-template strategy.
const NaiveName = "naive"

// MaxPicks bounds how many shortlisted products the naive strategy selects.
const MaxPicks = 3

// NaiveStrategy picks the first shortlisted products and fills fixed templates.
type NaiveStrategy struct{}

func (NaiveStrategy) Name() string { return NaiveName }

func (NaiveStrategy) Plan(in Input) api.Plan {
	n := min(len(in.Shortlist), MaxPicks)
	picks := make([]api.SelectedSKU, 0, n)
	items := make([]api.PricingItem, 0, n)
	for _, p := range in.Shortlist[:n] {
		picks = append(picks, api.SelectedSKU{
			SKU:      p.SKU,
			Reason:   "Matches features for " + in.Customer.UseCase,
			MustHave: true,
		})
		items = append(items, api.PricingItem{SKU: p.SKU, Qty: decimal.NewFromInt(1)})
	}

	citations := make([]string, 0, len(in.Snippets))
	for _, s := range in.Snippets {
		citations = append(citations, s.SourceID)
	}

	objectives := make([]string, len(in.Objectives))
	copy(objectives, in.Objectives)

	return api.Plan{
		Strategy:         NaiveName,
		Customer:         in.Customer,
		Objectives:       objectives,
		SelectedSKUs:     picks,
		SolutionOverview: overview(in.Customer, in.Objectives),
		Architecture: []api.ArchitectureItem{
			{Component: "Web/App", Role: "Integration SDK"},
			{Component: "Backend", Role: "Core APIs & Orchestration"},
			{Component: "Analytics", Role: "Dashboards & Reporting"},
		},
		ImplementationPlan: []api.Phase{
			{Phase: "Discovery", Weeks: 1},
			{Phase: "Integration", Weeks: 3},
			{Phase: "UAT & Training", Weeks: 2},
			{Phase: "Go-live", Weeks: 1},
		},
		PricingItems: items,
		RisksMitigations: []api.RiskMitigation{
			{Risk: "Data quality issues", Mitigation: "Pre-launch validation jobs"},
			{Risk: "Integration delays", Mitigation: "Early sandbox access & weekly checkpoints"},
		},
		ROISummary: api.ROISummary{
			PeriodMonths: 12,
			Benefits:     []string{"+2-5% conversion lift", "-10% churn", "Faster onboarding"},
		},
		Citations: citations,
	}
}

func overview(c api.Customer, objectives []string) string {
	goals := "the stated business objectives"
	if len(objectives) > 0 {
		goals = strings.Join(objectives[:min(len(objectives), 3)], ", ")
	}
	weeks := c.TimelineWeeks
	if weeks <= 0 {
		weeks = api.DefaultTimelineWeeks
	}
	return fmt.Sprintf("This proposal outlines a tailored solution for %s in the %s industry.\n"+
		"It addresses goals such as %s using our proven components.\n"+
		"The approach emphasizes quick time-to-value, scalability, and measurable ROI within %d weeks.",
		c.Company, c.Industry, goals, weeks)
}

// ForName returns the strategy registered under name.
func ForName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NaiveName:
		return NaiveStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown planner strategy %q", name)
	}
}
