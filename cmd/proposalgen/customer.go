package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
)

// customerFile is the on-disk request: the customer plus optional
// requirements. Budgets are plain numbers in YAML and JSON alike.
type customerFile struct {
	Company        string   `json:"company" yaml:"company"`
	Industry       string   `json:"industry" yaml:"industry"`
	Region         string   `json:"region" yaml:"region"`
	UseCase        string   `json:"use_case" yaml:"use_case"`
	Objectives     []string `json:"objectives" yaml:"objectives"`
	TimelineWeeks  int      `json:"timeline_weeks" yaml:"timeline_weeks"`
	BudgetMin      *float64 `json:"budget_min" yaml:"budget_min"`
	BudgetMax      *float64 `json:"budget_max" yaml:"budget_max"`
	DiscoveryNotes string   `json:"discovery_notes" yaml:"discovery_notes"`
	MustHave       []string `json:"must_have" yaml:"must_have"`
}

func (f customerFile) customer() api.Customer {
	return api.Customer{
		Company:        f.Company,
		Industry:       f.Industry,
		Region:         f.Region,
		UseCase:        f.UseCase,
		Objectives:     f.Objectives,
		TimelineWeeks:  f.TimelineWeeks,
		BudgetMin:      decimalPtr(f.BudgetMin),
		BudgetMax:      decimalPtr(f.BudgetMax),
		DiscoveryNotes: f.DiscoveryNotes,
	}
}

func decimalPtr(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

// readCustomerFile decodes YAML or JSON by extension.
func readCustomerFile(path string) (customerFile, error) {
	var f customerFile
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("failed to read customer file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return f, fmt.Errorf("failed to parse customer file %s: %w", path, err)
	}
	return f, nil
}

// customerFromFlags starts from --customer (if given) and lets individual
// flags override it.
func customerFromFlags(c *cli.Context) (api.Customer, []string, error) {
	var f customerFile
	if path := c.String("customer"); path != "" {
		var err error
		if f, err = readCustomerFile(path); err != nil {
			return api.Customer{}, nil, err
		}
	}

	if c.IsSet("company") {
		f.Company = c.String("company")
	}
	if c.IsSet("industry") {
		f.Industry = c.String("industry")
	}
	if c.IsSet("region") {
		f.Region = c.String("region")
	}
	if c.IsSet("use-case") {
		f.UseCase = c.String("use-case")
	}
	if c.IsSet("objective") {
		f.Objectives = c.StringSlice("objective")
	}
	if c.IsSet("timeline-weeks") {
		f.TimelineWeeks = c.Int("timeline-weeks")
	}
	if c.IsSet("budget-min") {
		v := c.Float64("budget-min")
		f.BudgetMin = &v
	}
	if c.IsSet("budget-max") {
		v := c.Float64("budget-max")
		f.BudgetMax = &v
	}
	if c.IsSet("notes") {
		f.DiscoveryNotes = c.String("notes")
	}
	if c.IsSet("must-have") {
		f.MustHave = splitList(c.StringSlice("must-have"))
	}

	return f.customer(), f.MustHave, nil
}

// splitList flattens repeated and comma-separated values.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
