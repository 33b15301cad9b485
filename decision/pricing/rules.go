package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	perrors "github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/errors"
)

// Rules are the commercial limits applied to every quote.
type Rules struct {
	MaxDiscountPct decimal.Decimal `json:"max_discount_pct"`
	TaxPct         decimal.Decimal `json:"tax_pct"`
}

type rawRules struct {
	MaxDiscountPct *float64 `json:"max_discount_pct" yaml:"max_discount_pct"`
	TaxPct         *float64 `json:"tax_pct" yaml:"tax_pct"`
}

// LoadRules reads rules from a JSON file, or YAML when the extension says so.
// Both keys are required and must not be negative.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, perrors.NewConfigError(perrors.ErrCodeRulesInvalid, path, "cannot read pricing rules", err)
	}

	var raw rawRules
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return Rules{}, perrors.NewConfigError(perrors.ErrCodeRulesInvalid, path, "malformed pricing rules", err)
	}
	return raw.validate(path)
}

func (r rawRules) validate(source string) (Rules, error) {
	fields := []struct {
		name string
		val  *float64
	}{
		{"max_discount_pct", r.MaxDiscountPct},
		{"tax_pct", r.TaxPct},
	}
	for _, f := range fields {
		if f.val == nil {
			return Rules{}, perrors.NewConfigError(perrors.ErrCodeRulesInvalid, source, fmt.Sprintf("missing key %s", f.name), nil)
		}
		if *f.val < 0 {
			return Rules{}, perrors.NewConfigError(perrors.ErrCodeRulesInvalid, source, fmt.Sprintf("%s must not be negative", f.name), nil)
		}
	}
	return Rules{
		MaxDiscountPct: decimal.NewFromFloat(*r.MaxDiscountPct),
		TaxPct:         decimal.NewFromFloat(*r.TaxPct),
	}, nil
}
