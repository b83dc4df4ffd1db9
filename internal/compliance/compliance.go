// Package compliance evaluates portfolio rules over a set of assets.
//
// Three rules are checked:
//
//  1. the portfolio is worth at least 1000 in total;
//  2. no asset type makes up more than 70% of the total;
//  3. the portfolio holds at least two asset types.
//
// Evaluation is pure: the same assets always produce the same findings in the
// same order.
package compliance

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"invest/internal/models"
)

const (
	NoAssets       = "No assets in portfolio."
	Rule1Passed    = "Rule 1 Passed."
	Rule1Failed    = "Rule 1 Failed: Total value < 1000."
	Rule3Failed    = "Rule 3 Failed: Less than 2 asset types."
	AllRulesPassed = "All compliance rules passed ✅."

	failureMarker = "Failed"
)

var (
	minimumTotal   = decimal.NewFromInt(1000)
	maxTypeShare   = decimal.NewFromInt(70)
	minimumTypes   = 2
	hundredPercent = decimal.NewFromInt(100)
)

// Rule2Failed is the finding for an asset type above the share limit.
func Rule2Failed(assetType string) string {
	return "Rule 2 Failed: " + assetType + " > 70%."
}

// TypeTotal is the summed value of one asset type.
type TypeTotal struct {
	Type    string          `json:"type"`
	Value   decimal.Decimal `json:"value"`
	Percent decimal.Decimal `json:"percent"`
}

// Report is the outcome of evaluating a portfolio.
type Report struct {
	Findings  []string        `json:"findings"`
	Total     decimal.Decimal `json:"total"`
	Breakdown []TypeTotal     `json:"breakdown"`
	Passed    bool            `json:"passed"`
}

// CheckCompliance returns the findings for assets.
func CheckCompliance(assets []models.Asset) []string {
	return Evaluate(assets).Findings
}

// Evaluate checks assets against every rule. Types appear in the breakdown,
// and type failures in the findings, in order of first occurrence.
func Evaluate(assets []models.Asset) Report {
	if len(assets) == 0 {
		return Report{Findings: []string{NoAssets}, Total: decimal.Zero, Breakdown: []TypeTotal{}}
	}

	total := decimal.Zero
	var order []string
	sums := make(map[string]decimal.Decimal)
	for _, a := range assets {
		v := valueOf(a)
		total = total.Add(v)
		if _, seen := sums[a.Type]; !seen {
			order = append(order, a.Type)
		}
		sums[a.Type] = sums[a.Type].Add(v)
	}

	var findings []string
	if total.LessThan(minimumTotal) {
		findings = append(findings, Rule1Failed)
	} else {
		findings = append(findings, Rule1Passed)
	}

	breakdown := make([]TypeTotal, 0, len(order))
	for _, t := range order {
		percent, over := share(sums[t], total)
		breakdown = append(breakdown, TypeTotal{Type: t, Value: sums[t], Percent: percent})
		if over {
			findings = append(findings, Rule2Failed(t))
		}
	}

	if len(order) < minimumTypes {
		findings = append(findings, Rule3Failed)
	}

	report := Report{Findings: findings, Total: total, Breakdown: breakdown}
	if !anyFailed(findings) {
		report.Findings = []string{AllRulesPassed}
		report.Passed = true
	}
	return report
}

// share returns part as a percentage of total and whether it exceeds the
// limit. With a zero total the percentage is reported as zero and only a
// positive part counts as exceeding.
func share(part, total decimal.Decimal) (decimal.Decimal, bool) {
	if total.IsZero() {
		return decimal.Zero, part.IsPositive()
	}
	percent := part.Div(total).Mul(hundredPercent)
	return percent, percent.GreaterThan(maxTypeShare)
}

// valueOf converts an asset value to a decimal. NaN and infinite values count
// as zero.
func valueOf(a models.Asset) decimal.Decimal {
	if math.IsNaN(a.Value) || math.IsInf(a.Value, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(a.Value)
}

func anyFailed(findings []string) bool {
	for _, f := range findings {
		if strings.Contains(f, failureMarker) {
			return true
		}
	}
	return false
}
