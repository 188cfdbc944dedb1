package payment

import "strings"

// DefaultPlanID is used when the provider callback carries no plan.
const DefaultPlanID = "standard"

// NormalizePlanID trims the plan and substitutes DefaultPlanID when empty.
func NormalizePlanID(planID string) string {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return DefaultPlanID
	}
	return planID
}

// ValidityForPlan derives a license lifetime in days from billing periods
// embedded in the plan id. Lifetime plans return nil (perpetual); anything
// else falls back to defaultDays.
func ValidityForPlan(planID string, defaultDays int) *int {
	p := strings.ToLower(planID)
	days := defaultDays
	switch {
	case strings.Contains(p, "lifetime"):
		return nil
	case strings.Contains(p, "monthly"):
		days = 30
	case strings.Contains(p, "quarterly"):
		days = 90
	case strings.Contains(p, "yearly"), strings.Contains(p, "annual"):
		days = 365
	}
	return &days
}
