// Package payment reconciles asynchronous payment provider webhooks against
// appeal cases, exactly once per provider event.
package payment

// PlanType identifies what the customer bought.
type PlanType string

const (
	// PlanSingle unlocks letter generation for one case.
	PlanSingle PlanType = "single"
	// PlanAnnual grants a year of unlimited appeals.
	PlanAnnual PlanType = "annual"
)

// Plan is one purchasable product. Amounts are minor units.
type Plan struct {
	Type        PlanType
	AmountPence int64
	Currency    string
}

var plans = []Plan{
	{Type: PlanSingle, AmountPence: 299, Currency: "gbp"},
	{Type: PlanAnnual, AmountPence: 999, Currency: "gbp"},
}

// Plans returns the purchasable plans in display order.
func Plans() []Plan {
	return append([]Plan(nil), plans...)
}

// LookupPlan resolves a plan type string from webhook metadata. Unknown
// types return ok=false; the reconciler discards those events.
func LookupPlan(planType string) (Plan, bool) {
	for _, p := range plans {
		if string(p.Type) == planType {
			return p, true
		}
	}
	return Plan{}, false
}
