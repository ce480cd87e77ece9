package models

import "time"

// Billing cycles of recurring outgoing rows
const (
	BillingWeekly    = "weekly"
	BillingMonthly   = "monthly"
	BillingQuarterly = "quarterly"
	BillingYearly    = "yearly"
)

// GetBillingCycles returns all billing cycles
func GetBillingCycles() []string {
	return []string{BillingWeekly, BillingMonthly, BillingQuarterly, BillingYearly}
}

// NextPaymentDate advances from by one billing cycle. Unknown cycles count as monthly.
func NextPaymentDate(cycle string, from time.Time) time.Time {
	switch cycle {
	case BillingWeekly:
		return from.AddDate(0, 0, 7)
	case BillingQuarterly:
		return from.AddDate(0, 3, 0)
	case BillingYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// MonthlyFactor converts one payment of the cycle into a monthly equivalent.
func MonthlyFactor(cycle string) float64 {
	switch cycle {
	case BillingWeekly:
		return 52.0 / 12.0
	case BillingQuarterly:
		return 1.0 / 3.0
	case BillingYearly:
		return 1.0 / 12.0
	default:
		return 1
	}
}
