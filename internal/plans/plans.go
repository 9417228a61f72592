// Package plans defines subscription tiers and the guest caps they enforce.
package plans

import (
	"fmt"

	"github.com/gatherly/backend/internal/models"
)

// Guest caps per tier. Unlimited is represented by a negative limit.
const (
	FreeGuestLimit    = 50
	PremiumGuestLimit = 500
	NoLimit           = -1
)

// GuestLimit returns the maximum number of guests for a plan.
func GuestLimit(plan models.Plan) int {
	switch plan {
	case models.PlanPremium:
		return PremiumGuestLimit
	case models.PlanUnlimited:
		return NoLimit
	default:
		return FreeGuestLimit
	}
}

// CanAddGuests reports whether an account holding current guests may add n more.
func CanAddGuests(plan models.Plan, current, n int) bool {
	limit := GuestLimit(plan)
	if limit == NoLimit {
		return true
	}
	return current+n <= limit
}

// LimitError returns the user-facing message for a plan-limit rejection.
func LimitError(plan models.Plan) string {
	return fmt.Sprintf("guest limit reached for plan %s", plan)
}
