package plans

import (
	"testing"

	"github.com/gatherly/backend/internal/models"
)

func TestGuestLimit(t *testing.T) {
	tests := []struct {
		plan models.Plan
		want int
	}{
		{models.PlanFree, FreeGuestLimit},
		{models.PlanPremium, PremiumGuestLimit},
		{models.PlanUnlimited, NoLimit},
		{models.Plan("unknown"), FreeGuestLimit},
	}
	for _, tt := range tests {
		if got := GuestLimit(tt.plan); got != tt.want {
			t.Errorf("GuestLimit(%q) = %d, want %d", tt.plan, got, tt.want)
		}
	}
}

func TestCanAddGuests(t *testing.T) {
	tests := []struct {
		name    string
		plan    models.Plan
		current int
		n       int
		want    bool
	}{
		{"free under limit", models.PlanFree, 10, 1, true},
		{"free at limit", models.PlanFree, FreeGuestLimit, 1, false},
		{"free exact fill", models.PlanFree, FreeGuestLimit - 1, 1, true},
		{"free bulk overflow", models.PlanFree, 40, 20, false},
		{"premium bulk", models.PlanPremium, 400, 100, true},
		{"premium overflow", models.PlanPremium, 450, 100, false},
		{"unlimited large", models.PlanUnlimited, 100000, 5000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAddGuests(tt.plan, tt.current, tt.n); got != tt.want {
				t.Errorf("CanAddGuests(%q, %d, %d) = %v, want %v", tt.plan, tt.current, tt.n, got, tt.want)
			}
		})
	}
}
