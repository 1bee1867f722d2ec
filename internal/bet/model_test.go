package bet

import "testing"

func TestPayoutCents(t *testing.T) {
	tests := []struct {
		name       string
		stakeCents int64
		odds       float64
		want       int64
	}{
		{"whole multiple", 10000, 2.0, 20000},
		{"fractional odd", 10000, 2.5, 25000},
		{"rounding up", 1000, 1.855, 1855},
		{"rounds to nearest cent", 333, 1.5, 500},     // 499.5 -> 500
		{"min stake at min odd", 1000, 1.01, 1010},
		{"large stake", 5000000, 3.75, 18750000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PayoutCents(tc.stakeCents, tc.odds); got != tc.want {
				t.Errorf("PayoutCents(%d, %v) = %d, want %d", tc.stakeCents, tc.odds, got, tc.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusWon, StatusLost, StatusCancelled, StatusVoided}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if StatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	if !StatusPending.Valid() {
		t.Error("pending must be valid")
	}
	if Status("refunded").Valid() {
		t.Error("unknown status must be invalid")
	}
}
