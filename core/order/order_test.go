package order

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{Pending, Paid, true},
		{Pending, Expired, true},
		{Pending, Cancelled, true},
		{Pending, Completed, false},
		{Pending, Provisioning, false},

		{Paid, Provisioning, true},
		{Paid, Pending, false},
		{Paid, Cancelled, false},

		{Provisioning, Completed, true},
		{Provisioning, Paid, false},

		{Completed, Pending, false},
		{Expired, Paid, false},
		{Cancelled, Paid, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s): expected %v, but got %v", tt.from, tt.to, tt.want, got)
		}
	}
}
