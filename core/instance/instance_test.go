package instance

import "testing"

func TestStatusAllows(t *testing.T) {
	tests := []struct {
		status Status
		action Action
		want   bool
	}{
		{Running, ActionStop, true},
		{Running, ActionRestart, true},
		{Running, ActionSuspend, true},
		{Running, ActionConsole, true},
		{Running, ActionStart, false},

		{Stopped, ActionStart, true},
		{Stopped, ActionStop, false},
		{Stopped, ActionConsole, false},

		{Suspended, ActionStart, true},
		{Suspended, ActionSuspend, false},

		{Provisioning, ActionStart, false},
		{Configuring, ActionStop, false},
		{WaitForSSHKey, ActionConsole, false},
		{Starting, ActionStop, false},
		{Stopping, ActionStart, false},
		{Restarting, ActionRestart, false},
		{Suspending, ActionStart, false},
		{Error, ActionStart, false},
		{Error, ActionConsole, false},
	}

	for _, tt := range tests {
		if got := tt.status.Allows(tt.action); got != tt.want {
			t.Errorf("%s.Allows(%s): expected %v, but got %v", tt.status, tt.action, tt.want, got)
		}
	}
}

func TestActionTransitional(t *testing.T) {
	tests := []struct {
		action Action
		want   Status
	}{
		{ActionStart, Starting},
		{ActionStop, Stopping},
		{ActionRestart, Restarting},
		{ActionSuspend, Suspending},
	}

	for _, tt := range tests {
		if got := tt.action.Transitional(); got != tt.want {
			t.Errorf("%s.Transitional(): expected %s, but got %s", tt.action, tt.want, got)
		}
	}
}

func TestStatusSettled(t *testing.T) {
	settled := []Status{Running, Stopped, Suspended, WaitForSSHKey, Error}
	for _, s := range settled {
		if !s.Settled() {
			t.Errorf("expected %s to be settled", s)
		}
	}

	inFlight := []Status{Provisioning, Configuring, Starting, Stopping, Restarting, Suspending}
	for _, s := range inFlight {
		if s.Settled() {
			t.Errorf("did not expect %s to be settled", s)
		}
	}
}
