package payment

import (
	"testing"

	"github.com/vietcloud/vpshop/qrpay"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		in   qrpay.Status
		want Status
	}{
		{qrpay.StatusPaid, Paid},
		{qrpay.StatusExpired, Expired},
		{qrpay.StatusCancelled, Cancelled},
		{qrpay.StatusPending, Pending},
		{qrpay.Status("SOMETHING_NEW"), Pending},
	}

	for _, tt := range tests {
		if got := statusOf(tt.in); got != tt.want {
			t.Errorf("statusOf(%s): expected %s, but got %s", tt.in, tt.want, got)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if Pending.Terminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []Status{Paid, Expired, Cancelled} {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
}
