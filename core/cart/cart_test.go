package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func TestConfigScanRoundTrip(t *testing.T) {
	in := Config{
		AddonsApplied: []AppliedAddon{
			{AddonType: "ram", Quantity: 2, Unit: "GB", TotalPrice: 60000},
		},
		DiscountApplied: &AppliedDiscount{
			Code:            "SALE10",
			DiscountPercent: 10,
			DiscountAmount:  decimal.NewFromFloat(12345.5),
		},
	}

	v, err := in.Value()
	if err != nil {
		t.Fatal(err)
	}

	var out Config
	if err := out.Scan(v.([]byte)); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	// The fractional discount amount must survive storage untouched.
	if !out.DiscountApplied.DiscountAmount.Equal(in.DiscountApplied.DiscountAmount) {
		t.Errorf("discount amount changed: %s vs %s",
			in.DiscountApplied.DiscountAmount, out.DiscountApplied.DiscountAmount)
	}
}

func TestConfigScanRejectsNonBytes(t *testing.T) {
	var c Config
	if err := c.Scan("not bytes"); err == nil {
		t.Error("expected an error for a non-byte source")
	}
}

func TestNewItemID(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	got := NewItemID("prod-1", 12, at)
	want := "prod-1-12-1700000000000"
	if got != want {
		t.Errorf("expected %s, but got %s", want, got)
	}

	if NewItemID("prod-1", 12, at.Add(time.Millisecond)) == got {
		t.Error("ids a millisecond apart must differ")
	}
}

// A guest line that can no longer be inserted must be dropped, not
// abort the merge of the remaining lines.
func TestMergeItemsSkipsFailingLines(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	items := []Item{
		{ProductID: "prod-1", Quantity: 1, TotalPrice: 110000},
		{ProductID: "prod-2", Quantity: 1, TotalPrice: 220000},
		{ProductID: "prod-3", Quantity: 1, TotalPrice: 330000},
	}

	var inserted []Item
	insert := func(ctx context.Context, it Item) error {
		if it.ProductID == "prod-2" {
			return errors.New("product no longer exists")
		}
		inserted = append(inserted, it)
		return nil
	}

	now := time.Now().UTC()
	mergeItems(context.Background(), log, items, "user-1", now, insert)

	if len(inserted) != 2 {
		t.Fatalf("expected 2 items merged, but got %d", len(inserted))
	}
	for _, it := range inserted {
		if it.ProductID == "prod-2" {
			t.Error("the failing line must be dropped, not merged")
		}
		if it.UserID != "user-1" {
			t.Errorf("expected user user-1, but got %s", it.UserID)
		}
		if it.ID == "" {
			t.Error("merged lines must get fresh ids")
		}
		if !it.UpdatedAt.Equal(now) {
			t.Errorf("expected updated at %s, but got %s", now, it.UpdatedAt)
		}
	}
}

func TestRawItemDecoding(t *testing.T) {
	// The wire shape carries the cycle as a string and hides addon and
	// discount selections inside config.
	payload := `{
		"cart_item_id": "item-1",
		"product_id": "prod-1",
		"product_name": "VPS Basic",
		"quantity": 1,
		"billing_cycle": "12",
		"unit_price": 100000,
		"total_price": 1320000,
		"config": {
			"addons_applied": [{"addon_type": "ram", "quantity": 2, "unit": "GB", "total_price": 60000}]
		}
	}`

	var r RawItem
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatal(err)
	}

	items := Normalize([]RawItem{r})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, but got %d", len(items))
	}

	it := items[0]
	if it.BillingCycle != 12 {
		t.Errorf("expected cycle 12, but got %d", it.BillingCycle)
	}
	if len(it.Addons) != 1 || it.Addons[0].AddonType != "ram" {
		t.Errorf("addon selection lost: %+v", it.Addons)
	}
	if it.Discount != nil {
		t.Error("no discount was applied")
	}
}
