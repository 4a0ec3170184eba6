package cart

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/vietcloud/vpshop/core/discount"
	"github.com/vietcloud/vpshop/core/product"
)

// sale10 is a currently valid 10% discount fixture.
func sale10() *discount.Discount {
	now := time.Now().UTC()
	return &discount.Discount{
		Code:     "SALE10",
		Percent:  10,
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
		Active:   true,
	}
}

func TestNormalize(t *testing.T) {
	raw := []RawItem{
		{
			ID:           "item-1",
			ProductID:    "prod-1",
			ProductName:  "VPS Basic",
			Quantity:     1,
			BillingCycle: "12",
			UnitPrice:    100000,
			TotalPrice:   1320000,
		},
		{
			ID:           "item-2",
			ProductID:    "prod-2",
			ProductName:  "VPS Pro",
			Quantity:     2,
			BillingCycle: "",
			UnitPrice:    250000,
			TotalPrice:   550000,
		},
	}

	items := Normalize(raw)

	if len(items) != len(raw) {
		t.Fatalf("expected %d items, but got %d", len(raw), len(items))
	}

	for i, it := range items {
		if it.Total != it.Subtotal+it.VAT {
			t.Errorf("item %d: total %d != subtotal %d + vat %d", i, it.Total, it.Subtotal, it.VAT)
		}
		if it.VAT != vatOf(it.Total) {
			t.Errorf("item %d: expected vat %d, but got %d", i, vatOf(it.Total), it.VAT)
		}
		if it.Addons == nil {
			t.Errorf("item %d: addons should never be nil", i)
		}
	}

	if items[0].VAT != 120000 {
		t.Errorf("expected vat 120000, but got %d", items[0].VAT)
	}
	if items[0].Subtotal != 1200000 {
		t.Errorf("expected subtotal 1200000, but got %d", items[0].Subtotal)
	}

	// A missing billing cycle defaults to monthly.
	if items[1].BillingCycle != 1 {
		t.Errorf("expected billing cycle 1, but got %d", items[1].BillingCycle)
	}
}

func TestQuoteYearly(t *testing.T) {
	p := product.Product{
		ID:           "prod-1",
		MonthlyPrice: 120000,
		YearlyPrice:  1200000,
	}

	got, err := Quote(p, 12, 1, nil, "")
	if err != nil {
		t.Fatal(err)
	}

	// The 12 month cycle is billed off the yearly rate, not 12x monthly.
	if got.Total != 1320000 {
		t.Errorf("expected total 1320000, but got %d", got.Total)
	}
	if got.VAT != 120000 {
		t.Errorf("expected vat 120000, but got %d", got.VAT)
	}
	if got.GrandTotal != got.Total {
		t.Errorf("expected grand total %d, but got %d", got.Total, got.GrandTotal)
	}
}

func TestQuoteDiscount(t *testing.T) {
	p := product.Product{
		ID:           "prod-1",
		MonthlyPrice: 100000,
		Discount:     sale10(),
	}

	got, err := Quote(p, 1, 1, nil, "sale10")
	if err != nil {
		t.Fatal(err)
	}

	if got.Discount == nil {
		t.Fatal("expected the discount to be applied")
	}
	if !got.DiscountAmount.Equal(got.Discount.DiscountAmount) {
		t.Errorf("discount amounts disagree: %s vs %s", got.DiscountAmount, got.Discount.DiscountAmount)
	}
	if got.Total != 99000 {
		t.Errorf("expected total 99000, but got %d", got.Total)
	}
	if got.VAT != 9000 {
		t.Errorf("expected vat 9000, but got %d", got.VAT)
	}
}

func TestQuoteWrongCode(t *testing.T) {
	p := product.Product{
		ID:           "prod-1",
		MonthlyPrice: 100000,
		Discount:     sale10(),
	}

	got, err := Quote(p, 1, 1, nil, "NOPE")
	if err != nil {
		t.Fatal(err)
	}

	if got.Discount != nil {
		t.Error("a mismatched code must not apply the discount")
	}
	if got.Total != 110000 {
		t.Errorf("expected total 110000, but got %d", got.Total)
	}
}

func TestQuoteAddonsNeverDiscounted(t *testing.T) {
	p := product.Product{
		ID:           "prod-1",
		MonthlyPrice: 100000,
		Discount:     sale10(),
	}

	addons := []PricedAddon{
		{AddonType: "ram", Unit: "GB", UnitPrice: 10000, Quantity: 2},
	}

	got, err := Quote(p, 3, 1, addons, "SALE10")
	if err != nil {
		t.Fatal(err)
	}

	// unit * quantity * cycle, untouched by the 10% discount.
	if got.ConfigCost != 60000 {
		t.Errorf("expected config cost 60000, but got %d", got.ConfigCost)
	}
	if got.GrandTotal != got.Total+60000 {
		t.Errorf("expected grand total %d, but got %d", got.Total+60000, got.GrandTotal)
	}

	want := []AppliedAddon{{AddonType: "ram", Quantity: 2, Unit: "GB", TotalPrice: 60000}}
	if diff := cmp.Diff(want, got.Addons); diff != "" {
		t.Errorf("addon lines mismatch (-want +got):\n%s", diff)
	}
}

func TestQuoteOutsideDiscountWindow(t *testing.T) {
	now := time.Now().UTC()
	d := sale10()
	d.StartsAt = now.Add(-48 * time.Hour)
	d.EndsAt = now.Add(-24 * time.Hour)

	p := product.Product{
		ID:           "prod-1",
		MonthlyPrice: 100000,
		Discount:     d,
	}

	got, err := Quote(p, 1, 1, nil, "SALE10")
	if err != nil {
		t.Fatal(err)
	}

	if got.Discount != nil {
		t.Error("an expired discount must not be applied")
	}
	if !got.DiscountAmount.IsZero() {
		t.Errorf("expected zero discount amount, but got %s", got.DiscountAmount)
	}
	if got.Total != 110000 {
		t.Errorf("expected full price 110000, but got %d", got.Total)
	}

	// Not started yet is outside the window too.
	d.StartsAt = now.Add(24 * time.Hour)
	d.EndsAt = now.Add(48 * time.Hour)

	got, err = Quote(p, 1, 1, nil, "SALE10")
	if err != nil {
		t.Fatal(err)
	}
	if got.Discount != nil {
		t.Error("a not yet started discount must not be applied")
	}
	if got.Total != 110000 {
		t.Errorf("expected full price 110000, but got %d", got.Total)
	}
}

func TestQuoteValidation(t *testing.T) {
	p := product.Product{ID: "prod-1", MonthlyPrice: 100000}

	if _, err := Quote(p, 1, 0, nil, ""); err != ErrQuantity {
		t.Errorf("expected ErrQuantity, but got %v", err)
	}

	if _, err := Quote(p, 5, 1, nil, ""); err == nil {
		t.Error("expected an unsupported cycle error")
	}
}

func TestRescale(t *testing.T) {
	it := Item{
		ID:         "item-1",
		Quantity:   2,
		TotalPrice: 220000,
		VAT:        20000,
		Subtotal:   200000,
		Total:      220000,
	}

	got, err := Rescale(it, 3)
	if err != nil {
		t.Fatal(err)
	}

	if got.TotalPrice != 330000 {
		t.Errorf("expected total price 330000, but got %d", got.TotalPrice)
	}
	if got.VAT != 30000 {
		t.Errorf("expected vat 30000, but got %d", got.VAT)
	}
	if got.Subtotal != 300000 {
		t.Errorf("expected subtotal 300000, but got %d", got.Subtotal)
	}
	if got.Total != got.Subtotal+got.VAT {
		t.Errorf("total %d != subtotal %d + vat %d", got.Total, got.Subtotal, got.VAT)
	}
}

// A rescaled line must report the same VAT a later read derives from
// the stored total, even when the scaled total rounds awkwardly.
func TestRescaleMatchesStoredForm(t *testing.T) {
	it := Item{
		ID:         "item-1",
		Quantity:   2,
		TotalPrice: 6100,
		VAT:        555,
		Subtotal:   5545,
		Total:      6100,
	}

	got, err := Rescale(it, 3)
	if err != nil {
		t.Fatal(err)
	}

	if got.TotalPrice != 9150 {
		t.Errorf("expected total price 9150, but got %d", got.TotalPrice)
	}
	if got.VAT != 832 {
		t.Errorf("expected vat 832, but got %d", got.VAT)
	}
	if got.VAT != vatOf(got.TotalPrice) {
		t.Errorf("expected vat %d, but got %d", vatOf(got.TotalPrice), got.VAT)
	}

	read := decorate(got)
	if read.VAT != got.VAT || read.Subtotal != got.Subtotal {
		t.Errorf("rescaled item disagrees with its stored form: vat %d vs %d, subtotal %d vs %d",
			got.VAT, read.VAT, got.Subtotal, read.Subtotal)
	}
}

func TestRescaleInvalidQuantity(t *testing.T) {
	it := Item{ID: "item-1", Quantity: 2, TotalPrice: 220000}

	if _, err := Rescale(it, 0); err != ErrQuantity {
		t.Errorf("expected ErrQuantity, but got %v", err)
	}

	it.Quantity = 0
	if _, err := Rescale(it, 1); err == nil {
		t.Error("expected an error for a stored quantity below 1")
	}
}

func TestAggregates(t *testing.T) {
	items := []Item{
		{ProductID: "prod-1", Quantity: 3, Subtotal: 100, VAT: 10, Total: 110},
		{ProductID: "prod-2", Quantity: 1, Subtotal: 200, VAT: 20, Total: 220},
	}

	if got := Total(items); got != 330 {
		t.Errorf("expected total 330, but got %d", got)
	}
	if got := Subtotal(items); got != 300 {
		t.Errorf("expected subtotal 300, but got %d", got)
	}
	if got := VATTotal(items); got != 30 {
		t.Errorf("expected vat total 30, but got %d", got)
	}

	// Count is line items, not summed quantity.
	if got := Count(items); got != 2 {
		t.Errorf("expected count 2, but got %d", got)
	}

	if !Contains(items, "prod-1") {
		t.Error("expected the cart to contain prod-1")
	}
	if Contains(items, "prod-3") {
		t.Error("did not expect the cart to contain prod-3")
	}
}

func TestCycleUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Cycle
	}{
		{`12`, 12},
		{`"12"`, 12},
		{`1`, 1},
	}

	for _, tt := range tests {
		var c Cycle
		if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if c != tt.want {
			t.Errorf("unmarshal %s: expected %d, but got %d", tt.in, tt.want, c)
		}
	}

	var c Cycle
	if err := json.Unmarshal([]byte(`"monthly"`), &c); err == nil {
		t.Error("expected an error for a non-numeric cycle string")
	}
}
