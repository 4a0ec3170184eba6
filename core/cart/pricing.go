package cart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vietcloud/vpshop/core/product"
)

// VAT is charged at a fixed 10% on every line.
var (
	vatRate    = decimal.NewFromFloat(0.10)
	vatDivisor = decimal.NewFromInt(110)
	vatFactor  = decimal.NewFromInt(10)
)

var (
	ErrQuantity = errors.New("quantity must be at least 1")
	ErrCycle    = errors.New("unsupported billing cycle")
)

// yearlyCycles are the cycles priced off the (pre-discounted) yearly
// rate instead of the monthly one.
var yearlyCycles = map[int]bool{12: true, 24: true, 36: true}

var supportedCycles = map[int]bool{1: true, 3: true, 6: true, 12: true, 24: true, 36: true}

// vatOf extracts the VAT portion embedded in a VAT-inclusive total:
// round(total * 10 / 110).
func vatOf(total int64) int64 {
	return decimal.NewFromInt(total).Mul(vatFactor).Div(vatDivisor).Round(0).IntPart()
}

// Normalize converts raw wire items into the display-ready shape. The
// mapping is additive: nothing from the input is discarded, missing
// optionals default to zero values, and for every output item
// total == subtotal + vat holds exactly.
func Normalize(raw []RawItem) []Item {
	items := make([]Item, 0, len(raw))

	for _, r := range raw {
		cycle, err := strconv.Atoi(r.BillingCycle)
		if err != nil || cycle == 0 {
			cycle = 1
		}

		vat := vatOf(r.TotalPrice)

		it := Item{
			ID:           r.ID,
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			Quantity:     r.Quantity,
			BillingCycle: cycle,
			UnitPrice:    r.UnitPrice,
			TotalPrice:   r.TotalPrice,
			Config:       r.Config,
			Subtotal:     r.TotalPrice - vat,
			VAT:          vat,
			Total:        r.TotalPrice,
			Addons:       r.Config.AddonsApplied,
			Discount:     r.Config.DiscountApplied,
		}
		if it.Addons == nil {
			it.Addons = []AppliedAddon{}
		}
		if it.Discount != nil {
			it.DiscountAmount = it.Discount.DiscountAmount
		}

		items = append(items, it)
	}

	return items
}

// decorate fills the derived fields of a stored item from its priced
// columns, using the same VAT extraction as Normalize.
func decorate(it Item) Item {
	it.VAT = vatOf(it.TotalPrice)
	it.Subtotal = it.TotalPrice - it.VAT
	it.Total = it.TotalPrice
	it.Addons = it.Config.AddonsApplied
	if it.Addons == nil {
		it.Addons = []AppliedAddon{}
	}
	it.Discount = it.Config.DiscountApplied
	if it.Discount != nil {
		it.DiscountAmount = it.Discount.DiscountAmount
	}
	return it
}

// Pricing is the quote for one configured product: the discounted base
// line plus the independent addon cost.
type Pricing struct {
	BasePrice              decimal.Decimal  `json:"basePrice"`
	SubtotalBeforeDiscount decimal.Decimal  `json:"subtotalBeforeDiscount"`
	DiscountAmount         decimal.Decimal  `json:"discountAmount"`
	AfterDiscount          decimal.Decimal  `json:"afterDiscount"`
	VAT                    int64            `json:"vat"`
	Total                  int64            `json:"total"`
	ConfigCost             int64            `json:"configCost"`
	GrandTotal             int64            `json:"grandTotal"`
	Addons                 []AppliedAddon   `json:"addonsApplied"`
	Discount               *AppliedDiscount `json:"discountApplied,omitempty"`
}

// PricedAddon pairs an addon selection with its unit price and unit,
// resolved from the catalog before quoting.
type PricedAddon struct {
	AddonType string
	Unit      string
	UnitPrice int64
	Quantity  int
}

// Quote computes the price of a configured product:
//
//   - base unit price is the monthly price, or yearly/12 for yearly
//     cycles (the yearly rate is already discounted for the
//     commitment),
//   - a matching code for a discount inside its validity window takes
//     discount_percent off the base subtotal, kept exact until VAT
//     rounding; an expired or not yet started discount is ignored,
//   - VAT is 10% of the discounted subtotal, rounded once to whole
//     currency units,
//   - addon lines are unit*quantity*cycle each, never discounted, and
//     summed separately into ConfigCost.
func Quote(p product.Product, cycle int, qty int, addons []PricedAddon, code string) (Pricing, error) {
	if qty < 1 {
		return Pricing{}, ErrQuantity
	}
	if !supportedCycles[cycle] {
		return Pricing{}, fmt.Errorf("%w: %d", ErrCycle, cycle)
	}

	base := decimal.NewFromInt(p.MonthlyPrice)
	if yearlyCycles[cycle] {
		base = decimal.NewFromInt(p.YearlyPrice).Div(decimal.NewFromInt(12))
	}

	subBefore := base.Mul(decimal.NewFromInt(int64(cycle))).Mul(decimal.NewFromInt(int64(qty)))

	var discAmount decimal.Decimal
	var applied *AppliedDiscount
	if code != "" && p.Discount != nil && p.Discount.Current(time.Now().UTC()) && strings.EqualFold(code, p.Discount.Code) {
		pct := decimal.NewFromInt(int64(p.Discount.Percent))
		discAmount = subBefore.Mul(pct).Div(decimal.NewFromInt(100))
		applied = &AppliedDiscount{
			Code:            p.Discount.Code,
			DiscountPercent: p.Discount.Percent,
			DiscountAmount:  discAmount,
		}
	}

	after := subBefore.Sub(discAmount)
	vat := after.Mul(vatRate).Round(0)
	total := after.Add(vat).Round(0)

	var configCost int64
	priced := make([]AppliedAddon, 0, len(addons))
	for _, a := range addons {
		line := a.UnitPrice * int64(a.Quantity) * int64(cycle)
		configCost += line
		priced = append(priced, AppliedAddon{
			AddonType:  a.AddonType,
			Quantity:   a.Quantity,
			Unit:       a.Unit,
			TotalPrice: line,
		})
	}

	return Pricing{
		BasePrice:              base,
		SubtotalBeforeDiscount: subBefore,
		DiscountAmount:         discAmount,
		AfterDiscount:          after,
		VAT:                    vat.IntPart(),
		Total:                  total.IntPart(),
		ConfigCost:             configCost,
		GrandTotal:             total.IntPart() + configCost,
		Addons:                 priced,
		Discount:               applied,
	}, nil
}

// Rescale derives a line item's new aggregates from a quantity change
// alone: the stored total is scaled by newQty over the old quantity,
// so a previously applied discount keeps its ratio without re-running
// the discount rule. The VAT is then re-extracted from the scaled
// total, which keeps the result identical to what a later read of the
// stored row derives. Quantity below 1 on either side is rejected.
func Rescale(it Item, newQty int) (Item, error) {
	if newQty < 1 {
		return Item{}, ErrQuantity
	}
	if it.Quantity < 1 {
		return Item{}, fmt.Errorf("item[%s] has invalid quantity %d: %w", it.ID, it.Quantity, ErrQuantity)
	}

	factor := decimal.NewFromInt(int64(newQty)).Div(decimal.NewFromInt(int64(it.Quantity)))

	it.Quantity = newQty
	it.TotalPrice = decimal.NewFromInt(it.TotalPrice).Mul(factor).Round(0).IntPart()
	it.VAT = vatOf(it.TotalPrice)
	it.Subtotal = it.TotalPrice - it.VAT
	it.Total = it.TotalPrice

	return it, nil
}

// Aggregate queries over an item sequence.

func Total(items []Item) int64 {
	var t int64
	for _, it := range items {
		t += it.Total
	}
	return t
}

func Subtotal(items []Item) int64 {
	var t int64
	for _, it := range items {
		t += it.Subtotal
	}
	return t
}

func VATTotal(items []Item) int64 {
	var t int64
	for _, it := range items {
		t += it.VAT
	}
	return t
}

// Count is the number of line items, not the summed quantity.
func Count(items []Item) int {
	return len(items)
}

// Contains reports whether any line references the product, regardless
// of billing cycle or addons.
func Contains(items []Item, productID string) bool {
	for _, it := range items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}
