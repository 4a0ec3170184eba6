package cart

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the aggregate returned to callers: the item sequence plus
// totals derived from it. Created implicitly on first add, cleared
// explicitly or on successful checkout.
type Cart struct {
	UserID    string    `json:"-" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Version   int       `json:"-" db:"version"`

	Items    []Item `json:"items" db:"-"`
	Subtotal int64  `json:"subtotal" db:"-"`
	VAT      int64  `json:"vat" db:"-"`
	Total    int64  `json:"total" db:"-"`
	Currency string `json:"currency" db:"-"`
}

// AppliedAddon is one metered addon line attached to a cart item.
// Addon lines are billed per unit per month across the whole cycle and
// are never discounted.
type AppliedAddon struct {
	AddonType  string `json:"addon_type"`
	Quantity   int    `json:"quantity"`
	Unit       string `json:"unit"`
	TotalPrice int64  `json:"total_price"`
}

// AppliedDiscount records the discount baked into an item's total.
// The amount may be fractional; it is never rounded on its own.
type AppliedDiscount struct {
	Code            string          `json:"code"`
	DiscountPercent int             `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
}

// Config carries the optional per-item selections. It is the JSONB
// payload persisted next to the priced columns.
type Config struct {
	AddonsApplied   []AppliedAddon   `json:"addons_applied,omitempty"`
	DiscountApplied *AppliedDiscount `json:"discount_applied,omitempty"`
}

func (c Config) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Config) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return errors.New("config column is not a byte slice")
	}
	return json.Unmarshal(b, c)
}

// Item is the display-ready line item shape. Subtotal, VAT and Total
// are derived (total == subtotal + vat always holds); the remaining
// fields come from the stored row or the pricing engine.
type Item struct {
	ID           string    `json:"cartItemId" db:"cart_item_id"`
	UserID       string    `json:"-" db:"user_id"`
	ProductID    string    `json:"productId" db:"product_id"`
	ProductName  string    `json:"productName" db:"product_name"`
	Quantity     int       `json:"quantity" db:"quantity"`
	BillingCycle int       `json:"billingCycle" db:"billing_cycle"`
	UnitPrice    int64     `json:"unitPrice" db:"unit_price"`
	TotalPrice   int64     `json:"totalPrice" db:"total_price"`
	Config       Config    `json:"-" db:"config"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	Subtotal       int64            `json:"subtotal" db:"-"`
	VAT            int64            `json:"vat" db:"-"`
	Total          int64            `json:"total" db:"-"`
	Addons         []AppliedAddon   `json:"addonsApplied" db:"-"`
	Discount       *AppliedDiscount `json:"discountApplied,omitempty" db:"-"`
	DiscountAmount decimal.Decimal  `json:"discountAmount" db:"-"`
}

// RawItem is the single wire shape every upstream representation is
// decoded into before use: billing_cycle arrives as a string and the
// optional selections hide inside config. One explicit deserialization
// step replaces per-call-site shape sniffing.
type RawItem struct {
	ID           string `json:"cart_item_id"`
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	BillingCycle string `json:"billing_cycle"`
	UnitPrice    int64  `json:"unit_price"`
	TotalPrice   int64  `json:"total_price"`
	Config       Config `json:"config"`
}

// Cycle accepts a billing cycle encoded as either a JSON number or a
// JSON string, which is how the wire represents it.
type Cycle int

func (c *Cycle) UnmarshalJSON(b []byte) error {
	if len(b) > 1 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("billing cycle %q is not a number", s)
		}
		*c = Cycle(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = Cycle(n)
	return nil
}

// AddonSelection is an addon choice made on the product configuration
// page.
type AddonSelection struct {
	AddonType string `json:"addon_type" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// ItemNew is the add-to-cart request body.
type ItemNew struct {
	ProductID    string           `json:"productId" validate:"required"`
	Quantity     int              `json:"quantity" validate:"required,gte=1"`
	BillingCycle Cycle            `json:"billingCycle" validate:"required"`
	Addons       []AddonSelection `json:"addons" validate:"dive"`
	DiscountCode string           `json:"discountCode"`
}

// ItemUp updates an existing line item. Only the quantity may change;
// re-pricing happens by per-unit rescale, not by re-running the quote.
type ItemUp struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}
