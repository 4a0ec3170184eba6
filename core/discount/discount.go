package discount

import "time"

// Discount is a percent-off code bound to a single product.
type Discount struct {
	ID        string    `json:"id" db:"discount_id"`
	Code      string    `json:"code" db:"code"`
	ProductID string    `json:"productId" db:"product_id"`
	Percent   int       `json:"discountPercent" db:"discount_percent"`
	StartsAt  time.Time `json:"startsAt" db:"starts_at"`
	EndsAt    time.Time `json:"endsAt" db:"ends_at"`
	Active    bool      `json:"active" db:"active"`
}

type DiscountNew struct {
	Code      string    `json:"code" validate:"required"`
	ProductID string    `json:"productId" validate:"required"`
	Percent   int       `json:"discountPercent" validate:"required,gte=1,lte=100"`
	StartsAt  time.Time `json:"startsAt" validate:"required"`
	EndsAt    time.Time `json:"endsAt" validate:"required,gtfield=StartsAt"`
}

type DiscountUp struct {
	Code     *string    `json:"code"`
	Percent  *int       `json:"discountPercent" validate:"omitempty,gte=1,lte=100"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
	Active   *bool      `json:"active"`
}

// Current reports whether the discount can be applied now.
func (d Discount) Current(now time.Time) bool {
	return d.Active && !now.Before(d.StartsAt) && now.Before(d.EndsAt)
}
