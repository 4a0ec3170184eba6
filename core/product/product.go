package product

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/vietcloud/vpshop/core/discount"
)

// Attributes is the display feature mapping shown on the pricing page
// (vCPU, RAM, disk, bandwidth and so on). Stored as JSONB.
type Attributes map[string]string

func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

func (a *Attributes) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return errors.New("attributes column is not a byte slice")
	}
	return json.Unmarshal(b, a)
}

type Product struct {
	ID           string     `json:"id" db:"product_id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description" db:"description"`
	MonthlyPrice int64      `json:"monthlyPrice" db:"monthly_price"`
	YearlyPrice  int64      `json:"yearlyPrice" db:"yearly_price"`
	Attributes   Attributes `json:"attributes" db:"attributes"`
	Active       bool       `json:"active" db:"active"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	Version      int        `json:"-" db:"version"`

	// Discount is the optional single attached discount, loaded
	// alongside the product row.
	Discount *discount.Discount `json:"discount,omitempty" db:"-"`
}

type ProductNew struct {
	Name         string     `json:"name" validate:"required"`
	Description  string     `json:"description"`
	MonthlyPrice int64      `json:"monthlyPrice" validate:"required,gte=0"`
	YearlyPrice  int64      `json:"yearlyPrice" validate:"required,gte=0"`
	Attributes   Attributes `json:"attributes"`
}

type ProductUp struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	MonthlyPrice *int64     `json:"monthlyPrice" validate:"omitempty,gte=0"`
	YearlyPrice  *int64     `json:"yearlyPrice" validate:"omitempty,gte=0"`
	Attributes   Attributes `json:"attributes"`
	Active       *bool      `json:"active"`
}

// OSTemplate is a provisioning image choice. Selecting one is required
// before an instance can be created from an order item.
type OSTemplate struct {
	ID      string `json:"id" db:"os_template_id"`
	Name    string `json:"name" db:"name"`
	Family  string `json:"family" db:"family"`
	Version string `json:"version" db:"version"`
	Active  bool   `json:"active" db:"active"`
}
