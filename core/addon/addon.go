package addon

import "time"

// Addon is a metered resource (CPU, RAM, disk, IP, control panel)
// priced per unit per month on top of a base product.
type Addon struct {
	ID          string    `json:"id" db:"addon_id"`
	Type        string    `json:"addonType" db:"addon_type"`
	Name        string    `json:"name" db:"name"`
	Unit        string    `json:"unit" db:"unit"`
	UnitPrice   int64     `json:"unitPrice" db:"unit_price"`
	MaxQuantity int       `json:"maxQuantity" db:"max_quantity"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type AddonNew struct {
	Type        string `json:"addonType" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Unit        string `json:"unit" validate:"required"`
	UnitPrice   int64  `json:"unitPrice" validate:"required,gte=0"`
	MaxQuantity int    `json:"maxQuantity" validate:"required,gte=1"`
}

type AddonUp struct {
	Name        *string `json:"name"`
	Unit        *string `json:"unit"`
	UnitPrice   *int64  `json:"unitPrice" validate:"omitempty,gte=0"`
	MaxQuantity *int    `json:"maxQuantity" validate:"omitempty,gte=1"`
	Active      *bool   `json:"active"`
}
