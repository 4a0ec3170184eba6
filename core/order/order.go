package order

import (
	"time"

	"github.com/vietcloud/vpshop/core/cart"
)

type Status string

const (
	Pending      Status = "pending"
	Paid         Status = "paid"
	Provisioning Status = "provisioning"
	Completed    Status = "completed"
	Expired      Status = "expired"
	Cancelled    Status = "cancelled"
)

// validNext is the order's forward path; terminal states have no
// successors.
var validNext = map[Status]map[Status]bool{
	Pending:      {Paid: true, Expired: true, Cancelled: true},
	Paid:         {Provisioning: true},
	Provisioning: {Completed: true},
	Completed:    {},
	Expired:      {},
	Cancelled:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

type Order struct {
	ID        string    `json:"id" db:"order_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Status    Status    `json:"status" db:"status"`
	Subtotal  int64     `json:"subtotal" db:"subtotal"`
	VAT       int64     `json:"vat" db:"vat"`
	Total     int64     `json:"total" db:"total"`
	Currency  string    `json:"currency" db:"currency"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Items []Item `json:"items,omitempty" db:"-"`
}

type Item struct {
	ID           string      `json:"id" db:"order_item_id"`
	OrderID      string      `json:"orderId" db:"order_id"`
	ProductID    string      `json:"productId" db:"product_id"`
	ProductName  string      `json:"productName" db:"product_name"`
	Quantity     int         `json:"quantity" db:"quantity"`
	BillingCycle int         `json:"billingCycle" db:"billing_cycle"`
	UnitPrice    int64       `json:"unitPrice" db:"unit_price"`
	TotalPrice   int64       `json:"totalPrice" db:"total_price"`
	OSTemplateID *string     `json:"osTemplateId,omitempty" db:"os_template_id"`
	Config       cart.Config `json:"config" db:"config"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
}

type StatusUp struct {
	ID        string    `db:"order_id"`
	Status    Status    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Invoice is the printable order document; rendering is left to the
// caller.
type Invoice struct {
	OrderID  string    `json:"orderId"`
	IssuedAt time.Time `json:"issuedAt"`
	Status   Status    `json:"status"`
	Currency string    `json:"currency"`
	Lines    []Line    `json:"lines"`
	Subtotal int64     `json:"subtotal"`
	VAT      int64     `json:"vat"`
	Total    int64     `json:"total"`
}

type Line struct {
	Description  string `json:"description"`
	Quantity     int    `json:"quantity"`
	BillingCycle int    `json:"billingCycle"`
	UnitPrice    int64  `json:"unitPrice"`
	TotalPrice   int64  `json:"totalPrice"`
}
