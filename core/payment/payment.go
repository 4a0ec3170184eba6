package payment

import "time"

type Status string

const (
	Pending   Status = "pending"
	Paid      Status = "paid"
	Expired   Status = "expired"
	Cancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s != Pending
}

// Payment binds an order to a gateway payment intent. ProviderID is
// the gateway's identifier; QRCode is the payload the storefront
// renders for the bank transfer.
type Payment struct {
	ID         string    `json:"id" db:"payment_id"`
	OrderID    string    `json:"orderId" db:"order_id"`
	ProviderID string    `json:"providerId" db:"provider_id"`
	Status     Status    `json:"status" db:"status"`
	Amount     int64     `json:"amount" db:"amount"`
	QRCode     string    `json:"qrCode" db:"qr_code"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

type StatusUp struct {
	ID        string    `db:"payment_id"`
	Status    Status    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}
