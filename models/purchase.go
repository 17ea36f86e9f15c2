package models

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Purchase statuses.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusFailed    = "failed"
	PurchaseStatusCancelled = "cancelled"
	PurchaseStatusRefunded  = "refunded"
)

// RefundWindow is how long after completion a purchase may be refunded.
const RefundWindow = 24 * time.Hour

// PaymentDetails records how a purchase was settled. Points are the only
// currency today; the struct leaves room for the cash flows the
// mini-program may add later.
type PaymentDetails struct {
	Method       string  `json:"method"`
	PointsUsed   int     `json:"points_used"`
	AmountPaid   float64 `json:"amount_paid,omitempty"`
	ExternalTxID string  `json:"external_tx_id,omitempty"`
}

// ItemSnapshot freezes the catalog entry at purchase time so later price or
// name edits never rewrite history.
type ItemSnapshot struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Rarity    string  `json:"rarity"`
	ListPrice float64 `json:"list_price"`
	PaidPrice float64 `json:"paid_price"`
}

// Purchase is one order of a shop item. Lifecycle:
// pending -> completed | failed | cancelled, completed -> refunded.
type Purchase struct {
	ID             string                             `gorm:"primaryKey;size:36" json:"id"`
	UserID         string                             `gorm:"size:36;index;not null" json:"user_id"`
	User           *User                              `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ItemID         string                             `gorm:"size:36;index;not null" json:"item_id"`
	Item           *ShopItem                          `json:"-"`
	Quantity       int                                `gorm:"default:1" json:"quantity"`
	UnitPrice      float64                            `json:"unit_price"`
	TotalPrice     float64                            `json:"total_price"`
	OriginalPrice  float64                            `json:"original_price"`
	Status         string                             `gorm:"size:20;default:pending;index" json:"status"`
	TransactionID  string                             `gorm:"size:40;uniqueIndex" json:"transaction_id"`
	PaymentDetails datatypes.JSONType[PaymentDetails] `json:"payment_details"`
	ItemSnapshot   datatypes.JSONType[ItemSnapshot]   `json:"item_snapshot"`
	FailureReason  string                             `gorm:"size:255" json:"failure_reason,omitempty"`
	Notes          string                             `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt    *time.Time                         `json:"completed_at,omitempty"`
	CancelledAt    *time.Time                         `json:"cancelled_at,omitempty"`
	RefundedAt     *time.Time                         `json:"refunded_at,omitempty"`
	CreatedAt      time.Time                          `json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}

// BeforeCreate assigns the UUID primary key and a transaction id.
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.TransactionID == "" {
		p.TransactionID = NewTransactionID()
	}
	return nil
}

// NewTransactionID builds an order reference of the form
// TXN<unix-millis><6 random base36 chars>, uppercased.
func NewTransactionID() string {
	suffix := make([]byte, 6)
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return strings.ToUpper(fmt.Sprintf("TXN%d%s", time.Now().UnixMilli(), suffix))
}

// CanCancel reports whether the purchase is still pending.
func (p *Purchase) CanCancel() bool {
	return p.Status == PurchaseStatusPending
}

// CanRefund reports whether the purchase completed within the refund window.
func (p *Purchase) CanRefund(now time.Time) bool {
	return p.Status == PurchaseStatusCompleted &&
		p.CompletedAt != nil &&
		now.Sub(*p.CompletedAt) <= RefundWindow
}

// Complete marks the purchase settled.
func (p *Purchase) Complete(now time.Time) {
	p.Status = PurchaseStatusCompleted
	p.CompletedAt = &now
}

// Cancel marks a pending purchase cancelled.
func (p *Purchase) Cancel(now time.Time) {
	p.Status = PurchaseStatusCancelled
	p.CancelledAt = &now
}

// Refund marks a completed purchase refunded.
func (p *Purchase) Refund(now time.Time) {
	p.Status = PurchaseStatusRefunded
	p.RefundedAt = &now
}

// Fail marks the purchase failed with a reason.
func (p *Purchase) Fail(reason string) {
	p.Status = PurchaseStatusFailed
	p.FailureReason = reason
}

// SavedAmount is how much the discount saved versus the list price.
func (p *Purchase) SavedAmount() float64 {
	saved := p.OriginalPrice - p.TotalPrice
	if saved < 0 {
		return 0
	}
	return saved
}
