package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Shop item statuses.
const (
	ItemStatusActive   = "active"
	ItemStatusInactive = "inactive"
	ItemStatusSoldOut  = "sold_out"
)

// Discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Purchase limit window types.
const (
	LimitDaily   = "daily"
	LimitWeekly  = "weekly"
	LimitMonthly = "monthly"
	LimitTotal   = "total"
)

// UnlimitedStock marks an item that never runs out.
const UnlimitedStock = -1

// Discount describes a time-bounded price reduction. A zero Type means no
// discount is configured.
type Discount struct {
	Type        string     `json:"type"`
	Value       float64    `json:"value"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	MaxDiscount float64    `json:"max_discount,omitempty"`
}

// PurchaseLimit caps how many units one user may buy inside a rolling
// window. A zero Type means unlimited.
type PurchaseLimit struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

// ShopItem is a catalog entry. Price math and availability live here as
// pure methods; stock and soldCount mutations happen in ShopService inside
// transactions.
type ShopItem struct {
	ID            string                            `gorm:"primaryKey;size:36" json:"id"`
	Name          string                            `gorm:"size:100;not null" json:"name"`
	Description   string                            `gorm:"type:text" json:"description"`
	Category      string                            `gorm:"size:30;index" json:"category"`
	Type          string                            `gorm:"size:30" json:"type"`
	Rarity        string                            `gorm:"size:20;default:common" json:"rarity"`
	Icon          string                            `gorm:"size:500" json:"icon"`
	Price         float64                           `gorm:"not null" json:"price"`
	OriginalPrice float64                           `json:"original_price"`
	Discount      datatypes.JSONType[Discount]      `json:"discount"`
	Stock         int                               `gorm:"default:-1" json:"stock"`
	PurchaseLimit datatypes.JSONType[PurchaseLimit] `json:"purchase_limit"`
	MinLevel      int                               `gorm:"default:1" json:"min_level"`
	Status        string                            `gorm:"size:20;default:active;index" json:"status"`
	AvailableFrom *time.Time                        `json:"available_from,omitempty"`
	AvailableTo   *time.Time                        `json:"available_to,omitempty"`
	IsHot         bool                              `gorm:"default:false" json:"is_hot"`
	IsNew         bool                              `gorm:"default:false" json:"is_new"`
	SortOrder     int                               `gorm:"default:0" json:"sort_order"`
	SoldCount     int                               `gorm:"default:0" json:"sold_count"`
	ViewCount     int                               `gorm:"default:0" json:"view_count"`
	CreatedAt     time.Time                         `json:"created_at"`
	UpdatedAt     time.Time                         `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key.
func (s *ShopItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsInStock reports whether at least one unit can be sold.
func (s *ShopItem) IsInStock() bool {
	return s.Stock == UnlimitedStock || s.Stock > 0
}

// DiscountValid reports whether the configured discount applies at now.
func (s *ShopItem) DiscountValid(now time.Time) bool {
	d := s.Discount.Data()
	if d.Type == "" || d.Value <= 0 {
		return false
	}
	if d.StartDate != nil && now.Before(*d.StartDate) {
		return false
	}
	if d.EndDate != nil && now.After(*d.EndDate) {
		return false
	}
	return true
}

// CurrentPrice returns the unit price at now with any valid discount
// applied. Percentage discounts are capped by MaxDiscount when set; the
// result never drops below zero.
func (s *ShopItem) CurrentPrice(now time.Time) float64 {
	if !s.DiscountValid(now) {
		return s.Price
	}
	d := s.Discount.Data()
	var reduction float64
	switch d.Type {
	case DiscountPercentage:
		reduction = s.Price * d.Value / 100
		if d.MaxDiscount > 0 && reduction > d.MaxDiscount {
			reduction = d.MaxDiscount
		}
	case DiscountFixed:
		reduction = d.Value
	default:
		return s.Price
	}
	price := s.Price - reduction
	if price < 0 {
		return 0
	}
	return price
}

// DiscountPercentage returns the effective reduction as a whole percent of
// the list price, for display.
func (s *ShopItem) DiscountPercentage(now time.Time) int {
	if s.Price <= 0 || !s.DiscountValid(now) {
		return 0
	}
	return int(math.Round((s.Price - s.CurrentPrice(now)) / s.Price * 100))
}

// Available reports whether now falls inside the item's sale window.
func (s *ShopItem) Available(now time.Time) bool {
	if s.AvailableFrom != nil && now.Before(*s.AvailableFrom) {
		return false
	}
	if s.AvailableTo != nil && now.After(*s.AvailableTo) {
		return false
	}
	return true
}

// CanPurchase reports whether a user at the given level may buy the item
// at now. Per-window quantity limits are checked separately against the
// purchase history.
func (s *ShopItem) CanPurchase(userLevel int, now time.Time) bool {
	return s.Status == ItemStatusActive &&
		s.IsInStock() &&
		userLevel >= s.MinLevel &&
		s.Available(now)
}

// LimitWindowStart returns the beginning of the purchase-limit window that
// contains now. Weeks start on Sunday at local midnight.
func LimitWindowStart(limitType string, now time.Time) time.Time {
	switch limitType {
	case LimitDaily:
		return DateOnly(now)
	case LimitWeekly:
		return DateOnly(now).AddDate(0, 0, -int(now.Weekday()))
	case LimitMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}
