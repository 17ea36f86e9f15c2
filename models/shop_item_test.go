package models

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func newDiscount(d Discount) datatypes.JSONType[Discount] {
	return datatypes.NewJSONType(d)
}

func activeItem(price float64) *ShopItem {
	return &ShopItem{
		ID:     "i1",
		Name:   "宠物零食",
		Price:  price,
		Stock:  UnlimitedStock,
		Status: ItemStatusActive,
	}
}

func TestShopItem_CurrentPrice_PercentageCapped(t *testing.T) {
	item := activeItem(100)
	item.Discount = newDiscount(Discount{
		Type:        DiscountPercentage,
		Value:       20,
		MaxDiscount: 15,
	})

	// 20% of 100 is 20, capped at 15
	if got := item.CurrentPrice(time.Now()); got != 85 {
		t.Fatalf("current price = %v, want 85", got)
	}
	if got := item.DiscountPercentage(time.Now()); got != 15 {
		t.Fatalf("discount percentage = %d, want 15", got)
	}
}

func TestShopItem_CurrentPrice_PercentageUncapped(t *testing.T) {
	item := activeItem(100)
	item.Discount = newDiscount(Discount{Type: DiscountPercentage, Value: 20})

	if got := item.CurrentPrice(time.Now()); got != 80 {
		t.Fatalf("current price = %v, want 80", got)
	}
}

func TestShopItem_CurrentPrice_FixedFloorsAtZero(t *testing.T) {
	item := activeItem(30)
	item.Discount = newDiscount(Discount{Type: DiscountFixed, Value: 50})

	if got := item.CurrentPrice(time.Now()); got != 0 {
		t.Fatalf("current price = %v, want 0", got)
	}
}

func TestShopItem_DiscountWindow(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	item := activeItem(100)
	item.Discount = newDiscount(Discount{
		Type:      DiscountFixed,
		Value:     10,
		StartDate: &future,
	})
	if item.CurrentPrice(now) != 100 {
		t.Fatalf("discount must not apply before its start date")
	}

	item.Discount = newDiscount(Discount{
		Type:    DiscountFixed,
		Value:   10,
		EndDate: &past,
	})
	if item.CurrentPrice(now) != 100 {
		t.Fatalf("discount must not apply after its end date")
	}

	item.Discount = newDiscount(Discount{
		Type:      DiscountFixed,
		Value:     10,
		StartDate: &past,
		EndDate:   &future,
	})
	if item.CurrentPrice(now) != 90 {
		t.Fatalf("discount inside its window must apply")
	}
}

func TestShopItem_CanPurchase(t *testing.T) {
	now := time.Now()

	item := activeItem(10)
	if !item.CanPurchase(1, now) {
		t.Fatalf("active unlimited item should be purchasable")
	}

	item.Status = ItemStatusInactive
	if item.CanPurchase(1, now) {
		t.Fatalf("inactive item must not be purchasable")
	}

	item = activeItem(10)
	item.Stock = 0
	if item.CanPurchase(1, now) {
		t.Fatalf("out-of-stock item must not be purchasable")
	}

	item = activeItem(10)
	item.MinLevel = 5
	if item.CanPurchase(4, now) {
		t.Fatalf("level gate must hold")
	}
	if !item.CanPurchase(5, now) {
		t.Fatalf("level at the gate is allowed")
	}

	item = activeItem(10)
	future := now.Add(time.Hour)
	item.AvailableFrom = &future
	if item.CanPurchase(1, now) {
		t.Fatalf("item before its sale window must not be purchasable")
	}
}

func TestLimitWindowStart(t *testing.T) {
	// Wednesday 2026-08-26 15:30 local
	now := time.Date(2026, 8, 26, 15, 30, 0, 0, time.Local)

	daily := LimitWindowStart(LimitDaily, now)
	if !daily.Equal(time.Date(2026, 8, 26, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("daily window = %v", daily)
	}

	weekly := LimitWindowStart(LimitWeekly, now)
	if !weekly.Equal(time.Date(2026, 8, 23, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("weekly window should start on Sunday, got %v", weekly)
	}

	monthly := LimitWindowStart(LimitMonthly, now)
	if !monthly.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("monthly window = %v", monthly)
	}

	if !LimitWindowStart(LimitTotal, now).IsZero() {
		t.Fatalf("total window has no start")
	}
}
