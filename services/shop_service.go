package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/petpal-dev/petpal/models"
)

// ShopService runs the catalog and the purchase state machine. All balance
// and stock movements happen inside a single transaction per purchase, with
// conditional UPDATE guards so concurrent buyers cannot oversell stock or
// overspend points.
type ShopService struct {
	db    *gorm.DB
	users *UserService
	now   func() time.Time
}

// NewShopService returns a ShopService backed by db.
func NewShopService(db *gorm.DB, users *UserService) *ShopService {
	return &ShopService{db: db, users: users, now: time.Now}
}

// ItemFilter narrows the catalog listing.
type ItemFilter struct {
	Category string
	Rarity   string
	HotOnly  bool
	NewOnly  bool
	Page     int
	PageSize int
}

// ListItems returns active catalog entries matching the filter, ordered by
// sort order then newest first.
func (s *ShopService) ListItems(f ItemFilter) ([]models.ShopItem, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	q := s.db.Model(&models.ShopItem{}).Where("status = ?", models.ItemStatusActive)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Rarity != "" {
		q = q.Where("rarity = ?", f.Rarity)
	}
	if f.HotOnly {
		q = q.Where("is_hot = ?", true)
	}
	if f.NewOnly {
		q = q.Where("is_new = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.ShopItem
	if err := q.Order("sort_order ASC, created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetItem loads one catalog entry and bumps its view counter.
func (s *ShopService) GetItem(itemID string) (*models.ShopItem, error) {
	var item models.ShopItem
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if err := s.db.Model(&item).
		Update("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return nil, err
	}
	item.ViewCount++
	return &item, nil
}

// PurchaseResult is what a successful purchase returns.
type PurchaseResult struct {
	Purchase    *models.Purchase `json:"purchase"`
	PointsSpent int              `json:"points_spent"`
	Saved       float64          `json:"saved"`
	Message     string           `json:"message"`
}

// Purchase buys quantity units of an item with points. On a domain
// rejection the transaction rolls back and a failed order is recorded with
// the reason, so the purchase history shows the attempt.
func (s *ShopService) Purchase(userID, itemID string, quantity int, notes string) (*PurchaseResult, error) {
	if quantity < 1 {
		quantity = 1
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	var item models.ShopItem
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	now := s.now()
	unitPrice := item.CurrentPrice(now)
	totalPrice := unitPrice * float64(quantity)
	originalTotal := item.Price * float64(quantity)
	cost := int(math.Round(totalPrice))

	fail := func(cause error, reason string) (*PurchaseResult, error) {
		s.recordFailure(userID, &item, quantity, unitPrice, totalPrice, originalTotal, reason)
		return nil, cause
	}

	if !item.CanPurchase(user.Level, now) {
		return fail(ErrNotPurchasable, "item not purchasable")
	}
	if item.Stock != models.UnlimitedStock && item.Stock < quantity {
		return fail(ErrInsufficientStock, "insufficient stock")
	}
	if ok, err := s.withinLimit(userID, &item, quantity, now); err != nil {
		return nil, err
	} else if !ok {
		return fail(ErrLimitExceeded, "purchase limit exceeded")
	}

	purchase := &models.Purchase{
		UserID:        userID,
		ItemID:        item.ID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalPrice:    totalPrice,
		OriginalPrice: originalTotal,
		Status:        models.PurchaseStatusPending,
		Notes:         notes,
		PaymentDetails: newJSON(models.PaymentDetails{
			Method:     "points",
			PointsUsed: cost,
		}),
		ItemSnapshot: newJSON(models.ItemSnapshot{
			Name:      item.Name,
			Category:  item.Category,
			Rarity:    item.Rarity,
			ListPrice: item.Price,
			PaidPrice: unitPrice,
		}),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}
		if err := s.users.DeductPoints(tx, userID, cost); err != nil {
			return err
		}
		if item.Stock != models.UnlimitedStock {
			res := tx.Model(&models.ShopItem{}).
				Where("id = ? AND stock >= ?", item.ID, quantity).
				Updates(map[string]any{
					"stock":      gorm.Expr("stock - ?", quantity),
					"sold_count": gorm.Expr("sold_count + ?", quantity),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		} else {
			if err := tx.Model(&models.ShopItem{}).
				Where("id = ?", item.ID).
				Update("sold_count", gorm.Expr("sold_count + ?", quantity)).Error; err != nil {
				return err
			}
		}
		purchase.Complete(s.now())
		return tx.Model(purchase).Updates(map[string]any{
			"status":       purchase.Status,
			"completed_at": purchase.CompletedAt,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientPoints) {
			return fail(ErrInsufficientPoints, "insufficient points")
		}
		if errors.Is(err, ErrInsufficientStock) {
			return fail(ErrInsufficientStock, "insufficient stock")
		}
		return nil, err
	}

	return &PurchaseResult{
		Purchase:    purchase,
		PointsSpent: cost,
		Saved:       purchase.SavedAmount(),
		Message:     "购买成功",
	}, nil
}

// withinLimit checks the item's per-window quantity cap against the user's
// completed purchases in the current window.
func (s *ShopService) withinLimit(userID string, item *models.ShopItem, quantity int, now time.Time) (bool, error) {
	limit := item.PurchaseLimit.Data()
	if limit.Type == "" || limit.Quantity <= 0 {
		return true, nil
	}
	windowStart := models.LimitWindowStart(limit.Type, now)
	var bought int64
	q := s.db.Model(&models.Purchase{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("user_id = ? AND item_id = ? AND status = ?", userID, item.ID, models.PurchaseStatusCompleted)
	if !windowStart.IsZero() {
		q = q.Where("created_at >= ?", windowStart)
	}
	if err := q.Scan(&bought).Error; err != nil {
		return false, err
	}
	return int(bought)+quantity <= limit.Quantity, nil
}

// recordFailure writes a failed order outside any transaction so rejected
// attempts stay visible in the purchase history. Write errors are swallowed
// because the caller's sentinel matters more than the audit row.
func (s *ShopService) recordFailure(userID string, item *models.ShopItem, quantity int, unitPrice, totalPrice, originalTotal float64, reason string) {
	p := &models.Purchase{
		UserID:        userID,
		ItemID:        item.ID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalPrice:    totalPrice,
		OriginalPrice: originalTotal,
		Status:        models.PurchaseStatusFailed,
		FailureReason: reason,
		ItemSnapshot: newJSON(models.ItemSnapshot{
			Name:      item.Name,
			Category:  item.Category,
			Rarity:    item.Rarity,
			ListPrice: item.Price,
			PaidPrice: unitPrice,
		}),
	}
	s.db.Create(p)
}

// ListPurchases returns the user's orders, newest first, optionally
// filtered by status.
func (s *ShopService) ListPurchases(userID, status string, page, pageSize int) ([]models.Purchase, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	q := s.db.Model(&models.Purchase{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var purchases []models.Purchase
	if err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&purchases).Error; err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

// GetPurchase loads one of the user's orders.
func (s *ShopService) GetPurchase(userID, purchaseID string) (*models.Purchase, error) {
	var p models.Purchase
	err := s.db.First(&p, "id = ? AND user_id = ?", purchaseID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Cancel voids a pending order. Nothing was debited yet, so no balance or
// stock movement is needed.
func (s *ShopService) Cancel(userID, purchaseID string) (*models.Purchase, error) {
	p, err := s.GetPurchase(userID, purchaseID)
	if err != nil {
		return nil, err
	}
	if !p.CanCancel() {
		return nil, ErrNotCancellable
	}
	p.Cancel(s.now())
	if err := s.db.Model(p).Updates(map[string]any{
		"status":       p.Status,
		"cancelled_at": p.CancelledAt,
	}).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Refund reverses a completed order inside the refund window: points come
// back, finite stock is restored and the sold counter drops, floored at 0.
func (s *ShopService) Refund(userID, purchaseID string) (*models.Purchase, error) {
	p, err := s.GetPurchase(userID, purchaseID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !p.CanRefund(now) {
		return nil, ErrNotRefundable
	}

	refund := p.PaymentDetails.Data().PointsUsed
	if refund == 0 {
		refund = int(math.Round(p.TotalPrice))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.users.AddPoints(tx, userID, refund); err != nil {
			return err
		}
		var item models.ShopItem
		if err := tx.First(&item, "id = ?", p.ItemID).Error; err != nil {
			return err
		}
		changes := map[string]any{}
		if item.Stock != models.UnlimitedStock {
			changes["stock"] = gorm.Expr("stock + ?", p.Quantity)
		}
		sold := item.SoldCount - p.Quantity
		if sold < 0 {
			sold = 0
		}
		changes["sold_count"] = sold
		if err := tx.Model(&item).Updates(changes).Error; err != nil {
			return err
		}
		p.Refund(now)
		return tx.Model(p).Updates(map[string]any{
			"status":      p.Status,
			"refunded_at": p.RefundedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
