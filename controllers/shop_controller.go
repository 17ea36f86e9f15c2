package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/petpal-dev/petpal/models"
	"github.com/petpal-dev/petpal/services"
	"github.com/petpal-dev/petpal/utils"
)

const shopItemCachePrefix = "shop:item:"

// ShopController handles the catalog and the purchase lifecycle.
type ShopController struct {
	shop *services.ShopService
}

// NewShopController creates a new controller instance.
func NewShopController(shop *services.ShopService) *ShopController {
	return &ShopController{shop: shop}
}

// ListItems returns the active catalog with current prices.
func (s *ShopController) ListItems(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	items, total, err := s.shop.ListItems(services.ItemFilter{
		Category: ctx.Query("category"),
		Rarity:   ctx.Query("rarity"),
		HotOnly:  ctx.Query("hot") == "true",
		NewOnly:  ctx.Query("new") == "true",
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	now := time.Now()
	views := make([]gin.H, 0, len(items))
	for i := range items {
		views = append(views, itemView(&items[i], now))
	}
	utils.Success(ctx, gin.H{
		"items": views,
		"total": total,
		"page":  page,
	})
}

// GetItem returns one catalog entry, cached in redis. The view counter is
// only bumped on cache misses, which keeps hot items cheap.
func (s *ShopController) GetItem(ctx *gin.Context) {
	itemID := ctx.Param("id")
	key := shopItemCachePrefix + itemID

	var cached gin.H
	if utils.CacheGetJSON(key, &cached) {
		utils.Success(ctx, cached)
		return
	}

	item, err := s.shop.GetItem(itemID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	view := itemView(item, time.Now())
	utils.CacheSetJSON(key, view, 10*time.Minute)
	utils.Success(ctx, view)
}

func itemView(item *models.ShopItem, now time.Time) gin.H {
	return gin.H{
		"item":                item,
		"current_price":       item.CurrentPrice(now),
		"discount_percentage": item.DiscountPercentage(now),
		"in_stock":            item.IsInStock(),
		"available":           item.Available(now),
	}
}

type purchaseRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// Purchase buys an item with points.
func (s *ShopController) Purchase(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req purchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40006, "item_id is required")
		return
	}
	result, err := s.shop.Purchase(userID, req.ItemID, req.Quantity, utils.SanitizeText(req.Notes))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	// Stock moved, drop the cached detail
	utils.InvalidateByPrefix(shopItemCachePrefix + req.ItemID)
	utils.Respond(ctx, http.StatusCreated, 0, "success", result)
}

// ListPurchases returns the user's order history.
func (s *ShopController) ListPurchases(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	purchases, total, err := s.shop.ListPurchases(userID, ctx.Query("status"), page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"items": purchases,
		"total": total,
		"page":  page,
	})
}

// Cancel voids a pending order.
func (s *ShopController) Cancel(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	purchase, err := s.shop.Cancel(userID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, purchase)
}

// Refund reverses a completed order within the refund window.
func (s *ShopController) Refund(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	purchase, err := s.shop.Refund(userID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(shopItemCachePrefix + purchase.ItemID)
	utils.Success(ctx, purchase)
}
