package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/petpal-dev/petpal/services"
	"github.com/petpal-dev/petpal/utils"
)

// InteractionController handles pet interactions and their history.
type InteractionController struct {
	pets         *services.PetService
	interactions *services.InteractionService
}

// NewInteractionController creates a new controller instance.
func NewInteractionController(pets *services.PetService, interactions *services.InteractionService) *InteractionController {
	return &InteractionController{pets: pets, interactions: interactions}
}

type interactRequest struct {
	Type      string `json:"type" binding:"required"`
	Item      string `json:"item"`
	Intensity int    `json:"intensity"`
	Duration  int    `json:"duration"`
	Notes     string `json:"notes"`
}

// Interact applies one action to a pet.
func (i *InteractionController) Interact(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req interactRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "type is required")
		return
	}
	result, err := i.pets.Interact(userID, ctx.Param("id"), services.InteractInput{
		Type:      req.Type,
		Item:      req.Item,
		Intensity: req.Intensity,
		Duration:  req.Duration,
		Notes:     utils.SanitizeText(req.Notes),
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

type batchRequest struct {
	PetIDs    []string `json:"pet_ids" binding:"required,min=1"`
	Type      string   `json:"type" binding:"required"`
	Item      string   `json:"item"`
	Intensity int      `json:"intensity"`
	Notes     string   `json:"notes"`
}

// Batch applies the same action to several pets, reporting per-pet outcomes.
func (i *InteractionController) Batch(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req batchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "pet_ids and type are required")
		return
	}
	results := i.interactions.Batch(userID, req.PetIDs, services.InteractInput{
		Type:      req.Type,
		Item:      req.Item,
		Intensity: req.Intensity,
		Notes:     utils.SanitizeText(req.Notes),
	})
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	utils.Success(ctx, gin.H{
		"total":     len(results),
		"succeeded": succeeded,
		"results":   results,
	})
}

// History lists the user's interactions, optionally filtered by pet or type.
func (i *InteractionController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	entries, total, err := i.interactions.History(
		userID,
		ctx.Query("pet_id"),
		ctx.Query("type"),
		page,
		pageSize,
	)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"items": entries,
		"total": total,
		"page":  page,
	})
}

// PetHistory lists interactions for one pet.
func (i *InteractionController) PetHistory(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	// Ownership check before exposing the log
	if _, err := i.pets.Get(userID, ctx.Param("id")); err != nil {
		respondServiceError(ctx, err)
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	entries, total, err := i.interactions.History(userID, ctx.Param("id"), ctx.Query("type"), page, pageSize)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"items": entries,
		"total": total,
		"page":  page,
	})
}
