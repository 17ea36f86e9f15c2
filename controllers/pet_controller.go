package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/petpal-dev/petpal/services"
	"github.com/petpal-dev/petpal/utils"
)

const petRankingCacheKey = "pets:ranking:"

// PetController handles pet CRUD, care advice and the leaderboard.
type PetController struct {
	pets *services.PetService
}

// NewPetController creates a new controller instance.
func NewPetController(pets *services.PetService) *PetController {
	return &PetController{pets: pets}
}

type createPetRequest struct {
	Name        string     `json:"name" binding:"required,max=100"`
	Type        string     `json:"type"`
	Breed       string     `json:"breed"`
	Gender      string     `json:"gender"`
	Birthday    *time.Time `json:"birthday"`
	Avatar      string     `json:"avatar"`
	Description string     `json:"description"`
}

// Create adopts a new pet for the authenticated user.
func (p *PetController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req createPetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "name is required")
		return
	}
	pet, err := p.pets.Create(userID, services.CreatePetInput{
		Name:        utils.SanitizeText(req.Name),
		Type:        req.Type,
		Breed:       req.Breed,
		Gender:      req.Gender,
		Birthday:    req.Birthday,
		Avatar:      req.Avatar,
		Description: utils.Sanitize(req.Description),
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", pet)
}

// List returns the user's pets.
func (p *PetController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	pets, err := p.pets.List(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, pets)
}

// Get returns one pet with derived fields.
func (p *PetController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	pet, err := p.pets.Get(userID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	now := time.Now()
	utils.Success(ctx, gin.H{
		"pet":           pet,
		"age_months":    pet.Age(now),
		"needs_care":    pet.NeedsCare(),
		"overall_score": pet.OverallScore(),
		"next_level_at": pet.NextLevelExperience(),
	})
}

type updatePetRequest struct {
	Name        *string    `json:"name"`
	Breed       *string    `json:"breed"`
	Gender      *string    `json:"gender"`
	Birthday    *time.Time `json:"birthday"`
	Avatar      *string    `json:"avatar"`
	Description *string    `json:"description"`
}

// Update edits a pet's descriptive fields.
func (p *PetController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req updatePetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request body")
		return
	}
	if req.Name != nil {
		clean := utils.SanitizeText(*req.Name)
		req.Name = &clean
	}
	if req.Description != nil {
		clean := utils.Sanitize(*req.Description)
		req.Description = &clean
	}
	pet, err := p.pets.Update(userID, ctx.Param("id"), services.UpdatePetInput{
		Name:        req.Name,
		Breed:       req.Breed,
		Gender:      req.Gender,
		Birthday:    req.Birthday,
		Avatar:      req.Avatar,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, pet)
}

// Delete removes a pet.
func (p *PetController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if err := p.pets.Delete(userID, ctx.Param("id")); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "pet deleted"})
}

// Advice returns care suggestions for one pet.
func (p *PetController) Advice(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	pet, advice, err := p.pets.CareAdvice(userID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"status": pet.Status,
		"advice": advice,
	})
}

// Ranking returns the pet leaderboard, cached in redis for five minutes.
func (p *PetController) Ranking(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	key := petRankingCacheKey + strconv.Itoa(limit)

	var cached []services.RankedPet
	if utils.CacheGetJSON(key, &cached) {
		utils.Success(ctx, cached)
		return
	}

	ranking, err := p.pets.Ranking(limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.CacheSetJSON(key, ranking, 5*time.Minute)
	utils.Success(ctx, ranking)
}
