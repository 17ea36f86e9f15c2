package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/petpal-dev/petpal/models"
)

// InteractionBonusPoints is granted on top of the action reward whenever an
// interaction levels the pet up.
const InteractionBonusPoints = 20

// PetService manages pets and resolves interactions against them. Attribute
// decay is applied lazily on every read and mutation path, so pets age
// correctly without a background scheduler.
type PetService struct {
	db    *gorm.DB
	users *UserService
	now   func() time.Time
}

// NewPetService returns a PetService backed by db.
func NewPetService(db *gorm.DB, users *UserService) *PetService {
	return &PetService{db: db, users: users, now: time.Now}
}

// CreatePetInput carries the fields a user may set when adopting a pet.
type CreatePetInput struct {
	Name        string
	Type        string
	Breed       string
	Gender      string
	Birthday    *time.Time
	Avatar      string
	Description string
}

// Create adopts a new pet for the user. Each user may keep at most
// models.MaxPetsPerUser pets.
func (s *PetService) Create(userID string, in CreatePetInput) (*models.Pet, error) {
	if _, err := s.users.GetByID(userID); err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.Model(&models.Pet{}).Where("owner_id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count >= models.MaxPetsPerUser {
		return nil, ErrPetLimitReached
	}

	petType := in.Type
	if petType == "" {
		petType = models.PetTypeCat
	}
	gender := in.Gender
	if gender == "" {
		gender = "unknown"
	}
	pet := models.Pet{
		Name:        in.Name,
		Type:        petType,
		Breed:       in.Breed,
		Gender:      gender,
		Birthday:    in.Birthday,
		Avatar:      in.Avatar,
		Description: in.Description,
		Health:      100,
		Happiness:   100,
		Energy:      100,
		Hunger:      100,
		Level:       1,
		Status:      models.PetStatusHealthy,
		OwnerID:     userID,
	}
	if err := s.db.Create(&pet).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

// Get loads one of the user's pets with decay applied and persisted.
func (s *PetService) Get(userID, petID string) (*models.Pet, error) {
	var pet models.Pet
	err := s.db.First(&pet, "id = ? AND owner_id = ?", petID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, err
	}
	if err := s.applyDecay(&pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// List returns the user's pets with decay applied.
func (s *PetService) List(userID string) ([]models.Pet, error) {
	var pets []models.Pet
	if err := s.db.Where("owner_id = ?", userID).Order("created_at ASC").Find(&pets).Error; err != nil {
		return nil, err
	}
	for i := range pets {
		if err := s.applyDecay(&pets[i]); err != nil {
			return nil, err
		}
	}
	return pets, nil
}

// UpdatePetInput carries the editable pet fields.
type UpdatePetInput struct {
	Name        *string
	Breed       *string
	Gender      *string
	Birthday    *time.Time
	Avatar      *string
	Description *string
}

// Update edits a pet's descriptive fields. Attributes are never edited
// directly; they only move through decay and interactions.
func (s *PetService) Update(userID, petID string, in UpdatePetInput) (*models.Pet, error) {
	pet, err := s.Get(userID, petID)
	if err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = *in.Name
	}
	if in.Breed != nil {
		changes["breed"] = *in.Breed
	}
	if in.Gender != nil {
		changes["gender"] = *in.Gender
	}
	if in.Birthday != nil {
		changes["birthday"] = *in.Birthday
	}
	if in.Avatar != nil {
		changes["avatar"] = *in.Avatar
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if len(changes) > 0 {
		if err := s.db.Model(pet).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(userID, petID)
}

// Delete removes a pet and its interaction history (FK cascade).
func (s *PetService) Delete(userID, petID string) error {
	res := s.db.Where("id = ? AND owner_id = ?", petID, userID).Delete(&models.Pet{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPetNotFound
	}
	return nil
}

// applyDecay runs the hourly decay on the loaded pet and persists the
// attribute columns when anything changed.
func (s *PetService) applyDecay(pet *models.Pet) error {
	before := models.SnapshotPet(pet)
	pet.Decay(s.now())
	after := models.SnapshotPet(pet)
	if before == after {
		return nil
	}
	return s.db.Model(pet).Updates(map[string]any{
		"health":    pet.Health,
		"happiness": pet.Happiness,
		"energy":    pet.Energy,
		"hunger":    pet.Hunger,
		"status":    pet.Status,
	}).Error
}

// InteractInput describes one interaction request.
type InteractInput struct {
	Type      string
	Item      string
	Intensity int
	Duration  int
	Notes     string
}

// InteractResult is what an interaction produced.
type InteractResult struct {
	Pet              *models.Pet         `json:"pet"`
	Interaction      *models.Interaction `json:"interaction"`
	ExperienceGained int                 `json:"experience_gained"`
	PointsGained     int                 `json:"points_gained"`
	LevelUp          bool                `json:"level_up"`
	NewLevel         int                 `json:"new_level,omitempty"`
	Message          string              `json:"message"`
}

// Interact applies one action to a pet: decay first, then the action's
// attribute deltas, experience and level-ups, all persisted together with
// the log entry and the owner's point credit in one transaction.
func (s *PetService) Interact(userID, petID string, in InteractInput) (*InteractResult, error) {
	pet, err := s.Get(userID, petID)
	if err != nil {
		return nil, err
	}
	if in.Intensity <= 0 {
		in.Intensity = models.DefaultIntensity
	}
	if in.Intensity > 10 {
		in.Intensity = 10
	}

	now := s.now()
	before := models.SnapshotPet(pet)
	exp, points, message, err := applyAction(pet, in.Type, now)
	if err != nil {
		return nil, err
	}

	levelBefore := pet.Level
	pet.Experience += exp
	pet.LevelUp()
	leveledUp := pet.Level > levelBefore
	if leveledUp {
		points += InteractionBonusPoints
	}
	pet.UpdateStatus()
	pet.LastInteractionTime = &now
	after := models.SnapshotPet(pet)

	entry := &models.Interaction{
		PetID:            pet.ID,
		UserID:           userID,
		Type:             in.Type,
		Result:           models.InteractionResultSuccess,
		Item:             in.Item,
		Intensity:        in.Intensity,
		Duration:         in.Duration,
		ExperienceGained: exp,
		PointsGained:     points,
		AttributeChanges: newJSON(models.AttributeChanges{
			Health:    after.Health - before.Health,
			Happiness: after.Happiness - before.Happiness,
			Energy:    after.Energy - before.Energy,
			Hunger:    after.Hunger - before.Hunger,
		}),
		PetStateBefore:  newJSON(before),
		PetStateAfter:   newJSON(after),
		LevelUpOccurred: leveledUp,
		Notes:           in.Notes,
	}
	if leveledUp {
		entry.NewLevel = pet.Level
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(pet).Updates(map[string]any{
			"health":                pet.Health,
			"happiness":             pet.Happiness,
			"energy":                pet.Energy,
			"hunger":                pet.Hunger,
			"experience":            pet.Experience,
			"level":                 pet.Level,
			"status":                pet.Status,
			"total_feedings":        pet.TotalFeedings,
			"total_playings":        pet.TotalPlayings,
			"total_carings":         pet.TotalCarings,
			"last_feed_time":        pet.LastFeedTime,
			"last_play_time":        pet.LastPlayTime,
			"last_care_time":        pet.LastCareTime,
			"last_interaction_time": pet.LastInteractionTime,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		if points > 0 {
			if err := s.users.AddPoints(tx, userID, points); err != nil {
				return err
			}
		}
		if exp > 0 {
			if _, err := s.users.AddExperience(tx, userID, exp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &InteractResult{
		Pet:              pet,
		Interaction:      entry,
		ExperienceGained: exp,
		PointsGained:     points,
		LevelUp:          leveledUp,
		Message:          message,
	}
	if leveledUp {
		res.NewLevel = pet.Level
	}
	return res, nil
}

// applyAction mutates the pet's attributes and counters for one action and
// returns the experience and point rewards plus a user-facing message.
func applyAction(pet *models.Pet, action string, now time.Time) (exp, points int, message string, err error) {
	switch action {
	case models.InteractionFeed:
		gain := minInt(30, 100-pet.Hunger)
		pet.Hunger += gain
		pet.Health = clamp(pet.Health+5, 0, 100)
		pet.TotalFeedings++
		pet.LastFeedTime = &now
		return 10, 5, fmt.Sprintf("%s吃得很开心！", pet.Name), nil
	case models.InteractionPlay:
		gain := minInt(25, 100-pet.Happiness)
		pet.Happiness += gain
		pet.Energy = clamp(pet.Energy-10, 0, 100)
		pet.Hunger = clamp(pet.Hunger-5, 0, 100)
		pet.TotalPlayings++
		pet.LastPlayTime = &now
		return 15, 8, fmt.Sprintf("%s玩得很尽兴！", pet.Name), nil
	case models.InteractionCare:
		pet.Health += minInt(20, 100-pet.Health)
		pet.Energy += minInt(15, 100-pet.Energy)
		pet.Happiness = clamp(pet.Happiness+10, 0, 100)
		pet.TotalCarings++
		pet.LastCareTime = &now
		return 12, 6, fmt.Sprintf("%s感受到了你的关爱！", pet.Name), nil
	case models.InteractionClean:
		pet.Health = clamp(pet.Health+10, 0, 100)
		pet.Happiness = clamp(pet.Happiness+15, 0, 100)
		return 8, 4, fmt.Sprintf("%s干干净净的！", pet.Name), nil
	case models.InteractionMedicine:
		if pet.Health >= 70 {
			return 0, 0, fmt.Sprintf("%s很健康，不需要吃药哦", pet.Name), nil
		}
		pet.Health += minInt(40, 100-pet.Health)
		return 5, 3, fmt.Sprintf("%s吃过药感觉好多了！", pet.Name), nil
	default:
		return 0, 0, "", ErrInvalidInteraction
	}
}

// CareAdviceItem is one actionable suggestion for a pet.
type CareAdviceItem struct {
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// CareAdvice inspects the pet's attributes and suggests what to do next.
func (s *PetService) CareAdvice(userID, petID string) (*models.Pet, []CareAdviceItem, error) {
	pet, err := s.Get(userID, petID)
	if err != nil {
		return nil, nil, err
	}
	var advice []CareAdviceItem
	if pet.Health < 30 {
		advice = append(advice, CareAdviceItem{models.InteractionMedicine, "high", "宠物生病了，快喂点药吧"})
	}
	if pet.Hunger < 30 {
		advice = append(advice, CareAdviceItem{models.InteractionFeed, "high", "宠物饿了，需要喂食"})
	}
	if pet.Energy < 30 {
		advice = append(advice, CareAdviceItem{models.InteractionCare, "medium", "宠物累了，照顾一下让它恢复精力"})
	}
	if pet.Happiness < 50 {
		advice = append(advice, CareAdviceItem{models.InteractionPlay, "medium", "宠物心情不好，陪它玩一会儿吧"})
	}
	if pet.Health >= 30 && pet.Health < 60 {
		advice = append(advice, CareAdviceItem{models.InteractionClean, "low", "给宠物洗个澡，保持健康"})
	}
	if len(advice) == 0 {
		advice = append(advice, CareAdviceItem{"", "none", "宠物状态很好，继续保持！"})
	}
	return pet, advice, nil
}

// RankedPet is one row of the pet leaderboard.
type RankedPet struct {
	Rank         int    `json:"rank"`
	PetID        string `json:"pet_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Avatar       string `json:"avatar"`
	Level        int    `json:"level"`
	Experience   int    `json:"experience"`
	OverallScore int    `json:"overall_score"`
	OwnerName    string `json:"owner_name"`
}

// Ranking returns the top pets ordered by level then experience.
func (s *PetService) Ranking(limit int) ([]RankedPet, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var pets []models.Pet
	if err := s.db.Preload("Owner").
		Order("level DESC, experience DESC").
		Limit(limit).
		Find(&pets).Error; err != nil {
		return nil, err
	}
	ranking := make([]RankedPet, 0, len(pets))
	for i := range pets {
		p := &pets[i]
		row := RankedPet{
			Rank:         i + 1,
			PetID:        p.ID,
			Name:         p.Name,
			Type:         p.Type,
			Avatar:       p.Avatar,
			Level:        p.Level,
			Experience:   p.Experience,
			OverallScore: p.OverallScore(),
		}
		if p.Owner != nil {
			row.OwnerName = p.Owner.Nickname
		}
		ranking = append(ranking, row)
	}
	return ranking, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
