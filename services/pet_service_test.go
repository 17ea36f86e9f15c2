package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/petpal-dev/petpal/models"
)

func newPetService(t *testing.T) (*PetService, *UserService, *models.User) {
	t.Helper()
	db := newTestDB(t)
	users := NewUserService(db)
	pets := NewPetService(db, users)
	user := seedUser(t, db, 100, 1)
	return pets, users, user
}

func TestPetService_Create_Defaults(t *testing.T) {
	pets, _, user := newPetService(t)

	pet, err := pets.Create(user.ID, CreatePetInput{Name: "豆豆"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	if pet.Health != 100 || pet.Happiness != 100 || pet.Energy != 100 || pet.Hunger != 100 {
		t.Fatalf("new pet attributes must start at 100: %+v", pet)
	}
	if pet.Level != 1 || pet.Experience != 0 {
		t.Fatalf("new pet starts at level 1 with 0 exp")
	}
	if pet.Type != models.PetTypeCat {
		t.Fatalf("type defaults to cat, got %s", pet.Type)
	}
	if pet.Status != models.PetStatusHealthy {
		t.Fatalf("status = %s, want healthy", pet.Status)
	}
}

func TestPetService_Create_LimitReached(t *testing.T) {
	pets, _, user := newPetService(t)

	for i := 0; i < models.MaxPetsPerUser; i++ {
		if _, err := pets.Create(user.ID, CreatePetInput{Name: fmt.Sprintf("pet-%d", i)}); err != nil {
			t.Fatalf("create pet %d: %v", i, err)
		}
	}
	_, err := pets.Create(user.ID, CreatePetInput{Name: "one-too-many"})
	if !errors.Is(err, ErrPetLimitReached) {
		t.Fatalf("expected ErrPetLimitReached, got %v", err)
	}
}

func TestPetService_Get_AppliesDecay(t *testing.T) {
	pets, _, user := newPetService(t)
	created, err := pets.Create(user.ID, CreatePetInput{Name: "小白"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	last := time.Now().Add(-5 * time.Hour)
	if err := pets.db.Model(&models.Pet{}).Where("id = ?", created.ID).
		Update("last_interaction_time", last).Error; err != nil {
		t.Fatalf("age the pet: %v", err)
	}

	pet, err := pets.Get(user.ID, created.ID)
	if err != nil {
		t.Fatalf("get pet: %v", err)
	}
	if pet.Hunger != 90 || pet.Energy != 95 || pet.Happiness != 95 {
		t.Fatalf("decay not applied on read: hunger=%d energy=%d happiness=%d", pet.Hunger, pet.Energy, pet.Happiness)
	}

	// Decayed values must be persisted
	var stored models.Pet
	if err := pets.db.First(&stored, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("load pet: %v", err)
	}
	if stored.Hunger != 90 {
		t.Fatalf("persisted hunger = %d, want 90", stored.Hunger)
	}
}

func TestPetService_Get_WrongOwner(t *testing.T) {
	pets, _, user := newPetService(t)
	stranger := seedUser(t, pets.db, 0, 1)
	pet, err := pets.Create(user.ID, CreatePetInput{Name: "小黑"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	if _, err := pets.Get(stranger.ID, pet.ID); !errors.Is(err, ErrPetNotFound) {
		t.Fatalf("expected ErrPetNotFound for foreign pet, got %v", err)
	}
}

func TestPetService_Interact_Feed(t *testing.T) {
	pets, _, user := newPetService(t)
	pet, err := pets.Create(user.ID, CreatePetInput{Name: "团子"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	// Make it hungry so the feed delta is visible
	if err := pets.db.Model(&models.Pet{}).Where("id = ?", pet.ID).
		Updates(map[string]any{"hunger": 50, "health": 90}).Error; err != nil {
		t.Fatalf("prepare pet: %v", err)
	}

	res, err := pets.Interact(user.ID, pet.ID, InteractInput{Type: models.InteractionFeed})
	if err != nil {
		t.Fatalf("interact: %v", err)
	}
	if res.Pet.Hunger != 80 {
		t.Fatalf("hunger = %d, want 80 (+30 capped)", res.Pet.Hunger)
	}
	if res.Pet.Health != 95 {
		t.Fatalf("health = %d, want 95", res.Pet.Health)
	}
	if res.ExperienceGained != 10 || res.PointsGained != 5 {
		t.Fatalf("rewards exp=%d pts=%d, want 10/5", res.ExperienceGained, res.PointsGained)
	}
	if res.Pet.TotalFeedings != 1 || res.Pet.LastFeedTime == nil {
		t.Fatalf("feed counters not updated")
	}
	if res.Pet.LastInteractionTime == nil {
		t.Fatalf("interaction time not stamped")
	}

	// Owner balance credited in the same transaction
	owner := loadUser(t, pets.db, user.ID)
	if owner.Points != 105 {
		t.Fatalf("owner points = %d, want 105", owner.Points)
	}
	if owner.Experience != 10 {
		t.Fatalf("owner experience = %d, want 10", owner.Experience)
	}

	// Log entry written
	var count int64
	pets.db.Model(&models.Interaction{}).Where("pet_id = ?", pet.ID).Count(&count)
	if count != 1 {
		t.Fatalf("interaction log rows = %d, want 1", count)
	}
}

func TestPetService_Interact_LevelUpBonus(t *testing.T) {
	pets, _, user := newPetService(t)
	pet, err := pets.Create(user.ID, CreatePetInput{Name: "阿福"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	if err := pets.db.Model(&models.Pet{}).Where("id = ?", pet.ID).
		Update("experience", 95).Error; err != nil {
		t.Fatalf("prepare pet: %v", err)
	}

	res, err := pets.Interact(user.ID, pet.ID, InteractInput{Type: models.InteractionFeed})
	if err != nil {
		t.Fatalf("interact: %v", err)
	}
	if !res.LevelUp || res.NewLevel != 2 {
		t.Fatalf("expected level up to 2, got levelUp=%v newLevel=%d", res.LevelUp, res.NewLevel)
	}
	if res.Pet.Experience != 5 {
		t.Fatalf("pet experience = %d, want 5 (95+10-100)", res.Pet.Experience)
	}
	if res.PointsGained != 5+InteractionBonusPoints {
		t.Fatalf("points = %d, want %d with level-up bonus", res.PointsGained, 5+InteractionBonusPoints)
	}
	owner := loadUser(t, pets.db, user.ID)
	if owner.Points != 100+5+InteractionBonusPoints {
		t.Fatalf("owner points = %d, want %d", owner.Points, 100+5+InteractionBonusPoints)
	}
}

func TestPetService_Interact_MedicineOnHealthyPet(t *testing.T) {
	pets, _, user := newPetService(t)
	pet, err := pets.Create(user.ID, CreatePetInput{Name: "毛毛"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	res, err := pets.Interact(user.ID, pet.ID, InteractInput{Type: models.InteractionMedicine})
	if err != nil {
		t.Fatalf("medicine on healthy pet must not error: %v", err)
	}
	if res.ExperienceGained != 0 || res.PointsGained != 0 {
		t.Fatalf("healthy-pet medicine must not pay rewards: exp=%d pts=%d", res.ExperienceGained, res.PointsGained)
	}
	if res.Pet.Health != 100 {
		t.Fatalf("health changed on no-op medicine")
	}
	if owner := loadUser(t, pets.db, user.ID); owner.Points != 100 {
		t.Fatalf("owner points = %d, want unchanged 100", owner.Points)
	}
}

func TestPetService_Interact_MedicineOnSickPet(t *testing.T) {
	pets, _, user := newPetService(t)
	pet, err := pets.Create(user.ID, CreatePetInput{Name: "病号"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	if err := pets.db.Model(&models.Pet{}).Where("id = ?", pet.ID).
		Update("health", 40).Error; err != nil {
		t.Fatalf("prepare pet: %v", err)
	}

	res, err := pets.Interact(user.ID, pet.ID, InteractInput{Type: models.InteractionMedicine})
	if err != nil {
		t.Fatalf("interact: %v", err)
	}
	if res.Pet.Health != 80 {
		t.Fatalf("health = %d, want 80 (+40)", res.Pet.Health)
	}
	if res.ExperienceGained != 5 || res.PointsGained != 3 {
		t.Fatalf("rewards exp=%d pts=%d, want 5/3", res.ExperienceGained, res.PointsGained)
	}
}

func TestPetService_Interact_InvalidType(t *testing.T) {
	pets, _, user := newPetService(t)
	pet, err := pets.Create(user.ID, CreatePetInput{Name: "圆圆"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	_, err = pets.Interact(user.ID, pet.ID, InteractInput{Type: "sing"})
	if !errors.Is(err, ErrInvalidInteraction) {
		t.Fatalf("expected ErrInvalidInteraction, got %v", err)
	}

	var count int64
	pets.db.Model(&models.Interaction{}).Where("pet_id = ?", pet.ID).Count(&count)
	if count != 0 {
		t.Fatalf("rejected interaction must not be logged")
	}
}

func TestPetService_Ranking(t *testing.T) {
	pets, _, user := newPetService(t)
	low, err := pets.Create(user.ID, CreatePetInput{Name: "低级"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	high, err := pets.Create(user.ID, CreatePetInput{Name: "高级"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	if err := pets.db.Model(&models.Pet{}).Where("id = ?", high.ID).
		Updates(map[string]any{"level": 5, "experience": 40}).Error; err != nil {
		t.Fatalf("prepare pet: %v", err)
	}

	ranking, err := pets.Ranking(10)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(ranking) != 2 {
		t.Fatalf("ranking size = %d, want 2", len(ranking))
	}
	if ranking[0].PetID != high.ID || ranking[0].Rank != 1 {
		t.Fatalf("highest level pet must rank first")
	}
	if ranking[1].PetID != low.ID {
		t.Fatalf("expected %s second", low.Name)
	}
}

func TestInteractionService_Batch_FailureIsolation(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	pets := NewPetService(db, users)
	interactions := NewInteractionService(db, pets)
	user := seedUser(t, db, 100, 1)

	a, err := pets.Create(user.ID, CreatePetInput{Name: "甲"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	b, err := pets.Create(user.ID, CreatePetInput{Name: "乙"})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	results := interactions.Batch(user.ID, []string{a.ID, "missing", b.ID}, InteractInput{Type: models.InteractionClean})
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if !results[0].Success || !results[2].Success {
		t.Fatalf("valid pets must succeed: %+v", results)
	}
	if results[1].Success || results[1].Error == "" {
		t.Fatalf("missing pet must fail with an error message")
	}
}
