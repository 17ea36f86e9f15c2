package models

import (
	"testing"
	"time"
)

func newTestPet() *Pet {
	now := time.Now()
	return &Pet{
		ID:        "p1",
		Name:      "豆豆",
		Type:      PetTypeCat,
		Health:    100,
		Happiness: 100,
		Energy:    100,
		Hunger:    100,
		Level:     1,
		Status:    PetStatusHealthy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPet_UpdateStatus_Precedence(t *testing.T) {
	cases := []struct {
		name                               string
		health, hunger, energy, happiness  int
		want                               string
	}{
		{"sick wins over everything", 20, 10, 10, 10, PetStatusSick},
		{"hungry before tired", 50, 25, 25, 25, PetStatusHungry},
		{"tired before sad", 50, 50, 25, 25, PetStatusTired},
		{"sad", 50, 50, 50, 25, PetStatusSad},
		{"happy needs both above 80", 81, 50, 50, 81, PetStatusHappy},
		{"healthy fallback", 80, 50, 50, 81, PetStatusHealthy},
		{"boundary 30 is not low", 30, 30, 30, 30, PetStatusHealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPet()
			p.Health = tc.health
			p.Hunger = tc.hunger
			p.Energy = tc.energy
			p.Happiness = tc.happiness
			p.UpdateStatus()
			if p.Status != tc.want {
				t.Fatalf("status = %s, want %s", p.Status, tc.want)
			}
		})
	}
}

func TestPet_Decay_WithinHourIsNoop(t *testing.T) {
	p := newTestPet()
	last := time.Now().Add(-30 * time.Minute)
	p.LastInteractionTime = &last

	p.Decay(time.Now())

	if p.Hunger != 100 || p.Energy != 100 || p.Happiness != 100 || p.Health != 100 {
		t.Fatalf("attributes changed within the hour: %+v", p)
	}
}

func TestPet_Decay_FiveHours(t *testing.T) {
	p := newTestPet()
	last := time.Now().Add(-5 * time.Hour)
	p.LastInteractionTime = &last

	p.Decay(time.Now())

	if p.Hunger != 90 {
		t.Fatalf("hunger = %d, want 90", p.Hunger)
	}
	if p.Energy != 95 {
		t.Fatalf("energy = %d, want 95", p.Energy)
	}
	if p.Happiness != 95 {
		t.Fatalf("happiness = %d, want 95", p.Happiness)
	}
	if p.Health != 100 {
		t.Fatalf("health should not decay while hunger and energy stay above 20, got %d", p.Health)
	}
}

func TestPet_Decay_HealthDrainsWhenStarving(t *testing.T) {
	p := newTestPet()
	p.Hunger = 25
	last := time.Now().Add(-5 * time.Hour)
	p.LastInteractionTime = &last

	p.Decay(time.Now())

	if p.Hunger != 15 {
		t.Fatalf("hunger = %d, want 15", p.Hunger)
	}
	if p.Health != 95 {
		t.Fatalf("health = %d, want 95", p.Health)
	}
	if p.Status != PetStatusHungry {
		t.Fatalf("status = %s, want hungry", p.Status)
	}
}

func TestPet_Decay_ClampsAtZero(t *testing.T) {
	p := newTestPet()
	p.Hunger = 5
	p.Energy = 2
	p.Happiness = 3
	last := time.Now().Add(-48 * time.Hour)
	p.LastInteractionTime = &last

	p.Decay(time.Now())

	if p.Hunger != 0 || p.Energy != 0 || p.Happiness != 0 {
		t.Fatalf("attributes must clamp at zero: hunger=%d energy=%d happiness=%d", p.Hunger, p.Energy, p.Happiness)
	}
}

func TestPet_Decay_UsesCreatedAtWhenNeverInteracted(t *testing.T) {
	p := newTestPet()
	p.CreatedAt = time.Now().Add(-2 * time.Hour)

	p.Decay(time.Now())

	if p.Hunger != 96 {
		t.Fatalf("hunger = %d, want 96", p.Hunger)
	}
}

func TestPet_LevelUp_MultiLevel(t *testing.T) {
	p := newTestPet()
	p.Health = 50
	p.Happiness = 50
	p.Energy = 50
	p.Experience = 250

	p.LevelUp()

	// 250 pays for level 1 (100), leaving 150; level 2 costs 200, so it stops.
	if p.Level != 2 {
		t.Fatalf("level = %d, want 2", p.Level)
	}
	if p.Experience != 150 {
		t.Fatalf("experience = %d, want 150", p.Experience)
	}
	if p.Health != 60 || p.Happiness != 60 || p.Energy != 60 {
		t.Fatalf("level-up restore missing: health=%d happiness=%d energy=%d", p.Health, p.Happiness, p.Energy)
	}
}

func TestPet_LevelUp_RestoreCapsAt100(t *testing.T) {
	p := newTestPet()
	p.Health = 95
	p.Experience = 100

	p.LevelUp()

	if p.Level != 2 {
		t.Fatalf("level = %d, want 2", p.Level)
	}
	if p.Health != 100 {
		t.Fatalf("health = %d, want 100", p.Health)
	}
}

func TestPet_LevelUp_NotEnoughExperience(t *testing.T) {
	p := newTestPet()
	p.Experience = 99

	p.LevelUp()

	if p.Level != 1 || p.Experience != 99 {
		t.Fatalf("level=%d exp=%d, want unchanged", p.Level, p.Experience)
	}
}

func TestPet_Age(t *testing.T) {
	p := newTestPet()
	if p.Age(time.Now()) != 0 {
		t.Fatalf("age without birthday should be 0")
	}

	birthday := time.Now().Add(-65 * 24 * time.Hour)
	p.Birthday = &birthday
	if got := p.Age(time.Now()); got != 2 {
		t.Fatalf("age = %d, want 2 (30-day months)", got)
	}
}

func TestPet_OverallScoreAndNeedsCare(t *testing.T) {
	p := newTestPet()
	p.Health = 80
	p.Happiness = 70
	p.Energy = 60
	p.Hunger = 55

	if got := p.OverallScore(); got != 66 {
		t.Fatalf("overall score = %d, want 66", got)
	}
	if p.NeedsCare() {
		t.Fatalf("pet should not need care yet")
	}

	p.Energy = 29
	if !p.NeedsCare() {
		t.Fatalf("pet with energy below 30 needs care")
	}
}
