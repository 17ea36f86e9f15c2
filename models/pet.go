package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pet status values, derived from the four attributes and never set directly.
const (
	PetStatusHealthy = "healthy"
	PetStatusSick    = "sick"
	PetStatusHungry  = "hungry"
	PetStatusTired   = "tired"
	PetStatusSad     = "sad"
	PetStatusHappy   = "happy"
)

// Pet types.
const (
	PetTypeCat     = "cat"
	PetTypeDog     = "dog"
	PetTypeRabbit  = "rabbit"
	PetTypeHamster = "hamster"
	PetTypeBird    = "bird"
	PetTypeFish    = "fish"
	PetTypeOther   = "other"
)

// MaxPetsPerUser caps how many pets a single owner may keep.
const MaxPetsPerUser = 5

// Pet is a virtual pet owned by exactly one user. The four attributes live
// in [0,100]; hunger 100 means full. Status is recomputed after every
// mutation via UpdateStatus so it never drifts from the attributes.
type Pet struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Type        string     `gorm:"size:20;default:cat" json:"type"`
	Breed       string     `gorm:"size:50" json:"breed"`
	Gender      string     `gorm:"size:20;default:unknown" json:"gender"`
	Birthday    *time.Time `gorm:"type:date" json:"birthday,omitempty"`
	Avatar      string     `gorm:"type:text" json:"avatar"`
	Description string     `gorm:"type:text" json:"description"`

	Health     int    `gorm:"default:100" json:"health"`
	Happiness  int    `gorm:"default:100" json:"happiness"`
	Energy     int    `gorm:"default:100" json:"energy"`
	Hunger     int    `gorm:"default:100" json:"hunger"`
	Experience int    `gorm:"default:0" json:"experience"`
	Level      int    `gorm:"default:1" json:"level"`
	Status     string `gorm:"size:20;default:healthy" json:"status"`

	TotalFeedings int `gorm:"default:0" json:"total_feedings"`
	TotalPlayings int `gorm:"default:0" json:"total_playings"`
	TotalCarings  int `gorm:"default:0" json:"total_carings"`

	LastFeedTime        *time.Time `json:"last_feed_time,omitempty"`
	LastPlayTime        *time.Time `json:"last_play_time,omitempty"`
	LastCareTime        *time.Time `json:"last_care_time,omitempty"`
	LastInteractionTime *time.Time `json:"last_interaction_time,omitempty"`

	OwnerID string `gorm:"size:36;index;not null" json:"owner_id"`
	Owner   *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key.
func (p *Pet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Age returns the pet's age in 30-day months. Deliberately an approximation,
// not calendar arithmetic.
func (p *Pet) Age(now time.Time) int {
	if p.Birthday == nil {
		return 0
	}
	d := now.Sub(*p.Birthday)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / (24 * 30))
}

// NeedsCare reports whether any attribute has dropped into the warning band.
func (p *Pet) NeedsCare() bool {
	return p.Health < 50 || p.Happiness < 50 || p.Energy < 30 || p.Hunger < 30
}

// OverallScore is the rounded mean of the four attributes.
func (p *Pet) OverallScore() int {
	return int(math.Round(float64(p.Health+p.Happiness+p.Energy+p.Hunger) / 4))
}

// NextLevelExperience returns the cost of the next level.
func (p *Pet) NextLevelExperience() int {
	return p.Level * 100
}

// CanLevelUp reports whether the pet has banked enough experience.
func (p *Pet) CanLevelUp() bool {
	return p.Experience >= p.NextLevelExperience()
}

// LevelUp consumes experience for as many levels as it pays for. A single
// large experience gain may advance several levels; each one restores 10
// health, happiness and energy (capped at 100).
func (p *Pet) LevelUp() {
	for p.CanLevelUp() {
		p.Experience -= p.NextLevelExperience()
		p.Level++
		p.Health = clampAttr(p.Health + 10)
		p.Happiness = clampAttr(p.Happiness + 10)
		p.Energy = clampAttr(p.Energy + 10)
	}
}

// UpdateStatus recomputes the derived status. The order of checks matters:
// the first matching rule wins.
func (p *Pet) UpdateStatus() {
	switch {
	case p.Health < 30:
		p.Status = PetStatusSick
	case p.Hunger < 30:
		p.Status = PetStatusHungry
	case p.Energy < 30:
		p.Status = PetStatusTired
	case p.Happiness < 30:
		p.Status = PetStatusSad
	case p.Happiness > 80 && p.Health > 80:
		p.Status = PetStatusHappy
	default:
		p.Status = PetStatusHealthy
	}
}

// Decay applies natural attribute decay for the whole hours elapsed since
// the last interaction (or creation). Per hour: hunger -2, energy -1,
// happiness -1; if hunger or energy ends below 20, health also loses 1 per
// hour. It does not advance LastInteractionTime - only interactions do -
// so within the same hour bucket repeated calls are no-ops.
func (p *Pet) Decay(now time.Time) {
	since := p.CreatedAt
	if p.LastInteractionTime != nil {
		since = *p.LastInteractionTime
	}
	hours := int(now.Sub(since).Hours())
	if hours <= 0 {
		return
	}

	p.Hunger = clampLow(p.Hunger - 2*hours)
	p.Energy = clampLow(p.Energy - hours)
	p.Happiness = clampLow(p.Happiness - hours)
	if p.Hunger < 20 || p.Energy < 20 {
		p.Health = clampLow(p.Health - hours)
	}
	p.UpdateStatus()
}

func clampAttr(v int) int {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

func clampLow(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
