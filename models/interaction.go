package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Interaction types.
const (
	InteractionFeed     = "feed"
	InteractionPlay     = "play"
	InteractionCare     = "care"
	InteractionClean    = "clean"
	InteractionMedicine = "medicine"
)

// Interaction results.
const (
	InteractionResultSuccess = "success"
	InteractionResultFailed  = "failed"
)

// DefaultIntensity applies when a request leaves intensity unset.
const DefaultIntensity = 5

// AttributeChanges records the signed per-attribute deltas an interaction
// actually applied, after clamping.
type AttributeChanges struct {
	Health    int `json:"health,omitempty"`
	Happiness int `json:"happiness,omitempty"`
	Energy    int `json:"energy,omitempty"`
	Hunger    int `json:"hunger,omitempty"`
}

// PetState is a point-in-time attribute snapshot stored on the log entry.
type PetState struct {
	Health     int    `json:"health"`
	Happiness  int    `json:"happiness"`
	Energy     int    `json:"energy"`
	Hunger     int    `json:"hunger"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
	Status     string `json:"status"`
}

// SnapshotPet captures the pet's current state for an interaction record.
func SnapshotPet(p *Pet) PetState {
	return PetState{
		Health:     p.Health,
		Happiness:  p.Happiness,
		Energy:     p.Energy,
		Hunger:     p.Hunger,
		Level:      p.Level,
		Experience: p.Experience,
		Status:     p.Status,
	}
}

// Interaction is one append-only log entry per pet interaction. Entries are
// written in the same transaction as the pet mutation and never updated.
type Interaction struct {
	ID               string                               `gorm:"primaryKey;size:36" json:"id"`
	PetID            string                               `gorm:"size:36;index;not null" json:"pet_id"`
	Pet              *Pet                                 `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID           string                               `gorm:"size:36;index;not null" json:"user_id"`
	Type             string                               `gorm:"size:20;not null" json:"type"`
	Result           string                               `gorm:"size:20;default:success" json:"result"`
	Item             string                               `gorm:"size:100" json:"item,omitempty"`
	Intensity        int                                  `gorm:"default:5" json:"intensity"`
	Duration         int                                  `gorm:"default:0" json:"duration"`
	ExperienceGained int                                  `gorm:"default:0" json:"experience_gained"`
	PointsGained     int                                  `gorm:"default:0" json:"points_gained"`
	AttributeChanges datatypes.JSONType[AttributeChanges] `json:"attribute_changes"`
	PetStateBefore   datatypes.JSONType[PetState]         `json:"pet_state_before"`
	PetStateAfter    datatypes.JSONType[PetState]         `json:"pet_state_after"`
	LevelUpOccurred  bool                                 `gorm:"default:false" json:"level_up_occurred"`
	NewLevel         int                                  `gorm:"default:0" json:"new_level,omitempty"`
	Notes            string                               `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time                            `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key.
func (i *Interaction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
