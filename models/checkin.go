package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Check-in types.
const (
	CheckInTypeDaily  = "daily"
	CheckInTypeMakeup = "makeup"
)

// Check-in statuses.
const (
	CheckInStatusCompleted = "completed"
	CheckInStatusMissed    = "missed"
)

// CheckInRewards is the reward bundle attached to a check-in, stored as a
// JSON column so item and badge lists stay schema-free.
type CheckInRewards struct {
	Points     int      `json:"points"`
	Experience int      `json:"experience"`
	Items      []string `json:"items,omitempty"`
	Badges     []string `json:"badges,omitempty"`
}

// CheckIn is one user check-in on one calendar day. The (user_id,
// check_in_date) pair is unique; rows are immutable once written.
type CheckIn struct {
	ID               string                                `gorm:"primaryKey;size:36" json:"id"`
	UserID           string                                `gorm:"size:36;not null;uniqueIndex:uniq_user_day" json:"user_id"`
	User             *User                                 `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CheckInDate      time.Time                             `gorm:"type:date;not null;uniqueIndex:uniq_user_day" json:"check_in_date"`
	Type             string                                `gorm:"size:20;default:daily" json:"type"`
	Status           string                                `gorm:"size:20;default:completed" json:"status"`
	PointsEarned     int                                   `gorm:"default:0" json:"points_earned"`
	ExperienceEarned int                                   `gorm:"default:0" json:"experience_earned"`
	ConsecutiveDays  int                                   `gorm:"default:1" json:"consecutive_days"`
	IsBonusDay       bool                                  `gorm:"default:false" json:"is_bonus_day"`
	Multiplier       float64                               `gorm:"default:1" json:"multiplier"`
	Rewards          datatypes.JSONType[CheckInRewards]    `json:"rewards"`
	Notes            string                                `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time                             `json:"created_at"`
	UpdatedAt        time.Time                             `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key.
func (c *CheckIn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// DateOnly truncates t to its calendar day in t's location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
