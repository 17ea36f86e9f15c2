package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusBanned   = "banned"
)

// WelcomePoints is granted once on first login.
const WelcomePoints = 100

// User represents a mini-program user identified by WeChat OpenID.
// Points, level and experience are the single authoritative balance; the
// rule engines never write these columns directly, only through UserService.
type User struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	OpenID              string     `gorm:"uniqueIndex;size:100;not null" json:"-"`
	UnionID             string     `gorm:"size:100" json:"-"`
	Nickname            string     `gorm:"size:50" json:"nickname"`
	Avatar              string     `gorm:"size:500" json:"avatar"`
	Gender              string     `gorm:"size:20;default:unknown" json:"gender"`
	Birthday            *time.Time `gorm:"type:date" json:"birthday,omitempty"`
	Points              int        `gorm:"default:0;index" json:"points"`
	Level               int        `gorm:"default:1" json:"level"`
	Experience          int        `gorm:"default:0" json:"experience"`
	ConsecutiveCheckins int        `gorm:"default:0" json:"consecutive_checkins"`
	TotalCheckins       int        `gorm:"default:0" json:"total_checkins"`
	LastCheckinAt       *time.Time `json:"last_checkin_at,omitempty"`
	Status              string     `gorm:"size:20;default:active;index" json:"status"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP         string     `gorm:"size:45" json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	Pets []Pet `gorm:"foreignKey:OwnerID" json:"-"`
}

// BeforeCreate assigns a UUID primary key and ensures timestamps are set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// NextLevelExperience returns the experience required to leave the current level.
func (u *User) NextLevelExperience() int {
	return u.Level * 100
}

// CanLevelUp reports whether accumulated experience covers the next level.
func (u *User) CanLevelUp() bool {
	return u.Experience >= u.NextLevelExperience()
}

// AddExperience credits experience and applies as many level-ups as it pays for.
func (u *User) AddExperience(exp int) {
	u.Experience += exp
	for u.CanLevelUp() {
		u.Experience -= u.NextLevelExperience()
		u.Level++
	}
}

// AddPoints credits points. Negative deltas are allowed for corrections;
// use DeductPoints when the balance must be checked.
func (u *User) AddPoints(points int) {
	u.Points += points
}

// DeductPoints removes points if the balance covers them.
func (u *User) DeductPoints(points int) bool {
	if u.Points < points {
		return false
	}
	u.Points -= points
	return true
}
