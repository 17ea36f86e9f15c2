package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/petpal-dev/petpal/models"
)

// UserService owns the user record and its balances. Points and experience
// are only ever written through this service so every credit and debit goes
// through the same guards.
type UserService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserService returns a UserService backed by db.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, now: time.Now}
}

// GetByID loads a user by primary key.
func (s *UserService) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindOrCreateByOpenID resolves a WeChat identity to a user, creating the
// account with the welcome balance on first login.
func (s *UserService) FindOrCreateByOpenID(openID, unionID, loginIP string) (*models.User, bool, error) {
	var user models.User
	err := s.db.First(&user, "open_id = ?", openID).Error
	if err == nil {
		if user.Status == models.UserStatusBanned {
			return nil, false, ErrUserDisabled
		}
		now := s.now()
		user.LastLoginAt = &now
		user.LastLoginIP = loginIP
		if err := s.db.Model(&user).Updates(map[string]any{
			"last_login_at": now,
			"last_login_ip": loginIP,
		}).Error; err != nil {
			return nil, false, err
		}
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	now := s.now()
	user = models.User{
		OpenID:      openID,
		UnionID:     unionID,
		Points:      models.WelcomePoints,
		Level:       1,
		Status:      models.UserStatusActive,
		LastLoginAt: &now,
		LastLoginIP: loginIP,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Nickname *string
	Avatar   *string
	Gender   *string
	Birthday *time.Time
}

// UpdateProfile applies the non-nil fields of upd to the user.
func (s *UserService) UpdateProfile(userID string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if upd.Nickname != nil {
		changes["nickname"] = *upd.Nickname
	}
	if upd.Avatar != nil {
		changes["avatar"] = *upd.Avatar
	}
	if upd.Gender != nil {
		changes["gender"] = *upd.Gender
	}
	if upd.Birthday != nil {
		changes["birthday"] = *upd.Birthday
	}
	if len(changes) == 0 {
		return user, nil
	}
	if err := s.db.Model(user).Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.GetByID(userID)
}

// AddPoints credits points atomically. A nil db uses the service's own
// handle; callers inside a transaction pass their tx instead.
func (s *UserService) AddPoints(db *gorm.DB, userID string, points int) error {
	if db == nil {
		db = s.db
	}
	res := db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeductPoints debits points with a balance guard in the same statement, so
// concurrent spenders cannot drive the balance negative.
func (s *UserService) DeductPoints(db *gorm.DB, userID string, points int) error {
	if db == nil {
		db = s.db
	}
	res := db.Model(&models.User{}).
		Where("id = ? AND points >= ?", userID, points).
		Update("points", gorm.Expr("points - ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUserNotFound
		}
		return ErrInsufficientPoints
	}
	return nil
}

// AddExperience credits experience and persists any level-ups it triggers.
func (s *UserService) AddExperience(db *gorm.DB, userID string, exp int) (*models.User, error) {
	if db == nil {
		db = s.db
	}
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.AddExperience(exp)
	if err := db.Model(&user).Updates(map[string]any{
		"experience": user.Experience,
		"level":      user.Level,
	}).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserStats aggregates the numbers the profile page shows.
type UserStats struct {
	Points              int `json:"points"`
	Level               int `json:"level"`
	Experience          int `json:"experience"`
	NextLevelExperience int `json:"next_level_experience"`
	PetCount            int `json:"pet_count"`
	TotalCheckins       int `json:"total_checkins"`
	ConsecutiveCheckins int `json:"consecutive_checkins"`
	TotalInteractions   int `json:"total_interactions"`
	TotalPurchases      int `json:"total_purchases"`
}

// Stats computes the dashboard counters for one user.
func (s *UserService) Stats(userID string) (*UserStats, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	var pets, interactions, purchases int64
	if err := s.db.Model(&models.Pet{}).Where("owner_id = ?", userID).Count(&pets).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Interaction{}).Where("user_id = ?", userID).Count(&interactions).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Purchase{}).
		Where("user_id = ? AND status = ?", userID, models.PurchaseStatusCompleted).
		Count(&purchases).Error; err != nil {
		return nil, err
	}
	return &UserStats{
		Points:              user.Points,
		Level:               user.Level,
		Experience:          user.Experience,
		NextLevelExperience: user.NextLevelExperience(),
		PetCount:            int(pets),
		TotalCheckins:       user.TotalCheckins,
		ConsecutiveCheckins: user.ConsecutiveCheckins,
		TotalInteractions:   int(interactions),
		TotalPurchases:      int(purchases),
	}, nil
}
