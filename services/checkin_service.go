package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/petpal-dev/petpal/models"
)

// MakeupWindowDays bounds how far back a missed day can be made up.
const MakeupWindowDays = 7

// MakeupCostPerDay is the point price per day of distance for a make-up.
const MakeupCostPerDay = 10

// CheckInService runs the daily check-in streak engine: one check-in per
// calendar day, streak-scaled rewards, milestone achievements and paid
// make-ups for recently missed days.
type CheckInService struct {
	db    *gorm.DB
	users *UserService
	now   func() time.Time
}

// NewCheckInService returns a CheckInService backed by db.
func NewCheckInService(db *gorm.DB, users *UserService) *CheckInService {
	return &CheckInService{db: db, users: users, now: time.Now}
}

// CheckInResult is the outcome of a check-in attempt. A repeated check-in
// on the same day is not an error: Success is false and CheckIn holds the
// existing record.
type CheckInResult struct {
	Success          bool            `json:"success"`
	CheckIn          *models.CheckIn `json:"check_in"`
	ConsecutiveDays  int             `json:"consecutive_days"`
	PointsEarned     int             `json:"points_earned"`
	ExperienceEarned int             `json:"experience_earned"`
	IsBonusDay       bool            `json:"is_bonus_day"`
	Achievements     []string        `json:"achievements,omitempty"`
	Message          string          `json:"message"`
}

// CheckIn records today's check-in for the user and pays out the
// streak-scaled reward.
func (s *CheckInService) CheckIn(userID, notes string) (*CheckInResult, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	today := models.DateOnly(s.now())

	if existing, err := s.findByDate(userID, today); err != nil {
		return nil, err
	} else if existing != nil {
		return &CheckInResult{
			Success:         false,
			CheckIn:         existing,
			ConsecutiveDays: existing.ConsecutiveDays,
			Message:         "今天已经签到过了",
		}, nil
	}

	streak, err := s.consecutiveDays(userID, today)
	if err != nil {
		return nil, err
	}

	rewards := computeRewards(streak)
	multiplier := streakMultiplier(streak)
	finalPoints := int(math.Round(float64(rewards.Points) * multiplier))
	finalExp := int(math.Round(float64(rewards.Experience) * multiplier))
	bonusDay := streak > 0 && streak%7 == 0

	stored := rewards
	stored.Points = finalPoints
	stored.Experience = finalExp

	record := &models.CheckIn{
		UserID:           userID,
		CheckInDate:      today,
		Type:             models.CheckInTypeDaily,
		Status:           models.CheckInStatusCompleted,
		PointsEarned:     finalPoints,
		ExperienceEarned: finalExp,
		ConsecutiveDays:  streak,
		IsBonusDay:       bonusDay,
		Multiplier:       multiplier,
		Rewards:          newJSON(stored),
		Notes:            notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		now := s.now()
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
			"consecutive_checkins": streak,
			"total_checkins":       gorm.Expr("total_checkins + 1"),
			"last_checkin_at":      now,
		}).Error; err != nil {
			return err
		}
		if err := s.users.AddPoints(tx, userID, finalPoints); err != nil {
			return err
		}
		_, err := s.users.AddExperience(tx, userID, finalExp)
		return err
	})
	if err != nil {
		return nil, err
	}

	achievements := checkAchievements(streak, user.TotalCheckins+1)
	return &CheckInResult{
		Success:          true,
		CheckIn:          record,
		ConsecutiveDays:  streak,
		PointsEarned:     finalPoints,
		ExperienceEarned: finalExp,
		IsBonusDay:       bonusDay,
		Achievements:     achievements,
		Message:          "签到成功",
	}, nil
}

// consecutiveDays counts today plus the unbroken run of checked days
// before it, probing one day per query so make-ups extend streaks exactly
// like regular check-ins do.
func (s *CheckInService) consecutiveDays(userID string, today time.Time) (int, error) {
	days := 1
	day := today.AddDate(0, 0, -1)
	for {
		rec, err := s.findByDate(userID, day)
		if err != nil {
			return 0, err
		}
		if rec == nil {
			return days, nil
		}
		days++
		day = day.AddDate(0, 0, -1)
	}
}

func (s *CheckInService) findByDate(userID string, date time.Time) (*models.CheckIn, error) {
	var rec models.CheckIn
	err := s.db.First(&rec, "user_id = ? AND check_in_date = ?", userID, date).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// computeRewards builds the base reward bundle for a streak. Only the
// highest matching tier applies, so the one-week badge is attached while
// the streak sits in the 7 to 13 range and not after the next tier takes
// over.
func computeRewards(streak int) models.CheckInRewards {
	r := models.CheckInRewards{Points: 10, Experience: 5}
	switch {
	case streak >= 30:
		r.Points += 20
		r.Experience += 10
		r.Items = append(r.Items, "高级宠物食物")
	case streak >= 14:
		r.Points += 15
		r.Experience += 8
		r.Items = append(r.Items, "中级宠物食物")
	case streak >= 7:
		r.Points += 10
		r.Experience += 5
		r.Items = append(r.Items, "初级宠物食物")
		r.Badges = append(r.Badges, "一周签到达人")
	}
	return r
}

func streakMultiplier(streak int) float64 {
	switch {
	case streak >= 30:
		return 3
	case streak >= 14:
		return 2.5
	case streak >= 7:
		return 2
	case streak >= 3:
		return 1.5
	default:
		return 1
	}
}

// checkAchievements returns the milestone names the check-in just hit.
// Streak milestones fire on exact equality so they trigger once per run.
func checkAchievements(streak, totalCheckins int) []string {
	var earned []string
	switch streak {
	case 7:
		earned = append(earned, "连续签到一周")
	case 30:
		earned = append(earned, "连续签到一月")
	case 100:
		earned = append(earned, "连续签到百日")
	}
	switch totalCheckins {
	case 10:
		earned = append(earned, "签到新手")
	case 50:
		earned = append(earned, "签到达人")
	case 100:
		earned = append(earned, "签到专家")
	case 365:
		earned = append(earned, "签到大师")
	}
	return earned
}

// CheckInStatus is what the check-in page needs on load.
type CheckInStatus struct {
	CheckedToday    bool      `json:"checked_today"`
	ConsecutiveDays int       `json:"consecutive_days"`
	TotalCheckins   int       `json:"total_checkins"`
	NextReward      int       `json:"next_reward_points"`
	Today           time.Time `json:"today"`
}

// Status reports whether the user has checked in today and what tomorrow's
// check-in would pay.
func (s *CheckInService) Status(userID string) (*CheckInStatus, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	today := models.DateOnly(s.now())
	rec, err := s.findByDate(userID, today)
	if err != nil {
		return nil, err
	}

	status := &CheckInStatus{
		CheckedToday:  rec != nil,
		TotalCheckins: user.TotalCheckins,
		Today:         today,
	}
	if rec != nil {
		status.ConsecutiveDays = rec.ConsecutiveDays
	} else {
		streak, err := s.consecutiveDays(userID, today)
		if err != nil {
			return nil, err
		}
		status.ConsecutiveDays = streak - 1
	}

	nextStreak := status.ConsecutiveDays + 1
	base := computeRewards(nextStreak)
	status.NextReward = int(math.Round(float64(base.Points) * streakMultiplier(nextStreak)))
	return status, nil
}

// CalendarDay is one checked day in a month view.
type CalendarDay struct {
	Date         time.Time `json:"date"`
	Type         string    `json:"type"`
	PointsEarned int       `json:"points_earned"`
	IsBonusDay   bool      `json:"is_bonus_day"`
}

// Calendar lists the user's check-ins inside one calendar month.
func (s *CheckInService) Calendar(userID string, year int, month time.Month) ([]CalendarDay, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)
	var records []models.CheckIn
	if err := s.db.
		Where("user_id = ? AND check_in_date >= ? AND check_in_date < ?", userID, start, end).
		Order("check_in_date ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	days := make([]CalendarDay, 0, len(records))
	for _, r := range records {
		days = append(days, CalendarDay{
			Date:         r.CheckInDate,
			Type:         r.Type,
			PointsEarned: r.PointsEarned,
			IsBonusDay:   r.IsBonusDay,
		})
	}
	return days, nil
}

// History returns the user's check-ins, newest first, paginated.
func (s *CheckInService) History(userID string, page, pageSize int) ([]models.CheckIn, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	var total int64
	if err := s.db.Model(&models.CheckIn{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []models.CheckIn
	if err := s.db.Where("user_id = ?", userID).
		Order("check_in_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// MakeUpResult is the outcome of a paid make-up check-in.
type MakeUpResult struct {
	CheckIn          *models.CheckIn `json:"check_in"`
	Cost             int             `json:"cost"`
	PointsEarned     int             `json:"points_earned"`
	ExperienceEarned int             `json:"experience_earned"`
	Message          string          `json:"message"`
}

// MakeUp fills a missed day within the last week. The cost scales with how
// far back the day is and the reward is the halved tier payout for the
// streak the user had on that day.
func (s *CheckInService) MakeUp(userID string, date time.Time, notes string) (*MakeUpResult, error) {
	if _, err := s.users.GetByID(userID); err != nil {
		return nil, err
	}
	today := models.DateOnly(s.now())
	target := models.DateOnly(date)

	if !target.Before(today) {
		return nil, ErrDateInFuture
	}
	daysDiff := int(today.Sub(target).Hours() / 24)
	if daysDiff > MakeupWindowDays {
		return nil, ErrDateTooOld
	}
	if existing, err := s.findByDate(userID, target); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrAlreadyCheckedIn
	}

	streak, err := s.consecutiveDays(userID, target)
	if err != nil {
		return nil, err
	}

	cost := daysDiff * MakeupCostPerDay
	base := computeRewards(streak)
	finalPoints := int(math.Round(float64(base.Points) * 0.5))
	finalExp := int(math.Round(float64(base.Experience) * 0.5))

	stored := base
	stored.Points = finalPoints
	stored.Experience = finalExp

	record := &models.CheckIn{
		UserID:           userID,
		CheckInDate:      target,
		Type:             models.CheckInTypeMakeup,
		Status:           models.CheckInStatusCompleted,
		PointsEarned:     finalPoints,
		ExperienceEarned: finalExp,
		ConsecutiveDays:  streak,
		IsBonusDay:       false,
		Multiplier:       0.5,
		Rewards:          newJSON(stored),
		Notes:            notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.users.DeductPoints(tx, userID, cost); err != nil {
			return err
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("total_checkins", gorm.Expr("total_checkins + 1")).Error; err != nil {
			return err
		}
		if err := s.users.AddPoints(tx, userID, finalPoints); err != nil {
			return err
		}
		_, err := s.users.AddExperience(tx, userID, finalExp)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &MakeUpResult{
		CheckIn:          record,
		Cost:             cost,
		PointsEarned:     finalPoints,
		ExperienceEarned: finalExp,
		Message:          "补签成功",
	}, nil
}
