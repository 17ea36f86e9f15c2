package services

import (
	"errors"
	"testing"
	"time"

	"github.com/petpal-dev/petpal/models"
	"gorm.io/gorm"
)

func newCheckInService(t *testing.T) (*CheckInService, *gorm.DB, *models.User) {
	t.Helper()
	db := newTestDB(t)
	users := NewUserService(db)
	svc := NewCheckInService(db, users)
	user := seedUser(t, db, 100, 1)
	return svc, db, user
}

// seedCheckIn records a completed daily check-in on the given day.
func seedCheckIn(t *testing.T, db *gorm.DB, userID string, day time.Time) {
	t.Helper()
	rec := &models.CheckIn{
		UserID:      userID,
		CheckInDate: models.DateOnly(day),
		Type:        models.CheckInTypeDaily,
		Status:      models.CheckInStatusCompleted,
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("seed check-in: %v", err)
	}
}

func TestCheckInService_FirstCheckIn(t *testing.T) {
	svc, db, user := newCheckInService(t)

	res, err := svc.CheckIn(user.ID, "")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if !res.Success {
		t.Fatalf("first check-in must succeed")
	}
	if res.ConsecutiveDays != 1 {
		t.Fatalf("streak = %d, want 1", res.ConsecutiveDays)
	}
	if res.PointsEarned != 10 || res.ExperienceEarned != 5 {
		t.Fatalf("rewards pts=%d exp=%d, want 10/5", res.PointsEarned, res.ExperienceEarned)
	}
	if res.IsBonusDay {
		t.Fatalf("day 1 is not a bonus day")
	}
	if res.CheckIn.Multiplier != 1 {
		t.Fatalf("multiplier = %v, want 1", res.CheckIn.Multiplier)
	}

	stored := loadUser(t, db, user.ID)
	if stored.Points != 110 {
		t.Fatalf("points = %d, want 110", stored.Points)
	}
	if stored.TotalCheckins != 1 || stored.ConsecutiveCheckins != 1 {
		t.Fatalf("counters total=%d consecutive=%d, want 1/1", stored.TotalCheckins, stored.ConsecutiveCheckins)
	}
}

func TestCheckInService_DoubleCheckIn(t *testing.T) {
	svc, db, user := newCheckInService(t)

	if _, err := svc.CheckIn(user.ID, ""); err != nil {
		t.Fatalf("first check in: %v", err)
	}
	res, err := svc.CheckIn(user.ID, "")
	if err != nil {
		t.Fatalf("repeat check-in must not error: %v", err)
	}
	if res.Success {
		t.Fatalf("repeat check-in must report success=false")
	}
	if res.CheckIn == nil {
		t.Fatalf("repeat check-in must return the existing record")
	}
	if got := loadUser(t, db, user.ID).Points; got != 110 {
		t.Fatalf("repeat check-in must not pay again: points = %d, want 110", got)
	}
}

func TestCheckInService_WeekStreak(t *testing.T) {
	svc, db, user := newCheckInService(t)
	today := models.DateOnly(time.Now())
	for i := 1; i <= 6; i++ {
		seedCheckIn(t, db, user.ID, today.AddDate(0, 0, -i))
	}

	res, err := svc.CheckIn(user.ID, "")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if res.ConsecutiveDays != 7 {
		t.Fatalf("streak = %d, want 7", res.ConsecutiveDays)
	}
	// Base 10+10 points and 5+5 experience, doubled at the 7-day tier
	if res.PointsEarned != 40 || res.ExperienceEarned != 20 {
		t.Fatalf("rewards pts=%d exp=%d, want 40/20", res.PointsEarned, res.ExperienceEarned)
	}
	if !res.IsBonusDay {
		t.Fatalf("day 7 must be a bonus day")
	}

	rewards := res.CheckIn.Rewards.Data()
	if len(rewards.Items) != 1 || rewards.Items[0] != "初级宠物食物" {
		t.Fatalf("items = %v, want the week-tier food", rewards.Items)
	}
	if len(rewards.Badges) != 1 || rewards.Badges[0] != "一周签到达人" {
		t.Fatalf("badges = %v, want the week badge", rewards.Badges)
	}

	found := false
	for _, a := range res.Achievements {
		if a == "连续签到一周" {
			found = true
		}
	}
	if !found {
		t.Fatalf("achievements = %v, want the 7-day milestone", res.Achievements)
	}
}

func TestCheckInService_ThreeDayMultiplier(t *testing.T) {
	svc, db, user := newCheckInService(t)
	today := models.DateOnly(time.Now())
	seedCheckIn(t, db, user.ID, today.AddDate(0, 0, -1))
	seedCheckIn(t, db, user.ID, today.AddDate(0, 0, -2))

	res, err := svc.CheckIn(user.ID, "")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if res.ConsecutiveDays != 3 {
		t.Fatalf("streak = %d, want 3", res.ConsecutiveDays)
	}
	// 10 x 1.5 = 15 points, 5 x 1.5 rounds to 8
	if res.PointsEarned != 15 || res.ExperienceEarned != 8 {
		t.Fatalf("rewards pts=%d exp=%d, want 15/8", res.PointsEarned, res.ExperienceEarned)
	}
	if res.IsBonusDay {
		t.Fatalf("day 3 is not a bonus day")
	}
}

func TestCheckInService_BrokenStreakResets(t *testing.T) {
	svc, db, user := newCheckInService(t)
	today := models.DateOnly(time.Now())
	// A gap at yesterday breaks the run
	seedCheckIn(t, db, user.ID, today.AddDate(0, 0, -2))
	seedCheckIn(t, db, user.ID, today.AddDate(0, 0, -3))

	res, err := svc.CheckIn(user.ID, "")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if res.ConsecutiveDays != 1 {
		t.Fatalf("streak = %d, want 1 after a gap", res.ConsecutiveDays)
	}
}

func TestCheckInService_Status(t *testing.T) {
	svc, _, user := newCheckInService(t)

	status, err := svc.Status(user.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CheckedToday {
		t.Fatalf("fresh user has not checked in today")
	}
	if status.ConsecutiveDays != 0 {
		t.Fatalf("streak = %d, want 0", status.ConsecutiveDays)
	}
	if status.NextReward != 10 {
		t.Fatalf("next reward = %d, want 10", status.NextReward)
	}

	if _, err := svc.CheckIn(user.ID, ""); err != nil {
		t.Fatalf("check in: %v", err)
	}
	status, err = svc.Status(user.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.CheckedToday || status.ConsecutiveDays != 1 {
		t.Fatalf("status after check-in: %+v", status)
	}
}

func TestCheckInService_Calendar(t *testing.T) {
	svc, db, user := newCheckInService(t)
	today := models.DateOnly(time.Now())
	seedCheckIn(t, db, user.ID, today)

	days, err := svc.Calendar(user.ID, today.Year(), today.Month())
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("calendar days = %d, want 1", len(days))
	}
	if !days[0].Date.Equal(today) {
		t.Fatalf("calendar date = %v, want %v", days[0].Date, today)
	}

	empty, err := svc.Calendar(user.ID, today.Year()+1, today.Month())
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("next year's calendar must be empty")
	}
}

func TestCheckInService_MakeUp(t *testing.T) {
	svc, db, user := newCheckInService(t)
	target := models.DateOnly(time.Now()).AddDate(0, 0, -3)

	res, err := svc.MakeUp(user.ID, target, "")
	if err != nil {
		t.Fatalf("make up: %v", err)
	}
	if res.Cost != 3*MakeupCostPerDay {
		t.Fatalf("cost = %d, want %d", res.Cost, 3*MakeupCostPerDay)
	}
	// Halved base reward: 5 points, experience 2.5 rounds to 3
	if res.PointsEarned != 5 || res.ExperienceEarned != 3 {
		t.Fatalf("rewards pts=%d exp=%d, want 5/3", res.PointsEarned, res.ExperienceEarned)
	}
	if res.CheckIn.Type != models.CheckInTypeMakeup {
		t.Fatalf("type = %s, want makeup", res.CheckIn.Type)
	}
	if res.CheckIn.Multiplier != 0.5 {
		t.Fatalf("multiplier = %v, want 0.5", res.CheckIn.Multiplier)
	}
	if res.CheckIn.IsBonusDay {
		t.Fatalf("make-ups never count as bonus days")
	}

	stored := loadUser(t, db, user.ID)
	if stored.Points != 100-30+5 {
		t.Fatalf("points = %d, want 75", stored.Points)
	}
	if stored.TotalCheckins != 1 {
		t.Fatalf("total checkins = %d, want 1", stored.TotalCheckins)
	}
}

func TestCheckInService_MakeUp_ExtendsStreak(t *testing.T) {
	svc, db, user := newCheckInService(t)
	today := models.DateOnly(time.Now())
	seedCheckIn(t, db, user.ID, today.AddDate(0, 0, -2))

	if _, err := svc.MakeUp(user.ID, today.AddDate(0, 0, -1), ""); err != nil {
		t.Fatalf("make up: %v", err)
	}
	res, err := svc.CheckIn(user.ID, "")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if res.ConsecutiveDays != 3 {
		t.Fatalf("streak = %d, want 3 across the made-up day", res.ConsecutiveDays)
	}
}

func TestCheckInService_MakeUp_Validations(t *testing.T) {
	svc, db, user := newCheckInService(t)
	today := models.DateOnly(time.Now())

	if _, err := svc.MakeUp(user.ID, today, ""); !errors.Is(err, ErrDateInFuture) {
		t.Fatalf("today is not a make-up target, got %v", err)
	}
	if _, err := svc.MakeUp(user.ID, today.AddDate(0, 0, -(MakeupWindowDays+1)), ""); !errors.Is(err, ErrDateTooOld) {
		t.Fatalf("expected ErrDateTooOld, got %v", err)
	}

	seedCheckIn(t, db, user.ID, today.AddDate(0, 0, -2))
	if _, err := svc.MakeUp(user.ID, today.AddDate(0, 0, -2), ""); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestCheckInService_MakeUp_InsufficientPoints(t *testing.T) {
	svc, db, _ := newCheckInService(t)
	broke := seedUser(t, db, 10, 1)
	target := models.DateOnly(time.Now()).AddDate(0, 0, -3)

	_, err := svc.MakeUp(broke.ID, target, "")
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if got := loadUser(t, db, broke.ID).Points; got != 10 {
		t.Fatalf("failed make-up must not move the balance: %d", got)
	}
	var count int64
	db.Model(&models.CheckIn{}).Where("user_id = ?", broke.ID).Count(&count)
	if count != 0 {
		t.Fatalf("failed make-up must not leave a record")
	}
}
