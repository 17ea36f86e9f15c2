package models

import "testing"

func TestUser_AddExperience_MultiLevel(t *testing.T) {
	u := &User{Level: 1}
	u.AddExperience(250)

	if u.Level != 2 {
		t.Fatalf("level = %d, want 2", u.Level)
	}
	if u.Experience != 150 {
		t.Fatalf("experience = %d, want 150", u.Experience)
	}

	// 150 + 60 covers level 2's cost of 200 exactly once more
	u.AddExperience(60)
	if u.Level != 3 || u.Experience != 10 {
		t.Fatalf("level=%d exp=%d, want level 3 with 10 exp", u.Level, u.Experience)
	}
}

func TestUser_DeductPoints(t *testing.T) {
	u := &User{Points: 50}
	if !u.DeductPoints(50) {
		t.Fatalf("deduction covering the balance must succeed")
	}
	if u.Points != 0 {
		t.Fatalf("points = %d, want 0", u.Points)
	}
	if u.DeductPoints(1) {
		t.Fatalf("deduction past the balance must fail")
	}
	if u.Points != 0 {
		t.Fatalf("failed deduction must not move the balance")
	}
}
