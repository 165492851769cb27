package service

import (
	"testing"
	"time"

	"github.com/uzmath/mathtest-backend/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApplyResultRunningAverage(t *testing.T) {
	u := &model.User{
		Level: 1,
		Stats: model.UserStats{
			TotalTests:     4,
			AverageScore:   70,
			BestScore:      85,
			CategoryScores: model.NewCategoryScores(),
		},
	}

	result := ScoreResult{
		Percentage:     90,
		CorrectCount:   18,
		TotalQuestions: 20,
		IsPassed:       true,
		XPEarned:       185,
		TimeSpent:      1800,
	}

	applyResult(u, result, day(2026, time.March, 10))

	if u.Stats.TotalTests != 5 {
		t.Errorf("total tests = %d, want 5", u.Stats.TotalTests)
	}
	// (70*4 + 90) / 5 = 74.
	if u.Stats.AverageScore != 74 {
		t.Errorf("average = %d, want 74", u.Stats.AverageScore)
	}
	if u.Stats.BestScore != 90 {
		t.Errorf("best = %d, want 90", u.Stats.BestScore)
	}
	if u.Stats.CorrectAnswers != 18 || u.Stats.TotalQuestions != 20 {
		t.Errorf("correct/total = %d/%d, want 18/20", u.Stats.CorrectAnswers, u.Stats.TotalQuestions)
	}
	if u.Stats.TotalTimeSpent != 1800 {
		t.Errorf("time spent = %d, want 1800", u.Stats.TotalTimeSpent)
	}
	if u.XP != 185 {
		t.Errorf("xp = %d, want 185", u.XP)
	}
}

func TestApplyResultFirstTest(t *testing.T) {
	u := &model.User{
		Level: 1,
		Stats: model.UserStats{CategoryScores: model.NewCategoryScores()},
	}

	applyResult(u, ScoreResult{Percentage: 80, XPEarned: 140}, day(2026, time.March, 10))

	if u.Stats.AverageScore != 80 {
		t.Errorf("average = %d, want 80 on first test", u.Stats.AverageScore)
	}
	if u.Stats.BestScore != 80 {
		t.Errorf("best = %d, want 80", u.Stats.BestScore)
	}
	if u.Streak != 1 {
		t.Errorf("streak = %d, want 1 after first test", u.Streak)
	}
}

func TestApplyResultBestScoreKept(t *testing.T) {
	u := &model.User{
		Stats: model.UserStats{
			TotalTests:     1,
			AverageScore:   95,
			BestScore:      95,
			CategoryScores: model.NewCategoryScores(),
		},
	}

	applyResult(u, ScoreResult{Percentage: 50}, day(2026, time.March, 10))

	if u.Stats.BestScore != 95 {
		t.Errorf("best = %d, lower score must not lower it", u.Stats.BestScore)
	}
}

func TestLevelAdvancesWithXP(t *testing.T) {
	u := &model.User{
		XP:    480,
		Level: 1,
		Stats: model.UserStats{CategoryScores: model.NewCategoryScores()},
	}

	applyResult(u, ScoreResult{Percentage: 100, XPEarned: 250}, day(2026, time.March, 10))

	if u.XP != 730 {
		t.Errorf("xp = %d, want 730", u.XP)
	}
	if u.Level != model.LevelForXP(730) {
		t.Errorf("level = %d, want %d", u.Level, model.LevelForXP(730))
	}
	if u.Level != 2 {
		t.Errorf("level = %d, want 2 at 730 xp", u.Level)
	}
}

func TestAdvanceStreak(t *testing.T) {
	base := day(2026, time.March, 10)

	cases := []struct {
		name        string
		lastActive  time.Time
		streak      int
		longest     int
		wantStreak  int
		wantLongest int
	}{
		{"next day extends", base.AddDate(0, 0, -1), 3, 5, 4, 5},
		{"same day unchanged", base, 3, 5, 3, 5},
		{"two day gap resets", base.AddDate(0, 0, -2), 7, 7, 1, 7},
		{"long gap resets", base.AddDate(0, -1, 0), 12, 12, 1, 12},
		{"new longest", base.AddDate(0, 0, -1), 5, 5, 6, 6},
		{"zero streak bumped", base, 0, 0, 1, 1},
		{"future last active", base.AddDate(0, 0, 2), 3, 5, 3, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &model.User{
				Streak:         tc.streak,
				LongestStreak:  tc.longest,
				LastActiveDate: tc.lastActive,
			}
			advanceStreak(u, base)

			if u.Streak != tc.wantStreak {
				t.Errorf("streak = %d, want %d", u.Streak, tc.wantStreak)
			}
			if u.LongestStreak != tc.wantLongest {
				t.Errorf("longest = %d, want %d", u.LongestStreak, tc.wantLongest)
			}
			if !u.LastActiveDate.Equal(base) {
				t.Errorf("last active = %v, want %v", u.LastActiveDate, base)
			}
		})
	}
}

func TestAdvanceStreakMidDayTimes(t *testing.T) {
	u := &model.User{
		Streak:         2,
		LongestStreak:  2,
		LastActiveDate: day(2026, time.March, 9),
	}
	// 23:59 the next day is still a one-day gap after truncation.
	advanceStreak(u, time.Date(2026, time.March, 10, 23, 59, 0, 0, time.UTC))

	if u.Streak != 3 {
		t.Errorf("streak = %d, want 3", u.Streak)
	}
}
