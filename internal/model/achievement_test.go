package model

import "testing"

func TestEvaluateAchievementsFirstTest(t *testing.T) {
	u := &User{Stats: UserStats{TotalTests: 1, BestScore: 45}}

	unlocked := EvaluateAchievements(u)
	if len(unlocked) != 1 || unlocked[0] != "first_test" {
		t.Errorf("unlocked = %v, want [first_test]", unlocked)
	}
}

func TestEvaluateAchievementsIdempotent(t *testing.T) {
	u := &User{
		Stats:        UserStats{TotalTests: 12, BestScore: 95},
		Streak:       8,
		Achievements: []string{"first_test", "tests_10"},
	}

	unlocked := EvaluateAchievements(u)

	want := map[string]bool{"streak_7": true, "score_90": true}
	if len(unlocked) != len(want) {
		t.Fatalf("unlocked = %v, want exactly %v", unlocked, want)
	}
	for _, id := range unlocked {
		if !want[id] {
			t.Errorf("unexpected unlock %q", id)
		}
	}

	// Persisting the unlocks makes a re-run report nothing.
	u.Achievements = append(u.Achievements, unlocked...)
	if again := EvaluateAchievements(u); len(again) != 0 {
		t.Errorf("re-evaluation unlocked %v, want none", again)
	}
}

func TestEvaluateAchievementsPerfectScore(t *testing.T) {
	u := &User{Stats: UserStats{TotalTests: 1, BestScore: 100}}

	unlocked := EvaluateAchievements(u)

	found := map[string]bool{}
	for _, id := range unlocked {
		found[id] = true
	}
	for _, id := range []string{"first_test", "score_90", "score_100"} {
		if !found[id] {
			t.Errorf("missing unlock %q in %v", id, unlocked)
		}
	}
}

func TestEvaluateAchievementsFreshUser(t *testing.T) {
	u := &User{}
	if unlocked := EvaluateAchievements(u); len(unlocked) != 0 {
		t.Errorf("fresh user unlocked %v, want none", unlocked)
	}
}

func TestHasAchievement(t *testing.T) {
	u := &User{Achievements: []string{"first_test"}}
	if !u.HasAchievement("first_test") {
		t.Error("expected first_test to be present")
	}
	if u.HasAchievement("tests_100") {
		t.Error("tests_100 must not be present")
	}
}
