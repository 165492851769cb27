package model

// Achievement is a fixed unlockable with a pure predicate over the
// user's aggregate state.
type Achievement struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Desc     string `json:"desc"`
	Unlocked func(u *User) bool
}

// AchievementTable lists every achievement in display order.
var AchievementTable = []Achievement{
	{
		ID: "first_test", Name: "Birinchi qadam", Icon: "🎯", Desc: "Birinchi testni yakunlash",
		Unlocked: func(u *User) bool { return u.Stats.TotalTests >= 1 },
	},
	{
		ID: "streak_7", Name: "Haftalik streak", Icon: "🔥", Desc: "7 kunlik streak",
		Unlocked: func(u *User) bool { return u.Streak >= 7 },
	},
	{
		ID: "streak_30", Name: "Oylik streak", Icon: "💪", Desc: "30 kunlik streak",
		Unlocked: func(u *User) bool { return u.Streak >= 30 },
	},
	{
		ID: "score_90", Name: "A'lochi", Icon: "⭐", Desc: "90% dan yuqori ball",
		Unlocked: func(u *User) bool { return u.Stats.BestScore >= 90 },
	},
	{
		ID: "score_100", Name: "Perfeksionist", Icon: "💯", Desc: "100% ball olish",
		Unlocked: func(u *User) bool { return u.Stats.BestScore >= 100 },
	},
	{
		ID: "tests_10", Name: "10 ta test", Icon: "📝", Desc: "10 ta test topshirish",
		Unlocked: func(u *User) bool { return u.Stats.TotalTests >= 10 },
	},
	{
		ID: "tests_50", Name: "50 ta test", Icon: "📚", Desc: "50 ta test topshirish",
		Unlocked: func(u *User) bool { return u.Stats.TotalTests >= 50 },
	},
	{
		ID: "tests_100", Name: "Test ustasi", Icon: "🏆", Desc: "100 ta test topshirish",
		Unlocked: func(u *User) bool { return u.Stats.TotalTests >= 100 },
	},
}

// HasAchievement reports whether the user already unlocked id.
func (u *User) HasAchievement(id string) bool {
	for _, a := range u.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// EvaluateAchievements runs every predicate against the user and
// returns the ids that newly unlock. Already-unlocked ids are never
// reported again, so repeated evaluation is idempotent.
func EvaluateAchievements(u *User) []string {
	var unlocked []string
	for i := range AchievementTable {
		a := &AchievementTable[i]
		if u.HasAchievement(a.ID) {
			continue
		}
		if a.Unlocked(u) {
			unlocked = append(unlocked, a.ID)
		}
	}
	return unlocked
}
