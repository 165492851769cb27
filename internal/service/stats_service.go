package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/uzmath/mathtest-backend/internal/model"
	"github.com/uzmath/mathtest-backend/internal/repository"
)

// StatsService folds completed test results into the per-user
// aggregates and evaluates achievement unlocks.
type StatsService struct {
	userRepo *repository.UserRepository
}

func NewStatsService(userRepo *repository.UserRepository) *StatsService {
	return &StatsService{userRepo: userRepo}
}

// applyResult mutates the aggregate fields of u for one completed
// result. Pure over (u, result, now); the repository runs it under a
// row lock so concurrent submits serialize.
func applyResult(u *model.User, result ScoreResult, now time.Time) {
	u.Stats.TotalTests++
	u.Stats.CorrectAnswers += result.CorrectCount
	u.Stats.TotalQuestions += result.TotalQuestions
	u.Stats.TotalTimeSpent += result.TimeSpent

	// Running average over the previous count, then rounded. Matches
	// the stored integer average rather than recomputing from sums.
	prev := float64(u.Stats.AverageScore) * float64(u.Stats.TotalTests-1)
	u.Stats.AverageScore = int(math.Round((prev + float64(result.Percentage)) / float64(u.Stats.TotalTests)))

	if result.Percentage > u.Stats.BestScore {
		u.Stats.BestScore = result.Percentage
	}

	u.XP += result.XPEarned
	u.Level = model.LevelForXP(u.XP)

	advanceStreak(u, now)
}

// advanceStreak updates the daily streak from the calendar-day gap
// between the last active date and now. Same day leaves the streak
// alone, the next day extends it, a longer gap resets it to one. A
// negative gap (clock skew) changes nothing but the active date.
func advanceStreak(u *model.User, now time.Time) {
	today := truncateDay(now)
	switch diff := daysBetween(truncateDay(u.LastActiveDate), today); {
	case diff == 1:
		u.Streak++
	case diff > 1:
		u.Streak = 1
	}
	if u.Streak == 0 {
		u.Streak = 1
	}
	if u.Streak > u.LongestStreak {
		u.LongestStreak = u.Streak
	}
	u.LastActiveDate = today
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// Apply folds one scored result into the user's stored aggregates and
// category counters, then evaluates achievements against the updated
// state. Returns the updated user and any newly unlocked achievement
// ids.
func (s *StatsService) Apply(ctx context.Context, userID uuid.UUID, result ScoreResult) (*model.User, []string, error) {
	now := time.Now()
	user, err := s.userRepo.ApplyResult(ctx, userID, func(u *model.User) {
		applyResult(u, result, now)
	}, result.CategoryScores)
	if err != nil {
		return nil, nil, err
	}

	unlocked := model.EvaluateAchievements(user)
	if len(unlocked) > 0 {
		if err := s.userRepo.UnlockAchievements(ctx, userID, unlocked); err != nil {
			// The unlock is recomputable from aggregates, so a failure
			// here must not void the already-committed result.
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to persist achievement unlocks")
		} else {
			user.Achievements = append(user.Achievements, unlocked...)
		}
	}

	return user, unlocked, nil
}

// CheckAchievements re-evaluates the achievement table against the
// user's current aggregates and persists anything missing. Used by the
// explicit check endpoint and safe to call repeatedly.
func (s *StatsService) CheckAchievements(ctx context.Context, userID uuid.UUID) (*model.User, []string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	unlocked := model.EvaluateAchievements(user)
	if len(unlocked) > 0 {
		if err := s.userRepo.UnlockAchievements(ctx, userID, unlocked); err != nil {
			return nil, nil, err
		}
		user.Achievements = append(user.Achievements, unlocked...)
	}

	return user, unlocked, nil
}
