package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/uzmath/mathtest-backend/internal/model"
	"github.com/uzmath/mathtest-backend/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

// UserService covers profile management and the statistics view.
type UserService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
}

func NewUserService(userRepo *repository.UserRepository, sessionRepo *repository.SessionRepository) *UserService {
	return &UserService{userRepo: userRepo, sessionRepo: sessionRepo}
}

// TopicStat is a category with its accuracy over all answered items.
type TopicStat struct {
	Category model.Category `json:"category"`
	Correct  int            `json:"correct"`
	Total    int            `json:"total"`
	Accuracy int            `json:"accuracy"`
}

// ProgressDay is one day of the recent progress chart.
type ProgressDay struct {
	Date         string `json:"date"`
	Tests        int    `json:"tests"`
	AverageScore int    `json:"average_score"`
}

// StatisticsView is the aggregate picture shown on the statistics page.
type StatisticsView struct {
	Stats        model.UserStats `json:"statistics"`
	XP           int             `json:"xp"`
	Level        int             `json:"level"`
	Streak       int             `json:"streak"`
	Progress     []ProgressDay   `json:"progress"`
	StrongTopics []TopicStat     `json:"strong_topics"`
	WeakTopics   []TopicStat     `json:"weak_topics"`
}

// GetProfile returns the account by id.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the editable profile fields. Nil pointers leave
// the stored value untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Region != nil {
		user.Region = *req.Region
	}
	if req.School != nil {
		user.School = *req.School
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// progressWindowDays is how far back the progress chart reaches.
const progressWindowDays = 30

// GetStatistics builds the statistics view: lifetime aggregates, the
// 30-day per-day progress series and the category accuracy split into
// strong and weak topics.
func (s *UserService) GetStatistics(ctx context.Context, userID uuid.UUID) (*StatisticsView, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -progressWindowDays)
	points, err := s.sessionRepo.ListCompletedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}

	view := &StatisticsView{
		Stats:    user.Stats,
		XP:       user.XP,
		Level:    user.Level,
		Streak:   user.Streak,
		Progress: buildProgress(points),
	}
	view.StrongTopics, view.WeakTopics = splitTopics(user.Stats.CategoryScores)
	return view, nil
}

// buildProgress folds completed sessions into a per-day series, oldest
// day first. Days without tests are omitted.
func buildProgress(points []repository.ProgressPoint) []ProgressDay {
	type acc struct {
		tests int
		sum   int
	}
	byDay := make(map[string]*acc)
	for _, p := range points {
		day := p.Date.UTC().Format("2006-01-02")
		a, ok := byDay[day]
		if !ok {
			a = &acc{}
			byDay[day] = a
		}
		a.tests++
		a.sum += p.Score
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	progress := make([]ProgressDay, 0, len(days))
	for _, day := range days {
		a := byDay[day]
		progress = append(progress, ProgressDay{
			Date:         day,
			Tests:        a.tests,
			AverageScore: (a.sum + a.tests/2) / a.tests,
		})
	}
	return progress
}

// splitTopics ranks answered categories by accuracy. Strong is the top
// three at 70% or better, weak the bottom three under 50%. Categories
// never attempted appear in neither list.
func splitTopics(scores model.CategoryScores) (strong, weak []TopicStat) {
	stats := make([]TopicStat, 0, len(scores))
	for _, cat := range model.Categories {
		cs := scores[cat]
		if cs.Total == 0 {
			continue
		}
		stats = append(stats, TopicStat{
			Category: cat,
			Correct:  cs.Correct,
			Total:    cs.Total,
			Accuracy: (cs.Correct*100 + cs.Total/2) / cs.Total,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Accuracy > stats[j].Accuracy })

	strong = []TopicStat{}
	weak = []TopicStat{}
	for _, st := range stats {
		if st.Accuracy >= 70 && len(strong) < 3 {
			strong = append(strong, st)
		}
	}
	for i := len(stats) - 1; i >= 0; i-- {
		if stats[i].Accuracy < 50 && len(weak) < 3 {
			weak = append(weak, stats[i])
		}
	}
	return strong, weak
}
