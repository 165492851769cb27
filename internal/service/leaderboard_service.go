package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/uzmath/mathtest-backend/internal/config"
	"github.com/uzmath/mathtest-backend/internal/repository"
)

// TimeRange selects the leaderboard window.
type TimeRange string

const (
	TimeRangeAll   TimeRange = "all"
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
)

// leaderboardTTL is how long a computed page stays cached.
const leaderboardTTL = 60 * time.Second

const leaderboardSize = 100

// LeaderboardService serves ranked user pages with a short Redis cache
// in front of the aggregate queries.
type LeaderboardService struct {
	leaderboardRepo *repository.LeaderboardRepository
	userRepo        *repository.UserRepository
	rdb             *redis.Client
}

func NewLeaderboardService(leaderboardRepo *repository.LeaderboardRepository, userRepo *repository.UserRepository, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{leaderboardRepo: leaderboardRepo, userRepo: userRepo, rdb: rdb}
}

// Get returns one leaderboard page. region narrows to one region, empty
// means national. Cache misses recompute from Postgres and refill.
func (s *LeaderboardService) Get(ctx context.Context, region string, timeRange TimeRange) ([]repository.LeaderboardEntry, error) {
	switch timeRange {
	case TimeRangeAll, TimeRangeWeek, TimeRangeMonth:
	default:
		timeRange = TimeRangeAll
	}

	key := config.CacheKey.LeaderboardKey(region, string(timeRange))
	if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
		var entries []repository.LeaderboardEntry
		if err := json.Unmarshal([]byte(cached), &entries); err == nil {
			return entries, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("key", key).Msg("leaderboard cache read failed")
	}

	entries, err := s.compute(ctx, region, timeRange)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(entries); err == nil {
		if err := s.rdb.Set(ctx, key, payload, leaderboardTTL).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("leaderboard cache write failed")
		}
	}
	return entries, nil
}

// Rank returns the global and regional rank of one user.
func (s *LeaderboardService) Rank(ctx context.Context, userID uuid.UUID) (*repository.UserRank, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	rank, err := s.leaderboardRepo.RankOf(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("rank user: %w", err)
	}
	return rank, nil
}

func (s *LeaderboardService) compute(ctx context.Context, region string, timeRange TimeRange) ([]repository.LeaderboardEntry, error) {
	var since time.Time
	switch timeRange {
	case TimeRangeWeek:
		since = time.Now().AddDate(0, 0, -7)
	case TimeRangeMonth:
		since = time.Now().AddDate(0, -1, 0)
	default:
		entries, err := s.leaderboardRepo.AllTime(ctx, region, leaderboardSize)
		if err != nil {
			return nil, fmt.Errorf("all-time leaderboard: %w", err)
		}
		return entries, nil
	}

	entries, err := s.leaderboardRepo.Since(ctx, since, region, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("windowed leaderboard: %w", err)
	}
	return entries, nil
}
