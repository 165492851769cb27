package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uzmath/mathtest-backend/internal/model"
)

// LeaderboardEntry is one row of a ranking.
type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	UserID         uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Region         string    `json:"region"`
	Level          int       `json:"level"`
	XP             int       `json:"xp"`
	Streak         int       `json:"streak"`
	AverageScore   int       `json:"average_score"`
	TestsCompleted int       `json:"tests_completed"`
}

// UserRank is the caller's own standing.
type UserRank struct {
	GlobalRank   int    `json:"global_rank"`
	RegionalRank *int   `json:"regional_rank,omitempty"`
	Region       string `json:"region,omitempty"`
	AverageScore int    `json:"average_score"`
	TotalTests   int    `json:"total_tests"`
}

// LeaderboardRepository runs read-only ranking aggregations over
// already-computed user and session fields.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

// NewLeaderboardRepository creates a new LeaderboardRepository.
func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

// AllTime returns the top users by lifetime average score.
func (r *LeaderboardRepository) AllTime(ctx context.Context, region string, limit int) ([]LeaderboardEntry, error) {
	query := `SELECT id, username, COALESCE(region, ''), level, xp, streak,
			average_score, total_tests
		 FROM users WHERE total_tests > 0`
	args := []any{}
	if region != "" {
		args = append(args, region)
		query += ` AND region = $1`
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY average_score DESC, total_tests DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Region, &e.Level, &e.XP,
			&e.Streak, &e.AverageScore, &e.TestsCompleted); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Since returns the top users ranked by average score over completed
// sessions after the cutoff (weekly/monthly boards).
func (r *LeaderboardRepository) Since(ctx context.Context, since time.Time, region string, limit int) ([]LeaderboardEntry, error) {
	query := `SELECT u.id, u.username, COALESCE(u.region, ''), u.level, u.streak,
			ROUND(AVG(s.score))::int, COUNT(*)::int, COALESCE(SUM(s.xp_earned), 0)::int
		 FROM test_sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.status = $1 AND s.completed_at >= $2`
	args := []any{model.SessionStatusCompleted, since}
	if region != "" {
		args = append(args, region)
		query += ` AND u.region = $3`
	}
	args = append(args, limit)
	query += fmt.Sprintf(` GROUP BY u.id, u.username, u.region, u.level, u.streak
		 ORDER BY ROUND(AVG(s.score)) DESC, COUNT(*) DESC
		 LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Region, &e.Level, &e.Streak,
			&e.AverageScore, &e.TestsCompleted, &e.XP); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RankOf returns the caller's global and regional standing by lifetime
// average score.
func (r *LeaderboardRepository) RankOf(ctx context.Context, u *model.User) (*UserRank, error) {
	rank := &UserRank{
		Region:       u.Region,
		AverageScore: u.Stats.AverageScore,
		TotalTests:   u.Stats.TotalTests,
	}

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) + 1 FROM users WHERE average_score > $1`,
		u.Stats.AverageScore,
	).Scan(&rank.GlobalRank)
	if err != nil {
		return nil, err
	}

	if u.Region != "" {
		var regional int
		err := r.pool.QueryRow(ctx,
			`SELECT COUNT(*) + 1 FROM users WHERE region = $1 AND average_score > $2`,
			u.Region, u.Stats.AverageScore,
		).Scan(&regional)
		if err != nil {
			return nil, err
		}
		rank.RegionalRank = &regional
	}

	return rank, nil
}
