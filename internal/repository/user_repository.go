package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uzmath/mathtest-backend/internal/model"
)

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("duplicate value")

// ErrQuotaExhausted is returned when the daily test quota is used up.
var ErrQuotaExhausted = errors.New("daily quota exhausted")

// UserRepository handles user account and aggregate data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, phone, role, region,
	school, avatar, quota, used_quota, quota_reset_date, xp, level, streak,
	longest_streak, last_active_date, achievements, total_tests,
	total_questions, correct_answers, average_score, best_score,
	total_time_spent, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var phone, region, school, avatar *string
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Password, &phone, &u.Role, &region,
		&school, &avatar, &u.Quota, &u.UsedQuota, &u.QuotaResetDate,
		&u.XP, &u.Level, &u.Streak, &u.LongestStreak, &u.LastActiveDate,
		&u.Achievements, &u.Stats.TotalTests, &u.Stats.TotalQuestions,
		&u.Stats.CorrectAnswers, &u.Stats.AverageScore, &u.Stats.BestScore,
		&u.Stats.TotalTimeSpent, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone != nil {
		u.Phone = *phone
	}
	if region != nil {
		u.Region = *region
	}
	if school != nil {
		u.School = *school
	}
	if avatar != nil {
		u.Avatar = *avatar
	}
	if u.Achievements == nil {
		u.Achievements = []string{}
	}
	return u, nil
}

// Create inserts a new user. Unique violations on username/email map to
// ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, phone, role, quota)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, quota_reset_date, last_active_date, created_at, updated_at`,
		u.Username, u.Email, u.Password, nullable(u.Phone), u.Role, u.Quota,
	).Scan(&u.ID, &u.QuotaResetDate, &u.LastActiveDate, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		}
		return err
	}
	return nil
}

// GetByID retrieves a user with aggregates and category counters.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	u.Stats.CategoryScores, err = r.categoryScores(ctx, r.pool, id)
	return u, err
}

// GetByEmail retrieves a user by email, password hash included.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *UserRepository) categoryScores(ctx context.Context, q querier, userID uuid.UUID) (model.CategoryScores, error) {
	scores := model.NewCategoryScores()
	rows, err := q.Query(ctx,
		`SELECT category, correct, total FROM user_category_stats WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cat model.Category
		var cs model.CategoryScore
		if err := rows.Scan(&cat, &cs.Correct, &cs.Total); err != nil {
			return nil, err
		}
		scores[cat] = cs
	}
	return scores, rows.Err()
}

// UpdateProfile overwrites the user-editable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET username = $1, phone = $2, region = $3, school = $4,
			avatar = $5, updated_at = NOW()
		 WHERE id = $6`,
		u.Username, nullable(u.Phone), nullable(u.Region), nullable(u.School),
		nullable(u.Avatar), u.ID,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// ConsumeQuota spends one unit of the daily test quota, resetting the
// counter when the calendar day rolled over. The check and increment
// are a single conditional update so concurrent starts cannot
// oversubscribe the quota.
func (r *UserRepository) ConsumeQuota(ctx context.Context, userID uuid.UUID) error {
	var used int
	err := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET used_quota = CASE WHEN quota_reset_date < CURRENT_DATE THEN 1 ELSE used_quota + 1 END,
		     quota_reset_date = CURRENT_DATE,
		     updated_at = NOW()
		 WHERE id = $1 AND (quota_reset_date < CURRENT_DATE OR used_quota < quota)
		 RETURNING used_quota`, userID,
	).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrQuotaExhausted
	}
	return err
}

// ApplyResult folds a completed session into the user's aggregates.
// The user row is locked for the duration, fold mutates the in-memory
// user, and the new values plus per-category counter increments commit
// together. Two sessions of the same user completing concurrently
// serialize here instead of racing read-modify-write.
func (r *UserRepository) ApplyResult(ctx context.Context, userID uuid.UUID, fold func(*model.User), categoryDelta model.CategoryScores) (*model.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	u, err := scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID))
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if u.Stats.CategoryScores, err = r.categoryScores(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("load category stats: %w", err)
	}

	fold(u)

	_, err = tx.Exec(ctx,
		`UPDATE users
		 SET total_tests = $1, total_questions = $2, correct_answers = $3,
		     average_score = $4, best_score = $5, total_time_spent = $6,
		     xp = $7, level = $8, streak = $9, longest_streak = $10,
		     last_active_date = $11, updated_at = NOW()
		 WHERE id = $12`,
		u.Stats.TotalTests, u.Stats.TotalQuestions, u.Stats.CorrectAnswers,
		u.Stats.AverageScore, u.Stats.BestScore, u.Stats.TotalTimeSpent,
		u.XP, u.Level, u.Streak, u.LongestStreak, u.LastActiveDate, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update aggregates: %w", err)
	}

	batch := &pgx.Batch{}
	for cat, delta := range categoryDelta {
		if delta.Total == 0 && delta.Correct == 0 {
			continue
		}
		batch.Queue(
			`INSERT INTO user_category_stats (user_id, category, correct, total)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, category) DO UPDATE
			 SET correct = user_category_stats.correct + EXCLUDED.correct,
			     total = user_category_stats.total + EXCLUDED.total`,
			userID, cat, delta.Correct, delta.Total,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, fmt.Errorf("increment category stats: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	for cat, delta := range categoryDelta {
		cs := u.Stats.CategoryScores[cat]
		cs.Correct += delta.Correct
		cs.Total += delta.Total
		u.Stats.CategoryScores[cat] = cs
	}
	return u, nil
}

// UnlockAchievements appends ids to the user's unlocked set. The
// DISTINCT rebuild keeps the operation idempotent under retries.
func (r *UserRepository) UnlockAchievements(ctx context.Context, userID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET achievements = (
			SELECT COALESCE(array_agg(DISTINCT a ORDER BY a), '{}')
			FROM unnest(achievements || $2::text[]) AS a
		 ), updated_at = NOW()
		 WHERE id = $1`,
		userID, ids,
	)
	return err
}
