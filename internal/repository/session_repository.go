package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uzmath/mathtest-backend/internal/model"
)

// ErrNotInProgress is returned when a conditional update finds the
// session already in a terminal state. The compare-and-set on status is
// what makes completion at-most-once under concurrent submits.
var ErrNotInProgress = errors.New("session is not in progress")

// SessionRepository handles test session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, type, category, difficulty, language,
	duration_minutes, status, score, percentage, correct_count, is_passed,
	xp_earned, category_scores, tab_switch_count, started_at, completed_at,
	total_time_spent, last_saved_at, current_question_index, time_left_at_save`

func scanSession(row pgx.Row) (*model.TestSession, error) {
	s := &model.TestSession{}
	var category, difficulty *string
	var categoryScores []byte
	err := row.Scan(
		&s.ID, &s.UserID, &s.Type, &category, &difficulty, &s.Config.Language,
		&s.Config.DurationMinutes, &s.Status, &s.Score, &s.Percentage,
		&s.CorrectCount, &s.IsPassed, &s.XPEarned, &categoryScores,
		&s.TabSwitchCount, &s.StartedAt, &s.CompletedAt, &s.TotalTimeSpent,
		&s.LastSavedAt, &s.CurrentQuestionIndex, &s.TimeLeftAtSave,
	)
	if err != nil {
		return nil, err
	}
	if category != nil {
		s.Config.Category = model.Category(*category)
	}
	if difficulty != nil {
		s.Config.Difficulty = model.Difficulty(*difficulty)
	}
	if len(categoryScores) > 0 {
		if err := json.Unmarshal(categoryScores, &s.CategoryScores); err != nil {
			return nil, fmt.Errorf("decode category scores: %w", err)
		}
	}
	return s, nil
}

// CreateWithItems inserts a session and its fixed item sequence in one
// transaction. Items are bulk-loaded with CopyFrom.
func (r *SessionRepository) CreateWithItems(ctx context.Context, s *model.TestSession) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var category, difficulty *string
	if s.Config.Category != "" {
		c := string(s.Config.Category)
		category = &c
	}
	if s.Config.Difficulty != "" {
		d := string(s.Config.Difficulty)
		difficulty = &d
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO test_sessions (user_id, type, category, difficulty, language,
			duration_minutes, status, time_left_at_save)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, started_at, last_saved_at`,
		s.UserID, s.Type, category, difficulty, s.Config.Language,
		s.Config.DurationMinutes, model.SessionStatusInProgress, s.TimeLeftAtSave,
	).Scan(&s.ID, &s.StartedAt, &s.LastSavedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	rows := make([][]interface{}, 0, len(s.Items))
	for i := range s.Items {
		rows = append(rows, []interface{}{s.ID, s.Items[i].QuestionID, s.Items[i].OrderNum})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"session_items"},
		[]string{"session_id", "question_id", "order_num"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a session without its items.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id))
}

// GetWithItems retrieves a session and its ordered item sequence.
func (r *SessionRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT question_id, order_num, COALESCE(user_answer, ''), is_correct, time_spent, is_flagged
		 FROM session_items WHERE session_id = $1 ORDER BY order_num`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it model.SessionItem
		if err := rows.Scan(&it.QuestionID, &it.OrderNum, &it.UserAnswer, &it.IsCorrect, &it.TimeSpent, &it.IsFlagged); err != nil {
			return nil, err
		}
		s.Items = append(s.Items, it)
	}
	return s, rows.Err()
}

// SaveCheckpoint applies an autosave: merges the supplied answers into
// matching items (unknown question ids no-op, absent ids stay
// untouched), optionally replaces the flag set, and updates the
// checkpoint fields. The whole merge is one transaction and only
// applies while the session is still in progress.
func (r *SessionRepository) SaveCheckpoint(ctx context.Context, sessionID uuid.UUID, answers map[uuid.UUID]string, flagged []int, currentIndex, timeLeft int) (time.Time, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var savedAt time.Time
	err = tx.QueryRow(ctx,
		`UPDATE test_sessions
		 SET current_question_index = $2, time_left_at_save = $3, last_saved_at = NOW()
		 WHERE id = $1 AND status = $4
		 RETURNING last_saved_at`,
		sessionID, currentIndex, timeLeft, model.SessionStatusInProgress,
	).Scan(&savedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrNotInProgress
		}
		return time.Time{}, fmt.Errorf("update checkpoint: %w", err)
	}

	batch := &pgx.Batch{}
	for qid, label := range answers {
		batch.Queue(
			`UPDATE session_items SET user_answer = $3
			 WHERE session_id = $1 AND question_id = $2`,
			sessionID, qid, label,
		)
	}
	if flagged != nil {
		batch.Queue(
			`UPDATE session_items SET is_flagged = (order_num = ANY($2))
			 WHERE session_id = $1`,
			sessionID, flagged,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return time.Time{}, fmt.Errorf("merge answers: %w", err)
		}
	}

	return savedAt, tx.Commit(ctx)
}

// Finalize transitions a session into a terminal state and persists the
// scoring result. The status check and transition are a single
// conditional UPDATE: of N concurrent submits exactly one wins, the
// rest observe ErrNotInProgress.
func (r *SessionRepository) Finalize(ctx context.Context, s *model.TestSession, terminal model.SessionStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	categoryScores, err := json.Marshal(s.CategoryScores)
	if err != nil {
		return fmt.Errorf("encode category scores: %w", err)
	}

	err = tx.QueryRow(ctx,
		`UPDATE test_sessions
		 SET status = $2, score = $3, percentage = $4, correct_count = $5,
		     is_passed = $6, xp_earned = $7, category_scores = $8,
		     completed_at = NOW(),
		     total_time_spent = EXTRACT(EPOCH FROM (NOW() - started_at))::int,
		     last_saved_at = NOW()
		 WHERE id = $1 AND status = $9
		 RETURNING completed_at, total_time_spent`,
		s.ID, terminal, s.Score, s.Percentage, s.CorrectCount,
		s.IsPassed, s.XPEarned, categoryScores, model.SessionStatusInProgress,
	).Scan(&s.CompletedAt, &s.TotalTimeSpent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotInProgress
		}
		return fmt.Errorf("finalize session: %w", err)
	}
	s.Status = terminal

	batch := &pgx.Batch{}
	for i := range s.Items {
		it := &s.Items[i]
		batch.Queue(
			`UPDATE session_items SET user_answer = $3, is_correct = $4
			 WHERE session_id = $1 AND question_id = $2`,
			s.ID, it.QuestionID, nullable(it.UserAnswer), it.IsCorrect,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("persist item results: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListByUser retrieves up to limit session summaries for history,
// most recent first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.SessionSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.type, s.score, s.percentage, s.status, s.is_passed, s.xp_earned,
			(SELECT COUNT(*) FROM session_items i WHERE i.session_id = s.id),
			s.started_at, s.completed_at
		 FROM test_sessions s
		 WHERE s.user_id = $1
		 ORDER BY s.completed_at DESC NULLS LAST, s.started_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.SessionSummary
	for rows.Next() {
		var sum model.SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Type, &sum.Score, &sum.Percentage, &sum.Status,
			&sum.IsPassed, &sum.XPEarned, &sum.TotalQuestions, &sum.StartedAt, &sum.CompletedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// ProgressPoint is one completed session on a user's progress chart.
type ProgressPoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// ListCompletedSince returns (date, score) points for completed
// sessions after the cutoff, oldest first.
func (r *SessionRepository) ListCompletedSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]ProgressPoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT completed_at, score FROM test_sessions
		 WHERE user_id = $1 AND status = $2 AND completed_at >= $3
		 ORDER BY completed_at ASC`,
		userID, model.SessionStatusCompleted, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []ProgressPoint
	for rows.Next() {
		var p ProgressPoint
		if err := rows.Scan(&p.Date, &p.Score); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// ListOverdue returns ids of in-progress sessions whose deadline passed
// more than grace ago. Used by the expiry reaper.
func (r *SessionRepository) ListOverdue(ctx context.Context, grace time.Duration, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM test_sessions
		 WHERE status = $1
		   AND started_at + (duration_minutes * INTERVAL '1 minute') + make_interval(secs => $2) < NOW()
		 LIMIT $3`,
		model.SessionStatusInProgress, grace.Seconds(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
