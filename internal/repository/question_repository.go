package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uzmath/mathtest-backend/internal/model"
)

const questionColumns = `id, question_text, question_uz, question_ru,
	option_a, option_b, option_c, option_d, correct_label,
	category, topic, difficulty, points, language, latex, image,
	explanation, status, created_by, created_at, updated_at`

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row interface{ Scan(...any) error }) (*model.Question, error) {
	q := &model.Question{}
	var questionUz, questionRu, latex, image, explanation *string
	err := row.Scan(
		&q.ID, &q.QuestionText, &questionUz, &questionRu,
		&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectLabel,
		&q.Category, &q.Topic, &q.Difficulty, &q.Points, &q.Language,
		&latex, &image, &explanation, &q.Status, &q.CreatedBy,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if questionUz != nil {
		q.QuestionUz = *questionUz
	}
	if questionRu != nil {
		q.QuestionRu = *questionRu
	}
	if latex != nil {
		q.Latex = *latex
	}
	if image != nil {
		q.Image = *image
	}
	if explanation != nil {
		q.Explanation = *explanation
	}
	return q, nil
}

// Sample retrieves up to count random approved questions matching the filter.
func (r *QuestionRepository) Sample(ctx context.Context, filter model.QuestionFilter, count int) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE status = $1 AND language = $2`
	args := []any{model.QuestionStatusApproved, filter.Language}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Difficulty != "" {
		args = append(args, filter.Difficulty)
		query += fmt.Sprintf(" AND difficulty = $%d", len(args))
	}

	args = append(args, count)
	query += fmt.Sprintf(" ORDER BY random() LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question with its answer key.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	return scanQuestion(row)
}

// GetByIDs retrieves the given questions keyed by id. Missing ids are
// simply absent from the result; callers decide how to degrade.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Question, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uuid.UUID]*model.Question, len(ids))
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		result[q.ID] = q
	}
	return result, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (question_text, question_uz, question_ru,
			option_a, option_b, option_c, option_d, correct_label,
			category, topic, difficulty, points, language, latex, image,
			explanation, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING id, created_at, updated_at`,
		q.QuestionText, nullable(q.QuestionUz), nullable(q.QuestionRu),
		q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectLabel,
		q.Category, q.Topic, q.Difficulty, q.Points, q.Language,
		nullable(q.Latex), nullable(q.Image), nullable(q.Explanation),
		q.Status, q.CreatedBy,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update overwrites the mutable fields of a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions SET question_text = $1, option_a = $2, option_b = $3,
			option_c = $4, option_d = $5, correct_label = $6, topic = $7,
			difficulty = $8, explanation = $9, status = $10, updated_at = NOW()
		 WHERE id = $11`,
		q.QuestionText, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectLabel, q.Topic, q.Difficulty, nullable(q.Explanation),
		q.Status, q.ID,
	)
	return err
}

// Delete removes a question from the bank. Session items referencing it
// keep their row; scoring treats the dangling reference as unresolvable.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// List retrieves questions with pagination, optionally filtered by status.
func (r *QuestionRepository) List(ctx context.Context, page, perPage int, status model.QuestionStatus) ([]model.Question, int64, error) {
	where := ""
	args := []any{}
	if status != "" {
		args = append(args, status)
		where = " WHERE status = $1"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	args = append(args, perPage, offset)
	query := fmt.Sprintf(`SELECT `+questionColumns+` FROM questions`+where+
		` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, *q)
	}
	return questions, total, rows.Err()
}

// nullable maps an empty string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
