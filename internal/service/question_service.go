package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/uzmath/mathtest-backend/internal/model"
	"github.com/uzmath/mathtest-backend/internal/repository"
)

var ErrQuestionNotFound = errors.New("question not found")

// QuestionService handles the admin question bank.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// Create authors a new question. Admin submissions go straight to
// approved; moderator submissions wait in pending.
func (s *QuestionService) Create(ctx context.Context, createdBy uuid.UUID, role model.Role, req *model.CreateQuestionRequest) (*model.Question, error) {
	status := model.QuestionStatusPending
	if role == model.RoleAdmin {
		status = model.QuestionStatusApproved
	}

	q := &model.Question{
		QuestionText: req.QuestionText,
		QuestionUz:   req.QuestionUz,
		QuestionRu:   req.QuestionRu,
		OptionA:      req.OptionA,
		OptionB:      req.OptionB,
		OptionC:      req.OptionC,
		OptionD:      req.OptionD,
		CorrectLabel: req.CorrectLabel,
		Category:     model.Category(req.Category),
		Topic:        req.Topic,
		Difficulty:   model.Difficulty(req.Difficulty),
		Points:       req.Points,
		Language:     model.Language(req.Language),
		Latex:        req.Latex,
		Image:        req.Image,
		Explanation:  req.Explanation,
		Status:       status,
		CreatedBy:    &createdBy,
	}
	if q.Points == 0 {
		q.Points = 1
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// Update overwrites the provided fields; empty request fields keep the
// stored value.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.QuestionText != "" {
		q.QuestionText = req.QuestionText
	}
	if req.OptionA != "" {
		q.OptionA = req.OptionA
	}
	if req.OptionB != "" {
		q.OptionB = req.OptionB
	}
	if req.OptionC != "" {
		q.OptionC = req.OptionC
	}
	if req.OptionD != "" {
		q.OptionD = req.OptionD
	}
	if req.CorrectLabel != "" {
		q.CorrectLabel = req.CorrectLabel
	}
	if req.Topic != "" {
		q.Topic = req.Topic
	}
	if req.Difficulty != "" {
		q.Difficulty = model.Difficulty(req.Difficulty)
	}
	if req.Explanation != "" {
		q.Explanation = req.Explanation
	}
	if req.Status != "" {
		q.Status = model.QuestionStatus(req.Status)
	}

	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

// Delete removes a question from the bank. Existing session items keep
// referencing the id; scoring excludes unresolvable questions rather
// than failing.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

func (s *QuestionService) List(ctx context.Context, page, perPage int, status model.QuestionStatus) ([]model.Question, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.questionRepo.List(ctx, page, perPage, status)
}
