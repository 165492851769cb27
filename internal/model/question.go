package model

import (
	"time"

	"github.com/google/uuid"
)

// Category is one of the fixed mathematics topic tags used for both
// question classification and score breakdown.
type Category string

const (
	CategoryAlgebra      Category = "algebra"
	CategoryGeometry     Category = "geometry"
	CategoryTrigonometry Category = "trigonometry"
	CategoryFunctions    Category = "functions"
	CategoryEquations    Category = "equations"
	CategoryProbability  Category = "probability"
	CategoryLogic        Category = "logic"
)

// Categories lists every category in a stable order. Score breakdowns
// carry one counter pair per entry, zero-valued when unused.
var Categories = []Category{
	CategoryAlgebra,
	CategoryGeometry,
	CategoryTrigonometry,
	CategoryFunctions,
	CategoryEquations,
	CategoryProbability,
	CategoryLogic,
}

// IsValidCategory reports whether c belongs to the fixed enumeration.
func IsValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty enumerates question difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Language enumerates the languages a question can be authored in.
type Language string

const (
	LanguageUzbek      Language = "uzbek"
	LanguageRussian    Language = "russian"
	LanguageEnglish    Language = "english"
	LanguageQoraqalpoq Language = "qoraqalpoq"
)

// Languages lists every supported language.
var Languages = []Language{LanguageUzbek, LanguageRussian, LanguageEnglish, LanguageQoraqalpoq}

// QuestionStatus enumerates moderation states. Only approved questions
// are sampled into test sessions.
type QuestionStatus string

const (
	QuestionStatusPending     QuestionStatus = "pending"
	QuestionStatusApproved    QuestionStatus = "approved"
	QuestionStatusDeactivated QuestionStatus = "deactivated"
)

// OptionLabels is the fixed answer option label set.
var OptionLabels = []string{"A", "B", "C", "D"}

// Question represents a single bank question. The correct answer label
// is drawn from the same set as the option labels.
type Question struct {
	ID           uuid.UUID      `json:"id"`
	QuestionText string         `json:"question_text"`
	QuestionUz   string         `json:"question_uz,omitempty"`
	QuestionRu   string         `json:"question_ru,omitempty"`
	OptionA      string         `json:"option_a"`
	OptionB      string         `json:"option_b"`
	OptionC      string         `json:"option_c"`
	OptionD      string         `json:"option_d"`
	CorrectLabel string         `json:"correct_label,omitempty"`
	Category     Category       `json:"category"`
	Topic        string         `json:"topic"`
	Difficulty   Difficulty     `json:"difficulty"`
	Points       int            `json:"points"`
	Language     Language       `json:"language"`
	Latex        string         `json:"latex,omitempty"`
	Image        string         `json:"image,omitempty"`
	Explanation  string         `json:"explanation,omitempty"`
	Status       QuestionStatus `json:"status"`
	CreatedBy    *uuid.UUID     `json:"created_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Options returns the labeled option texts in A..D order.
func (q *Question) Options() map[string]string {
	return map[string]string{
		"A": q.OptionA,
		"B": q.OptionB,
		"C": q.OptionC,
		"D": q.OptionD,
	}
}

// QuestionFilter narrows random sampling at session start. Category and
// Difficulty are optional; Language is required.
type QuestionFilter struct {
	Category   Category
	Difficulty Difficulty
	Language   Language
}

// ClientQuestion is a question as exposed to a client during an active
// attempt: no correct label, no explanation.
type ClientQuestion struct {
	ID           uuid.UUID         `json:"id"`
	QuestionText string            `json:"question_text"`
	Options      map[string]string `json:"options"`
	Category     Category          `json:"category"`
	Difficulty   Difficulty        `json:"difficulty"`
	Latex        string            `json:"latex,omitempty"`
	Image        string            `json:"image,omitempty"`
}

// ForClient strips the answer key from a question.
func (q *Question) ForClient() ClientQuestion {
	return ClientQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Options:      q.Options(),
		Category:     q.Category,
		Difficulty:   q.Difficulty,
		Latex:        q.Latex,
		Image:        q.Image,
	}
}

// CreateQuestionRequest is the payload for authoring a new question.
type CreateQuestionRequest struct {
	QuestionText string `json:"question_text" binding:"required,min=1,max=2000"`
	QuestionUz   string `json:"question_uz" binding:"omitempty,max=2000"`
	QuestionRu   string `json:"question_ru" binding:"omitempty,max=2000"`
	OptionA      string `json:"option_a" binding:"required,max=1000"`
	OptionB      string `json:"option_b" binding:"required,max=1000"`
	OptionC      string `json:"option_c" binding:"required,max=1000"`
	OptionD      string `json:"option_d" binding:"required,max=1000"`
	CorrectLabel string `json:"correct_label" binding:"required,oneof=A B C D"`
	Category     string `json:"category" binding:"required,oneof=algebra geometry trigonometry functions equations probability logic"`
	Topic        string `json:"topic" binding:"required,max=255"`
	Difficulty   string `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Points       int    `json:"points" binding:"omitempty,min=1,max=5"`
	Language     string `json:"language" binding:"required,oneof=uzbek russian english qoraqalpoq"`
	Latex        string `json:"latex" binding:"omitempty,max=2000"`
	Image        string `json:"image" binding:"omitempty,max=500"`
	Explanation  string `json:"explanation" binding:"omitempty,max=5000"`
}

// UpdateQuestionRequest is the payload for editing an existing question.
type UpdateQuestionRequest struct {
	QuestionText string `json:"question_text" binding:"omitempty,min=1,max=2000"`
	OptionA      string `json:"option_a" binding:"omitempty,max=1000"`
	OptionB      string `json:"option_b" binding:"omitempty,max=1000"`
	OptionC      string `json:"option_c" binding:"omitempty,max=1000"`
	OptionD      string `json:"option_d" binding:"omitempty,max=1000"`
	CorrectLabel string `json:"correct_label" binding:"omitempty,oneof=A B C D"`
	Topic        string `json:"topic" binding:"omitempty,max=255"`
	Difficulty   string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Explanation  string `json:"explanation" binding:"omitempty,max=5000"`
	Status       string `json:"status" binding:"omitempty,oneof=pending approved deactivated"`
}
