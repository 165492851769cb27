package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates test session lifecycle states. in_progress is
// the sole non-terminal state.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusExpired    SessionStatus = "expired"
)

// SessionType enumerates attempt types.
type SessionType string

const (
	SessionTypeMock     SessionType = "mock"
	SessionTypePractice SessionType = "practice"
	SessionTypeTopic    SessionType = "topic"
)

// DefaultDurationMinutes is the standard mock exam duration.
const DefaultDurationMinutes = 90

// DefaultQuestionCount is the standard mock exam length.
const DefaultQuestionCount = 50

// PassThreshold is the minimum percentage counted as a pass.
const PassThreshold = 60

// SessionConfig is the attempt configuration fixed at creation time.
type SessionConfig struct {
	Category        Category   `json:"category,omitempty"`
	Difficulty      Difficulty `json:"difficulty,omitempty"`
	Language        Language   `json:"language"`
	DurationMinutes int        `json:"duration_minutes"`
}

// SessionItem records one question's presentation within a session.
// The items sequence never changes length or order after creation; only
// UserAnswer, IsCorrect, TimeSpent and IsFlagged mutate.
type SessionItem struct {
	QuestionID uuid.UUID `json:"question_id"`
	OrderNum   int       `json:"order_num"`
	UserAnswer string    `json:"user_answer,omitempty"`
	IsCorrect  bool      `json:"is_correct"`
	TimeSpent  int       `json:"time_spent"`
	IsFlagged  bool      `json:"is_flagged"`
}

// CategoryScore is a correct/total counter pair for one category.
type CategoryScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// CategoryScores maps every category to its counter pair. Categories
// with zero items stay {0,0}.
type CategoryScores map[Category]CategoryScore

// NewCategoryScores returns a zeroed breakdown covering all categories.
func NewCategoryScores() CategoryScores {
	cs := make(CategoryScores, len(Categories))
	for _, c := range Categories {
		cs[c] = CategoryScore{}
	}
	return cs
}

// TestSession represents one exam attempt by one user.
type TestSession struct {
	ID     uuid.UUID     `json:"id"`
	UserID uuid.UUID     `json:"user_id"`
	Type   SessionType   `json:"type"`
	Config SessionConfig `json:"config"`

	Items []SessionItem `json:"items,omitempty"`

	Status SessionStatus `json:"status"`

	// Score fields, zero until scoring runs. Score and Percentage are
	// defined identical in this design.
	Score          int            `json:"score"`
	Percentage     int            `json:"percentage"`
	CorrectCount   int            `json:"correct_count"`
	IsPassed       bool           `json:"is_passed"`
	XPEarned       int            `json:"xp_earned"`
	CategoryScores CategoryScores `json:"category_scores,omitempty"`

	// TabSwitchCount counts detected focus-loss events (informational).
	TabSwitchCount int `json:"tab_switch_count"`

	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	TotalTimeSpent int        `json:"total_time_spent"`

	// Autosave checkpoint.
	LastSavedAt          time.Time `json:"last_saved_at"`
	CurrentQuestionIndex int       `json:"current_question_index"`
	TimeLeftAtSave       int       `json:"time_left_at_save"`
}

// Deadline returns the instant the configured duration runs out.
func (s *TestSession) Deadline() time.Time {
	return s.StartedAt.Add(time.Duration(s.Config.DurationMinutes) * time.Minute)
}

// ItemIndex builds a question-id -> item-index lookup so answer merges
// are O(1) instead of a linear scan per pair.
func (s *TestSession) ItemIndex() map[uuid.UUID]int {
	idx := make(map[uuid.UUID]int, len(s.Items))
	for i := range s.Items {
		idx[s.Items[i].QuestionID] = i
	}
	return idx
}

// StartTestRequest is the payload for starting a new session.
type StartTestRequest struct {
	Type       string `json:"type" binding:"omitempty,oneof=mock practice topic"`
	Category   string `json:"category" binding:"omitempty,oneof=algebra geometry trigonometry functions equations probability logic"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Language   string `json:"language" binding:"required,oneof=uzbek russian english qoraqalpoq"`
	Count      int    `json:"count" binding:"omitempty,min=1,max=100"`
}

// SaveTestRequest is the autosave checkpoint payload. Answers is a
// question-id -> option-label map; unknown ids are ignored and absent
// ids leave stored answers untouched.
type SaveTestRequest struct {
	Answers         map[string]string `json:"answers"`
	CurrentQuestion int               `json:"current_question" binding:"min=0"`
	TimeLeft        int               `json:"time_left" binding:"min=0"`
	Flagged         []int             `json:"flagged" binding:"omitempty,dive,min=0"`
}

// SubmitTestRequest carries final in-flight answers; merged with the
// same rule as save before scoring.
type SubmitTestRequest struct {
	Answers map[string]string `json:"answers"`
}

// SessionSummary is a history row.
type SessionSummary struct {
	ID             uuid.UUID     `json:"id"`
	Type           SessionType   `json:"type"`
	Score          int           `json:"score"`
	Percentage     int           `json:"percentage"`
	Status         SessionStatus `json:"status"`
	IsPassed       bool          `json:"is_passed"`
	XPEarned       int           `json:"xp_earned"`
	TotalQuestions int           `json:"total_questions"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}
