package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates user roles. Moderators and admins may read any
// session's detail; everyone else only their own.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// CanModerate reports whether the role may author questions and read
// other users' sessions.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleModerator
}

// Regions lists the selectable regions for profiles and leaderboards.
var Regions = []string{
	"toshkent", "samarqand", "buxoro", "andijon", "fargona",
	"namangan", "xorazm", "qashqadaryo", "surxondaryo",
	"navoiy", "jizzax", "sirdaryo", "qoraqalpogiston",
}

// UserStats is the long-lived cross-session rollup of a user's
// performance. AverageScore is always recomputed from the previous
// average and pre-increment test count, never stored from elsewhere.
type UserStats struct {
	TotalTests     int            `json:"total_tests"`
	TotalQuestions int            `json:"total_questions"`
	CorrectAnswers int            `json:"correct_answers"`
	AverageScore   int            `json:"average_score"`
	BestScore      int            `json:"best_score"`
	TotalTimeSpent int            `json:"total_time_spent"`
	CategoryScores CategoryScores `json:"category_scores"`
}

// User is an account with its gamification state and aggregates.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
	Phone    string    `json:"phone,omitempty"`
	Role     Role      `json:"role"`
	Region   string    `json:"region,omitempty"`
	School   string    `json:"school,omitempty"`
	Avatar   string    `json:"avatar,omitempty"`

	// Daily quota.
	Quota          int       `json:"quota"`
	UsedQuota      int       `json:"used_quota"`
	QuotaResetDate time.Time `json:"quota_reset_date"`

	// Gamification.
	XP             int       `json:"xp"`
	Level          int       `json:"level"`
	Streak         int       `json:"streak"`
	LongestStreak  int       `json:"longest_streak"`
	LastActiveDate time.Time `json:"last_active_date"`

	Achievements []string  `json:"achievements"`
	Stats        UserStats `json:"statistics"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// XPPerLevel is the experience needed per level step.
const XPPerLevel = 500

// LevelForXP derives the level from total experience. Levels are always
// recomputed from XP, never incremented independently.
func LevelForXP(xp int) int {
	return xp/XPPerLevel + 1
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries the profile fields a user may edit.
type UpdateProfileRequest struct {
	Username string  `json:"username" binding:"omitempty,min=3,max=30"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Region   *string `json:"region" binding:"omitempty,max=30"`
	School   *string `json:"school" binding:"omitempty,max=100"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=500"`
}
