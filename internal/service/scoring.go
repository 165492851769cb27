package service

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/uzmath/mathtest-backend/internal/model"
)

// ScoreResult is the outcome of scoring one frozen item sequence.
type ScoreResult struct {
	Score          int                  `json:"score"`
	Percentage     int                  `json:"percentage"`
	CorrectCount   int                  `json:"correct_count"`
	TotalQuestions int                  `json:"total_questions"`
	IsPassed       bool                 `json:"is_passed"`
	XPEarned       int                  `json:"xp_earned"`
	CategoryScores model.CategoryScores `json:"category_scores"`

	// TimeSpent is filled after finalization, from the session row.
	TimeSpent int `json:"-"`

	// Excluded lists question ids that could not be resolved at scoring
	// time. They count toward neither the total nor any category.
	Excluded []uuid.UUID `json:"-"`
}

// XP bonuses, additive and cumulative: a perfect score earns all three.
const (
	xpPassBonus       = 20
	xpExcellenceBonus = 30
	xpPerfectBonus    = 50
)

// XPForPercentage computes the experience award for a percentage.
func XPForPercentage(percentage int) int {
	xp := int(math.Round(float64(percentage) * 1.5))
	if percentage >= model.PassThreshold {
		xp += xpPassBonus
	}
	if percentage >= 90 {
		xp += xpExcellenceBonus
	}
	if percentage == 100 {
		xp += xpPerfectBonus
	}
	return xp
}

// NormalizeAnswer uppercases a submitted option label. Returns "" for
// anything outside the fixed label set, which the merge then ignores.
func NormalizeAnswer(label string) string {
	label = strings.ToUpper(strings.TrimSpace(label))
	for _, known := range model.OptionLabels {
		if label == known {
			return label
		}
	}
	return ""
}

// ScoreSession grades a frozen item sequence against the revealed
// answer keys. It is a pure function of its inputs apart from writing
// the per-item IsCorrect flags back into items.
//
// Items whose question reference no longer resolves are excluded from
// the total and from category rollups rather than counted as wrong;
// the caller logs them.
func ScoreSession(items []model.SessionItem, questions map[uuid.UUID]*model.Question) ScoreResult {
	res := ScoreResult{CategoryScores: model.NewCategoryScores()}

	for i := range items {
		it := &items[i]
		q, ok := questions[it.QuestionID]
		if !ok || !model.IsValidCategory(q.Category) {
			it.IsCorrect = false
			res.Excluded = append(res.Excluded, it.QuestionID)
			continue
		}

		res.TotalQuestions++
		cs := res.CategoryScores[q.Category]
		cs.Total++

		it.IsCorrect = it.UserAnswer != "" &&
			strings.EqualFold(it.UserAnswer, q.CorrectLabel)
		if it.IsCorrect {
			res.CorrectCount++
			cs.Correct++
		}
		res.CategoryScores[q.Category] = cs
	}

	if res.TotalQuestions > 0 {
		res.Percentage = int(math.Round(float64(res.CorrectCount) / float64(res.TotalQuestions) * 100))
	}
	res.Score = res.Percentage
	res.IsPassed = res.Percentage >= model.PassThreshold
	res.XPEarned = XPForPercentage(res.Percentage)

	return res
}

// mergeAnswers applies incoming answers onto the item sequence:
// incoming values overwrite per item, ids with no matching item are
// ignored, and items with no incoming entry keep their stored answer.
// Applying the same payload twice yields the same item state.
func mergeAnswers(items []model.SessionItem, index map[uuid.UUID]int, answers map[uuid.UUID]string) {
	for qid, label := range answers {
		i, ok := index[qid]
		if !ok {
			continue
		}
		items[i].UserAnswer = label
	}
}

// parseAnswers converts a wire answers map (string keys, free-form
// labels) into validated uuid->label pairs. Malformed ids and unknown
// labels are dropped rather than rejected.
func parseAnswers(raw map[string]string) map[uuid.UUID]string {
	answers := make(map[uuid.UUID]string, len(raw))
	for key, label := range raw {
		qid, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		if normalized := NormalizeAnswer(label); normalized != "" {
			answers[qid] = normalized
		}
	}
	return answers
}
