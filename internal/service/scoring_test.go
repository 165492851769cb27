package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/uzmath/mathtest-backend/internal/model"
)

func makeQuestion(category model.Category, correct string) *model.Question {
	return &model.Question{
		ID:           uuid.New(),
		Category:     category,
		CorrectLabel: correct,
	}
}

func makeItems(questions []*model.Question, answers []string) ([]model.SessionItem, map[uuid.UUID]*model.Question) {
	items := make([]model.SessionItem, len(questions))
	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for i, q := range questions {
		items[i] = model.SessionItem{QuestionID: q.ID, OrderNum: i, UserAnswer: answers[i]}
		byID[q.ID] = q
	}
	return items, byID
}

func TestScoreSessionAllCorrect(t *testing.T) {
	questions := []*model.Question{
		makeQuestion(model.CategoryAlgebra, "A"),
		makeQuestion(model.CategoryAlgebra, "B"),
		makeQuestion(model.CategoryGeometry, "C"),
		makeQuestion(model.CategoryLogic, "D"),
	}
	items, byID := makeItems(questions, []string{"A", "B", "C", "D"})

	res := ScoreSession(items, byID)

	if res.Percentage != 100 || !res.IsPassed {
		t.Errorf("percentage = %d, passed = %v; want 100, true", res.Percentage, res.IsPassed)
	}
	if res.CorrectCount != 4 || res.TotalQuestions != 4 {
		t.Errorf("correct/total = %d/%d, want 4/4", res.CorrectCount, res.TotalQuestions)
	}
	// 150 base + 20 pass + 30 excellence + 50 perfect.
	if res.XPEarned != 250 {
		t.Errorf("xp = %d, want 250", res.XPEarned)
	}
	if cs := res.CategoryScores[model.CategoryAlgebra]; cs.Correct != 2 || cs.Total != 2 {
		t.Errorf("algebra = %+v, want 2/2", cs)
	}
	for i := range items {
		if !items[i].IsCorrect {
			t.Errorf("item %d not marked correct", i)
		}
	}
}

func TestScoreSessionNoAnswers(t *testing.T) {
	questions := []*model.Question{
		makeQuestion(model.CategoryAlgebra, "A"),
		makeQuestion(model.CategoryGeometry, "B"),
	}
	items, byID := makeItems(questions, []string{"", ""})

	res := ScoreSession(items, byID)

	if res.Percentage != 0 || res.IsPassed {
		t.Errorf("percentage = %d, passed = %v; want 0, false", res.Percentage, res.IsPassed)
	}
	if res.XPEarned != 0 {
		t.Errorf("xp = %d, want 0", res.XPEarned)
	}
	if res.TotalQuestions != 2 {
		t.Errorf("total = %d, want 2 (unanswered still counts)", res.TotalQuestions)
	}
}

func TestScoreSessionCaseInsensitive(t *testing.T) {
	q := makeQuestion(model.CategoryAlgebra, "A")
	items, byID := makeItems([]*model.Question{q}, []string{"a"})

	res := ScoreSession(items, byID)
	if res.CorrectCount != 1 {
		t.Error("lowercase answer should match uppercase key")
	}
}

func TestScoreSessionRounding(t *testing.T) {
	// 2 of 3 correct: 66.67 rounds to 67.
	questions := []*model.Question{
		makeQuestion(model.CategoryAlgebra, "A"),
		makeQuestion(model.CategoryAlgebra, "B"),
		makeQuestion(model.CategoryAlgebra, "C"),
	}
	items, byID := makeItems(questions, []string{"A", "B", "D"})

	res := ScoreSession(items, byID)
	if res.Percentage != 67 {
		t.Errorf("percentage = %d, want 67", res.Percentage)
	}
	if !res.IsPassed {
		t.Error("67 should pass at threshold 60")
	}
}

func TestScoreSessionExcludesUnresolvable(t *testing.T) {
	known := makeQuestion(model.CategoryAlgebra, "A")
	ghost := uuid.New()

	items := []model.SessionItem{
		{QuestionID: known.ID, OrderNum: 0, UserAnswer: "A"},
		{QuestionID: ghost, OrderNum: 1, UserAnswer: "B"},
	}
	byID := map[uuid.UUID]*model.Question{known.ID: known}

	res := ScoreSession(items, byID)

	if res.TotalQuestions != 1 {
		t.Errorf("total = %d, want 1 (missing question excluded)", res.TotalQuestions)
	}
	if res.Percentage != 100 {
		t.Errorf("percentage = %d, want 100", res.Percentage)
	}
	if len(res.Excluded) != 1 || res.Excluded[0] != ghost {
		t.Errorf("excluded = %v, want [%s]", res.Excluded, ghost)
	}
}

func TestScoreSessionEmpty(t *testing.T) {
	res := ScoreSession(nil, nil)
	if res.Percentage != 0 || res.IsPassed || res.XPEarned != 0 {
		t.Errorf("empty session should score zero: %+v", res)
	}
}

func TestXPForPercentage(t *testing.T) {
	cases := []struct {
		percentage int
		want       int
	}{
		{0, 0},
		{40, 60},             // below pass: base only
		{59, 89},             // 88.5 rounds up
		{60, 110},            // base 90 + pass 20
		{89, 154},            // 133.5 rounds to 134 + 20
		{90, 185},            // 135 + 20 + 30
		{99, 199},            // 148.5 rounds to 149 + 20 + 30
		{100, 250},           // 150 + 20 + 30 + 50
	}
	for _, tc := range cases {
		if got := XPForPercentage(tc.percentage); got != tc.want {
			t.Errorf("XPForPercentage(%d) = %d, want %d", tc.percentage, got, tc.want)
		}
	}
}

func TestNormalizeAnswer(t *testing.T) {
	cases := map[string]string{
		"a": "A", "B": "B", " c ": "C", "d": "D",
		"E": "", "": "", "AB": "", "1": "",
	}
	for in, want := range cases {
		if got := NormalizeAnswer(in); got != want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMergeAnswersIdempotent(t *testing.T) {
	q1 := uuid.New()
	q2 := uuid.New()
	items := []model.SessionItem{
		{QuestionID: q1, OrderNum: 0, UserAnswer: "A"},
		{QuestionID: q2, OrderNum: 1},
	}
	index := map[uuid.UUID]int{q1: 0, q2: 1}

	incoming := map[uuid.UUID]string{
		q2:         "C",
		uuid.New(): "D", // unknown id must be ignored
	}

	mergeAnswers(items, index, incoming)
	mergeAnswers(items, index, incoming)

	if items[0].UserAnswer != "A" {
		t.Errorf("absent key overwrote stored answer: %q", items[0].UserAnswer)
	}
	if items[1].UserAnswer != "C" {
		t.Errorf("incoming answer not applied: %q", items[1].UserAnswer)
	}
	if len(items) != 2 {
		t.Errorf("merge changed item count: %d", len(items))
	}
}

func TestParseAnswersDropsGarbage(t *testing.T) {
	qid := uuid.New()
	raw := map[string]string{
		qid.String():  "b",
		"not-a-uuid":  "A",
		uuid.NewString(): "Z",
	}

	parsed := parseAnswers(raw)
	if len(parsed) != 1 {
		t.Fatalf("parsed = %v, want single entry", parsed)
	}
	if parsed[qid] != "B" {
		t.Errorf("parsed[%s] = %q, want B", qid, parsed[qid])
	}
}
