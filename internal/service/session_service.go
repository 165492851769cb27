package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/uzmath/mathtest-backend/internal/config"
	"github.com/uzmath/mathtest-backend/internal/model"
	"github.com/uzmath/mathtest-backend/internal/repository"
)

var (
	ErrSessionNotFound      = errors.New("test session not found")
	ErrNotSessionOwner      = errors.New("not the owner of this test session")
	ErrAlreadyCompleted     = errors.New("test session is already completed")
	ErrSessionExpired       = errors.New("test session has expired")
	ErrNoQuestionsAvailable = errors.New("no questions available for the requested configuration")
	ErrQuotaExceeded        = errors.New("daily test quota exceeded")
)

// SessionService drives the test session lifecycle: start, autosave,
// resume, submit and the terminal transitions.
type SessionService struct {
	cfg          *config.Config
	sessionRepo  *repository.SessionRepository
	questionRepo *repository.QuestionRepository
	userRepo     *repository.UserRepository
	stats        *StatsService
	rdb          *redis.Client
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	cfg *config.Config,
	sessionRepo *repository.SessionRepository,
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
	stats *StatsService,
	rdb *redis.Client,
) *SessionService {
	return &SessionService{
		cfg:          cfg,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		userRepo:     userRepo,
		stats:        stats,
		rdb:          rdb,
	}
}

// StartResponse is the payload returned to a client beginning an
// attempt. Questions carry no answer keys.
type StartResponse struct {
	SessionID       uuid.UUID              `json:"session_id"`
	Type            model.SessionType      `json:"type"`
	Questions       []model.ClientQuestion `json:"questions"`
	DurationMinutes int                    `json:"duration_minutes"`
	StartedAt       time.Time              `json:"started_at"`
	Deadline        time.Time              `json:"deadline"`
	QuotaUsedToday  int                    `json:"quota_used_today"`
	QuotaLimit      int                    `json:"quota_limit"`
}

// ResumeResponse restores an interrupted attempt from its last
// checkpoint.
type ResumeResponse struct {
	SessionID       uuid.UUID              `json:"session_id"`
	Type            model.SessionType      `json:"type"`
	Questions       []model.ClientQuestion `json:"questions"`
	Answers         map[string]string      `json:"answers"`
	Flagged         []int                  `json:"flagged"`
	CurrentQuestion int                    `json:"current_question"`
	TimeLeft        int                    `json:"time_left"`
	StartedAt       time.Time              `json:"started_at"`
	LastSavedAt     time.Time              `json:"last_saved_at"`
}

// SaveResult acknowledges a persisted checkpoint.
type SaveResult struct {
	SavedAt  time.Time `json:"saved_at"`
	TimeLeft int       `json:"time_left"`
}

// ItemReview is one graded question in a terminal session view, with
// the answer key revealed.
type ItemReview struct {
	Question      model.ClientQuestion `json:"question"`
	UserAnswer    string               `json:"user_answer,omitempty"`
	CorrectAnswer string               `json:"correct_answer"`
	IsCorrect     bool                 `json:"is_correct"`
	Explanation   string               `json:"explanation,omitempty"`
	IsFlagged     bool                 `json:"is_flagged"`
}

// SubmitResult is the full outcome of a graded submission.
type SubmitResult struct {
	Session         *model.TestSession `json:"session"`
	Reviews         []ItemReview       `json:"reviews"`
	User            *model.User        `json:"user,omitempty"`
	NewAchievements []string           `json:"new_achievements,omitempty"`
}

// SessionDetail is the read view of a session. Reviews are present only
// once the session is terminal.
type SessionDetail struct {
	Session   *model.TestSession     `json:"session"`
	Questions []model.ClientQuestion `json:"questions,omitempty"`
	Reviews   []ItemReview           `json:"reviews,omitempty"`
}

// Start creates a new session: consumes one quota slot, samples the
// question set, freezes the item sequence and persists it.
func (s *SessionService) Start(ctx context.Context, userID uuid.UUID, req *model.StartTestRequest) (*StartResponse, error) {
	sessionType := model.SessionType(req.Type)
	if sessionType == "" {
		sessionType = model.SessionTypeMock
	}

	filter := model.QuestionFilter{
		Category:   model.Category(req.Category),
		Difficulty: model.Difficulty(req.Difficulty),
		Language:   model.Language(req.Language),
	}

	count := req.Count
	duration := 0
	switch sessionType {
	case model.SessionTypeMock:
		// The mock exam mirrors the real certification format and
		// ignores client-picked sizing.
		count = model.DefaultQuestionCount
		duration = model.DefaultDurationMinutes
		filter.Category = ""
		filter.Difficulty = ""
	default:
		if count == 0 {
			count = 20
		}
		duration = count * 2
	}

	questions, err := s.questionRepo.Sample(ctx, filter, count)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	if err := s.userRepo.ConsumeQuota(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrQuotaExhausted) {
			return nil, ErrQuotaExceeded
		}
		return nil, fmt.Errorf("consume quota: %w", err)
	}

	session := &model.TestSession{
		ID:     uuid.New(),
		UserID: userID,
		Type:   sessionType,
		Config: model.SessionConfig{
			Category:        filter.Category,
			Difficulty:      filter.Difficulty,
			Language:        filter.Language,
			DurationMinutes: duration,
		},
		Status:         model.SessionStatusInProgress,
		CategoryScores: model.NewCategoryScores(),
		StartedAt:      time.Now(),
		TimeLeftAtSave: duration * 60,
	}
	session.Items = make([]model.SessionItem, len(questions))
	clientQuestions := make([]model.ClientQuestion, len(questions))
	for i := range questions {
		session.Items[i] = model.SessionItem{
			QuestionID: questions[i].ID,
			OrderNum:   i,
		}
		clientQuestions[i] = questions[i].ForClient()
	}

	if err := s.sessionRepo.CreateWithItems(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.cacheStart(ctx, session)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}

	return &StartResponse{
		SessionID:       session.ID,
		Type:            session.Type,
		Questions:       clientQuestions,
		DurationMinutes: duration,
		StartedAt:       session.StartedAt,
		Deadline:        session.Deadline(),
		QuotaUsedToday:  user.UsedQuota,
		QuotaLimit:      s.cfg.DailyTestQuota,
	}, nil
}

// Save persists an autosave checkpoint. The answer merge is tolerant
// and idempotent; unknown question ids are dropped.
func (s *SessionService) Save(ctx context.Context, userID, sessionID uuid.UUID, req *model.SaveTestRequest) (*SaveResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if err := s.checkActive(session, time.Now()); err != nil {
		return nil, err
	}

	answers := parseAnswers(req.Answers)
	savedAt, err := s.sessionRepo.SaveCheckpoint(ctx, sessionID, answers, req.Flagged, req.CurrentQuestion, req.TimeLeft)
	if err != nil {
		if errors.Is(err, repository.ErrNotInProgress) {
			return nil, ErrAlreadyCompleted
		}
		return nil, fmt.Errorf("save checkpoint: %w", err)
	}

	s.cacheCheckpoint(ctx, session, answers, req)

	return &SaveResult{SavedAt: savedAt, TimeLeft: req.TimeLeft}, nil
}

// Resume restores an in-progress session from its checkpoint. An
// overdue session is expired on sight instead of resumed.
func (s *SessionService) Resume(ctx context.Context, userID, sessionID uuid.UUID) (*ResumeResponse, error) {
	session, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if session.Status == model.SessionStatusInProgress && now.After(session.Deadline().Add(s.cfg.SubmitGrace)) {
		if err := s.expire(ctx, session); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}
	if err := s.checkActive(session, now); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetByIDs(ctx, itemQuestionIDs(session.Items))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	resp := &ResumeResponse{
		SessionID:       session.ID,
		Type:            session.Type,
		Answers:         make(map[string]string),
		Flagged:         []int{},
		CurrentQuestion: session.CurrentQuestionIndex,
		TimeLeft:        remainingSeconds(session, now),
		StartedAt:       session.StartedAt,
		LastSavedAt:     session.LastSavedAt,
	}
	for i := range session.Items {
		it := &session.Items[i]
		q, ok := questions[it.QuestionID]
		if !ok {
			continue
		}
		resp.Questions = append(resp.Questions, q.ForClient())
		if it.UserAnswer != "" {
			resp.Answers[it.QuestionID.String()] = it.UserAnswer
		}
		if it.IsFlagged {
			resp.Flagged = append(resp.Flagged, it.OrderNum)
		}
	}
	return resp, nil
}

// Submit grades the session exactly once. In-flight answers are merged
// with the same rule as save, the terminal transition is a conditional
// update, and only the winning submit folds into user aggregates. A
// submit past the grace window is still graded for feedback but lands
// as expired and awards nothing.
func (s *SessionService) Submit(ctx context.Context, userID, sessionID uuid.UUID, req *model.SubmitTestRequest) (*SubmitResult, error) {
	session, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkActive(session, time.Time{}); err != nil {
		return nil, err
	}

	mergeAnswers(session.Items, session.ItemIndex(), parseAnswers(req.Answers))

	questions, err := s.questionRepo.GetByIDs(ctx, itemQuestionIDs(session.Items))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	result := ScoreSession(session.Items, questions)
	logExcluded(session.ID, result.Excluded)

	terminal := model.SessionStatusCompleted
	if time.Now().After(session.Deadline().Add(s.cfg.SubmitGrace)) {
		terminal = model.SessionStatusExpired
		result.XPEarned = 0
	}
	applyScore(session, result)

	if err := s.sessionRepo.Finalize(ctx, session, terminal); err != nil {
		if errors.Is(err, repository.ErrNotInProgress) {
			return nil, ErrAlreadyCompleted
		}
		return nil, fmt.Errorf("finalize session: %w", err)
	}

	s.dropCache(ctx, session.ID)

	out := &SubmitResult{
		Session: session,
		Reviews: buildReviews(session.Items, questions),
	}
	if terminal == model.SessionStatusCompleted {
		result.TimeSpent = session.TotalTimeSpent
		user, unlocked, err := s.stats.Apply(ctx, userID, result)
		if err != nil {
			// The session is already terminal; the caller still gets
			// the graded result while the aggregate write is surfaced
			// in logs for repair.
			log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to apply result to user aggregates")
		} else {
			out.User = user
			out.NewAchievements = unlocked
		}
	}
	return out, nil
}

// Detail returns a session view. The answer key and explanations are
// revealed only once the session is terminal; an in-progress view is
// the same stripped shape the runner uses. Admins may view any session.
func (s *SessionService) Detail(ctx context.Context, userID uuid.UUID, role model.Role, sessionID uuid.UUID) (*SessionDetail, error) {
	session, err := s.sessionRepo.GetWithItems(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID && !role.CanModerate() {
		return nil, ErrNotSessionOwner
	}

	questions, err := s.questionRepo.GetByIDs(ctx, itemQuestionIDs(session.Items))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	detail := &SessionDetail{Session: session}
	if session.Status == model.SessionStatusInProgress {
		for i := range session.Items {
			if q, ok := questions[session.Items[i].QuestionID]; ok {
				detail.Questions = append(detail.Questions, q.ForClient())
			}
		}
		// Never leak grading state mid-attempt.
		for i := range session.Items {
			session.Items[i].IsCorrect = false
		}
		return detail, nil
	}

	detail.Reviews = buildReviews(session.Items, questions)
	return detail, nil
}

// History lists the user's past sessions, most recently finished first.
func (s *SessionService) History(ctx context.Context, userID uuid.UUID, limit int) ([]model.SessionSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.sessionRepo.ListByUser(ctx, userID, limit)
}

// RecordAnswer persists a single answer outside a full checkpoint. The
// live stream uses it for per-answer autosave.
func (s *SessionService) RecordAnswer(ctx context.Context, userID, sessionID uuid.UUID, questionID uuid.UUID, label string) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return ErrNotSessionOwner
	}
	if err := s.checkActive(session, time.Now()); err != nil {
		return err
	}

	normalized := NormalizeAnswer(label)
	if normalized == "" {
		return nil
	}
	if err := s.rdb.HSet(ctx, config.CacheKey.SessionAnswersKey(sessionID.String()), questionID.String(), normalized).Err(); err != nil {
		return fmt.Errorf("cache answer: %w", err)
	}
	payload, _ := json.Marshal(answerJob{
		SessionID:  sessionID,
		QuestionID: questionID,
		Answer:     normalized,
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue answer: %w", err)
	}
	return nil
}

// reaperGrace lags the submit grace so a client's own late submit gets
// to win the terminal transition before the background sweep does.
const reaperGrace = 5 * time.Minute

// ExpireOverdue scans for sessions past their grace window and expires
// them. Run periodically by the reaper worker; returns how many
// sessions it closed.
func (s *SessionService) ExpireOverdue(ctx context.Context, batch int) (int, error) {
	ids, err := s.sessionRepo.ListOverdue(ctx, reaperGrace, batch)
	if err != nil {
		return 0, fmt.Errorf("list overdue: %w", err)
	}
	expired := 0
	for _, id := range ids {
		session, err := s.sessionRepo.GetWithItems(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("session_id", id.String()).Msg("failed to load overdue session")
			continue
		}
		if err := s.expire(ctx, session); err != nil && !errors.Is(err, repository.ErrNotInProgress) {
			log.Error().Err(err).Str("session_id", id.String()).Msg("failed to expire session")
			continue
		}
		expired++
	}
	return expired, nil
}

// StateResponse is the lightweight polling view of a running attempt:
// enough for a client to rebuild its clock and answer sheet without the
// full resume payload.
type StateResponse struct {
	SessionID       uuid.UUID           `json:"session_id"`
	Status          model.SessionStatus `json:"status"`
	Answers         map[string]string   `json:"answers"`
	TimeLeft        int                 `json:"time_left"`
	CurrentQuestion int                 `json:"current_question"`
	Flagged         []int               `json:"flagged"`
}

// State reads the running state from Redis, falling back to Postgres on
// a cache miss and re-priming the cache so the next poll is cheap.
func (s *SessionService) State(ctx context.Context, userID, sessionID uuid.UUID) (*StateResponse, error) {
	id := sessionID.String()
	now := time.Now()

	// loadSession hits Postgres at most once per call.
	var session *model.TestSession
	loadSession := func() (*model.TestSession, error) {
		if session != nil {
			return session, nil
		}
		sess, err := s.getOwned(ctx, userID, sessionID)
		if err != nil {
			return nil, err
		}
		if err := s.checkActive(sess, now); err != nil {
			return nil, err
		}
		session = sess
		return session, nil
	}

	answers, err := s.rdb.HGetAll(ctx, config.CacheKey.SessionAnswersKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get cached answers: %w", err)
	}

	// The start key doubles as the "this session is live" marker. A
	// miss means an evicted or restarted Redis, so rebuild both the
	// marker and the answer sheet from Postgres and self-heal.
	_, err = s.rdb.Get(ctx, config.CacheKey.SessionStartKey(id)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		sess, err := loadSession()
		if err != nil {
			return nil, err
		}
		s.cacheStart(ctx, sess)
		if len(answers) == 0 {
			answers = make(map[string]string)
			for i := range sess.Items {
				if a := sess.Items[i].UserAnswer; a != "" {
					answers[sess.Items[i].QuestionID.String()] = a
				}
			}
		}
	case err != nil:
		return nil, fmt.Errorf("get cached start time: %w", err)
	}

	resp := &StateResponse{
		SessionID: sessionID,
		Status:    model.SessionStatusInProgress,
		Answers:   answers,
		Flagged:   []int{},
	}

	raw, err := s.rdb.Get(ctx, config.CacheKey.SessionCheckpointKey(id)).Result()
	if err == nil {
		var checkpoint struct {
			CurrentQuestion int   `json:"current_question"`
			TimeLeft        int   `json:"time_left"`
			Flagged         []int `json:"flagged"`
			SavedAt         int64 `json:"saved_at"`
		}
		if err := json.Unmarshal([]byte(raw), &checkpoint); err == nil {
			// Age the saved clock so an idle poller still counts down.
			elapsed := int(now.Unix() - checkpoint.SavedAt)
			resp.TimeLeft = checkpoint.TimeLeft - elapsed
			if resp.TimeLeft < 0 {
				resp.TimeLeft = 0
			}
			resp.CurrentQuestion = checkpoint.CurrentQuestion
			if checkpoint.Flagged != nil {
				resp.Flagged = checkpoint.Flagged
			}
			return resp, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get cached checkpoint: %w", err)
	}

	// No checkpoint yet: derive the clock from the session row.
	sess, err := loadSession()
	if err != nil {
		return nil, err
	}
	resp.CurrentQuestion = sess.CurrentQuestionIndex
	resp.TimeLeft = remainingSeconds(sess, now)
	return resp, nil
}

// answerJob is the queue payload for single-answer persistence.
type answerJob struct {
	SessionID  uuid.UUID `json:"session_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Answer     string    `json:"answer"`
}

// expire grades whatever answers are on record and moves the session to
// expired. Awards nothing and never touches user aggregates. Losing the
// race to a concurrent submit is fine.
func (s *SessionService) expire(ctx context.Context, session *model.TestSession) error {
	questions, err := s.questionRepo.GetByIDs(ctx, itemQuestionIDs(session.Items))
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	result := ScoreSession(session.Items, questions)
	logExcluded(session.ID, result.Excluded)
	result.XPEarned = 0
	applyScore(session, result)

	if err := s.sessionRepo.Finalize(ctx, session, model.SessionStatusExpired); err != nil {
		return err
	}
	s.dropCache(ctx, session.ID)
	log.Info().Str("session_id", session.ID.String()).Msg("session expired")
	return nil
}

func (s *SessionService) getOwned(ctx context.Context, userID, sessionID uuid.UUID) (*model.TestSession, error) {
	session, err := s.sessionRepo.GetWithItems(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

// checkActive rejects operations on terminal sessions. With a non-zero
// now it also rejects work past the grace window, leaving the actual
// transition to submit or the reaper.
func (s *SessionService) checkActive(session *model.TestSession, now time.Time) error {
	switch session.Status {
	case model.SessionStatusCompleted:
		return ErrAlreadyCompleted
	case model.SessionStatusExpired:
		return ErrSessionExpired
	}
	if !now.IsZero() && now.After(session.Deadline().Add(s.cfg.SubmitGrace)) {
		return ErrSessionExpired
	}
	return nil
}

func (s *SessionService) cacheStart(ctx context.Context, session *model.TestSession) {
	ttl := time.Until(session.Deadline().Add(s.cfg.SubmitGrace)) + time.Hour
	key := config.CacheKey.SessionStartKey(session.ID.String())
	if err := s.rdb.Set(ctx, key, session.StartedAt.Unix(), ttl).Err(); err != nil {
		log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to cache session start")
	}
}

// cacheCheckpoint mirrors the latest checkpoint into Redis so the live
// stream and crash recovery can read it without a DB round trip. Purely
// best effort; Postgres stays the source of truth.
func (s *SessionService) cacheCheckpoint(ctx context.Context, session *model.TestSession, answers map[uuid.UUID]string, req *model.SaveTestRequest) {
	ttl := time.Until(session.Deadline().Add(s.cfg.SubmitGrace)) + time.Hour
	if ttl <= 0 {
		return
	}
	id := session.ID.String()

	if len(answers) > 0 {
		fields := make(map[string]string, len(answers))
		for qid, label := range answers {
			fields[qid.String()] = label
		}
		key := config.CacheKey.SessionAnswersKey(id)
		pipe := s.rdb.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("failed to cache session answers")
		}
	}

	checkpoint, _ := json.Marshal(map[string]any{
		"current_question": req.CurrentQuestion,
		"time_left":        req.TimeLeft,
		"flagged":          req.Flagged,
		"saved_at":         time.Now().Unix(),
	})
	key := config.CacheKey.SessionCheckpointKey(id)
	if err := s.rdb.Set(ctx, key, checkpoint, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("failed to cache session checkpoint")
	}
}

func (s *SessionService) dropCache(ctx context.Context, sessionID uuid.UUID) {
	id := sessionID.String()
	if err := s.rdb.Del(ctx,
		config.CacheKey.SessionAnswersKey(id),
		config.CacheKey.SessionStartKey(id),
		config.CacheKey.SessionCheckpointKey(id),
	).Err(); err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("failed to drop session cache")
	}
}

func applyScore(session *model.TestSession, result ScoreResult) {
	session.Score = result.Score
	session.Percentage = result.Percentage
	session.CorrectCount = result.CorrectCount
	session.IsPassed = result.IsPassed
	session.XPEarned = result.XPEarned
	session.CategoryScores = result.CategoryScores
}

func buildReviews(items []model.SessionItem, questions map[uuid.UUID]*model.Question) []ItemReview {
	reviews := make([]ItemReview, 0, len(items))
	for i := range items {
		it := &items[i]
		q, ok := questions[it.QuestionID]
		if !ok {
			continue
		}
		reviews = append(reviews, ItemReview{
			Question:      q.ForClient(),
			UserAnswer:    it.UserAnswer,
			CorrectAnswer: q.CorrectLabel,
			IsCorrect:     it.IsCorrect,
			Explanation:   q.Explanation,
			IsFlagged:     it.IsFlagged,
		})
	}
	return reviews
}

func itemQuestionIDs(items []model.SessionItem) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].QuestionID
	}
	return ids
}

func remainingSeconds(session *model.TestSession, now time.Time) int {
	left := int(session.Deadline().Sub(now) / time.Second)
	if left < 0 {
		left = 0
	}
	return left
}

func logExcluded(sessionID uuid.UUID, excluded []uuid.UUID) {
	for _, qid := range excluded {
		log.Warn().
			Str("session_id", sessionID.String()).
			Str("question_id", qid.String()).
			Msg("question missing at scoring time, excluded from totals")
	}
}
