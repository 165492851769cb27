package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/uzmath/mathtest-backend/internal/config"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// FocusWorker consumes persist_focus_events_queue and batch-inserts
// focus-loss events, bumping each session's tab switch counter.
type FocusWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewFocusWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *FocusWorker {
	return &FocusWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "focus_worker").Logger(),
	}
}

type focusPayload struct {
	SessionID  string `json:"session_id"`
	UserID     string `json:"user_id"`
	Kind       string `json:"kind"`
	DurationMs int    `json:"duration_ms"`
	At         int64  `json:"at"`
}

// Start begins the batching loop. Call in a goroutine.
func (w *FocusWorker) Start(ctx context.Context) {
	w.log.Info().Msg("FocusWorker started")

	buffer := make([]*focusPayload, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistFocusEventsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var payload focusPayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &payload)
	}
}

// flushSafe attempts bulk insert, then row-by-row fallback with
// requeue on failure.
func (w *FocusWorker) flushSafe(ctx context.Context, batch []*focusPayload) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
		return
	}
	w.bumpCounters(ctx, batch)
}

func (w *FocusWorker) bulkInsert(ctx context.Context, batch []*focusPayload) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, p := range batch {
		sessionID, err := uuid.Parse(p.SessionID)
		if err != nil {
			return err
		}
		userID, err := uuid.Parse(p.UserID)
		if err != nil {
			return err
		}
		rows = append(rows, []interface{}{
			sessionID, userID, p.Kind, p.DurationMs, time.Unix(p.At, 0),
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"session_focus_events"},
		[]string{"session_id", "user_id", "kind", "duration_ms", "occurred_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *FocusWorker) fallbackInsert(ctx context.Context, batch []*focusPayload) {
	requeueList := make([]*focusPayload, 0)

	for _, p := range batch {
		sessionID, err := uuid.Parse(p.SessionID)
		if err != nil {
			w.log.Error().Str("session_id", p.SessionID).Msg("Dropping focus event with invalid UUID")
			continue
		}
		userID, err := uuid.Parse(p.UserID)
		if err != nil {
			w.log.Error().Str("user_id", p.UserID).Msg("Dropping focus event with invalid UUID")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO session_focus_events (session_id, user_id, kind, duration_ms, occurred_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			sessionID, userID, p.Kind, p.DurationMs, time.Unix(p.At, 0),
		)
		if err != nil {
			w.log.Error().Err(err).Str("session_id", p.SessionID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, p)
			continue
		}
		w.bumpCounters(ctx, []*focusPayload{p})
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

// bumpCounters increments each affected session's tab switch count by
// the number of events just written for it.
func (w *FocusWorker) bumpCounters(ctx context.Context, batch []*focusPayload) {
	counts := make(map[string]int, len(batch))
	for _, p := range batch {
		counts[p.SessionID]++
	}
	for id, n := range counts {
		sessionID, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		if _, err := w.pool.Exec(ctx,
			`UPDATE test_sessions SET tab_switch_count = tab_switch_count + $2 WHERE id = $1`,
			sessionID, n,
		); err != nil {
			w.log.Error().Err(err).Str("session_id", id).Msg("Counter bump failed")
		}
	}
}

func (w *FocusWorker) requeue(ctx context.Context, items []*focusPayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.PersistFocusEventsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
	} else {
		w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
		time.Sleep(2 * time.Second)
	}
}

func (w *FocusWorker) shutdown(buffer []*focusPayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
