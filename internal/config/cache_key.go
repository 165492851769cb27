package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionAnswersKey returns the cache key for a session's autosaved answers hash.
func (r *CacheKeyStruct) SessionAnswersKey(sessionID string) string {
	return fmt.Sprintf("session:%s:answers", sessionID)
}

// SessionStartKey returns the cache key for a session's start time (Unix seconds).
func (r *CacheKeyStruct) SessionStartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:started_at", sessionID)
}

// SessionCheckpointKey returns the cache key for a session's autosave checkpoint
// (current question index and remaining seconds).
func (r *CacheKeyStruct) SessionCheckpointKey(sessionID string) string {
	return fmt.Sprintf("session:%s:checkpoint", sessionID)
}

// LeaderboardKey returns the cache key for a leaderboard page.
func (r *CacheKeyStruct) LeaderboardKey(region, timeRange string) string {
	if region == "" {
		region = "all"
	}
	return fmt.Sprintf("leaderboard:%s:%s", region, timeRange)
}

var CacheKey = NewCacheKeyStruct()
