package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uzmath/mathtest-backend/internal/middleware"
	"github.com/uzmath/mathtest-backend/internal/response"
	"github.com/uzmath/mathtest-backend/internal/service"
)

// LeaderboardHandler handles ranking endpoints.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Get godoc
// GET /api/v1/leaderboard?region=...&range=all|week|month
func (h *LeaderboardHandler) Get(c *gin.Context) {
	region := c.Query("region")
	timeRange := service.TimeRange(c.DefaultQuery("range", "all"))

	entries, err := h.leaderboardService.Get(c.Request.Context(), region, timeRange)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}

// Region godoc
// GET /api/v1/leaderboard/region/:region?range=all|week|month
func (h *LeaderboardHandler) Region(c *gin.Context) {
	region := c.Param("region")
	timeRange := service.TimeRange(c.DefaultQuery("range", "all"))

	entries, err := h.leaderboardService.Get(c.Request.Context(), region, timeRange)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"region": region, "leaderboard": entries})
}

// MyRank godoc
// GET /api/v1/leaderboard/user-rank
func (h *LeaderboardHandler) MyRank(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	rank, err := h.leaderboardService.Rank(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rank": rank})
}
