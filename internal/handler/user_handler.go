package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uzmath/mathtest-backend/internal/middleware"
	"github.com/uzmath/mathtest-backend/internal/model"
	"github.com/uzmath/mathtest-backend/internal/response"
	"github.com/uzmath/mathtest-backend/internal/service"
	"github.com/uzmath/mathtest-backend/internal/validator"
)

// UserHandler handles profile, statistics and achievement endpoints.
type UserHandler struct {
	userService  *service.UserService
	statsService *service.StatsService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, statsService *service.StatsService) *UserHandler {
	return &UserHandler{userService: userService, statsService: statsService}
}

// GetProfile godoc
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// UpdateProfile godoc
// PUT /api/v1/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrUsernameTaken):
			response.Fail(c, http.StatusConflict, response.ErrUsernameTaken)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// GetStatistics godoc
// GET /api/v1/user/statistics
func (h *UserHandler) GetStatistics(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	view, err := h.userService.GetStatistics(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// GetAchievements godoc
// GET /api/v1/user/achievements
// Returns the full achievement table with the user's unlock state.
func (h *UserHandler) GetAchievements(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	type achievementView struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Icon     string `json:"icon"`
		Desc     string `json:"desc"`
		Unlocked bool   `json:"unlocked"`
	}
	list := make([]achievementView, 0, len(model.AchievementTable))
	for i := range model.AchievementTable {
		a := &model.AchievementTable[i]
		list = append(list, achievementView{
			ID:       a.ID,
			Name:     a.Name,
			Icon:     a.Icon,
			Desc:     a.Desc,
			Unlocked: user.HasAchievement(a.ID),
		})
	}

	response.Success(c, http.StatusOK, gin.H{"achievements": list})
}

// CheckAchievements godoc
// POST /api/v1/user/achievements/check
// Re-evaluates achievements against current aggregates.
func (h *UserHandler) CheckAchievements(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, unlocked, err := h.statsService.CheckAchievements(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"new_achievements": unlocked,
		"achievements":     user.Achievements,
	})
}
