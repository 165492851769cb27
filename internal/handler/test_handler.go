package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uzmath/mathtest-backend/internal/middleware"
	"github.com/uzmath/mathtest-backend/internal/model"
	"github.com/uzmath/mathtest-backend/internal/response"
	"github.com/uzmath/mathtest-backend/internal/service"
	"github.com/uzmath/mathtest-backend/internal/validator"
)

// TestHandler handles the test session lifecycle endpoints.
type TestHandler struct {
	sessionService *service.SessionService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(sessionService *service.SessionService) *TestHandler {
	return &TestHandler{sessionService: sessionService}
}

// Start godoc
// POST /api/v1/tests/start
func (h *TestHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	resp, err := h.sessionService.Start(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuotaExceeded):
			response.Fail(c, http.StatusTooManyRequests, response.ErrQuotaExceeded)
		case errors.Is(err, service.ErrNoQuestionsAvailable):
			response.Fail(c, http.StatusConflict, response.ErrNoQuestionsAvailable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// Save godoc
// POST /api/v1/tests/:id/save
func (h *TestHandler) Save(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req model.SaveTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.Save(c.Request.Context(), claims.UserID, sessionID, &req)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Submit godoc
// POST /api/v1/tests/:id/submit
func (h *TestHandler) Submit(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req model.SubmitTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), claims.UserID, sessionID, &req)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Resume godoc
// GET /api/v1/tests/:id/resume
func (h *TestHandler) Resume(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	resp, err := h.sessionService.Resume(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// State godoc
// GET /api/v1/tests/:id/state
func (h *TestHandler) State(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	state, err := h.sessionService.State(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// Detail godoc
// GET /api/v1/tests/:id
func (h *TestHandler) Detail(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	detail, err := h.sessionService.Detail(c.Request.Context(), claims.UserID, claims.Role, sessionID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// History godoc
// GET /api/v1/tests/history
func (h *TestHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	sessions, err := h.sessionService.History(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

func (h *TestHandler) sessionParams(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}
	return claims, sessionID, true
}

func (h *TestHandler) failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyCompleted)
	case errors.Is(err, service.ErrSessionExpired):
		response.Fail(c, http.StatusGone, response.ErrSessionExpired)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
