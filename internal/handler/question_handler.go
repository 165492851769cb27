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

// QuestionHandler handles admin question bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// List godoc
// GET /api/v1/admin/questions?page=1&per_page=20&status=approved
func (h *QuestionHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	status := model.QuestionStatus(c.Query("status"))

	questions, total, err := h.questionService.List(c.Request.Context(), page, perPage, status)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// Create godoc
// POST /api/v1/admin/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Create(c.Request.Context(), claims.UserID, claims.Role, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// Get godoc
// GET /api/v1/admin/questions/:id
func (h *QuestionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	q, err := h.questionService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// Update godoc
// PUT /api/v1/admin/questions/:id
func (h *QuestionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// Delete godoc
// DELETE /api/v1/admin/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
