package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avillegas/examcore/internal/app/models/dto"
	"github.com/avillegas/examcore/internal/app/services"
	"github.com/avillegas/examcore/internal/middleware"
)

// ExamResponseController handles exam response endpoints
type ExamResponseController struct {
	responseService services.ExamResponseService
}

// NewExamResponseController creates a new ExamResponseController
func NewExamResponseController(responseService services.ExamResponseService) *ExamResponseController {
	return &ExamResponseController{responseService: responseService}
}

// CreateResponse records an answer to an exam question
// @Summary Answer an exam question
// @Description Records the caller's answer during an enabled exam window, scoring objective questions automatically
// @Tags exam-responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateExamResponseRequest true "Answer payload"
// @Success 201 {object} dto.APIResponse{data=dto.ExamResponseOutput} "Response recorded"
// @Failure 404 {object} dto.APIResponse "Assignment or question not found"
// @Failure 422 {object} dto.APIResponse "Exam is not active"
// @Router /responses [post]
func (c *ExamResponseController) CreateResponse(ctx *gin.Context) {
	var req dto.CreateExamResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.responseService.CreateExamResponse(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(result, "Response recorded"))
}

// UpdateResponse revises an existing answer
// @Summary Revise an answer
// @Description Replaces the caller's answer while the exam window is still open
// @Tags exam-responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Response ID"
// @Param request body dto.UpdateExamResponseRequest true "Revised answer"
// @Success 200 {object} dto.APIResponse{data=dto.ExamResponseOutput} "Response updated"
// @Failure 403 {object} dto.APIResponse "Response belongs to another student"
// @Failure 422 {object} dto.APIResponse "Exam is not active"
// @Router /responses/{id} [put]
func (c *ExamResponseController) UpdateResponse(ctx *gin.Context) {
	responseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateExamResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.responseService.UpdateExamResponse(ctx.Request.Context(), userID, responseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Response updated"))
}

// UpdateManualPoints sets a grader's manual score on a response
// @Summary Set manual points
// @Description Overrides the automatic score of a response with the grader's manual points
// @Tags exam-responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Response ID"
// @Param request body dto.UpdateManualPointsRequest true "Manual points"
// @Success 200 {object} dto.APIResponse "Manual points updated"
// @Failure 403 {object} dto.APIResponse "Caller may not review this subject"
// @Failure 404 {object} dto.APIResponse "Response not found"
// @Router /responses/{id}/manual-points [put]
func (c *ExamResponseController) UpdateManualPoints(ctx *gin.Context) {
	responseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateManualPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.responseService.UpdateManualPoints(ctx.Request.Context(), userID, responseID, req.ManualPoints); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Manual points updated"))
}

// GetResponseByIndex retrieves the caller's answer to a question by position
// @Summary Get my answer by question position
// @Description Retrieves the caller's recorded answer for the question at the given position in the exam
// @Tags exam-responses
// @Produce json
// @Security BearerAuth
// @Param examId path int true "Exam ID"
// @Param index path int true "Question position within the exam"
// @Success 200 {object} dto.APIResponse{data=dto.ExamResponseOutput} "Response retrieved"
// @Failure 404 {object} dto.APIResponse "No question at the position or question not yet answered"
// @Router /exams/{examId}/questions/{index}/response [get]
func (c *ExamResponseController) GetResponseByIndex(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "examId")
	if !ok {
		return
	}
	index, ok := parseIndexParam(ctx)
	if !ok {
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.responseService.GetResponseByQuestionIndex(ctx.Request.Context(), userID, examID, index)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Response retrieved"))
}

// GetQuestionByIndex serves the question content at a position during the exam
// @Summary Get question content by position
// @Description Serves the question at the given position while the caller's exam window is open
// @Tags exam-responses
// @Produce json
// @Security BearerAuth
// @Param examId path int true "Exam ID"
// @Param index path int true "Question position within the exam"
// @Success 200 {object} dto.APIResponse{data=dto.QuestionDetailResponse} "Question retrieved"
// @Failure 422 {object} dto.APIResponse "Exam is not active"
// @Router /exams/{examId}/questions/{index} [get]
func (c *ExamResponseController) GetQuestionByIndex(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "examId")
	if !ok {
		return
	}
	index, ok := parseIndexParam(ctx)
	if !ok {
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.responseService.GetQuestionDetailByIndex(ctx.Request.Context(), userID, examID, index)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Question retrieved"))
}

func parseIndexParam(ctx *gin.Context) (int, bool) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil || index < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid question position").
			WithDetails("index must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return index, true
}
