package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avillegas/examcore/internal/app/models/dto"
	"github.com/avillegas/examcore/internal/app/services"
	"github.com/avillegas/examcore/internal/middleware"
	"github.com/avillegas/examcore/internal/pkg/helpers"
)

// ExamAssignmentController handles exam assignment endpoints
type ExamAssignmentController struct {
	assignmentService services.ExamAssignmentService
}

// NewExamAssignmentController creates a new ExamAssignmentController
func NewExamAssignmentController(assignmentService services.ExamAssignmentService) *ExamAssignmentController {
	return &ExamAssignmentController{assignmentService: assignmentService}
}

// AssignExam assigns an approved exam to students
// @Summary Assign an exam to students
// @Description Assigns an approved exam to the given students and publishes it
// @Tags exam-assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param examId path int true "Exam ID"
// @Param request body dto.AssignExamRequest true "Assignment details"
// @Success 201 {object} dto.APIResponse{data=dto.AssignExamResponse} "Exam assigned successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Failure 404 {object} dto.APIResponse "Exam or students not found"
// @Failure 422 {object} dto.APIResponse "Exam is not approved"
// @Router /exams/{examId}/assignments [post]
func (c *ExamAssignmentController) AssignExam(ctx *gin.Context) {
	examID, ok := parseIDParam(ctx, "examId")
	if !ok {
		return
	}

	var req dto.AssignExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.assignmentService.CreateExamAssignment(ctx.Request.Context(), userID, examID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(result, "Exam assigned successfully"))
}

// ListStudentExams lists the caller's exam assignments
// @Summary List my exam assignments
// @Description Lists the authenticated student's exam assignments, refreshing time-derived statuses first
// @Tags exam-assignments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param status query string false "Filter by assignment status"
// @Param subjectId query int false "Filter by subject"
// @Param teacherId query int false "Filter by assigning teacher"
// @Success 200 {object} dto.APIResponse{data=dto.StudentExamListResponse} "Assignments retrieved"
// @Router /students/me/exams [get]
func (c *ExamAssignmentController) ListStudentExams(ctx *gin.Context) {
	var filter dto.StudentExamFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		bindError(ctx, err)
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.assignmentService.ListStudentExams(ctx.Request.Context(), userID, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPagedResponse(result.Assignments, result.PaginationInfo))
}

// SendToEvaluator submits the caller's exam for evaluation
// @Summary Send an exam to the evaluator
// @Description Moves the caller's assignment on the exam into evaluation
// @Tags exam-assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendToEvaluatorRequest true "Exam to submit"
// @Success 200 {object} dto.APIResponse{data=dto.StudentExamAssignmentItem} "Exam sent to evaluator"
// @Failure 422 {object} dto.APIResponse "Assignment is not in a submittable state"
// @Router /students/me/exams/send [post]
func (c *ExamAssignmentController) SendToEvaluator(ctx *gin.Context) {
	var req dto.SendToEvaluatorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.assignmentService.SendExamToEvaluator(ctx.Request.Context(), userID, req.ExamID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Exam sent to evaluator"))
}

// ListEvaluatorExams lists assignments awaiting the caller's evaluation
// @Summary List exams awaiting evaluation
// @Description Lists assignments in evaluation for the authenticated teacher
// @Tags exam-assignments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.StudentExamListResponse} "Assignments retrieved"
// @Router /teachers/me/evaluations [get]
func (c *ExamAssignmentController) ListEvaluatorExams(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.assignmentService.ListEvaluatorExams(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPagedResponse(result.Assignments, result.PaginationInfo))
}

// GradeAssignment computes and stores the final grade for an assignment
// @Summary Grade an exam assignment
// @Description Sums the per-response points and stores the final grade
// @Tags exam-assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=dto.GradeAssignmentResponse} "Assignment graded"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Failure 422 {object} dto.APIResponse "Assignment is not in evaluation"
// @Router /assignments/{id}/grade [post]
func (c *ExamAssignmentController) GradeAssignment(ctx *gin.Context) {
	assignmentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.assignmentService.GradeExamAssignment(ctx.Request.Context(), userID, assignmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Assignment graded"))
}

// RequestRegrade opens a regrade request on the caller's graded exam
// @Summary Request a regrade
// @Description Opens a regrade request on a graded exam and moves the assignment into regrading
// @Tags regrades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RequestRegradeRequest true "Regrade request"
// @Success 201 {object} dto.APIResponse{data=dto.RegradeOutput} "Regrade requested"
// @Failure 422 {object} dto.APIResponse "Exam is not graded or a regrade is already active"
// @Router /regrades [post]
func (c *ExamAssignmentController) RequestRegrade(ctx *gin.Context) {
	var req dto.RequestRegradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.assignmentService.RequestExamRegrade(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(result, "Regrade requested"))
}

// ListPendingRegrades lists regrade requests awaiting the caller's decision
// @Summary List pending regrades
// @Description Lists unresolved regrade requests addressed to the authenticated teacher
// @Tags regrades
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.RegradeListResponse} "Regrades retrieved"
// @Router /teachers/me/regrades [get]
func (c *ExamAssignmentController) ListPendingRegrades(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.assignmentService.ListPendingRegrades(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPagedResponse(result.Regrades, result.PaginationInfo))
}

// ResolveRegrade approves or rejects a regrade request
// @Summary Resolve a regrade request
// @Description Approves the regrade with a final grade or rejects it, restoring the graded state
// @Tags regrades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Regrade ID"
// @Param request body dto.ResolveRegradeRequest true "Resolution"
// @Success 200 {object} dto.APIResponse{data=dto.RegradeOutput} "Regrade resolved"
// @Failure 400 {object} dto.APIResponse "Approval without a final grade"
// @Failure 404 {object} dto.APIResponse "Regrade not found or already resolved"
// @Router /regrades/{id}/resolve [post]
func (c *ExamAssignmentController) ResolveRegrade(ctx *gin.Context) {
	regradeID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ResolveRegradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := c.assignmentService.ResolveExamRegrade(ctx.Request.Context(), userID, regradeID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Regrade resolved"))
}

// parseIDParam reads a positive int64 path parameter, writing the error
// response itself when the value is malformed.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithDetails(name + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// currentUserID reads the authenticated user id set by the JWT middleware.
func currentUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.UserIDFrom(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return userID, true
}

// bindError reports a request binding failure.
func bindError(ctx *gin.Context, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
		WithDetails(err.Error())
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}
