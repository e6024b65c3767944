package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boiko-school/nmt-backend/internal/middleware"
	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/response"
	"github.com/boiko-school/nmt-backend/internal/service"
	"github.com/boiko-school/nmt-backend/internal/validator"
)

// ExamHandler serves the participant-facing exam endpoints.
type ExamHandler struct {
	sessionService    *service.SessionService
	questionService   *service.QuestionService
	answerService     *service.AnswerService
	submissionService *service.SubmissionService
	submissionRepo    service.SubmissionStore
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(
	sessionService *service.SessionService,
	questionService *service.QuestionService,
	answerService *service.AnswerService,
	submissionService *service.SubmissionService,
	submissionRepo service.SubmissionStore,
) *ExamHandler {
	return &ExamHandler{
		sessionService:    sessionService,
		questionService:   questionService,
		answerService:     answerService,
		submissionService: submissionService,
		submissionRepo:    submissionRepo,
	}
}

// GetSession godoc
// GET /api/v1/exam/session
// Returns the shared session descriptor.
func (h *ExamHandler) GetSession(c *gin.Context) {
	d, err := h.sessionService.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// GetState godoc
// GET /api/v1/exam/state
// Returns the participant's resolved view: status, remaining seconds and
// whether they already submitted.
func (h *ExamHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	d, err := h.sessionService.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	submitted, err := h.submissionRepo.ExistsByParticipant(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, h.sessionService.GetParticipantState(d, submitted))
}

type paperQuery struct {
	Subject string `form:"subject" binding:"required,subject"`
}

// GetPaper godoc
// GET /api/v1/exam/paper?subject=...
// Returns the shuffled, answer-stripped paper for one subject. Only
// served while the session is running.
func (h *ExamHandler) GetPaper(c *gin.Context) {
	var q paperQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidSubject, fields)
		return
	}

	d, err := h.sessionService.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if d.Status != model.SessionStarted {
		response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
		return
	}

	paper, err := h.questionService.Paper(c.Request.Context(), model.Subject(q.Subject))
	if err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"subject":   q.Subject,
		"questions": paper,
	})
}

// Submit godoc
// POST /api/v1/exam/submit
// Grades the participant's mirrored answers. HTTP fallback for clients
// whose WebSocket dropped before they could submit.
func (h *ExamHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	answers, err := h.answerService.Load(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	p := &model.Participant{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
	submission, err := h.submissionService.Submit(c.Request.Context(), p, answers, false)
	if err != nil {
		if errors.Is(err, service.ErrAlreadySubmitted) {
			response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"score":          submission.Score,
		"auto_submitted": submission.AutoSubmitted,
	})
}
