package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/response"
	"github.com/boiko-school/nmt-backend/internal/service"
)

// ProctorHandler exposes the session controls to reviewers.
type ProctorHandler struct {
	sessionService *service.SessionService
}

// NewProctorHandler creates a new ProctorHandler.
func NewProctorHandler(sessionService *service.SessionService) *ProctorHandler {
	return &ProctorHandler{sessionService: sessionService}
}

// Get godoc
// GET /api/v1/proctor/session
func (h *ProctorHandler) Get(c *gin.Context) {
	d, err := h.sessionService.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// Start godoc
// POST /api/v1/proctor/session/start
func (h *ProctorHandler) Start(c *gin.Context) {
	h.control(c, h.sessionService.Start)
}

// Pause godoc
// POST /api/v1/proctor/session/pause
func (h *ProctorHandler) Pause(c *gin.Context) {
	h.control(c, h.sessionService.Pause)
}

// Resume godoc
// POST /api/v1/proctor/session/resume
func (h *ProctorHandler) Resume(c *gin.Context) {
	h.control(c, h.sessionService.Resume)
}

// Stop godoc
// POST /api/v1/proctor/session/stop
func (h *ProctorHandler) Stop(c *gin.Context) {
	h.control(c, h.sessionService.Stop)
}

func (h *ProctorHandler) control(c *gin.Context, action func(context.Context) (model.SessionDescriptor, error)) {
	d, err := action(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrInvalidTransition) {
			response.Fail(c, http.StatusConflict, response.ErrInvalidTransition)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, d)
}
