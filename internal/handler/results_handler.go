package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boiko-school/nmt-backend/internal/response"
	"github.com/boiko-school/nmt-backend/internal/service"
)

// ResultsHandler serves the reviewer results table.
type ResultsHandler struct {
	resultsService *service.ResultsService
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(resultsService *service.ResultsService) *ResultsHandler {
	return &ResultsHandler{resultsService: resultsService}
}

// List godoc
// GET /api/v1/review/results
// Returns every participant's aggregated outcome with scaled scores.
func (h *ResultsHandler) List(c *gin.Context) {
	results, err := h.resultsService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}
