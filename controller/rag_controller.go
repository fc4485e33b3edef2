package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragstack/models"
	"ragstack/services"
)

// RAGController handles the HTTP requests for the ingestion and retrieval
// API. It stays thin: bind the payload, call the service, map the outcome to
// a status code.
type RAGController struct {
	ragService services.RAGService
}

// NewRAGController creates a new RAGController. Called from main.go to inject
// the service dependency.
func NewRAGController(service services.RAGService) *RAGController {
	return &RAGController{
		ragService: service,
	}
}

// Ingest is the Gin handler for the POST /api/v1/ingest endpoint.
func (c *RAGController) Ingest(ctx *gin.Context) {
	var req models.IngestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.ragService.Ingest(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, response)
}

// Query is the Gin handler for the POST /api/v1/query endpoint.
func (c *RAGController) Query(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	chunks, err := c.ragService.Query(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, models.QueryResponse{Success: true, Data: chunks})
}

// Delete is the Gin handler for the DELETE /api/v1/delete endpoint.
func (c *RAGController) Delete(ctx *gin.Context) {
	var req models.DeleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.ragService.Delete(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnsupportedBackend),
		errors.Is(err, models.ErrUnsupportedEncoder),
		errors.Is(err, models.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
