package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github/itish2003/invoicechat/models"
	"github/itish2003/invoicechat/services"
)

const (
	serviceName = "Invoice Chat API"
	version     = "1.0.0"
)

// AskController handles the HTTP requests for the chat API. It depends on the
// RAGService to perform the actual work.
type AskController struct {
	ragService services.RAGService
	log        logrus.FieldLogger
}

// NewAskController is called from the serve command to inject the service.
func NewAskController(service services.RAGService, log logrus.FieldLogger) *AskController {
	return &AskController{
		ragService: service,
		log:        log.WithField("component", "controller"),
	}
}

// Ask is the Gin handler for POST /ask. Failures are reported as
// {"error": "..."}; the chat widget renders those as an undefined reply.
func (c *AskController) Ask(ctx *gin.Context) {
	var req models.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: services.ErrEmptyQuestion.Error()})
		return
	}

	response, err := c.ragService.Ask(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuestion) {
			ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.log.WithError(err).Error("Failed to answer question")
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// IngestDocument is the Gin handler for POST /api/v1/documents.
func (c *AskController) IngestDocument(ctx *gin.Context) {
	var req models.IngestDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "text is required"})
		return
	}

	chunks, err := c.ragService.IngestDocument(ctx.Request.Context(), req)
	if err != nil {
		c.log.WithError(err).Error("Failed to ingest document")
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to ingest document"})
		return
	}

	ctx.JSON(http.StatusCreated, models.IngestDocumentResponse{Message: "Document ingested successfully", Chunks: chunks})
}

// ListDocuments is the Gin handler for GET /api/v1/documents.
func (c *AskController) ListDocuments(ctx *gin.Context) {
	response, err := c.ragService.ListDocuments(ctx.Request.Context())
	if err != nil {
		c.log.WithError(err).Error("Failed to list documents")
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to retrieve documents"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// Health reports the service status and how many chunks are indexed.
func (c *AskController) Health(ctx *gin.Context) {
	chunks, err := c.ragService.CountChunks(ctx.Request.Context())
	if err != nil {
		c.log.WithError(err).Warn("Health check could not reach the document store")
		ctx.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "degraded", Service: serviceName, Version: version})
		return
	}
	ctx.JSON(http.StatusOK, models.HealthResponse{Status: "healthy", Service: serviceName, Version: version, Chunks: chunks})
}

// Index renders the browser chat page.
func (c *AskController) Index(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "index.html", gin.H{"Title": "Invoice Assistant"})
}
