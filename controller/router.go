package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github/itish2003/invoicechat/web"
)

// NewRouter wires the middleware and every route of the API.
func NewRouter(askController *AskController, log logrus.FieldLogger) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), CORS())

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	router.SetHTMLTemplate(templates)
	router.StaticFS("/static", web.Static())

	router.GET("/", askController.Index)
	router.GET("/health", askController.Health)
	router.POST("/ask", askController.Ask)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/documents", askController.IngestDocument)
		apiV1.GET("/documents", askController.ListDocuments)
	}

	return router, nil
}

// CORS allows the API to be called from pages served elsewhere.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestLogger logs one line per request through logrus.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	log = log.WithField("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}
