package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github/itish2003/invoicechat/cache"
	"github/itish2003/invoicechat/config"
	"github/itish2003/invoicechat/controller"
	"github/itish2003/invoicechat/logging"
	"github/itish2003/invoicechat/services"
)

const shutdownTimeout = 10 * time.Second

var servePort string

func GetServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Index the invoice documents and serve the chat backend",
		Long: `Indexes DOCUMENT_PATH into the Chroma collection, then serves the web chat
and the JSON API:

  POST /ask                 {"question": "..."} -> {"response": "..."}
  GET  /health
  POST /api/v1/documents    ingest raw text
  GET  /api/v1/documents    list stored chunks`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (defaults to PORT)")
	return serveCmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		return fmt.Errorf("failed to create chroma client: %w", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.WithError(err).Warn("Failed to close chroma client")
		}
	}()

	collection, err := services.GetOrCreateCollection(ctx, chromaClient, cfg.ChromaCollection)
	if err != nil {
		return err
	}
	store := services.NewChromaStore(collection, log)

	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Info("Successfully connected to Google Gemini.")

	embedder := newEmbedder(cfg, geminiClient)
	log.WithField("provider", cfg.EmbeddingProvider).Info("Embedding provider selected")

	answerCache := newAnswerCache(cfg, log)
	defer answerCache.Close()

	ragService := services.NewRAGService(
		store,
		embedder,
		services.NewGeminiGenerator(geminiClient, cfg.GeminiModel, cfg.GeminiTemperature, log),
		answerCache,
		services.RAGOptions{
			TopK:         cfg.RetrievalTopK,
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
		},
		log,
	)

	indexer := services.NewFileIndexingService(
		store,
		embedder,
		services.NewTextExtractor(cfg.UnidocLicenseKey, log),
		cfg.ChunkSize,
		cfg.ChunkOverlap,
		log,
	)
	if _, err := indexer.ScanAndIndex(ctx, cfg.DocumentPath); err != nil {
		// The server still answers from whatever is already in the collection.
		log.WithError(err).Error("Initial document scan failed")
	}
	if cfg.WatchDocuments {
		go func() {
			if err := indexer.Watch(ctx, cfg.DocumentPath); err != nil {
				log.WithError(err).Error("Document watcher stopped")
			}
		}()
	}

	router, err := controller.NewRouter(controller.NewAskController(ragService, log), log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Invoice chat server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newEmbedder(cfg *config.Config, geminiClient *genai.Client) services.Embedder {
	if cfg.EmbeddingProvider == config.EmbeddingProviderGemini {
		return services.NewGeminiEmbedder(geminiClient, cfg.GeminiEmbedModel)
	}
	return services.NewOllamaEmbedder(&http.Client{Timeout: 30 * time.Second}, cfg.OllamaURL, cfg.OllamaEmbedModel)
}

// newAnswerCache connects to redis when REDIS_URL is set. A redis that cannot
// be reached disables caching instead of failing startup.
func newAnswerCache(cfg *config.Config, log logrus.FieldLogger) cache.AnswerCache {
	if cfg.RedisURL == "" {
		return cache.Noop{}
	}
	answerCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		log.WithError(err).Warn("Answer cache disabled")
		return cache.Noop{}
	}
	log.WithField("ttl", cfg.CacheTTL).Info("Answer cache enabled")
	return answerCache
}
