package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github/itish2003/invoicechat/cache"
	"github/itish2003/invoicechat/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/textsplitter"
)

// ErrEmptyQuestion is returned when Ask receives a blank question.
var ErrEmptyQuestion = errors.New("question is required")

// RAGService answers questions about the indexed invoices.
type RAGService interface {
	Ask(c context.Context, req models.AskRequest) (*models.AskResponse, error)
	IngestDocument(c context.Context, req models.IngestDocumentRequest) (int, error)
	ListDocuments(c context.Context) (*models.ListDocumentsResponse, error)
	CountChunks(c context.Context) (int, error)
}

// RAGOptions tunes retrieval and ingestion.
type RAGOptions struct {
	TopK         int
	ChunkSize    int
	ChunkOverlap int
}

// ragServiceImpl holds the dependencies it needs to do its job
type ragServiceImpl struct {
	store     DocumentStore
	embedder  Embedder
	generator AnswerGenerator
	cache     cache.AnswerCache
	opts      RAGOptions
	log       logrus.FieldLogger
}

// NewRAGService creates a new RAG service instance. A nil cache disables
// answer caching.
func NewRAGService(store DocumentStore, embedder Embedder, generator AnswerGenerator, answerCache cache.AnswerCache, opts RAGOptions, log logrus.FieldLogger) RAGService {
	if answerCache == nil {
		answerCache = cache.Noop{}
	}
	return &ragServiceImpl{
		store:     store,
		embedder:  embedder,
		generator: generator,
		cache:     answerCache,
		opts:      opts,
		log:       log.WithField("component", "service"),
	}
}

// Ask implements RAGService
func (r *ragServiceImpl) Ask(c context.Context, req models.AskRequest) (*models.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	log := r.log.WithFields(logrus.Fields{"question": question, "history": len(req.History)})
	log.Info("Answering question")

	// Answers depend on history, so only standalone questions are cached.
	cacheable := len(req.History) == 0
	if cacheable {
		answer, ok, err := r.cache.Get(c, question)
		if err != nil {
			log.WithError(err).Warn("answer cache lookup failed")
		} else if ok {
			log.Info("Serving cached answer")
			return &models.AskResponse{Response: answer}, nil
		}
	}

	contextDocs, err := r.retrieveDocuments(c, question, r.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve invoice context: %w", err)
	}

	answer, err := r.generator.GenerateAnswer(c, BuildQuestionPrompt(question, contextDocs), req.History, r)
	if err != nil {
		return nil, fmt.Errorf("could not generate response: %w", err)
	}

	if cacheable && answer != noAnswer {
		if err := r.cache.Set(c, question, answer); err != nil {
			log.WithError(err).Warn("answer cache store failed")
		}
	}
	return &models.AskResponse{Response: answer}, nil
}

// CallTool implements ToolExecutor for the functions in GetAllTools.
func (r *ragServiceImpl) CallTool(c context.Context, name string, args map[string]interface{}) map[string]interface{} {
	switch name {
	case toolRetrieveDocuments:
		query, ok := args["query"].(string)
		if !ok || strings.TrimSpace(query) == "" {
			return toolResult("Error: 'query' argument must be a non-empty string.")
		}
		docs, err := r.retrieveDocuments(c, query, r.opts.TopK)
		if err != nil {
			return toolResult(fmt.Sprintf("Error retrieving documents: %v", err))
		}
		jsonBytes, err := json.Marshal(docs)
		if err != nil {
			return toolResult("Error: Could not format the retrieved documents.")
		}
		return toolResult(string(jsonBytes))

	case toolLookupInvoiceTerm:
		term, ok := args["term"].(string)
		if !ok {
			return toolResult("Error: 'term' argument must be a string.")
		}
		definitions, found := LookupInvoiceTerm(term)
		if !found {
			return toolResult(fmt.Sprintf("No definition for %q. Known fields: %s", term, strings.Join(InvoiceTerms(), ", ")))
		}
		return map[string]interface{}{"result": definitions}

	default:
		return toolResult(fmt.Sprintf("Error: Unknown function '%s' requested.", name))
	}
}

func toolResult(text string) map[string]interface{} {
	return map[string]interface{}{"result": text}
}

// IngestDocument implements RAGService. The text is split like an indexed
// file and every chunk is stored with the given source label. On failure no
// chunk of the text is left in the store.
func (r *ragServiceImpl) IngestDocument(c context.Context, req models.IngestDocumentRequest) (int, error) {
	source := req.Source
	if source == "" {
		source = "user_input"
	}
	ingestID := uuid.New().String()
	log := r.log.WithFields(logrus.Fields{"source": source, "ingest_id": ingestID})
	log.WithField("bytes", len(req.Text)).Info("Ingesting document")

	texts, err := SplitText(req.Text, r.opts.ChunkSize, r.opts.ChunkOverlap)
	if err != nil {
		return 0, err
	}

	chunks := make([]Chunk, 0, len(texts))
	for i, text := range texts {
		embedding, err := r.embedder.Embed(c, text)
		if err != nil {
			return 0, fmt.Errorf("could not generate embedding for chunk %d: %w", i, err)
		}
		chunks = append(chunks, Chunk{
			ID:        uuid.New().String(),
			Text:      text,
			Embedding: embedding,
			Source:    source,
			IngestID:  ingestID,
			Index:     i,
		})
	}

	for _, chunk := range chunks {
		if err := r.store.AddChunk(c, chunk); err != nil {
			if delErr := r.store.DeleteByIngestID(c, ingestID); delErr != nil {
				log.WithError(delErr).Error("Failed to roll back partial ingest")
			}
			return 0, err
		}
	}
	return len(chunks), nil
}

// ListDocuments implements RAGService
func (r *ragServiceImpl) ListDocuments(c context.Context) (*models.ListDocumentsResponse, error) {
	docs, err := r.store.List(c)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return &models.ListDocumentsResponse{Count: len(docs), Documents: docs}, nil
}

// CountChunks implements RAGService
func (r *ragServiceImpl) CountChunks(c context.Context) (int, error) {
	return r.store.Count(c)
}

func (r *ragServiceImpl) retrieveDocuments(c context.Context, query string, nResults int) ([]models.SourceDocument, error) {
	queryEmbedding, err := r.embedder.Embed(c, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}
	docs, err := r.store.Query(c, queryEmbedding, nResults)
	if err != nil {
		return nil, err
	}
	r.log.WithField("documents", len(docs)).Debug("Retrieved documents")
	return docs, nil
}

// SplitText chunks text with the recursive character splitter used for
// indexed files as well.
func SplitText(text string, chunkSize, chunkOverlap int) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is empty")
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}
	return chunks, nil
}
