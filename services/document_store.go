package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github/itish2003/invoicechat/models"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/sirupsen/logrus"
)

// Metadata keys written on every chunk.
const (
	MetaSourceFile = "source_file"
	MetaFileHash   = "file_hash"
	MetaChunkNum   = "chunk_num"
	MetaSource     = "source"
	MetaIngestID   = "ingest_id"
)

// Chunk is a piece of a document ready to be stored.
type Chunk struct {
	ID        string
	Text      string
	Embedding []float32
	Source    string // file path or ingestion origin
	FileHash  string // empty for text ingested over the API
	IngestID  string // groups the chunks of one ingested text
	Index     int
}

// DocumentStore persists embedded chunks and answers similarity queries.
type DocumentStore interface {
	AddChunk(ctx context.Context, chunk Chunk) error
	Query(ctx context.Context, embedding []float32, nResults int) ([]models.SourceDocument, error)
	List(ctx context.Context) ([]models.Document, error)
	DeleteBySourceFile(ctx context.Context, path string) error
	DeleteByIngestID(ctx context.Context, ingestID string) error
	Count(ctx context.Context) (int, error)
}

type chromaStore struct {
	collection chromago.Collection
	log        logrus.FieldLogger
}

// NewChromaStore wraps a chroma collection.
func NewChromaStore(collection chromago.Collection, log logrus.FieldLogger) DocumentStore {
	return &chromaStore{
		collection: collection,
		log:        log.WithField("component", "store"),
	}
}

// GetOrCreateCollection opens the named collection on the chroma server.
func GetOrCreateCollection(ctx context.Context, client chromago.Client, name string) (chromago.Collection, error) {
	collection, err := client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Invoice chat collection"),
				chromago.NewStringAttribute("created_by", "invoicechat"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %q: %w", name, err)
	}
	return collection, nil
}

func (s *chromaStore) AddChunk(ctx context.Context, chunk Chunk) error {
	attrs := []*chromago.MetaAttribute{
		chromago.NewIntAttribute(MetaChunkNum, int64(chunk.Index)),
	}
	if chunk.FileHash != "" {
		attrs = append(attrs,
			chromago.NewStringAttribute(MetaSourceFile, chunk.Source),
			chromago.NewStringAttribute(MetaFileHash, chunk.FileHash),
		)
	} else {
		attrs = append(attrs, chromago.NewStringAttribute(MetaSource, chunk.Source))
	}
	if chunk.IngestID != "" {
		attrs = append(attrs, chromago.NewStringAttribute(MetaIngestID, chunk.IngestID))
	}

	err := s.collection.Add(ctx,
		chromago.WithIDs(chromago.DocumentID(chunk.ID)),
		chromago.WithTexts(chunk.Text),
		chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(chunk.Embedding)),
		chromago.WithMetadatas(chromago.NewDocumentMetadata(attrs...)),
	)
	if err != nil {
		return fmt.Errorf("failed to add chunk %s to chromadb: %w", chunk.ID, err)
	}
	return nil
}

func (s *chromaStore) Query(ctx context.Context, embedding []float32, nResults int) ([]models.SourceDocument, error) {
	results, err := s.collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(nResults),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	var documents []models.SourceDocument
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	if len(documentGroups) == 0 {
		return documents, nil
	}

	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		var metadata map[string]interface{}
		if len(metadataGroups) > 0 && len(metadataGroups[0]) > i {
			metadata = s.metadataToMap(metadataGroups[0][i])
		}
		documents = append(documents, models.SourceDocument{
			Text:     doc.ContentString(),
			Metadata: metadata,
		})
	}
	return documents, nil
}

func (s *chromaStore) List(ctx context.Context) ([]models.Document, error) {
	results, err := s.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from chromadb: %w", err)
	}

	ids := results.GetIDs()
	texts := results.GetDocuments()
	metadatas := results.GetMetadatas()

	documents := make([]models.Document, 0, len(ids))
	for i := range ids {
		doc := models.Document{ID: string(ids[i])}
		if len(texts) > i {
			doc.Text = texts[i].ContentString()
		}
		if len(metadatas) > i {
			doc.Metadata = s.metadataToMap(metadatas[i])
		}
		documents = append(documents, doc)
	}
	return documents, nil
}

func (s *chromaStore) DeleteBySourceFile(ctx context.Context, path string) error {
	where := chromago.EqString(MetaSourceFile, path)
	if err := s.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete chunks of %s: %w", path, err)
	}
	return nil
}

func (s *chromaStore) DeleteByIngestID(ctx context.Context, ingestID string) error {
	where := chromago.EqString(MetaIngestID, ingestID)
	if err := s.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to delete ingested chunks %s: %w", ingestID, err)
	}
	return nil
}

func (s *chromaStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

// metadataToMap converts chroma metadata through its JSON form; the metadata
// type exposes no accessor for the whole attribute set.
func (s *chromaStore) metadataToMap(metadata chromago.DocumentMetadata) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		s.log.WithError(err).Warn("could not marshal chunk metadata")
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &out); err != nil {
		s.log.WithError(err).Warn("could not unmarshal chunk metadata")
		return map[string]interface{}{}
	}
	return out
}
