package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github/itish2003/invoicechat/models"
)

// memoryStore is a DocumentStore kept in a map; Query returns chunks in
// insertion order.
type memoryStore struct {
	mu     sync.Mutex
	chunks []Chunk
	adds   int
	failAt int // AddChunk call that fails, 1-based; 0 never fails
}

func (m *memoryStore) AddChunk(_ context.Context, chunk Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adds++
	if m.adds == m.failAt {
		return errBoom
	}
	m.chunks = append(m.chunks, chunk)
	return nil
}

func (m *memoryStore) Query(_ context.Context, _ []float32, nResults int) ([]models.SourceDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs []models.SourceDocument
	for _, c := range m.chunks {
		if len(docs) == nResults {
			break
		}
		docs = append(docs, models.SourceDocument{Text: c.Text, Metadata: chunkMetadata(c)})
	}
	return docs, nil
}

func (m *memoryStore) List(context.Context) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := make([]models.Document, 0, len(m.chunks))
	for _, c := range m.chunks {
		docs = append(docs, models.Document{ID: c.ID, Text: c.Text, Metadata: chunkMetadata(c)})
	}
	return docs, nil
}

func (m *memoryStore) DeleteBySourceFile(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.FileHash != "" && c.Source == path {
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept
	return nil
}

func (m *memoryStore) DeleteByIngestID(_ context.Context, ingestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.IngestID == ingestID {
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept
	return nil
}

func (m *memoryStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks), nil
}

func (m *memoryStore) sources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, c := range m.chunks {
		if !seen[c.Source] {
			seen[c.Source] = true
			out = append(out, c.Source)
		}
	}
	sort.Strings(out)
	return out
}

func chunkMetadata(c Chunk) map[string]interface{} {
	meta := map[string]interface{}{MetaChunkNum: float64(c.Index)}
	if c.FileHash != "" {
		meta[MetaSourceFile] = c.Source
		meta[MetaFileHash] = c.FileHash
	} else {
		meta[MetaSource] = c.Source
	}
	if c.IngestID != "" {
		meta[MetaIngestID] = c.IngestID
	}
	return meta
}

type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	err    error
	failAt int // call that fails, 1-based; 0 never fails
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls == f.failAt {
		return nil, errBoom
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeGenerator struct {
	answer  string
	err     error
	calls   int
	prompt  string
	history []models.HistoryMessage
	tools   ToolExecutor
}

func (f *fakeGenerator) GenerateAnswer(_ context.Context, prompt string, history []models.HistoryMessage, tools ToolExecutor) (string, error) {
	f.calls++
	f.prompt, f.history, f.tools = prompt, history, tools
	return f.answer, f.err
}

// mapCache is an in-memory cache.AnswerCache.
type mapCache struct {
	entries map[string]string
	getErr  error
}

func newMapCache() *mapCache { return &mapCache{entries: map[string]string{}} }

func (c *mapCache) Get(_ context.Context, q string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	a, ok := c.entries[q]
	return a, ok, nil
}

func (c *mapCache) Set(_ context.Context, q, a string) error {
	c.entries[q] = a
	return nil
}

func (c *mapCache) Close() error { return nil }

var errBoom = errors.New("boom")
