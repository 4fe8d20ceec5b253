package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FileIndexingService keeps the document store in sync with the invoice files
// on disk: it scans, chunks, embeds and watches them.
type FileIndexingService struct {
	store        DocumentStore
	embedder     Embedder
	extractor    *TextExtractor
	chunkSize    int
	chunkOverlap int
	log          logrus.FieldLogger
}

// NewFileIndexingService creates a new indexing service.
func NewFileIndexingService(store DocumentStore, embedder Embedder, extractor *TextExtractor, chunkSize, chunkOverlap int, log logrus.FieldLogger) *FileIndexingService {
	return &FileIndexingService{
		store:        store,
		embedder:     embedder,
		extractor:    extractor,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		log:          log.WithField("component", "indexer"),
	}
}

// IndexState holds the current hash of a file in our index.
type IndexState struct {
	Hash string
}

// ScanStats summarizes one ScanAndIndex run.
type ScanStats struct {
	Indexed   int
	Unchanged int
	Removed   int
	Failed    int
}

// ScanAndIndex syncs the store with path, which may be a single file or a
// directory walked recursively. Unchanged files are skipped, changed files
// re-indexed, and files no longer present removed.
func (s *FileIndexingService) ScanAndIndex(ctx context.Context, path string) (ScanStats, error) {
	var stats ScanStats
	root, err := filepath.Abs(path)
	if err != nil {
		return stats, fmt.Errorf("could not resolve %s: %w", path, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return stats, fmt.Errorf("could not stat %s: %w", root, err)
	}
	s.log.WithField("path", root).Info("Starting document scan")

	indexedFiles, err := s.getCurrentIndexState(ctx)
	if err != nil {
		return stats, fmt.Errorf("could not get current index state: %w", err)
	}
	s.log.Infof("Found %d files currently in the index.", len(indexedFiles))

	localFiles := make(map[string]bool)
	visit := func(file string) {
		localFiles[file] = true
		hash, err := calculateFileHash(file)
		if err != nil {
			s.log.WithError(err).WithField("file", file).Warn("Could not hash file")
			stats.Failed++
			return
		}

		if state, ok := indexedFiles[file]; ok {
			if state.Hash == hash {
				stats.Unchanged++
				return
			}
			s.log.WithField("file", file).Info("File has changed, re-indexing")
			if err := s.store.DeleteBySourceFile(ctx, file); err != nil {
				s.log.WithError(err).WithField("file", file).Error("Failed to delete old version")
				stats.Failed++
				return
			}
		}

		if err := s.processAndEmbedFile(ctx, file, hash); err != nil {
			s.log.WithError(err).WithField("file", file).Error("Failed to process file")
			stats.Failed++
			return
		}
		stats.Indexed++
	}

	if info.IsDir() {
		err = filepath.Walk(root, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && SupportedFile(p) {
				visit(p)
			}
			return ctx.Err()
		})
		if err != nil {
			return stats, fmt.Errorf("error walking %s: %w", root, err)
		}
	} else {
		visit(root)
	}

	// Handle deletions, limited to files under the scanned path.
	for file := range indexedFiles {
		if localFiles[file] || !within(root, file) {
			continue
		}
		s.log.WithField("file", file).Info("File deleted, removing from index")
		if err := s.store.DeleteBySourceFile(ctx, file); err != nil {
			s.log.WithError(err).WithField("file", file).Error("Failed to delete records")
			stats.Failed++
			continue
		}
		stats.Removed++
	}

	s.log.WithFields(logrus.Fields{
		"indexed":   stats.Indexed,
		"unchanged": stats.Unchanged,
		"removed":   stats.Removed,
		"failed":    stats.Failed,
	}).Info("Document scan finished")
	return stats, nil
}

// Watch re-indexes files under path as they change until ctx is cancelled.
// Directories are watched recursively, including ones created later. For a
// single file its directory is watched and other files are ignored.
func (s *FileIndexingService) Watch(ctx context.Context, path string) error {
	root, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	dir, only := root, ""
	if !info.IsDir() {
		dir, only = filepath.Dir(root), root
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if only != "" {
		err = watcher.Add(dir)
	} else {
		err = addWatchTree(watcher, dir)
	}
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	s.log.WithField("path", dir).Info("Watching for document changes")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case only != "":
				if event.Name == only {
					s.handleEvent(ctx, event)
				}
			case SupportedFile(event.Name):
				s.handleEvent(ctx, event)
			default:
				s.handleDirEvent(ctx, watcher, event)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.WithError(err).Error("Watcher error")

		case <-ctx.Done():
			s.log.Info("Context cancelled, shutting down watcher.")
			return nil
		}
	}
}

func (s *FileIndexingService) handleEvent(ctx context.Context, event fsnotify.Event) {
	log := s.log.WithFields(logrus.Fields{"file": event.Name, "op": event.Op.String()})

	// Editors often write through a temp file and rename, so Create and
	// Write are handled alike.
	switch {
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		hash, err := calculateFileHash(event.Name)
		if err != nil {
			log.WithError(err).Warn("Could not hash file")
			return
		}
		if err := s.store.DeleteBySourceFile(ctx, event.Name); err != nil {
			log.WithError(err).Error("Failed to delete old version")
			return
		}
		if err := s.processAndEmbedFile(ctx, event.Name, hash); err != nil {
			log.WithError(err).Error("Failed to process file")
			return
		}
		log.Info("Re-indexed file")

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if err := s.store.DeleteBySourceFile(ctx, event.Name); err != nil {
			log.WithError(err).Error("Failed to delete records")
			return
		}
		log.Info("Removed file from index")
	}
}

// handleDirEvent starts watching and indexing new directories and drops the
// files of removed ones, whose contents get no events of their own.
func (s *FileIndexingService) handleDirEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	log := s.log.WithFields(logrus.Fields{"path": event.Name, "op": event.Op.String()})

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil || !info.IsDir() {
			return
		}
		if err := addWatchTree(watcher, event.Name); err != nil {
			log.WithError(err).Error("Failed to watch new directory")
			return
		}
		if _, err := s.ScanAndIndex(ctx, event.Name); err != nil {
			log.WithError(err).Error("Failed to index new directory")
		}

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		indexed, err := s.getCurrentIndexState(ctx)
		if err != nil {
			log.WithError(err).Error("Could not get current index state")
			return
		}
		for file := range indexed {
			if file == event.Name || !within(event.Name, file) {
				continue
			}
			if err := s.store.DeleteBySourceFile(ctx, file); err != nil {
				log.WithError(err).WithField("file", file).Error("Failed to delete records")
				continue
			}
			log.WithField("file", file).Info("Removed file from index")
		}
	}
}

// processAndEmbedFile stores every chunk of the file or none of them. A file
// left half indexed would carry its current hash and be skipped as unchanged
// by every later scan.
func (s *FileIndexingService) processAndEmbedFile(ctx context.Context, path, hash string) error {
	content, err := s.extractor.ExtractTextFromFile(path)
	if err != nil {
		return err
	}

	texts, err := SplitText(content, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return err
	}
	s.log.WithField("file", path).Infof("Split into %d chunks.", len(texts))

	chunks := make([]Chunk, 0, len(texts))
	for i, text := range texts {
		embedding, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("could not embed chunk %d of %s: %w", i, path, err)
		}
		chunks = append(chunks, Chunk{
			ID:        fmt.Sprintf("%s-chunk%d", uuid.New().String(), i),
			Text:      text,
			Embedding: embedding,
			Source:    path,
			FileHash:  hash,
			Index:     i,
		})
	}

	for _, chunk := range chunks {
		if err := s.store.AddChunk(ctx, chunk); err != nil {
			if delErr := s.store.DeleteBySourceFile(ctx, path); delErr != nil {
				s.log.WithError(delErr).WithField("file", path).Error("Failed to roll back partial index")
			}
			return err
		}
	}
	return nil
}

func (s *FileIndexingService) getCurrentIndexState(ctx context.Context) (map[string]IndexState, error) {
	state := make(map[string]IndexState)
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		path, ok := doc.Metadata[MetaSourceFile].(string)
		if !ok {
			continue
		}
		hash, ok := doc.Metadata[MetaFileHash].(string)
		if !ok {
			continue
		}
		if _, exists := state[path]; !exists {
			state[path] = IndexState{Hash: hash}
		}
	}
	return state, nil
}

func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
}

func within(root, path string) bool {
	if root == path {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
