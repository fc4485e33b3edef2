package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"ragstack/models"
)

// WatchService keeps a local directory in sync with an index. New and
// modified files run through the same chunk-build and embedding pipeline as
// the ingest API; removed files have their chunks deleted.
type WatchService struct {
	rag            RAGService
	indexName      string
	vectorDatabase models.VectorDatabaseConfig
	encoderKind    models.EncoderKind

	mu     sync.Mutex
	hashes map[string]string
	loaded bool
}

func NewWatchService(rag RAGService, indexName string, vectorDatabase models.VectorDatabaseConfig, encoderKind models.EncoderKind) *WatchService {
	return &WatchService{
		rag:            rag,
		indexName:      indexName,
		vectorDatabase: vectorDatabase,
		encoderKind:    encoderKind,
		hashes:         map[string]string{},
	}
}

// WatchDirectory starts a long-running process to watch for file changes in
// real time. It blocks until the context is cancelled.
func (s *WatchService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if _, supported := models.FileTypeForPath(event.Name); !supported {
					continue
				}

				// Many editors write by creating a temp file and renaming, which
				// can fire multiple events; Create and Write are handled the same.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Re-indexing...", event.Name)
					s.removeFile(ctx, event.Name)
					if err := s.indexFile(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to process file %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
					s.removeFile(ctx, event.Name)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}

// ScanAndIndexDirectory syncs the directory with the index once: new and
// changed files are indexed, files still in the index but no longer on disk
// are removed. Known hashes are rebuilt from stored chunk metadata first, so
// a restart does not re-index unchanged files.
func (s *WatchService) ScanAndIndexDirectory(ctx context.Context, dirPath string) {
	log.Printf("WATCHER: Starting directory scan for: %s", dirPath)
	s.loadIndexState(ctx)

	localFiles := map[string]bool{}
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if _, supported := models.FileTypeForPath(path); !supported {
			return nil
		}
		localFiles[path] = true

		hash, err := hashFile(path)
		if err != nil {
			log.Printf("WATCHER WARN: Could not hash file %s: %v", path, err)
			return nil
		}
		s.mu.Lock()
		known := s.hashes[path]
		s.mu.Unlock()
		if known == hash {
			return nil
		}
		if known != "" {
			log.Printf("WATCHER: File has changed: %s. Re-indexing...", path)
			s.removeFile(ctx, path)
		}
		if err := s.indexFile(ctx, path); err != nil {
			log.Printf("WATCHER ERROR: Failed to process file %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("WATCHER ERROR: Error walking the path %s: %v", dirPath, err)
	}

	s.mu.Lock()
	var stale []string
	for path := range s.hashes {
		if !localFiles[path] {
			stale = append(stale, path)
		}
	}
	s.mu.Unlock()
	for _, path := range stale {
		log.Printf("WATCHER: File deleted: %s. Removing from index...", path)
		s.removeFile(ctx, path)
	}
	log.Println("WATCHER: Directory scan finished.")
}

// loadIndexState seeds the hash map from the store's chunk metadata. Runs
// once; later scans keep the in-memory view.
func (s *WatchService) loadIndexState(ctx context.Context) {
	s.mu.Lock()
	loaded := s.loaded
	s.loaded = true
	s.mu.Unlock()
	if loaded {
		return
	}

	hashes, err := s.rag.SourceHashes(ctx, s.indexName, s.vectorDatabase, s.encoderKind)
	if err != nil {
		log.Printf("WATCHER WARN: Could not load index state, starting empty: %v", err)
		return
	}
	s.mu.Lock()
	for path, hash := range hashes {
		s.hashes[path] = hash
	}
	s.mu.Unlock()
	log.Printf("WATCHER: Loaded index state for %d files.", len(hashes))
}

func (s *WatchService) indexFile(ctx context.Context, path string) error {
	fileType, ok := models.FileTypeForPath(path)
	if !ok {
		return nil
	}
	hash, err := hashFile(path)
	if err != nil {
		return err
	}

	_, err = s.rag.Ingest(ctx, models.IngestRequest{
		Files: []models.File{{
			URL:      path,
			Type:     fileType,
			Metadata: map[string]any{"file_hash": hash},
		}},
		IndexName:      s.indexName,
		VectorDatabase: s.vectorDatabase,
		EncoderKind:    s.encoderKind,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.hashes[path] = hash
	s.mu.Unlock()
	return nil
}

func (s *WatchService) removeFile(ctx context.Context, path string) {
	_, err := s.rag.Delete(ctx, models.DeleteRequest{
		FileURL:        path,
		IndexName:      s.indexName,
		VectorDatabase: s.vectorDatabase,
		EncoderKind:    s.encoderKind,
	})
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", path, err)
		return
	}
	s.mu.Lock()
	delete(s.hashes, path)
	s.mu.Unlock()
}

func hashFile(path string) (string, error) {
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
