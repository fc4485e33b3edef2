package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragstack/models"
)

func newTestWatchService(store *fakeStore, downloads map[string][]byte) *WatchService {
	svc := newTestRAGService(store, nil)
	svc.chunkBuilder = NewChunkBuilder(&fakeDownloader{files: downloads}, NewFilePartitioner())
	return NewWatchService(svc, "local-files", testVectorDatabase(), models.EncoderOllama)
}

func TestScanSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))
	hash, err := hashFile(path)
	require.NoError(t, err)

	// The store already holds this file at its current hash, as after a
	// restart. The scan must neither delete nor re-index it.
	store := &fakeStore{sourceHashes: map[string]string{path: hash}}
	watcher := newTestWatchService(store, nil)
	watcher.ScanAndIndexDirectory(context.Background(), dir)

	assert.Equal(t, 0, store.upsertCount())
	assert.Equal(t, 0, store.deleteCalls)
}

func TestScanReindexesChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := []byte("fresh content after the edit")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	store := &fakeStore{sourceHashes: map[string]string{path: "stale-hash"}}
	watcher := newTestWatchService(store, map[string][]byte{path: content})
	watcher.ScanAndIndexDirectory(context.Background(), dir)

	// Stale chunks are removed first, then the new version is committed.
	assert.Equal(t, 1, store.deleteCalls)
	require.Equal(t, 1, store.upsertCount())

	// Every committed chunk carries the current content hash, so the next
	// restart can rebuild the scan state from the store.
	hash, err := hashFile(path)
	require.NoError(t, err)
	for _, record := range store.upserts[0] {
		assert.Equal(t, hash, record.Metadata["file_hash"])
	}
}

func TestScanRemovesFilesGoneFromDisk(t *testing.T) {
	dir := t.TempDir()

	store := &fakeStore{sourceHashes: map[string]string{filepath.Join(dir, "gone.txt"): "old-hash"}}
	watcher := newTestWatchService(store, nil)
	watcher.ScanAndIndexDirectory(context.Background(), dir)

	assert.Equal(t, 1, store.deleteCalls)
	assert.Equal(t, 0, store.upsertCount())
}

func TestScanIndexesUppercaseExtensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.TXT")
	content := []byte("shouting file names still count")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	store := &fakeStore{}
	watcher := newTestWatchService(store, map[string][]byte{path: content})
	watcher.ScanAndIndexDirectory(context.Background(), dir)

	assert.Equal(t, 1, store.upsertCount())
}
