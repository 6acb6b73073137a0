package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
)

type fileEntry struct {
	apply.QueueEntry
	Artifacts []string `json:"artifacts,omitempty"`
}

// FileStore is a JSON-file queue for local and dry-run use. The whole state
// lives in one file; a mutex guards the in-memory maps because Go maps are
// not thread-safe.
type FileStore struct {
	mu       sync.Mutex
	filePath string
	entries  map[string]*fileEntry
	//dedup index over normalized URLs with a non-failed terminal status
	terminal mapset.Set[string]
}

// NewFileStore creates or loads the queue file under dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create queue directory: %w", err)
	}
	fs := &FileStore{
		filePath: filepath.Join(dir, "queue.json"),
		entries:  make(map[string]*fileEntry),
		terminal: mapset.NewSet[string](),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not read queue file: %w", err)
	}
	var entries []*fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("could not parse queue file: %w", err)
	}
	for _, e := range entries {
		fs.entries[e.ID] = e
		if e.Status.Terminal() && !e.Status.Failed() {
			fs.terminal.Add(e.NormalizedURL)
		}
	}
	log.Printf("📋 Loaded %d queue entries from %s", len(entries), fs.filePath)
	return nil
}

// save persists the current state. Called with fs.mu held.
func (fs *FileStore) save() {
	entries := make([]*fileEntry, 0, len(fs.entries))
	for _, e := range fs.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Printf("⚠️ Failed to marshal queue: %v", err)
		return
	}
	if err := os.WriteFile(fs.filePath, data, 0644); err != nil {
		log.Printf("⚠️ Failed to write queue file: %v", err)
	}
}

func (fs *FileStore) Enqueue(_ context.Context, entry *apply.QueueEntry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if entry.NormalizedURL == "" {
		entry.NormalizedURL = apply.NormalizeURL(entry.URL)
	}
	if fs.terminal.Contains(entry.NormalizedURL) {
		return ErrDuplicate
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.Status = apply.StatusQueued
	entry.CreatedAt = now
	entry.UpdatedAt = now

	copied := *entry
	fs.entries[entry.ID] = &fileEntry{QueueEntry: copied}
	fs.save()
	return nil
}

func (fs *FileStore) ClaimNext(_ context.Context, platform apply.Platform) (*apply.QueueEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var oldest *fileEntry
	for _, e := range fs.entries {
		if e.Platform != platform || e.Status != apply.StatusQueued {
			continue
		}
		if oldest == nil || e.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e
		}
	}
	if oldest == nil {
		return nil, nil
	}
	oldest.Status = apply.StatusRunning
	oldest.UpdatedAt = time.Now().UTC()
	fs.save()

	claimed := oldest.QueueEntry
	return &claimed, nil
}

func (fs *FileStore) RecordStatus(_ context.Context, id string, status apply.AttemptStatus, artifacts []string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	e, ok := fs.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !e.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, e.Status, status)
	}
	e.Status = status
	e.Artifacts = append(e.Artifacts, artifacts...)
	e.UpdatedAt = time.Now().UTC()
	if status.Terminal() && !status.Failed() {
		fs.terminal.Add(e.NormalizedURL)
	}
	fs.save()
	return nil
}

func (fs *FileStore) IsDuplicate(_ context.Context, normalizedURL string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.terminal.Contains(normalizedURL), nil
}
