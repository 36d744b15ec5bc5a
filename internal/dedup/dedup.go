package dedup

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type seenEntry struct {
	Key       string `json:"key"`
	Timestamp int64  `json:"timestamp"`
}

// ListingCache remembers which listings were already handled, keyed by
// JobListing.DedupKey() (source + external id). Re-scraping the same
// external id therefore never produces a duplicate listing downstream.
type ListingCache struct {
	mu       sync.Mutex
	filePath string
	seen     map[string]int64
}

const thirtyDaysMs = int64(30 * 24 * 60 * 60 * 1000)

// NewListingCache creates or loads a listing cache
func NewListingCache(cacheDir string) *ListingCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create cache directory: %v", err)
	}
	path := filepath.Join(cacheDir, "seen_listings.json")
	cache := &ListingCache{
		filePath: path,
		seen:     make(map[string]int64),
	}
	cache.load()
	return cache
}

// IsSeen checks if a dedup key has already been processed
func (lc *ListingCache) IsSeen(key string) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	_, exists := lc.seen[key]
	return exists
}

func (lc *ListingCache) Add(keys []string) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	now := time.Now().UnixMilli()
	changed := false
	for _, key := range keys {
		if _, exists := lc.seen[key]; !exists {
			lc.seen[key] = now
			changed = true
		}
	}

	if changed {
		lc.save()
	}
}

// load reads the cache from disk, dropping entries older than 30 days
func (lc *ListingCache) load() {
	data, err := os.ReadFile(lc.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to read seen_listings.json: %v", err)
		}
		return
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("⚠️ Failed to parse seen_listings.json: %v", err)
		return
	}

	thirtyDaysAgo := time.Now().UnixMilli() - thirtyDaysMs
	loaded := 0
	for _, e := range entries {
		if e.Timestamp > thirtyDaysAgo {
			lc.seen[e.Key] = e.Timestamp
			loaded++
		}
	}
	log.Printf("📋 Loaded %d previously seen listings (%d expired and removed)", loaded, len(entries)-loaded)
}

// save writes the current cache to disk
func (lc *ListingCache) save() {
	entries := make([]seenEntry, 0, len(lc.seen))
	for key, ts := range lc.seen {
		entries = append(entries, seenEntry{Key: key, Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Printf("⚠️ Failed to marshal seen listings: %v", err)
		return
	}
	if err := os.WriteFile(lc.filePath, data, 0644); err != nil {
		log.Printf("⚠️ Failed to write seen_listings.json: %v", err)
	}
}
