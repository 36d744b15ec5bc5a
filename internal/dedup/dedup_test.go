package dedup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingCache_AddAndIsSeen(t *testing.T) {
	cache := NewListingCache(t.TempDir())

	assert.False(t, cache.IsSeen("naukri:111"))

	cache.Add([]string{"naukri:111", "naukri:222"})

	assert.True(t, cache.IsSeen("naukri:111"))
	assert.True(t, cache.IsSeen("naukri:222"))
	assert.False(t, cache.IsSeen("naukri:333"))
}

func TestListingCache_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := NewListingCache(dir)
	first.Add([]string{"naukri:111"})

	second := NewListingCache(dir)
	assert.True(t, second.IsSeen("naukri:111"))
}

func TestListingCache_ExpiresOldEntriesOnLoad(t *testing.T) {
	dir := t.TempDir()
	now := time.Now().UnixMilli()

	entries := []seenEntry{
		{Key: "naukri:fresh", Timestamp: now - 24*60*60*1000},
		{Key: "naukri:stale", Timestamp: now - 31*24*60*60*1000},
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seen_listings.json"), data, 0644))

	cache := NewListingCache(dir)

	assert.True(t, cache.IsSeen("naukri:fresh"))
	assert.False(t, cache.IsSeen("naukri:stale"), "entries over 30 days old are dropped")
}

func TestListingCache_SurvivesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seen_listings.json"), []byte("{not json"), 0644))

	cache := NewListingCache(dir)

	assert.False(t, cache.IsSeen("naukri:111"))
	cache.Add([]string{"naukri:111"})
	assert.True(t, cache.IsSeen("naukri:111"))
}

func TestListingCache_AddIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cache := NewListingCache(dir)

	cache.Add([]string{"naukri:111"})
	cache.Add([]string{"naukri:111"})

	data, err := os.ReadFile(filepath.Join(dir, "seen_listings.json"))
	require.NoError(t, err)

	var entries []seenEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 1)
}
