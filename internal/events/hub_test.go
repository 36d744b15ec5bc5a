package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobpilot-automation/internal/models"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish("one")

	assert.Equal(t, "one", <-a)
	assert.Equal(t, "one", <-b)
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	//fill the buffer and keep publishing; none of these may block
	for i := 0; i < 40; i++ {
		h.Publish("evt")
	}

	assert.Len(t, ch, 16, "buffer holds its capacity, the rest is dropped")
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	assert.NotPanics(t, func() { h.Publish("evt") })

	_, open := <-ch
	assert.False(t, open, "unsubscribed channel is closed")
}

func TestHubSink_PublishesVersionedEnvelopes(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	sink := h.Sink()

	job := models.JobListing{Source: "naukri", ExternalID: "111", Title: "Golang Developer"}
	sink.JobFound(job)
	sink.QueueProgress(2, 5)

	var found Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &found))
	assert.Equal(t, "job_found", found.Type)
	assert.Equal(t, 1, found.Version)
	assert.NotEmpty(t, found.RunID)
	assert.False(t, found.At.IsZero())

	var payload models.JobListing
	require.NoError(t, json.Unmarshal(found.Data, &payload))
	assert.Equal(t, "111", payload.ExternalID)

	var progress Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &progress))
	assert.Equal(t, "queue_progress", progress.Type)
	assert.Equal(t, found.RunID, progress.RunID, "one sink keeps one run id")
}

func TestHubSink_SeparateSinksGetSeparateRunIDs(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	h.Sink().QueueProgress(1, 1)
	h.Sink().QueueProgress(1, 1)

	var first, second Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &first))
	require.NoError(t, json.Unmarshal([]byte(<-ch), &second))
	assert.NotEqual(t, first.RunID, second.RunID)
}
