package movelog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rawJSON := `{"id":"d4kdisifn76c73dkrju0","direction":"Backward","steps":200,"step_delay":1000000,"started_at":"2025-11-27T16:06:26.504207-07:00","duration":400000000}`
	var m Move
	err := json.Unmarshal([]byte(rawJSON), &m)
	require.NoError(t, err)

	assert.Equal(t, "d4kdisifn76c73dkrju0", m.GetID())
	assert.Equal(t, "Backward", m.Direction)
	assert.Equal(t, 200, m.Steps)
	assert.Equal(t, time.Millisecond, m.StepDelay)
	assert.Equal(t, 400*time.Millisecond, m.Duration)
}

func TestRecordMove(t *testing.T) {
	var received Move
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/moves", r.URL.Path)

		err := json.NewDecoder(r.Body).Decode(&received)
		assert.NoError(t, err)

		received.ID = "move-1"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(received)
	}))
	defer server.Close()

	started := time.Date(2025, 11, 27, 16, 0, 0, 0, time.UTC)
	id, err := NewClient(server.URL).RecordMove(context.Background(), Move{
		Direction: "Forward",
		Steps:     5,
		StepDelay: 10 * time.Millisecond,
		StartedAt: started,
		Duration:  100 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, "move-1", id)
	assert.Equal(t, "Forward", received.Direction)
	assert.Equal(t, 5, received.Steps)
	assert.Equal(t, 10*time.Millisecond, received.StepDelay)
	assert.True(t, started.Equal(received.StartedAt))
}

func TestRecordMoveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).RecordMove(context.Background(), Move{Direction: "Forward", Steps: 1})
	require.Error(t, err)
}
