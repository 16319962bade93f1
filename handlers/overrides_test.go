package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"servicehub/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overrideRouter(repo *fakeOverrideRepo, n *recordingNotifier) *gin.Engine {
	h := NewOverrideHandler(repo, n, time.UTC)
	r := gin.New()
	r.POST("/api/providers/:providerId/overrides", h.CreateOverrideHandler)
	r.DELETE("/api/providers/:providerId/overrides/:id", h.DeleteOverrideHandler)
	return r
}

func TestCreateOverrideHandler(t *testing.T) {
	repo := newFakeOverrideRepo()
	n := &recordingNotifier{}
	r := overrideRouter(repo, n)

	w := perform(r, http.MethodPost, "/api/providers/p1/overrides", `{"listingId":"l1","date":"2025-01-08","time":"14:00","reason":"dentist"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Override models.ManualOverride `json:"override"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Override.ID)
	assert.Equal(t, "p1", resp.Override.ProviderID)
	assert.Contains(t, repo.items, resp.Override.ID)

	require.Len(t, n.events, 1)
	ev := n.events[0]
	assert.Equal(t, "p1", ev.ProviderID)
	assert.Equal(t, "override.created", ev.Reason)
	assert.Equal(t, time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), ev.Range.Start)
	assert.Equal(t, time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC), ev.Range.End)
}

func TestCreateOverrideHandlerValidation(t *testing.T) {
	repo := newFakeOverrideRepo()
	n := &recordingNotifier{}
	r := overrideRouter(repo, n)

	for _, body := range []string{
		`{}`,
		`{"date":"08/01/2025"}`,
		`{"date":"2025-01-08","time":"2pm"}`,
	} {
		w := perform(r, http.MethodPost, "/api/providers/p1/overrides", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Empty(t, repo.items)
	assert.Empty(t, n.events)
}

func TestCreateOverrideHandlerStoreFailure(t *testing.T) {
	repo := newFakeOverrideRepo()
	repo.createErr = errors.New("mongo down")
	n := &recordingNotifier{}
	r := overrideRouter(repo, n)

	w := perform(r, http.MethodPost, "/api/providers/p1/overrides", `{"date":"2025-01-08"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, n.events)
}

func TestDeleteOverrideHandler(t *testing.T) {
	repo := newFakeOverrideRepo()
	repo.items["o1"] = models.ManualOverride{ID: "o1", ProviderID: "p1", Date: "2025-01-08"}
	n := &recordingNotifier{}
	r := overrideRouter(repo, n)

	w := perform(r, http.MethodDelete, "/api/providers/p2/overrides/o1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, n.events)

	w = perform(r, http.MethodDelete, "/api/providers/p1/overrides/o1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.items)
	require.Len(t, n.events, 1)
	assert.Equal(t, "override.deleted", n.events[0].Reason)
}
