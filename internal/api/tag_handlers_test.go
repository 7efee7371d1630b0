package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserHeader = "X-User-ID: user-1"

func TestCreateTagEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/tags", testUserHeader, map[string]any{
		"name":  "Remote Work",
		"color": "#2196f3",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[TagResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "remote-work", envelope.Data.ID)
	assert.Equal(t, "Remote Work", envelope.Data.Name)
}

func TestCreateTagRequiresUser(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/tags", map[string]any{"name": "Remote"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRejectsUserIDWithKeySeparator(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	// ':' delimits storage keys; an id carrying one could read into
	// another user's keyspace.
	resp := ts.api.Get("/api/v1/tags", "X-User-ID: bad:user")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/tags", "X-User-ID: bad:user", map[string]any{"name": "Remote"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateTagDuplicateConflicts(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/tags", testUserHeader, map[string]any{"name": "Remote"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/tags", testUserHeader, map[string]any{"name": "REMOTE"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "ALREADY_EXISTS", envelope.Code)
}

func TestCreateTagValidation(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	// Empty name fails request validation before the service runs.
	resp := ts.api.Post("/api/v1/tags", testUserHeader, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Malformed color fails the hexcolor rule.
	resp = ts.api.Post("/api/v1/tags", testUserHeader, map[string]any{
		"name":  "Remote",
		"color": "blue-ish",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTagsAreScopedToUser(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/tags", testUserHeader, map[string]any{"name": "Remote"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/tags", "X-User-ID: someone-else")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListTagsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Tags)
}

func TestDeleteTagEndpointStripsJobs(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/jobs", testUserHeader, map[string]any{
		"company":  "Acme",
		"position": "Engineer",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var jobEnvelope testEnvelope[JobResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &jobEnvelope))
	jobID := jobEnvelope.Data.ID

	resp = ts.api.Post("/api/v1/jobs/"+jobID+"/tags", testUserHeader, map[string]any{"name": "Urgent"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Delete("/api/v1/tags/urgent", testUserHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/jobs/"+jobID, testUserHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &jobEnvelope))
	assert.Empty(t, jobEnvelope.Data.TagIDs)

	resp = ts.api.Get("/api/v1/tags/urgent", testUserHeader)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestTagNotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/tags/nope", testUserHeader)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}
