package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/atelier-korea/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies error response with expected status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	// Error responses are plain text in this API
	assert.Contains(t, string(body), expectedMessage, "error message mismatch")
}

// AssertContainsSlug verifies an atelier slug exists in a slice
func AssertContainsSlug(t *testing.T, slugs []string, slug string) {
	t.Helper()
	assert.Contains(t, slugs, slug, "atelier %s not found", slug)
}

// AssertNotContainsSlug verifies an atelier slug does not exist in a slice
func AssertNotContainsSlug(t *testing.T, slugs []string, slug string) {
	t.Helper()
	assert.NotContains(t, slugs, slug, "atelier %s should not be present", slug)
}

// AssertPieceChoice verifies the piece held for atelierSlug was issued for choiceID
func AssertPieceChoice(t *testing.T, state domain.CollectionState, atelierSlug, choiceID string) {
	t.Helper()

	for _, p := range state.IssuedPieces {
		if p.AtelierSlug == atelierSlug {
			assert.Equal(t, choiceID, p.ChoiceID, "unexpected choice for %s", atelierSlug)
			return
		}
	}
	t.Fatalf("no piece issued for %s", atelierSlug)
}
