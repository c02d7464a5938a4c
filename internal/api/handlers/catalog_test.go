package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/atelier-korea/internal/api/handlers"
	"github.com/dom/atelier-korea/internal/domain"
	"github.com/dom/atelier-korea/internal/service"
	"github.com/dom/atelier-korea/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_ListAteliers(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name:           "all ateliers",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result handlers.AteliersResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Len(t, result.Ateliers, len(ts.Catalog.Ateliers()))
			},
		},
		{
			name:           "filtered by collection",
			query:          "?collection=Grain",
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result handlers.AteliersResponse
				testutil.AssertJSONResponse(t, resp, &result)
				require.NotEmpty(t, result.Ateliers)
				for _, a := range result.Ateliers {
					assert.Equal(t, domain.ThemeGrain, a.CollectionID)
				}
			},
		},
		{
			name:           "unknown collection",
			query:          "?collection=Space",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.APIURL("/ateliers" + tt.query))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestCatalogHandler_GetAtelier(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/ateliers/andong-hanok"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var atelier domain.Atelier
	testutil.AssertJSONResponse(t, resp, &atelier)
	assert.Equal(t, "andong-hanok", atelier.Slug)
	assert.Equal(t, domain.ThemeRitual, atelier.CollectionID)
	assert.NotEmpty(t, atelier.Piece.Choices)

	missing, err := http.Get(ts.APIURL("/ateliers/atlantis"))
	require.NoError(t, err)
	defer missing.Body.Close()
	testutil.AssertErrorResponse(t, missing, http.StatusNotFound, "Atelier not found")
}

func TestCatalogHandler_Collections(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/collections"))
	require.NoError(t, err)
	defer resp.Body.Close()

	var list handlers.CollectionsResponse
	testutil.AssertJSONResponse(t, resp, &list)
	assert.Len(t, list.Collections, len(domain.AllThemes))

	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{name: "known collection", id: "Sea", expectedStatus: http.StatusOK},
		{name: "unknown collection", id: "Space", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.APIURL("/collections/" + tt.id))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var detail service.CollectionDetail
			testutil.AssertJSONResponse(t, resp, &detail)
			assert.Equal(t, domain.ThemeSea, detail.ID)
			assert.Len(t, detail.Ateliers, len(detail.AtelierSlugs))
		})
	}
}

func TestHealth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.BaseURL() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	metrics, err := http.Get(ts.BaseURL() + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	testutil.AssertStatusCode(t, metrics, http.StatusOK)
}
