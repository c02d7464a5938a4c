package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dom/atelier-korea/internal/domain"
)

const profileHeader = "X-Profile-ID"

// APIClient talks to the backend as a single browser profile
type APIClient struct {
	baseURL    string
	profileID  string
	httpClient *http.Client
}

// NewAPIClient creates a client. An empty profileID lets the server assign one on first call.
func NewAPIClient(baseURL, profileID string) *APIClient {
	return &APIClient{
		baseURL:   baseURL + "/api/v1",
		profileID: profileID,
		httpClient: &http.Client{
			// Crafting and suggestions hold the request open on purpose
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type SavedResponse struct {
	Slug  string `json:"slug"`
	Saved bool   `json:"saved"`
}

type CraftResult struct {
	Piece  domain.IssuedPiece `json:"piece"`
	Issued bool               `json:"issued"`
}

type Suggestion struct {
	Title    string           `json:"title"`
	Ateliers []domain.Atelier `json:"ateliers"`
}

type MyCollection struct {
	ProfileID         string               `json:"profileId"`
	SavedAtelierSlugs []string             `json:"savedAtelierSlugs"`
	IssuedPieces      []domain.IssuedPiece `json:"issuedPieces"`
	SavedRoutes       []domain.SavedRoute  `json:"savedRoutes"`
}

func (c *APIClient) ProfileID() string {
	return c.profileID
}

func (c *APIClient) ListAteliers() ([]domain.Atelier, error) {
	var result struct {
		Ateliers []domain.Atelier `json:"ateliers"`
	}
	if err := c.do(http.MethodGet, "/ateliers", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return result.Ateliers, nil
}

func (c *APIClient) ToggleSave(slug string) (bool, error) {
	var result SavedResponse
	if err := c.do(http.MethodPost, "/me/saved/"+slug+"/toggle", nil, http.StatusOK, &result); err != nil {
		return false, err
	}
	return result.Saved, nil
}

func (c *APIClient) CraftPiece(slug, choiceID string) (*CraftResult, error) {
	body := map[string]string{"atelierSlug": slug, "choiceId": choiceID}

	var result CraftResult
	if err := c.do(http.MethodPost, "/me/pieces", body, 0, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) Suggest(days int, pace, theme string) (*Suggestion, error) {
	body := map[string]interface{}{"duration": days, "pace": pace, "theme": theme}

	var result Suggestion
	if err := c.do(http.MethodPost, "/routes/suggest", body, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) SaveRoute(title string, slugs []string) (*domain.SavedRoute, error) {
	body := map[string]interface{}{"title": title, "atelierSlugs": slugs}

	var result domain.SavedRoute
	if err := c.do(http.MethodPost, "/me/routes", body, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) Collection() (*MyCollection, error) {
	var result MyCollection
	if err := c.do(http.MethodGet, "/me/collection", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends a request and decodes the JSON response into out. A zero want accepts any 2xx.
func (c *APIClient) do(method, path string, body interface{}, want int, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if c.profileID != "" {
		req.Header.Set(profileHeader, c.profileID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	// Keep the profile the server assigned us
	if c.profileID == "" {
		c.profileID = resp.Header.Get(profileHeader)
	}

	ok := resp.StatusCode == want || (want == 0 && resp.StatusCode >= 200 && resp.StatusCode < 300)
	if !ok {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
