// Package advice calls an external generative-AI service to produce free-text
// health recommendations from a user profile. The service is an opaque
// collaborator: every failure surfaces as an error the caller maps to a
// "recommendations unavailable" message.
package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"health-assistant/internal/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client talks to the generative language API.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewClient creates a Client for the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   "gemini-pro",
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// BuildPrompt assembles the recommendation prompt from a user profile.
func BuildPrompt(user *models.User) string {
	profile := fmt.Sprintf(
		"Name: %s, Age: %d, Gender: %s, Weight: %g kg, Height: %g cm, Medical Conditions: %s, Health Goals: %s",
		user.Name, user.Age, user.Gender, user.Weight, user.Height, user.MedicalConditions, user.HealthGoals,
	)
	return "Based on the following user profile, provide personalized health recommendations:\n" + profile
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Recommend generates health recommendations for the given user.
func (c *Client) Recommend(ctx context.Context, user *models.User) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("API key not configured")
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: BuildPrompt(user)}}}},
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("advice request error: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read advice response error: %w", err)
	}

	var out generateResponse
	if resp.StatusCode != http.StatusOK {
		// Surface the service's own message when it sends one
		if json.Unmarshal(respBytes, &out) == nil && out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("advice api error (%d): %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("advice api error (%d)", resp.StatusCode)
	}

	if err := json.Unmarshal(respBytes, &out); err != nil {
		return "", fmt.Errorf("decode advice response error: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty recommendations from advice api")
	}

	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty recommendations from advice api")
	}
	return text, nil
}
