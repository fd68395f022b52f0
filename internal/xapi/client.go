// ABOUTME: Minimal X API v2 client for creating posts
// ABOUTME: OAuth 1.0a user-context signing with typed request/response handling

package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
)

// DefaultBaseURL is the production X API endpoint.
const DefaultBaseURL = "https://api.x.com"

// defaultTimeout bounds the synchronous publish call.
const defaultTimeout = 30 * time.Second

// Credentials holds the four OAuth 1.0a user-context credential fields
// required by the X API.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Config holds client construction options.
type Config struct {
	Credentials Credentials

	// BaseURL overrides the API endpoint, used by tests. Empty means
	// DefaultBaseURL.
	BaseURL string

	Logger *slog.Logger
}

// Client posts to the X API v2. It exposes exactly the capability the
// composer consumes: create a post, optionally quoting another.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a client whose requests are signed with the given
// OAuth 1.0a user-context credentials. Credential validity is checked by the
// platform on the first call, not here.
func NewClient(cfg Config) *Client {
	oauthConfig := oauth1.NewConfig(cfg.Credentials.ConsumerKey, cfg.Credentials.ConsumerSecret)
	token := oauth1.NewToken(cfg.Credentials.AccessToken, cfg.Credentials.AccessTokenSecret)

	httpClient := oauthConfig.Client(oauth1.NoContext, token)
	httpClient.Timeout = defaultTimeout

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger.With("component", "xapi"),
	}
}

// createPostRequest is the POST /2/tweets payload.
type createPostRequest struct {
	Text         string `json:"text"`
	QuoteTweetID string `json:"quote_tweet_id,omitempty"`
}

// createPostResponse is the success payload.
type createPostResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// errorResponse is the platform's problem-details error payload.
type errorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

// CreatePost publishes a post with the given text, quoting the post named by
// quoteID when it is non-empty. Returns the id of the newly created post.
// Platform rejections (bad credentials, rate limits, server-side length
// rules) are returned as *APIError.
func (c *Client) CreatePost(ctx context.Context, text, quoteID string) (string, error) {
	payload := createPostRequest{
		Text:         text,
		QuoteTweetID: quoteID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding post payload: %w", err)
	}

	url := c.baseURL + "/2/tweets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("creating post", "chars", len(text), "quoted", quoteID != "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting to X: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", c.apiError(resp.StatusCode, respBody)
	}

	var parsed createPostResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if parsed.Data.ID == "" {
		return "", fmt.Errorf("response missing post id")
	}

	c.logger.Info("post created", "post_id", parsed.Data.ID)
	return parsed.Data.ID, nil
}

// apiError maps a non-success response to an *APIError, preserving whatever
// detail the platform provided.
func (c *Client) apiError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Title != "" {
		apiErr.Title = parsed.Title
		apiErr.Detail = parsed.Detail
	} else {
		apiErr.Detail = http.StatusText(status)
	}

	c.logger.Warn("post rejected by platform",
		"status", status,
		"title", apiErr.Title,
		"detail", apiErr.Detail,
	)
	return apiErr
}
