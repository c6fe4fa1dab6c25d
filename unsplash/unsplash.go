// Package unsplash provides the image sourcing client. Without a real
// access key it serves a curated demo catalogue so the rest of the
// application keeps working end to end.
package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-social-connect"
)

// PlaceholderAccessKey is the sentinel an unconfigured deployment
// ships with.
const PlaceholderAccessKey = "YOUR_UNSPLASH_ACCESS_KEY"

const (
	defaultAPIBase = "https://api.unsplash.com"

	// Keys shorter than this cannot be real.
	minAccessKeyLen = 11

	maxPerPage = 30
)

// Image is one photo, normalized from the API response.
type Image struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	Thumbnail       string `json:"thumbnail"`
	Alt             string `json:"alt"`
	Description     string `json:"description"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographerUrl"`
	DownloadURL     string `json:"downloadUrl"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
}

// SearchResult is a page of search hits.
type SearchResult struct {
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Results    []Image `json:"results"`
}

// RateLimitError signals the hourly API quota is exhausted.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "unsplash rate limit exceeded"
}

// Config holds client configuration.
type Config struct {
	AccessKey  string
	APIBase    string
	HTTPClient *http.Client
}

// Client talks to the Unsplash API, or serves demo images when no
// plausible access key is configured.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     connect.Logger
	randIndex  func(n int) int
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger connect.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRandSource overrides the shuffle source, for deterministic tests.
func WithRandSource(indexFn func(n int) int) Option {
	return func(c *Client) {
		if indexFn != nil {
			c.randIndex = indexFn
		}
	}
}

// New creates a client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	c := &Client{
		config:     cfg,
		httpClient: client,
		logger:     connect.DefaultLogger(),
		randIndex:  rand.Intn,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Configured reports whether a plausible real access key is present.
func (c *Client) Configured() bool {
	return c.config.AccessKey != PlaceholderAccessKey && len(c.config.AccessKey) >= minAccessKeyLen
}

// Search finds photos matching a query. In demo mode it filters the
// sample catalogue instead of calling the API.
func (c *Client) Search(ctx context.Context, query string, page, perPage int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	if !c.Configured() {
		return c.searchDemo(query, page, perPage), nil
	}

	endpoint := "/search/photos?" + url.Values{
		"query":    {query},
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}.Encode()

	var resp struct {
		Total      int        `json:"total"`
		TotalPages int        `json:"total_pages"`
		Results    []apiPhoto `json:"results"`
	}
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	result := &SearchResult{
		Total:      resp.Total,
		TotalPages: resp.TotalPages,
		Results:    make([]Image, 0, len(resp.Results)),
	}
	for _, photo := range resp.Results {
		result.Results = append(result.Results, photo.toImage())
	}
	return result, nil
}

// Random returns up to count random photos, optionally filtered by
// query. Demo mode shuffles the sample catalogue.
func (c *Client) Random(ctx context.Context, count int, query string) ([]Image, error) {
	if count < 1 {
		count = 20
	}
	if count > maxPerPage {
		count = maxPerPage
	}

	if !c.Configured() {
		return c.randomDemo(count, query), nil
	}

	params := url.Values{"count": {strconv.Itoa(count)}}
	if query != "" {
		params.Set("query", query)
	}

	// A count of one may come back as a bare object rather than an
	// array.
	var raw json.RawMessage
	if err := c.get(ctx, "/photos/random?"+params.Encode(), &raw); err != nil {
		return nil, err
	}

	var photos []apiPhoto
	if err := json.Unmarshal(raw, &photos); err != nil {
		var single apiPhoto
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("unsplash: decoding random response: %w", err)
		}
		photos = []apiPhoto{single}
	}

	images := make([]Image, 0, len(photos))
	for _, photo := range photos {
		images = append(images, photo.toImage())
	}
	return images, nil
}

// Suggested returns a batch of images suited to social posts: a random
// popular topic when live, the full shuffled catalogue in demo mode.
func (c *Client) Suggested(ctx context.Context) ([]Image, error) {
	if !c.Configured() {
		return c.randomDemo(len(sampleImages), ""), nil
	}

	keywords := []string{
		"lifestyle", "coffee", "workspace", "food", "nature",
		"fashion", "technology", "fitness", "travel", "business",
	}
	return c.Random(ctx, 20, keywords[c.randIndex(len(keywords))])
}

// TrackDownload pings the download endpoint Unsplash requires for
// attribution. Failures are logged, never surfaced.
func (c *Client) TrackDownload(ctx context.Context, downloadURL string) {
	if !c.Configured() || strings.Contains(downloadURL, "demo") {
		return
	}

	endpoint := strings.TrimPrefix(downloadURL, c.config.APIBase)
	var ignored json.RawMessage
	if err := c.get(ctx, endpoint, &ignored); err != nil {
		c.logger.Error("download tracking failed: %v", err)
	}
}

// CheckConnection probes the API with one random-photo request. An
// unconfigured client is immediately not connected.
func (c *Client) CheckConnection(ctx context.Context) bool {
	if !c.Configured() {
		return false
	}

	var ignored json.RawMessage
	if err := c.get(ctx, "/photos/random", &ignored); err != nil {
		c.logger.Error("unsplash connection check failed: %v", err)
		return false
	}
	return true
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.APIBase+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Client-ID "+c.config.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		retryAfter := time.Hour
		if remaining := resp.Header.Get("X-Ratelimit-Remaining"); remaining != "" {
			if secs, err := strconv.Atoi(remaining); err == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Errors []string `json:"errors"`
		}
		if json.Unmarshal(body, &apiErr) == nil && len(apiErr.Errors) > 0 {
			return fmt.Errorf("unsplash: HTTP %d: %s", resp.StatusCode, strings.Join(apiErr.Errors, ", "))
		}
		return fmt.Errorf("unsplash: HTTP %d", resp.StatusCode)
	}

	return json.Unmarshal(body, out)
}

type apiPhoto struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	URLs           struct {
		Regular string `json:"regular"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
	Links struct {
		DownloadLocation string `json:"download_location"`
	} `json:"links"`
	User struct {
		Name  string `json:"name"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"user"`
}

func (p apiPhoto) toImage() Image {
	alt := p.AltDescription
	if alt == "" {
		alt = p.Description
	}
	if alt == "" {
		alt = "Unsplash image"
	}
	return Image{
		ID:              p.ID,
		URL:             p.URLs.Regular,
		Thumbnail:       p.URLs.Thumb,
		Alt:             alt,
		Description:     p.Description,
		Photographer:    p.User.Name,
		PhotographerURL: p.User.Links.HTML,
		DownloadURL:     p.Links.DownloadLocation,
		Width:           p.Width,
		Height:          p.Height,
	}
}
