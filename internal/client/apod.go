package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Picture is the astronomy picture-of-the-day representation.
type Picture struct {
	Date           string `json:"date"`
	Explanation    string `json:"explanation"`
	HDURL          string `json:"hdurl,omitempty"`
	MediaType      string `json:"media_type"`
	ServiceVersion string `json:"service_version"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	Copyright      string `json:"copyright,omitempty"`
}

// APODClient talks to the astronomy picture-of-the-day API, which guards its
// endpoints with an api_key query parameter.
type APODClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAPODClient creates a client for the astronomy API.
func NewAPODClient(baseURL, apiKey string) *APODClient {
	return &APODClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
	}
}

// Get fetches the picture of the day; date is optional (YYYY-MM-DD).
func (c *APODClient) Get(ctx context.Context, date string) (*Picture, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if date != "" {
		params.Set("date", date)
	}

	var picture Picture
	endpoint := c.baseURL + "/planetary/apod?" + params.Encode()
	if err := doJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, &picture); err != nil {
		return nil, err
	}
	return &picture, nil
}
