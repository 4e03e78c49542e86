package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Post is the representation served by the upstream Posts API.
type Post struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	UserID    int    `json:"userId"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// PostCreate is the request body for creating a post.
type PostCreate struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// PostUpdate is the request body for partial updates; nil fields are omitted
// so prior values survive.
type PostUpdate struct {
	Title  *string `json:"title,omitempty"`
	Body   *string `json:"body,omitempty"`
	UserID *int    `json:"userId,omitempty"`
}

// PostsClient talks to the Posts API. Tests retarget BaseURL at a running
// mock server.
type PostsClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPostsClient creates a client for the Posts API at the given base URL.
func NewPostsClient(baseURL string) *PostsClient {
	return &PostsClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

// List fetches all posts.
func (c *PostsClient) List(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.baseURL+"/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Get fetches one post by id.
func (c *PostsClient) Get(ctx context.Context, id int) (*Post, error) {
	var post Post
	if err := doJSON(ctx, c.httpClient, http.MethodGet, c.postURL(id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Create adds a new post.
func (c *PostsClient) Create(ctx context.Context, create PostCreate) (*Post, error) {
	var post Post
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/posts", create, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Update applies a partial update to a post.
func (c *PostsClient) Update(ctx context.Context, id int, update PostUpdate) (*Post, error) {
	var post Post
	if err := doJSON(ctx, c.httpClient, http.MethodPut, c.postURL(id), update, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post.
func (c *PostsClient) Delete(ctx context.Context, id int) error {
	return doJSON(ctx, c.httpClient, http.MethodDelete, c.postURL(id), nil, nil)
}

func (c *PostsClient) postURL(id int) string {
	return fmt.Sprintf("%s/posts/%d", c.baseURL, id)
}
