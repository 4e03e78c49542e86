package client

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apimock-project/apimock-go/internal/config"
	"github.com/apimock-project/apimock-go/internal/server"
	"github.com/apimock-project/apimock-go/test/testutils"
)

func startMock(t *testing.T, cfg *config.APIConfig) *server.Server {
	t.Helper()
	srv, err := server.New(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		_ = srv.Stop()
	})
	return srv
}

func newPostsClient(t *testing.T) *PostsClient {
	t.Helper()
	srv := startMock(t, testutils.PostsAPIConfig(t))
	return NewPostsClient(srv.BaseURL())
}

func TestPostsClientList(t *testing.T) {
	c := newPostsClient(t)

	posts, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, 1, posts[0].ID)
	assert.Equal(t, "A", posts[0].Title)
	assert.Equal(t, "B", posts[1].Title)
}

func TestPostsClientGet(t *testing.T) {
	c := newPostsClient(t)

	post, err := c.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, post.ID)
	assert.Equal(t, "A", post.Title)
	assert.Equal(t, "first body", post.Body)
}

func TestPostsClientGetMissing(t *testing.T) {
	c := newPostsClient(t)

	_, err := c.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostsClientCreate(t *testing.T) {
	c := newPostsClient(t)

	post, err := c.Create(context.Background(), PostCreate{Title: "X", Body: "Y", UserID: 9})
	require.NoError(t, err)
	assert.Equal(t, "X", post.Title)
	assert.Equal(t, "Y", post.Body)
	assert.Equal(t, 9, post.UserID)
	assert.Greater(t, post.ID, 0)
}

func TestPostsClientUpdate(t *testing.T) {
	c := newPostsClient(t)

	title := "renamed"
	post, err := c.Update(context.Background(), 1, PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 1, post.ID)
	assert.Equal(t, "renamed", post.Title)
	// fields left nil in the update keep their prior values
	assert.Equal(t, "first body", post.Body)
	assert.Equal(t, 1, post.UserID)
}

func TestPostsClientDelete(t *testing.T) {
	c := newPostsClient(t)

	require.NoError(t, c.Delete(context.Background(), 1))

	_, err := c.Get(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotFound)

	err = c.Delete(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func apodConfig(t *testing.T) *config.APIConfig {
	t.Helper()
	specPath := testutils.WriteAPODAPI(t)
	cfg := &config.APIConfig{
		Name:     "apod",
		SpecFile: filepath.Base(specPath),
		Security: &config.SecurityConfig{
			Default: "Deny",
			Conditions: []config.SecurityCondition{
				{
					QueryParams: map[string]config.MatcherUnmarshaler{
						"api_key": {Matcher: config.StringMatcher("DEMO_KEY")},
					},
				},
			},
		},
	}
	cfg.SetBaseDir(filepath.Dir(specPath))
	return cfg
}

func TestAPODClientGet(t *testing.T) {
	srv := startMock(t, apodConfig(t))
	c := NewAPODClient(srv.BaseURL(), "DEMO_KEY")

	picture, err := c.Get(context.Background(), "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "Crab Nebula", picture.Title)
	assert.Equal(t, "image", picture.MediaType)
	assert.Equal(t, "https://example.test/crab.jpg", picture.URL)
}

func TestAPODClientRejectedWithoutKey(t *testing.T) {
	srv := startMock(t, apodConfig(t))
	c := NewAPODClient(srv.BaseURL(), "WRONG_KEY")

	_, err := c.Get(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestDoJSONStatusMapping(t *testing.T) {
	srv := startMock(t, testutils.PostsAPIConfig(t))

	// 404 maps to the sentinel
	err := doJSON(context.Background(), newHTTPClient(), http.MethodGet, srv.BaseURL()+"/comments", nil, nil)
	require.ErrorIs(t, err, ErrNotFound)

	// 204 skips decoding
	err = doJSON(context.Background(), newHTTPClient(), http.MethodDelete, srv.BaseURL()+"/posts/1", nil, nil)
	require.NoError(t, err)
}
