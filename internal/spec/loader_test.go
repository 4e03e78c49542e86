package spec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apimock-project/apimock-go/test/testutils"
)

func TestLoadMissingSpec(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "no-such-spec.yaml"))
	err := loader.Load()
	require.ErrorIs(t, err, ErrSpecNotFound)
}

func TestLoadMalformedSpec(t *testing.T) {
	specPath := testutils.WriteFile(t, t.TempDir(), "broken.yaml", "not: [valid")
	loader := NewLoader(specPath)
	err := loader.Load()
	require.ErrorIs(t, err, ErrSpecParse)
}

func TestLoadIsCached(t *testing.T) {
	specPath := testutils.WritePostsAPI(t)
	loader := NewLoader(specPath)
	require.NoError(t, loader.Load())

	// Corrupting the file after the first parse must not matter
	require.NoError(t, os.WriteFile(specPath, []byte("not: [valid"), 0644))
	require.NoError(t, loader.Load())

	_, ok := loader.PayloadPathFor("GET", "/posts", "200")
	assert.True(t, ok)
}

func TestPayloadPathFor(t *testing.T) {
	specPath := testutils.WritePostsAPI(t)
	specDir := filepath.Dir(specPath)
	loader := NewLoader(specPath)

	tests := []struct {
		name     string
		method   string
		path     string
		status   string
		wantFile string
	}{
		{
			name:     "list endpoint payload",
			method:   "GET",
			path:     "/posts",
			status:   "200",
			wantFile: "GET_posts_200.json",
		},
		{
			name:     "created payload",
			method:   "POST",
			path:     "/posts",
			status:   "201",
			wantFile: "POST_posts_201.json",
		},
		{
			name:     "declared 404 payload",
			method:   "GET",
			path:     "/posts/{id}",
			status:   "404",
			wantFile: "GET_posts_404.json",
		},
		{
			name:   "method is case-insensitive",
			method: "get",
			path:   "/posts",
			status: "200",

			wantFile: "GET_posts_200.json",
		},
		{
			name:   "undeclared status",
			method: "GET",
			path:   "/posts",
			status: "500",
		},
		{
			name:   "concrete path instead of template",
			method: "GET",
			path:   "/posts/1",
			status: "200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, ok := loader.PayloadPathFor(tt.method, tt.path, tt.status)
			if tt.wantFile == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, filepath.Join(specDir, tt.wantFile), file)
		})
	}
}

func TestPayloadManifest(t *testing.T) {
	specPath := testutils.WritePostsAPI(t)
	loader := NewLoader(specPath)

	endpoint, ok := loader.EndpointFor("GET", "/posts/{id}", "200")
	require.True(t, ok)
	require.Contains(t, endpoint.IDPayloads, "1")
	assert.Equal(t, filepath.Join(filepath.Dir(specPath), "GET_posts_1_200.json"), endpoint.IDPayloads["1"])
	assert.Empty(t, endpoint.PayloadFile)
}

func TestRequestPayloadPathFor(t *testing.T) {
	specPath := testutils.WritePostsAPI(t)
	loader := NewLoader(specPath)

	file, ok := loader.RequestPayloadPathFor("POST", "/posts")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(filepath.Dir(specPath), "POST_posts_request.json"), file)

	_, ok = loader.RequestPayloadPathFor("GET", "/posts")
	assert.False(t, ok)
}

func TestListEndpointsReturnsSnapshot(t *testing.T) {
	loader := NewLoader(testutils.WritePostsAPI(t))

	endpoints := loader.ListEndpoints()
	require.NotEmpty(t, endpoints)

	// Mutating the snapshot must not affect the loader
	for key := range endpoints {
		delete(endpoints, key)
	}
	assert.NotEmpty(t, loader.ListEndpoints())
}

func TestTemplates(t *testing.T) {
	loader := NewLoader(testutils.WritePostsAPI(t))

	templates, err := loader.Templates()
	require.NoError(t, err)

	assert.Contains(t, templates, Template{Method: "GET", Path: "/posts"})
	assert.Contains(t, templates, Template{Method: "POST", Path: "/posts"})
	assert.Contains(t, templates, Template{Method: "GET", Path: "/posts/{id}"})
	assert.Contains(t, templates, Template{Method: "PUT", Path: "/posts/{id}"})
	assert.Contains(t, templates, Template{Method: "DELETE", Path: "/posts/{id}"})
}

func TestInlineExampleFallback(t *testing.T) {
	dir := t.TempDir()
	specPath := testutils.WriteFile(t, dir, "ping-api.yaml", `openapi: 3.0.0
info:
  title: Ping API
  version: 1.0.0
paths:
  /ping:
    get:
      operationId: ping
      responses:
        "200":
          description: Pong
          content:
            application/json:
              example:
                status: ok
`)

	loader := NewLoader(specPath)
	endpoint, ok := loader.EndpointFor("GET", "/ping", "200")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, endpoint.Example)
}

func TestPayloadReferenceEscapingSpecDirIsDropped(t *testing.T) {
	dir := t.TempDir()
	specPath := testutils.WriteFile(t, dir, "sneaky-api.yaml", `openapi: 3.0.0
info:
  title: Sneaky API
  version: 1.0.0
paths:
  /files:
    get:
      operationId: listFiles
      responses:
        "200":
          description: Files
          x-mock-payload: ../../secret.json
`)

	loader := NewLoader(specPath)
	require.NoError(t, loader.Load())

	_, ok := loader.PayloadPathFor("GET", "/files", "200")
	assert.False(t, ok)
}

func TestNamedExamplesFallback(t *testing.T) {
	dir := t.TempDir()
	specPath := testutils.WriteFile(t, dir, "ping-api.yaml", `openapi: 3.0.0
info:
  title: Ping API
  version: 1.0.0
paths:
  /ping:
    get:
      operationId: ping
      responses:
        "200":
          description: Pong
          content:
            application/json:
              examples:
                ok:
                  value:
                    status: ok
`)

	loader := NewLoader(specPath)
	endpoint, ok := loader.EndpointFor("GET", "/ping", "200")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, endpoint.Example)
}
