package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apimock-project/apimock-go/internal/config"
)

// WriteFile writes one fixture file into dir and returns its full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// PostsSpec is an OpenAPI document for a Posts API exercising every payload
// mapping style: a list payload, a per-id manifest, a declared 404 body and
// an example request body.
const PostsSpec = `openapi: 3.0.0
info:
  title: Posts API
  version: 1.0.0
paths:
  /posts:
    get:
      operationId: listPosts
      responses:
        "200":
          description: All posts
          x-mock-payload: GET_posts_200.json
    post:
      operationId: createPost
      requestBody:
        content:
          application/json:
            x-mock-request: POST_posts_request.json
      responses:
        "201":
          description: Created post
          x-mock-payload: POST_posts_201.json
  /posts/{id}:
    get:
      operationId: getPost
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: One post
          x-mock-payload-ids:
            "1": GET_posts_1_200.json
        "404":
          description: Post not found
          x-mock-payload: GET_posts_404.json
    put:
      operationId: updatePost
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: Updated post
    delete:
      operationId: deletePost
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      responses:
        "204":
          description: Post deleted
`

// Canonical payload fixtures for PostsSpec.
const (
	PostsListPayload = `[
  {"id": 1, "title": "A", "body": "first body", "userId": 1, "createdAt": "2024-01-01T00:00:00Z"},
  {"id": 2, "title": "B", "body": "second body", "userId": 2, "createdAt": "2024-01-01T00:00:00Z"}
]`

	PostOnePayload = `{"id": 1, "title": "A", "body": "first body", "userId": 1, "createdAt": "2024-01-01T00:00:00Z"}`

	PostCreatedPayload = `{"id": 101, "title": "new post", "body": "new body", "userId": 1, "createdAt": "2024-01-02T00:00:00Z"}`

	PostNotFoundPayload = `{"error": "Not found", "message": "Post not found"}`

	PostRequestPayload = `{"title": "new post", "body": "new body", "userId": 1}`
)

// WritePostsAPI writes the Posts API spec and its payload files into a fresh
// temp directory and returns the spec path.
func WritePostsAPI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, dir, "GET_posts_200.json", PostsListPayload)
	WriteFile(t, dir, "GET_posts_1_200.json", PostOnePayload)
	WriteFile(t, dir, "POST_posts_201.json", PostCreatedPayload)
	WriteFile(t, dir, "GET_posts_404.json", PostNotFoundPayload)
	WriteFile(t, dir, "POST_posts_request.json", PostRequestPayload)
	return WriteFile(t, dir, "posts-api.yaml", PostsSpec)
}

// PostsAPIConfig returns a server config pointing at a freshly written Posts API.
func PostsAPIConfig(t *testing.T) *config.APIConfig {
	t.Helper()
	specPath := WritePostsAPI(t)
	cfg := &config.APIConfig{
		Name:     "posts",
		SpecFile: filepath.Base(specPath),
	}
	cfg.SetBaseDir(filepath.Dir(specPath))
	return cfg
}

// APODSpec is a minimal astronomy picture-of-the-day API.
const APODSpec = `openapi: 3.0.0
info:
  title: Astronomy API
  version: 1.0.0
paths:
  /planetary/apod:
    get:
      operationId: getPictureOfTheDay
      responses:
        "200":
          description: Picture of the day
          x-mock-payload: GET_apod_200.json
`

// APODPayload is the canonical payload fixture for APODSpec.
const APODPayload = `{
  "date": "2024-06-01",
  "explanation": "A supernova remnant in Taurus.",
  "media_type": "image",
  "service_version": "v1",
  "title": "Crab Nebula",
  "url": "https://example.test/crab.jpg"
}`

// WriteAPODAPI writes the astronomy API spec and payload into a fresh temp
// directory and returns the spec path.
func WriteAPODAPI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, dir, "GET_apod_200.json", APODPayload)
	return WriteFile(t, dir, "apod-api.yaml", APODSpec)
}
