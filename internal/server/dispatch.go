package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/apimock-project/apimock-go/internal/payload"
	"github.com/apimock-project/apimock-go/pkg/logger"
)

// errorBody is the synthetic failure payload served when no declared 404
// payload exists.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ServeHTTP routes an incoming request to the handler registered for its
// (method, path) pair. Every request is answered exactly once; "not found"
// is the uniform failure signal.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Mock-Request-Id", uuid.NewString())

	if !s.authorize(r) {
		s.writeJSON(w, r, http.StatusUnauthorized, errorBody{Error: "Unauthorised", Message: "Security conditions not met"})
		return
	}

	for _, rt := range s.routes {
		if rt.method != r.Method {
			continue
		}
		params, ok := payload.ExtractPathParams(rt.template, r.URL.Path)
		if !ok {
			continue
		}
		rt.handle(w, r, params)
		return
	}

	s.writeSyntheticNotFound(w, r)
}

// dispatch applies the per-method response-construction policy for one
// matched operation.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, method, template string, params map[string]string) {
	if !s.validateRequest(w, r) {
		return
	}

	id, hasID := params[payload.IDParam]

	switch method {
	case http.MethodDelete:
		s.handleDelete(w, r, template, params, id, hasID)
	case http.MethodPost:
		s.handleCreate(w, r, template, params)
	case http.MethodPut, http.MethodPatch:
		s.handleUpdate(w, r, template, params, id, hasID)
	default:
		s.handleFetch(w, r, method, template, params, id, hasID)
	}
}

// handleFetch serves GET (and any other read) requests, honouring recorded
// deletions before resolving the stored payload.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request, method, template string, params map[string]string, id string, hasID bool) {
	if hasID && s.tracker.IsDeleted(id) {
		s.writeNotFound(w, r, method, template, params)
		return
	}

	doc, found := s.resolver.ResolveTemplate(method, template, defaultStatus(method), params)
	if !found {
		s.writeNotFound(w, r, method, template, params)
		return
	}
	s.writeJSON(w, r, http.StatusOK, doc)
}

// handleDelete marks a resource deleted and answers 204. The resource must
// currently resolve; deleting a missing or already-deleted id yields 404.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, template string, params map[string]string, id string, hasID bool) {
	if !hasID {
		s.writeStatus(w, r, http.StatusNoContent)
		return
	}

	if s.tracker.IsDeleted(id) {
		s.writeNotFound(w, r, http.MethodGet, template, params)
		return
	}

	if _, found := s.resolver.ResolveTemplate(http.MethodGet, template, defaultStatus(http.MethodGet), params); !found {
		s.writeNotFound(w, r, http.MethodGet, template, params)
		return
	}

	s.tracker.MarkDeleted(id)
	s.writeStatus(w, r, http.StatusNoContent)
}

// handleCreate serves POST requests: the declared 201 template payload with
// the request body's fields shallow-merged over it. A body that does not
// parse as a JSON object is ignored and the template served unmodified.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, template string, params map[string]string) {
	doc, found := s.resolver.ResolveTemplate(http.MethodPost, template, defaultStatus(http.MethodPost), params)
	if !found {
		s.writeNotFound(w, r, http.MethodPost, template, params)
		return
	}

	if body, ok := readJSONObject(r); ok {
		doc = mergeDocuments(doc, body, false)
		doc = forceIDParam(doc, params)
	}

	s.writeJSON(w, r, http.StatusCreated, doc)
}

// handleUpdate serves PUT and PATCH with partial-update semantics: the
// current representation is resolved via an equivalent GET, non-null request
// fields override it, and the id field is forced to the path parameter.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, template string, params map[string]string, id string, hasID bool) {
	if hasID && s.tracker.IsDeleted(id) {
		s.writeNotFound(w, r, http.MethodGet, template, params)
		return
	}

	current, found := s.resolver.ResolveTemplate(http.MethodGet, template, defaultStatus(http.MethodGet), params)
	if !found {
		s.writeNotFound(w, r, http.MethodGet, template, params)
		return
	}

	if body, ok := readJSONObject(r); ok {
		current = mergeDocuments(current, body, true)
	}
	current = forceIDParam(current, params)

	s.writeJSON(w, r, http.StatusOK, current)
}

// writeNotFound serves the declared 404 payload when one exists, falling
// back to a synthetic body.
func (s *Server) writeNotFound(w http.ResponseWriter, r *http.Request, method, template string, params map[string]string) {
	if doc, found := s.resolver.ResolveTemplate(method, template, "404", params); found {
		s.writeJSON(w, r, http.StatusNotFound, doc)
		return
	}
	if method != http.MethodGet {
		if doc, found := s.resolver.ResolveTemplate(http.MethodGet, template, "404", params); found {
			s.writeJSON(w, r, http.StatusNotFound, doc)
			return
		}
	}
	s.writeSyntheticNotFound(w, r)
}

func (s *Server) writeSyntheticNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusNotFound, errorBody{
		Error:   "Not found",
		Message: fmt.Sprintf("No mock payload found for %s %s", r.Method, r.URL.Path),
	})
}

// writeJSON marshals the document and answers with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, doc interface{}) {
	data, err := json.Marshal(doc)
	if err != nil {
		logger.Errorf("failed to marshal response payload - method:%s, path:%s: %v", r.Method, r.URL.Path, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)

	logger.Infof("handled request - api:%s, method:%s, path:%s, status:%d, length:%d",
		s.cfg.Name, r.Method, r.URL.Path, statusCode, len(data))
}

// writeStatus answers with an empty body, used for 204.
func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, statusCode int) {
	w.WriteHeader(statusCode)
	logger.Infof("handled request - api:%s, method:%s, path:%s, status:%d, length:0",
		s.cfg.Name, r.Method, r.URL.Path, statusCode)
}

// defaultStatus returns the status code resolved for each method when the
// caller does not request one explicitly.
func defaultStatus(method string) string {
	if method == http.MethodPost {
		return "201"
	}
	return "200"
}

// readJSONObject parses the request body as a JSON object. Parse failures
// are swallowed: the handler proceeds with the unmerged template payload.
func readJSONObject(r *http.Request) (map[string]interface{}, bool) {
	if r.Body == nil {
		return nil, false
	}
	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		logger.Debugf("ignoring unparseable request body - method:%s, path:%s: %v", r.Method, r.URL.Path, err)
		return nil, false
	}
	return body, true
}

// mergeDocuments shallow-merges overlay fields over a template object. With
// skipNull set, null overlay values are dropped so prior values survive,
// giving partial-update semantics. Non-object templates pass through.
func mergeDocuments(template interface{}, overlay map[string]interface{}, skipNull bool) interface{} {
	base, ok := template.(map[string]interface{})
	if !ok {
		return template
	}
	merged := make(map[string]interface{}, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		if skipNull && v == nil {
			continue
		}
		merged[k] = v
	}
	return merged
}

// forceIDParam pins the id field of an object payload to the request's id
// path parameter, coerced to an integer when numeric.
func forceIDParam(doc interface{}, params map[string]string) interface{} {
	id, hasID := params[payload.IDParam]
	if !hasID {
		return doc
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return doc
	}
	if n, err := strconv.Atoi(id); err == nil {
		obj["id"] = n
	} else {
		obj["id"] = id
	}
	return obj
}
