package payload

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/apimock-project/apimock-go/internal/spec"
	"github.com/apimock-project/apimock-go/pkg/logger"
)

// IDParam is the path parameter name that triggers per-resource resolution.
const IDParam = "id"

// Resolver finds the best-matching stored payload for a request.
type Resolver struct {
	loader *spec.Loader
}

// NewResolver creates a resolver over the given spec loader.
func NewResolver(loader *spec.Loader) *Resolver {
	return &Resolver{loader: loader}
}

// Loader returns the spec loader owned by this resolver.
func (r *Resolver) Loader() *spec.Loader {
	return r.loader
}

// Resolve finds the payload for a concrete request path by scanning the
// declared path templates. Callers holding the matched template already
// should use ResolveTemplate instead.
func (r *Resolver) Resolve(method, concretePath, status string) (interface{}, bool) {
	templates, err := r.loader.Templates()
	if err != nil {
		logger.Errorf("failed to list spec templates: %v", err)
		return nil, false
	}

	for _, tmpl := range templates {
		if !strings.EqualFold(tmpl.Method, method) {
			continue
		}
		params, ok := ExtractPathParams(tmpl.Path, concretePath)
		if !ok {
			continue
		}
		if doc, found := r.ResolveTemplate(method, tmpl.Path, status, params); found {
			return doc, true
		}
	}
	return nil, false
}

// ResolveTemplate resolves the payload declared for (method, path template,
// status), applying per-id selection when the request carries an "id" path
// parameter:
//
//  1. an explicit id entry in the x-mock-payload-ids manifest wins;
//  2. otherwise the stored payload location has its {param} placeholders
//     substituted and the resulting file is used if it exists;
//  3. a generic template payload never satisfies a request for a specific id
//     it does not cover.
//
// Error-status payloads (4xx/5xx) are generic bodies and served unmodified.
// Every call returns a fresh parse; stored files are never mutated.
func (r *Resolver) ResolveTemplate(method, templatePath, status string, params map[string]string) (interface{}, bool) {
	endpoint, ok := r.loader.EndpointFor(method, templatePath, status)
	if !ok {
		return nil, false
	}

	id, hasID := params[IDParam]

	// Per-id manifest lookup applies regardless of status
	if hasID && endpoint.IDPayloads != nil {
		if file, declared := endpoint.IDPayloads[id]; declared {
			return r.loadFile(file)
		}
		if !isErrorStatus(status) {
			// a manifest is the authoritative id list; ids it omits do not resolve
			return nil, false
		}
	}

	if hasID && !isErrorStatus(status) {
		if endpoint.PayloadFile == "" {
			return nil, false
		}
		substituted := substitutePathParams(endpoint.PayloadFile, params)
		if substituted != endpoint.PayloadFile {
			if _, err := os.Stat(substituted); err == nil {
				return r.loadFile(substituted)
			}
			return nil, false
		}
		// generic template with no per-id declaration: never used to satisfy
		// a request for one specific resource
		return nil, false
	}

	if endpoint.PayloadFile != "" {
		return r.loadFile(endpoint.PayloadFile)
	}

	if endpoint.Example != nil {
		return copyDocument(endpoint.Example)
	}

	return nil, false
}

// ResolveRequestExample returns the declared example request body for an operation.
func (r *Resolver) ResolveRequestExample(method, templatePath string) (interface{}, bool) {
	file, ok := r.loader.RequestPayloadPathFor(method, templatePath)
	if !ok {
		return nil, false
	}
	return r.loadFile(file)
}

// loadFile parses a JSON payload file. Each call returns a fresh document.
func (r *Resolver) loadFile(path string) (interface{}, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warnf("payload file not readable: %s: %v", path, err)
		return nil, false
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warnf("payload file is not valid JSON: %s: %v", path, err)
		return nil, false
	}
	return doc, true
}

// copyDocument deep-copies a JSON-compatible document so callers never share
// a mutable reference with the loader's cached example.
func copyDocument(doc interface{}) (interface{}, bool) {
	data, err := json.Marshal(doc)
	if err != nil {
		logger.Warnf("failed to copy example document: %v", err)
		return nil, false
	}
	var fresh interface{}
	if err := json.Unmarshal(data, &fresh); err != nil {
		return nil, false
	}
	return fresh, true
}

// isErrorStatus reports whether a status string denotes a 4xx/5xx response.
func isErrorStatus(status string) bool {
	code, err := strconv.Atoi(status)
	return err == nil && code >= 400
}
