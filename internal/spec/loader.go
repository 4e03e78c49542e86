package spec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"github.com/apimock-project/apimock-go/pkg/logger"
	"github.com/apimock-project/apimock-go/pkg/utils"
)

// Vendor extensions read from the OpenAPI document.
const (
	payloadExtension    = "x-mock-payload"
	payloadIDsExtension = "x-mock-payload-ids"
	requestExtension    = "x-mock-request"
)

// RequestMarker is the pseudo status code keying example request bodies.
const RequestMarker = "request"

var (
	// ErrSpecNotFound indicates the OpenAPI document does not exist
	ErrSpecNotFound = errors.New("spec file not found")

	// ErrSpecParse indicates the OpenAPI document could not be parsed
	ErrSpecParse = errors.New("spec file is malformed")
)

// EndpointKey identifies one declared payload mapping.
type EndpointKey struct {
	Method string
	Path   string
	Status string
}

func (k EndpointKey) String() string {
	return fmt.Sprintf("%s %s %s", k.Method, k.Path, k.Status)
}

// Endpoint holds everything declared for one (method, path, status) triple.
type Endpoint struct {
	// PayloadFile is the resolved payload file path from x-mock-payload
	PayloadFile string

	// IDPayloads maps a resource id to a resolved payload file, from x-mock-payload-ids
	IDPayloads map[string]string

	// Example is the inline OpenAPI example for the response, used as a
	// fallback when no payload file is declared
	Example interface{}
}

// Template is a declared (method, path template) pair.
type Template struct {
	Method string
	Path   string
}

// Loader parses an OpenAPI document once and derives the endpoint map.
type Loader struct {
	specPath string
	specDir  string

	mu        sync.Mutex
	loaded    bool
	document  libopenapi.Document
	endpoints map[EndpointKey]Endpoint
	templates []Template
}

// NewLoader creates a loader for the given OpenAPI YAML file. The document
// is not read until Load is called.
func NewLoader(specPath string) *Loader {
	return &Loader{
		specPath: specPath,
		specDir:  filepath.Dir(specPath),
	}
}

// Load parses the specification and builds the endpoint map. The result is
// cached; subsequent calls return without re-parsing.
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

func (l *Loader) loadLocked() error {
	if l.loaded {
		return nil
	}

	data, err := os.ReadFile(l.specPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSpecNotFound, l.specPath)
		}
		return fmt.Errorf("failed to read spec file %s: %w", l.specPath, err)
	}

	document, err := libopenapi.NewDocument(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSpecParse, l.specPath, err)
	}

	v3Model, buildErr := document.BuildV3Model()
	if buildErr != nil {
		errs := []error{buildErr}
		if joined, ok := buildErr.(interface{ Unwrap() []error }); ok {
			errs = joined.Unwrap()
		}
		var errorMessages []string
		for i := range errs {
			errorMessages = append(errorMessages, errs[i].Error())
		}
		return fmt.Errorf("%w: %s: %d errors reported: %s",
			ErrSpecParse, l.specPath, len(errs), strings.Join(errorMessages, "; "))
	}

	l.document = document
	l.endpoints = make(map[EndpointKey]Endpoint)
	l.templates = nil
	l.buildEndpointMap(v3Model)
	l.loaded = true

	logger.Debugf("loaded spec %s: %d templates, %d endpoint mappings",
		l.specPath, len(l.templates), len(l.endpoints))
	return nil
}

// buildEndpointMap walks the document's paths and records every declared
// payload mapping, per-id manifest, inline example and example request body.
func (l *Loader) buildEndpointMap(v3Model *libopenapi.DocumentModel[v3.Document]) {
	if v3Model.Model.Paths == nil {
		return
	}

	for path, pathItem := range v3Model.Model.Paths.PathItems.FromOldest() {
		operations := pathItem.GetOperations()
		for method, operation := range operations.FromOldest() {
			method = strings.ToUpper(method)
			l.templates = append(l.templates, Template{Method: method, Path: path})

			if operation.Responses != nil {
				for code, resp := range operation.Responses.Codes.FromOldest() {
					l.recordResponse(EndpointKey{Method: method, Path: path, Status: code}, resp)
				}
			}

			l.recordRequestBody(EndpointKey{Method: method, Path: path, Status: RequestMarker}, operation)
		}
	}
}

// recordResponse captures the payload extensions and inline example of one response.
func (l *Loader) recordResponse(key EndpointKey, resp *v3.Response) {
	endpoint := Endpoint{}

	if file := extensionString(resp.Extensions, payloadExtension); file != "" {
		endpoint.PayloadFile = l.resolvePayloadPath(file)
	}

	if manifest := extensionStringMap(resp.Extensions, payloadIDsExtension); len(manifest) > 0 {
		endpoint.IDPayloads = make(map[string]string, len(manifest))
		for id, file := range manifest {
			endpoint.IDPayloads[id] = l.resolvePayloadPath(file)
		}
	}

	if resp.Content != nil {
		for _, content := range resp.Content.FromOldest() {
			if example := yamlNodeToObj(content.Example); example != nil {
				endpoint.Example = example
				break
			}
			if content.Examples != nil && content.Examples.Len() > 0 {
				named := content.Examples.Oldest().Value
				if example := yamlNodeToObj(named.Value); example != nil {
					endpoint.Example = example
					break
				}
			}
		}
	}

	if endpoint.PayloadFile == "" && endpoint.IDPayloads == nil && endpoint.Example == nil {
		// nothing declared for this status; absence is only an error at resolution time
		return
	}
	l.endpoints[key] = endpoint
}

// recordRequestBody captures the example request body extension, if declared.
func (l *Loader) recordRequestBody(key EndpointKey, operation *v3.Operation) {
	if operation.RequestBody == nil || operation.RequestBody.Content == nil {
		return
	}
	for _, content := range operation.RequestBody.Content.FromOldest() {
		if file := extensionString(content.Extensions, requestExtension); file != "" {
			l.endpoints[key] = Endpoint{PayloadFile: l.resolvePayloadPath(file)}
			return
		}
	}
}

// resolvePayloadPath resolves a payload file location against the spec's
// directory. References that escape the directory are dropped.
func (l *Loader) resolvePayloadPath(file string) string {
	resolved, err := utils.ResolveWithin(l.specDir, file)
	if err != nil {
		logger.Warnf("ignoring payload reference in %s: %v", l.specPath, err)
		return ""
	}
	return resolved
}

// ensureLoaded loads the document on first use.
func (l *Loader) ensureLoaded() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

// EndpointFor returns everything declared for an exact (method, path
// template, status) triple. The path must be the literal template as written
// in the spec, not a resolved concrete path.
func (l *Loader) EndpointFor(method, path, status string) (Endpoint, bool) {
	if err := l.ensureLoaded(); err != nil {
		logger.Errorf("failed to load spec: %v", err)
		return Endpoint{}, false
	}
	endpoint, ok := l.endpoints[EndpointKey{Method: strings.ToUpper(method), Path: path, Status: status}]
	return endpoint, ok
}

// PayloadPathFor returns the configured payload file for the given triple.
func (l *Loader) PayloadPathFor(method, path, status string) (string, bool) {
	endpoint, ok := l.EndpointFor(method, path, status)
	if !ok || endpoint.PayloadFile == "" {
		return "", false
	}
	return endpoint.PayloadFile, true
}

// RequestPayloadPathFor returns the example request body file for an operation.
func (l *Loader) RequestPayloadPathFor(method, path string) (string, bool) {
	return l.PayloadPathFor(method, path, RequestMarker)
}

// ListEndpoints returns a snapshot copy of the endpoint map for introspection.
func (l *Loader) ListEndpoints() map[EndpointKey]Endpoint {
	if err := l.ensureLoaded(); err != nil {
		logger.Errorf("failed to load spec: %v", err)
		return nil
	}
	snapshot := make(map[EndpointKey]Endpoint, len(l.endpoints))
	for k, v := range l.endpoints {
		snapshot[k] = v
	}
	return snapshot
}

// Templates returns every declared (method, path template) pair in document order.
func (l *Loader) Templates() ([]Template, error) {
	if err := l.ensureLoaded(); err != nil {
		return nil, err
	}
	templates := make([]Template, len(l.templates))
	copy(templates, l.templates)
	return templates, nil
}

// Document returns the parsed OpenAPI document, loading it if necessary.
func (l *Loader) Document() (libopenapi.Document, error) {
	if err := l.ensureLoaded(); err != nil {
		return nil, err
	}
	return l.document, nil
}

// SpecDir returns the directory containing the spec, against which payload
// file locations are resolved.
func (l *Loader) SpecDir() string {
	return l.specDir
}
