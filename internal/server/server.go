package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	validator "github.com/pb33f/libopenapi-validator"

	"github.com/apimock-project/apimock-go/internal/config"
	"github.com/apimock-project/apimock-go/internal/payload"
	"github.com/apimock-project/apimock-go/internal/spec"
	"github.com/apimock-project/apimock-go/internal/state"
	"github.com/apimock-project/apimock-go/pkg/logger"
)

const (
	// startupAttempts bounds the socket polling budget during Start
	startupAttempts = 50
	startupInterval = 100 * time.Millisecond

	shutdownTimeout = 2 * time.Second
)

// route binds one declared (method, path template) pair to its handler.
type route struct {
	method   string
	template string
	handle   func(w http.ResponseWriter, r *http.Request, params map[string]string)
}

// Server is a mock HTTP API server built from an OpenAPI specification. It
// serves the canned payloads declared through the spec's vendor extensions
// and tracks simulated resource deletions for its own lifetime.
type Server struct {
	cfg      *config.APIConfig
	loader   *spec.Loader
	resolver *payload.Resolver
	tracker  *state.Tracker
	routes   []route

	validator validator.Validator

	httpServer *http.Server
	listener   net.Listener
}

// New constructs a mock server for one API config. The spec is loaded and the
// route table built immediately; configuration errors are fatal here, before
// the server ever binds a port.
func New(cfg *config.APIConfig) (*Server, error) {
	specPath := cfg.SpecFile
	if !filepath.IsAbs(specPath) {
		specPath = filepath.Join(cfg.BaseDir(), specPath)
	}

	loader := spec.NewLoader(specPath)
	if err := loader.Load(); err != nil {
		return nil, fmt.Errorf("failed to initialise mock %s API: %w", cfg.Name, err)
	}

	s := &Server{
		cfg:      cfg,
		loader:   loader,
		resolver: payload.NewResolver(loader),
		tracker:  state.NewTracker(cfg.Name),
	}

	if cfg.Validation.IsRequestValidationEnabled() {
		document, err := loader.Document()
		if err != nil {
			return nil, err
		}
		v, errs := validator.NewValidator(document)
		if len(errs) > 0 {
			return nil, fmt.Errorf("failed to build request validator for %s: %v", cfg.Name, errs)
		}
		s.validator = v
	}

	if err := s.buildRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// buildRoutes creates one handler per (path, method) pair declared in the
// spec. Each closure captures its own template; dispatch at request time is a
// linear scan in document order.
func (s *Server) buildRoutes() error {
	templates, err := s.loader.Templates()
	if err != nil {
		return err
	}

	for _, tmpl := range templates {
		method, template := tmpl.Method, tmpl.Path
		s.routes = append(s.routes, route{
			method:   method,
			template: template,
			handle: func(w http.ResponseWriter, r *http.Request, params map[string]string) {
				s.dispatch(w, r, method, template, params)
			},
		})
		logger.Debugf("registered mock route - api:%s, method:%s, path:%s", s.cfg.Name, method, template)
	}
	return nil
}

// Loader exposes the spec loader, e.g. for endpoint introspection.
func (s *Server) Loader() *spec.Loader {
	return s.loader
}

// Resolver exposes the payload resolver, letting callers fetch payloads for
// non-default status codes directly.
func (s *Server) Resolver() *payload.Resolver {
	return s.resolver
}

// Reset clears all recorded lifecycle state, making previously deleted
// resources resolvable again. Callers must not invoke it concurrently with
// in-flight requests.
func (s *Server) Reset() {
	s.tracker.Reset()
}

// Start binds the loopback interface and serves in a background goroutine.
// It blocks until the listener is confirmed accepting connections, within a
// bounded retry budget. Calling Start on a running server is a no-op.
func (s *Server) Start() error {
	if s.listener != nil {
		return nil
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind mock %s API on %s: %w", s.cfg.Name, addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{Handler: s}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("mock %s API stopped unexpectedly: %v", s.cfg.Name, err)
		}
	}()

	if err := awaitListening(ln.Addr().String()); err != nil {
		_ = s.Stop()
		return fmt.Errorf("mock %s API failed to start: %w", s.cfg.Name, err)
	}

	logger.Infof("mock %s API listening on %s", s.cfg.Name, s.BaseURL())
	return nil
}

// awaitListening polls the address until a TCP connection succeeds.
func awaitListening(addr string) error {
	for attempt := 0; attempt < startupAttempts; attempt++ {
		conn, err := net.DialTimeout("tcp", addr, startupInterval)
		if err == nil {
			return conn.Close()
		}
		time.Sleep(startupInterval)
	}
	return fmt.Errorf("listener on %s not accepting connections after %d attempts", addr, startupAttempts)
}

// Stop signals the listener to stop and waits for in-flight requests to
// finish, within a bounded timeout. Lifecycle state is cleared.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.httpServer = nil
	s.listener = nil
	s.tracker.Reset()

	if err != nil {
		return fmt.Errorf("failed to stop mock %s API: %w", s.cfg.Name, err)
	}
	logger.Infof("mock %s API stopped", s.cfg.Name)
	return nil
}

// BaseURL returns the server's address, e.g. "http://127.0.0.1:49152".
// Only valid after Start has returned successfully.
func (s *Server) BaseURL() string {
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}

// Port returns the bound port, or 0 when the server is not running.
func (s *Server) Port() int {
	if s.listener == nil {
		return 0
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}
