package server

import (
	"net/http"
	"strings"

	"github.com/apimock-project/apimock-go/internal/config"
	"github.com/apimock-project/apimock-go/pkg/logger"
)

// authorize evaluates the API's simulated security conditions. A request is
// allowed when any condition is fully met, or when the default effect is not
// Deny. APIs without a security block allow everything.
func (s *Server) authorize(r *http.Request) bool {
	security := s.cfg.Security
	if security == nil {
		return true
	}

	for _, condition := range security.Conditions {
		if conditionMet(condition, r) {
			return true
		}
	}

	if strings.EqualFold(security.Default, "Deny") {
		logger.Debugf("request denied by security conditions - api:%s, method:%s, path:%s",
			s.cfg.Name, r.Method, r.URL.Path)
		return false
	}
	return true
}

// conditionMet reports whether every matcher of one security condition passes.
func conditionMet(condition config.SecurityCondition, r *http.Request) bool {
	for param, mu := range condition.QueryParams {
		if !mu.Matcher.Match(r.URL.Query().Get(param)) {
			return false
		}
	}
	for header, mu := range condition.RequestHeaders {
		if !mu.Matcher.Match(r.Header.Get(header)) {
			return false
		}
	}
	return true
}
