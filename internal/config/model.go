package config

import (
	"fmt"
	"regexp"
	"strings"
)

// APIConfig describes one mocked upstream API.
type APIConfig struct {
	// Name identifies the API and scopes its lifecycle state
	Name string `yaml:"name"`

	// SpecFile is the OpenAPI document path, relative to the config file's directory
	SpecFile string `yaml:"specFile"`

	// Port to bind on the loopback interface; 0 selects an OS-assigned port
	Port int `yaml:"port"`

	Validation *ValidationConfig `yaml:"validation,omitempty"`
	Security   *SecurityConfig   `yaml:"security,omitempty"`

	// baseDir is the directory containing the config file; spec and payload
	// paths are resolved against it
	baseDir string
}

// BaseDir returns the directory the config file was loaded from.
func (c *APIConfig) BaseDir() string {
	return c.baseDir
}

// SetBaseDir records the directory paths are resolved against. Exposed for
// configs constructed programmatically rather than loaded from disk.
func (c *APIConfig) SetBaseDir(dir string) {
	c.baseDir = dir
}

// Validation behaviours for incoming requests.
const (
	ValidationBehaviourFail   = "fail"
	ValidationBehaviourLog    = "log"
	ValidationBehaviourIgnore = "ignore"
)

// ValidationConfig controls request validation against the OpenAPI spec.
type ValidationConfig struct {
	Request string `yaml:"request"`
}

// IsRequestValidationEnabled reports whether requests should be validated at all.
func (v *ValidationConfig) IsRequestValidationEnabled() bool {
	return v != nil && v.Request != "" && v.Request != ValidationBehaviourIgnore
}

// RequestBehaviour returns the configured behaviour, defaulting to ignore.
func (v *ValidationConfig) RequestBehaviour() string {
	if v == nil || v.Request == "" {
		return ValidationBehaviourIgnore
	}
	return v.Request
}

// SecurityConfig simulates an upstream's authentication checks.
type SecurityConfig struct {
	Default    string              `yaml:"default"`
	Conditions []SecurityCondition `yaml:"conditions"`
}

// SecurityCondition grants access when all of its matchers pass.
type SecurityCondition struct {
	QueryParams    map[string]MatcherUnmarshaler `yaml:"queryParams,omitempty"`
	RequestHeaders map[string]MatcherUnmarshaler `yaml:"requestHeaders,omitempty"`
}

// Matcher represents anything that can be matched against a value
type Matcher interface {
	Match(actualValue string) bool
}

// StringMatcher is a simple string matcher that checks for exact equality
type StringMatcher string

func (s StringMatcher) Match(actualValue string) bool {
	return string(s) == actualValue
}

// MatchCondition represents a condition for matching request values
type MatchCondition struct {
	Value    string `yaml:"value"`
	Operator string `yaml:"operator"`
}

func (m MatchCondition) Match(actualValue string) bool {
	switch m.Operator {
	case "EqualTo", "":
		return actualValue == m.Value
	case "NotEqualTo":
		return actualValue != m.Value
	case "Exists":
		return actualValue != ""
	case "NotExists":
		return actualValue == ""
	case "Contains":
		return strings.Contains(actualValue, m.Value)
	case "NotContains":
		return !strings.Contains(actualValue, m.Value)
	case "Matches":
		matched, _ := regexp.MatchString(m.Value, actualValue)
		return matched
	case "NotMatches":
		matched, _ := regexp.MatchString(m.Value, actualValue)
		return !matched
	default:
		return false
	}
}

// MatcherUnmarshaler is a helper type for unmarshaling Matcher from YAML
type MatcherUnmarshaler struct {
	Matcher Matcher
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for MatcherUnmarshaler
func (mu *MatcherUnmarshaler) UnmarshalYAML(unmarshal func(interface{}) error) error {
	// First try to unmarshal as a simple string
	var str string
	if err := unmarshal(&str); err == nil {
		mu.Matcher = StringMatcher(str)
		return nil
	}

	// If that fails, try to unmarshal as a MatchCondition
	var mc MatchCondition
	if err := unmarshal(&mc); err == nil {
		mu.Matcher = mc
		return nil
	}

	return fmt.Errorf("failed to unmarshal as either string or MatchCondition")
}
