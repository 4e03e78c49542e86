package payload

import (
	"strings"
)

// isParamSegment reports whether a template segment is a pure {param} placeholder.
func isParamSegment(segment string) bool {
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") &&
		strings.Count(segment, "{") == 1 && strings.Count(segment, "}") == 1
}

// splitPath splits a path into segments, ignoring leading and trailing slashes.
func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

// MatchPath checks a concrete request path against a path template.
// Parameter segments match any single non-empty segment; literal segments
// must match exactly. Paths with different segment counts never match.
func MatchPath(template, actual string) bool {
	_, ok := ExtractPathParams(template, actual)
	return ok
}

// ExtractPathParams extracts path parameters by positionally zipping the
// template's segments against the actual path. It returns ok=false when the
// segment counts differ or a literal segment does not match.
func ExtractPathParams(template, actual string) (map[string]string, bool) {
	templateSegments := splitPath(template)
	actualSegments := splitPath(actual)

	if len(templateSegments) != len(actualSegments) {
		return nil, false
	}

	params := make(map[string]string)
	for i, segment := range templateSegments {
		if isParamSegment(segment) {
			if actualSegments[i] == "" {
				return nil, false
			}
			params[strings.Trim(segment, "{}")] = actualSegments[i]
		} else if segment != actualSegments[i] {
			return nil, false
		}
	}
	return params, true
}

// substitutePathParams replaces {param} placeholders in a payload file
// location with the extracted parameter values.
func substitutePathParams(file string, params map[string]string) string {
	for name, value := range params {
		file = strings.ReplaceAll(file, "{"+name+"}", value)
	}
	return file
}
