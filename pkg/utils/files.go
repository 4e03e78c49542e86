package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveWithin joins a file reference onto baseDir and ensures the resolved
// path cannot escape it. Payload file locations come from spec documents, so
// traversal sequences like "../" must not reach outside the spec's directory.
func ResolveWithin(baseDir, file string) (string, error) {
	base := filepath.Clean(baseDir)
	resolved := filepath.Clean(filepath.Join(base, file))

	if resolved != base && !strings.HasPrefix(resolved, base+string(filepath.Separator)) {
		return "", fmt.Errorf("file path escapes base directory: %s", resolved)
	}
	return resolved, nil
}
