package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/apimock-project/apimock-go/test/testutils"
)

func TestValidateConfigFile(t *testing.T) {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	dir := t.TempDir()

	tests := []struct {
		name      string
		content   string
		wantValid bool
	}{
		{
			name: "minimal config",
			content: `specFile: posts-api.yaml
`,
			wantValid: true,
		},
		{
			name: "full config",
			content: `name: posts
specFile: posts-api.yaml
port: 9090
validation:
  request: fail
security:
  default: Deny
  conditions:
    - queryParams:
        api_key: DEMO_KEY
    - requestHeaders:
        Authorization:
          value: "Bearer "
          operator: Contains
`,
			wantValid: true,
		},
		{
			name: "missing specFile",
			content: `name: posts
`,
			wantValid: false,
		},
		{
			name: "unknown field",
			content: `specFile: posts-api.yaml
plugin: soap
`,
			wantValid: false,
		},
		{
			name: "bad validation behaviour",
			content: `specFile: posts-api.yaml
validation:
  request: explode
`,
			wantValid: false,
		},
		{
			name: "port out of range",
			content: `specFile: posts-api.yaml
port: 99999
`,
			wantValid: false,
		},
		{
			name: "not valid yaml",
			content: `specFile: [unterminated
`,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutils.WriteFile(t, dir, "candidate-mock.yaml", tt.content)

			errs, err := validateConfigFile(schemaLoader, path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, len(errs) == 0, "errors: %v", errs)
		})
	}
}
