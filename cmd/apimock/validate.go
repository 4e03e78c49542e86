package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
	"sigs.k8s.io/yaml"

	"github.com/apimock-project/apimock-go/internal/config"
)

// configSchema is the JSON schema every mock config file must satisfy.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Mock API configuration",
  "type": "object",
  "required": ["specFile"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string"},
    "specFile": {"type": "string"},
    "port": {"type": "integer", "minimum": 0, "maximum": 65535},
    "validation": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "request": {"enum": ["fail", "log", "ignore"]}
      }
    },
    "security": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "default": {"type": "string"},
        "conditions": {
          "type": "array",
          "items": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "queryParams": {"$ref": "#/definitions/matchers"},
              "requestHeaders": {"$ref": "#/definitions/matchers"}
            }
          }
        }
      }
    }
  },
  "definitions": {
    "matchers": {
      "type": "object",
      "additionalProperties": {
        "oneOf": [
          {"type": "string"},
          {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "value": {"type": "string"},
              "operator": {"type": "string"}
            }
          }
        ]
      }
    }
  }
}`

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate every mock config file against the config schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := config.DiscoverConfigFiles(configDir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no *-mock.yaml configs found in %s", configDir)
			}

			schemaLoader := gojsonschema.NewStringLoader(configSchema)

			var invalid int
			for _, file := range files {
				errs, err := validateConfigFile(schemaLoader, file)
				if err != nil {
					return err
				}
				if len(errs) == 0 {
					cmd.Printf("✓ %s\n", file)
					continue
				}
				invalid++
				cmd.Printf("✗ %s\n", file)
				for _, desc := range errs {
					cmd.Printf("    %s\n", desc)
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d config files are invalid", invalid, len(files))
			}
			cmd.Printf("validated %d config files\n", len(files))
			return nil
		},
	}
}

// validateConfigFile checks one YAML config file against the schema and
// returns the validation failure descriptions.
func validateConfigFile(schemaLoader gojsonschema.JSONLoader, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return []string{fmt.Sprintf("not valid YAML: %v", err)}, nil
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", path, err)
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return errs, nil
}
