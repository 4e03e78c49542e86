package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/apimock-project/apimock-go/pkg/logger"
)

// LoadConfig loads every *-mock.yaml (or .yml) file in the given directory.
// Subdirectories are skipped unless APIMOCK_CONFIG_SCAN_RECURSIVE is "true".
func LoadConfig(configDir string) ([]APIConfig, error) {
	files, err := DiscoverConfigFiles(configDir)
	if err != nil {
		return nil, err
	}

	var configs []APIConfig
	for _, path := range files {
		logger.Infof("loading config file: %s", path)
		cfg, err := ParseConfigFile(path)
		if err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}
	return configs, nil
}

// DiscoverConfigFiles walks configDir and returns every mock config file path.
// Subdirectories are skipped unless APIMOCK_CONFIG_SCAN_RECURSIVE is "true".
func DiscoverConfigFiles(configDir string) ([]string, error) {
	scanRecursive := os.Getenv("APIMOCK_CONFIG_SCAN_RECURSIVE") == "true"

	var files []string
	err := filepath.Walk(configDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && info.Name() != filepath.Base(configDir) && !scanRecursive {
			return filepath.SkipDir
		}

		if !info.IsDir() && isConfigFile(info.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan configs in %s: %w", configDir, err)
	}
	return files, nil
}

func isConfigFile(name string) bool {
	return strings.HasSuffix(name, "-mock.yaml") || strings.HasSuffix(name, "-mock.yml")
}

// ParseConfigFile loads and parses a single mock API configuration file.
func ParseConfigFile(path string) (*APIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Substitute environment variables
	data = []byte(substituteEnvVars(string(data)))

	var cfg APIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if cfg.Name == "" {
		base := filepath.Base(path)
		cfg.Name = strings.TrimSuffix(strings.TrimSuffix(base, "-mock.yaml"), "-mock.yml")
	}
	if cfg.SpecFile == "" {
		return nil, fmt.Errorf("config %s does not declare a specFile", path)
	}
	cfg.baseDir = filepath.Dir(path)

	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{env\.([A-Z0-9_]+)(:-([^}]+))?\}`)

// substituteEnvVars replaces ${env.VAR} and ${env.VAR:-default} with environment variable values
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		envVar := groups[1]
		defaultValue := groups[3]
		if value, exists := os.LookupEnv(envVar); exists {
			return value
		}
		return defaultValue
	})
}
