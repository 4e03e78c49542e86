package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/apimock-project/apimock-go/internal/config"
	"github.com/apimock-project/apimock-go/internal/spec"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the payload mappings declared by each configured API",
		RunE: func(cmd *cobra.Command, args []string) error {
			configs, err := config.LoadConfig(configDir)
			if err != nil {
				return err
			}
			if len(configs) == 0 {
				return fmt.Errorf("no *-mock.yaml configs found in %s", configDir)
			}

			for i := range configs {
				cfg := &configs[i]
				specPath := cfg.SpecFile
				if !filepath.IsAbs(specPath) {
					specPath = filepath.Join(cfg.BaseDir(), specPath)
				}

				loader := spec.NewLoader(specPath)
				if err := loader.Load(); err != nil {
					return err
				}

				cmd.Printf("%s (%s)\n", cfg.Name, cfg.SpecFile)
				for _, line := range formatEndpoints(loader) {
					cmd.Printf("  %s\n", line)
				}
			}
			return nil
		},
	}
}

func formatEndpoints(loader *spec.Loader) []string {
	endpoints := loader.ListEndpoints()
	lines := make([]string, 0, len(endpoints))
	for key, endpoint := range endpoints {
		switch {
		case endpoint.PayloadFile != "":
			lines = append(lines, fmt.Sprintf("%s -> %s", key, filepath.Base(endpoint.PayloadFile)))
		case len(endpoint.IDPayloads) > 0:
			lines = append(lines, fmt.Sprintf("%s -> %d per-id payloads", key, len(endpoint.IDPayloads)))
		default:
			lines = append(lines, fmt.Sprintf("%s -> inline example", key))
		}
	}
	sort.Strings(lines)
	return lines
}
