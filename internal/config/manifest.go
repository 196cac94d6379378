package config

import (
	"fmt"
	"os"
	"strings"

	"convoy/internal/api"
	"convoy/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Manifest is the services file submitted for a release.
type Manifest struct {
	Services []api.ServiceDeclaration `yaml:"services"`
}

// LoadManifest reads a services manifest. Structural problems (unreadable
// file, bad YAML, unnamed services) are reported here; semantic validation
// of the dependency graph is the coordinator's job.
func LoadManifest(path string) ([]api.ServiceDeclaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read services manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse services manifest %s: %w", path, err)
	}

	if len(manifest.Services) == 0 {
		return nil, fmt.Errorf("services manifest %s declares no services", path)
	}

	var unnamed []string
	for i, svc := range manifest.Services {
		if strings.TrimSpace(svc.Name) == "" {
			unnamed = append(unnamed, fmt.Sprintf("#%d", i))
		}
	}
	if len(unnamed) > 0 {
		return nil, fmt.Errorf("services manifest %s contains services without a name: %s",
			path, strings.Join(unnamed, ", "))
	}

	logging.Debug("ConfigLoader", "Loaded %d services from %s", len(manifest.Services), path)
	return manifest.Services, nil
}
