package authz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadContextFile reads an auth context snapshot from a YAML file. Intended
// for local development and tests, where the auth API that normally produces
// snapshots is not running.
func LoadContextFile(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth context fixture: %w", err)
	}

	var ctx Context
	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("failed to parse auth context fixture %s: %w", path, err)
	}

	if err := ctx.Validate(); err != nil {
		return nil, fmt.Errorf("auth context fixture %s: %w", path, err)
	}

	return &ctx, nil
}
