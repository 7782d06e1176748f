// Package catalog loads the plan catalog from YAML.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/arena/internal/billing/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/security"
)

//go:embed plans.yaml
var defaultPlans []byte

type document struct {
	Plans []domain.Plan `yaml:"plans"`
}

// Default returns the built-in catalog.
func Default() *domain.Catalog {
	c, err := Parse(defaultPlans)
	if err != nil {
		panic(fmt.Sprintf("built-in plan catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the built-in catalog when
// path is empty.
func Load(path string) (*domain.Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := security.ReadFile(path, ".yaml", ".yml")
	if err != nil {
		return nil, fmt.Errorf("read plan catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*domain.Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	return domain.NewCatalog(doc.Plans)
}
