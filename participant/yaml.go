package participant

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk shape of a participant catalog.
//
//	participants:
//	  - id: Minimalist Stylist
//	    role: creative
//	    prompt: Create a clean, modern ...
//	    description: A fashion expert ...
//	    display_tag: cyan
//	lineup:
//	  analyst: Visual Analyst
//	  coordinator: Process Coordinator
//	  creatives: [Minimalist Stylist]
//	  default_refiner: Minimalist Stylist
type Catalog struct {
	Participants []Config `yaml:"participants"`
	Lineup       Lineup   `yaml:"lineup"`
}

// Registry builds a registry from the catalog participants.
func (c Catalog) Registry() (*Registry, error) {
	return NewRegistry(c.Participants...)
}

// ParseCatalog decodes and validates a YAML catalog payload.
// A missing lineup section defaults to DefaultLineup.
func ParseCatalog(data []byte) (*Registry, Lineup, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, Lineup{}, fmt.Errorf("participant: catalog payload is empty")
	}
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, Lineup{}, fmt.Errorf("participant: decode catalog: %w", err)
	}
	reg, err := cat.Registry()
	if err != nil {
		return nil, Lineup{}, fmt.Errorf("participant: %w", err)
	}
	lineup := cat.Lineup
	if lineup.AnalystID == "" && lineup.CoordinatorID == "" && len(lineup.CreativeIDs) == 0 {
		lineup = DefaultLineup()
	}
	if lineup.DefaultRefinerID == "" && len(lineup.CreativeIDs) > 0 {
		lineup.DefaultRefinerID = lineup.CreativeIDs[0]
	}
	if err := lineup.Validate(reg); err != nil {
		return nil, Lineup{}, fmt.Errorf("participant: lineup: %w", err)
	}
	return reg, lineup, nil
}

// LoadCatalog reads a YAML catalog file from disk.
func LoadCatalog(path string) (*Registry, Lineup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Lineup{}, fmt.Errorf("participant: read %s: %w", path, err)
	}
	reg, lineup, err := ParseCatalog(data)
	if err != nil {
		return nil, Lineup{}, fmt.Errorf("%s: %w", path, err)
	}
	return reg, lineup, nil
}
