package model

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedItem is one catalog entry in a seed file. Detail is stored verbatim so
// that upstream field spellings survive the round trip.
type SeedItem struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Price    float64        `yaml:"price"`
	ImageURL string         `yaml:"image_url"`
	Detail   map[string]any `yaml:"detail,omitempty"`
}

// Item returns the catalog record for the seed entry.
func (s SeedItem) Item() Item {
	return Item{ID: s.ID, Name: s.Name, Price: s.Price, ImageURL: s.ImageURL}
}

// SeedFile is a catalog seed document. YAML and JSON are both accepted.
type SeedFile struct {
	Items []SeedItem `yaml:"items"`
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}

// ParseSeed decodes a seed document. Every item needs a unique, non-empty id
// and a name.
func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}

	seen := make(map[string]bool, len(seed.Items))
	for i, item := range seed.Items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, fmt.Errorf("item %d: id is required", i)
		}
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("item %q: name is required", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("item %q: duplicate id", id)
		}
		seen[id] = true
		seed.Items[i].ID = id
	}

	return &seed, nil
}
