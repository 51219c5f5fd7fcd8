// Package restaurant serves the fixed restaurant dataset behind the
// get_restaurants tool.
package restaurant

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the host baked into the dataset's image URLs.
const DefaultBaseURL = "http://localhost:10002"

// DefaultCount is used when a lookup asks for zero or fewer results.
const DefaultCount = 5

//go:embed restaurants.yaml
var datasetYAML []byte

// Restaurant is one dataset entry as handed to the model.
type Restaurant struct {
	Name     string `yaml:"name" json:"name"`
	Detail   string `yaml:"detail" json:"detail"`
	ImageURL string `yaml:"imageUrl" json:"imageUrl"`
	Rating   string `yaml:"rating" json:"rating"`
	InfoLink string `yaml:"infoLink" json:"infoLink"`
	Address  string `yaml:"address" json:"address"`
}

// Catalog answers lookups against a loaded dataset.
type Catalog struct {
	restaurants []Restaurant
	baseURL     string
}

// Load decodes the embedded dataset. Image URLs are rewritten to baseURL
// when it is non-empty.
func Load(baseURL string) (*Catalog, error) {
	return Parse(datasetYAML, baseURL)
}

// MustLoad is like Load but panics on error.
func MustLoad(baseURL string) *Catalog {
	c, err := Load(baseURL)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a YAML dataset.
func Parse(data []byte, baseURL string) (*Catalog, error) {
	var restaurants []Restaurant
	if err := yaml.Unmarshal(data, &restaurants); err != nil {
		return nil, fmt.Errorf("restaurant: decode dataset: %w", err)
	}
	return &Catalog{
		restaurants: restaurants,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Len returns the dataset size.
func (c *Catalog) Len() int { return len(c.restaurants) }

// Find returns up to count restaurants. The dataset only covers New York,
// so any other location yields an empty, non-nil slice.
func (c *Catalog) Find(cuisine, location string, count int) []Restaurant {
	_ = cuisine

	loc := strings.ToLower(location)
	if !strings.Contains(loc, "new york") && !strings.Contains(loc, "ny") {
		return []Restaurant{}
	}

	if count <= 0 {
		count = DefaultCount
	}
	count = min(count, len(c.restaurants))

	out := make([]Restaurant, count)
	copy(out, c.restaurants[:count])
	if c.baseURL != "" && c.baseURL != DefaultBaseURL {
		for i := range out {
			out[i].ImageURL = strings.Replace(out[i].ImageURL, DefaultBaseURL, c.baseURL, 1)
		}
	}
	return out
}
