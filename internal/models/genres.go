package models

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/genres.yaml
var genresYAML []byte

// Genre is one entry of the genre selector.
type Genre struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Genres returns the built-in genre catalog in display order.
func Genres() ([]Genre, error) {
	var genres []Genre
	if err := yaml.Unmarshal(genresYAML, &genres); err != nil {
		return nil, fmt.Errorf("failed to parse genre catalog: %v", err)
	}
	return genres, nil
}

// LookupGenre finds a catalog entry by key.
func LookupGenre(key string) (Genre, bool) {
	genres, err := Genres()
	if err != nil {
		return Genre{}, false
	}
	for _, g := range genres {
		if g.Key == key {
			return g, true
		}
	}
	return Genre{}, false
}
