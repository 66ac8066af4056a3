package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BlacklistWords returns Blacklist followed by the words listed in
// BlacklistFile. The file holds a single list, written as a JSON array or
// a YAML sequence. Words are returned as written.
func (c ImportConfig) BlacklistWords() ([]string, error) {
	words := append([]string(nil), c.Blacklist...)
	if c.BlacklistFile == "" {
		return words, nil
	}
	data, err := os.ReadFile(c.BlacklistFile)
	if err != nil {
		return nil, fmt.Errorf("config: blacklist: %w", err)
	}
	var listed []string
	if err := yaml.Unmarshal(data, &listed); err != nil {
		return nil, fmt.Errorf("config: blacklist %s: %w", c.BlacklistFile, err)
	}
	return append(words, listed...), nil
}
