package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeverityCategory is one named group of trigger keywords. Categories are checked
// in file order, so the most urgent goes first.
type SeverityCategory struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type SeverityConfig struct {
	Categories []SeverityCategory `yaml:"categories"`
}

func DefaultSeverityConfig() *SeverityConfig {
	return &SeverityConfig{
		Categories: []SeverityCategory{
			{Name: "crisis", Keywords: []string{"suicidal", "end it all"}},
			{Name: "emergency", Keywords: []string{"emergency", "accident", "hospital"}},
			{Name: "stress", Keywords: []string{"stressful", "family issue"}},
			{Name: "distress", Keywords: []string{"depressed", "sad", "hopeless", "worthless", "empty", "alone", "miserable"}},
		},
	}
}

// LoadSeverityConfig reads path, falling back to the defaults when the file does not exist.
func LoadSeverityConfig(path string) (*SeverityConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSeverityConfig(), nil
		}
		return nil, fmt.Errorf("read severity config: %w", err)
	}

	var cfg SeverityConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode severity config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SeverityConfig) Validate() error {
	if len(c.Categories) == 0 {
		return errors.New("severity config: no categories")
	}
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("severity config: category %d has no name", i)
		}
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("severity config: category %q has no keywords", cat.Name)
		}
	}
	return nil
}

func (c *SeverityConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
