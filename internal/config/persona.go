package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/easeaico/carl-bot/internal/rules"
)

// Persona is the conversational content of the bot: what it says and how it
// reads the user. Every field is optional in a persona file.
type Persona struct {
	Greeting string            `yaml:"greeting"`
	Farewell string            `yaml:"farewell"`
	Rules    []rules.Spec      `yaml:"rules"`
	Synonyms map[string]string `yaml:"synonyms"`
	Positive []string          `yaml:"positive"`
	Negative []string          `yaml:"negative"`
}

// LoadPersona reads a YAML persona file.
func LoadPersona(path string) (Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Persona{}, fmt.Errorf("failed to read persona file: %w", err)
	}
	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Persona{}, fmt.Errorf("failed to parse persona file: %w", err)
	}
	return p, nil
}

// Merge returns p with every non-empty field of other replacing its own.
// Lists and maps are replaced whole, not appended.
func (p Persona) Merge(other Persona) Persona {
	if other.Greeting != "" {
		p.Greeting = other.Greeting
	}
	if other.Farewell != "" {
		p.Farewell = other.Farewell
	}
	if len(other.Rules) > 0 {
		p.Rules = other.Rules
	}
	if other.Synonyms != nil {
		p.Synonyms = other.Synonyms
	}
	if other.Positive != nil {
		p.Positive = other.Positive
	}
	if other.Negative != nil {
		p.Negative = other.Negative
	}
	return p
}
