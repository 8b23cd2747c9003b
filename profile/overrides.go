package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lucasjlepore/fit-decoder/fields"
)

// Overrides names fields the built-in profile does not know, typically
// vendor-specific fields observed in the wild.
type Overrides struct {
	Messages []MessageOverride `yaml:"messages"`
}

// MessageOverride collects field overrides for one global message.
type MessageOverride struct {
	Number uint16          `yaml:"number"`
	Name   string          `yaml:"name,omitempty"`
	Fields []FieldOverride `yaml:"fields"`
}

// FieldOverride binds a plain scaled numeric descriptor to a field number.
type FieldOverride struct {
	Number uint8   `yaml:"number"`
	Name   string  `yaml:"name"`
	Scale  float64 `yaml:"scale,omitempty"`
	Offset float64 `yaml:"offset,omitempty"`
}

// LoadOverrides reads a YAML overrides file.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides file: %w", err)
	}
	var ov Overrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parse overrides file: %w", err)
	}
	for _, msg := range ov.Messages {
		for _, f := range msg.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("override for message %d field %d has no name", msg.Number, f.Number)
			}
		}
	}
	return &ov, nil
}

// Apply merges the overrides into the profile, adding messages and
// replacing any existing field bindings.
func (p *Profile) Apply(ov *Overrides) {
	for _, msg := range ov.Messages {
		if msg.Name != "" {
			p.names[msg.Number] = msg.Name
		}
		if _, ok := p.messages[msg.Number]; !ok {
			p.messages[msg.Number] = make(map[uint8]fields.Field)
		}
		for _, f := range msg.Fields {
			scale := f.Scale
			if scale == 0 {
				scale = 1
			}
			p.messages[msg.Number][f.Number] = fields.NewNumeric(f.Name, scale, f.Offset)
		}
	}
}
