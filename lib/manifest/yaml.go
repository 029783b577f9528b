package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlManifestFile struct {
	Components []yamlComponent `yaml:"components"`
}

type yamlComponent struct {
	Name     string         `yaml:"name"`
	Template string         `yaml:"template"`
	Tag      string         `yaml:"tag,omitempty"`
	Class    string         `yaml:"class,omitempty"`
	Props    map[string]any `yaml:"props,omitempty"`
}

func parseYAML(data []byte, filename string) (*Manifest, error) {
	var parsed yamlManifestFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	m := &Manifest{Components: make([]Component, 0, len(parsed.Components))}
	for _, c := range parsed.Components {
		props := c.Props
		if props == nil {
			props = map[string]any{}
		}
		m.Components = append(m.Components, Component{
			Name:     c.Name,
			Template: c.Template,
			Tag:      c.Tag,
			Class:    c.Class,
			Props:    props,
		})
	}
	return m, nil
}
