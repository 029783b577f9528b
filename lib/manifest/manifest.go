// Package manifest declares hxmount components in a configuration file
// instead of Go code.
//
// A manifest lists components by name together with the html/template
// markup they render, the root element options and default props. Both
// HCL and YAML are accepted:
//
//	component "greeting" {
//	  template = "<p>Hello {{.name}}</p>"
//	  tag      = "section"
//	  class    = "card"
//	  props = {
//	    name = "World"
//	  }
//	}
//
//	components:
//	  - name: greeting
//	    template: "file://templates/greeting.html"
//	    props:
//	      name: World
//
// Templates are inline markup, file:// paths (relative to the manifest)
// or s3://bucket/key objects. They are fetched lazily, the first time the
// component is resolved.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for manifest files that are neither HCL nor YAML.
var ErrUnsupportedFormat = errors.New("manifest: unsupported format")

// Manifest is a decoded component manifest.
type Manifest struct {
	// Path is the file the manifest was loaded from, if any.
	Path       string
	Components []Component
}

// Component declares one registrable component.
type Component struct {
	Name     string
	Template string
	Tag      string
	Class    string
	Props    map[string]any
}

// Load reads and decodes the manifest at path. The format is chosen by
// extension: .hcl for HCL, .yaml or .yml for YAML.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Parse decodes manifest data; filename selects the format and is used in
// diagnostics.
func Parse(data []byte, filename string) (*Manifest, error) {
	var (
		m   *Manifest
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		m, err = parseHCL(data, filename)
	case ".yaml", ".yml":
		m, err = parseYAML(data, filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", filename, err)
	}
	return m, nil
}

// Names returns the component names in declaration order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Components))
	for i, c := range m.Components {
		names[i] = c.Name
	}
	return names
}

// Dir is the directory relative file:// templates are resolved against.
func (m *Manifest) Dir() string {
	if m.Path == "" {
		return "."
	}
	return filepath.Dir(m.Path)
}

func (m *Manifest) validate() error {
	seen := make(map[string]bool, len(m.Components))
	for i, c := range m.Components {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("component %d: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("component %q declared twice", c.Name)
		}
		seen[c.Name] = true
		if strings.TrimSpace(c.Template) == "" {
			return fmt.Errorf("component %q: template is required", c.Name)
		}
	}
	return nil
}
