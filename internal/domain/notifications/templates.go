package notifications

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

var ErrUnknownTemplate = errors.New("unknown notification template")

type Template struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Render substitutes {{key}} placeholders. Unknown placeholders are left as is.
func (t Template) Render(vars map[string]string) (string, string) {
	if len(vars) == 0 {
		return t.Title, t.Body
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	replacer := strings.NewReplacer(pairs...)
	return replacer.Replace(t.Title), replacer.Replace(t.Body)
}

type Templates map[string]Template

// LoadTemplates returns the built-in templates, overridden by entries from
// the YAML file at path when path is set.
func LoadTemplates(path string) (Templates, error) {
	out, err := parseTemplates(defaultTemplates)
	if err != nil {
		return nil, fmt.Errorf("notifications: default templates: %w", err)
	}
	if strings.TrimSpace(path) == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("notifications: read templates: %w", err)
	}
	overrides, err := parseTemplates(raw)
	if err != nil {
		return nil, fmt.Errorf("notifications: parse %s: %w", path, err)
	}
	for name, tmpl := range overrides {
		out[name] = tmpl
	}
	return out, nil
}

func parseTemplates(raw []byte) (Templates, error) {
	out := Templates{}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	for name, tmpl := range out {
		if strings.TrimSpace(tmpl.Title) == "" {
			return nil, fmt.Errorf("template %q has no title", name)
		}
	}
	return out, nil
}
