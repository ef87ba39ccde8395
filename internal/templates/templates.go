package templates

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer renders the notification templates embedded in the binary.
type Renderer struct {
	templates map[string]*pongo2.Template
}

// New parses every embedded template up front so malformed templates fail
// at startup rather than mid-batch.
func New() (*Renderer, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	parsed := make(map[string]*pongo2.Template, len(entries))
	for _, entry := range entries {
		raw, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", entry.Name(), err)
		}
		tpl, err := pongo2.FromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", entry.Name(), err)
		}
		parsed[entry.Name()] = tpl
	}

	return &Renderer{templates: parsed}, nil
}

// Render executes the named template with the given data
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template: %s", name)
	}

	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return out, nil
}
