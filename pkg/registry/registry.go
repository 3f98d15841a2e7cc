// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"listingreel-workers/internal/models"
)

// ErrTemplateNotFound is returned by Get for unknown template ids.
var ErrTemplateNotFound = fmt.Errorf("template not found")

// TemplateRegistry holds the validated edit decision list templates.
type TemplateRegistry struct {
	templates map[string]models.Template
}

// Load reads every *.json template under dir, validates each against the
// template schema, and returns the registry. A single invalid file fails
// the whole load; a half-valid registry is worse than none.
func Load(dir string) (*TemplateRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir %s: %w", dir, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(templateSchema)

	reg := &TemplateRegistry{templates: map[string]models.Template{}}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", path, err)
		}

		if err := validate(schemaLoader, data); err != nil {
			return nil, fmt.Errorf("template %s: %w", path, err)
		}

		var tpl models.Template
		if err := json.Unmarshal(data, &tpl); err != nil {
			return nil, fmt.Errorf("decode template %s: %w", path, err)
		}

		if _, exists := reg.templates[tpl.ID]; exists {
			return nil, fmt.Errorf("template %s: duplicate id %q", path, tpl.ID)
		}
		reg.templates[tpl.ID] = tpl
	}

	return reg, nil
}

func validate(schemaLoader gojsonschema.JSONLoader, data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema validation: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Get returns the template with the given id.
func (r *TemplateRegistry) Get(id string) (*models.Template, error) {
	tpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return &tpl, nil
}

// List returns all templates ordered by id.
func (r *TemplateRegistry) List() []models.Template {
	out := make([]models.Template, 0, len(r.templates))
	for _, tpl := range r.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of loaded templates.
func (r *TemplateRegistry) Len() int {
	return len(r.templates)
}
