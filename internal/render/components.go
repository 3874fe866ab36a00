package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDuplicateComponent indicates an attempt to register a component name twice.
	ErrDuplicateComponent = errors.New("render: duplicate component")
	// ErrInvalidComponent occurs when a definition has no name or its template does not parse.
	ErrInvalidComponent = errors.New("render: invalid component")
	// ErrUnknownComponent is returned when rendering a name nobody registered.
	ErrUnknownComponent = errors.New("render: unknown component")
)

// Component names emitted by the marker transform. Matching is
// case-sensitive.
const (
	ComponentButton        = "Button"
	ComponentInlineMedia   = "InlineMedia"
	ComponentAccordion     = "Accordion"
	ComponentAccordionItem = "AccordionItem"
)

// Definition describes how one component tag becomes HTML. The template
// receives the tag attributes by lower-cased name plus .Inner, the already
// expanded inner HTML.
type Definition struct {
	Name        string
	Description string
	Template    string
	// Attrs lists the attributes the template reads. Missing ones render as
	// empty strings.
	Attrs []string
	// URLAttrs are checked by the sanitizer before rendering.
	URLAttrs []string
}

type compiled struct {
	def  Definition
	tmpl *template.Template
}

// ComponentRegistry is a thread-safe set of component definitions.
type ComponentRegistry struct {
	mu         sync.RWMutex
	components map[string]compiled
}

// NewComponentRegistry returns an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{components: make(map[string]compiled)}
}

// DefaultComponents returns a registry holding BuiltInComponents.
func DefaultComponents() *ComponentRegistry {
	registry := NewComponentRegistry()
	for _, def := range BuiltInComponents() {
		if err := registry.Register(def); err != nil {
			panic(err)
		}
	}
	return registry
}

// Register compiles and stores a definition.
func (r *ComponentRegistry) Register(def Definition) error {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return ErrInvalidComponent
	}
	tmpl, err := template.New(name).Parse(def.Template)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidComponent, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, name)
	}
	def.Name = name
	r.components[name] = compiled{def: def, tmpl: tmpl}
	return nil
}

// Has reports whether name is registered.
func (r *ComponentRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.components[name]
	return ok
}

// Get returns the definition stored under name.
func (r *ComponentRegistry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c.def, ok
}

// List returns all definitions in name order.
func (r *ComponentRegistry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.components))
	for _, c := range r.components {
		out = append(out, c.def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Render executes the component template.
func (r *ComponentRegistry) Render(name string, attrs map[string]string, inner string) (string, error) {
	r.mu.RLock()
	c, ok := r.components[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}

	data := make(map[string]any, len(attrs)+len(c.def.Attrs)+1)
	for _, key := range c.def.Attrs {
		data[key] = ""
	}
	for key, value := range attrs {
		data[key] = value
	}
	data["Inner"] = template.HTML(inner)

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render: component %s: %w", name, err)
	}
	return buf.String(), nil
}

// BuiltInComponents returns the four components the marker transform emits.
func BuiltInComponents() []Definition {
	return []Definition{
		{
			Name:        ComponentButton,
			Description: "Centered call-to-action link",
			Attrs:       []string{"href"},
			URLAttrs:    []string{"href"},
			Template:    `<span class="cta"><a class="cta__button" href="{{ .href }}">{{ .Inner }}</a></span>`,
		},
		{
			Name:        ComponentInlineMedia,
			Description: "Full-width image with optional caption",
			Attrs:       []string{"src", "alt", "caption"},
			URLAttrs:    []string{"src"},
			Template: `{{- if .src -}}
<span class="inline-media"><img class="inline-media__image" src="{{ .src }}" alt="{{ or .alt "Illustration" }}" loading="lazy">
{{- if .caption }}<span class="inline-media__caption">{{ .caption }}</span>{{ end -}}
</span>
{{- end -}}`,
		},
		{
			Name:        ComponentAccordion,
			Description: "Container grouping consecutive accordion items",
			Template:    `<div class="accordion">{{ .Inner }}</div>`,
		},
		{
			Name:        ComponentAccordionItem,
			Description: "Expandable question and answer",
			Attrs:       []string{"title"},
			Template:    `<details class="accordion__item"><summary class="accordion__title">{{ .title }}</summary><div class="accordion__answer">{{ .Inner }}</div></details>`,
		},
	}
}
