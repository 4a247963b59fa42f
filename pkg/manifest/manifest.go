// Package manifest loads YAML template bundles: a set of named template
// sources with shared variables, optional Starlark filters, and a
// default entry template. A bundle's templates can reference each other
// through extends and include, since they all share one construction
// namespace.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	slk "github.com/rainfd/template-engine-plus/pkg/starlark"
	"github.com/rainfd/template-engine-plus/pkg/templet"
	v "github.com/rainfd/template-engine-plus/pkg/validator"
)

// Output names a template to render and the file path to write it to.
type Output struct {
	Template string `yaml:"template"`
	Path     string `yaml:"path"`
}

func (o Output) Validate() error {
	return v.All(
		v.NotEmpty(o.Template, "output.template"),
		v.NotEmpty(o.Path, "output.path"),
	)
}

// Bundle is a parsed template bundle file.
type Bundle struct {
	// Named template sources, compiled against a shared namespace.
	Templates map[string]templet.TemplateString `yaml:"templates"`
	// Values made available to every template at compile time.
	Vars map[string]any `yaml:"vars,omitempty"`
	// Starlark source defining filter functions and extra values.
	Filters string `yaml:"filters,omitempty"`
	// Template rendered when no explicit target is requested.
	Entry string `yaml:"entry,omitempty"`
	// Render targets for batch rendering.
	Outputs []Output `yaml:"outputs,omitempty"`
}

// Load reads and parses a bundle file.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	return Parse(data)
}

// Parse decodes a bundle and validates it. Unknown fields are rejected.
func Parse(data []byte) (*Bundle, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)

	var b Bundle
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("parsing bundle: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle: %w", err)
	}
	return &b, nil
}

func (b *Bundle) Validate() error {
	outputPaths := make([]string, 0, len(b.Outputs))
	for _, o := range b.Outputs {
		outputPaths = append(outputPaths, o.Path)
	}
	if len(b.Templates) == 0 {
		return fmt.Errorf("bundle has no templates")
	}
	return v.All(
		v.MapDict(b.Templates, func(name string, _ templet.TemplateString) error {
			if !templet.IsValidName(name) {
				return fmt.Errorf("template name %q is not a valid name", name)
			}
			return nil
		}, "templates"),
		v.MapDict(b.Vars, func(name string, _ any) error {
			if !templet.IsValidName(name) {
				return fmt.Errorf("variable name %q is not a valid name", name)
			}
			return nil
		}, "vars"),
		b.validateEntry(),
		v.Each(b.Outputs),
		v.Map(b.Outputs, func(o Output, desc string) error {
			return v.KeyOf(o.Template, b.Templates, desc+".template")
		}, "outputs"),
		v.NoDuplicates(outputPaths, "output paths"),
	)
}

func (b *Bundle) validateEntry() error {
	if b.Entry == "" {
		return nil
	}
	return v.KeyOf(b.Entry, b.Templates, "entry")
}

// Namespace builds the construction namespace shared by the bundle's
// templates: filter script globals first, then vars, then the template
// sources themselves so extends and include can resolve.
func (b *Bundle) Namespace() (templet.Context, error) {
	ns := templet.Context{}
	if b.Filters != "" {
		filters, err := slk.LoadFilters(b.Filters)
		if err != nil {
			return nil, fmt.Errorf("loading filters: %w", err)
		}
		ns = ns.Merge(filters)
	}
	for name, val := range b.Vars {
		ns[name] = templet.FromGo(val)
	}
	for name, src := range b.Templates {
		ns[name] = templet.StringValue(src)
	}
	return ns, nil
}

// Compile compiles one named template of the bundle.
func (b *Bundle) Compile(name string) (*templet.Template, error) {
	src, ok := b.Templates[name]
	if !ok {
		return nil, fmt.Errorf("bundle has no template %q", name)
	}
	ns, err := b.Namespace()
	if err != nil {
		return nil, err
	}
	t, err := src.Compile(ns)
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", name, err)
	}
	return t, nil
}

// Render compiles and renders one named template against ctx.
func (b *Bundle) Render(name string, ctx templet.Context) (string, error) {
	t, err := b.Compile(name)
	if err != nil {
		return "", err
	}
	out, err := t.Render(ctx)
	if err != nil {
		return "", fmt.Errorf("rendering %q: %w", name, err)
	}
	return out, nil
}

// RenderEntry renders the bundle's entry template. When no entry is set
// and the bundle holds exactly one template, that template is used.
func (b *Bundle) RenderEntry(ctx templet.Context) (string, error) {
	name := b.Entry
	if name == "" {
		if len(b.Templates) != 1 {
			return "", fmt.Errorf("bundle has no entry template")
		}
		for n := range b.Templates {
			name = n
		}
	}
	return b.Render(name, ctx)
}

// RenderOutputs renders every output target and returns path -> text.
func (b *Bundle) RenderOutputs(ctx templet.Context) (map[string]string, error) {
	out := make(map[string]string, len(b.Outputs))
	for _, o := range b.Outputs {
		text, err := b.Render(o.Template, ctx)
		if err != nil {
			return nil, err
		}
		out[o.Path] = text
	}
	return out, nil
}
