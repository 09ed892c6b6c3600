// Package schema loads archetype schemas -- required components and
// default structured values -- from TOML files, giving the scene
// authoring format a schema registry to validate against.
//
// Uses the same config-loading idiom as the rest of this module: plain
// structs decoded with a third-party format library, here TOML instead
// of JSON/YAML, matching the `[section]` syntax scene/schema/constraint/
// spline files share.
package schema

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"flint/internal/ecs"
)

// fileSchema is the on-disk shape of a schema file.
type fileSchema struct {
	Name     string                       `toml:"name"`
	Required []string                     `toml:"required"`
	Defaults map[string]map[string]any    `toml:"defaults"`
}

// Schema implements ecs.ArchetypeSchema.
type Schema struct {
	name     string
	required []string
	defaults map[string]ecs.Value
	order    []string
}

func (s *Schema) Required() []string { return append([]string(nil), s.required...) }

func (s *Schema) Components() []string {
	return append([]string(nil), s.order...)
}

func (s *Schema) Default(component string) (ecs.Value, bool) {
	v, ok := s.defaults[component]
	if !ok {
		return ecs.Nil(), false
	}
	return v.Clone(), true
}

// Registry is an ordered archetype-name -> Schema mapping, implementing
// ecs.SchemaRegistry.
type Registry struct {
	names   []string
	schemas map[string]*Schema
}

func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

func (r *Registry) Lookup(name string) (ecs.ArchetypeSchema, bool) {
	s, ok := r.schemas[name]
	if !ok {
		return nil, false
	}
	return s, true
}

// Names returns every registered archetype name, in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) add(s *Schema) {
	if _, exists := r.schemas[s.name]; !exists {
		r.names = append(r.names, s.name)
	}
	r.schemas[s.name] = s
}

// LoadFile parses a single schema file and registers it.
func (r *Registry) LoadFile(path string) error {
	var fs fileSchema
	if _, err := toml.DecodeFile(path, &fs); err != nil {
		return ecs.NewError(ecs.ErrParseError, "schema parse error: "+err.Error())
	}
	if fs.Name == "" {
		return ecs.NewError(ecs.ErrParseError, "schema file missing name: "+path)
	}

	s := &Schema{
		name:     fs.Name,
		required: fs.Required,
		defaults: make(map[string]ecs.Value),
	}

	// Deterministic component ordering: sort component table names so the
	// registry's Components() listing (used by spawn_archetype seeding) is
	// reproducible across runs regardless of TOML map iteration order.
	compNames := make([]string, 0, len(fs.Defaults))
	for comp := range fs.Defaults {
		compNames = append(compNames, comp)
	}
	sort.Strings(compNames)

	for _, comp := range compNames {
		s.defaults[comp] = decodeAny(fs.Defaults[comp])
		s.order = append(s.order, comp)
	}

	r.add(s)
	return nil
}

// LoadDir loads every *.toml file directly under dir. Non-fatal per file: a parse
// error on one schema is collected and returned, but the remaining files
// still load, so one bad schema file doesn't block the rest of the
// registry from loading.
func (r *Registry) LoadDir(dir string) []error {
	var errs []error
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []error{ecs.NewError(ecs.ErrIoError, "schema dir read error: "+err.Error())}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// decodeAny converts a TOML-decoded map[string]any (BurntSushi/toml
// represents nested tables as map[string]any, arrays as []any) into an
// ecs.Value tree.
func decodeAny(v any) ecs.Value {
	switch t := v.(type) {
	case nil:
		return ecs.Nil()
	case bool:
		return ecs.Bool(t)
	case int64:
		return ecs.Int(t)
	case int:
		return ecs.Int(int64(t))
	case float64:
		return ecs.Float(t)
	case string:
		return ecs.String(t)
	case []any:
		items := make([]ecs.Value, len(t))
		for i, item := range t {
			items[i] = decodeAny(item)
		}
		return ecs.Array(items...)
	case map[string]any:
		table := ecs.NewTable()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			table.Set(k, decodeAny(t[k]))
		}
		return ecs.FromTable(table)
	default:
		return ecs.Nil()
	}
}
