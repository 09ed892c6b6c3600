package constraint

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"flint/internal/ecs"
	"flint/internal/query"
)

// fileConstraint is the on-disk shape of a constraint file.
type fileConstraint struct {
	Name     string `toml:"name"`
	Query    string `toml:"query"`
	Kind     string `toml:"kind"`
	Severity string `toml:"severity"`
	Message  string `toml:"message"`

	Archetype      string `toml:"archetype"`
	Component      string `toml:"component"`
	ChildArchetype string `toml:"child_archetype"`
	Field          string `toml:"field"`
	Min            float64 `toml:"min"`
	Max            float64 `toml:"max"`
	Rule           string `toml:"rule"`

	AutoFix *fileAutoFix `toml:"auto_fix"`
}

type fileAutoFix struct {
	Strategy       string                 `toml:"strategy"`
	Archetype      string                 `toml:"archetype"`
	Defaults       map[string]any         `toml:"defaults"`
	Field          string                 `toml:"field"`
	Value          any                    `toml:"value"`
	SourceField    string                 `toml:"source_field"`
}

// LoadFile parses a single constraint file into a Definition.
func LoadFile(path string) (*Definition, error) {
	var fc fileConstraint
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, ecs.NewError(ecs.ErrParseError, "constraint parse error: "+err.Error())
	}
	if fc.Name == "" {
		return nil, ecs.NewError(ecs.ErrParseError, "constraint file missing name: "+path)
	}

	q, err := query.Parse(fc.Query)
	if err != nil {
		return nil, err
	}

	def := &Definition{
		Name:           fc.Name,
		Query:          q,
		Kind:           Kind(fc.Kind),
		Severity:       Severity(fc.Severity),
		Message:        fc.Message,
		Archetype:      fc.Archetype,
		Component:      fc.Component,
		ChildArchetype: fc.ChildArchetype,
		Field:          fc.Field,
		Min:            fc.Min,
		Max:            fc.Max,
	}

	if fc.Rule != "" {
		rule, err := query.Parse(fc.Rule)
		if err != nil {
			return nil, err
		}
		def.Rule = rule
	}

	if fc.AutoFix != nil {
		fix := &AutoFix{
			Strategy:       FixStrategy(fc.AutoFix.Strategy),
			ChildArchetype: fc.AutoFix.Archetype,
			Field:          fc.AutoFix.Field,
			SourceField:    fc.AutoFix.SourceField,
		}
		if fc.AutoFix.Value != nil {
			fix.Value = decodeScalar(fc.AutoFix.Value)
		}
		if len(fc.AutoFix.Defaults) > 0 {
			fix.ChildDefaults = make(map[string]ecs.Value, len(fc.AutoFix.Defaults))
			for k, v := range fc.AutoFix.Defaults {
				fix.ChildDefaults[k] = decodeScalar(v)
			}
		}
		def.Fix = fix
	}

	return def, nil
}

// LoadDir loads every *.toml file directly under dir, returning the
// definitions that parsed successfully and the errors from those that
// didn't.
func LoadDir(dir string) ([]*Definition, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{ecs.NewError(ecs.ErrIoError, "constraint dir read error: "+err.Error())}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var defs []*Definition
	var errs []error
	for _, name := range names {
		def, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, errs
}

func decodeScalar(v any) ecs.Value {
	switch t := v.(type) {
	case bool:
		return ecs.Bool(t)
	case int64:
		return ecs.Int(t)
	case float64:
		return ecs.Float(t)
	case string:
		return ecs.String(t)
	default:
		return ecs.Nil()
	}
}
