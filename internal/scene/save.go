package scene

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"flint/internal/ecs"
	"flint/internal/schema"
)

// Save walks w and writes a scene file to path: scene header, then one
// [[entity]] per live entity carrying its archetype and only the
// component fields that differ from the archetype's defaults. Entities are emitted in
// ascending entity-id order, which matches spawn/declaration order since
// ids are assigned monotonically -- this keeps round-trip
// field ordering stable for order-sensitive consumers.
func Save(path, sceneName string, w *ecs.World, registry *schema.Registry) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "[scene]\nname = %q\n", sceneName)

	for _, id := range w.AllEntities() {
		name, _ := w.GetName(id)
		archetype, _ := w.Archetype(id)

		buf.WriteString("\n[[entity]]\n")
		fmt.Fprintf(&buf, "name = %q\n", name)
		if archetype != "" {
			fmt.Fprintf(&buf, "archetype = %q\n", archetype)
		}
		if parent, ok := w.Parent(id); ok {
			parentName, _ := w.GetName(parent)
			fmt.Fprintf(&buf, "parent = %q\n", parentName)
		}

		var schemaDefault schema.Schema
		hasSchema := false
		if archetype != "" {
			if s, ok := registry.Lookup(archetype); ok {
				if concrete, ok := s.(*schema.Schema); ok {
					schemaDefault = *concrete
					hasSchema = true
				}
			}
		}

		for _, comp := range w.Components(id) {
			value, _ := w.GetComponent(id, comp)
			diff := value
			if hasSchema {
				if def, ok := schemaDefault.Default(comp); ok {
					diff = diffValue(def, value)
				}
			}
			table, isTable := diff.Table()
			if isTable && table.Len() == 0 {
				continue
			}
			writeComponentTable(&buf, comp, diff)
		}
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// diffValue returns the subset of patch's table keys whose value differs
// from base's corresponding key (recursively for nested tables). Keys
// patch doesn't carry are never included (there is nothing to diff). Keys
// present only in patch are included wholesale.
func diffValue(base, patch ecs.Value) ecs.Value {
	baseTable, baseIsTable := base.Table()
	patchTable, patchIsTable := patch.Table()
	if !baseIsTable || !patchIsTable {
		if base.Equal(patch) {
			return ecs.Nil()
		}
		return patch
	}

	out := ecs.NewTable()
	for _, k := range patchTable.Keys() {
		pv, _ := patchTable.Get(k)
		bv, had := baseTable.Get(k)
		if !had {
			out.Set(k, pv)
			continue
		}
		d := diffValue(bv, pv)
		if d.IsNil() {
			continue
		}
		out.Set(k, d)
	}
	return ecs.FromTable(out)
}

func writeComponentTable(buf *bytes.Buffer, name string, v ecs.Value) {
	table, ok := v.Table()
	if !ok {
		return
	}
	fmt.Fprintf(buf, "[entity.%s]\n", name)
	keys := table.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		val, _ := table.Get(k)
		fmt.Fprintf(buf, "%s = %s\n", k, tomlLiteral(val))
	}
}

func tomlLiteral(v ecs.Value) string {
	switch v.Kind() {
	case ecs.KindBool:
		b, _ := v.Bool()
		return fmt.Sprintf("%v", b)
	case ecs.KindInt:
		i, _ := v.Int()
		return fmt.Sprintf("%d", i)
	case ecs.KindFloat:
		f, _ := v.Float()
		return fmt.Sprintf("%g", f)
	case ecs.KindString:
		s, _ := v.String()
		return fmt.Sprintf("%q", s)
	case ecs.KindArray:
		arr, _ := v.Array()
		parts := make([]string, len(arr))
		for i, item := range arr {
			parts[i] = tomlLiteral(item)
		}
		return "[" + joinComma(parts) + "]"
	default:
		return "0"
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
