// Package scene loads and saves the declarative scene authoring format:
// a `[scene]` header, ordered `[[entity]]` stanzas, and optional
// `[[prefab]]` references spliced into the parent entity.
//
// Uses the same config-loading idiom as the rest of this module --
// TOML decode into plain structs -- driving a declaration-order
// spawn/merge/resolve-parents algorithm.
package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"flint/internal/ecs"
	"flint/internal/schema"
)

// fileScene is the on-disk shape of a scene file.
type fileScene struct {
	Scene struct {
		Name string `toml:"name"`
	} `toml:"scene"`
	Entity []fileEntity `toml:"entity"`
	Prefab []filePrefab `toml:"prefab"`
}

type fileEntity struct {
	Name       string                    `toml:"name"`
	Archetype  string                    `toml:"archetype"`
	Parent     string                    `toml:"parent"`
	Components map[string]map[string]any `toml:"-"`
}

type filePrefab struct {
	Name   string `toml:"name"`
	Path   string `toml:"path"`
	Parent string `toml:"parent"`
}

// LoadReport accumulates non-fatal issues surfaced during a scene load.
type LoadReport struct {
	SceneName string
	Errors    []error
}

// Load reads path and spawns its entities into w using registry for
// archetype defaults, via a three-phase algorithm: spawn-with-archetype,
// merge explicit fields, resolve parent links. Fails fatally (entire
// file) on UnknownArchetype, UnresolvedParent, UnresolvedPrefab, or
// DuplicateName rather than skip-and-continue, since a scene with a
// broken archetype or parent reference can't be spawned partially.
func Load(path string, w *ecs.World, registry *schema.Registry) (*LoadReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ecs.NewError(ecs.ErrIoError, "scene read error: "+err.Error())
	}

	var meta struct {
		Scene struct {
			Name string `toml:"name"`
		} `toml:"scene"`
	}
	if _, err := toml.Decode(string(raw), &meta); err != nil {
		return nil, ecs.NewError(ecs.ErrParseError, "scene parse error: "+err.Error())
	}

	// Decode entities generically so arbitrary named component sub-tables
	// (not known ahead of time) survive as raw TOML maps.
	var generic struct {
		Entity []map[string]any `toml:"entity"`
		Prefab []filePrefab     `toml:"prefab"`
	}
	if _, err := toml.Decode(string(raw), &generic); err != nil {
		return nil, ecs.NewError(ecs.ErrParseError, "scene parse error: "+err.Error())
	}

	report := &LoadReport{SceneName: meta.Scene.Name}

	type pendingParent struct {
		child  string
		parent string
	}
	var pending []pendingParent

	for _, raw := range generic.Entity {
		name, _ := raw["name"].(string)
		if name == "" {
			return report, ecs.NewError(ecs.ErrParseError, "entity missing name in "+path)
		}
		archetype, _ := raw["archetype"].(string)
		parent, _ := raw["parent"].(string)

		var id ecs.EntityID
		var err error
		if archetype != "" {
			id, err = w.SpawnArchetype(name, archetype, registry)
			if err != nil {
				return report, err
			}
		} else {
			id, err = w.Spawn(name)
			if err != nil {
				return report, err
			}
		}

		for key, val := range raw {
			if key == "name" || key == "archetype" || key == "parent" {
				continue
			}
			table, isTable := val.(map[string]any)
			if !isTable {
				continue
			}
			if err := w.MergeComponent(id, key, decodeAny(table)); err != nil {
				return report, err
			}
		}

		if parent != "" {
			pending = append(pending, pendingParent{child: name, parent: parent})
		}
	}

	for _, prefab := range generic.Prefab {
		if err := splicePrefab(w, registry, prefab, filepath.Dir(path), report); err != nil {
			return report, err
		}
	}

	for _, pp := range pending {
		childID, ok := w.GetID(pp.child)
		if !ok {
			return report, ecs.NewEntityError(ecs.ErrNotFound, "unresolved parent reference source entity "+pp.child, ecs.InvalidEntityID)
		}
		parentID, ok := w.GetID(pp.parent)
		if !ok {
			return report, ecs.NewError(unresolvedParentCode, "unresolved parent: "+pp.parent)
		}
		if err := w.SetParent(childID, parentID); err != nil {
			return report, err
		}
	}

	return report, nil
}

const unresolvedParentCode = "UNRESOLVED_PARENT"
const unresolvedPrefabCode = "UNRESOLVED_PREFAB"

// splicePrefab loads a prefab file's entities into w, disambiguating
// names with a uuid suffix so repeated prefab instances don't collide.
func splicePrefab(w *ecs.World, registry *schema.Registry, p filePrefab, baseDir string, report *LoadReport) error {
	prefabPath := filepath.Join(baseDir, p.Path)
	raw, err := os.ReadFile(prefabPath)
	if err != nil {
		return ecs.NewError(unresolvedPrefabCode, "unresolved prefab: "+p.Path)
	}

	var generic struct {
		Entity []map[string]any `toml:"entity"`
	}
	if _, err := toml.Decode(string(raw), &generic); err != nil {
		return ecs.NewError(ecs.ErrParseError, "prefab parse error: "+err.Error())
	}

	suffix := uuid.NewString()[:8]
	rename := func(n string) string { return fmt.Sprintf("%s_%s_%s", p.Name, n, suffix) }

	type pendingParent struct {
		child  string
		parent string
	}
	var pending []pendingParent

	var rootNames []string
	for _, raw := range generic.Entity {
		localName, _ := raw["name"].(string)
		if localName == "" {
			continue
		}
		fullName := rename(localName)
		archetype, _ := raw["archetype"].(string)
		localParent, _ := raw["parent"].(string)

		var id ecs.EntityID
		if archetype != "" {
			id, err = w.SpawnArchetype(fullName, archetype, registry)
			if err != nil {
				return err
			}
		} else {
			id, err = w.Spawn(fullName)
			if err != nil {
				return err
			}
		}

		for key, val := range raw {
			if key == "name" || key == "archetype" || key == "parent" {
				continue
			}
			table, isTable := val.(map[string]any)
			if !isTable {
				continue
			}
			if err := w.MergeComponent(id, key, decodeAny(table)); err != nil {
				return err
			}
		}

		if localParent != "" {
			pending = append(pending, pendingParent{child: fullName, parent: rename(localParent)})
		} else {
			rootNames = append(rootNames, fullName)
		}
	}

	for _, pp := range pending {
		childID, _ := w.GetID(pp.child)
		parentID, ok := w.GetID(pp.parent)
		if !ok {
			return ecs.NewError(unresolvedParentCode, "unresolved prefab-internal parent: "+pp.parent)
		}
		if err := w.SetParent(childID, parentID); err != nil {
			return err
		}
	}

	if p.Parent != "" {
		parentID, ok := w.GetID(p.Parent)
		if !ok {
			return ecs.NewError(unresolvedParentCode, "unresolved prefab parent: "+p.Parent)
		}
		for _, root := range rootNames {
			rootID, _ := w.GetID(root)
			if err := w.SetParent(rootID, parentID); err != nil {
				return err
			}
		}
	}

	return nil
}

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
