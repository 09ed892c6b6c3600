// Package constraint implements scene-authoring constraint definitions,
// the validate pass, and the auto-fix loop with cycle detection.
//
// Each Definition carries a Kind and a Severity; Validate reports
// failures as Violation records.
package constraint

import (
	"fmt"
	"strings"

	"flint/internal/ecs"
	"flint/internal/query"
	"flint/internal/schema"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Kind string

const (
	KindRequiredComponent Kind = "required-component"
	KindRequiredChild     Kind = "required-child"
	KindValueRange        Kind = "value-range"
	KindReferenceValid    Kind = "reference-valid"
	KindQueryRule         Kind = "query-rule"
)

type FixStrategy string

const (
	FixAddChild          FixStrategy = "add-child"
	FixSetDefault         FixStrategy = "set-default"
	FixRemoveInvalid      FixStrategy = "remove-invalid"
	FixAssignFromParent   FixStrategy = "assign-from-parent"
)

// AutoFix describes the optional auto-fix attached to a constraint.
type AutoFix struct {
	Strategy FixStrategy

	// add-child
	ChildArchetype string
	ChildDefaults  map[string]ecs.Value

	// set-default / assign-from-parent / remove-invalid target field
	Field       string
	Value       ecs.Value
	SourceField string
}

// Definition is a parsed constraint.
type Definition struct {
	Name     string
	Query    *query.Query
	Kind     Kind
	Severity Severity
	Message  string

	// kind-specific parameters
	Archetype      string // required-component, required-child
	Component      string // required-component
	ChildArchetype string // required-child
	Field          string // value-range, reference-valid
	Min, Max       float64
	Rule           *query.Query // query-rule

	Fix *AutoFix
}

// Violation is one constraint/entity failure.
type Violation struct {
	ConstraintName string
	EntityName     string
	EntityID       ecs.EntityID
	Severity       Severity
	Message        string
	HasAutoFix     bool
}

// Report is the result of a validate pass.
type Report struct {
	Violations []Violation
}

// renderMessage substitutes {name} and {archetype} in a constraint's
// message template.
func renderMessage(tmpl, name, archetype string) string {
	r := strings.NewReplacer("{name}", name, "{archetype}", archetype)
	return r.Replace(tmpl)
}

// Validate runs every constraint's query against the world and
// accumulates violations.
func Validate(w *ecs.World, registry *schema.Registry, defs []*Definition) Report {
	var report Report
	for _, def := range defs {
		report.Violations = append(report.Violations, checkConstraint(w, registry, def)...)
	}
	return report
}

func checkConstraint(w *ecs.World, registry *schema.Registry, def *Definition) []Violation {
	var out []Violation

	matched := def.Query.Run(w)
	for _, id := range matched {
		name, _ := w.GetName(id)
		archetype, _ := w.Archetype(id)

		ok, reason := evalKind(w, registry, def, id)
		if ok {
			continue
		}
		message := renderMessage(def.Message, name, archetype)
		if def.Message == "" {
			message = reason
		}
		out = append(out, Violation{
			ConstraintName: def.Name,
			EntityName:     name,
			EntityID:       id,
			Severity:       def.Severity,
			Message:        message,
			HasAutoFix:     def.Fix != nil,
		})
	}
	return out
}

// evalKind reports ok=true when entity id satisfies constraint def; when
// ok is false, the string is a kind-specific reason, used as the
// violation message only when def has no message template.
func evalKind(w *ecs.World, registry *schema.Registry, def *Definition, id ecs.EntityID) (bool, string) {
	switch def.Kind {
	case KindRequiredComponent:
		arch, _ := w.Archetype(id)
		if def.Archetype != "" && arch != def.Archetype {
			return true, ""
		}
		return w.HasComponent(id, def.Component), fmt.Sprintf("missing required component %q", def.Component)

	case KindRequiredChild:
		for _, child := range w.Children(id) {
			if a, _ := w.Archetype(child); a == def.ChildArchetype {
				return true, ""
			}
		}
		return false, fmt.Sprintf("missing required child of archetype %q", def.ChildArchetype)

	case KindValueRange:
		comp, field, ok := splitFieldPath(def.Field)
		if !ok {
			return true, ""
		}
		v, ok := w.GetField(id, comp, field)
		if !ok {
			return true, "" // absent field is not a range violation
		}
		f, ok := v.AsFloat()
		if !ok {
			return true, ""
		}
		if f < def.Min || f > def.Max {
			return false, fmt.Sprintf("field %q value %g outside range [%g, %g]", def.Field, f, def.Min, def.Max)
		}
		return true, ""

	case KindReferenceValid:
		comp, field, ok := splitFieldPath(def.Field)
		if !ok {
			return true, ""
		}
		v, ok := w.GetField(id, comp, field)
		if !ok {
			return true, ""
		}
		s, ok := v.String()
		if !ok {
			return true, ""
		}
		_, exists := w.GetID(s)
		if !exists {
			return false, fmt.Sprintf("field %q references unknown entity %q", def.Field, s)
		}
		return true, ""

	case KindQueryRule:
		if def.Rule == nil {
			return true, ""
		}
		return len(def.Rule.Run(w)) == 0, "query rule matched one or more entities"

	default:
		return true, ""
	}
}

func splitFieldPath(path string) (component, field string, ok bool) {
	idx := strings.IndexByte(path, '.')
	if idx < 0 {
		return "", "", false
	}
	return path[:idx], path[idx+1:], true
}

// FixReport is the result of an auto-fix loop.
type FixReport struct {
	Iterations    int
	Applied       []Violation
	Final         Report
	CycleDetected bool
}

// Fix runs the validate/fix loop: iterate validate, filter to
// violations with an enabled auto-fix, apply each strategy.
// Stops when no violations remain, no fixable violations remain, a
// (constraint, entity) pair repeats (cycle), or after ten iterations.
func Fix(w *ecs.World, registry *schema.Registry, defs []*Definition) FixReport {
	const maxIterations = 10
	defsByName := make(map[string]*Definition, len(defs))
	for _, d := range defs {
		defsByName[d.Name] = d
	}

	seen := make(map[string]bool)
	var report FixReport

	for iter := 0; iter < maxIterations; iter++ {
		report.Iterations = iter + 1
		validation := Validate(w, registry, defs)
		if len(validation.Violations) == 0 {
			report.Final = validation
			return report
		}

		var fixable []Violation
		for _, v := range validation.Violations {
			if v.HasAutoFix {
				fixable = append(fixable, v)
			}
		}
		if len(fixable) == 0 {
			report.Final = validation
			return report
		}

		cycle := false
		for _, v := range fixable {
			key := v.ConstraintName + "\x00" + v.EntityName
			if seen[key] {
				cycle = true
				break
			}
			seen[key] = true
		}
		if cycle {
			report.CycleDetected = true
			report.Final = validation
			return report
		}

		for _, v := range fixable {
			def, ok := defsByName[v.ConstraintName]
			if !ok || def.Fix == nil {
				continue
			}
			if applyFix(w, registry, def, v.EntityID) {
				report.Applied = append(report.Applied, v)
			}
		}
	}

	report.Final = Validate(w, registry, defs)
	return report
}

// DryRun clones the world with the caller-supplied clone function, runs
// Fix against the clone, and discards it. The input world is only
// touched by clone itself; this package provides no clone function.
func DryRun(w *ecs.World, clone func(*ecs.World) *ecs.World, registry *schema.Registry, defs []*Definition) FixReport {
	sandbox := clone(w)
	return Fix(sandbox, registry, defs)
}

func applyFix(w *ecs.World, registry *schema.Registry, def *Definition, id ecs.EntityID) bool {
	fix := def.Fix
	switch fix.Strategy {
	case FixAddChild:
		parentName, _ := w.GetName(id)
		childName := fmt.Sprintf("%s_%s", parentName, fix.ChildArchetype)
		if _, exists := w.GetID(childName); exists {
			return false
		}
		childID, err := w.SpawnArchetype(childName, fix.ChildArchetype, registry)
		if err != nil {
			return false
		}
		for field, val := range fix.ChildDefaults {
			comp, f, ok := splitFieldPath(field)
			if !ok {
				continue
			}
			_ = w.SetField(childID, comp, f, val)
		}
		return w.SetParent(childID, id) == nil

	case FixSetDefault:
		comp, f, ok := splitFieldPath(fix.Field)
		if !ok {
			return false
		}
		return w.SetField(id, comp, f, fix.Value) == nil

	case FixRemoveInvalid:
		comp, f, ok := splitFieldPath(fix.Field)
		if !ok {
			return false
		}
		v, hasComp := w.GetComponent(id, comp)
		if !hasComp {
			return false
		}
		table, isTable := v.Table()
		if !isTable {
			return false
		}
		table.Delete(f)
		return w.SetComponent(id, comp, ecs.FromTable(table)) == nil

	case FixAssignFromParent:
		parent, ok := w.Parent(id)
		if !ok {
			return false
		}
		srcComp, srcField, ok := splitFieldPath(fix.SourceField)
		if !ok {
			return false
		}
		v, ok := w.GetField(parent, srcComp, srcField)
		if !ok {
			return false
		}
		dstComp, dstField, ok := splitFieldPath(fix.Field)
		if !ok {
			return false
		}
		return w.SetField(id, dstComp, dstField, v) == nil

	default:
		return false
	}
}
