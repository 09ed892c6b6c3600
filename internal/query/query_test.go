package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flint/internal/ecs"
)

func spawnDoor(t *testing.T, w *ecs.World, name string, angle float64) ecs.EntityID {
	t.Helper()
	id, err := w.Spawn(name)
	require.NoError(t, err)
	table := ecs.NewTable()
	table.Set("open_angle", ecs.Float(angle))
	require.NoError(t, w.SetComponent(id, "door", ecs.FromTable(table)))
	return id
}

func TestQueryPlainEntitiesMatchesAll(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	w.Spawn("a")
	w.Spawn("b")

	q, err := Parse("entities")
	require.NoError(t, err)
	assert.Len(t, q.Run(w), 2)
}

func TestQueryHasComponent(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	spawnDoor(t, w, "door1", 90)
	w.Spawn("plain")

	q, err := Parse("entities where has(door)")
	require.NoError(t, err)
	ids := q.Run(w)
	require.Len(t, ids, 1)
	name, _ := w.GetName(ids[0])
	assert.Equal(t, "door1", name)
}

func TestQueryFieldComparison(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	spawnDoor(t, w, "open", 90)
	spawnDoor(t, w, "closed", 0)

	q, err := Parse("entities where door.open_angle > 0")
	require.NoError(t, err)
	ids := q.Run(w)
	require.Len(t, ids, 1)
	name, _ := w.GetName(ids[0])
	assert.Equal(t, "open", name)
}

func TestQueryAndOrNot(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	spawnDoor(t, w, "open", 90)
	spawnDoor(t, w, "closed", 0)
	w.Spawn("plain")

	q, err := Parse("entities where has(door) and not door.open_angle == 0")
	require.NoError(t, err)
	ids := q.Run(w)
	require.Len(t, ids, 1)
	name, _ := w.GetName(ids[0])
	assert.Equal(t, "open", name)

	q2, err := Parse("entities where door.open_angle > 0 or door.open_angle == 0")
	require.NoError(t, err)
	assert.Len(t, q2.Run(w), 2)
}

func TestQueryArchetypeComparison(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	registry := registryStub{schemas: map[string]ecs.ArchetypeSchema{
		"door": simpleSchema{},
	}}
	id, err := w.SpawnArchetype("d1", "door", registry)
	require.NoError(t, err)
	w.Spawn("other")

	q, err := Parse(`entities where archetype == "door"`)
	require.NoError(t, err)
	ids := q.Run(w)
	require.Len(t, ids, 1)
	assert.Equal(t, id, ids[0])
}

func TestQueryEmptyResultForQueryRule(t *testing.T) {
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	w.Spawn("a")

	q, err := Parse("entities where has(nonexistent)")
	require.NoError(t, err)
	assert.Empty(t, q.Run(w))
}

func TestQueryParseErrors(t *testing.T) {
	_, err := Parse("not entities")
	assert.Error(t, err)

	_, err = Parse("entities where (has(door)")
	assert.Error(t, err)

	_, err = Parse("entities where foo")
	assert.Error(t, err)
}

type simpleSchema struct{}

func (simpleSchema) Required() []string                       { return nil }
func (simpleSchema) Components() []string                     { return nil }
func (simpleSchema) Default(string) (ecs.Value, bool)         { return ecs.Nil(), false }

type registryStub struct {
	schemas map[string]ecs.ArchetypeSchema
}

func (r registryStub) Lookup(name string) (ecs.ArchetypeSchema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}
