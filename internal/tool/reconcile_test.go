package tool

import (
	"reflect"
	"testing"
)

func schemaOf(required []string, params ...string) Schema {
	return Schema{Name: "test_tool", Required: required, Params: params}
}

func TestReconcile_NoParamsOrArgs(t *testing.T) {
	t.Parallel()

	args := map[string]any{"anything": 1}
	if got := Reconcile(schemaOf(nil), args); !reflect.DeepEqual(got, args) {
		t.Errorf("schema without params must pass args through, got %v", got)
	}

	empty := map[string]any{}
	if got := Reconcile(schemaOf([]string{"q"}, "q"), empty); len(got) != 0 {
		t.Errorf("empty args must pass through, got %v", got)
	}
}

func TestReconcile_ExactMatchFastPath(t *testing.T) {
	t.Parallel()

	schema := schemaOf([]string{"query"}, "query", "limit")
	args := map[string]any{"query": "weather", "extra": true}

	got := Reconcile(schema, args)
	if !reflect.DeepEqual(got, args) {
		t.Errorf("satisfied required set must pass through unchanged, got %v", got)
	}
}

func TestReconcile_SingleArgRename(t *testing.T) {
	t.Parallel()

	schema := schemaOf([]string{"query"}, "query")
	got := Reconcile(schema, map[string]any{"qeury": "weather"})

	want := map[string]any{"query": "weather"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected misspelled key renamed: got %v, want %v", got, want)
	}
}

func TestReconcile_SingleArgAbstainsBelowThreshold(t *testing.T) {
	t.Parallel()

	schema := schemaOf([]string{"query"}, "query")
	args := map[string]any{"zzzzz": "weather"}

	got := Reconcile(schema, args)
	if !reflect.DeepEqual(got, args) {
		t.Errorf("dissimilar key must not be renamed: got %v", got)
	}
}

func TestReconcile_MultiParamGreedyAssignment(t *testing.T) {
	t.Parallel()

	schema := schemaOf([]string{"to", "from"}, "to", "from")
	got := Reconcile(schema, map[string]any{"too": "NYC", "form": "SFO"})

	want := map[string]any{"to": "NYC", "from": "SFO"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected both keys remapped: got %v, want %v", got, want)
	}
}

func TestReconcile_ExactKeysKeptLooseKeysCompete(t *testing.T) {
	t.Parallel()

	schema := schemaOf([]string{"query", "limit"}, "query", "limit")
	got := Reconcile(schema, map[string]any{"query": "weather", "limti": 5})

	want := map[string]any{"query": "weather", "limit": 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected exact key kept and loose key remapped: got %v, want %v", got, want)
	}
}

func TestReconcile_BestScoreWinsDuplicates(t *testing.T) {
	t.Parallel()

	// Two plausible misspellings of one parameter: the higher-scored key
	// claims it, the other is dropped from the corrected mapping.
	schema := schemaOf([]string{"query"}, "query", "limit")
	got := Reconcile(schema, map[string]any{"qeury": "a", "querry": "b"})

	want := map[string]any{"query": "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected higher-similarity key to win: got %v, want %v", got, want)
	}
}

func TestReconcile_ReturnsOriginalWhenRequiredStillMissing(t *testing.T) {
	t.Parallel()

	schema := schemaOf([]string{"to", "from"}, "to", "from")
	args := map[string]any{"xyzzy": 1, "plugh": 2}

	got := Reconcile(schema, args)
	if !reflect.DeepEqual(got, args) {
		t.Errorf("unrepairable mapping must be returned unchanged: got %v", got)
	}
}

func TestReconcile_EachKeyAssignedOnce(t *testing.T) {
	t.Parallel()

	// One loose key similar to two open params: it must claim only its
	// best match, leaving the other param unfilled.
	schema := schemaOf([]string{"name"}, "name", "names")
	got := Reconcile(schema, map[string]any{"nam": "x", "other_field_entirely": "y"})

	if v, ok := got["name"]; !ok || v != "x" {
		t.Fatalf(`expected "nam" assigned to "name", got %v`, got)
	}
	if _, ok := got["names"]; ok {
		t.Errorf(`"names" must stay unassigned, got %v`, got)
	}
}
