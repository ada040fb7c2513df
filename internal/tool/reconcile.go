package tool

import (
	"slices"
	"sort"
)

// SimilarityThreshold is the minimum ratio at which a proposed argument key
// is considered a misspelling of a declared parameter.
const SimilarityThreshold = 0.2

// Reconcile repairs naming drift between a proposed call's arguments and the
// tool's declared schema. It returns a corrected argument mapping when every
// required parameter can be covered, and the input unchanged otherwise; it
// never fails; an unrepaired mapping simply surfaces as an invocation error
// downstream.
//
// The multi-parameter pass is a greedy, threshold-gated assignment (best
// score first, each key and each parameter consumed at most once). It makes
// no optimality guarantee: with two near-duplicate keys the lower-scored one
// loses outright. That is a deliberate simplicity tradeoff, kept because the
// greedy tie-break order is observable behavior.
func Reconcile(schema Schema, args map[string]any) map[string]any {
	if len(schema.Params) == 0 || len(args) == 0 {
		return args
	}

	// Fast path: every required parameter is already present by name.
	if requiredSatisfied(schema.Required, args) {
		return args
	}

	// Single required parameter, single supplied argument: rename when the
	// key is plausibly a misspelling, otherwise abstain rather than guess.
	if len(schema.Required) == 1 && len(args) == 1 {
		want := schema.Required[0]
		for key, val := range args {
			if Similarity(key, want) >= SimilarityThreshold {
				return map[string]any{want: val}
			}
		}
		return args
	}

	// Multi-parameter reconciliation. Keys that already match a declared
	// parameter are kept verbatim; the rest are loose and compete for the
	// still-unmatched declared parameters.
	fixed := make(map[string]any, len(args))
	taken := make(map[string]bool, len(schema.Params))
	var loose []string
	for _, key := range sortedKeys(args) {
		if slices.Contains(schema.Params, key) {
			fixed[key] = args[key]
			taken[key] = true
		} else {
			loose = append(loose, key)
		}
	}

	var open []string
	for _, p := range schema.Params {
		if !taken[p] {
			open = append(open, p)
		}
	}

	type candidate struct {
		score float64
		param string
		key   string
	}
	var candidates []candidate
	for _, key := range loose {
		for _, p := range open {
			if score := Similarity(key, p); score >= SimilarityThreshold {
				candidates = append(candidates, candidate{score, p, key})
			}
		}
	}

	// Best score wins; the stable sort preserves key/param order for ties
	// so the assignment is reproducible.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	usedKeys := make(map[string]bool, len(loose))
	for _, c := range candidates {
		if taken[c.param] || usedKeys[c.key] {
			continue
		}
		fixed[c.param] = args[c.key]
		taken[c.param] = true
		usedKeys[c.key] = true
	}

	if requiredSatisfied(schema.Required, fixed) {
		return fixed
	}
	return args
}

// requiredSatisfied reports whether every required parameter appears as a key.
func requiredSatisfied(required []string, args map[string]any) bool {
	for _, p := range required {
		if _, ok := args[p]; !ok {
			return false
		}
	}
	return true
}

// sortedKeys returns the map's keys in lexicographic order. Go map iteration
// order is randomized, so reconciliation walks keys sorted to stay
// deterministic across runs.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
