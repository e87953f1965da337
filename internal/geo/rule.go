// Package geo derives a dataset's geospatial profile from its column
// semantics: spatial role, geometry type, spatial resolution, and the
// spatial analysis use cases those imply.
//
// Each classifier is an ordered decision list. Rules are evaluated in
// sequence and the first rule that matches decides the result.
package geo

import (
	"strings"

	"github.com/sells-group/geo-profiler/internal/model"
)

// rule is one entry of an ordered decision list.
type rule[T any] struct {
	name  string
	apply func(p *model.DatasetSemanticProfile) (T, bool)
}

// when builds a rule that yields a fixed result when pred holds.
func when[T any](name string, result T, pred func(p *model.DatasetSemanticProfile) bool) rule[T] {
	return rule[T]{
		name: name,
		apply: func(p *model.DatasetSemanticProfile) (T, bool) {
			if pred(p) {
				return result, true
			}
			var zero T
			return zero, false
		},
	}
}

// firstMatch evaluates rules in order and returns the first result along with
// the name of the rule that produced it. fallback is returned with the name
// "fallback" when no rule matches.
func firstMatch[T any](rules []rule[T], p *model.DatasetSemanticProfile, fallback T) (T, string) {
	for _, r := range rules {
		if v, ok := r.apply(p); ok {
			return v, r.name
		}
	}
	return fallback, "fallback"
}

// containsAny reports whether s contains any of the keywords.
func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// anyNameContains reports whether any lower-cased column name contains one of the keywords.
func anyNameContains(p *model.DatasetSemanticProfile, keywords []string) bool {
	for _, c := range p.Columns {
		if containsAny(strings.ToLower(c.Name), keywords) {
			return true
		}
	}
	return false
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
