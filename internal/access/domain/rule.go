// Package domain defines the access-rule model and its pattern matching.
//
// Resource patterns support two wildcards: "*" matches any substring and
// "{name}" matches exactly one path segment. Matching is anchored over the
// whole resource string and case-sensitive.
//
// Examples:
//   - "store/collection/{name}" matches "store/collection/users" but NOT
//     "store/collection/users/doc1" (exactly one segment)
//   - "store/*" matches "store/a" and "store/a/b" (any substring)
//   - "blob/{bucket}/objects/*" combines both forms
package domain

import (
	"reflect"
	"regexp"
	"slices"
	"strings"
)

// ActionWildcard grants every action when present in a rule's action set.
const ActionWildcard = "*"

// Rule is a permission statement binding a client, a resource pattern, and
// allowed actions. Rules are keyed by (client id, resource pattern); re-adding
// the same key replaces the rule. A rule with conditions grants only when the
// request context satisfies every field-equality condition.
type Rule struct {
	ClientID        string         `json:"client_id"`
	ResourcePattern string         `json:"resource_pattern"`
	Actions         []string       `json:"actions"`
	Conditions      map[string]any `json:"conditions,omitempty"`
}

// MatchesAction reports whether the rule's action set contains the action or
// the wildcard.
func (r *Rule) MatchesAction(action string) bool {
	return slices.Contains(r.Actions, action) || slices.Contains(r.Actions, ActionWildcard)
}

// ConditionsSatisfied reports whether every field-equality condition holds in
// the request context. A rule with no conditions is unconditional.
func (r *Rule) ConditionsSatisfied(reqCtx map[string]any) bool {
	for field, want := range r.Conditions {
		got, ok := reqCtx[field]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// Unconditional reports whether the rule carries no field conditions.
func (r *Rule) Unconditional() bool {
	return len(r.Conditions) == 0
}

// CompilePattern translates a resource pattern into an anchored regular
// expression: literal characters are escaped, "*" becomes ".*" and "{name}"
// becomes a single-segment matcher.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")

	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*':
			sb.WriteString(".*")
		case '{':
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				// Unterminated brace is treated as a literal
				sb.WriteString(regexp.QuoteMeta(pattern[i:]))
				i = len(pattern)
				continue
			}
			sb.WriteString(`[^/]+`)
			i += end
		default:
			sb.WriteString(regexp.QuoteMeta(string(pattern[i])))
		}
	}

	sb.WriteString("$")
	return regexp.Compile(sb.String())
}
