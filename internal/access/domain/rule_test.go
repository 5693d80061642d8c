package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		resource string
		matches  bool
	}{
		{"exact match", "store/collection/users", "store/collection/users", true},
		{"exact mismatch", "store/collection/users", "store/collection/docs", false},
		{"segment wildcard matches one segment", "store/collection/{name}", "store/collection/users", true},
		{"segment wildcard rejects two segments", "store/collection/{name}", "store/collection/users/doc1", false},
		{"segment wildcard rejects empty segment", "store/collection/{name}", "store/collection/", false},
		{"star matches any substring", "store/*", "store/a/b/c", true},
		{"star matches empty", "store/*", "store/", true},
		{"star mid-pattern", "blob/*/objects", "blob/bucket-1/objects", true},
		{"anchored at start", "collection/users", "store/collection/users", false},
		{"anchored at end", "store/collection", "store/collection/users", false},
		{"literal dots escaped", "store/v1.2", "store/v1x2", false},
		{"combined wildcards", "blob/{bucket}/objects/*", "blob/b1/objects/a/b", true},
		{"combined wildcards segment bound", "blob/{bucket}/objects/*", "blob/b1/b2/objects/x", false},
		{"unterminated brace is literal", "store/{name", "store/{name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := CompilePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.matches, re.MatchString(tt.resource))
		})
	}
}

func TestRule_MatchesAction(t *testing.T) {
	rule := &Rule{Actions: []string{"read", "list"}}
	assert.True(t, rule.MatchesAction("read"))
	assert.True(t, rule.MatchesAction("list"))
	assert.False(t, rule.MatchesAction("write"))

	wildcard := &Rule{Actions: []string{ActionWildcard}}
	assert.True(t, wildcard.MatchesAction("anything"))
}

func TestRule_ConditionsSatisfied(t *testing.T) {
	rule := &Rule{Conditions: map[string]any{"env": "prod", "region": "eu"}}

	assert.True(t, rule.ConditionsSatisfied(map[string]any{"env": "prod", "region": "eu", "extra": 1}))
	assert.False(t, rule.ConditionsSatisfied(map[string]any{"env": "prod"}))
	assert.False(t, rule.ConditionsSatisfied(map[string]any{"env": "staging", "region": "eu"}))
	assert.False(t, rule.ConditionsSatisfied(nil))
}

func TestRule_Unconditional(t *testing.T) {
	assert.True(t, (&Rule{}).Unconditional())
	assert.False(t, (&Rule{Conditions: map[string]any{"env": "prod"}}).Unconditional())
}
