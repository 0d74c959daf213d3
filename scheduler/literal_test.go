//go:build unit

package scheduler_test

import (
	"testing"

	"github.com/squarefactory/cobalt-api/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttrs(t *testing.T) {
	attrs, err := scheduler.ParseAttrs(
		`{'mcdram': 'cache', "numa": "quad", 'nodes': 2, 'ratio': 0.5, ` +
			`'ssds': None, 'smt': True, 'list': [1, 'a'], 'tuple': (), 3: word}`,
	)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"mcdram": "cache",
		"numa":   "quad",
		"nodes":  2,
		"ratio":  0.5,
		"ssds":   nil,
		"smt":    true,
		"list":   []any{1, "a"},
		"tuple":  []any{},
		"3":      "word",
	}, attrs)
}

func TestParseAttrsEmpty(t *testing.T) {
	attrs, err := scheduler.ParseAttrs("{}")

	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestParseAttrsRejectsMalformed(t *testing.T) {
	for _, bad := range []string{
		"",
		"[1, 2]",
		"{'a': 1",
		"{'a' 1}",
		"{'a': 'unterminated}",
		"{'a': 1} trailing",
		"{'a': __import__('os')}",
	} {
		_, err := scheduler.ParseAttrs(bad)
		assert.Error(t, err, bad)
	}
}
