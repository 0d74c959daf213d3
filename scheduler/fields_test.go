//go:build unit

package scheduler_test

import (
	"testing"
	"time"

	"github.com/squarefactory/cobalt-api/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		expected []string
	}{
		{
			name:     "range",
			location: "nodeA[3-5]",
			expected: []string{"nodeA3", "nodeA4", "nodeA5"},
		},
		{
			name:     "single bound",
			location: "nid[7-7]",
			expected: []string{"nid7"},
		},
		{
			name:     "bare host",
			location: "knl_7210",
			expected: []string{"knl_7210"},
		},
		{
			name:     "number before the range is kept verbatim",
			location: "knl7[1-2]",
			expected: []string{"knl7[1-2]"},
		},
		{
			name:     "oversized range is kept verbatim",
			location: "n[0-2000000000],b3",
			expected: []string{"n[0-2000000000]", "b3"},
		},
		{
			name:     "several fragments",
			location: "a[1-2],b3",
			expected: []string{"a1", "a2", "b3"},
		},
		{
			name:     "empty",
			location: "",
			expected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scheduler.ExpandLocation(tt.location))
		})
	}
}

func TestExpandLocationWidestRange(t *testing.T) {
	hosts := scheduler.ExpandLocation("n[1-100001]")

	require.Len(t, hosts, 100001)
	assert.Equal(t, "n1", hosts[0])
	assert.Equal(t, "n100001", hosts[100000])
}

func TestParseDuration(t *testing.T) {
	d, err := scheduler.ParseDuration("01:02:03")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+2*time.Minute+3*time.Second, d)

	d, err = scheduler.ParseDuration("36:00:00")
	require.NoError(t, err)
	assert.Equal(t, 36*time.Hour, d)

	for _, bad := range []string{"", "N/A", "1:00", "a:b:c", "-1:00:00", "99999999999:00:00"} {
		_, err := scheduler.ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:30:00", scheduler.FormatDuration(30*time.Minute))
	assert.Equal(t, "26:00:05", scheduler.FormatDuration(26*time.Hour+5*time.Second))
	assert.Equal(t, "0:00:00", scheduler.FormatDuration(0))
}

func TestSplitRecords(t *testing.T) {
	out := "JobID: 1\n  Queue: a\n\r\n   \nJobID: 2\n  Queue: b\n\n\n"

	records := scheduler.SplitRecords(out)

	require.Len(t, records, 2)
	assert.Contains(t, records[0], "JobID: 1")
	assert.Contains(t, records[1], "JobID: 2")
}
