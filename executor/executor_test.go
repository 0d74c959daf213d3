//go:build unit

package executor

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec(t *testing.T) {
	// Arrange
	s := &Shell{}
	before := testutil.ToFloat64(commandTotal.WithLabelValues("sh", "ok"))

	// Act
	out, err := s.Exec(context.Background(), "sh", "-c", "echo hello; echo ignored >&2")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
	assert.Equal(t, before+1, testutil.ToFloat64(commandTotal.WithLabelValues("sh", "ok")))
}

func TestExecFailure(t *testing.T) {
	// Arrange
	s := &Shell{BinDir: "/bin"}
	before := testutil.ToFloat64(commandTotal.WithLabelValues("sh", "error"))

	// Act
	out, err := s.Exec(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")

	// Assert
	assert.Error(t, err)
	assert.Equal(t, "out\nerr\n", out)
	assert.Equal(t, before+1, testutil.ToFloat64(commandTotal.WithLabelValues("sh", "error")))
}

func TestExecArgsAreNotInterpreted(t *testing.T) {
	out, err := (&Shell{}).Exec(context.Background(), "echo", "$HOME", "a;b")

	require.NoError(t, err)
	assert.Equal(t, "$HOME a;b\n", out)
}

func TestExecMissingBinary(t *testing.T) {
	_, err := (&Shell{BinDir: t.TempDir()}).Exec(context.Background(), "qstat", "-Q", "-l")

	assert.Error(t, err)
}

func TestExecContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := (&Shell{}).Exec(ctx, "sleep", "5")

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
