//go:build unit

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/squarefactory/cobalt-api/config"
	"github.com/squarefactory/cobalt-api/mocks"
	"github.com/squarefactory/cobalt-api/policy"
	"github.com/squarefactory/cobalt-api/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	queuesOutput = `Name: default
    MaxTime      : 06:00:00
    MaxUserNodes : 4
    TotalNodes   : 10

Name: debug
    MaxUserNodes : 1
    TotalNodes   : 2
`

	jobsOutput = `JobID: 1
    JobName       : train
    User          : alice
    State         : running
    RunTime       : 00:10:00
    TimeRemaining : 00:50:00
    Queue         : default

JobID: 2
    JobName : eval
    User    : bob
    Queue   : default

JobID: 3
    JobName  : eval
    User     : alice
    user_list : alice:carol
    Location : nid[1-2]
    Queue    : debug
`
)

// execute runs the root command with args against executor and returns its
// output.
func execute(t *testing.T, executor scheduler.Executor, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"scheduler:\n  user: alice\n  script_dir: "+dir+"\nlog:\n  level: error\n",
	), 0o600))

	all, verbose, restrict = false, false, false
	queueName, location, userName, jobName, logLevel = "", "", "", "", ""
	submitOpts = submitOptions{
		nodeCount: 1,
		procCount: 1,
		attrs:     map[string]string{},
		env:       map[string]string{},
	}
	newExecutor = func(*config.Config) scheduler.Executor { return executor }

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func expectQstat(executor *mocks.Executor) {
	executor.On("Exec", mock.Anything, "qstat", "-Q", "-l").Return(queuesOutput, nil)
	executor.On("Exec", mock.Anything, "qstat", "-f", "-l").Return(jobsOutput, nil)
}

func TestJlist(t *testing.T) {
	executor := mocks.NewExecutor(t)
	expectQstat(executor)

	out, err := execute(t, executor, "jlist")
	require.NoError(t, err)
	assert.Equal(t, "1\n3\n", out)

	out, err = execute(t, executor, "jlist", "-a", "-j", "eval")
	require.NoError(t, err)
	assert.Equal(t, "2\n3\n", out)

	out, err = execute(t, executor, "jlist", "-u", "bob", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "eval")
	assert.Contains(t, out, "bob")
}

func TestQlist(t *testing.T) {
	executor := mocks.NewExecutor(t)
	expectQstat(executor)

	out, err := execute(t, executor, "qlist")
	require.NoError(t, err)
	assert.Equal(t, "default\ndebug\n", out)

	out, err = execute(t, executor, "qlist", "-q", "deb", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "debug:\n")
	assert.Contains(t, out, "\tmaxusernodes: 0\n")
}

func TestJstat(t *testing.T) {
	executor := mocks.NewExecutor(t)
	expectQstat(executor)

	out, err := execute(t, executor, "jstat")
	require.NoError(t, err)
	assert.Equal(t, "0:50:00\nunknown\n", out)

	out, err = execute(t, executor, "jstat", "-v", "-j", "eval")
	require.NoError(t, err)
	assert.Equal(t, "alice,carol debug[1,2]\n"+
		"\tqueued_time: unknown\n"+
		"\tstart_time: unknown\n"+
		"\truntime: unknown\n"+
		"\twalltime: unknown\n"+
		"\tremaining_time: unknown\n", out)
}

func TestDel(t *testing.T) {
	executor := mocks.NewExecutor(t)
	expectQstat(executor)
	executor.On("Exec", mock.Anything, "qdel", "1").Return("Deleted Jobs\n", nil).Once()
	executor.On("Exec", mock.Anything, "qdel", "3").Return("", errors.New("exit status 1")).Once()

	out, err := execute(t, executor, "del")

	assert.Error(t, err)
	assert.Equal(t, "Deleted Jobs\n", out)
	executor.AssertExpectations(t)
}

func TestHoldAndRelease(t *testing.T) {
	executor := mocks.NewExecutor(t)
	expectQstat(executor)
	executor.On("Exec", mock.Anything, "qhold", "1").Return("held\n", nil).Once()
	executor.On("Exec", mock.Anything, "qrls", "1").Return("released\n", nil).Once()

	out, err := execute(t, executor, "hold", "-j", "train")
	require.NoError(t, err)
	assert.Equal(t, "held\n", out)

	out, err = execute(t, executor, "rls", "-j", "train")
	require.NoError(t, err)
	assert.Equal(t, "released\n", out)
}

func TestSubmit(t *testing.T) {
	executor := mocks.NewExecutor(t)
	expectQstat(executor)
	executor.On(
		"Exec",
		mock.Anything,
		"qsub",
		"--queue", "default",
		"-n", "2",
		"-t", "0:20:00",
		"--jobname", "train",
		mock.AnythingOfType("string"),
	).Return("77\n", nil)

	out, err := execute(t, executor,
		"submit", "-q", "default", "-n", "2", "-t", "0:20:00", "-j", "train",
		"--env", "A=1", "--", "./train.sh", "--epochs", "3",
	)

	require.NoError(t, err)
	assert.Equal(t, "77\n", out)
}

func TestSubmitScriptCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "argv is quoted",
			args:     []string{"sh", "-c", "echo a b; touch 'x y'"},
			expected: `sh -c 'echo a b; touch '"'"'x y'"'"''`,
		},
		{
			name:     "plain argv is kept readable",
			args:     []string{"./train.sh", "--epochs", "3"},
			expected: "./train.sh --epochs 3",
		},
		{
			name:     "single argument is a command line",
			args:     []string{"module load gcc && ./run.sh > out.log"},
			expected: "module load gcc && ./run.sh > out.log",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			executor := mocks.NewExecutor(t)
			expectQstat(executor)
			var script string
			executor.On(
				"Exec",
				mock.Anything,
				"qsub",
				"--queue", "default",
				"-n", "1",
				"-t", "6:00:00",
				mock.AnythingOfType("string"),
			).Run(func(args mock.Arguments) {
				b, err := os.ReadFile(args.String(8))
				require.NoError(t, err)
				script = string(b)
			}).Return("78\n", nil)

			// Act
			_, err := execute(t, executor, append([]string{"submit", "-q", "default", "--"}, tt.args...)...)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, "#!/bin/bash\n\n#COBALT --user_list alice\n\n"+tt.expected+"\n", script)
		})
	}
}

func TestSubmitErrors(t *testing.T) {
	executor := mocks.NewExecutor(t)

	_, err := execute(t, executor, "submit", "--", "hostname")
	assert.True(t, errors.Is(err, scheduler.ErrInvalidRequest))

	_, err = execute(t, executor, "submit", "-q", "default", "-t", "soon", "--", "hostname")
	assert.True(t, errors.Is(err, scheduler.ErrInvalidRequest))

	expectQstat(executor)
	_, err = execute(t, executor, "submit", "-q", "nope", "--", "hostname")
	assert.True(t, errors.Is(err, scheduler.ErrQueueNotFound))

	_, err = execute(t, executor, "submit", "-q", "default", "-n", "4", "--", "hostname")
	var refused *scheduler.SubmissionRefusedError
	require.True(t, errors.As(err, &refused))
	assert.Equal(t, scheduler.ReasonUserCapacity, refused.Reason)
}

func TestSelectionRestrict(t *testing.T) {
	// Arrange
	executor := mocks.NewExecutor(t)
	expectQstat(executor)
	c := scheduler.NewCobalt(executor, "alice")
	saturdayNoon := time.Date(2023, 10, 7, 12, 0, 0, 0, time.UTC)
	p, err := policy.New(policy.DefaultConfig(), policy.WithClock(func() time.Time { return saturdayNoon }))
	require.NoError(t, err)

	// Act
	queues, jobs, err := selection(context.Background(), c, p, true, scheduler.Filter{All: true})

	// Assert
	require.NoError(t, err)
	require.Len(t, queues, 1)
	assert.Equal(t, "default", queues[0].Name)
	assert.Equal(t, 4, queues[0].MaxUserNodes)
	require.Len(t, jobs, 2)
	assert.Equal(t, 1, jobs[0].ID)
	assert.Equal(t, 2, jobs[1].ID)
}
