//go:build unit

package scheduler_test

import (
	"testing"

	"github.com/squarefactory/cobalt-api/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderScriptMinimal(t *testing.T) {
	req := &scheduler.SubmitRequest{Command: "hostname", ProcCount: 1}

	script, err := scheduler.RenderScript(req, []string{"alice"})

	require.NoError(t, err)
	assert.Equal(t, "#!/bin/bash\n\n#COBALT --user_list alice\n\nhostname\n", script)
}

func TestRenderScriptAllOptions(t *testing.T) {
	req := &scheduler.SubmitRequest{
		Command:      "./run.sh --fast",
		ProcCount:    4,
		Cwd:          "/work",
		Stderr:       "e.log",
		Stdout:       "o.log",
		OutputPrefix: "pre",
		Project:      []string{"p1", "p2"},
		Attrs:        map[string]string{"numa": "quad", "mcdram": "cache"},
		Dependencies: []int{1, 2},
		Geometry:     []string{"2", "2"},
		Env:          map[string]string{"B": "2", "A": "1"},
		Hold:         true,
		InputFile:    "in",
		Email:        "alice@example.com",
		Umask:        "022",
	}

	script, err := scheduler.RenderScript(req, []string{"alice", "bob"})

	require.NoError(t, err)
	assert.Equal(t, `#!/bin/bash

#COBALT --user_list alice:bob
#COBALT --proccount 4
#COBALT --cwd /work
#COBALT --error e.log
#COBALT --output o.log
#COBALT --outputprefix pre
#COBALT --run_project p1:p2
#COBALT --attrs mcdram=cache:numa=quad
#COBALT --dependencies 1:2
#COBALT --geometry 2x2
#COBALT --env A=1:B=2
#COBALT --held
#COBALT --input_file in
#COBALT --notify alice@example.com
#COBALT --umask 022

cd /work
./run.sh --fast
`, script)
}
