package cli

import (
	"fmt"

	"al.essio.dev/pkg/shellescape"
	"github.com/spf13/cobra"
	"github.com/squarefactory/cobalt-api/scheduler"
)

type submitOptions struct {
	nodeCount     int
	procCount     int
	time          string
	cwd           string
	stderr        string
	stdout        string
	outputPrefix  string
	users         []string
	project       []string
	attrs         map[string]string
	dependencies  []int
	geometry      []string
	env           map[string]string
	hold          bool
	inputFile     string
	email         string
	umask         string
	oversubscribe bool
}

var submitOpts submitOptions

var submitCmd = &cobra.Command{
	Use:   "submit -q QUEUE [flags] -- COMMAND [ARGS...]",
	Short: "Submit a job on a queue",
	Long: `Submit a job running COMMAND on the queue named by --queue.

A single COMMAND argument is a shell command line and is written to the job
script as is. Several arguments are an argv and are quoted for the shell.

The job is refused locally when it would exceed the nodes left to the user on
the queue, or the nodes of the queue unless --oversubscribe is set. With
--restrict the user policy sets those limits and the maximum wall time.

Examples:
  cobalt-api submit -q knl_7210 -n 2 -t 1:00:00 -j train -- ./train.sh --epochs 3
  cobalt-api submit -q it --restrict --env OMP_NUM_THREADS=4 -- hostname
  cobalt-api submit -q default -- "module load gcc && ./run.sh > out.log"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := submitOpts.request(commandLine(args))
		if err != nil {
			return err
		}
		if queueName == "" {
			return fmt.Errorf("%w: --queue is required", scheduler.ErrInvalidRequest)
		}

		c, queues, _, err := load(cmd)
		if err != nil {
			return err
		}
		q := scheduler.FindQueue(queues, queueName)
		if q == nil {
			return fmt.Errorf("%w: %s", scheduler.ErrQueueNotFound, queueName)
		}

		job, err := c.Submit(cmd.Context(), q, req)
		if err != nil {
			return err
		}
		if verbose {
			fmt.Fprintln(cmd.OutOrStdout(), job.String())
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), job.ID)
		}
		return nil
	},
}

// commandLine turns the positional arguments of submit into the script's
// command line.
func commandLine(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return shellescape.QuoteCommand(args)
}

func (o *submitOptions) request(command string) (*scheduler.SubmitRequest, error) {
	req := &scheduler.SubmitRequest{
		Command:            command,
		NodeCount:          o.nodeCount,
		ProcCount:          o.procCount,
		JobName:            jobName,
		Cwd:                o.cwd,
		Stderr:             o.stderr,
		Stdout:             o.stdout,
		OutputPrefix:       o.outputPrefix,
		Users:              o.users,
		Project:            o.project,
		Attrs:              o.attrs,
		Dependencies:       o.dependencies,
		Geometry:           o.geometry,
		Env:                o.env,
		Hold:               o.hold,
		InputFile:          o.inputFile,
		Email:              o.email,
		Umask:              o.umask,
		AllowOversubscribe: o.oversubscribe,
	}
	if o.time != "" {
		d, err := scheduler.ParseDuration(o.time)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", scheduler.ErrInvalidRequest, err)
		}
		req.Time = &d
	}
	return req, nil
}

func init() {
	flags := submitCmd.Flags()
	flags.IntVarP(&submitOpts.nodeCount, "nodecount", "n", 1, "number of nodes")
	flags.IntVar(&submitOpts.procCount, "proccount", 1, "number of processes to start")
	flags.StringVarP(&submitOpts.time, "time", "t", "", "wall time limit as H:MM:SS (default is the queue maximum)")
	flags.StringVar(&submitOpts.cwd, "cwd", "", "working directory of the job")
	flags.StringVar(&submitOpts.stderr, "error", "", "file receiving the job stderr")
	flags.StringVar(&submitOpts.stdout, "output", "", "file receiving the job stdout")
	flags.StringVar(&submitOpts.outputPrefix, "outputprefix", "", "prefix of the output, error and debuglog files")
	flags.StringSliceVar(&submitOpts.users, "user-list", nil, "users allowed to control the job (default is me)")
	flags.StringSliceVar(&submitOpts.project, "project", nil, "project charged for the job")
	flags.StringToStringVar(&submitOpts.attrs, "attrs", nil, "attributes the nodes must fulfill")
	flags.IntSliceVar(&submitOpts.dependencies, "dependencies", nil, "jobs that must exit successfully first")
	flags.StringSliceVar(&submitOpts.geometry, "geometry", nil, "geometry of the compute block")
	flags.StringToStringVar(&submitOpts.env, "env", nil, "environment variables of the job")
	flags.BoolVar(&submitOpts.hold, "held", false, "submit the job in the user hold state")
	flags.StringVar(&submitOpts.inputFile, "input-file", "", "file sent to the job stdin")
	flags.StringVar(&submitOpts.email, "notify", "", "email notified at the start and stop of the job")
	flags.StringVar(&submitOpts.umask, "umask", "", "octal file creation mask of the job")
	flags.BoolVar(&submitOpts.oversubscribe, "oversubscribe", false, "submit even if the queue has no node left")

	rootCmd.AddCommand(submitCmd)
}
