package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/squarefactory/cobalt-api/config"
	"github.com/squarefactory/cobalt-api/executor"
	"github.com/squarefactory/cobalt-api/policy"
	"github.com/squarefactory/cobalt-api/scheduler"
)

var (
	cfgFile  string
	logLevel string

	all       bool
	verbose   bool
	restrict  bool
	queueName string
	location  string
	userName  string
	jobName   string

	loadedConfig *config.Config
)

// newExecutor is replaced in tests.
var newExecutor = func(cfg *config.Config) scheduler.Executor {
	return &executor.Shell{BinDir: cfg.Scheduler.BinDir}
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cobalt-api",
	Short: "Query and drive the Cobalt batch scheduler",
	Long: `cobalt-api wraps the Cobalt commands (qstat, qsub, qdel, qhold, qrls).

It lists queues and jobs, acts on the jobs selected by the filters, submits
new jobs, and can serve the same operations over HTTP.

Example:
  cobalt-api jlist -v
  cobalt-api qlist --restrict
  cobalt-api del -j train
  cobalt-api submit -q default -n 2 -t 1:00:00 -- ./run.sh
  cobalt-api serve --config config.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := cfg.SetupLogging(); err != nil {
			return err
		}
		loadedConfig = cfg
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides the config file")
	rootCmd.PersistentFlags().BoolVarP(&all, "all", "a", false, "do not restrict the list of jobs to my jobs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "make output verbose")
	rootCmd.PersistentFlags().StringVarP(&queueName, "queue", "q", "", "restrict jobs and queues to queues containing this string in their name")
	rootCmd.PersistentFlags().StringVarP(&location, "location", "l", "", "restrict jobs and queues to a specific location")
	rootCmd.PersistentFlags().StringVarP(&userName, "user", "u", "", "only show the jobs of this user")
	rootCmd.PersistentFlags().StringVarP(&jobName, "jobname", "j", "", "restrict jobs to names containing this string")
	rootCmd.PersistentFlags().BoolVar(&restrict, "restrict", false, "restrict queues according to the user policy")
}

func newCobalt(cfg *config.Config) *scheduler.Cobalt {
	user := cfg.Scheduler.User
	if user == "" {
		user = executor.LocalUser()
	}
	return scheduler.NewCobalt(
		newExecutor(cfg),
		user,
		scheduler.WithScriptDir(cfg.Scheduler.ScriptDir),
		scheduler.WithQueueDefaults(cfg.QueueDefaults),
	)
}

func newPolicy(cfg *config.Config) (*policy.UserPolicy, error) {
	return policy.New(cfg.Policy)
}

func filter() scheduler.Filter {
	return scheduler.Filter{
		All:      all,
		User:     userName,
		Queue:    queueName,
		Location: location,
		JobName:  jobName,
	}
}

// selection returns the queues and jobs picked by the command line filters.
func selection(
	ctx context.Context,
	c *scheduler.Cobalt,
	p *policy.UserPolicy,
	restrict bool,
	f scheduler.Filter,
) ([]*scheduler.Queue, []*scheduler.Job, error) {
	queues, jobs, err := c.GetQueuesJobs(ctx)
	if err != nil {
		return nil, nil, err
	}
	if restrict {
		queues = p.Apply(queues, c.User(), p.Now())
		jobs = scheduler.InQueues(jobs, queues)
	}
	logrus.WithFields(logrus.Fields{
		"queues": len(queues),
		"jobs":   len(jobs),
	}).Debug("fetched scheduler state")
	return f.Queues(queues), f.Jobs(jobs, c.User()), nil
}

// load builds the client and the policy from the loaded configuration, then
// applies the filters.
func load(cmd *cobra.Command) (*scheduler.Cobalt, []*scheduler.Queue, []*scheduler.Job, error) {
	c := newCobalt(loadedConfig)
	p, err := newPolicy(loadedConfig)
	if err != nil {
		return nil, nil, nil, err
	}
	queues, jobs, err := selection(cmd.Context(), c, p, restrict, filter())
	if err != nil {
		return nil, nil, nil, err
	}
	return c, queues, jobs, nil
}
