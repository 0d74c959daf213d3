package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/squarefactory/cobalt-api/scheduler"
)

var jlistCmd = &cobra.Command{
	Use:   "jlist",
	Short: "List job ids, or job summaries with -v",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, jobs, err := load(cmd)
		if err != nil {
			return err
		}
		printJobs(cmd.OutOrStdout(), jobs, verbose)
		return nil
	},
}

var qlistCmd = &cobra.Command{
	Use:   "qlist",
	Short: "List queue names, or queue details with -v",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, queues, _, err := load(cmd)
		if err != nil {
			return err
		}
		printQueues(cmd.OutOrStdout(), queues, verbose)
		return nil
	},
}

var jstatCmd = &cobra.Command{
	Use:   "jstat",
	Short: "Print the remaining time of jobs, or their reservation details with -v",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, jobs, err := load(cmd)
		if err != nil {
			return err
		}
		printJobStats(cmd.OutOrStdout(), jobs, verbose)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jlistCmd)
	rootCmd.AddCommand(qlistCmd)
	rootCmd.AddCommand(jstatCmd)
}

func printJobs(w io.Writer, jobs []*scheduler.Job, verbose bool) {
	for _, j := range jobs {
		if verbose {
			fmt.Fprintln(w, j.String())
		} else {
			fmt.Fprintln(w, j.ID)
		}
	}
}

func printQueues(w io.Writer, queues []*scheduler.Queue, verbose bool) {
	for _, q := range queues {
		if verbose {
			fmt.Fprint(w, q.String())
		} else {
			fmt.Fprintln(w, q.Name)
		}
	}
}

func printJobStats(w io.Writer, jobs []*scheduler.Job, verbose bool) {
	for _, j := range jobs {
		if !verbose {
			fmt.Fprintln(w, scheduler.FormatOptionalDuration(j.RemainingTime))
			continue
		}
		owner := j.User
		if len(j.Users) > 1 {
			owner = strings.Join(j.Users, ",")
		}
		fmt.Fprintf(w, "%s %s\n", owner, j.Where())
		fmt.Fprintf(w, "\tqueued_time: %s\n", scheduler.FormatOptionalDuration(j.QueuedTime))
		fmt.Fprintf(w, "\tstart_time: %s\n", scheduler.FormatOptionalDuration(j.StartTime))
		fmt.Fprintf(w, "\truntime: %s\n", scheduler.FormatOptionalDuration(j.RunTime))
		fmt.Fprintf(w, "\twalltime: %s\n", scheduler.FormatOptionalDuration(j.WallTime))
		fmt.Fprintf(w, "\tremaining_time: %s\n", scheduler.FormatOptionalDuration(j.RemainingTime))
	}
}
