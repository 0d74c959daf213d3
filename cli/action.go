package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/squarefactory/cobalt-api/scheduler"
)

type jobAction func(ctx context.Context, jobID int) (string, error)

func newActionCmd(use, short string, action func(*scheduler.Cobalt) jobAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, jobs, err := load(cmd)
			if err != nil {
				return err
			}
			return runAction(cmd, jobs, action(c))
		},
	}
}

// runAction applies action to every job and keeps going on failure.
func runAction(cmd *cobra.Command, jobs []*scheduler.Job, action jobAction) error {
	var errs []error
	for _, j := range jobs {
		out, err := action(cmd.Context(), j.ID)
		if out != "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		if err != nil {
			logrus.WithError(err).WithField("jobid", j.ID).Error("job action failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func init() {
	rootCmd.AddCommand(newActionCmd("del", "Delete the selected jobs", func(c *scheduler.Cobalt) jobAction {
		return c.CancelJob
	}))
	rootCmd.AddCommand(newActionCmd("hold", "Hold the selected jobs", func(c *scheduler.Cobalt) jobAction {
		return c.HoldJob
	}))
	rootCmd.AddCommand(newActionCmd("rls", "Release the selected jobs", func(c *scheduler.Cobalt) jobAction {
		return c.ReleaseJob
	}))
}
