package executor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Shell runs scheduler commands as plain argv subprocesses, without a shell.
type Shell struct {
	// BinDir is prepended to the command name when set. Empty means $PATH lookup.
	BinDir string
}

// Exec runs name with args and waits for it.
//
// On success the returned string is the command's stdout. When the command
// cannot be started or exits non-zero, the returned string holds stdout
// followed by stderr so that the caller can report what the scheduler said.
func (s *Shell) Exec(ctx context.Context, name string, args ...string) (string, error) {
	path := name
	if s.BinDir != "" {
		path = filepath.Join(s.BinDir, name)
	}

	c := exec.CommandContext(ctx, path, args...)
	logrus.WithField("args", c.Args).Debug("exec")

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	observe(name, time.Since(start), err)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"args":   c.Args,
			"stderr": stderr.String(),
		}).Error("unable to execute command")
		return stdout.String() + stderr.String(), err
	}
	return stdout.String(), nil
}

// LocalUser returns the name of the invoking OS user.
func LocalUser() string {
	u, err := user.Current()
	if err == nil && u.Username != "" {
		return u.Username
	}
	logrus.WithError(err).Warn("failed to lookup current user, falling back to $USER")
	return os.Getenv("USER")
}
