package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/squarefactory/cobalt-api/api"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scheduler operations over HTTP",
	Long: `Serve the scheduler operations over HTTP.

The listen address comes from listen_address in the config file, or from
$LISTEN_ADDRESS, and defaults to :8080.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPolicy(loadedConfig)
		if err != nil {
			return err
		}
		server := api.NewServer(newCobalt(loadedConfig), p)

		l, err := net.Listen("tcp", loadedConfig.ListenAddress)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), l, server.Router())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve answers on l until ctx is done.
func serve(ctx context.Context, l net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errC := make(chan error, 1)
	go func() {
		logrus.WithField("address", l.Addr().String()).Info("listening")
		errC <- srv.Serve(l)
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errC; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logrus.Info("server stopped")
	return nil
}
