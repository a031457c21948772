package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photonkit/internal/server"
	"github.com/matzehuels/photonkit/pkg/buildinfo"
)

const shutdownTimeout = 10 * time.Second

// serveCommand runs the HTTP server until the command context ends.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generator catalog over HTTP",
		Example: `  photonkit serve --addr :8080
  curl 'localhost:8080/build/straight?length=25'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.newRegistry(cmd)
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), ln, server.New(reg, c.Logger).Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")

	return cmd
}

// serve runs h on ln and shuts down gracefully when ctx is done.
func (c *CLI) serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	c.Logger.Info("serving", "addr", ln.Addr().String(), "build", buildinfo.String())
	printNextStep(c.stdout(), "Try", "curl http://"+ln.Addr().String()+"/factories")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	c.Logger.Info("server stopped")
	return nil
}
