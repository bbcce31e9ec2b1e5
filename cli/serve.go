package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"manjaword/config"
	"manjaword/middleware"
	"manjaword/pkg/logger"
	"manjaword/socket"
)

func newServeCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the backend for the editor shell",
		Long: `Starts the local HTTP and WebSocket backend. When MANJAWORD_SESSION_SECRET is
unset a secret is generated for this run and a session token is printed to
stdout as MANJAWORD_TOKEN=<token> for the shell to pick up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, cfg())
		},
	}
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	// Without a configured secret every run gets its own; the shell reads the
	// token for it from our stdout.
	if cfg.Auth.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		cfg.Auth.SessionSecret = secret
		token, err := middleware.IssueToken(secret, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "MANJAWORD_TOKEN=%s\n", token)
	}

	// The hub answers file dialogs for every service, so it runs before the
	// services are built and stops after the server is down.
	hub := socket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Connects the recents database and wires the services around the hub.
	app, err := NewApp(cfg, hub)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Handler(hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// SIGINT and SIGTERM start a graceful shutdown.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar.Infof("ManjaWord backend listening on %s", cfg.Addr())
		errCh <- srv.ListenAndServe()
	}()

	// A listen failure ends the command; a signal falls through to shutdown.
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Sugar.Info("Shutting down backend")
	// In-flight requests get a few seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
