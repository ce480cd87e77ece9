package commands

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fintrack/config"
	"fintrack/middleware"
	"fintrack/router"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local API the UI talks to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				opts.cfg.Server.Port = normalizePort(port)
				log.Printf("port from command line: %s", opts.cfg.Server.Port)
			}
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen address, e.g. 5173 or 127.0.0.1:5173")

	return cmd
}

// normalizePort turns a bare port into a loopback address.
func normalizePort(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return "127.0.0.1:" + port
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg := opts.cfg
	config.PrintConfig()

	store, err := opts.openStore()
	if err != nil {
		log.Printf("database bootstrap failed at %s: %v", cfg.Database.Path, err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close database: %v", err)
		}
	}()

	middleware.InitJWT(cfg)
	r := router.SetupRouter(cfg, router.NewServices(cfg, store))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.Server.Port, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("==========================================")
	log.Printf("  finance tracker started")
	log.Printf("==========================================")
	log.Printf("  API:      http://%s/api/", cfg.Server.Port)
	log.Printf("  Swagger:  http://%s/swagger/index.html", cfg.Server.Port)
	log.Printf("==========================================")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
