// Command menuadmin-mock serves the platform REST API from memory, for demos
// and local development of menuadmin.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/Makepad-fr/menuadmin/internal/config"
	"github.com/Makepad-fr/menuadmin/internal/mockapi"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "menuadmin-mock:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("menuadmin-mock", pflag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address")
	seed := fs.Int64("seed", 1, "seed for generated data")
	size := fs.Int("size", 24, "records per generated resource")
	data := fs.String("data", "", "JSON snapshot to load at start and save on shutdown")
	email := fs.String("admin-email", "admin@example.com", "admin account email")
	password := fs.String("admin-password", "admin", "admin account password")
	noAuth := fs.Bool("no-auth", false, "serve every route without a token")
	logLevel := fs.String("log-level", "info", "debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level, err := config.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	var snap *mockapi.Snapshot
	if *data != "" {
		if snap, err = mockapi.LoadSnapshot(*data); err != nil {
			return err
		}
		if snap == nil {
			log.Info("snapshot not found, generating data", "path", *data, "seed", *seed)
		}
	}

	admin, err := mockapi.NewAdmin("Admin", *email, *password)
	if err != nil {
		return err
	}
	srv, err := mockapi.New(mockapi.Options{
		Snapshot: snap,
		Seed:     *seed,
		Size:     *size,
		Admin:    admin,
		NoAuth:   *noAuth,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{Addr: *addr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", *addr, "auth", !*noAuth, "admin", *email)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if *data != "" {
		if err := mockapi.SaveSnapshot(*data, srv.Snapshot()); err != nil {
			return err
		}
		log.Info("snapshot saved", "path", *data)
	}
	return nil
}
