package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/easyeats/easyeats/internal/client"
	"github.com/easyeats/easyeats/internal/client/cli"
	"github.com/easyeats/easyeats/internal/config"
	"github.com/easyeats/easyeats/internal/db"
	"github.com/easyeats/easyeats/internal/handlers"
	"github.com/easyeats/easyeats/internal/httpserver"
	"github.com/easyeats/easyeats/internal/logging"
	"github.com/easyeats/easyeats/internal/middleware"
	"github.com/easyeats/easyeats/internal/spoonacular"
)

// Run bootstraps the EasyEats application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, migrate, seed, discover, or client")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	case "discover":
		return runDiscover(ctx, os.Stdout, args[1:])
	case "client":
		return runClient(ctx, os.Stdin, os.Stdout)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     logging.ParseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	deps, err := buildDependencies(ctx, pool, cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	handler := middleware.RequestLogger(logger)(mux)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server",
		"addr", srv.Addr(),
		"identity_mode", cfg.Identity.Mode,
		"uploads", cfg.ObjectStore.Enabled(),
	)

	return srv.ListenAndServe(ctx, logger)
}

// runDiscover searches the recipe catalogue from the command line:
//
//	easyeats discover <query...>
//	easyeats discover details <id>
func runDiscover(ctx context.Context, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.New("expected a search query or \"details <id>\"")
	}

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if cfg.SpoonacularAPIKey == "" {
		return errors.New("EASYEATS_SPOONACULAR_API_KEY is required for discover")
	}

	search := spoonacular.NewClient(cfg.SpoonacularBaseURL, cfg.SpoonacularAPIKey, 15*time.Second)
	return discover(ctx, out, search, args)
}

func discover(ctx context.Context, out io.Writer, search spoonacular.Searcher, args []string) error {
	if args[0] == "details" {
		if len(args) != 2 {
			return errors.New("expected: details <id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid recipe id %q: %w", args[1], err)
		}
		d, err := search.Details(ctx, id)
		if err != nil {
			return err
		}
		cli.PrintDetails(out, d)
		return nil
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("search query must not be blank")
	}

	results, err := search.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(out, "no recipes found for %q\n", query)
		return nil
	}
	cli.PrintSummaries(out, results)
	return nil
}

// runClient starts the interactive client against the configured backend.
func runClient(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	a, err := client.New(cfg, client.WithAlerter(cli.Alerter{Out: out}))
	if err != nil {
		return err
	}
	return shell(ctx, a, in, out)
}

// shell runs the navigation root alongside the command loop and stops it when
// the loop returns.
func shell(ctx context.Context, a *client.App, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	started := a.Nav.Changed()
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Run(ctx)
	}()

	select {
	case <-started:
	case <-ctx.Done():
		return ctx.Err()
	}

	err := cli.NewShell(a, in, out).Run(ctx)
	cancel()
	<-done
	return err
}
