// Package main is an application entrypoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/cappuccinotm/slogx"
	"github.com/cappuccinotm/slogx/slogm"
	"github.com/jessevdk/go-flags"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/tmshlvck/tapi/pkg/config"
	"github.com/tmshlvck/tapi/pkg/server"
	"golang.org/x/sync/errgroup"
)

var opts struct {
	Config  string `short:"c" long:"config"  env:"CONFIG" default:"tapi.yml" description:"Path to the config file"      `
	Metrics bool   `long:"metrics" env:"METRICS" description:"Expose prometheus metrics on /metrics"`
	Debug   bool   `long:"debug"   env:"DEBUG"   description:"Enable debug mode"                    `
}

var version = "unknown"

func getVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if ok {
		return bi.Main.Version
	}
	return version
}

func main() {
	_, _ = fmt.Fprintf(os.Stderr, "tapi %s\n", getVersion())

	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	setupLog(opts.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { // catch signal and invoke graceful termination
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		sig := <-stop
		slog.Warn("caught signal", slog.Any("signal", sig))
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("failed to start tapi", slogx.Error(err))
	}
}

func setupLog(debug bool) {
	defer slog.Info("prepared logger", slog.Bool("debug", debug))

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: level, AddSource: debug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: debug})
	}

	handler = slogx.NewChain(handler,
		slogm.RequestID(),
		slogm.StacktraceOnError(),
		slogm.TrimAttrs(1024), // 1Kb
	)

	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	endpoints, err := cfg.Endpoints()
	if err != nil {
		return fmt.Errorf("build endpoints: %w", err)
	}

	srv := server.NewServer(endpoints, cfg.APIKey,
		server.Version(getVersion()),
		server.Debug(opts.Debug),
		server.Metrics(opts.Metrics))

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		if err := srv.Listen(cfg.Addr()); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	ewg.Go(func() error {
		<-ctx.Done()
		srv.Close()
		return nil
	})

	if err := ewg.Wait(); err != nil {
		return err
	}

	return nil
}
