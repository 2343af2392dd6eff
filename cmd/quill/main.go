package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/soyart/quill"
	"github.com/soyart/quill/config"
	"github.com/soyart/quill/metrics"
	"github.com/soyart/quill/minify"
)

type cli struct {
	Build *cmdBuild `arg:"subcommand:build" help:"Build the site"`

	LogFormat string `arg:"--log-format,env:QUILL_LOG_FORMAT" default:"text" help:"Log format: text or json"`
	Verbose   bool   `arg:"-v,--verbose" help:"Log debug messages"`
}

type cmdBuild struct {
	BaseURL string `arg:"positional" help:"Site base URL, overriding config key baseUrl"`

	Env       string   `arg:"--env,env:QUILL_ENV" default:"default" help:"Config environment, selects config-<env>.yaml"`
	Force     bool     `arg:"-f,--force" help:"Clear the cache before building"`
	Source    string   `arg:"--source" default:"source" help:"Content root"`
	Output    string   `arg:"--output" default:"public" help:"Output directory, cleaned before building"`
	Cache     string   `arg:"--cache" default:"_cache" help:"Cache directory"`
	ConfigDir string   `arg:"--config-dir" default:"." help:"Directory with config.yaml"`
	Workers   uint     `arg:"--workers,env:QUILL_WORKERS" help:"Concurrent render workers"`
	Set       []string `arg:"--set,separate" help:"Config override key=value, repeatable"`
	Minify    bool     `arg:"--minify" help:"Minify HTML, CSS, JS and JSON outputs"`
	Metrics   string   `arg:"--metrics-file" help:"Write Prometheus text metrics to this file"`
}

var loglevel = new(slog.LevelVar)

func main() {
	c := cli{}
	p := arg.MustParse(&c)
	if c.Build == nil {
		p.Fail("missing subcommand")
	}

	logger := newLogger(os.Stderr, c.LogFormat, c.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, c.Build, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(quill.ExitCode(err))
	}

	fmt.Fprintln(os.Stdout, "Site was generated successfully.")
}

func run(ctx context.Context, c *cmdBuild, logger *slog.Logger) error {
	overrides, err := config.ParseOverrides(c.Set)
	if err != nil {
		return err
	}
	if c.BaseURL != "" {
		overrides[config.KeyBaseURL] = c.BaseURL
	}

	opts := []quill.Option{
		quill.Force(c.Force),
		quill.WorkersFromEnv(),
		quill.Workers(c.Workers),
		quill.WithOverrides(overrides),
		quill.WithLogger(logger),
	}
	if c.Minify {
		opts = append(opts, quill.WithHooks(minify.Hook()))
	}

	var reg *prom.Registry
	if c.Metrics != "" {
		reg = prom.NewRegistry()
		opts = append(opts, quill.WithRecorder(metrics.NewPrometheusRecorder(reg)))
	}

	b, err := quill.New(quill.Paths{
		Content: c.Source,
		Output:  c.Output,
		Cache:   c.Cache,
		Config:  c.ConfigDir,
	}, c.Env, opts...)
	if err != nil {
		return err
	}

	result, err := b.Build(ctx)
	if reg != nil {
		if errMetrics := metrics.WriteTextfile(c.Metrics, reg); errMetrics != nil {
			logger.Error("failed to write metrics", "file", c.Metrics, "error", errMetrics)
		}
	}
	if err != nil {
		return err
	}

	logger.Info("wrote outputs", "count", len(result.Written), "dir", b.Paths().Output)
	return nil
}

func newLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	if verbose {
		loglevel.Set(slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{Level: loglevel}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}
