package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/c360studio/ontoc/compiler"
	"github.com/c360studio/ontoc/config"
	"github.com/c360studio/ontoc/export"
	"github.com/c360studio/ontoc/graph"
	sourcewatcher "github.com/c360studio/ontoc/processor/source-watcher"
	"github.com/c360studio/ontoc/source"
)

// app wires config, loader, compiler and outputs for one command.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	stdout      io.Writer
	metrics     *compiler.Metrics
	metricsFile string
	format      export.Format

	opts      compiler.Options
	publisher graph.Publisher

	// connect is overridable for tests
	connect func(url, subject string, logger *slog.Logger) (graph.Publisher, error)
}

func setup(cmd *cobra.Command, g *globalFlags, o *outputFlags) (*app, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), g.logLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if o.out != "" {
		if o.out != "-" {
			if o.out, err = filepath.Abs(o.out); err != nil {
				return nil, fmt.Errorf("resolve --out: %w", err)
			}
		}
		cfg.Output.Path = o.out
	}

	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	switch {
	case o.format != "":
		if format, err = export.ParseFormat(o.format); err != nil {
			return nil, err
		}
	case o.out != "":
		if f, ok := export.FormatForPath(o.out); ok {
			format = f
		}
	}

	opts, err := compiler.OptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		stdout:      cmd.OutOrStdout(),
		metrics:     compiler.NewMetrics(),
		metricsFile: o.metricsFile,
		format:      format,
		opts:        opts,
		connect: func(url, subject string, logger *slog.Logger) (graph.Publisher, error) {
			return graph.ConnectNATS(url, subject, logger)
		},
	}, nil
}

func (a *app) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("Failed to close publisher", "error", err)
		}
	}
}

// compile runs one load-compile-serialize pass. With write set, the
// result is written to the output path and published when configured.
func (a *app) compile(ctx context.Context, write bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := a.logger.With("run_id", uuid.NewString())

	err := a.run(ctx, logger, write)
	if a.metricsFile != "" {
		if merr := a.metrics.WriteToTextfile(a.metricsFile); merr != nil {
			logger.Warn("Failed to write metrics", "path", a.metricsFile, "error", merr)
		}
	}
	return err
}

func (a *app) run(ctx context.Context, logger *slog.Logger, write bool) error {
	filesDir := a.cfg.ResolveFilesDir()
	loader := source.NewLoader(filesDir, source.OptionsFromConfig(a.cfg), logger)

	rs, err := loader.Load(ctx, a.cfg.Manifest)
	if err != nil {
		a.metrics.CompileFailed(err)
		return fmt.Errorf("load sources: %w", err)
	}

	result, err := compiler.New(a.opts, logger, a.metrics).Compile(ctx, rs)
	if err != nil {
		return err
	}

	data, err := export.Export(result.Graph, a.format)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	if !write {
		logger.Info("Sources are valid", "triples", result.Stats.Triples)
		return nil
	}

	path := a.cfg.ResolveOutputPath()
	if err := writeOutput(path, data, a.stdout); err != nil {
		return err
	}
	logger.Info("Wrote ontology",
		"path", path,
		"format", a.format,
		"bytes", len(data))

	return a.publish(ctx, result, data)
}

func (a *app) publish(ctx context.Context, result *compiler.Result, data []byte) error {
	nc := a.cfg.Output.NATS
	if nc.URL == "" {
		return nil
	}
	if a.publisher == nil {
		p, err := a.connect(nc.URL, nc.Subject, a.logger)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		a.publisher = p
	}

	info, _ := export.GetFormatInfo(a.format)
	doc := graph.Document{
		Format:   string(a.format),
		MIMEType: info.MIMEType,
		Triples:  result.Stats.Triples,
		Data:     data,
	}
	if err := a.publisher.Publish(ctx, doc); err != nil {
		return fmt.Errorf("publish ontology: %w", err)
	}
	return nil
}

// formatSources validates the project and rewrites the sources in
// canonical form. A source that fails to load aborts before any file is
// touched.
func (a *app) formatSources(ctx context.Context, check bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	filesDir := a.cfg.ResolveFilesDir()
	loader := source.NewLoader(filesDir, source.OptionsFromConfig(a.cfg), a.logger)
	if _, err := loader.Load(ctx, a.cfg.Manifest); err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	sources, err := source.FormatManifest(ctx, filesDir, a.cfg.Manifest)
	if err != nil {
		return fmt.Errorf("format sources: %w", err)
	}

	var changed []string
	for _, src := range sources {
		if !src.Changed {
			continue
		}
		changed = append(changed, src.Name)
		if check {
			continue
		}
		if err := writeOutput(src.Path, src.Data, a.stdout); err != nil {
			return err
		}
		a.logger.Debug("Formatted source", "source", src.Name)
	}

	if check && len(changed) > 0 {
		return fmt.Errorf("%d source(s) not formatted: %s", len(changed), strings.Join(changed, ", "))
	}
	a.logger.Info("Sources formatted", "sources", len(sources), "changed", len(changed))
	return nil
}

// watch compiles once, then again after every debounced batch of source
// changes. Compile errors are logged and the watch continues.
func (a *app) watch(ctx context.Context) error {
	if err := a.compile(ctx, true); err != nil {
		a.logger.Error("Compilation failed", "error", err)
	}

	w, err := sourcewatcher.NewWatcher(sourcewatcher.Config{
		Dir:      a.cfg.ResolveFilesDir(),
		Debounce: a.cfg.Watch.Debounce,
		Logger:   a.logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	for batch := range w.Batches() {
		a.logger.Info("Sources changed, recompiling", "files", batch.Paths())
		if err := a.compile(ctx, true); err != nil {
			a.logger.Error("Compilation failed", "error", err)
		}
	}

	a.logger.Info("Watch stopped")
	return nil
}

// writeOutput replaces path atomically: the data goes to a temporary file
// in the same directory which is then renamed over the target.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
