// Package main provides the ontoc binary entry point.
// Ontoc compiles hand-written JSON records into an OWL ontology.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/ontoc/export"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ontoc"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

// outputFlags override the output section of the config.
type outputFlags struct {
	out         string
	format      string
	metricsFile string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Ontology compiler",
		Long: `Ontoc compiles classes, properties, instances and measurement
restrictions written as JSON records into a single OWL ontology.

Every record source is listed in the manifest of the config file. The
compiler resolves references, checks property typing, synthesizes the
value/unit properties of measurement classes and writes deterministic
Turtle, N-Triples or JSON-LD. Any error aborts the run without writing output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(compileCmd(&g), validateCmd(&g), watchCmd(&g), fmtCmd(&g))

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func addOutputFlags(cmd *cobra.Command, o *outputFlags) {
	cmd.Flags().StringVar(&o.out, "out", "", `Output file ("-" for stdout; default from config)`)
	cmd.Flags().StringVar(&o.format, "format", "", "Output format ("+strings.Join(export.FormatNames(), ", ")+")")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
}

func compileCmd(g *globalFlags) *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the registered sources and write the ontology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g, &o)
			if err != nil {
				return err
			}
			defer a.close()
			return a.compile(cmd.Context(), true)
		},
	}
	addOutputFlags(cmd, &o)
	return cmd
}

func validateCmd(g *globalFlags) *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the full pipeline without writing output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g, &o)
			if err != nil {
				return err
			}
			defer a.close()
			return a.compile(cmd.Context(), false)
		},
	}
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	return cmd
}

func watchCmd(g *globalFlags) *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Compile, then recompile whenever a source changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g, &o)
			if err != nil {
				return err
			}
			defer a.close()
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return a.watch(ctx)
		},
	}
	addOutputFlags(cmd, &o)
	return cmd
}

func fmtCmd(g *globalFlags) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Rewrite the registered sources with canonical key order",
		Long: `Fmt validates the project, then rewrites every registered source with
two-space indentation and a fixed field order. Record order and values
are kept. With --check nothing is written and the command fails when a
source is not formatted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g, &outputFlags{})
			if err != nil {
				return err
			}
			defer a.close()
			return a.formatSources(cmd.Context(), check)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Report unformatted sources without rewriting them")
	return cmd
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info", "":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
