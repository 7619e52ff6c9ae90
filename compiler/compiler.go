package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/ontoc/graph"
	"github.com/c360studio/ontoc/model"
)

// Stats summarizes one compilation.
type Stats struct {
	Classes      int
	Properties   int
	Instances    int
	Restrictions int
	// Synthesized counts the generated value/unit properties.
	Synthesized int
	Triples     int
	Duration    time.Duration
}

// Result is the output of a successful compilation.
type Result struct {
	Graph *graph.Graph
	Stats Stats
}

// Compiler runs the compile stages over a loaded RecordSet.
type Compiler struct {
	opts    Options
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a Compiler. logger and metrics may be nil.
func New(opts Options, logger *slog.Logger, metrics *Metrics) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		opts:    opts.withDefaults(),
		logger:  logger,
		metrics: metrics,
	}
}

// Options returns the compiler's effective options.
func (c *Compiler) Options() Options {
	return c.opts
}

// Compile resolves, validates, synthesizes and assembles rs. The first
// failing stage aborts the run; no graph is returned with an error.
func (c *Compiler) Compile(ctx context.Context, rs *model.RecordSet) (*Result, error) {
	start := time.Now()
	c.metrics.RecordsLoaded(rs)

	g, syn, err := c.run(ctx, rs)
	if err != nil {
		c.metrics.CompileFailed(err)
		return nil, err
	}

	stats := Stats{
		Classes:      rs.Count(model.KindClasses),
		Properties:   rs.Count(model.KindProperties),
		Instances:    rs.Count(model.KindInstances),
		Restrictions: rs.Count(model.KindRestrictions),
		Synthesized:  len(syn.Properties),
		Triples:      g.Len(),
		Duration:     time.Since(start),
	}
	c.metrics.CompileSucceeded(stats.Duration, stats.Triples)

	c.logger.Info("Compiled ontology",
		"classes", stats.Classes,
		"properties", stats.Properties,
		"instances", stats.Instances,
		"synthesized", stats.Synthesized,
		"triples", stats.Triples,
		"duration", stats.Duration)

	return &Result{Graph: g, Stats: stats}, nil
}

func (c *Compiler) run(ctx context.Context, rs *model.RecordSet) (*graph.Graph, *Synthesis, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	res, err := Resolve(rs, c.opts)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve references: %w", err)
	}
	c.logger.Debug("Resolved references")

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := ValidateProperties(res, c.opts); err != nil {
		return nil, nil, fmt.Errorf("validate properties: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	syn, err := Synthesize(res, c.opts)
	if err != nil {
		return nil, nil, fmt.Errorf("synthesize restrictions: %w", err)
	}
	c.logger.Debug("Synthesized measurement properties", "properties", len(syn.Properties))

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	g, err := Assemble(res, syn, c.opts)
	if err != nil {
		return nil, nil, fmt.Errorf("assemble graph: %w", err)
	}
	return g, syn, nil
}
