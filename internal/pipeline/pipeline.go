// Package pipeline sequences the wasm development loop: compile the
// package, verify the artifact, generate web bindings, and stage the
// static entry page next to them. Steps run strictly in order and the
// first failure aborts everything that follows.
package pipeline

import (
	"context"

	"wasmloop/internal/config"
	"wasmloop/internal/logging"
)

// Step is one named stage of the pipeline.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pipeline executes the build/verify/bindgen/stage sequence for one
// project directory.
type Pipeline struct {
	cfg    config.Config
	dir    string
	exec   Executor
	logger *logging.Logger
	verify func(ctx context.Context, artifact string) error
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithExecutor substitutes the external command executor.
func WithExecutor(e Executor) Option {
	return func(p *Pipeline) { p.exec = e }
}

// WithLogger substitutes the logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithVerifier substitutes the artifact verification function.
func WithVerifier(fn func(ctx context.Context, artifact string) error) Option {
	return func(p *Pipeline) { p.verify = fn }
}

// New creates a Pipeline rooted at dir. An empty dir means the current
// working directory.
func New(cfg config.Config, dir string, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		dir:    dir,
		exec:   LocalExecutor{},
		logger: logging.Default(),
		verify: VerifyArtifact,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Steps returns the ordered pipeline steps.
func (p *Pipeline) Steps() []Step {
	return []Step{
		{Name: "build", Run: p.runBuild},
		{Name: "verify", Run: p.runVerify},
		{Name: "bindgen", Run: p.runBindgen},
		{Name: "stage", Run: p.runStage},
	}
}

// Run executes every step in order, stopping at the first error.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, step := range p.Steps() {
		log := p.logger.With("step", step.Name)
		log.Info("starting")
		if err := step.Run(ctx); err != nil {
			log.Error("failed", "error", err)
			return err
		}
		log.Debug("finished")
	}
	p.logger.Info("pipeline complete", "out_dir", p.cfg.Bindgen.OutDir)
	return nil
}
