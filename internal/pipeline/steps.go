package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// External tools the pipeline shells out to.
const (
	cargoBin   = "cargo"
	bindgenBin = "wasm-bindgen"
)

func (p *Pipeline) runBuild(ctx context.Context) error {
	stderr, err := p.exec.Run(ctx, p.dir, cargoBin,
		"build",
		"--target", p.cfg.Build.Target,
		"-p", p.cfg.Build.Package,
	)
	if err != nil {
		return &StepError{
			Step:     "build",
			Kind:     KindBuild,
			ExitCode: exitCode(err),
			Stderr:   stderr,
			Err:      err,
		}
	}
	return nil
}

func (p *Pipeline) runVerify(ctx context.Context) error {
	artifact := filepath.Join(p.dir, p.cfg.Build.ArtifactPath())
	if err := p.verify(ctx, artifact); err != nil {
		return &StepError{
			Step:     "verify",
			Kind:     KindVerify,
			ExitCode: -1,
			Err:      err,
		}
	}
	return nil
}

func (p *Pipeline) runBindgen(ctx context.Context) error {
	stderr, err := p.exec.Run(ctx, p.dir, bindgenBin,
		"--target", "web",
		"--no-typescript",
		"--debug",
		"--out-dir", p.cfg.Bindgen.OutDir,
		"--out-name", p.cfg.ModuleName(),
		p.cfg.Build.ArtifactPath(),
	)
	if err != nil {
		return &StepError{
			Step:     "bindgen",
			Kind:     KindBindgen,
			ExitCode: exitCode(err),
			Stderr:   stderr,
			Err:      err,
		}
	}
	return nil
}

func (p *Pipeline) runStage(ctx context.Context) error {
	src := filepath.Join(p.dir, p.cfg.Stage.EntryPage)
	dst := filepath.Join(p.dir, p.cfg.Bindgen.OutDir, "index.html")

	if err := copyFile(src, dst); err != nil {
		return &StepError{
			Step:     "stage",
			Kind:     KindStage,
			ExitCode: -1,
			Err:      err,
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	s, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open entry page: %w", err)
	}
	defer s.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	d, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(d, s); err != nil {
		d.Close()
		return fmt.Errorf("failed to copy entry page: %w", err)
	}

	return d.Close()
}
