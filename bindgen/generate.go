package bindgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/meta"
)

// Generator emits Go source for metadata packages.
type Generator struct {
	cfg Config
	log *zap.Logger
}

// New returns a generator using the package logger.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg.withDefaults(), log: Logger()}
}

// WithLogger returns a copy of g logging to l.
func (g *Generator) WithLogger(l *zap.Logger) *Generator {
	c := *g
	c.log = l
	return &c
}

// Entrypoint emits the library glue for pkg: one boundary function per
// member and a TgLoad that registers them.
func (g *Generator) Entrypoint(pkg *meta.Package) ([]byte, error) {
	p, err := g.plan(pkg)
	if err != nil {
		return nil, err
	}
	return p.entrypoint()
}

// Bindings emits the host bindings for pkg.
func (g *Generator) Bindings(pkg *meta.Package) ([]byte, error) {
	p, err := g.plan(pkg)
	if err != nil {
		return nil, err
	}
	return p.bindings()
}

func (g *Generator) plan(pkg *meta.Package) (*plan, error) {
	if err := g.cfg.validate(); err != nil {
		return nil, err
	}
	return newPlan(g.cfg, pkg, g.log)
}

// Output is the generated source for one package.
type Output struct {
	Package    *meta.Package
	Entrypoint []byte
	Bindings   []byte
}

// Generate runs the generator for several packages concurrently. Packages
// without a configured Go package name get one derived from their own name.
func Generate(ctx context.Context, pkgs []*meta.Package, cfg Config) ([]Output, error) {
	out := make([]Output, len(pkgs))
	g, ctx := errgroup.WithContext(ctx)
	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := cfg
			if c.PackageName == "" && pkg != nil {
				c.PackageName = PackageName(pkg.Name)
			}
			gen := New(c)
			entry, err := gen.Entrypoint(pkg)
			if err != nil {
				return err
			}
			host, err := gen.Bindings(pkg)
			if err != nil {
				return err
			}
			out[i] = Output{Package: pkg, Entrypoint: entry, Bindings: host}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// PackageName derives a Go package name from a metadata package name.
func PackageName(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	for _, r := range name {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return "generated"
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "p" + s
	}
	return s
}

// WriteFile replaces path with src through a temporary file in the same
// directory, so readers never observe a partial file.
func WriteFile(path string, src []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "create "+dir)
	}
	temp, err := os.CreateTemp(dir, ".tmp-tangara-*")
	if err != nil {
		return errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "create temporary file")
	}
	tempPath := temp.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}
	if _, err = temp.Write(src); err != nil {
		_ = temp.Close()
		cleanup()
		return errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "write "+path)
	}
	if err = temp.Chmod(0o644); err != nil {
		_ = temp.Close()
		cleanup()
		return errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "write "+path)
	}
	if err = temp.Close(); err != nil {
		cleanup()
		return errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "write "+path)
	}
	if err = os.Rename(tempPath, path); err != nil {
		cleanup()
		return errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "write "+path)
	}
	return nil
}
