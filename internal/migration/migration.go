package migration

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
	"github.com/rflorenc/tackle-migrator/internal/platform"
)

// Actions accepted on the command line and by the job API.
const (
	ActionExportOrigin = "export-origin"
	ActionImport       = "import"
	ActionClean        = "clean"
	ActionCleanAll     = "clean-all"
)

var knownActions = []string{ActionExportOrigin, ActionImport, ActionClean, ActionCleanAll}

// Actions returns the migration actions in documentation order.
func Actions() []string {
	return append([]string(nil), knownActions...)
}

// IsAction reports whether a is a migration action.
func IsAction(a string) bool {
	for _, known := range knownActions {
		if a == known {
			return true
		}
	}
	return false
}

// Targets resolves the origin and destination systems. Resolution is lazy so
// an action only requires the targets it talks to.
type Targets interface {
	Origin() (*models.Target, error)
	Destination() (*models.Target, error)
}

// Options carries everything a run needs, in place of ambient state.
type Options struct {
	Targets              Targets
	DataDir              string
	Timeout              time.Duration
	Version              string
	NoAuth               bool
	SkipDestinationCheck bool
	IgnoreImportErrors   bool
	DisableSSLWarnings   bool
}

// Runner executes actions in the order given. Every action connects and
// authenticates on its own; a failing action does not roll back the ones
// before it.
type Runner struct {
	opts Options
	log  *zap.Logger
}

func NewRunner(opts Options, log *zap.Logger) *Runner {
	return &Runner{opts: opts, log: log}
}

// Run executes actions sequentially and stops at the first error.
func (r *Runner) Run(ctx context.Context, actions []string) error {
	for _, a := range actions {
		if !IsAction(a) {
			return fmt.Errorf("%w: unknown action %q", apperrors.ErrConfig, a)
		}
	}
	for _, a := range actions {
		r.log.Info("=== " + a + " ===")
		var err error
		switch a {
		case ActionExportOrigin:
			err = r.exportOrigin(ctx)
		case ActionImport:
			err = r.importSnapshot(ctx)
		case ActionClean:
			err = r.clean(ctx)
		case ActionCleanAll:
			err = r.cleanAll(ctx)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", a, err)
		}
	}
	return nil
}

func (r *Runner) origin(ctx context.Context) (*platform.Client, *models.Target, error) {
	target, err := r.opts.Targets.Origin()
	if err != nil {
		return nil, nil, err
	}
	c, err := r.connect(ctx, target)
	return c, target, err
}

func (r *Runner) destination(ctx context.Context) (*platform.Client, error) {
	target, err := r.opts.Targets.Destination()
	if err != nil {
		return nil, err
	}
	return r.connect(ctx, target)
}

// connect builds a client for target and acquires a fresh token unless
// authentication is disabled.
func (r *Runner) connect(ctx context.Context, target *models.Target) (*platform.Client, error) {
	if target.Insecure && !r.opts.DisableSSLWarnings {
		r.log.Warn("TLS certificate verification is disabled", zap.String("target", target.Name), zap.String("url", target.BaseURL()))
	}
	c := platform.NewClient(target, r.opts.Timeout)
	if r.opts.NoAuth {
		return c, nil
	}
	if err := c.Authenticate(ctx, target); err != nil {
		return nil, err
	}
	r.log.Debug("authenticated", zap.String("target", target.Name))
	return c, nil
}

func (r *Runner) exportOrigin(ctx context.Context) error {
	origin, target, err := r.origin(ctx)
	if err != nil {
		return err
	}
	dest, err := r.destination(ctx)
	if err != nil {
		return err
	}
	seed, err := LoadSeedIndex(ctx, dest, r.log)
	if err != nil {
		return err
	}
	snap, err := NewExporter(origin, seed, r.log).Export(ctx)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(r.opts.DataDir, snap); err != nil {
		return err
	}
	if err := WriteManifest(r.opts.DataDir, NewManifest(r.opts.Version, target.BaseURL(), snap)); err != nil {
		return err
	}
	r.log.Info("snapshot written", zap.String("path", r.opts.DataDir))
	return nil
}

func (r *Runner) importSnapshot(ctx context.Context) error {
	snap, err := ReadSnapshot(r.opts.DataDir)
	if err != nil {
		return err
	}
	dest, err := r.destination(ctx)
	if err != nil {
		return err
	}
	if r.opts.SkipDestinationCheck {
		r.log.Warn("skipping destination conflict check")
	} else if err := Check(ctx, dest, snap, r.log); err != nil {
		return err
	}
	return NewImporter(dest, r.opts.IgnoreImportErrors, r.log).Upload(ctx, snap)
}

func (r *Runner) clean(ctx context.Context) error {
	snap, err := ReadSnapshot(r.opts.DataDir)
	if err != nil {
		return err
	}
	dest, err := r.destination(ctx)
	if err != nil {
		return err
	}
	NewCleaner(dest, r.log).Clean(ctx, snap)
	return nil
}

func (r *Runner) cleanAll(ctx context.Context) error {
	dest, err := r.destination(ctx)
	if err != nil {
		return err
	}
	NewCleaner(dest, r.log).CleanAll(ctx)
	return nil
}
