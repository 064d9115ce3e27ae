// Package app implements the application layer for kiln.
package app

import (
	"context"
	"runtime"

	"github.com/kilnbuild/kiln/internal/adapters/config" //nolint:depguard // Wired in app layer
	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/core/ports"
	"github.com/kilnbuild/kiln/internal/engine/cache"
	"github.com/kilnbuild/kiln/internal/engine/detect"
	"github.com/kilnbuild/kiln/internal/engine/graph"
	"github.com/kilnbuild/kiln/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App exposes the public build operations over one explicit cache handle.
type App struct {
	loader  ports.PlanLoader
	builder *graph.Builder
	cache   *cache.Cache
	files   ports.FileHasher
	sched   *scheduler.Scheduler
	logger  ports.Logger
	cwd     string
}

// New creates a new App instance.
func New(
	loader ports.PlanLoader,
	builder *graph.Builder,
	c *cache.Cache,
	files ports.FileHasher,
	sched *scheduler.Scheduler,
	log ports.Logger,
) *App {
	return &App{
		loader:  loader,
		builder: builder,
		cache:   c,
		files:   files,
		sched:   sched,
		logger:  log,
		cwd:     ".",
	}
}

// UsePlanFile switches the app to load its plan from the named file instead
// of the default.
func (a *App) UsePlanFile(name string) {
	a.loader = &config.FilePlanLoader{Filename: name}
}

// MakeOptions configures a Make run. Zero values defer to plan settings.
type MakeOptions struct {
	Jobs      int
	KeepGoing bool
}

// Outdated reports which targets would rebuild, without building anything.
func (a *App) Outdated(_ context.Context) ([]string, error) {
	g, res, _, err := a.analyze()
	if err != nil {
		return nil, err
	}
	return res.OutdatedTargets(g), nil
}

// Waves reports the sequence of ready sets a run would realize, without
// invoking the executor.
func (a *App) Waves(_ context.Context) ([][]string, error) {
	g, res, _, err := a.analyze()
	if err != nil {
		return nil, err
	}
	return a.sched.Waves(g, res), nil
}

// Make builds every outdated target and returns the run report. Nodes built
// before a failure keep their fingerprints.
func (a *App) Make(ctx context.Context, opts MakeOptions) (*domain.Report, error) {
	g, res, plan, err := a.analyze()
	if err != nil {
		return nil, err
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = plan.Settings.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	policy := scheduler.PolicyStopOnError
	if opts.KeepGoing || plan.Settings.KeepGoing {
		policy = scheduler.PolicyKeepGoing
	}

	report, err := a.sched.Run(ctx, g, res, jobs, policy)
	if err != nil {
		return report, zerr.Wrap(err, "build execution failed")
	}
	return report, nil
}

// Clean removes fingerprint records (all of them when names is empty).
func (a *App) Clean(_ context.Context, names []string, destroy, purge bool) error {
	return a.cache.Clean(names, destroy, purge)
}

// List returns the names of all cached nodes.
func (a *App) List(_ context.Context) ([]string, error) {
	return a.cache.Names()
}

// Read returns the stored value of a built node.
func (a *App) Read(_ context.Context, name string) ([]byte, error) {
	return a.cache.Read(name)
}

func (a *App) analyze() (*domain.Graph, *detect.Result, *domain.Plan, error) {
	plan, err := a.loader.Load(a.cwd)
	if err != nil {
		return nil, nil, nil, zerr.Wrap(err, "failed to load plan")
	}

	g, err := a.builder.Build(plan)
	if err != nil {
		return nil, nil, nil, err
	}

	detector := detect.NewDetector(a.cache, a.files, a.cwd)
	res, err := detector.Classify(g)
	if err != nil {
		return nil, nil, nil, err
	}
	return g, res, plan, nil
}
