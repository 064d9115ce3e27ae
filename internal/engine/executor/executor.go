// Package executor runs single nodes and commits their fingerprints.
package executor

import (
	"context"
	"strings"
	"time"

	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/core/ports"
	"github.com/kilnbuild/kiln/internal/engine/cache"
	"go.trai.ch/zerr"
)

// Executor builds one node at a time: it runs the command (or snapshots an
// import), verifies declared outputs, and commits a new fingerprint record.
// On any failure no record is written, so the node stays outdated for the
// next run.
type Executor struct {
	cache  *cache.Cache
	runner ports.Runner
	files  ports.FileHasher
	root   string
	now    func() time.Time
}

// New creates an Executor. root anchors declared file paths.
func New(c *cache.Cache, runner ports.Runner, files ports.FileHasher, root string) *Executor {
	return &Executor{
		cache:  c,
		runner: runner,
		files:  files,
		root:   root,
		now:    time.Now,
	}
}

// Build executes node and commits its fingerprint. depFingerprints must be
// the current fingerprints of node.Dependencies, in that order; they become
// the record's DependencyHash. Returns the node's new fingerprint.
func (e *Executor) Build(ctx context.Context, node *domain.Node, depFingerprints []string) (string, error) {
	if node.Kind == domain.KindImport {
		return e.snapshotImport(node, depFingerprints)
	}
	return e.buildTarget(ctx, node, depFingerprints)
}

// snapshotImport fingerprints the import's current definition directly;
// imports are never executed.
func (e *Executor) snapshotImport(node *domain.Node, depFingerprints []string) (string, error) {
	valueHash := cache.LongHash(node.Definition)
	rec := domain.Fingerprint{
		Name:           node.Name.String(),
		DependencyHash: cache.DependencyHash(depFingerprints),
		OutputHash:     valueHash,
		ValueHash:      valueHash,
		BuiltAt:        e.now(),
	}
	if err := e.cache.Commit(rec, node.Definition); err != nil {
		return "", err
	}
	return valueHash, nil
}

func (e *Executor) buildTarget(ctx context.Context, node *domain.Node, depFingerprints []string) (string, error) {
	name := node.Name.String()

	value, err := e.runner.Run(ctx, node.Command)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrBuildFailed.Error()), "node", name)
	}

	outputHash, err := e.hashOutputs(node, value)
	if err != nil {
		return "", err
	}

	rec := domain.Fingerprint{
		Name:           name,
		CommandHash:    cache.LongHashString(node.Command),
		DependencyHash: cache.DependencyHash(depFingerprints),
		OutputHash:     outputHash,
		ValueHash:      cache.LongHash(value),
		BuiltAt:        e.now(),
	}
	if err := e.cache.Commit(rec, value); err != nil {
		return "", err
	}
	return outputHash, nil
}

// hashOutputs verifies declared outputs exist and returns the node's
// fingerprint: the combined file hash when outputs are declared, the value
// hash otherwise.
func (e *Executor) hashOutputs(node *domain.Node, value []byte) (string, error) {
	if len(node.Outputs) == 0 {
		return cache.LongHash(value), nil
	}

	name := node.Name.String()
	paths := make([]string, len(node.Outputs))
	for i, p := range node.Outputs {
		paths[i] = p.String()
	}

	missing, err := e.files.MissingFiles(e.root, paths)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to verify declared outputs"), "node", name)
	}
	if len(missing) > 0 {
		return "", zerr.With(zerr.With(domain.ErrOutputMissing, "node", name), "missing", strings.Join(missing, ","))
	}

	outputHash, err := e.files.HashFileSet(e.root, paths)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash declared outputs"), "node", name)
	}
	return outputHash, nil
}
