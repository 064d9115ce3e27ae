package detect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilnbuild/kiln/internal/adapters/backend"
	"github.com/kilnbuild/kiln/internal/adapters/fs"
	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/engine/cache"
	"github.com/kilnbuild/kiln/internal/engine/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t     *testing.T
	cache *cache.Cache
	root  string
	graph *domain.Graph
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:     t,
		cache: cache.New(backend.NewMemory()),
		root:  t.TempDir(),
		graph: domain.NewGraph(),
	}
}

func (f *fixture) add(n *domain.Node) {
	f.t.Helper()
	require.NoError(f.t, f.graph.AddNode(n))
}

func (f *fixture) classify() *detect.Result {
	f.t.Helper()
	require.NoError(f.t, f.graph.Validate())

	d := detect.NewDetector(f.cache, fs.NewHasher(), f.root)
	res, err := d.Classify(f.graph)
	require.NoError(f.t, err)
	return res
}

// recordFor commits a fingerprint matching the node's current state, built
// from the given dependency fingerprints and value.
func (f *fixture) recordFor(n *domain.Node, depFps []string, value []byte) {
	f.t.Helper()
	rec := domain.Fingerprint{
		Name:           n.Name.String(),
		CommandHash:    cache.LongHashString(n.Command),
		DependencyHash: cache.DependencyHash(depFps),
		OutputHash:     cache.LongHash(value),
		ValueHash:      cache.LongHash(value),
	}
	require.NoError(f.t, f.cache.Commit(rec, value))
}

func targetNode(name, command string, trigger domain.Trigger, deps ...string) *domain.Node {
	n := &domain.Node{
		Name:    domain.Intern(name),
		Kind:    domain.KindTarget,
		Command: command,
		Trigger: trigger,
	}
	for _, d := range deps {
		n.Dependencies = append(n.Dependencies, domain.Intern(d))
	}
	return n
}

func TestDetector_NeverBuilt(t *testing.T) {
	f := newFixture(t)
	f.add(targetNode("a", "echo hi", domain.TriggerAny))

	res := f.classify()
	assert.Equal(t, detect.StatusOutdated, res.Status(domain.Intern("a")))
	assert.Equal(t, []string{"a"}, res.OutdatedTargets(f.graph))
}

func TestDetector_Current(t *testing.T) {
	f := newFixture(t)
	n := targetNode("a", "echo hi", domain.TriggerAny)
	f.add(n)
	f.recordFor(n, nil, []byte("hi\n"))

	res := f.classify()
	assert.Equal(t, detect.StatusCurrent, res.Status(n.Name))
	assert.Equal(t, cache.LongHash([]byte("hi\n")), res.Fingerprint(n.Name))
	assert.Empty(t, res.OutdatedTargets(f.graph))
}

func TestDetector_CommandChanged(t *testing.T) {
	f := newFixture(t)
	n := targetNode("a", "echo hi", domain.TriggerAny)
	f.add(n)

	old := *n
	old.Command = "echo bye"
	f.recordFor(&old, nil, []byte("bye\n"))

	res := f.classify()
	assert.Equal(t, detect.StatusOutdated, res.Status(n.Name))
}

func TestDetector_TriggerAlways(t *testing.T) {
	f := newFixture(t)
	n := targetNode("a", "echo hi", domain.TriggerAlways)
	f.add(n)
	f.recordFor(n, nil, []byte("hi\n"))

	res := f.classify()
	assert.Equal(t, detect.StatusOutdated, res.Status(n.Name))
}

func TestDetector_OutdatedDependencyPropagates(t *testing.T) {
	f := newFixture(t)
	dep := targetNode("base", "echo base", domain.TriggerAny)
	top := targetNode("top", "use base", domain.TriggerAny, "base")
	f.add(dep)
	f.add(top)

	// base has no record, so top is stale regardless of its own record.
	f.recordFor(top, []string{cache.LongHash([]byte("base\n"))}, []byte("top\n"))

	res := f.classify()
	assert.Equal(t, detect.StatusOutdated, res.Status(dep.Name))
	assert.Equal(t, detect.StatusOutdated, res.Status(top.Name))
	assert.Equal(t, []string{"base", "top"}, res.OutdatedTargets(f.graph))
}

func TestDetector_DependencyFingerprintMismatch(t *testing.T) {
	f := newFixture(t)
	dep := targetNode("base", "echo base", domain.TriggerAny)
	top := targetNode("top", "use base", domain.TriggerAny, "base")
	f.add(dep)
	f.add(top)

	f.recordFor(dep, nil, []byte("base\n"))
	// top's record was taken against a different base fingerprint.
	f.recordFor(top, []string{cache.LongHash([]byte("old base"))}, []byte("top\n"))

	res := f.classify()
	assert.Equal(t, detect.StatusCurrent, res.Status(dep.Name))
	assert.Equal(t, detect.StatusOutdated, res.Status(top.Name))
}

func TestDetector_TriggerCommand_IgnoresDependencyChange(t *testing.T) {
	f := newFixture(t)
	dep := targetNode("base", "echo base", domain.TriggerAny)
	top := targetNode("top", "use base", domain.TriggerCommand, "base")
	f.add(dep)
	f.add(top)

	f.recordFor(dep, nil, []byte("base\n"))
	f.recordFor(top, []string{cache.LongHash([]byte("old base"))}, []byte("top\n"))

	res := f.classify()
	// The dependency hash no longer matches, but trigger=command only
	// reacts to command text changes. base itself is current.
	assert.Equal(t, detect.StatusCurrent, res.Status(top.Name))
}

func TestDetector_TriggerDepends_IgnoresCommandChange(t *testing.T) {
	f := newFixture(t)
	n := targetNode("a", "echo hi", domain.TriggerDepends)
	f.add(n)

	old := *n
	old.Command = "echo bye"
	f.recordFor(&old, nil, []byte("bye\n"))

	res := f.classify()
	assert.Equal(t, detect.StatusCurrent, res.Status(n.Name))
}

func TestDetector_OutputMissing(t *testing.T) {
	f := newFixture(t)
	n := targetNode("a", "echo hi > out.txt", domain.TriggerAny)
	n.Outputs = []domain.InternedString{domain.Intern("out.txt")}
	f.add(n)
	f.recordFor(n, nil, []byte(""))

	res := f.classify()
	assert.Equal(t, detect.StatusOutdated, res.Status(n.Name))
}

func TestDetector_OutputChanged(t *testing.T) {
	f := newFixture(t)
	n := targetNode("a", "echo hi > out.txt", domain.TriggerAny)
	n.Outputs = []domain.InternedString{domain.Intern("out.txt")}
	f.add(n)

	path := filepath.Join(f.root, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi\n"), 0o600))

	hasher := fs.NewHasher()
	fileHash, err := hasher.HashFileSet(f.root, []string{"out.txt"})
	require.NoError(t, err)

	rec := domain.Fingerprint{
		Name:           "a",
		CommandHash:    cache.LongHashString(n.Command),
		DependencyHash: cache.DependencyHash(nil),
		OutputHash:     fileHash,
		ValueHash:      cache.LongHash(nil),
	}
	require.NoError(t, f.cache.Commit(rec, nil))

	res := f.classify()
	assert.Equal(t, detect.StatusCurrent, res.Status(n.Name))

	// Touching the output content makes the node stale again.
	require.NoError(t, os.WriteFile(path, []byte("tampered\n"), 0o600))
	res = f.classify()
	assert.Equal(t, detect.StatusOutdated, res.Status(n.Name))
}

func TestDetector_ImportChainPropagation(t *testing.T) {
	f := newFixture(t)
	base := &domain.Node{
		Name:       domain.Intern("base"),
		Kind:       domain.KindImport,
		Trigger:    domain.TriggerAny,
		Definition: []byte("new-def"),
	}
	mid := &domain.Node{
		Name:         domain.Intern("mid"),
		Kind:         domain.KindImport,
		Trigger:      domain.TriggerAny,
		Definition:   []byte("calls base"),
		Dependencies: []domain.InternedString{domain.Intern("base")},
	}
	top := targetNode("top", "use mid", domain.TriggerAny, "mid")
	f.add(base)
	f.add(mid)
	f.add(top)

	// All records reflect base's previous definition. mid's own definition
	// and top's command are unchanged.
	oldBaseFp := cache.LongHash([]byte("old-def"))
	require.NoError(t, f.cache.Commit(domain.Fingerprint{
		Name:       "base",
		OutputHash: oldBaseFp,
		ValueHash:  oldBaseFp,
	}, []byte("old-def")))
	midFp := cache.LongHash([]byte("calls base"))
	require.NoError(t, f.cache.Commit(domain.Fingerprint{
		Name:           "mid",
		DependencyHash: cache.DependencyHash([]string{oldBaseFp}),
		OutputHash:     midFp,
		ValueHash:      midFp,
	}, []byte("calls base")))
	f.recordFor(top, []string{midFp}, []byte("top\n"))

	// Changing base alone must cascade through mid to top.
	res := f.classify()
	assert.Equal(t, detect.StatusOutdated, res.Status(base.Name))
	assert.Equal(t, detect.StatusOutdated, res.Status(mid.Name))
	assert.Equal(t, detect.StatusOutdated, res.Status(top.Name))
	assert.Equal(t, []string{"top"}, res.OutdatedTargets(f.graph))
}

func TestDetector_ImportSnapshot(t *testing.T) {
	f := newFixture(t)
	imp := &domain.Node{
		Name:       domain.Intern("threshold"),
		Kind:       domain.KindImport,
		Trigger:    domain.TriggerAny,
		Definition: []byte("0.5"),
	}
	f.add(imp)

	// Imports are classifiable without any record: outdated, but with a
	// known fingerprint.
	res := f.classify()
	assert.Equal(t, detect.StatusOutdated, res.Status(imp.Name))
	assert.Equal(t, cache.LongHash([]byte("0.5")), res.Fingerprint(imp.Name))

	rec := domain.Fingerprint{
		Name:       "threshold",
		OutputHash: cache.LongHash([]byte("0.5")),
		ValueHash:  cache.LongHash([]byte("0.5")),
	}
	require.NoError(t, f.cache.Commit(rec, []byte("0.5")))

	res = f.classify()
	assert.Equal(t, detect.StatusCurrent, res.Status(imp.Name))

	// A changed definition invalidates the snapshot.
	changed := *imp
	changed.Definition = []byte("0.9")
	g2 := domain.NewGraph()
	require.NoError(t, g2.AddNode(&changed))
	require.NoError(t, g2.Validate())

	d := detect.NewDetector(f.cache, fs.NewHasher(), f.root)
	res2, err := d.Classify(g2)
	require.NoError(t, err)
	assert.Equal(t, detect.StatusOutdated, res2.Status(imp.Name))
}
