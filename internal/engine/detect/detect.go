// Package detect classifies graph nodes as current or outdated against the
// fingerprint cache.
package detect

import (
	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/core/ports"
	"github.com/kilnbuild/kiln/internal/engine/cache"
	"go.trai.ch/zerr"
)

// Status is a node's change-detection classification.
type Status string

const (
	// StatusCurrent means the recorded fingerprint still matches.
	StatusCurrent Status = "current"
	// StatusOutdated means the node must be rebuilt.
	StatusOutdated Status = "outdated"
)

// Detector runs the change-detection pass.
type Detector struct {
	cache *cache.Cache
	files ports.FileHasher
	root  string
}

// NewDetector creates a Detector. root anchors declared file paths.
func NewDetector(c *cache.Cache, files ports.FileHasher, root string) *Detector {
	return &Detector{cache: c, files: files, root: root}
}

// Result holds one run's classifications and the current fingerprints used
// to compute them.
type Result struct {
	statuses     map[domain.InternedString]Status
	fingerprints map[domain.InternedString]string
}

// Status returns the classification for a node.
func (r *Result) Status(name domain.InternedString) Status {
	return r.statuses[name]
}

// Fingerprint returns a node's current fingerprint. Empty for outdated
// targets, whose fingerprint is unknown until they are rebuilt.
func (r *Result) Fingerprint(name domain.InternedString) string {
	return r.fingerprints[name]
}

// OutdatedTargets returns the outdated declared targets in dependency order.
func (r *Result) OutdatedTargets(g *domain.Graph) []string {
	var names []string
	for node := range g.Walk() {
		if node.IsTarget() && r.statuses[node.Name] == StatusOutdated {
			names = append(names, node.Name.String())
		}
	}
	return names
}

// Classify runs one memoized dependency-ordered pass over the graph. Each
// node is classified exactly once; dependents reuse the dependency's status,
// so an outdated dependency always forces outdated dependents.
func (d *Detector) Classify(g *domain.Graph) (*Result, error) {
	res := &Result{
		statuses:     make(map[domain.InternedString]Status, g.NodeCount()),
		fingerprints: make(map[domain.InternedString]string, g.NodeCount()),
	}

	for node := range g.Walk() {
		status, fp, err := d.classifyNode(&node, res)
		if err != nil {
			return nil, err
		}
		res.statuses[node.Name] = status
		res.fingerprints[node.Name] = fp
	}
	return res, nil
}

func (d *Detector) classifyNode(node *domain.Node, res *Result) (Status, string, error) {
	rec, err := d.cache.Lookup(node.Name.String())
	if err != nil {
		return "", "", err
	}

	if node.Kind == domain.KindImport {
		return classifyImport(node, rec, res)
	}
	return d.classifyTarget(node, rec, res)
}

// classifyImport compares the snapshot of the import's current definition
// against the recorded fingerprint. An import's fingerprint is always
// computable without building anything, but outdated dependencies still
// propagate: an import referencing another changed import is outdated even
// when its own definition text is untouched.
func classifyImport(node *domain.Node, rec *domain.Fingerprint, res *Result) (Status, string, error) {
	fp := cache.LongHash(node.Definition)
	for _, dep := range node.Dependencies {
		if res.statuses[dep] == StatusOutdated {
			return StatusOutdated, fp, nil
		}
	}
	if rec == nil || rec.OutputHash != fp {
		return StatusOutdated, fp, nil
	}
	return StatusCurrent, fp, nil
}

// classifyTarget applies the change-detection steps in order. "Never built"
// and outdated-dependency propagation apply under every trigger policy;
// skipping them would desynchronize the recorded dependency hashes.
func (d *Detector) classifyTarget(node *domain.Node, rec *domain.Fingerprint, res *Result) (Status, string, error) {
	if rec == nil {
		return StatusOutdated, "", nil
	}
	if node.Trigger == domain.TriggerAlways {
		return StatusOutdated, "", nil
	}

	for _, dep := range node.Dependencies {
		if res.statuses[dep] == StatusOutdated {
			return StatusOutdated, "", nil
		}
	}

	trig := node.Trigger
	if reactsTo(trig, domain.TriggerCommand) &&
		cache.LongHashString(node.Command) != rec.CommandHash {
		return StatusOutdated, "", nil
	}

	if reactsTo(trig, domain.TriggerDepends) {
		fps := make([]string, len(node.Dependencies))
		for i, dep := range node.Dependencies {
			fps[i] = res.fingerprints[dep]
		}
		if cache.DependencyHash(fps) != rec.DependencyHash {
			return StatusOutdated, "", nil
		}
	}

	if reactsTo(trig, domain.TriggerFile) && len(node.Outputs) > 0 {
		outdated, err := d.filesChanged(node, rec)
		if err != nil {
			return "", "", err
		}
		if outdated {
			return StatusOutdated, "", nil
		}
	}

	return StatusCurrent, rec.OutputHash, nil
}

func (d *Detector) filesChanged(node *domain.Node, rec *domain.Fingerprint) (bool, error) {
	paths := make([]string, len(node.Outputs))
	for i, p := range node.Outputs {
		paths[i] = p.String()
	}

	missing, err := d.files.MissingFiles(d.root, paths)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to check declared outputs"), "node", node.Name.String())
	}
	if len(missing) > 0 {
		return true, nil
	}

	fileHash, err := d.files.HashFileSet(d.root, paths)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to hash declared outputs"), "node", node.Name.String())
	}
	return fileHash != rec.OutputHash, nil
}

// reactsTo reports whether a trigger policy enables the given detection
// step. TriggerAny enables everything; the narrow policies enable only
// their own step.
func reactsTo(trig, step domain.Trigger) bool {
	if trig == domain.TriggerAny || trig == "" {
		return true
	}
	return trig == step
}
