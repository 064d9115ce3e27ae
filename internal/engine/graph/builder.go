// Package graph builds the dependency graph from a plan.
package graph

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Builder turns target declarations into a validated domain.Graph.
//
// Dependency discovery is delegated to the extractor collaborators; the
// builder itself only wires edges, synthesizes import nodes for referenced
// vars, and rejects invalid shapes (cycles, ambiguous outputs).
type Builder struct {
	extractor ports.SymbolExtractor
	docs      []ports.DocExtractor
	root      string
}

// NewBuilder creates a Builder. root anchors declared file paths.
func NewBuilder(extractor ports.SymbolExtractor, docs []ports.DocExtractor, root string) *Builder {
	return &Builder{extractor: extractor, docs: docs, root: root}
}

// Build constructs the graph for the plan. The result is immutable and
// already validated: acyclic, no ambiguous outputs, no dangling references.
func (b *Builder) Build(plan *domain.Plan) (*domain.Graph, error) {
	symbols, err := symbolTable(plan)
	if err != nil {
		return nil, err
	}

	producers, err := outputIndex(plan)
	if err != nil {
		return nil, err
	}

	g := domain.NewGraph()
	referenced := make(map[string]bool)

	for _, spec := range plan.Targets {
		node, deps, err := b.buildTarget(spec, symbols, producers)
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			if _, isVar := plan.Vars[dep]; isVar {
				referenced[dep] = true
			}
		}
		if err := g.AddNode(node); err != nil {
			return nil, err
		}
	}

	if err := b.addImports(g, plan, symbols, referenced); err != nil {
		return nil, err
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (b *Builder) buildTarget(
	spec domain.TargetSpec,
	symbols []string,
	producers map[string]string,
) (*domain.Node, []string, error) {
	trigger := spec.Trigger
	if trigger == "" {
		trigger = domain.TriggerAny
	}
	if !trigger.Valid() {
		return nil, nil, zerr.With(zerr.With(domain.ErrInvalidTrigger, "node", spec.Name), "trigger", string(trigger))
	}

	deps, err := b.extractor.Extract(spec.Command, symbols)
	if err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrExtraction.Error()), "node", spec.Name)
	}

	docDeps, err := b.scanDocs(spec, symbols, producers)
	if err != nil {
		return nil, nil, err
	}
	deps = append(deps, docDeps...)

	// Declared-file edge: a target consuming a path another target produces
	// depends on that producer.
	for _, input := range spec.Inputs {
		if producer, ok := producers[input]; ok && producer != spec.Name {
			deps = append(deps, producer)
		}
	}

	deps = canonicalize(deps, spec.Name)

	node := &domain.Node{
		Name:         domain.Intern(spec.Name),
		Kind:         domain.KindTarget,
		Command:      spec.Command,
		Inputs:       internSorted(spec.Inputs),
		Outputs:      internSorted(spec.Outputs),
		Dependencies: internAll(deps),
		Trigger:      trigger,
	}
	return node, deps, nil
}

// scanDocs runs registered literate-document extractors over declared inputs
// with a matching extension. Inputs that are themselves produced by another
// target may not exist yet; those are skipped, the file edge covers them.
func (b *Builder) scanDocs(
	spec domain.TargetSpec,
	symbols []string,
	producers map[string]string,
) ([]string, error) {
	var deps []string
	for _, input := range spec.Inputs {
		doc := b.docFor(input)
		if doc == nil {
			continue
		}

		path := filepath.Join(b.root, input)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if _, produced := producers[input]; produced {
					continue
				}
			}
			return nil, zerr.With(zerr.With(zerr.Wrap(err, domain.ErrExtraction.Error()), "node", spec.Name), "document", input)
		}

		names, err := doc.ExtractFile(path)
		if err != nil {
			return nil, zerr.With(zerr.With(zerr.Wrap(err, domain.ErrExtraction.Error()), "node", spec.Name), "document", input)
		}
		for _, name := range names {
			if !slices.Contains(symbols, name) {
				return nil, zerr.With(zerr.With(zerr.With(domain.ErrMissingDependency, "node", spec.Name), "document", input), "dependency", name)
			}
			deps = append(deps, name)
		}
	}
	return deps, nil
}

func (b *Builder) docFor(path string) ports.DocExtractor {
	ext := strings.ToLower(filepath.Ext(path))
	for _, doc := range b.docs {
		if slices.Contains(doc.Extensions(), ext) {
			return doc
		}
	}
	return nil
}

// addImports synthesizes import nodes for every referenced var, chasing
// references between vars. Import-to-import edges are ordinary DAG edges.
func (b *Builder) addImports(
	g *domain.Graph,
	plan *domain.Plan,
	symbols []string,
	referenced map[string]bool,
) error {
	queue := make([]string, 0, len(referenced))
	for name := range referenced {
		queue = append(queue, name)
	}
	slices.Sort(queue)

	added := make(map[string]bool)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if added[name] {
			continue
		}
		added[name] = true

		definition := plan.Vars[name]
		deps, err := b.extractor.Extract(definition, symbols)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrExtraction.Error()), "node", name)
		}
		deps = canonicalize(deps, name)

		for _, dep := range deps {
			if _, isVar := plan.Vars[dep]; isVar && !added[dep] {
				queue = append(queue, dep)
			}
		}

		node := &domain.Node{
			Name:         domain.Intern(name),
			Kind:         domain.KindImport,
			Dependencies: internAll(deps),
			Trigger:      domain.TriggerAny,
			Definition:   []byte(definition),
		}
		if err := g.AddNode(node); err != nil {
			return err
		}
	}
	return nil
}

// symbolTable collects every declarable name: targets in declaration order,
// then vars sorted. Targets and vars share one namespace.
func symbolTable(plan *domain.Plan) ([]string, error) {
	seen := make(map[string]bool, len(plan.Targets))
	symbols := make([]string, 0, len(plan.Targets)+len(plan.Vars))

	for _, spec := range plan.Targets {
		if spec.Name == "" {
			return nil, zerr.New("target name must not be empty")
		}
		if seen[spec.Name] {
			return nil, zerr.With(domain.ErrNodeAlreadyExists, "node", spec.Name)
		}
		seen[spec.Name] = true
		symbols = append(symbols, spec.Name)
	}

	varNames := make([]string, 0, len(plan.Vars))
	for name := range plan.Vars {
		if seen[name] {
			return nil, zerr.With(domain.ErrNodeAlreadyExists, "node", name)
		}
		varNames = append(varNames, name)
	}
	slices.Sort(varNames)
	return append(symbols, varNames...), nil
}

// outputIndex maps each declared output path to its producing target,
// rejecting paths claimed by more than one target.
func outputIndex(plan *domain.Plan) (map[string]string, error) {
	producers := make(map[string]string)
	for _, spec := range plan.Targets {
		for _, output := range spec.Outputs {
			if other, exists := producers[output]; exists {
				return nil, zerr.With(zerr.With(zerr.With(domain.ErrAmbiguousOutput,
					"path", output), "node", spec.Name), "conflicts_with", other)
			}
			producers[output] = spec.Name
		}
	}
	return producers, nil
}

// canonicalize sorts, deduplicates, and drops self-references. A command
// mentioning its own target name (an output filename, say) is not an edge.
func canonicalize(deps []string, self string) []string {
	slices.Sort(deps)
	deps = slices.Compact(deps)
	return slices.DeleteFunc(deps, func(d string) bool { return d == self })
}

func internAll(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}
	res := make([]domain.InternedString, len(strs))
	for i, s := range strs {
		res[i] = domain.Intern(s)
	}
	return res
}

func internSorted(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}
	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return internAll(slices.Compact(sorted))
}
