// Package scheduler walks the dependency graph and dispatches outdated
// nodes to the build executor as their dependencies resolve.
package scheduler

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/core/ports"
	"github.com/kilnbuild/kiln/internal/engine/detect"
	"github.com/kilnbuild/kiln/internal/engine/executor"
	"go.trai.ch/zerr"
)

// Policy controls what happens after the first build failure.
type Policy string

const (
	// PolicyStopOnError stops dispatching new nodes after a failure.
	// Already-running nodes finish, keeping their fingerprints intact.
	PolicyStopOnError Policy = "stop"
	// PolicyKeepGoing marks every transitive dependent of a failed node as
	// un-buildable and keeps building independent branches.
	PolicyKeepGoing Policy = "keep-going"
)

// NodeStatus represents the scheduling status of a node.
type NodeStatus string

const (
	// StatusPending indicates the node is waiting on dependencies.
	StatusPending NodeStatus = "Pending"
	// StatusRunning indicates the node is currently building.
	StatusRunning NodeStatus = "Running"
	// StatusBuilt indicates the node finished successfully.
	StatusBuilt NodeStatus = "Built"
	// StatusFailed indicates the node's command failed.
	StatusFailed NodeStatus = "Failed"
	// StatusSkipped indicates the node was current and never dispatched.
	StatusSkipped NodeStatus = "Skipped"
	// StatusBlocked indicates an upstream dependency failed.
	StatusBlocked NodeStatus = "Blocked"
)

// Scheduler manages the execution of the dependency graph.
type Scheduler struct {
	executor *executor.Executor
	tracer   ports.Tracer

	mu         sync.RWMutex
	nodeStatus map[domain.InternedString]NodeStatus
}

// New creates a Scheduler.
func New(exec *executor.Executor, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		executor:   exec,
		tracer:     tracer,
		nodeStatus: make(map[domain.InternedString]NodeStatus),
	}
}

// Status returns the scheduling status of a node.
func (s *Scheduler) Status(name domain.InternedString) NodeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodeStatus[name]
}

func (s *Scheduler) updateStatus(name domain.InternedString, status NodeStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeStatus[name] = status
}

// Run executes every outdated node in the graph with the given parallelism.
// A node is dispatched the moment its last dependency resolves; current
// nodes are never dispatched but still unblock their dependents. The report
// always reflects the nodes actually built before any failure.
func (s *Scheduler) Run(
	ctx context.Context,
	g *domain.Graph,
	res *detect.Result,
	parallelism int,
	policy Policy,
) (*domain.Report, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	state := s.newRunState(ctx, g, res, parallelism, policy)
	s.tracer.EmitPlan(ctx, res.OutdatedTargets(g))

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return state.report(), errors.Join(state.errs, state.ctx.Err())
		}

		select {
		case r := <-state.resultsCh:
			state.handleResult(r)
		case <-state.ctx.Done():
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}

	// The graph was validated before scheduling; leftover unprocessed
	// nodes with no failure anywhere mean an undetected cycle.
	if state.errs == nil && state.processed < g.NodeCount() {
		state.errs = domain.ErrCycleDetected
	}

	return state.report(), state.errs
}

type result struct {
	name        domain.InternedString
	fingerprint string
	err         error
}

type runState struct {
	s           *Scheduler
	ctx         context.Context
	graph       *domain.Graph
	res         *detect.Result
	parallelism int
	policy      Policy

	nodes        map[domain.InternedString]domain.Node
	inDegree     map[domain.InternedString]int
	fingerprints map[domain.InternedString]string
	ready        []domain.InternedString
	resultsCh    chan result

	active    int
	processed int
	halted    bool
	blocked   map[domain.InternedString]bool
	errs      error

	built   []string
	skipped []string
	failed  []domain.NodeError
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	g *domain.Graph,
	res *detect.Result,
	parallelism int,
	policy Policy,
) *runState {
	nodeCount := g.NodeCount()
	nodes := make(map[domain.InternedString]domain.Node, nodeCount)
	inDegree := make(map[domain.InternedString]int, nodeCount)

	var ready []domain.InternedString
	for node := range g.Walk() {
		nodes[node.Name] = node
		inDegree[node.Name] = len(node.Dependencies)
		if len(node.Dependencies) == 0 {
			ready = append(ready, node.Name)
		}
		s.updateStatus(node.Name, StatusPending)
	}

	return &runState{
		s:            s,
		ctx:          ctx,
		graph:        g,
		res:          res,
		parallelism:  parallelism,
		policy:       policy,
		nodes:        nodes,
		inDegree:     inDegree,
		fingerprints: make(map[domain.InternedString]string, nodeCount),
		ready:        ready,
		resultsCh:    make(chan result, parallelism),
		blocked:      make(map[domain.InternedString]bool),
	}
}

func (state *runState) isDone() bool {
	if state.active > 0 {
		return false
	}
	return len(state.ready) == 0 || state.halted
}

// schedule drains the ready queue. Current nodes resolve inline without
// consuming a worker slot, which is what lets the frontier jump ahead when
// most of the graph is already up to date.
func (state *runState) schedule() {
	for len(state.ready) > 0 {
		name := state.ready[0]

		if state.res.Status(name) == detect.StatusCurrent {
			state.ready = state.ready[1:]
			state.resolveCurrent(name)
			continue
		}

		if state.halted || state.active >= state.parallelism || state.ctx.Err() != nil {
			return
		}

		state.ready = state.ready[1:]
		state.dispatch(name)
	}
}

func (state *runState) resolveCurrent(name domain.InternedString) {
	state.fingerprints[name] = state.res.Fingerprint(name)
	state.s.updateStatus(name, StatusSkipped)
	state.processed++

	if node := state.nodes[name]; node.IsTarget() {
		state.skipped = append(state.skipped, name.String())
		_, span := state.s.tracer.Start(state.ctx, name.String())
		span.Cached()
		span.End()
	}

	state.resolveDependents(name)
}

func (state *runState) dispatch(name domain.InternedString) {
	node := state.nodes[name]

	depFps := make([]string, len(node.Dependencies))
	for i, dep := range node.Dependencies {
		depFps[i] = state.fingerprints[dep]
	}

	state.active++
	state.s.updateStatus(name, StatusRunning)

	go func(n domain.Node, fps []string) {
		_, span := state.s.tracer.Start(state.ctx, n.Name.String())
		fp, err := state.s.executor.Build(state.ctx, &n, fps)
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		state.resultsCh <- result{name: n.Name, fingerprint: fp, err: err}
	}(node, depFps)
}

func (state *runState) handleResult(r result) {
	state.active--
	state.processed++

	if r.err != nil {
		state.s.updateStatus(r.name, StatusFailed)
		state.failed = append(state.failed, domain.NodeError{Name: r.name.String(), Err: r.err})
		state.errs = errors.Join(state.errs, r.err)

		if state.policy == PolicyKeepGoing {
			state.blockDependents(r.name)
		} else {
			state.halted = true
		}
		return
	}

	state.fingerprints[r.name] = r.fingerprint
	state.s.updateStatus(r.name, StatusBuilt)
	if node := state.nodes[r.name]; node.IsTarget() {
		state.built = append(state.built, r.name.String())
	}
	state.resolveDependents(r.name)
}

func (state *runState) resolveDependents(name domain.InternedString) {
	for _, dep := range state.graph.Dependents(name) {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}

// blockDependents marks every transitive dependent of a failed node as
// un-buildable so independent branches can keep going.
func (state *runState) blockDependents(failed domain.InternedString) {
	queue := []domain.InternedString{failed}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		for _, dep := range state.graph.Dependents(name) {
			if state.blocked[dep] {
				continue
			}
			state.blocked[dep] = true
			state.processed++
			state.s.updateStatus(dep, StatusBlocked)
			state.failed = append(state.failed, domain.NodeError{
				Name: dep.String(),
				Err:  zerr.With(zerr.With(domain.ErrDependencyFailed, "node", dep.String()), "failed_dependency", failed.String()),
			})
			queue = append(queue, dep)
		}
	}
}

func (state *runState) report() *domain.Report {
	return &domain.Report{
		Built:   state.built,
		Skipped: state.skipped,
		Failed:  state.failed,
	}
}

// Waves computes the sequence of ready sets a run would realize with
// unbounded workers, without invoking the executor. Current nodes resolve
// instantly, so each wave holds only outdated nodes.
func (s *Scheduler) Waves(g *domain.Graph, res *detect.Result) [][]string {
	inDegree := make(map[domain.InternedString]int, g.NodeCount())
	nodes := make(map[domain.InternedString]domain.Node, g.NodeCount())
	for node := range g.Walk() {
		nodes[node.Name] = node
		inDegree[node.Name] = len(node.Dependencies)
	}

	resolve := func(name domain.InternedString) []domain.InternedString {
		var freed []domain.InternedString
		for _, dep := range g.Dependents(name) {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				freed = append(freed, dep)
			}
		}
		return freed
	}

	var frontier []domain.InternedString
	for name, deg := range inDegree {
		if deg == 0 {
			frontier = append(frontier, name)
		}
	}

	var waves [][]string
	for len(frontier) > 0 {
		var wave []string
		var next []domain.InternedString

		// Cascade current nodes first; they never occupy a wave slot.
		pending := frontier
		for len(pending) > 0 {
			name := pending[0]
			pending = pending[1:]
			if res.Status(name) == detect.StatusCurrent {
				pending = append(pending, resolve(name)...)
				continue
			}
			wave = append(wave, name.String())
			next = append(next, name)
		}

		if len(wave) == 0 {
			break
		}
		slices.Sort(wave)
		waves = append(waves, wave)

		frontier = nil
		for _, name := range next {
			frontier = append(frontier, resolve(name)...)
		}
	}
	return waves
}
