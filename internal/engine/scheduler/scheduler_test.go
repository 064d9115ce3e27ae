package scheduler_test

import (
	"context"
	"testing"
	"testing/synctest"

	"github.com/kilnbuild/kiln/internal/adapters/backend"
	"github.com/kilnbuild/kiln/internal/adapters/fs"
	"github.com/kilnbuild/kiln/internal/adapters/telemetry"
	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/core/ports/mocks"
	"github.com/kilnbuild/kiln/internal/engine/cache"
	"github.com/kilnbuild/kiln/internal/engine/detect"
	"github.com/kilnbuild/kiln/internal/engine/executor"
	"github.com/kilnbuild/kiln/internal/engine/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type harness struct {
	t      *testing.T
	graph  *domain.Graph
	cache  *cache.Cache
	runner *mocks.MockRunner
	sched  *scheduler.Scheduler
}

func newHarness(t *testing.T, ctrl *gomock.Controller) *harness {
	t.Helper()
	c := cache.New(backend.NewMemory())
	runner := mocks.NewMockRunner(ctrl)
	exec := executor.New(c, runner, fs.NewHasher(), t.TempDir())
	return &harness{
		t:      t,
		graph:  domain.NewGraph(),
		cache:  c,
		runner: runner,
		sched:  scheduler.New(exec, telemetry.NewNoOpTracer()),
	}
}

func (h *harness) target(name string, deps ...string) *domain.Node {
	h.t.Helper()
	n := &domain.Node{
		Name:    domain.Intern(name),
		Kind:    domain.KindTarget,
		Command: "cmd-" + name,
		Trigger: domain.TriggerAny,
	}
	for _, d := range deps {
		n.Dependencies = append(n.Dependencies, domain.Intern(d))
	}
	require.NoError(h.t, h.graph.AddNode(n))
	return n
}

// markCurrent commits a record matching the node's present state so the
// detector classifies it as current. Only valid for dependency-free nodes.
func (h *harness) markCurrent(n *domain.Node, value []byte) {
	h.t.Helper()
	rec := domain.Fingerprint{
		Name:           n.Name.String(),
		CommandHash:    cache.LongHashString(n.Command),
		DependencyHash: cache.DependencyHash(nil),
		OutputHash:     cache.LongHash(value),
		ValueHash:      cache.LongHash(value),
	}
	require.NoError(h.t, h.cache.Commit(rec, value))
}

func (h *harness) classify() *detect.Result {
	h.t.Helper()
	require.NoError(h.t, h.graph.Validate())

	d := detect.NewDetector(h.cache, fs.NewHasher(), h.t.TempDir())
	res, err := d.Classify(h.graph)
	require.NoError(h.t, err)
	return res
}

func TestScheduler_Run_Diamond(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		h := newHarness(t, ctrl)
		// a depends on b, c; b and c depend on d.
		h.target("a", "b", "c")
		h.target("b", "d")
		h.target("c", "d")
		h.target("d")
		res := h.classify()

		dStarted := make(chan struct{})
		dProceed := make(chan struct{})
		bStarted := make(chan struct{})
		bProceed := make(chan struct{})
		cStarted := make(chan struct{})
		cProceed := make(chan struct{})

		h.runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, command string) ([]byte, error) {
				switch command {
				case "cmd-d":
					close(dStarted)
					<-dProceed
				case "cmd-b":
					close(bStarted)
					<-bProceed
				case "cmd-c":
					close(cStarted)
					<-cProceed
				case "cmd-a":
				default:
					t.Errorf("unexpected command: %s", command)
				}
				return []byte(command), nil
			}).AnyTimes()

		type runResult struct {
			report *domain.Report
			err    error
		}
		resultCh := make(chan runResult)
		go func() {
			report, err := h.sched.Run(context.Background(), h.graph, res, 2, scheduler.PolicyStopOnError)
			resultCh <- runResult{report, err}
		}()

		synctest.Wait()
		select {
		case <-dStarted:
		default:
			t.Fatal("d did not start")
		}
		assert.Equal(t, scheduler.StatusRunning, h.sched.Status(domain.Intern("d")))
		assert.Equal(t, scheduler.StatusPending, h.sched.Status(domain.Intern("b")))

		close(dProceed)

		// With d resolved and two workers, b and c run together.
		synctest.Wait()
		<-bStarted
		<-cStarted

		close(bProceed)
		close(cProceed)

		r := <-resultCh
		require.NoError(t, r.err)
		assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, r.report.Built)
		assert.Equal(t, "d", r.report.Built[0])
		assert.Empty(t, r.report.Skipped)
		assert.True(t, r.report.OK())
		assert.Equal(t, scheduler.StatusBuilt, h.sched.Status(domain.Intern("a")))
	})
}

func TestScheduler_Run_StopOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newHarness(t, ctrl)
	h.target("a", "b")
	h.target("b")
	res := h.classify()

	h.runner.EXPECT().Run(gomock.Any(), "cmd-b").Return(nil, zerr.New("exit status 1"))

	report, err := h.sched.Run(context.Background(), h.graph, res, 1, scheduler.PolicyStopOnError)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)

	assert.Empty(t, report.Built)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "b", report.Failed[0].Name)
	assert.Equal(t, scheduler.StatusFailed, h.sched.Status(domain.Intern("b")))
	assert.Equal(t, scheduler.StatusPending, h.sched.Status(domain.Intern("a")))
}

func TestScheduler_Run_KeepGoing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newHarness(t, ctrl)
	h.target("bad")
	h.target("good")
	h.target("top", "bad")
	h.target("other", "good")
	res := h.classify()

	h.runner.EXPECT().Run(gomock.Any(), "cmd-bad").Return(nil, zerr.New("exit status 1"))
	h.runner.EXPECT().Run(gomock.Any(), "cmd-good").Return([]byte("good"), nil)
	h.runner.EXPECT().Run(gomock.Any(), "cmd-other").Return([]byte("other"), nil)

	report, err := h.sched.Run(context.Background(), h.graph, res, 1, scheduler.PolicyKeepGoing)
	require.Error(t, err)

	assert.ElementsMatch(t, []string{"good", "other"}, report.Built)
	require.Len(t, report.Failed, 2)

	byName := make(map[string]error, len(report.Failed))
	for _, f := range report.Failed {
		byName[f.Name] = f.Err
	}
	assert.ErrorIs(t, byName["bad"], domain.ErrBuildFailed)
	assert.ErrorIs(t, byName["top"], domain.ErrDependencyFailed)
	assert.Equal(t, scheduler.StatusBlocked, h.sched.Status(domain.Intern("top")))
}

func TestScheduler_Run_CurrentNodesResolveInline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newHarness(t, ctrl)
	base := h.target("base")
	h.target("top", "base")
	h.markCurrent(base, []byte("base value"))
	res := h.classify()

	// Only top runs; base resolves from its stored fingerprint.
	h.runner.EXPECT().Run(gomock.Any(), "cmd-top").Return([]byte("top value"), nil)

	report, err := h.sched.Run(context.Background(), h.graph, res, 2, scheduler.PolicyStopOnError)
	require.NoError(t, err)

	assert.Equal(t, []string{"top"}, report.Built)
	assert.Equal(t, []string{"base"}, report.Skipped)
	assert.Equal(t, scheduler.StatusSkipped, h.sched.Status(domain.Intern("base")))

	// top's record must bind the fingerprint base already had.
	rec, err := h.cache.Lookup("top")
	require.NoError(t, err)
	require.NotNil(t, rec)
	baseFp := cache.LongHash([]byte("base value"))
	assert.Equal(t, cache.DependencyHash([]string{baseFp}), rec.DependencyHash)
}

func TestScheduler_Run_AllCurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newHarness(t, ctrl)
	a := h.target("a")
	h.markCurrent(a, []byte("value"))
	res := h.classify()

	report, err := h.sched.Run(context.Background(), h.graph, res, 4, scheduler.PolicyStopOnError)
	require.NoError(t, err)
	assert.Empty(t, report.Built)
	assert.Equal(t, []string{"a"}, report.Skipped)
}

func TestScheduler_Waves_Diamond(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newHarness(t, ctrl)
	h.target("a", "b", "c")
	h.target("b", "d")
	h.target("c", "d")
	h.target("d")
	res := h.classify()

	waves := h.sched.Waves(h.graph, res)
	assert.Equal(t, [][]string{{"d"}, {"b", "c"}, {"a"}}, waves)
}

func TestScheduler_Waves_CurrentCascade(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newHarness(t, ctrl)
	base := h.target("base")
	h.target("top", "base")
	h.markCurrent(base, []byte("base value"))
	res := h.classify()

	// base never occupies a wave; top is immediately frontier.
	waves := h.sched.Waves(h.graph, res)
	assert.Equal(t, [][]string{{"top"}}, waves)
}
