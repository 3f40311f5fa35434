// Package verify runs batches of verification scripts in parallel.
//
// Each Job is run in its own Engine with the standard interop
// services. A job passes when its script halts leaving exactly one
// item on the result stack and that item is true.
package verify

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/log"
	"github.com/onyx-protocol/neovm/metrics"
	"github.com/onyx-protocol/neovm/protocol/interop"
	"github.com/onyx-protocol/neovm/protocol/vm"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

// ErrFailed is returned by VerifyAll for a job that did not pass.
var ErrFailed = errors.New("verification failed")

// Job is one script to verify.
type Job struct {
	Script []byte

	// Args are pushed onto the script's evaluation stack in
	// order before it runs, so the last is on top.
	Args [][]byte

	Flags vm.CallFlags
}

// Result is the outcome of one Job.
type Result struct {
	State         vm.State
	Stack         []stackitem.Item
	Fault         error
	Notifications []interop.Notification
	Logs          []interop.LogEntry
}

// OK reports whether the job passed.
func (r *Result) OK() bool {
	if r.State != vm.StateHalt || len(r.Stack) != 1 {
		return false
	}
	b, err := r.Stack[0].Bool()
	return err == nil && b
}

// Verifier runs jobs. Its fields must not change once Verify has
// been called; Verify itself may be called concurrently.
type Verifier struct {
	Limits vm.Limits
	Store  interop.ScriptStore

	// Parallelism bounds the number of jobs run at once.
	// Zero means runtime.GOMAXPROCS(0).
	Parallelism int

	jt      *vm.JumpTable
	cache   *scriptCache
	latency *metrics.RotatingLatency
}

// New returns a Verifier running jobs under limits, resolving
// contract calls through store (which may be nil).
func New(limits vm.Limits, store interop.ScriptStore) *Verifier {
	return &Verifier{
		Limits:  limits,
		Store:   store,
		jt:      interop.Default().NewJumpTable(),
		cache:   newScriptCache(DefaultCacheSize),
		latency: metrics.NewRotatingLatency(5, time.Second),
	}
}

// Latency returns the per-job latency histograms.
func (v *Verifier) Latency() *metrics.RotatingLatency { return v.latency }

// Verify runs every job and returns their results in job order.
// A job's own failure is reported in its Result; the error is
// non-nil only if ctx is done before all jobs have run.
func (v *Verifier) Verify(ctx context.Context, jobs []Job) ([]*Result, error) {
	defer metrics.RecordElapsed(time.Now())
	if log.RunID(ctx) == log.UnknownRunID {
		ctx = log.WithRunID(ctx, uuid.New().String())
	}
	results := make([]*Result, len(jobs))

	n := v.Parallelism
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	ch := make(chan int, len(jobs))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			for i := range ch {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = v.run(log.WithJob(gctx, i), jobs[i])
			}
			return nil
		})
	}
	for i := range jobs {
		ch <- i
	}
	close(ch)
	err := g.Wait()
	if err != nil {
		return nil, err
	}
	return results, nil
}

// VerifyAll is like Verify but succeeds only if every job
// passes. The error for a failing job wraps ErrFailed and names
// the job's index.
func (v *Verifier) VerifyAll(ctx context.Context, jobs []Job) error {
	results, err := v.Verify(ctx, jobs)
	if err != nil {
		return err
	}
	for i, r := range results {
		if r.OK() {
			continue
		}
		err := errors.WithDetailf(ErrFailed, "job %d: state %s", i, r.State)
		if r.Fault != nil {
			err = errors.Wrapf(err, "%s", r.Fault)
		}
		return err
	}
	return nil
}

func (v *Verifier) run(ctx context.Context, job Job) *Result {
	t0 := time.Now()
	defer v.latency.RecordSince(t0)

	h := interop.NewHost(ctx, v.Store)
	res := new(Result)
	defer func() {
		res.Notifications = h.Notifications
		res.Logs = h.Logs
		switch {
		case res.OK():
			metrics.Count("verify.job.pass", 1)
		case res.Fault != nil:
			metrics.Count("verify.job.fail", 1)
			log.Error(ctx, res.Fault, "verify")
		default:
			metrics.Count("verify.job.fail", 1)
			log.Printkv(ctx, log.KeyMessage, "verify: not true", "state", res.State, "results", len(res.Stack))
		}
	}()

	script, err := v.cache.lookup(job.Script)
	if err != nil {
		res.State, res.Fault = vm.StateFault, err
		return res
	}
	e := vm.New(v.jt, v.Limits, vm.WithHost(h))
	ectx, err := e.LoadScriptWithFlags(script, -1, 0, job.Flags)
	if err != nil {
		res.State, res.Fault = vm.StateFault, err
		return res
	}
	for _, a := range job.Args {
		ectx.EvaluationStack().Push(stackitem.NewByteString(a))
	}
	res.State = e.Execute()
	res.Fault = e.FaultError()
	res.Stack = e.ResultStack().Items()
	return res
}
