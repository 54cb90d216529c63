package mempool

import (
	"context"
	"sync"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/pkg/errors"
)

var errVerifyWorkersClosed = errors.New("the verification workers are shut down")

type verifyResult struct {
	completed *transactionvalidator.Completed
	err       error
}

type verifyJob struct {
	ctx       context.Context
	snapshot  *snapshot.Snapshot
	resolved  *cell.ResolvedTransaction
	env       *transactionvalidator.VerifyEnv
	maxCycles uint64
	suspended *transactionvalidator.Suspended
	response  chan verifyResult
}

// verifyWorkers runs transaction scripts on a fixed number of goroutines.
// A job runs for at most chunkCycles before it goes back to the queue, so a
// heavy transaction can't hold a worker while cheap ones wait.
type verifyWorkers struct {
	jobs        chan *verifyJob
	quit        chan struct{}
	wg          sync.WaitGroup
	chunkCycles uint64
	closeOnce   sync.Once

	// onAbandoned receives the progress of a job whose caller went away.
	onAbandoned func(current *snapshot.Snapshot, transaction *externalapi.DomainTransaction,
		suspended *transactionvalidator.Suspended)
}

func newVerifyWorkers(workers int, chunkCycles uint64, onAbandoned func(current *snapshot.Snapshot,
	transaction *externalapi.DomainTransaction, suspended *transactionvalidator.Suspended)) *verifyWorkers {

	if workers < 1 {
		workers = 1
	}
	vw := &verifyWorkers{
		jobs:        make(chan *verifyJob, workers*4),
		quit:        make(chan struct{}),
		chunkCycles: chunkCycles,
		onAbandoned: onAbandoned,
	}
	vw.wg.Add(workers)
	for i := 0; i < workers; i++ {
		spawn("verifyWorkers.run", vw.run)
	}
	return vw
}

// verify runs the scripts of resolved at env, continuing from suspended if
// it isn't nil, and waits for the outcome.
func (vw *verifyWorkers) verify(ctx context.Context, current *snapshot.Snapshot, resolved *cell.ResolvedTransaction,
	env *transactionvalidator.VerifyEnv, maxCycles uint64, suspended *transactionvalidator.Suspended) (
	*transactionvalidator.Completed, error) {

	job := &verifyJob{
		ctx:       ctx,
		snapshot:  current.Acquire(),
		resolved:  resolved,
		env:       env,
		maxCycles: maxCycles,
		suspended: suspended,
		response:  make(chan verifyResult, 1),
	}
	select {
	case vw.jobs <- job:
	case <-ctx.Done():
		job.snapshot.Release()
		return nil, ctx.Err()
	case <-vw.quit:
		job.snapshot.Release()
		return nil, errVerifyWorkersClosed
	}

	select {
	case result := <-job.response:
		return result.completed, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-vw.quit:
		return nil, errVerifyWorkersClosed
	}
}

func (vw *verifyWorkers) run() {
	defer vw.wg.Done()
	for {
		select {
		case <-vw.quit:
			return
		case job := <-vw.jobs:
			vw.process(job)
		}
	}
}

func (vw *verifyWorkers) process(job *verifyJob) {
	for {
		if job.ctx.Err() != nil {
			log.Tracef("Dropping the verification of %s: %s", job.resolved.Hash, job.ctx.Err())
			if job.suspended != nil && vw.onAbandoned != nil {
				vw.onAbandoned(job.snapshot, job.resolved.Transaction, job.suspended)
			}
			vw.finish(job, verifyResult{err: job.ctx.Err()})
			return
		}

		verifier := transactionvalidator.NewContextualVerifier(job.snapshot, job.resolved, job.env)
		var entry transactionvalidator.CacheEntry
		var err error
		if job.suspended == nil {
			entry, err = verifier.ResumableVerify(job.maxCycles, vw.chunkCycles)
		} else {
			entry, err = verifier.Resume(job.suspended, job.maxCycles, vw.chunkCycles)
		}
		if err != nil {
			vw.finish(job, verifyResult{err: verificationError(err)})
			return
		}

		switch entry := entry.(type) {
		case *transactionvalidator.Completed:
			vw.finish(job, verifyResult{completed: entry})
			return
		case *transactionvalidator.Suspended:
			job.suspended = entry
			select {
			case vw.jobs <- job:
				return
			default:
				// The queue is full, keep going here.
			}
		}
	}
}

func (vw *verifyWorkers) finish(job *verifyJob, result verifyResult) {
	job.snapshot.Release()
	job.response <- result
}

// close stops the workers and waits for them. Jobs still queued are
// abandoned.
func (vw *verifyWorkers) close() {
	vw.closeOnce.Do(func() {
		close(vw.quit)
	})
	vw.wg.Wait()
	for {
		select {
		case job := <-vw.jobs:
			job.snapshot.Release()
		default:
			return
		}
	}
}
