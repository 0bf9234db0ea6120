package api

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rflorenc/tackle-migrator/internal/migration"
	"github.com/rflorenc/tackle-migrator/internal/models"
)

// JobRunner executes queued jobs one at a time, in submission order, so
// that at most one migration talks to the targets at once.
type JobRunner struct {
	ctx   context.Context
	opts  migration.Options
	log   *zap.Logger
	level zapcore.LevelEnabler

	mu    sync.Mutex
	ready *sync.Cond
	queue []*models.Job
	wg    sync.WaitGroup
}

// NewJobRunner creates a runner and starts its worker.
func NewJobRunner(ctx context.Context, opts migration.Options, log *zap.Logger, level zapcore.LevelEnabler) *JobRunner {
	jr := &JobRunner{ctx: ctx, opts: opts, log: log, level: level}
	jr.ready = sync.NewCond(&jr.mu)
	go jr.work()
	return jr
}

// Submit queues job behind every job submitted before it. It never blocks
// on a running job.
func (jr *JobRunner) Submit(job *models.Job) {
	jr.wg.Add(1)
	jr.mu.Lock()
	jr.queue = append(jr.queue, job)
	jr.mu.Unlock()
	jr.ready.Signal()
}

// Wait blocks until every submitted job has finished.
func (jr *JobRunner) Wait() {
	jr.wg.Wait()
}

// work runs queued jobs first in, first out.
func (jr *JobRunner) work() {
	for {
		jr.mu.Lock()
		for len(jr.queue) == 0 {
			jr.ready.Wait()
		}
		job := jr.queue[0]
		jr.queue[0] = nil
		jr.queue = jr.queue[1:]
		jr.mu.Unlock()

		jr.run(job)
		jr.wg.Done()
	}
}

func (jr *JobRunner) run(job *models.Job) {
	job.Start()
	log := jr.jobLogger(job)
	log.Info("job started", zap.Strings("actions", job.Actions))

	err := migration.NewRunner(jr.opts, log).Run(jr.ctx, job.Actions)
	if err != nil {
		log.Error("job failed", zap.Error(err))
	} else {
		log.Info("job completed")
	}
	log.Sync()
	if err != nil {
		job.Fail(err.Error())
		return
	}
	job.Complete()
}

// jobLogger tees the server logger into the job's own output so the log
// stream shows the same lines.
func (jr *JobRunner) jobLogger(job *models.Job) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	jobCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), job, jr.level)
	return zap.New(zapcore.NewTee(jr.log.Core(), jobCore)).With(zap.String("job", job.ID))
}
