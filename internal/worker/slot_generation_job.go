package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-clinic-scheduler/internal/delivery/dto"
	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/infrastructure/lock"
	"go-clinic-scheduler/internal/usecase"

	"github.com/sirupsen/logrus"
)

var (
	// ErrJobAlreadyRunning is returned when another run, in this or any other process, holds the lease.
	ErrJobAlreadyRunning = errors.New("slot generation is already running")
	ErrJobStopped        = errors.New("slot generation job is stopped")
)

const (
	GenerationLockName = "generate_monthly_slots"

	DefaultJobTimeout = 60 * time.Minute

	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"

	releaseTimeout = 5 * time.Second
)

// SlotGenerationJob runs slot generation under a cluster-wide lease so at most one run is active.
type SlotGenerationJob struct {
	generator usecase.SlotGenerationUsecase
	locker    lock.Locker
	log       *logrus.Logger
	timeout   time.Duration

	mu      sync.RWMutex
	lastRun *dto.GenerationRunResponse

	// Graceful shutdown. stopped and wg.Add are guarded by lifeMu so Stop never
	// returns while a run it did not count is starting.
	lifeMu   sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  bool
}

func NewSlotGenerationJob(generator usecase.SlotGenerationUsecase, locker lock.Locker, log *logrus.Logger, timeout time.Duration) *SlotGenerationJob {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	return &SlotGenerationJob{
		generator: generator,
		locker:    locker,
		log:       log,
		timeout:   timeout,
		stopChan:  make(chan struct{}),
	}
}

// Trigger acquires the lease and starts the run in the background.
// The lease TTL equals the job timeout, so a crashed holder blocks new runs for at most that long.
func (j *SlotGenerationJob) Trigger(ctx context.Context, params usecase.GenerateParams) error {
	if !j.begin() {
		return ErrJobStopped
	}
	lease, err := j.acquire(ctx)
	if err != nil {
		j.wg.Done()
		return err
	}

	go func() {
		defer j.wg.Done()
		_, _ = j.run(context.Background(), lease, params)
	}()
	return nil
}

// RunNow runs generation synchronously under the same lease as Trigger.
func (j *SlotGenerationJob) RunNow(ctx context.Context, params usecase.GenerateParams) (*dto.GenerationSummary, error) {
	if !j.begin() {
		return nil, ErrJobStopped
	}
	defer j.wg.Done()

	lease, err := j.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return j.run(ctx, lease, params)
}

// LastRun returns a copy of the most recent run started by this process, or nil.
func (j *SlotGenerationJob) LastRun() *dto.GenerationRunResponse {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.lastRun == nil {
		return nil
	}
	run := *j.lastRun
	return &run
}

// Stop cancels in-flight runs and waits for them to release the lease.
// Safe to call multiple times.
func (j *SlotGenerationJob) Stop() {
	j.lifeMu.Lock()
	if j.stopped {
		j.lifeMu.Unlock()
		return
	}
	j.stopped = true
	close(j.stopChan)
	j.lifeMu.Unlock()

	j.wg.Wait()
	j.log.Info("SlotGenerationJob stopped")
}

// begin counts a run in wg unless the job is stopped. Callers must call wg.Done.
func (j *SlotGenerationJob) begin() bool {
	j.lifeMu.Lock()
	defer j.lifeMu.Unlock()

	if j.stopped {
		return false
	}
	j.wg.Add(1)
	return true
}

func (j *SlotGenerationJob) acquire(ctx context.Context) (lock.Lease, error) {
	lease, ok, err := j.locker.Acquire(ctx, GenerationLockName, j.timeout)
	if err != nil {
		j.log.Warnf("Failed to acquire generation lease: %+v", err)
		return nil, err
	}
	if !ok {
		j.log.Info("Slot generation already running, trigger dropped")
		return nil, ErrJobAlreadyRunning
	}

	select {
	case <-j.stopChan:
		j.release(lease)
		return nil, ErrJobStopped
	default:
	}
	return lease, nil
}

func (j *SlotGenerationJob) run(parent context.Context, lease lock.Lease, params usecase.GenerateParams) (*dto.GenerationSummary, error) {
	defer j.release(lease)

	ctx, cancel := context.WithTimeout(parent, j.timeout)
	defer cancel()

	// Cancel the run on Stop.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-j.stopChan:
			cancel()
		case <-done:
		}
	}()

	started := time.Now()
	j.setLastRun(&dto.GenerationRunResponse{
		Status:    RunStatusRunning,
		Actor:     params.Actor,
		StartedAt: started,
	})
	j.log.WithFields(logrus.Fields{
		"actor":  params.Actor,
		"window": params.Window.String(),
	}).Info("Slot generation started")

	summary, err := j.generator.Generate(ctx, params)

	finished := time.Now()
	result := &dto.GenerationRunResponse{
		Status:     RunStatusCompleted,
		Actor:      params.Actor,
		StartedAt:  started,
		FinishedAt: &finished,
		Summary:    summary,
	}
	if err != nil {
		result.Status = RunStatusFailed
		result.Error = entity.Truncate(err.Error(), entity.MaxTracebackLength)
		j.log.Errorf("Slot generation failed after %s: %+v", finished.Sub(started), err)
	} else {
		j.log.Infof("Slot generation finished in %s", finished.Sub(started))
	}
	j.setLastRun(result)

	return summary, err
}

func (j *SlotGenerationJob) release(lease lock.Lease) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := lease.Release(ctx); err != nil {
		if errors.Is(err, lock.ErrLeaseLost) {
			j.log.Warnf("Generation lease %s expired before release", lease.Name())
			return
		}
		j.log.Errorf("Failed to release generation lease: %+v", err)
	}
}

func (j *SlotGenerationJob) setLastRun(run *dto.GenerationRunResponse) {
	j.mu.Lock()
	j.lastRun = run
	j.mu.Unlock()
}
