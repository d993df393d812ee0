package worker

import (
	"context"
	"sync"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/robfig/cron/v3"
)

const defaultPollInterval = 30 * time.Second

// StuckTaskCounter counts ledger rows created before a point in time, per kind.
type StuckTaskCounter interface {
	CountTasksCreatedBefore(ctx context.Context, createdBeforeMs int64) (map[models.TaskKind]int, error)
}

// Worker drains due tasks of every kind the task use case serves. Each kind has its own poller that runs on
// an interval and whenever a wake-up for the kind arrives.
type Worker struct {
	cfg     *config.Config
	taskUC  tasks.UseCase
	wakeups tasks.WakeupRepository
	counter StuckTaskCounter
	now     func() time.Time
	logger  logger.Logger
	// cpuGate reports whether another formatting attempt may start.
	cpuGate func() (bool, float64)

	wg   sync.WaitGroup
	wake map[models.TaskKind]chan struct{}
	cron *cron.Cron
}

func NewWorker(cfg *config.Config, taskUC tasks.UseCase, wakeups tasks.WakeupRepository, counter StuckTaskCounter, now func() time.Time, logger logger.Logger) *Worker {
	return &Worker{
		cfg:     cfg,
		taskUC:  taskUC,
		wakeups: wakeups,
		counter: counter,
		now:     now,
		logger:  logger,
		cpuGate: func() (bool, float64) {
			return utils.CheckCPUUsage(cfg.Worker.MaxCPUUsage)
		},
		wake: make(map[models.TaskKind]chan struct{}),
	}
}

// Start launches the pollers and the stuck task monitor. They stop when ctx is cancelled; Wait blocks until then.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker")
	kinds := w.taskUC.Kinds()
	for _, kind := range kinds {
		w.wake[kind] = make(chan struct{}, 1)
	}
	if w.wakeups != nil {
		wakeups, err := w.wakeups.Subscribe(ctx)
		if err != nil {
			return err
		}
		w.wg.Add(1)
		go w.dispatchWakeups(wakeups)
	}
	for _, kind := range kinds {
		w.wg.Add(1)
		go w.poll(ctx, kind)
	}
	if w.counter != nil && w.cfg.Worker.MonitorSchedule != "" {
		w.cron = cron.New()
		_, err := w.cron.AddFunc(w.cfg.Worker.MonitorSchedule, func() {
			w.ReportStuckTasks(ctx)
		})
		if err != nil {
			return err
		}
		w.cron.Start()
	}
	return nil
}

func (w *Worker) Wait() {
	w.wg.Wait()
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *Worker) dispatchWakeups(wakeups <-chan models.TaskKind) {
	defer w.wg.Done()
	for kind := range wakeups {
		ch, ok := w.wake[kind]
		if !ok {
			continue
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (w *Worker) poll(ctx context.Context, kind models.TaskKind) {
	defer w.wg.Done()
	interval := w.cfg.Worker.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		w.Drain(ctx, kind)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-w.wake[kind]:
		}
	}
}

// Drain processes due tasks of kind, WorkerCount at a time, until none are due. A failed attempt pushes its
// task into the future, so it is not picked up again by the same drain.
func (w *Worker) Drain(ctx context.Context, kind models.TaskKind) {
	batchSize := w.cfg.Worker.BatchSize
	workers := w.cfg.Worker.WorkerCount
	if workers < 1 {
		workers = 1
	}
	for ctx.Err() == nil {
		due, err := w.taskUC.ListDue(ctx, kind, batchSize)
		if err != nil {
			w.logger.Errorf("Drain - ListDue %s error: %v", kind, err)
			return
		}
		if len(due) == 0 {
			return
		}

		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for _, task := range due {
			if kind == models.TaskFormatting {
				if ok, usage := w.cpuGate(); !ok {
					w.logger.Infof("CPU usage is high: %f, postponing %s", usage, kind)
					wg.Wait()
					return
				}
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				defer func() { <-sem }()
				w.process(ctx, kind, id)
			}(task.ID)
		}
		wg.Wait()
		if len(due) < batchSize {
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, kind models.TaskKind, id string) {
	err := w.taskUC.Process(ctx, kind, id)
	switch {
	case err == nil:
		w.logger.Debugf("processed %s %s", kind, id)
	case httperrors.IsNotFound(err):
		// finished by another worker between listing and claiming
		w.logger.Debugf("process - %s %s already gone", kind, id)
	default:
		w.logger.Errorf("process - %s %s error: %v", kind, id, err)
	}
}

// ReportStuckTasks logs every kind with rows older than the configured stuck task age.
func (w *Worker) ReportStuckTasks(ctx context.Context) map[models.TaskKind]int {
	cutoff := w.now().Add(-w.cfg.Worker.StuckTaskAge).UnixMilli()
	counts, err := w.counter.CountTasksCreatedBefore(ctx, cutoff)
	if err != nil {
		w.logger.Errorf("ReportStuckTasks - CountTasksCreatedBefore error: %v", err)
		return nil
	}
	for kind, n := range counts {
		if n > 0 {
			w.logger.Errorf("%d %s tasks stuck for more than %s", n, kind, w.cfg.Worker.StuckTaskAge)
		}
	}
	return counts
}
