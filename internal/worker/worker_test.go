package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/store/memstore"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	taskUsecase "github.com/amankumarsingh77/video-containers/internal/tasks/usecase"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

// recordingProcessor deletes the task it is given and remembers the id.
type recordingProcessor struct {
	kind models.TaskKind
	st   store.Store
	fail map[string]bool

	mu   sync.Mutex
	seen []string
	done chan string
}

func (p *recordingProcessor) Kind() models.TaskKind { return p.kind }

func (p *recordingProcessor) Process(ctx context.Context, id string) error {
	p.mu.Lock()
	p.seen = append(p.seen, id)
	p.mu.Unlock()
	if p.done != nil {
		defer func() { p.done <- id }()
	}
	if p.fail[id] {
		// a failed attempt stays in the ledger, pushed into the future like a claim would
		err := p.st.InTx(ctx, func(tx store.Tx) error {
			task, err := tx.GetTask(ctx, p.kind, id)
			if err != nil {
				return err
			}
			task.ExecutionTimeMs = testNow.Add(time.Hour).UnixMilli()
			return tx.UpdateTask(ctx, task)
		})
		if err != nil {
			return err
		}
		return errors.New("boom")
	}
	return p.st.InTx(ctx, func(tx store.Tx) error {
		return tx.DeleteTask(ctx, p.kind, id)
	})
}

func (p *recordingProcessor) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]string(nil), p.seen...)
	sort.Strings(out)
	return out
}

type chanWakeups struct {
	ch chan models.TaskKind
}

func (w *chanWakeups) TasksInserted(_ context.Context, kinds []models.TaskKind) {
	for _, k := range kinds {
		w.ch <- k
	}
}

func (w *chanWakeups) Subscribe(ctx context.Context) (<-chan models.TaskKind, error) {
	out := make(chan models.TaskKind)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case k := <-w.ch:
				select {
				case out <- k:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{Worker: config.WorkerConfig{
		WorkerCount:  2,
		PollInterval: time.Hour,
		BatchSize:    2,
		StuckTaskAge: 24 * time.Hour,
	}}
}

func insertTasks(t *testing.T, st store.Store, kind models.TaskKind, createdMs int64, ids ...string) {
	t.Helper()
	err := st.InTx(context.Background(), func(tx store.Tx) error {
		for _, id := range ids {
			task, err := models.NewTask(kind, id, struct{}{}, createdMs)
			if err != nil {
				return err
			}
			if err = tx.InsertTask(context.Background(), task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestDrainProcessesEveryDueTask(t *testing.T) {
	st := memstore.New(nil)
	insertTasks(t, st, models.TaskDeleteKey, testNow.UnixMilli(), "a", "b", "c", "d", "e")
	p := &recordingProcessor{kind: models.TaskDeleteKey, st: st, fail: map[string]bool{"c": true}}
	uc := taskUsecase.NewTaskUseCase(st, clock, logger.NewNopLogger(), p)
	w := NewWorker(testConfig(), uc, nil, st, clock, logger.NewNopLogger())

	w.Drain(context.Background(), models.TaskDeleteKey)

	got := p.ids()
	want := []string{"a", "b", "c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("processed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("processed %v, want %v", got, want)
		}
	}
	if left := st.Tasks(); len(left) != 1 || left[0].ID != "c" {
		t.Fatalf("remaining tasks = %+v", left)
	}
}

func TestDrainRespectsCPUGate(t *testing.T) {
	st := memstore.New(nil)
	insertTasks(t, st, models.TaskFormatting, testNow.UnixMilli(), "c-1/f")
	p := &recordingProcessor{kind: models.TaskFormatting, st: st}
	uc := taskUsecase.NewTaskUseCase(st, clock, logger.NewNopLogger(), p)
	w := NewWorker(testConfig(), uc, nil, st, clock, logger.NewNopLogger())
	w.cpuGate = func() (bool, float64) { return false, 99 }

	w.Drain(context.Background(), models.TaskFormatting)
	if got := p.ids(); len(got) != 0 {
		t.Fatalf("processed %v while CPU gate closed", got)
	}

	w.cpuGate = func() (bool, float64) { return true, 10 }
	w.Drain(context.Background(), models.TaskFormatting)
	if got := p.ids(); len(got) != 1 {
		t.Fatalf("processed %v, want one task", got)
	}
}

func TestStartWakesOnInsert(t *testing.T) {
	wakeups := &chanWakeups{ch: make(chan models.TaskKind, 8)}
	st := memstore.New(wakeups)
	p := &recordingProcessor{kind: models.TaskUsageEnd, st: st, done: make(chan string, 4)}
	uc := taskUsecase.NewTaskUseCase(st, clock, logger.NewNopLogger(), p)
	w := NewWorker(testConfig(), uc, wakeups, st, clock, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	insertTasks(t, st, models.TaskUsageEnd, testNow.UnixMilli(), "dir/")

	select {
	case id := <-p.done:
		if id != "dir/" {
			t.Fatalf("processed %s", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("task was not processed after wake-up")
	}
	cancel()
	w.Wait()
}

func TestReportStuckTasks(t *testing.T) {
	st := memstore.New(nil)
	old := testNow.Add(-48 * time.Hour).UnixMilli()
	insertTasks(t, st, models.TaskDeleteKey, old, "k1", "k2")
	insertTasks(t, st, models.TaskUsageStart, testNow.UnixMilli(), "fresh")
	uc := taskUsecase.NewTaskUseCase(st, clock, logger.NewNopLogger())
	w := NewWorker(testConfig(), uc, nil, st, clock, logger.NewNopLogger())

	counts := w.ReportStuckTasks(context.Background())
	if counts[models.TaskDeleteKey] != 2 || counts[models.TaskUsageStart] != 0 {
		t.Fatalf("counts = %v", counts)
	}
}

var _ tasks.WakeupRepository = (*chanWakeups)(nil)
