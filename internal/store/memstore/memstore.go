// Package memstore is an in-memory Store. Transactions are serialized and see a private copy of the data,
// which replaces the shared state only when the transaction function returns nil.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
)

type taskKey struct {
	kind models.TaskKind
	id   string
}

type state struct {
	containers   map[string]*models.VideoContainer
	tasks        map[taskKey]*models.Task
	storageFiles map[string]*models.StorageFile
}

func (s *state) clone() *state {
	out := &state{
		containers:   make(map[string]*models.VideoContainer, len(s.containers)),
		tasks:        make(map[taskKey]*models.Task, len(s.tasks)),
		storageFiles: make(map[string]*models.StorageFile, len(s.storageFiles)),
	}
	for k, c := range s.containers {
		out.containers[k] = c.Clone()
	}
	for k, t := range s.tasks {
		out.tasks[k] = cloneTask(t)
	}
	for k, f := range s.storageFiles {
		cp := *f
		out.storageFiles[k] = &cp
	}
	return out
}

type MemStore struct {
	mu       sync.Mutex
	data     *state
	notifier store.Notifier
}

func New(notifier store.Notifier) *MemStore {
	return &MemStore{
		data: &state{
			containers:   make(map[string]*models.VideoContainer),
			tasks:        make(map[taskKey]*models.Task),
			storageFiles: make(map[string]*models.StorageFile),
		},
		notifier: notifier,
	}
}

func (m *MemStore) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	m.mu.Lock()
	tx := &memTx{data: m.data.clone()}
	if err := fn(tx); err != nil {
		m.mu.Unlock()
		return err
	}
	m.data = tx.data
	m.mu.Unlock()
	if m.notifier != nil && len(tx.inserted) > 0 {
		m.notifier.TasksInserted(ctx, tx.inserted)
	}
	return nil
}

func (m *MemStore) GetContainer(_ context.Context, containerID string) (*models.VideoContainer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.data.containers[containerID]
	if !ok {
		return nil, httperrors.NewNotFoundError(fmt.Sprintf("container %s", containerID))
	}
	return c.Clone(), nil
}

func (m *MemStore) ListDueTasks(_ context.Context, kind models.TaskKind, nowMs int64, limit int) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]*models.Task, 0)
	for k, t := range m.data.tasks {
		if k.kind == kind && t.ExecutionTimeMs <= nowMs {
			tasks = append(tasks, cloneTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].ExecutionTimeMs != tasks[j].ExecutionTimeMs {
			return tasks[i].ExecutionTimeMs < tasks[j].ExecutionTimeMs
		}
		return tasks[i].ID < tasks[j].ID
	})
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (m *MemStore) CountTasksCreatedBefore(_ context.Context, createdBeforeMs int64) (map[models.TaskKind]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.TaskKind]int)
	for k, t := range m.data.tasks {
		if t.CreatedTimeMs < createdBeforeMs {
			counts[k.kind]++
		}
	}
	return counts, nil
}

// Tasks returns a copy of every task row, ordered by kind then id.
func (m *MemStore) Tasks() []*models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]*models.Task, 0, len(m.data.tasks))
	for _, t := range m.data.tasks {
		tasks = append(tasks, cloneTask(t))
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Kind != tasks[j].Kind {
			return tasks[i].Kind < tasks[j].Kind
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

func (m *MemStore) StorageFiles() []*models.StorageFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	files := make([]*models.StorageFile, 0, len(m.data.storageFiles))
	for _, f := range m.data.storageFiles {
		cp := *f
		files = append(files, &cp)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files
}

type memTx struct {
	data     *state
	inserted []models.TaskKind
}

func (t *memTx) GetContainer(_ context.Context, containerID string) (*models.VideoContainer, error) {
	c, ok := t.data.containers[containerID]
	if !ok {
		return nil, httperrors.NewNotFoundError(fmt.Sprintf("container %s", containerID))
	}
	return c.Clone(), nil
}

func (t *memTx) InsertContainer(_ context.Context, c *models.VideoContainer) error {
	if _, ok := t.data.containers[c.ContainerID]; ok {
		return httperrors.NewConflictError(fmt.Sprintf("container %s already exists", c.ContainerID))
	}
	t.data.containers[c.ContainerID] = c.Clone()
	return nil
}

func (t *memTx) UpdateContainer(_ context.Context, c *models.VideoContainer) error {
	if _, ok := t.data.containers[c.ContainerID]; !ok {
		return httperrors.NewNotFoundError(fmt.Sprintf("container %s", c.ContainerID))
	}
	c.UpdatedAt = time.Now().UTC()
	t.data.containers[c.ContainerID] = c.Clone()
	return nil
}

func (t *memTx) DeleteContainer(_ context.Context, containerID string) error {
	delete(t.data.containers, containerID)
	return nil
}

func (t *memTx) GetTask(_ context.Context, kind models.TaskKind, id string) (*models.Task, error) {
	task, ok := t.data.tasks[taskKey{kind, id}]
	if !ok {
		return nil, httperrors.NewNotFoundError(fmt.Sprintf("task %s %s", kind, id))
	}
	return cloneTask(task), nil
}

func (t *memTx) InsertTask(_ context.Context, task *models.Task) error {
	key := taskKey{task.Kind, task.ID}
	if _, ok := t.data.tasks[key]; !ok {
		t.data.tasks[key] = cloneTask(task)
	}
	for _, k := range t.inserted {
		if k == task.Kind {
			return nil
		}
	}
	t.inserted = append(t.inserted, task.Kind)
	return nil
}

func (t *memTx) UpdateTask(_ context.Context, task *models.Task) error {
	key := taskKey{task.Kind, task.ID}
	if _, ok := t.data.tasks[key]; ok {
		t.data.tasks[key] = cloneTask(task)
	}
	return nil
}

func (t *memTx) DeleteTask(_ context.Context, kind models.TaskKind, id string) error {
	delete(t.data.tasks, taskKey{kind, id})
	return nil
}

func (t *memTx) InsertStorageFile(_ context.Context, f *models.StorageFile) error {
	if _, ok := t.data.storageFiles[f.Name]; !ok {
		cp := *f
		t.data.storageFiles[f.Name] = &cp
	}
	return nil
}

func (t *memTx) DeleteStorageFile(_ context.Context, name string) error {
	delete(t.data.storageFiles, name)
	return nil
}

func cloneTask(t *models.Task) *models.Task {
	cp := *t
	cp.Payload = append(models.JSONB(nil), t.Payload...)
	return &cp
}
