package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/storage"
	"github.com/taskhive/taskhive/pkg/logger"
)

// Worker consumes cleanup jobs from the async queue and removes the
// backing files from the attachment store.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	store   storage.FileStore
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewWorker creates a new worker instance
func NewWorker(cfg *config.RedisConfig, store storage.FileStore) *Worker {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Infof("[Worker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		store:  store,
	}
}

// Start begins processing tasks
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeFileCleanup, w.handleCleanupTask)

	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[Worker] Starting async worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Infof("[Worker] Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Infof("[Worker] Shutting down...")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Infof("[Worker] Shutdown complete")
}

func (w *Worker) handleCleanupTask(ctx context.Context, t *asynq.Task) error {
	var task CleanupTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		logger.Infof("[Worker] Failed to unmarshal task: %v", err)
		return err
	}

	return RemoveStoredFiles(w.store, &task)
}

// RemoveStoredFiles deletes the named files from the store. Individual
// failures are logged and skipped so one stubborn file cannot wedge the
// whole batch in the retry loop.
func RemoveStoredFiles(store storage.FileStore, task *CleanupTask) error {
	for _, name := range task.StoredNames {
		if err := store.Remove(name); err != nil {
			logger.Infof("[Worker] Failed to remove %s: %v", name, err)
		}
	}
	return nil
}

// Global worker instance
var (
	globalWorker *Worker
	workerOnce   sync.Once
)

// InitWorker initializes the global worker
func InitWorker(cfg *config.RedisConfig, store storage.FileStore) *Worker {
	workerOnce.Do(func() {
		globalWorker = NewWorker(cfg, store)
	})
	return globalWorker
}

// GetWorker returns the global worker instance
func GetWorker() *Worker {
	return globalWorker
}
