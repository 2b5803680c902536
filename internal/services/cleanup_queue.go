package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/pkg/logger"
)

const (
	TaskTypeFileCleanup = "attachment:cleanup"
)

// CleanupTask names the stored files that should be removed from the
// attachment store. Rows are already gone by the time it is enqueued, so
// failures only leak disk space, never break references.
type CleanupTask struct {
	StoredNames []string `json:"stored_names"`
}

// TaskQueue defines the interface for deferred file cleanup.
type TaskQueue interface {
	// EnqueueFileCleanup adds a cleanup job to the queue
	EnqueueFileCleanup(storedNames []string) error
	// IsAsync returns true if the queue processes jobs asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global task queue instance
var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	// Verify the connection before committing to async mode
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// EnqueueFileCleanup adds a cleanup job to the async queue
func (q *AsyncQueue) EnqueueFileCleanup(storedNames []string) error {
	payload, err := json.Marshal(&CleanupTask{StoredNames: storedNames})
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeFileCleanup, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Cleanup enqueued: id=%s, files=%d", info.ID, len(storedNames))
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue with in-process cleanup (no Redis)
type SyncQueue struct {
	processor func(context.Context, *CleanupTask) error
}

// NewSyncQueue creates a new synchronous queue
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function that removes the files
func (q *SyncQueue) SetProcessor(processor func(context.Context, *CleanupTask) error) {
	q.processor = processor
}

// EnqueueFileCleanup removes the files in a background goroutine so the
// deleting request does not wait on disk IO
func (q *SyncQueue) EnqueueFileCleanup(storedNames []string) error {
	if q.processor == nil {
		logger.Infof("[SyncQueue] Warning: no processor set, cleanup dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, &CleanupTask{StoredNames: storedNames}); err != nil {
			logger.Infof("[SyncQueue] Cleanup failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncQueue) Close() error {
	return nil
}
