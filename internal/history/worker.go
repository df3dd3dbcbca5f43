package history

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PeytonNagle/MoodMusic2/internal/recommend"
)

const defaultQueueSize = 100

// SaveWorker persists search results without blocking the response path:
// a bounded queue with one consumer goroutine. A full queue drops the write
// and logs; history loss is acceptable, blocking the user is not.
type SaveWorker struct {
	repo    Repository
	jobs    chan SaveJob
	timeout time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

func NewSaveWorker(repo Repository, queueSize int) *SaveWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &SaveWorker{
		repo:    repo,
		jobs:    make(chan SaveJob, queueSize),
		timeout: 10 * time.Second,
		done:    make(chan struct{}),
	}
}

// Start launches the consumer goroutine. Safe to call once.
func (w *SaveWorker) Start() {
	w.startOnce.Do(func() {
		go w.loop()
		log.Printf("history: save worker started")
	})
}

// Stop closes the queue and waits for the consumer to drain it.
func (w *SaveWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.jobs)
		<-w.done
		log.Printf("history: save worker stopped")
	})
}

// EnqueueSave queues a history write, dropping it when the queue is full.
// Implements recommend.Saver.
func (w *SaveWorker) EnqueueSave(query recommend.MoodQuery, analysis recommend.MoodAnalysis, tracks []recommend.EnrichedTrack) {
	if query.UserID == nil {
		return // anonymous searches are not persisted
	}
	job := SaveJob{
		ID:       uuid.NewString(),
		Query:    query,
		Analysis: analysis,
		Tracks:   tracks,
	}
	select {
	case w.jobs <- job:
	default:
		log.Printf("history: save queue full, dropping job %s", job.ID)
	}
}

func (w *SaveWorker) loop() {
	defer close(w.done)
	for job := range w.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		requestID, err := w.repo.SaveSearch(ctx, job)
		cancel()
		if err != nil {
			// no retry: the next search matters more than this row
			log.Printf("history: background save failed (job %s): %v", job.ID, err)
			continue
		}
		log.Printf("history: background save complete (job %s, request_id=%d, songs=%d)", job.ID, requestID, len(job.Tracks))
	}
}
