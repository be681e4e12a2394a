package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dyike/cortexmem/internal/fetcher"
)

// Recorder queues fetch events and writes them to a Journal off the polling
// path. It satisfies fetcher.Observer.
type Recorder struct {
	journal *Journal
	log     zerolog.Logger

	events chan fetcher.FetchEvent
	once   sync.Once
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewRecorder(journal *Journal, log zerolog.Logger) (*Recorder, error) {
	if journal == nil {
		return nil, errors.New("journal is required")
	}
	r := &Recorder{
		journal: journal,
		log:     log.With().Str("component", "journal").Logger(),
		events:  make(chan fetcher.FetchEvent, 64),
	}

	r.wg.Add(1)
	go r.loop()
	return r, nil
}

func (r *Recorder) loop() {
	defer r.wg.Done()
	ctx := context.Background()
	for ev := range r.events {
		if err := r.journal.RecordFetch(ctx, ev); err != nil {
			r.log.Warn().Err(err).Str("trader_id", ev.TraderID).Msg("record fetch")
		}
	}
}

// RecordFetch enqueues ev. When the queue is full the event is dropped.
func (r *Recorder) RecordFetch(_ context.Context, ev fetcher.FetchEvent) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return errors.New("recorder closed")
	}

	select {
	case r.events <- ev:
		return nil
	default:
		return errors.New("journal queue full, event dropped")
	}
}

// Close flushes queued events and stops the writer. The journal stays open.
func (r *Recorder) Close() {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.events)
		r.mu.Unlock()
		r.wg.Wait()
	})
}
