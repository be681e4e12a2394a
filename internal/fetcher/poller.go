package fetcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/dyike/cortexmem/internal/cache"
	"github.com/dyike/cortexmem/internal/memory"
)

// DefaultInterval is the wall-clock revalidation period.
const DefaultInterval = 10 * time.Second

// Fetcher loads one snapshot for a trader.
type Fetcher interface {
	FetchMemory(ctx context.Context, traderID string) (*memory.Snapshot, error)
}

// FetchEvent describes one finished request.
type FetchEvent struct {
	TraderID   string
	StartedAt  time.Time
	Duration   time.Duration
	StatusCode int // set for HTTP failures only
	Trades     int
	Err        error
}

// Observer receives every fetch outcome, e.g. to keep a diagnostic journal.
type Observer interface {
	RecordFetch(ctx context.Context, ev FetchEvent) error
}

// State is what a consumer renders. Snapshot == nil && Err == nil means there
// is no data yet, either because nothing was fetched or no trader is selected.
type State struct {
	TraderID  string
	Key       string
	Snapshot  *memory.Snapshot
	Err       error
	FetchedAt time.Time
}

// Loading reports the "no data yet" state.
func (s State) Loading() bool {
	return s.Err == nil && s.Snapshot == nil
}

// Poller keeps the snapshot for one trader fresh. It fetches immediately when
// started or when the trader changes, then on every interval tick. At most one
// request per key is in flight.
type Poller struct {
	fetcher  Fetcher
	cache    *cache.SnapshotCache
	interval time.Duration
	observer Observer
	limiter  *rate.Limiter
	log      zerolog.Logger

	group singleflight.Group

	mu       sync.Mutex
	traderID string
	lastErr  error
	updates  chan State
	sched    *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
}

// everySchedule fires a fixed duration after the previous activation. Unlike
// cron.Every it keeps sub-second precision and does not align ticks to the
// second boundary, so the first scheduled fetch lands a full interval after
// the one issued by Start.
type everySchedule time.Duration

func (s everySchedule) Next(t time.Time) time.Time {
	return t.Add(time.Duration(s))
}

type PollerOption func(*Poller)

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithCache shares a snapshot cache with the poller. The cache is the only
// place the poller keeps snapshots, so a seeded entry is served before the
// first fetch completes.
func WithCache(c *cache.SnapshotCache) PollerOption {
	return func(p *Poller) {
		if c != nil {
			p.cache = c
		}
	}
}

func WithObserver(o Observer) PollerOption {
	return func(p *Poller) {
		p.observer = o
	}
}

func WithLogger(log zerolog.Logger) PollerOption {
	return func(p *Poller) {
		p.log = log
	}
}

// WithRefreshLimit throttles manual Refresh calls.
func WithRefreshLimit(every time.Duration, burst int) PollerOption {
	return func(p *Poller) {
		p.limiter = rate.NewLimiter(rate.Every(every), burst)
	}
}

func WithTraderID(id string) PollerOption {
	return func(p *Poller) {
		p.traderID = id
	}
}

func NewPoller(f Fetcher, opts ...PollerOption) *Poller {
	p := &Poller{
		fetcher:  f,
		cache:    cache.NewSnapshotCache(),
		interval: DefaultInterval,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		log:      zerolog.Nop(),
		updates:  make(chan State, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With().Str("component", "poller").Logger()
	return p
}

// Start schedules revalidation and kicks off the first fetch. Stop cancels both.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.sched != nil {
		p.mu.Unlock()
		return errors.New("poller already started")
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.sched = cron.New()
	p.sched.Schedule(everySchedule(p.interval), cron.FuncJob(p.revalidate))
	p.sched.Start()
	st := p.stateLocked()
	p.publishLocked(st)
	p.mu.Unlock()

	p.log.Debug().Dur("interval", p.interval).Str("trader_id", st.TraderID).Msg("poller started")
	go p.revalidate()
	return nil
}

// Stop cancels the schedule and any in-flight request and waits for running
// jobs to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	sched, cancel := p.sched, p.cancel
	p.sched, p.cancel = nil, nil
	p.mu.Unlock()

	if sched == nil {
		return
	}
	cancel()
	<-sched.Stop().Done()
	p.log.Debug().Msg("poller stopped")
}

// SetTraderID switches the polled trader. The previous entry is invalidated
// and a fresh cycle starts right away; late answers for the old trader are
// discarded.
func (p *Poller) SetTraderID(id string) {
	p.mu.Lock()
	if id == p.traderID {
		p.mu.Unlock()
		return
	}
	p.cache.Invalidate(cache.Key(p.traderID))
	p.traderID = id
	p.lastErr = nil
	p.publishLocked(p.stateLocked())
	running := p.sched != nil
	p.mu.Unlock()

	p.log.Info().Str("trader_id", id).Msg("trader switched")
	if running {
		go p.revalidate()
	}
}

// Refresh triggers an out-of-schedule fetch unless the limiter refuses.
func (p *Poller) Refresh() bool {
	p.mu.Lock()
	running := p.sched != nil
	p.mu.Unlock()
	if !running || !p.limiter.Allow() {
		return false
	}
	go p.revalidate()
	return true
}

// State returns the latest state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

// stateLocked assembles the current state. The snapshot always comes from the
// cache entry for the current trader, so an entry seeded or invalidated from
// outside the poller is reflected on the next read.
func (p *Poller) stateLocked() State {
	st := State{TraderID: p.traderID, Key: cache.Key(p.traderID), Err: p.lastErr}
	if entry, ok := p.cache.Get(st.Key); ok {
		st.Snapshot = entry.Snapshot
		st.FetchedAt = entry.FetchedAt
	}
	return st
}

// Updates delivers state changes. Only the most recent undelivered state is
// kept.
func (p *Poller) Updates() <-chan State {
	return p.updates
}

func (p *Poller) revalidate() {
	p.mu.Lock()
	traderID, ctx := p.traderID, p.ctx
	p.mu.Unlock()

	if traderID == "" || ctx == nil || ctx.Err() != nil {
		return
	}

	key := cache.Key(traderID)
	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		return p.fetch(ctx, traderID)
	})
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.traderID != traderID {
		p.log.Debug().Str("trader_id", traderID).Msg("discarding answer for previous trader")
		return
	}

	if err != nil {
		// The cached snapshot stays; consumers render the error first.
		p.lastErr = err
	} else {
		p.cache.Set(key, v.(*memory.Snapshot), time.Now())
		p.lastErr = nil
		p.log.Debug().Interface("cache", p.cache.Stats()).Msg("snapshot cached")
	}
	p.publishLocked(p.stateLocked())
}

func (p *Poller) fetch(ctx context.Context, traderID string) (*memory.Snapshot, error) {
	return Fetch(ctx, p.fetcher, traderID, p.observer, p.log)
}

// Fetch performs one observed fetch: it logs the outcome, reports snapshot
// invariant violations and hands the event to obs when one is set.
func Fetch(ctx context.Context, f Fetcher, traderID string, obs Observer, log zerolog.Logger) (*memory.Snapshot, error) {
	log = log.With().Str("trader_id", traderID).Logger()
	log.Debug().Msg("fetching memory")

	started := time.Now()
	snap, err := f.FetchMemory(ctx, traderID)
	ev := FetchEvent{TraderID: traderID, StartedAt: started, Duration: time.Since(started), Err: err}

	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			ev.StatusCode = fe.Status
		}
		if ctx.Err() == nil {
			log.Error().Err(err).Int("status", ev.StatusCode).Msg("memory fetch failed")
		}
	} else {
		ev.Trades = len(snap.RecentTrades)
		log.Debug().Int("trades", ev.Trades).Int("total_trades", snap.TotalTrades).
			Dur("took", ev.Duration).Msg("memory received")
		if verr := snap.Validate(); verr != nil {
			log.Warn().Err(verr).Msg("snapshot violates memory invariants")
		}
	}

	if obs != nil && ctx.Err() == nil {
		if oerr := obs.RecordFetch(context.WithoutCancel(ctx), ev); oerr != nil {
			log.Warn().Err(oerr).Msg("record fetch event")
		}
	}
	return snap, err
}

// publishLocked must be called with p.mu held so states are delivered in order.
func (p *Poller) publishLocked(st State) {
	select {
	case <-p.updates:
	default:
	}
	select {
	case p.updates <- st:
	default:
	}
}
