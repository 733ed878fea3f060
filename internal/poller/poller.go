// Package poller keeps the gallery in sync with its source.
//
// A Poller loads the source once on Start, again on every manual trigger,
// and on a repeating timer once a load has produced a non-empty gallery.
// Fetches are not serialized: each runs in its own goroutine and whichever
// resolves last is what the gallery shows.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/gauthierbraillon/mediamix/internal/config"
	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/gallery"
	"github.com/gauthierbraillon/mediamix/internal/logger"
	"github.com/gauthierbraillon/mediamix/internal/metrics"
	"github.com/gauthierbraillon/mediamix/internal/normalize"
	"github.com/gauthierbraillon/mediamix/internal/source"
)

// ErrAlreadyStarted is returned by Start on a running Poller.
var ErrAlreadyStarted = errors.New("poller already started")

// Option configures the Poller.
type Option func(*Poller)

// WithSchedule sets the auto-refresh schedule.
func WithSchedule(s cron.Schedule) Option {
	return func(p *Poller) {
		p.schedule = s
	}
}

// WithInterval sets a fixed auto-refresh interval.
func WithInterval(d time.Duration) Option {
	return WithSchedule(Every(d))
}

// WithFetchTimeout bounds each fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Poller) {
		p.fetchTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Poller) {
		p.log = log
	}
}

// WithMetrics records fetch and gallery metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) {
		p.metrics = m
	}
}

// OnUpdate is called with the new list after every successful refresh.
func OnUpdate(fn func([]content.Item)) Option {
	return func(p *Poller) {
		p.onUpdate = fn
	}
}

// OnDelta is called when a refresh grew a non-empty gallery.
func OnDelta(fn func(Delta)) Option {
	return func(p *Poller) {
		p.onDelta = fn
	}
}

// OnNotice is called when a refresh fails with something the user should see.
func OnNotice(fn func(Notice)) Option {
	return func(p *Poller) {
		p.onNotice = fn
	}
}

// Poller refreshes a gallery.State from a source.Source.
type Poller struct {
	state        *gallery.State
	normalizer   *normalize.Normalizer
	schedule     cron.Schedule
	fetchTimeout time.Duration
	log          logger.Logger
	metrics      *metrics.Metrics
	onUpdate     func([]content.Item)
	onDelta      func(Delta)
	onNotice     func(Notice)

	mu          sync.Mutex
	src         source.Source
	ctx         context.Context
	running     bool
	timer       *cron.Cron
	lastTrigger uint64
	lastNotice  *Notice
	// generation changes on every Reconfigure; results of fetches started
	// under an older one are discarded.
	generation  uint64

	fetches sync.WaitGroup
}

// New creates a Poller that writes src's listing into state.
func New(src source.Source, state *gallery.State, opts ...Option) *Poller {
	p := &Poller{
		src:          src,
		state:        state,
		schedule:     Every(config.DefaultPollInterval),
		fetchTimeout: config.DefaultFetchTimeout,
		log:          logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.normalizer = normalize.New(normalize.WithLogger(p.log))
	return p
}

// Start performs the initial load. Fetches use ctx, so cancelling it
// aborts requests in flight.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrAlreadyStarted
	}
	p.ctx = ctx
	p.running = true
	p.spawnLocked("initial")
	return nil
}

// Stop removes the timer and waits for the fetches in flight to finish.
// No fetch starts after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.running = false
	timer := p.timer
	p.timer = nil
	p.mu.Unlock()

	stopTimer(timer)
	p.fetches.Wait()
}

// Trigger requests a refresh when n differs from the last value seen.
// Zero means no trigger yet and never fetches. It reports whether a fetch
// was started.
func (p *Poller) Trigger(n uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.triggerLocked(n)
}

// TriggerNow requests an immediate refresh.
func (p *Poller) TriggerNow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.triggerLocked(p.lastTrigger + 1)
}

func (p *Poller) triggerLocked(n uint64) bool {
	if n == 0 || n == p.lastTrigger {
		return false
	}
	p.lastTrigger = n
	if !p.running {
		return false
	}
	p.spawnLocked("trigger")
	return true
}

// Reconfigure swaps the source. The timer is torn down and the initial
// load runs again against src, as after Start. Fetches still running
// against the old source no longer affect the gallery.
func (p *Poller) Reconfigure(src source.Source) {
	p.mu.Lock()
	timer := p.timer
	p.timer = nil
	p.src = src
	p.generation++
	p.mu.Unlock()

	stopTimer(timer)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.spawnLocked("reconfigure")
	}
}

// Source returns the current source.
func (p *Poller) Source() source.Source {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src
}

// LastNotice returns the notice of the most recent failed refresh. It is
// cleared by the next successful one.
func (p *Poller) LastNotice() (Notice, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastNotice == nil {
		return Notice{}, false
	}
	return *p.lastNotice, true
}

// TimerRunning reports whether auto-refresh is active.
func (p *Poller) TimerRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timer != nil
}

func (p *Poller) spawnLocked(reason string) {
	src, ctx, gen := p.src, p.ctx, p.generation
	p.fetches.Add(1)
	go func() {
		defer p.fetches.Done()
		p.refresh(ctx, src, gen, reason)
	}()
}

// tick runs on the scheduler goroutine, so Stop waits for it.
func (p *Poller) tick() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	src, ctx, gen := p.src, p.ctx, p.generation
	p.mu.Unlock()

	p.refresh(ctx, src, gen, "timer")
}

func (p *Poller) refresh(ctx context.Context, src source.Source, gen uint64, reason string) {
	log := p.log.With(
		logger.String("source", src.Name()),
		logger.String("cycle_id", uuid.NewString()),
		logger.String("reason", reason),
	)

	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	start := time.Now()
	records, err := src.Fetch(fetchCtx)
	p.observeFetch(src.Name(), time.Since(start), err)
	if !p.isCurrent(gen) {
		log.Debug("discarding listing from replaced source")
		return
	}
	if err != nil {
		p.handleError(ctx, log, src, err)
		return
	}

	items := p.normalizer.Normalize(records, src.Policy())
	previous := p.state.Replace(items)
	p.observeGallery(items)
	p.clearNotice()

	log.Info("gallery refreshed",
		logger.Int("previous", previous),
		logger.Int("current", len(items)),
		logger.Duration("took", time.Since(start)))

	if previous > 0 && len(items) > previous {
		d := Delta{Source: src.Name(), Previous: previous, Current: len(items), Added: len(items) - previous}
		if p.metrics != nil {
			p.metrics.ItemsAddedTotal.Add(float64(d.Added))
		}
		log.Info("new items detected", logger.Int("added", d.Added))
		if p.onDelta != nil {
			p.onDelta(d)
		}
	}
	if len(items) > 0 {
		p.ensureTimer(log, gen)
	}
	if p.onUpdate != nil {
		p.onUpdate(items)
	}
}

func (p *Poller) handleError(ctx context.Context, log logger.Logger, src source.Source, err error) {
	if ctx.Err() != nil {
		log.Debug("fetch abandoned during shutdown", logger.Error(err))
		return
	}
	if content.IsParse(err) {
		log.Warn("source listing could not be parsed, keeping current gallery", logger.Error(err))
		return
	}

	log.Error("failed to refresh gallery", logger.Error(err))
	n := newNotice(src.Name(), err, time.Now())
	p.mu.Lock()
	p.lastNotice = &n
	p.mu.Unlock()
	if p.onNotice != nil {
		p.onNotice(n)
	}
}

func (p *Poller) isCurrent(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation == gen
}

func (p *Poller) clearNotice() {
	p.mu.Lock()
	p.lastNotice = nil
	p.mu.Unlock()
}

func (p *Poller) ensureTimer(log logger.Logger, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.timer != nil || p.generation != gen {
		return
	}

	c := cron.New(cron.WithChain(cron.Recover(cronLogger{p.log})))
	c.Schedule(p.schedule, cron.FuncJob(p.tick))
	c.Start()
	p.timer = c
	log.Info("auto-refresh started")
}

func stopTimer(c *cron.Cron) {
	if c == nil {
		return
	}
	<-c.Stop().Done()
}

func (p *Poller) observeFetch(sourceName string, took time.Duration, err error) {
	if p.metrics == nil {
		return
	}
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case content.IsParse(err):
		outcome = metrics.OutcomeParseError
	case content.IsConfiguration(err):
		outcome = metrics.OutcomeConfigError
	default:
		outcome = metrics.OutcomeFetchError
	}
	p.metrics.FetchesTotal.WithLabelValues(sourceName, outcome).Inc()
	p.metrics.FetchDurationSeconds.WithLabelValues(sourceName).Observe(took.Seconds())
}

func (p *Poller) observeGallery(items []content.Item) {
	if p.metrics == nil {
		return
	}
	counts := make(map[content.Type]int, len(content.Types))
	for _, item := range items {
		counts[item.Type]++
	}
	for _, t := range content.Types {
		p.metrics.GalleryItems.WithLabelValues(string(t)).Set(float64(counts[t]))
	}
}

// cronLogger routes scheduler logs through the application logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(fields(keysAndValues), logger.Error(err))...)
}

func fields(keysAndValues []interface{}) []logger.Field {
	out := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out = append(out, logger.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return out
}
