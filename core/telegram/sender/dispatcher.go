package sender

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	coreconfig "github.com/m3rciful/counterbot/core/config"
	"github.com/m3rciful/counterbot/core/logger"
	"github.com/m3rciful/counterbot/core/telegram/netutil"
)

// Options controls the outbound dispatcher. Zero fields take defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
	// BreakerFailures opens the circuit after this many consecutive transport
	// failures. Zero disables the breaker.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// OptionsFrom maps the sender config section onto dispatcher options.
func OptionsFrom(cfg coreconfig.SenderConfig) Options {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return Options{
		QueueSize:       cfg.QueueSize,
		Workers:         cfg.Workers,
		MaxRetries:      cfg.MaxRetries,
		RetryBackoff:    ms(cfg.RetryBackoffMS),
		MaxDuration:     ms(cfg.MaxDurationMS),
		BreakerFailures: uint32(cfg.BreakerFailures),
		BreakerTimeout:  ms(cfg.BreakerTimeoutMS),
	}
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	if o.BreakerTimeout <= 0 {
		o.BreakerTimeout = 30 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

func (j job) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := make([]slog.Attr, 0, 2+len(extra))
	attrs = append(attrs, slog.String("action", j.action))
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return append(attrs, extra...)
}

// Dispatcher runs outbound Telegram calls on a fixed worker pool, retrying
// transport failures behind an optional circuit breaker.
type Dispatcher struct {
	opts    Options
	breaker *gobreaker.CircuitBreaker
	jobs    chan job
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	errs    atomic.Uint64
}

// NewDispatcher starts the worker pool.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
	}
	if opts.BreakerFailures > 0 {
		d.breaker = newBreaker(opts.BreakerFailures, opts.BreakerTimeout)
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.handle(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run without blocking. run may be called more than once.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilRun
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close drains queued jobs and stops the workers. Safe to call twice.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

// ErrorCount returns the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// BreakerState reports the circuit state, or "disabled" when no breaker is configured.
func (d *Dispatcher) BreakerState() string {
	if d.breaker == nil {
		return "disabled"
	}
	return d.breaker.State().String()
}

func newBreaker(failures uint32, timeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "telegram",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// API rejections prove Telegram is reachable; only transport errors count.
		IsSuccessful: func(err error) bool {
			return err == nil || !netutil.ShouldRetry(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Sender.Warn("breaker state change",
				slog.String("event", "breaker.state"),
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

func (d *Dispatcher) call(run func() error) error {
	if d.breaker == nil {
		return run()
	}
	_, err := d.breaker.Execute(func() (any, error) { return nil, run() })
	return err
}

func (d *Dispatcher) handle(j job) {
	start := time.Now()
	logger.Debug(j.ctx, "tg.sender", "send.start", j.attrs()...)

	attempt, err := d.runWithRetry(j)
	elapsed := slog.Int64("elapsed_ms", logger.RoundMS(time.Since(start)).Milliseconds())
	if err != nil {
		d.errs.Add(1)
		logger.Error(j.ctx, "tg.sender", "send.fail", j.attrs(
			slog.String("error", redact(err)),
			slog.String("error_kind", classifyError(err)),
			slog.Int("attempts", attempt),
			elapsed,
		)...)
		return
	}
	if attempt > 1 {
		logger.Info(j.ctx, "tg.sender", "send.retry.success", j.attrs(slog.Int("attempt", attempt), elapsed)...)
		return
	}
	logger.Debug(j.ctx, "tg.sender", "send.success", j.attrs(elapsed)...)
}

// runWithRetry calls j.run until it succeeds, fails permanently, runs out of
// attempts or exceeds MaxDuration. It returns the number of attempts made.
func (d *Dispatcher) runWithRetry(j job) (int, error) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	limit := d.opts.MaxRetries + 1
	for attempt := 1; ; attempt++ {
		err := d.call(j.run)
		if err == nil || attempt == limit || !netutil.ShouldRetry(err) {
			return attempt, err
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		logger.Debug(j.ctx, "tg.sender", "send.retry.backoff",
			j.attrs(slog.Int("attempt", attempt), slog.Duration("delay", delay))...)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}
}
