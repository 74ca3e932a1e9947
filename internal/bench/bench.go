// Package bench fires a fixed number of independent GETs at one URL and
// summarizes their latency.
package bench

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rawhttp/application/http"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var ErrInvalidOptions = errors.New("requests and concurrency must be positive, rate must not be negative")

// Latencies are recorded in microseconds between these bounds.
const (
	histogramMin     = 1
	histogramMax     = int64(5 * time.Minute / time.Microsecond)
	histogramSigFigs = 3
)

// Getter is the part of the client the runner needs.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

type Options struct {
	Requests    int
	Concurrency int
	// Rate caps requests started per second across all workers. Zero means no cap.
	Rate float64
}

var DefaultOptions = Options{
	Requests:    50,
	Concurrency: 5,
}

type Result struct {
	Requests int
	Errors   int
	// Statuses counts responses per status code.
	Statuses map[uint]int
	// Total is the wall time of the whole run.
	Total time.Duration

	Min, Mean, P50, P90, P99, Max time.Duration
}

type Runner struct {
	getter Getter
	logger *slog.Logger
	clock  clock.Clock
	opts   Options
}

func NewRunner(g Getter, logger *slog.Logger, clock clock.Clock, opts Options) *Runner {
	return &Runner{
		getter: g,
		logger: logger,
		clock:  clock,
		opts:   opts,
	}
}

// Run issues opts.Requests GETs over opts.Concurrency workers.
// A cancelled ctx stops handing out new requests; the result covers the
// ones that ran.
func (r *Runner) Run(ctx context.Context, url string) (*Result, error) {
	if r.opts.Requests < 1 || r.opts.Concurrency < 1 || r.opts.Rate < 0 {
		return nil, ErrInvalidOptions
	}

	workers := min(r.opts.Concurrency, r.opts.Requests)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if r.opts.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.opts.Rate), 1)
	}

	var (
		mu   sync.Mutex
		hist = hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
		res  = &Result{Statuses: make(map[uint]int)}
	)

	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for i := range r.opts.Requests {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	start := r.clock.Now()

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					// Cancelled while paced; the job never ran.
					continue
				}

				begin := r.clock.Now()
				resp, err := r.getter.Get(ctx, url)
				latency := r.clock.Since(begin)

				mu.Lock()
				res.Requests++
				if err != nil {
					res.Errors++
					mu.Unlock()
					r.logger.Debug("bench request failed", slog.Int("n", i), slog.Any("error", err))
					continue
				}
				res.Statuses[resp.Status.Code]++
				if err := hist.RecordValue(clamp(latency.Microseconds())); err != nil {
					r.logger.Debug("dropping latency sample", slog.Any("error", err))
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	res.Total = r.clock.Since(start)

	if hist.TotalCount() > 0 {
		res.Min = micros(hist.Min())
		res.Mean = time.Duration(hist.Mean() * float64(time.Microsecond))
		res.P50 = micros(hist.ValueAtQuantile(50))
		res.P90 = micros(hist.ValueAtQuantile(90))
		res.P99 = micros(hist.ValueAtQuantile(99))
		res.Max = micros(hist.Max())
	}

	r.logger.Debug("bench finished",
		slog.Int("requests", res.Requests),
		slog.Int("errors", res.Errors),
		slog.Duration("total", res.Total),
	)

	return res, nil
}

func clamp(v int64) int64 {
	return max(histogramMin, min(v, histogramMax))
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
