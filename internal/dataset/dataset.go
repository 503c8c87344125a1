// Package dataset owns the single in-memory copy of the readiness table.
package dataset

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/observability"
)

// Source reads the raw rows of the dataset. *source.File satisfies it.
type Source interface {
	Name() string
	Records(ctx context.Context) ([]domain.RawRecord, error)
}

// Dataset loads its source at most once per process. The first successful
// load is published and returned by every later call to Table; a failed load
// is not remembered, so the next call reads the source again.
type Dataset struct {
	src     Source
	logger  *slog.Logger
	metrics *observability.Metrics

	mu     sync.Mutex // serializes loads and guards onLoad
	onLoad []LoadHook
	table  atomic.Pointer[domain.Table]
	loads  atomic.Int64
}

// LoadHook runs once, after the first successful load. ctx is detached from
// the caller's cancellation.
type LoadHook func(ctx context.Context, t *domain.Table)

// New creates a Dataset over src. Nothing is read until Table is called.
func New(src Source, logger *slog.Logger, metrics *observability.Metrics) *Dataset {
	return &Dataset{
		src:     src,
		logger:  logger,
		metrics: metrics,
	}
}

// OnLoad registers fn to run after the first successful load. Hooks run
// synchronously on the goroutine that performed the load, after the table is
// published. A hook registered after the load has happened never runs.
func (d *Dataset) OnLoad(fn LoadHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onLoad = append(d.onLoad, fn)
}

// Table returns the loaded table, reading the source on first use.
// Errors from the source are returned as *domain.DataSourceError.
// The returned table is shared and must be treated as read-only.
func (d *Dataset) Table(ctx context.Context) (*domain.Table, error) {
	if t := d.table.Load(); t != nil {
		return t, nil
	}

	t, hooks, err := d.loadOnce(ctx)
	if err != nil {
		return nil, err
	}
	for _, fn := range hooks {
		fn(context.WithoutCancel(ctx), t)
	}
	return t, nil
}

// loadOnce loads and publishes the table under the mutex. It returns the
// registered hooks only to the caller that performed the load.
func (d *Dataset) loadOnce(ctx context.Context) (*domain.Table, []LoadHook, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t := d.table.Load(); t != nil {
		return t, nil, nil
	}

	t, err := d.load(ctx)
	if err != nil {
		d.metrics.DatasetLoads.WithLabelValues("error").Inc()
		d.logger.Error("dataset load failed", "source", d.src.Name(), "error", err)
		return nil, nil, err
	}

	d.table.Store(t)
	d.metrics.DatasetLoads.WithLabelValues("success").Inc()
	d.metrics.DatasetRows.Set(float64(t.Len()))
	d.metrics.UnclassifiedRows.Set(float64(t.Unclassified()))
	d.logger.Info("dataset loaded",
		"source", t.Source,
		"rows", t.Len(),
		"unclassified", t.Unclassified(),
	)

	hooks := d.onLoad
	d.onLoad = nil
	return t, hooks, nil
}

func (d *Dataset) load(ctx context.Context) (*domain.Table, error) {
	start := time.Now()
	defer func() {
		d.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	}()
	d.loads.Add(1)
	name := d.src.Name()

	recs, err := d.src.Records(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, domain.NewDataSourceError(name, "read", err)
	}
	if len(recs) == 0 {
		return nil, &domain.DataSourceError{Source: name, Op: "empty", Err: errors.New("no data rows")}
	}

	rows, err := domain.ParseRecords(recs)
	if err != nil {
		return nil, domain.NewDataSourceError(name, "parse", err)
	}

	return domain.NewTable(name, rows), nil
}

// Loaded reports whether the table has been loaded.
func (d *Dataset) Loaded() bool {
	return d.table.Load() != nil
}

// Loads returns how many times the source has been read.
func (d *Dataset) Loads() int64 {
	return d.loads.Load()
}

// CheckReadiness returns nil once the table has been loaded.
func (d *Dataset) CheckReadiness(_ context.Context) error {
	if !d.Loaded() {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}
