package pipeline

import (
	"context"
	"crypto/subtle"
	"time"

	"lingua-board/config"
	"lingua-board/logger"
	"lingua-board/models"
)

// ReportPublisher forwards a finished run report to an external sink such as
// the Kafka event bus. Publishing is best-effort and never fails a run.
type ReportPublisher interface {
	PublishRunReport(ctx context.Context, report RunReport) error
}

// Runner executes one refresh run end to end:
//
//	Idle → Validating → Authorizing → Generating → Cleaning → Inserting →
//	Reporting{Success|Failure}
//
// There is no pipeline-level retry loop; retries exist only inside the
// Generating phase. A run is cancelled wholesale on the first unrecoverable
// error and a fresh run starts from Validating again.
type Runner struct {
	cfg       config.AppConfig
	generate  GenerateFunc
	store     QuoteStore
	publisher ReportPublisher
	now       func() time.Time
}

type Option func(*Runner)

// WithPublisher attaches an optional run-report sink.
func WithPublisher(p ReportPublisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithClock overrides the time source, used by tests to pin the day bucket.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(cfg config.AppConfig, generate GenerateFunc, store QuoteStore, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		generate: generate,
		store:    store,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one refresh run. credential is the caller's shared trigger
// secret; the HTTP layer rejects bad secrets before invoking the pipeline,
// but the run re-checks so the cron path gets the same guarantee. The
// returned report is complete for both outcomes; Success tells them apart.
func (r *Runner) Run(ctx context.Context, credential string) RunReport {
	rep := newReporter(r.now())
	stats := Statistics{BatchSize: r.cfg.Refresh.BatchSize}

	logger.InfoWithFields("refresh run starting", logger.Fields{
		"run_id": rep.runID,
		"target": r.cfg.Refresh.TotalTarget,
	})

	// Validating
	if v := r.cfg.Validate(); !v.Valid {
		return r.publish(ctx, rep.failure(PhaseValidating, &ConfigurationError{Missing: v.Missing}, stats))
	}

	// Authorizing
	if subtle.ConstantTimeCompare([]byte(credential), []byte(r.cfg.TriggerSecret)) != 1 {
		return r.publish(ctx, rep.failure(PhaseAuthorizing, &AuthorizationError{}, stats))
	}

	dayBucket := models.DayBucketFor(r.now())

	// Generating — persistence is never reached with fewer than the full
	// target, so a generation failure leaves the previous bucket intact.
	orch := &orchestrator{gen: r.generate, cfg: r.cfg.Refresh}
	stats.Batches = orch.batchCount()
	quotes, err := orch.generateAll(ctx, dayBucket)
	if err != nil {
		return r.publish(ctx, rep.failure(PhaseGenerating, err, stats))
	}
	stats.QuotesGenerated = len(quotes)

	// Cleaning + Inserting
	gw := &gateway{
		store:     r.store,
		timeout:   r.cfg.Refresh.PersistenceTimeout(),
		chunkSize: r.cfg.Refresh.BatchSize,
	}
	res, err := gw.replace(ctx, dayBucket, quotes)
	if err != nil {
		return r.publish(ctx, rep.failure(persistencePhase(err), err, stats))
	}
	stats.QuotesDeleted = int(res.DeletedCount)
	stats.QuotesInserted = res.InsertedCount

	return r.publish(ctx, rep.success(stats))
}

func persistencePhase(err error) Phase {
	if perr, ok := err.(*PersistenceError); ok && perr.Op == "clean" {
		return PhaseCleaning
	}
	return PhaseInserting
}

// publish forwards the report to the optional sink; failures are logged only.
func (r *Runner) publish(ctx context.Context, rep RunReport) RunReport {
	if r.publisher == nil {
		return rep
	}
	if err := r.publisher.PublishRunReport(ctx, rep); err != nil {
		logger.WarnWithFields("failed to publish run report", logger.Fields{
			"run_id": rep.ExecutionID,
			"error":  err.Error(),
		})
	}
	return rep
}
