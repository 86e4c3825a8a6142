package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingua-board/logger"
)

// Phase names the pipeline state machine's states. Retries live entirely
// inside Generating and are invisible at this level.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseValidating  Phase = "validating"
	PhaseAuthorizing Phase = "authorizing"
	PhaseGenerating  Phase = "generating"
	PhaseCleaning    Phase = "cleaning"
	PhaseInserting   Phase = "inserting"
	PhaseReporting   Phase = "reporting"
)

// Statistics are the run counters exposed by the trigger endpoint.
type Statistics struct {
	QuotesGenerated int `json:"quotesGenerated"`
	QuotesDeleted   int `json:"quotesDeleted"`
	QuotesInserted  int `json:"quotesInserted"`
	Batches         int `json:"batches"`
	BatchSize       int `json:"batchSize"`
}

// RunReport is the pipeline's only externally visible contract besides the
// persisted quotes themselves.
type RunReport struct {
	Success     bool       `json:"success"`
	ExecutionID string     `json:"executionId"`
	Timestamp   time.Time  `json:"timestamp"`
	Duration    string     `json:"duration"`
	Phase       Phase      `json:"phase"`
	Statistics  Statistics `json:"statistics"`
	Message     string     `json:"message"`

	// Failure details. Production responses carry the category and a short
	// actionable message, never stack detail.
	ErrorCategory string   `json:"error,omitempty"`
	OrphanIDs     []string `json:"orphanIds,omitempty"`
}

// reporter assigns the run identifier at pipeline start and measures the
// whole run.
type reporter struct {
	runID   string
	started time.Time
}

func newReporter(now time.Time) *reporter {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return &reporter{
		runID:   fmt.Sprintf("refresh-%d-%s", now.UnixMilli(), suffix),
		started: now,
	}
}

func (r *reporter) success(stats Statistics) RunReport {
	rep := RunReport{
		Success:     true,
		ExecutionID: r.runID,
		Timestamp:   r.started,
		Duration:    time.Since(r.started).String(),
		Phase:       PhaseReporting,
		Statistics:  stats,
		Message: fmt.Sprintf("refreshed %d quotes in %d batches",
			stats.QuotesInserted, stats.Batches),
	}
	logger.InfoWithFields("refresh run succeeded", logger.Fields{
		"run_id":   rep.ExecutionID,
		"duration": rep.Duration,
		"inserted": stats.QuotesInserted,
		"deleted":  stats.QuotesDeleted,
		"batches":  stats.Batches,
	})
	return rep
}

func (r *reporter) failure(phase Phase, err error, stats Statistics) RunReport {
	rep := RunReport{
		Success:       false,
		ExecutionID:   r.runID,
		Timestamp:     r.started,
		Duration:      time.Since(r.started).String(),
		Phase:         phase,
		Statistics:    stats,
		ErrorCategory: Categorize(err),
		Message:       err.Error(),
	}

	var perr *PersistenceError
	if errors.As(err, &perr) && perr.RollbackErr != nil {
		rep.OrphanIDs = hexIDs(perr.OrphanIDs)
	}

	logger.ErrorWithFields("refresh run failed", logger.Fields{
		"run_id":   rep.ExecutionID,
		"duration": rep.Duration,
		"phase":    string(phase),
		"category": rep.ErrorCategory,
		"error":    err.Error(),
	})
	return rep
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
