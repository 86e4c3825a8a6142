package eventbus

import (
	"context"
	"time"

	"lingua-board/pipeline"
)

// RunReportPublisher adapts an EventBus to the pipeline's ReportPublisher
// contract.
type RunReportPublisher struct {
	bus EventBus
}

func NewRunReportPublisher(bus EventBus) *RunReportPublisher {
	return &RunReportPublisher{bus: bus}
}

// PublishRunReport emits the run report on the refresh-completed topic,
// keyed by the run identifier.
func (p *RunReportPublisher) PublishRunReport(ctx context.Context, report pipeline.RunReport) error {
	return p.bus.Publish(ctx, TopicRefreshCompleted, Event{
		ID:        report.ExecutionID,
		Type:      TopicRefreshCompleted,
		Timestamp: time.Now(),
		Payload:   report,
	})
}
