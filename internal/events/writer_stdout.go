package events

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
)

// StdoutWriter logs job lifecycle events instead of publishing them. It backs the
// producer when no kafka broker is configured.
type StdoutWriter struct{}

func (s *StdoutWriter) Write(_ context.Context, topic string, e cloudevents.Event) error {
	zap.S().Named("job_events").Infow("job event", "type", e.Type(), "event_id", e.ID(), "source", e.Source(), "topic", topic, "job", string(e.Data()))
	return nil
}

func (s *StdoutWriter) Close(_ context.Context) error {
	return nil
}
