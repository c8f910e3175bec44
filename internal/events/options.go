package events

// ProducerOptions configures an EventProducer.
type ProducerOptions func(e *EventProducer)

// WithOutputTopic sets the topic job lifecycle events are written to.
func WithOutputTopic(topic string) ProducerOptions {
	return func(e *EventProducer) {
		e.topic = topic
	}
}

// WithSource overrides the cloudevents source stamped on every event.
func WithSource(source string) ProducerOptions {
	return func(e *EventProducer) {
		if source != "" {
			e.source = source
		}
	}
}
