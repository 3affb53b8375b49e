package actuator

// Sink is the hardware channel writer routine execution and manual
// control funnel through. Writes are synchronous and fire-and-forget:
// callers log failures but never branch on them.
type Sink interface {
	// Write sets one output channel to the given intensity.
	Write(channel int, value uint8) error

	// Close releases the underlying transport.
	Close() error
}

// NopSink discards all writes. Used when no actuation hardware is
// configured and in tests.
type NopSink struct{}

func (NopSink) Write(channel int, value uint8) error { return nil }
func (NopSink) Close() error                         { return nil }
