// Package metrics defines what the wallet reports and a Prometheus backend
// for it.
package metrics

import "time"

// Recorder collects wallet metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// HTTP surface
	RecordHTTP(route, method string, status int, duration time.Duration)

	// Domain mutations, outcome is "ok", "rejected" or "error".
	RecordMutation(entity, operation, outcome string)

	// Messaging and export
	RecordEvent(kind string, success bool)
	RecordExport(kind string, rows int, success bool)
	RecordAlert(level string)
	RecordCircuitState(name string, state CircuitState)
}

// CircuitState mirrors the breaker states reported by the AMQP client.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Mutation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Noop discards everything. It is the default when no registry is wired.
type Noop struct{}

func (Noop) RecordHTTP(string, string, int, time.Duration) {}
func (Noop) RecordMutation(string, string, string)         {}
func (Noop) RecordEvent(string, bool)                      {}
func (Noop) RecordExport(string, int, bool)                {}
func (Noop) RecordAlert(string)                            {}
func (Noop) RecordCircuitState(string, CircuitState)       {}

var _ Recorder = Noop{}
