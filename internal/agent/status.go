package agent

// StatusPhase classifies a status notification.
type StatusPhase string

// StatusPhase constants for status notifications.
const (
	StatusProcessing  StatusPhase = "processing"
	StatusSummarizing StatusPhase = "summarizing"
	StatusWarning     StatusPhase = "warning"
	StatusClear       StatusPhase = "clear"
	StatusError       StatusPhase = "error"
)

// StatusSink receives observational status updates from the loop. It is
// purely informational: implementations must not block, and nothing they
// do affects loop behavior.
type StatusSink interface {
	Notify(phase StatusPhase, message string)
}

// StatusFunc adapts a function to the StatusSink interface.
type StatusFunc func(phase StatusPhase, message string)

// Notify implements StatusSink.
func (f StatusFunc) Notify(phase StatusPhase, message string) { f(phase, message) }

// nopStatusSink discards all notifications. It is the default sink.
type nopStatusSink struct{}

func (nopStatusSink) Notify(StatusPhase, string) {}
