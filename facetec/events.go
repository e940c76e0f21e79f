package facetec

import "log/slog"

// UXEvent names a lifecycle event emitted towards the application layer.
// The values are the event names the application subscribes to.
type UXEvent string

const (
	// UIReady fires once the capture UI is presented.
	UIReady UXEvent = "onUIReady"
	// CaptureDone fires once capturing finished and uploading begins.
	CaptureDone UXEvent = "onCaptureDone"
	// FVRetry fires when a failed verdict leads to another capture attempt.
	// Its body carries reason, match3d, liveness, duplicate and enrolled.
	FVRetry UXEvent = "onRetry"
)

// EventSink receives fire-and-forget UX events. Implementations must not
// block: callbacks arrive on the vendor dispatch goroutine.
type EventSink interface {
	Dispatch(event UXEvent, body map[string]any)
}

// EventNames returns the event name map the way the native module exported
// its constants to the application layer.
func EventNames() map[string]string {
	return map[string]string{
		"UI_READY":     string(UIReady),
		"CAPTURE_DONE": string(CaptureDone),
		"FV_RETRY":     string(FVRetry),
	}
}

type noopSink struct{}

func (noopSink) Dispatch(event UXEvent, body map[string]any) {
	slog.Debug("UX event dropped, no sink registered", "event", string(event))
}

// NopSink returns a sink that logs and discards events.
func NopSink() EventSink { return noopSink{} }

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(event UXEvent, body map[string]any)

func (f SinkFunc) Dispatch(event UXEvent, body map[string]any) { f(event, body) }
