package facetec

import (
	"fmt"
	"log/slog"
	"sync"
)

// ProcessingSubscriber translates the coordinator's terminal state into the
// single settlement of the caller's promise. It is invoked exactly once per
// enrollment attempt; later invocations are ignored.
type ProcessingSubscriber struct {
	once    sync.Once
	promise *Promise[string]
}

func NewProcessingSubscriber(promise *Promise[string]) *ProcessingSubscriber {
	return &ProcessingSubscriber{promise: promise}
}

// OnProcessingComplete reports the final outcome of a captured session.
// On success the promise resolves with the captured biometric artifacts
// (face scan and best audit trail frame, comma separated) so the caller can
// hand them to further external processing. On failure it rejects with the
// vendor status code and either the session message or the status's default
// description.
func (s *ProcessingSubscriber) OnProcessingComplete(isSuccess bool, result SessionResult, message string) {
	s.once.Do(func() {
		if isSuccess {
			artifacts := ""
			if result != nil {
				auditTrail := result.AuditTrailCompressedBase64()
				if len(auditTrail) > 0 {
					artifacts = result.FaceScanBase64() + "," + auditTrail[0]
				} else {
					artifacts = result.FaceScanBase64()
				}
			}
			slog.Info("enrollment completed successfully")
			s.promise.Resolve(artifacts)
			return
		}

		if result == nil {
			// Failed before any capture happened, nothing to derive a code from.
			s.rejectWithStatus(UnknownInternalError, message)
			return
		}

		s.rejectWithStatus(result.Status(), message)
	})
}

// OnSessionTokenError reports a failure to start the session at all. The
// wrapped error text is preserved for diagnostics.
func (s *ProcessingSubscriber) OnSessionTokenError(err error) {
	message := sessionTokenErrorMessage
	if err != nil {
		message = fmt.Sprintf("%s: %v", sessionTokenErrorMessage, err)
	}
	s.once.Do(func() { s.rejectWithStatus(UnknownInternalError, message) })
}

// OnSessionContextSwitch reports that the session was superseded by a new one.
func (s *ProcessingSubscriber) OnSessionContextSwitch() {
	s.once.Do(func() { s.rejectWithStatus(ContextSwitch, "") })
}

// OnCameraAccessError reports a camera permission denial.
func (s *ProcessingSubscriber) OnCameraAccessError() {
	s.once.Do(func() { s.rejectWithStatus(CameraPermissionDenied, "") })
}

func (s *ProcessingSubscriber) rejectWithStatus(status SessionStatus, message string) {
	if message == "" {
		message = status.Description()
	}
	slog.Warn("enrollment rejected", "code", int(status), "reason", message)
	s.promise.Reject(int(status), message)
}
