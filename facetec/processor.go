package facetec

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gooddollar/facetec-go/facetec/api"
	"github.com/gooddollar/facetec-go/models"
)

// Success banner and processing texts. The vendor UI theming itself is out of
// scope, these are the only customization strings orchestration needs.
const (
	ResultSuccessMessage             = "You are now verified"
	ResultFacescanProcessingMessage  = "Processing..."
	sessionTokenErrorMessage         = "Session could not be started due to an unexpected issue during the network request"
	payloadMarshallingFailureMessage = "Exception raised while attempting to create the payload for upload"
)

// Upload progress occupies the 10%..80% band of the visual progress bar, the
// remainder is attributed to server-side processing.
const (
	uploadProgressFloor = 0.1
	uploadProgressSpan  = 0.7
)

// VerificationAPI is what the coordinator needs from the backend client.
// *api.Client satisfies it.
type VerificationAPI interface {
	GetSessionToken(callback api.SessionTokenCallback)
	Enroll(enrollmentIdentifier string, payload models.EnrollmentRequest, timeout time.Duration,
		progress api.ProgressFunc, callback api.EnrollmentCallback)
	CancelPendingRequests()
}

// EnrollmentProcessor coordinates one enrollment attempt end to end:
// permission, session token, capture, upload, verdict, retry-or-terminate.
// It implements FaceScanProcessor for the vendor callbacks. A processor is
// single use; the Module creates a fresh one per FaceVerification call.
type EnrollmentProcessor struct {
	verification VerificationAPI
	launcher     SessionLauncher
	permissions  PermissionRequester
	events       EventSink
	subscriber   *ProcessingSubscriber

	session *EnrollmentSession

	// Snapshot of the latest vendor callback pair. Each capture attempt
	// delivers a new pair before any verdict handling runs.
	lastResult   SessionResult
	lastCallback ResultCallback

	// onDone runs after the terminal outcome was reported, so the owner can
	// clear its active-processor reference.
	onDone func()
}

// NewEnrollmentProcessor wires a coordinator to its collaborators. A nil
// events sink is replaced with a no-op one.
func NewEnrollmentProcessor(
	verification VerificationAPI,
	launcher SessionLauncher,
	permissions PermissionRequester,
	events EventSink,
	subscriber *ProcessingSubscriber,
) *EnrollmentProcessor {
	if events == nil {
		events = NopSink()
	}
	return &EnrollmentProcessor{
		verification: verification,
		launcher:     launcher,
		permissions:  permissions,
		events:       events,
		subscriber:   subscriber,
	}
}

// Subscriber exposes the outcome reporter, used by the Module to preempt a
// superseded session.
func (p *EnrollmentProcessor) Subscriber() *ProcessingSubscriber {
	return p.subscriber
}

// Session exposes the active session state, read-only for callers.
func (p *EnrollmentProcessor) Session() *EnrollmentSession {
	return p.session
}

// Enroll starts the enrollment flow. It returns immediately; the outcome is
// reported through the subscriber exactly once.
func (p *EnrollmentProcessor) Enroll(enrollmentIdentifier string, opts EnrollmentOptions) {
	p.session = newEnrollmentSession(enrollmentIdentifier, opts)
	if err := p.session.transition(StateAwaitingPermission); err != nil {
		slog.Error("failed to start enrollment", "error", err)
		p.finishBeforeCapture(func() { p.subscriber.OnSessionTokenError(err) })
		return
	}

	slog.Info("starting enrollment", "identifier", enrollmentIdentifier,
		"max_retries", p.session.maxRetries, "timeout", p.session.timeout)

	p.permissions.RequestCameraPermission(
		func() { p.requestSessionToken() },
		func() {
			slog.Warn("camera permission denied", "identifier", enrollmentIdentifier)
			p.session.fail(StateFailed, CameraPermissionDenied.Description())
			p.finishBeforeCapture(func() { p.subscriber.OnCameraAccessError() })
		},
	)
}

func (p *EnrollmentProcessor) requestSessionToken() {
	if err := p.session.transition(StateAwaitingToken); err != nil {
		slog.Warn("token request skipped", "error", err)
		return
	}

	p.verification.GetSessionToken(func(sessionToken string, apiErr *api.Error) {
		if apiErr != nil {
			p.session.fail(StateFailed, fmt.Sprintf("%s: %s", sessionTokenErrorMessage, apiErr.Message))
			p.finishBeforeCapture(func() { p.subscriber.OnSessionTokenError(apiErr) })
			return
		}

		if err := p.session.transition(StateCaptureInProgress); err != nil {
			// Session was preempted while the token round trip was in flight.
			slog.Warn("capture launch skipped", "error", err)
			return
		}

		p.events.Dispatch(UIReady, nil)

		if err := p.launcher.LaunchSession(context.Background(), p, sessionToken); err != nil {
			slog.Error("failed to launch capture session", "error", err)
			p.session.fail(StateFailed, fmt.Sprintf("%s: %v", sessionTokenErrorMessage, err))
			p.finishBeforeCapture(func() { p.subscriber.OnSessionTokenError(err) })
			return
		}
	})
}

// ProcessSession is the vendor capture-complete callback: exactly once per
// capture attempt, on the vendor dispatch goroutine. It must not block, the
// upload is dispatched asynchronously.
func (p *EnrollmentProcessor) ProcessSession(result SessionResult, callback ResultCallback) {
	p.lastResult = result
	p.lastCallback = callback

	if result.Status() != SessionCompletedSuccessfully {
		slog.Info("capture session did not complete", "status", result.Status().String())

		// Abandoned captures must not leave uploads racing the next session.
		p.verification.CancelPendingRequests()
		callback.Cancel()

		terminal := StateFailed
		if result.Status() == UserCancelled || result.Status() == ContextSwitch ||
			result.Status() == UserCancelledViaHardwareButton ||
			result.Status() == UserCancelledViaClickableReadyScreenSubtext {
			terminal = StateCancelled
		}
		p.session.fail(terminal, "")
		return
	}

	p.events.Dispatch(CaptureDone, nil)
	p.sendEnrollmentRequest()
}

// SessionCompletelyDone is the vendor teardown callback: it fires once after
// the capture UI is dismissed, strictly after the terminal decision. This is
// the single place the outcome reporter runs for a captured session.
func (p *EnrollmentProcessor) SessionCompletelyDone() {
	p.subscriber.OnProcessingComplete(p.session.IsSuccess(), p.lastResult, p.session.LastMessage())
	p.finish()
}

func (p *EnrollmentProcessor) sendEnrollmentRequest() {
	if err := p.session.transition(StateUploading); err != nil {
		slog.Warn("upload skipped", "error", err)
		return
	}

	result := p.lastResult
	callback := p.lastCallback

	// Freeze the progress bar until the first bytes go out.
	callback.UploadProgress(0)

	auditTrail := result.AuditTrailCompressedBase64()
	lowQuality := result.LowQualityAuditTrailCompressedBase64()
	if result.FaceScanBase64() == "" || len(auditTrail) == 0 || len(lowQuality) == 0 {
		p.session.fail(StateFailed, payloadMarshallingFailureMessage)
		callback.Cancel()
		return
	}

	payload := models.EnrollmentRequest{
		FaceScan:                  result.FaceScanBase64(),
		AuditTrailImage:           auditTrail[0],
		LowQualityAuditTrailImage: lowQuality[0],
		SessionID:                 result.SessionID(),
		FVSigner:                  p.session.v1Identifier,
		ChainID:                   p.session.chainID,
	}

	progress := func(bytesSent, totalBytes int64) {
		uploaded := float64(bytesSent) / float64(totalBytes)
		callback.UploadProgress(uploadProgressFloor + uploadProgressSpan*uploaded)

		if bytesSent == totalBytes {
			// Upload finished, the rest of the wait is server processing.
			callback.UploadMessageOverride(ResultFacescanProcessingMessage)
			if err := p.session.transition(StateAwaitingVerdict); err != nil {
				slog.Debug("verdict transition skipped", "error", err)
			}
		}
	}

	p.verification.Enroll(p.session.enrollmentIdentifier, payload, p.session.timeout, progress,
		func(response *models.EnrollmentResponse, apiErr *api.Error) {
			callback.UploadProgress(1)

			if apiErr != nil {
				p.handleEnrollmentError(apiErr)
				return
			}

			p.handleEnrollmentSuccess(response)
		})
}

func (p *EnrollmentProcessor) handleEnrollmentSuccess(response *models.EnrollmentResponse) {
	resultBlob := response.Blob()
	if resultBlob == "" {
		// Nothing to finalize the vendor session with, treat as a failure.
		p.handleEnrollmentError(api.NewError(api.UnexpectedMessage, response))
		return
	}

	p.session.succeed(ResultSuccessMessage)
	slog.Info("enrollment verified", "identifier", p.session.enrollmentIdentifier)

	p.lastCallback.Succeed()
	p.lastCallback.ProceedToNextStep(resultBlob)
}

// handleEnrollmentError decides retry versus terminate. Only a strict
// liveness failure with a continuation blob and remaining budget is worth
// another capture: duplicates and 3D-match failures cannot change on retry,
// and without a blob there is nothing to resume with.
func (p *EnrollmentProcessor) handleEnrollmentError(apiErr *api.Error) {
	if p.session.State().Terminal() {
		// A terminal decision was already made, e.g. the capture was abandoned
		// while this request was being cancelled.
		return
	}

	message := apiErr.Message
	p.session.setLastMessage(message)

	response := apiErr.Response
	if response != nil {
		enrollmentResult := response.EnrollmentResult

		isLivenessIssue := !enrollmentResult.LivenessPassed()
		isDuplicateIssue := enrollmentResult != nil && enrollmentResult.IsDuplicate
		is3DMatchIssue := enrollmentResult != nil && enrollmentResult.IsNotMatch
		isEnrolled := enrollmentResult != nil && enrollmentResult.IsEnrolled
		resultBlob := ""
		if enrollmentResult != nil {
			resultBlob = enrollmentResult.ResultBlob
		}

		if isLivenessIssue && resultBlob != "" && !isDuplicateIssue && !is3DMatchIssue &&
			p.session.retryBudgetLeft() {
			p.session.recordRetry(message)
			slog.Info("retrying capture after liveness failure",
				"identifier", p.session.enrollmentIdentifier, "attempt", p.session.RetryAttempt())

			p.lastCallback.UploadMessageOverride(message)
			p.lastCallback.ProceedToNextStep(resultBlob)

			p.events.Dispatch(FVRetry, map[string]any{
				"reason":    message,
				"match3d":   !is3DMatchIssue,
				"liveness":  !isLivenessIssue,
				"duplicate": isDuplicateIssue,
				"enrolled":  isEnrolled,
			})
			return
		}
	}

	slog.Warn("enrollment failed", "identifier", p.session.enrollmentIdentifier, "reason", message)
	p.session.fail(StateFailed, message)
	p.lastCallback.Cancel()
}

// finishBeforeCapture reports a failure that happened before any capture UI
// was launched. There will be no vendor teardown callback in that case, so
// the reporter runs here.
func (p *EnrollmentProcessor) finishBeforeCapture(report func()) {
	report()
	p.finish()
}

func (p *EnrollmentProcessor) finish() {
	if p.onDone != nil {
		p.onDone()
	}
}
