package facetec

import (
	"context"
	"sync"
	"time"

	"github.com/gooddollar/facetec-go/facetec/api"
	"github.com/gooddollar/facetec-go/models"
)

// fakeResult is a canned SessionResult.
type fakeResult struct {
	status     SessionStatus
	sessionID  string
	faceScan   string
	auditTrail []string
	lowQuality []string
}

func newFakeResult(status SessionStatus) *fakeResult {
	return &fakeResult{
		status:     status,
		sessionID:  "session-1",
		faceScan:   "face-scan-b64",
		auditTrail: []string{"audit-b64"},
		lowQuality: []string{"low-quality-b64"},
	}
}

func (r *fakeResult) Status() SessionStatus                         { return r.status }
func (r *fakeResult) SessionID() string                             { return r.sessionID }
func (r *fakeResult) FaceScanBase64() string                        { return r.faceScan }
func (r *fakeResult) AuditTrailCompressedBase64() []string          { return r.auditTrail }
func (r *fakeResult) LowQualityAuditTrailCompressedBase64() []string { return r.lowQuality }

// fakeCallback records every vendor callback invocation.
type fakeCallback struct {
	mu sync.Mutex

	progress  []float64
	messages  []string
	succeeded bool
	cancelled bool
	proceeded []string
	retried   bool
}

func (c *fakeCallback) UploadProgress(fraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = append(c.progress, fraction)
}

func (c *fakeCallback) UploadMessageOverride(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

func (c *fakeCallback) Succeed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.succeeded = true
}

func (c *fakeCallback) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = true
}

func (c *fakeCallback) ProceedToNextStep(resultBlob string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proceeded = append(c.proceeded, resultBlob)
}

func (c *fakeCallback) Retry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retried = true
}

// fakeVerification scripts the backend responses and runs callbacks
// synchronously so tests stay deterministic.
type fakeVerification struct {
	mu sync.Mutex

	sessionToken    string
	sessionTokenErr *api.Error

	// enrollResponses is consumed one per Enroll call; the paired errors
	// likewise. A call past the end of the list panics the test loudly.
	enrollResponses []*models.EnrollmentResponse
	enrollErrors    []*api.Error

	enrollCalls   []models.EnrollmentRequest
	enrollTimeout time.Duration
	reportUpload  bool
	cancelled     int
}

func (f *fakeVerification) GetSessionToken(callback api.SessionTokenCallback) {
	callback(f.sessionToken, f.sessionTokenErr)
}

func (f *fakeVerification) Enroll(enrollmentIdentifier string, payload models.EnrollmentRequest,
	timeout time.Duration, progress api.ProgressFunc, callback api.EnrollmentCallback) {
	f.mu.Lock()
	f.enrollCalls = append(f.enrollCalls, payload)
	call := len(f.enrollCalls) - 1
	f.enrollTimeout = timeout
	response := f.enrollResponses[call]
	apiErr := f.enrollErrors[call]
	reportUpload := f.reportUpload
	f.mu.Unlock()

	if reportUpload && progress != nil {
		progress(50, 100)
		progress(100, 100)
	}
	callback(response, apiErr)
}

func (f *fakeVerification) CancelPendingRequests() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
}

// fakeLauncher immediately hands a scripted result to the processor, as if the
// capture UI ran and finished.
type fakeLauncher struct {
	result   *fakeResult
	callback *fakeCallback
	err      error

	launched int
	tokens   []string
}

func (l *fakeLauncher) LaunchSession(_ context.Context, processor FaceScanProcessor, sessionToken string) error {
	l.launched++
	l.tokens = append(l.tokens, sessionToken)
	if l.err != nil {
		return l.err
	}
	// A nil result leaves the capture hanging, as if the user never finished.
	if l.result != nil {
		processor.ProcessSession(l.result, l.callback)
	}
	return nil
}

// grantingPermissions answers the camera prompt synchronously.
type grantingPermissions struct{ deny bool }

func (p *grantingPermissions) RequestCameraPermission(granted func(), denied func()) {
	if p.deny {
		denied()
		return
	}
	granted()
}

// recordingSink captures dispatched UX events in order.
type recordingSink struct {
	mu     sync.Mutex
	events []UXEvent
	bodies []map[string]any
}

func (s *recordingSink) Dispatch(event UXEvent, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	s.bodies = append(s.bodies, body)
}

func (s *recordingSink) names() []UXEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]UXEvent(nil), s.events...)
}

func boolPtr(v bool) *bool { return &v }
