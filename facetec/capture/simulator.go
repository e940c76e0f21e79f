// Package capture provides a simulated capture device implementing the vendor
// boundary interfaces, so the enrollment flow can be exercised end to end
// without the closed-source SDK binary.
package capture

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gooddollar/facetec-go/facetec"
	"github.com/google/uuid"
)

// Scan is the canned biometric payload a simulated capture produces.
type Scan struct {
	FaceScan                  string
	AuditTrailImage           string
	LowQualityAuditTrailImage string
}

// Simulator acts as SDK, SessionLauncher and PermissionRequester at once.
// Each LaunchSession plays the configured capture statuses one attempt at a
// time; ProceedToNextStep without a prior Succeed starts the next attempt,
// which is exactly how the real component resumes a retried capture.
type Simulator struct {
	mu sync.Mutex

	// GrantCamera controls the permission prompt outcome.
	GrantCamera bool
	// Scan is the payload attached to every completed capture.
	Scan Scan
	// CaptureStatuses is the per-attempt capture outcome; attempts beyond the
	// list complete successfully.
	CaptureStatuses []facetec.SessionStatus

	sdkStatus    facetec.SDKStatus
	attempt      int
	sessionToken string
}

func NewSimulator() *Simulator {
	return &Simulator{
		GrantCamera: true,
		Scan: Scan{
			FaceScan:                  "c2ltdWxhdGVkLWZhY2Utc2Nhbg==",
			AuditTrailImage:           "c2ltdWxhdGVkLWF1ZGl0LXRyYWls",
			LowQualityAuditTrailImage: "c2ltdWxhdGVkLWxvdy1xdWFsaXR5",
		},
		sdkStatus: facetec.SDKNeverInitialized,
	}
}

// Status implements facetec.SDK.
func (s *Simulator) Status() facetec.SDKStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sdkStatus
}

// Initialize implements facetec.SDK; the simulator always initializes.
func (s *Simulator) Initialize(_ facetec.LicenseConfig, done func(successful bool)) {
	s.mu.Lock()
	s.sdkStatus = facetec.SDKInitialized
	s.mu.Unlock()
	done(true)
}

// RequestCameraPermission implements facetec.PermissionRequester.
func (s *Simulator) RequestCameraPermission(granted func(), denied func()) {
	if s.GrantCamera {
		granted()
		return
	}
	denied()
}

// LaunchSession implements facetec.SessionLauncher.
func (s *Simulator) LaunchSession(_ context.Context, processor facetec.FaceScanProcessor, sessionToken string) error {
	slog.Debug("simulated capture session launched", "session_token", sessionToken)
	s.mu.Lock()
	s.sessionToken = sessionToken
	s.mu.Unlock()
	go s.runAttempt(processor)
	return nil
}

func (s *Simulator) runAttempt(processor facetec.FaceScanProcessor) {
	s.mu.Lock()
	status := facetec.SessionCompletedSuccessfully
	if s.attempt < len(s.CaptureStatuses) {
		status = s.CaptureStatuses[s.attempt]
	}
	s.attempt++
	sessionID := s.sessionToken
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	result := &simulatedResult{
		status:    status,
		sessionID: sessionID,
		scan:      s.Scan,
	}
	s.mu.Unlock()

	processor.ProcessSession(result, &simulatedCallback{simulator: s, processor: processor})
}

func (s *Simulator) teardown(processor facetec.FaceScanProcessor) {
	go processor.SessionCompletelyDone()
}

type simulatedResult struct {
	status    facetec.SessionStatus
	sessionID string
	scan      Scan
}

func (r *simulatedResult) Status() facetec.SessionStatus { return r.status }
func (r *simulatedResult) SessionID() string             { return r.sessionID }
func (r *simulatedResult) FaceScanBase64() string        { return r.scan.FaceScan }

func (r *simulatedResult) AuditTrailCompressedBase64() []string {
	return []string{r.scan.AuditTrailImage}
}

func (r *simulatedResult) LowQualityAuditTrailCompressedBase64() []string {
	return []string{r.scan.LowQualityAuditTrailImage}
}

type simulatedCallback struct {
	simulator *Simulator
	processor facetec.FaceScanProcessor

	mu        sync.Mutex
	succeeded bool
}

func (c *simulatedCallback) UploadProgress(fraction float64) {
	slog.Debug("simulated upload progress", "fraction", fraction)
}

func (c *simulatedCallback) UploadMessageOverride(message string) {
	slog.Debug("simulated upload message", "message", message)
}

func (c *simulatedCallback) Succeed() {
	c.mu.Lock()
	c.succeeded = true
	c.mu.Unlock()
}

func (c *simulatedCallback) Cancel() {
	c.simulator.teardown(c.processor)
}

// ProceedToNextStep either finalizes a succeeded session or plays the next
// capture attempt when the coordinator asked for a retry.
func (c *simulatedCallback) ProceedToNextStep(resultBlob string) {
	c.mu.Lock()
	succeeded := c.succeeded
	c.mu.Unlock()

	if succeeded {
		c.simulator.teardown(c.processor)
		return
	}
	go c.simulator.runAttempt(c.processor)
}

func (c *simulatedCallback) Retry() {
	go c.simulator.runAttempt(c.processor)
}
