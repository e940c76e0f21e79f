package facetec

import "context"

// This file is the boundary to the closed-source vendor SDK. The real capture
// UI, liveness scoring and 3D matching live behind these interfaces; the rest
// of the package only ever talks to them through the callback protocol below.

// SessionResult is the outcome of one capture attempt as reported by the
// vendor component. Implementations are read-only snapshots.
type SessionResult interface {
	Status() SessionStatus
	SessionID() string
	// FaceScanBase64 returns the encoded 3D face scan captured by the session.
	FaceScanBase64() string
	// AuditTrailCompressedBase64 returns the encoded audit trail frames,
	// best quality first.
	AuditTrailCompressedBase64() []string
	LowQualityAuditTrailCompressedBase64() []string
}

// ResultCallback is handed to the processor together with a SessionResult and
// steers the vendor capture UI while the scan is being verified.
type ResultCallback interface {
	// UploadProgress moves the visual progress bar, fraction in [0,1].
	UploadProgress(fraction float64)
	// UploadMessageOverride replaces the upload status text.
	UploadMessageOverride(message string)
	// Succeed tells the capture UI to show the success animation.
	Succeed()
	// Cancel aborts the capture UI cleanly.
	Cancel()
	// ProceedToNextStep resumes the session with the backend continuation blob,
	// either to finalize a success or to run another capture attempt.
	ProceedToNextStep(resultBlob string)
	// Retry restarts the capture without a continuation blob.
	Retry()
}

// FaceScanProcessor receives the vendor callbacks. The coordinator implements
// it; each callback fires exactly once per capture attempt, on whatever
// goroutine the vendor component dispatches from.
type FaceScanProcessor interface {
	ProcessSession(result SessionResult, callback ResultCallback)
	// SessionCompletelyDone fires once after the capture UI is torn down,
	// strictly after a terminal Succeed/Cancel decision was delivered.
	SessionCompletelyDone()
}

// SessionLauncher starts the vendor capture UI for a one-time session token.
type SessionLauncher interface {
	LaunchSession(ctx context.Context, processor FaceScanProcessor, sessionToken string) error
}

// PermissionRequester asks the platform for camera access. Exactly one of the
// callbacks is invoked, possibly asynchronously.
type PermissionRequester interface {
	RequestCameraPermission(granted func(), denied func())
}

// SDK models the vendor SDK lifecycle used by the initialize path.
type SDK interface {
	Status() SDKStatus
	// Initialize attempts to initialize the SDK with the given license material
	// and reports the attempt result through the callback.
	Initialize(license LicenseConfig, done func(successful bool))
}

// LicenseConfig carries the vendor license material. ProductionKeyText being
// set selects production mode initialization.
type LicenseConfig struct {
	DeviceKeyIdentifier string
	PublicEncryptionKey string
	ProductionKeyText   string
}
