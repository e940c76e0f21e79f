package facetec

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gooddollar/facetec-go/facetec/api"
)

// Module is the application-facing facade, the equivalent of the native
// bridge module: it owns SDK initialization, enforces the one-active-session
// invariant and hands out promises for enrollment outcomes.
type Module struct {
	mu sync.Mutex

	sdk         SDK
	launcher    SessionLauncher
	permissions PermissionRequester
	events      EventSink

	verification VerificationAPI
	initialized  bool

	lastProcessor *EnrollmentProcessor
}

// ModuleConfig wires the vendor-side collaborators. Events may be nil.
type ModuleConfig struct {
	SDK         SDK
	Launcher    SessionLauncher
	Permissions PermissionRequester
	Events      EventSink
}

func NewModule(config ModuleConfig) *Module {
	events := config.Events
	if events == nil {
		events = NopSink()
	}
	return &Module{
		sdk:         config.SDK,
		launcher:    config.Launcher,
		permissions: config.Permissions,
		events:      events,
	}
}

// Initialize configures the verification backend client and initializes the
// vendor SDK. The promise resolves true once the SDK reports Initialized and
// rejects with the SDK status code otherwise.
func (m *Module) Initialize(serverURL, jwtAccessToken string, license LicenseConfig) *Promise[bool] {
	promise := NewPromise[bool]()

	m.mu.Lock()
	m.verification = api.NewClient(api.Config{
		ServerURL:      serverURL,
		JWTAccessToken: jwtAccessToken,
	})
	m.mu.Unlock()

	status := m.sdk.Status()
	switch status {
	case SDKInitialized, SDKDeviceInLandscapeMode, SDKDeviceInReversePortraitMode:
		m.setInitialized()
		promise.Resolve(true)

	case SDKNeverInitialized, SDKNetworkIssues:
		m.sdk.Initialize(license, func(successful bool) {
			if successful {
				m.setInitialized()
				promise.Resolve(true)
				return
			}
			after := m.sdk.Status()
			slog.Warn("SDK initialization failed", "status", after.String())
			promise.Reject(int(after), after.Description())
		})

	default:
		promise.Reject(int(status), status.Description())
	}

	return promise
}

func (m *Module) setInitialized() {
	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
	slog.Info("SDK initialized")
}

// FaceVerification starts an enrollment attempt for the identifier. If a
// previous attempt is still active it is rejected with a context switch and
// its in-flight backend calls are cancelled before the new attempt begins.
// The returned promise settles exactly once.
func (m *Module) FaceVerification(enrollmentIdentifier string, opts EnrollmentOptions) *Promise[string] {
	promise := NewPromise[string]()
	subscriber := NewProcessingSubscriber(promise)

	m.mu.Lock()
	verification := m.verification
	initialized := m.initialized

	if verification == nil || !initialized {
		m.mu.Unlock()
		promise.Reject(int(SDKNeverInitialized), SDKNeverInitialized.Description())
		return promise
	}

	if m.lastProcessor != nil {
		previous := m.lastProcessor
		if session := previous.Session(); session != nil {
			slog.Info("preempting active enrollment session",
				"identifier", session.EnrollmentIdentifier())
			session.fail(StateCancelled, ContextSwitch.Description())
		}
		previous.Subscriber().OnSessionContextSwitch()
		verification.CancelPendingRequests()
	}

	processor := NewEnrollmentProcessor(verification, m.launcher, m.permissions, m.events, subscriber)
	processor.onDone = func() { m.clearProcessor(processor) }
	m.lastProcessor = processor
	m.mu.Unlock()

	processor.Enroll(enrollmentIdentifier, opts)
	return promise
}

func (m *Module) clearProcessor(processor *EnrollmentProcessor) {
	m.mu.Lock()
	if m.lastProcessor == processor {
		m.lastProcessor = nil
	}
	m.mu.Unlock()
}

// Constants exports the status code and event name maps the way the native
// module exported them to the application layer.
func (m *Module) Constants() map[string]any {
	sessionStatuses := map[string]int{}
	for status := SessionCompletedSuccessfully; status <= UnknownInternalError; status++ {
		sessionStatuses[status.String()] = int(status)
	}

	sdkStatuses := map[string]int{}
	for status := SDKNeverInitialized; status <= SDKEncryptionKeyInvalid; status++ {
		sdkStatuses[status.String()] = int(status)
	}

	return map[string]any{
		"FaceTecUxEvent":       EventNames(),
		"FaceTecSDKStatus":     sdkStatuses,
		"FaceTecSessionStatus": sessionStatuses,
	}
}

// Timeout helpers -----------------------------------------------------------

// MillisToTimeout converts the bridge's integer milliseconds to a duration,
// treating non-positive values as "use the transport default".
func MillisToTimeout(millis int) time.Duration {
	if millis <= 0 {
		return 0
	}
	return time.Duration(millis) * time.Millisecond
}
