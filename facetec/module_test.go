package facetec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gooddollar/facetec-go/facetec/api"
	"github.com/gooddollar/facetec-go/models"
)

// fakeSDK scripts the vendor SDK lifecycle.
type fakeSDK struct {
	status         SDKStatus
	initializeOK   bool
	statusOnFail   SDKStatus
	initializeRuns int
}

func (s *fakeSDK) Status() SDKStatus { return s.status }

func (s *fakeSDK) Initialize(_ LicenseConfig, done func(successful bool)) {
	s.initializeRuns++
	if s.initializeOK {
		s.status = SDKInitialized
	} else {
		s.status = s.statusOnFail
	}
	done(s.initializeOK)
}

func newTestModule(sdk SDK, launcher SessionLauncher) *Module {
	return NewModule(ModuleConfig{
		SDK:         sdk,
		Launcher:    launcher,
		Permissions: &grantingPermissions{},
	})
}

func TestModuleInitialize_AlreadyInitialized(t *testing.T) {
	sdk := &fakeSDK{status: SDKInitialized}
	module := newTestModule(sdk, &fakeLauncher{})

	ok, err := module.Initialize("http://localhost", "jwt", LicenseConfig{}).Await(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, sdk.initializeRuns)
}

func TestModuleInitialize_RunsVendorInitialization(t *testing.T) {
	sdk := &fakeSDK{status: SDKNeverInitialized, initializeOK: true}
	module := newTestModule(sdk, &fakeLauncher{})

	ok, err := module.Initialize("http://localhost", "jwt", LicenseConfig{}).Await(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, sdk.initializeRuns)
}

func TestModuleInitialize_RejectsWithSDKStatus(t *testing.T) {
	sdk := &fakeSDK{status: SDKNeverInitialized, statusOnFail: SDKInvalidDeviceKeyIdentifier}
	module := newTestModule(sdk, &fakeLauncher{})

	_, err := module.Initialize("http://localhost", "jwt", LicenseConfig{}).Await(context.Background())
	statusErr := &StatusError{}
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, int(SDKInvalidDeviceKeyIdentifier), statusErr.Code)
	require.Equal(t, SDKInvalidDeviceKeyIdentifier.Description(), statusErr.Message)
}

func TestModuleInitialize_UnrecoverableStatusRejectsImmediately(t *testing.T) {
	sdk := &fakeSDK{status: SDKEncryptionKeyInvalid}
	module := newTestModule(sdk, &fakeLauncher{})

	_, err := module.Initialize("http://localhost", "jwt", LicenseConfig{}).Await(context.Background())
	statusErr := &StatusError{}
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, int(SDKEncryptionKeyInvalid), statusErr.Code)
	require.Equal(t, 0, sdk.initializeRuns)
}

func TestModuleFaceVerification_RequiresInitialization(t *testing.T) {
	module := newTestModule(&fakeSDK{status: SDKNeverInitialized}, &fakeLauncher{})

	_, err := module.FaceVerification("alice", EnrollmentOptions{}).Await(context.Background())
	statusErr := &StatusError{}
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, int(SDKNeverInitialized), statusErr.Code)
}

func TestModuleFaceVerification_EndToEnd(t *testing.T) {
	callback := &fakeCallback{}
	verification := &fakeVerification{
		sessionToken:    "token-1",
		enrollResponses: []*models.EnrollmentResponse{successResponse("blob-1")},
		enrollErrors:    []*api.Error{nil},
	}
	launcher := &fakeLauncher{result: newFakeResult(SessionCompletedSuccessfully), callback: callback}

	module := newTestModule(&fakeSDK{status: SDKInitialized}, launcher)
	module.verification = verification
	module.initialized = true

	promise := module.FaceVerification("alice", EnrollmentOptions{MaxRetries: 1})
	require.False(t, promise.Settled())

	processor := module.lastProcessor
	require.NotNil(t, processor)
	processor.SessionCompletelyDone()

	artifacts, err := promise.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, "face-scan-b64,audit-b64", artifacts)

	// The terminal report released the active-processor slot.
	require.Nil(t, module.lastProcessor)
}

func TestModuleFaceVerification_PreemptsActiveSession(t *testing.T) {
	verification := &fakeVerification{sessionToken: "token-1"}
	// The first capture never finishes.
	launcher := &fakeLauncher{}

	module := newTestModule(&fakeSDK{status: SDKInitialized}, launcher)
	module.verification = verification
	module.initialized = true

	first := module.FaceVerification("alice", EnrollmentOptions{})
	require.False(t, first.Settled())

	firstProcessor := module.lastProcessor
	second := module.FaceVerification("alice", EnrollmentOptions{})

	// The superseded attempt is rejected with a context switch and its
	// in-flight backend calls are cancelled.
	_, err := first.Await(context.Background())
	statusErr := &StatusError{}
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, int(ContextSwitch), statusErr.Code)
	require.Equal(t, StateCancelled, firstProcessor.Session().State())
	require.Equal(t, 1, verification.cancelled)

	require.False(t, second.Settled())
	require.Equal(t, 2, launcher.launched)
}

func TestModuleConstants(t *testing.T) {
	module := newTestModule(&fakeSDK{status: SDKInitialized}, &fakeLauncher{})
	constants := module.Constants()

	events, ok := constants["FaceTecUxEvent"].(map[string]string)
	require.True(t, ok)
	require.Equal(t, "onUIReady", events["UI_READY"])

	sessionStatuses, ok := constants["FaceTecSessionStatus"].(map[string]int)
	require.True(t, ok)
	require.Equal(t, 0, sessionStatuses[SessionCompletedSuccessfully.String()])
	require.Equal(t, int(UnknownInternalError), sessionStatuses[UnknownInternalError.String()])

	sdkStatuses, ok := constants["FaceTecSDKStatus"].(map[string]int)
	require.True(t, ok)
	require.Equal(t, int(SDKEncryptionKeyInvalid), sdkStatuses[SDKEncryptionKeyInvalid.String()])
}

func TestMillisToTimeout(t *testing.T) {
	require.Equal(t, time.Duration(0), MillisToTimeout(0))
	require.Equal(t, time.Duration(0), MillisToTimeout(-5))
	require.Equal(t, 1500*time.Millisecond, MillisToTimeout(1500))
}
