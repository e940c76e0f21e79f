package facetec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func awaitRejection(t *testing.T, promise *Promise[string]) *StatusError {
	t.Helper()
	_, err := promise.Await(context.Background())
	statusErr := &StatusError{}
	require.ErrorAs(t, err, &statusErr)
	return statusErr
}

func TestSubscriber_SuccessResolvesArtifacts(t *testing.T) {
	promise := NewPromise[string]()
	subscriber := NewProcessingSubscriber(promise)

	subscriber.OnProcessingComplete(true, newFakeResult(SessionCompletedSuccessfully), ResultSuccessMessage)

	artifacts, err := promise.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, "face-scan-b64,audit-b64", artifacts)
}

func TestSubscriber_FailureRejectsWithStatusCode(t *testing.T) {
	promise := NewPromise[string]()
	subscriber := NewProcessingSubscriber(promise)

	subscriber.OnProcessingComplete(false, newFakeResult(Timeout), "")

	statusErr := awaitRejection(t, promise)
	require.Equal(t, int(Timeout), statusErr.Code)
	require.Equal(t, Timeout.Description(), statusErr.Message)
}

func TestSubscriber_FailureKeepsSessionMessage(t *testing.T) {
	promise := NewPromise[string]()
	subscriber := NewProcessingSubscriber(promise)

	subscriber.OnProcessingComplete(false, newFakeResult(SessionUnsuccessful), "liveness check failed")

	statusErr := awaitRejection(t, promise)
	require.Equal(t, int(SessionUnsuccessful), statusErr.Code)
	require.Equal(t, "liveness check failed", statusErr.Message)
}

func TestSubscriber_FailureWithoutResult(t *testing.T) {
	promise := NewPromise[string]()
	subscriber := NewProcessingSubscriber(promise)

	subscriber.OnProcessingComplete(false, nil, "something broke")

	statusErr := awaitRejection(t, promise)
	require.Equal(t, int(UnknownInternalError), statusErr.Code)
	require.Equal(t, "something broke", statusErr.Message)
}

func TestSubscriber_SessionTokenError(t *testing.T) {
	promise := NewPromise[string]()
	subscriber := NewProcessingSubscriber(promise)

	subscriber.OnSessionTokenError(errors.New("connection refused"))

	statusErr := awaitRejection(t, promise)
	require.Equal(t, int(UnknownInternalError), statusErr.Code)
	require.Contains(t, statusErr.Message, "Session could not be started")
	require.Contains(t, statusErr.Message, "connection refused")
}

func TestSubscriber_ContextSwitch(t *testing.T) {
	promise := NewPromise[string]()
	subscriber := NewProcessingSubscriber(promise)

	subscriber.OnSessionContextSwitch()

	statusErr := awaitRejection(t, promise)
	require.Equal(t, int(ContextSwitch), statusErr.Code)
	require.Equal(t, ContextSwitch.Description(), statusErr.Message)
}

func TestSubscriber_CameraAccessError(t *testing.T) {
	promise := NewPromise[string]()
	subscriber := NewProcessingSubscriber(promise)

	subscriber.OnCameraAccessError()

	statusErr := awaitRejection(t, promise)
	require.Equal(t, int(CameraPermissionDenied), statusErr.Code)
}

func TestSubscriber_FirstReportWins(t *testing.T) {
	promise := NewPromise[string]()
	subscriber := NewProcessingSubscriber(promise)

	subscriber.OnSessionContextSwitch()
	subscriber.OnProcessingComplete(true, newFakeResult(SessionCompletedSuccessfully), "")
	subscriber.OnCameraAccessError()

	statusErr := awaitRejection(t, promise)
	require.Equal(t, int(ContextSwitch), statusErr.Code)
}
