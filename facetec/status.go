package facetec

// SessionStatus is the closed set of capture-session outcomes. The integer
// values are part of the external contract: rejection codes handed to callers
// are derived from them, so the order of this block must never change.
type SessionStatus int

const (
	SessionCompletedSuccessfully SessionStatus = iota
	UserCancelled
	Timeout
	ContextSwitch
	LockedOut
	CameraPermissionDenied
	CameraInitializationIssue
	LandscapeModeNotAllowed
	ReversePortraitNotAllowed
	MissingGuidanceImages
	UserCancelledViaHardwareButton
	UserCancelledViaClickableReadyScreenSubtext
	SessionUnsuccessful
	NonProductionModeKeyInvalid
	NonProductionModeNetworkRequired
	EncryptionKeyInvalid
	UnknownInternalError
)

var sessionStatusDescriptions = map[SessionStatus]string{
	SessionCompletedSuccessfully:                "The session was completed successfully",
	UserCancelled:                               "The session was cancelled by the user",
	Timeout:                                     "The session timed out",
	ContextSwitch:                               "The session was cancelled because a new session was started",
	LockedOut:                                   "The user is locked out after too many failed attempts",
	CameraPermissionDenied:                      "Camera access was denied",
	CameraInitializationIssue:                   "The camera could not be initialized",
	LandscapeModeNotAllowed:                     "The session was cancelled because the device is in landscape mode",
	ReversePortraitNotAllowed:                   "The session was cancelled because the device is in reverse portrait mode",
	MissingGuidanceImages:                       "The session could not start because guidance images are missing",
	UserCancelledViaHardwareButton:              "The session was cancelled via the hardware button",
	UserCancelledViaClickableReadyScreenSubtext: "The session was cancelled via the ready screen subtext",
	SessionUnsuccessful:                         "The session was not completed successfully",
	NonProductionModeKeyInvalid:                 "The device key identifier is invalid in non-production mode",
	NonProductionModeNetworkRequired:            "A network connection is required in non-production mode",
	EncryptionKeyInvalid:                        "The encryption key is invalid",
	UnknownInternalError:                        "An unknown internal error occurred",
}

// Description returns the default human readable reason for the status.
func (s SessionStatus) Description() string {
	if d, ok := sessionStatusDescriptions[s]; ok {
		return d
	}
	return sessionStatusDescriptions[UnknownInternalError]
}

func (s SessionStatus) String() string {
	switch s {
	case SessionCompletedSuccessfully:
		return "SessionCompletedSuccessfully"
	case UserCancelled:
		return "UserCancelled"
	case Timeout:
		return "Timeout"
	case ContextSwitch:
		return "ContextSwitch"
	case LockedOut:
		return "LockedOut"
	case CameraPermissionDenied:
		return "CameraPermissionDenied"
	case CameraInitializationIssue:
		return "CameraInitializationIssue"
	case LandscapeModeNotAllowed:
		return "LandscapeModeNotAllowed"
	case ReversePortraitNotAllowed:
		return "ReversePortraitNotAllowed"
	case MissingGuidanceImages:
		return "MissingGuidanceImages"
	case UserCancelledViaHardwareButton:
		return "UserCancelledViaHardwareButton"
	case UserCancelledViaClickableReadyScreenSubtext:
		return "UserCancelledViaClickableReadyScreenSubtext"
	case SessionUnsuccessful:
		return "SessionUnsuccessful"
	case NonProductionModeKeyInvalid:
		return "NonProductionModeKeyInvalid"
	case NonProductionModeNetworkRequired:
		return "NonProductionModeNetworkRequired"
	case EncryptionKeyInvalid:
		return "EncryptionKeyInvalid"
	default:
		return "UnknownInternalError"
	}
}

// SDKStatus is the closed set of vendor SDK lifecycle states, used by the
// initialize path only. Same stability rule as SessionStatus.
type SDKStatus int

const (
	SDKNeverInitialized SDKStatus = iota
	SDKInitialized
	SDKNetworkIssues
	SDKInvalidDeviceKeyIdentifier
	SDKVersionDeprecated
	SDKDeviceNotSupported
	SDKDeviceInLandscapeMode
	SDKDeviceInReversePortraitMode
	SDKDeviceLockedOut
	SDKKeyExpiredOrInvalid
	SDKEncryptionKeyInvalid
)

var sdkStatusDescriptions = map[SDKStatus]string{
	SDKNeverInitialized:            "The SDK has never been initialized",
	SDKInitialized:                 "The SDK is initialized",
	SDKNetworkIssues:               "The SDK could not be initialized due to network issues",
	SDKInvalidDeviceKeyIdentifier:  "The device key identifier is invalid",
	SDKVersionDeprecated:           "This SDK version is deprecated",
	SDKDeviceNotSupported:          "This device is not supported",
	SDKDeviceInLandscapeMode:       "The device is in landscape mode",
	SDKDeviceInReversePortraitMode: "The device is in reverse portrait mode",
	SDKDeviceLockedOut:             "The device is locked out after too many failed attempts",
	SDKKeyExpiredOrInvalid:         "The license key is expired or invalid",
	SDKEncryptionKeyInvalid:        "The encryption key is invalid",
}

// Description returns the default human readable reason for the status.
func (s SDKStatus) Description() string {
	if d, ok := sdkStatusDescriptions[s]; ok {
		return d
	}
	return "Unknown SDK status"
}

func (s SDKStatus) String() string {
	switch s {
	case SDKNeverInitialized:
		return "NeverInitialized"
	case SDKInitialized:
		return "Initialized"
	case SDKNetworkIssues:
		return "NetworkIssues"
	case SDKInvalidDeviceKeyIdentifier:
		return "InvalidDeviceKeyIdentifier"
	case SDKVersionDeprecated:
		return "VersionDeprecated"
	case SDKDeviceNotSupported:
		return "DeviceNotSupported"
	case SDKDeviceInLandscapeMode:
		return "DeviceInLandscapeMode"
	case SDKDeviceInReversePortraitMode:
		return "DeviceInReversePortraitMode"
	case SDKDeviceLockedOut:
		return "DeviceLockedOut"
	case SDKKeyExpiredOrInvalid:
		return "KeyExpiredOrInvalid"
	case SDKEncryptionKeyInvalid:
		return "EncryptionKeyInvalid"
	default:
		return "Unknown"
	}
}
