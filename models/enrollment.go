package models

// SessionTokenResponse is returned by POST /verify/face/session.
type SessionTokenResponse struct {
	SessionToken string `json:"sessionToken,omitempty"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// EnrollmentRequest is the body of PUT /verify/face/{enrollmentIdentifier}.
// Optional fields are omitted entirely when unset, never sent as null.
type EnrollmentRequest struct {
	FaceScan                  string `json:"faceScan"`                  // Base64 encoded 3D face scan
	AuditTrailImage           string `json:"auditTrailImage"`           // Base64 encoded audit trail frame
	LowQualityAuditTrailImage string `json:"lowQualityAuditTrailImage"` // Base64 encoded low quality frame
	SessionID                 string `json:"sessionId"`
	FVSigner                  string `json:"fvSigner,omitempty"`
	ChainID                   string `json:"chainId,omitempty"`
}

// EnrollmentResponse is the verdict returned by the verification backend.
// On success the continuation blob lives at the top level, on a retryable
// failure it lives inside EnrollmentResult.
type EnrollmentResponse struct {
	Success          bool              `json:"success"`
	Error            string            `json:"error,omitempty"`
	ResultBlob       string            `json:"resultBlob,omitempty"`
	EnrollmentResult *EnrollmentResult `json:"enrollmentResult,omitempty"`
}

// EnrollmentResult carries the classification flags of a verdict. IsLive is a
// pointer because its absence means the liveness check passed.
type EnrollmentResult struct {
	IsDuplicate bool   `json:"isDuplicate,omitempty"`
	IsNotMatch  bool   `json:"isNotMatch,omitempty"`
	IsEnrolled  bool   `json:"isEnrolled,omitempty"`
	IsLive      *bool  `json:"isLive,omitempty"`
	ResultBlob  string `json:"resultBlob,omitempty"`
}

// LivenessPassed reports whether the verdict should be treated as having
// passed the liveness check. A missing flag counts as passed.
func (r *EnrollmentResult) LivenessPassed() bool {
	if r == nil || r.IsLive == nil {
		return true
	}
	return *r.IsLive
}

// Blob returns the continuation blob regardless of where the backend put it.
func (r *EnrollmentResponse) Blob() string {
	if r.ResultBlob != "" {
		return r.ResultBlob
	}
	if r.EnrollmentResult != nil {
		return r.EnrollmentResult.ResultBlob
	}
	return ""
}
