package goodserver

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/gooddollar/facetec-go/models"
	"github.com/google/uuid"
)

// EnrollmentEvaluator turns an uploaded payload into a verification verdict.
// Real deployments delegate to the vendor verification server; this interface
// keeps the HTTP layer independent of how verdicts are produced.
type EnrollmentEvaluator interface {
	Evaluate(enrollmentIdentifier string, request models.EnrollmentRequest) models.EnrollmentResponse
}

// spoofMarker in a decoded face scan makes the scoring evaluator fail the
// liveness check. It exists so demos and tests can provoke the retry path.
const spoofMarker = "spoof"

// ScoringEvaluator is a deterministic reference evaluator: it detects
// duplicate face scans across identifiers through a scan digest recorded in
// storage and flags marked scans as liveness failures.
type ScoringEvaluator struct {
	enrollments Storage
}

func NewScoringEvaluator(enrollments Storage) *ScoringEvaluator {
	return &ScoringEvaluator{enrollments: enrollments}
}

func (e *ScoringEvaluator) Evaluate(enrollmentIdentifier string, request models.EnrollmentRequest) models.EnrollmentResponse {
	if request.FaceScan == "" || request.AuditTrailImage == "" {
		return models.EnrollmentResponse{
			Success: false,
			Error:   "incomplete enrollment payload",
		}
	}

	if e.isSpoof(request.FaceScan) {
		slog.Info("liveness check failed", "identifier", enrollmentIdentifier)
		notLive := false
		return models.EnrollmentResponse{
			Success: false,
			Error:   "liveness could not be determined",
			EnrollmentResult: &models.EnrollmentResult{
				IsLive:     &notLive,
				ResultBlob: uuid.NewString(),
			},
		}
	}

	digest := scanDigest(request.FaceScan)
	owner, err := e.enrollments.Retrieve(digest)
	if err == nil && owner != enrollmentIdentifier {
		slog.Warn("duplicate face scan detected",
			"identifier", enrollmentIdentifier, "enrolled_as", owner)
		return models.EnrollmentResponse{
			Success: false,
			Error:   "face is already enrolled under a different identifier",
			EnrollmentResult: &models.EnrollmentResult{
				IsDuplicate: true,
				IsEnrolled:  true,
			},
		}
	}

	if storeErr := e.enrollments.Store(digest, enrollmentIdentifier); storeErr != nil {
		slog.Error("failed to record enrollment", "error", storeErr)
		return models.EnrollmentResponse{
			Success: false,
			Error:   "failed to record enrollment",
		}
	}

	slog.Info("enrollment accepted", "identifier", enrollmentIdentifier)
	return models.EnrollmentResponse{
		Success:    true,
		ResultBlob: uuid.NewString(),
	}
}

func (e *ScoringEvaluator) isSpoof(faceScan string) bool {
	decoded, err := base64.StdEncoding.DecodeString(faceScan)
	if err != nil {
		// Not valid base64, check the raw value instead.
		return strings.Contains(faceScan, spoofMarker)
	}
	return strings.Contains(string(decoded), spoofMarker)
}

func scanDigest(faceScan string) string {
	sum := sha256.Sum256([]byte(faceScan))
	return "scan:" + hex.EncodeToString(sum[:])
}
