package facetec

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SessionState is the explicit state of one enrollment attempt.
type SessionState int

const (
	StateIdle SessionState = iota
	StateAwaitingPermission
	StateAwaitingToken
	StateCaptureInProgress
	StateUploading
	StateAwaitingVerdict
	StateRetryingCapture
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingPermission:
		return "AwaitingPermission"
	case StateAwaitingToken:
		return "AwaitingToken"
	case StateCaptureInProgress:
		return "CaptureInProgress"
	case StateUploading:
		return "Uploading"
	case StateAwaitingVerdict:
		return "AwaitingVerdict"
	case StateRetryingCapture:
		return "RetryingCapture"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	case StateCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Terminal reports whether no further transition may leave the state.
func (s SessionState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

var allowedTransitions = map[SessionState][]SessionState{
	StateIdle:               {StateAwaitingPermission, StateCancelled},
	StateAwaitingPermission: {StateAwaitingToken, StateFailed, StateCancelled},
	StateAwaitingToken:      {StateCaptureInProgress, StateFailed, StateCancelled},
	StateCaptureInProgress:  {StateUploading, StateFailed, StateCancelled},
	// A verdict can land before the upload progress snapshot observes
	// completion, so the retry hop is reachable from Uploading too.
	StateUploading:          {StateAwaitingVerdict, StateRetryingCapture, StateFailed, StateCancelled},
	StateAwaitingVerdict:    {StateSucceeded, StateRetryingCapture, StateFailed, StateCancelled},
	StateRetryingCapture:    {StateCaptureInProgress, StateFailed, StateCancelled},
}

// UnboundedRetries disables the retry budget.
const UnboundedRetries = -1

// EnrollmentOptions tunes one enrollment attempt.
type EnrollmentOptions struct {
	// V1Identifier and ChainID are forwarded verbatim to the backend when set.
	V1Identifier string
	ChainID      string
	// MaxRetries caps the capture retry cycles; negative means unbounded.
	MaxRetries int
	// Timeout overrides the transport default for the enrollment upload only.
	Timeout time.Duration
}

// EnrollmentSession owns the mutable state of a single enrollment attempt.
// The coordinator is the only writer; the vendor component and the API client
// receive session data by value.
type EnrollmentSession struct {
	mu sync.Mutex

	enrollmentIdentifier string
	v1Identifier         string
	chainID              string
	maxRetries           int
	timeout              time.Duration

	state        SessionState
	retryAttempt int
	lastMessage  string
	isSuccess    bool
}

func newEnrollmentSession(enrollmentIdentifier string, opts EnrollmentOptions) *EnrollmentSession {
	maxRetries := UnboundedRetries
	if opts.MaxRetries >= 0 {
		maxRetries = opts.MaxRetries
	}

	var timeout time.Duration
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	return &EnrollmentSession{
		enrollmentIdentifier: enrollmentIdentifier,
		v1Identifier:         opts.V1Identifier,
		chainID:              opts.ChainID,
		maxRetries:           maxRetries,
		timeout:              timeout,
		state:                StateIdle,
	}
}

// transition moves the session to the requested state, rejecting moves the
// state machine does not allow. Terminal states are sticky.
func (s *EnrollmentSession) transition(to SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range allowedTransitions[s.state] {
		if allowed == to {
			slog.Debug("enrollment session transition",
				"identifier", s.enrollmentIdentifier, "from", s.state.String(), "to", to.String())
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("invalid session transition from %s to %s", s.state, to)
}

// fail moves the session to a terminal failure state with the given reason.
// The first terminal transition wins, later ones are ignored.
func (s *EnrollmentSession) fail(to SessionState, message string) {
	if !to.Terminal() || to == StateSucceeded {
		to = StateFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return
	}
	slog.Debug("enrollment session terminal failure",
		"identifier", s.enrollmentIdentifier, "from", s.state.String(), "to", to.String(), "reason", message)
	s.state = to
	if message != "" {
		s.lastMessage = message
	}
}

// succeed marks the session verified. Idempotent: a success verdict already
// recorded is never downgraded or re-applied.
func (s *EnrollmentSession) succeed(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return
	}
	s.state = StateSucceeded
	s.isSuccess = true
	s.lastMessage = message
}

// recordRetry accounts one more capture attempt and rewinds the state machine
// to CaptureInProgress. The caller must have evaluated the retry predicate.
func (s *EnrollmentSession) recordRetry(reason string) {
	s.mu.Lock()
	s.retryAttempt++
	s.lastMessage = reason
	s.mu.Unlock()

	// Two hops so the Retrying step is observable.
	if err := s.transition(StateRetryingCapture); err != nil {
		slog.Warn("retry transition rejected", "error", err)
		return
	}
	if err := s.transition(StateCaptureInProgress); err != nil {
		slog.Warn("retry transition rejected", "error", err)
	}
}

// retryBudgetLeft reports whether another capture attempt fits the budget.
func (s *EnrollmentSession) retryBudgetLeft() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxRetries < 0 || s.retryAttempt < s.maxRetries
}

func (s *EnrollmentSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *EnrollmentSession) EnrollmentIdentifier() string {
	return s.enrollmentIdentifier
}

func (s *EnrollmentSession) RetryAttempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryAttempt
}

func (s *EnrollmentSession) IsSuccess() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSuccess
}

func (s *EnrollmentSession) LastMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMessage
}

func (s *EnrollmentSession) setLastMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastMessage = message
}
