package esgevidence

import "errors"

// Sentinel errors. Each maps to one of the error kinds in the §7 taxonomy;
// the kind is carried on the wrapping *PipelineError, not on the sentinel
// itself, so callers can errors.Is against a stable value while still
// inspecting Kind() for the machine-readable code.
var (
	ErrConfigInvalid        = errors.New("esgevidence: invalid configuration")
	ErrMissingUserAgent     = errors.New("esgevidence: user agent required for network providers")
	ErrRobotsDisallow       = errors.New("esgevidence: robots.txt disallows fetch")
	ErrNo10KFound           = errors.New("esgevidence: no 10-K filing found for org/year")
	ErrTickerNotFound       = errors.New("esgevidence: ticker not found in SEC ticker list")
	ErrNoBronzeData         = errors.New("esgevidence: no bronze partitions found for org/year")
	ErrNoIndex              = errors.New("esgevidence: index is empty")
	ErrIntegrityMismatch    = errors.New("esgevidence: content hash mismatch on re-read")
	ErrManifestMissing      = errors.New("esgevidence: partition manifest absent")
	ErrInputMissing         = errors.New("esgevidence: required input missing")
	ErrGateFail             = errors.New("esgevidence: gate evaluation failed")
	ErrAuthenticityViolation = errors.New("esgevidence: authenticity violation")
	ErrRubricInvalid        = errors.New("esgevidence: rubric does not satisfy schema invariants")
)

// ErrorKind is the machine-readable failure taxonomy from spec §7.
type ErrorKind string

const (
	KindConfigError         ErrorKind = "config_error"
	KindInputMissing        ErrorKind = "input_missing"
	KindIntegrityError      ErrorKind = "integrity_error"
	KindTransportError      ErrorKind = "transport_error"
	KindGateFail            ErrorKind = "gate_fail"
	KindAuthenticityViolation ErrorKind = "authenticity_violation"
)

// PipelineError is the typed, named failure surfaced at stage boundaries.
// It carries a one-line reason and a machine-readable Kind, and wraps the
// underlying sentinel or transport error for errors.Is/As.
type PipelineError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Reason + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Reason
}

func (e *PipelineError) Unwrap() error { return e.Err }

func newPipelineError(kind ErrorKind, reason string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Reason: reason, Err: err}
}

// NewPipelineError is the exported constructor other packages use to
// surface a typed, named failure at a stage boundary (spec §7).
func NewPipelineError(kind ErrorKind, reason string, err error) *PipelineError {
	return newPipelineError(kind, reason, err)
}
