package acquire

import "github.com/brunobiangulo/esgevidence"

// newAcquireError maps the Acquirer's own failure vocabulary
// (robots_disallow, http_status_non_200, transport_error, write_error,
// config_error, input_missing) onto the shared ErrorKind taxonomy (spec §7)
// and wraps it into a *esgevidence.PipelineError.
func newAcquireError(kind string, reason string, err error) error {
	var k esgevidence.ErrorKind
	switch kind {
	case "config_error":
		k = esgevidence.KindConfigError
	case "input_missing":
		k = esgevidence.KindInputMissing
	case "transport_error", "write_error", "http_status_non_200", "robots_disallow":
		k = esgevidence.KindTransportError
	default:
		k = esgevidence.KindTransportError
	}
	return esgevidence.NewPipelineError(k, reason, err)
}
