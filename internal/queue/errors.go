package queue

import "errors"

// ErrorClassifier is implemented by errors that know whether retrying could
// help. The services markers and the captions error types implement it.
type ErrorClassifier interface {
	ErrorKind() string
}

// reviewKinds are failures caused by the input or the configuration. Running
// the same job again would fail the same way.
var reviewKinds = map[string]struct{}{
	"validation":    {},
	"configuration": {},
	"not_found":     {},
}

// FailureStatus maps a stage error to the status persisted for the job:
// StatusReview for input and configuration problems, StatusFailed otherwise.
func FailureStatus(err error) Status {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		if _, ok := reviewKinds[classifier.ErrorKind()]; ok {
			return StatusReview
		}
	}
	return StatusFailed
}
