package syncqueue

import (
	"errors"
	"net/http"

	"github.com/timelyapp/timely/internal/model"
)

// irrecoverable reports whether a write error should fail fast instead of
// being retried: validation and authentication problems never heal on
// retry, and neither do 4xx persistence responses apart from 408/429.
func irrecoverable(err error) bool {
	if errors.Is(err, model.ErrValidation) ||
		errors.Is(err, model.ErrAuthenticationRequired) ||
		errors.Is(err, model.ErrInvalidRequest) {
		return true
	}
	var pe *model.PersistenceError
	if errors.As(err, &pe) && pe.StatusCode >= 400 && pe.StatusCode < 500 {
		switch pe.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return false
		default:
			return true
		}
	}
	return false
}
